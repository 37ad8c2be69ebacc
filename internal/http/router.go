package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Planifications *PlanificationHandler
	Participants   *ParticipantHandler
	Meetings       *MeetingHandler
	Actions        *ActionHandler
	Registry       *RegistryHandler
	Invitations    *InvitationHandler
	Middleware     []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Planifications != nil {
		mux.HandleFunc("/planifications", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Planifications.List(w, r)
			case http.MethodPost:
				cfg.Planifications.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/planifications/", func(w http.ResponseWriter, r *http.Request) {
			id, rest := splitResourcePath(r.URL.Path, "/planifications/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch rest {
			case "":
				switch r.Method {
				case http.MethodGet:
					cfg.Planifications.Get(w, r)
				case http.MethodPut:
					cfg.Planifications.Update(w, r)
				case http.MethodDelete:
					cfg.Planifications.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case "confirm", "plan", "start", "cancel", "done", "reset":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Planifications.Transition(w, r, rest)
			case "conflicts":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Planifications.Conflicts(w, r)
			case "participants":
				if cfg.Participants == nil {
					http.NotFound(w, r)
					return
				}
				switch r.Method {
				case http.MethodGet:
					cfg.Participants.List(w, r)
				case http.MethodPost:
					cfg.Participants.Add(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Participants != nil {
		mux.HandleFunc("/participants/", func(w http.ResponseWriter, r *http.Request) {
			id, rest := splitResourcePath(r.URL.Path, "/participants/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch rest {
			case "":
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				cfg.Participants.Remove(w, r)
			case "role":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Participants.AssignRole(w, r)
			case "token":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Participants.GenerateToken(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Meetings != nil {
		mux.HandleFunc("/meetings/", func(w http.ResponseWriter, r *http.Request) {
			id, rest := splitResourcePath(r.URL.Path, "/meetings/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch rest {
			case "":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Meetings.Get(w, r)
			case "join":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Meetings.Join(w, r)
			case "leave":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Meetings.Leave(w, r)
			case "complete":
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Meetings.Complete(w, r)
			case "notes":
				switch r.Method {
				case http.MethodGet:
					cfg.Meetings.ListNotes(w, r)
				case http.MethodPost:
					cfg.Meetings.AddNote(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			case "decisions":
				switch r.Method {
				case http.MethodGet:
					cfg.Meetings.ListDecisions(w, r)
				case http.MethodPost:
					cfg.Meetings.AddDecision(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			case "summary":
				switch r.Method {
				case http.MethodGet:
					cfg.Meetings.GetSummary(w, r)
				case http.MethodPost:
					cfg.Meetings.GenerateSummary(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Actions != nil {
		mux.HandleFunc("/actions", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Actions.List(w, r)
			case http.MethodPost:
				cfg.Actions.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/actions/", func(w http.ResponseWriter, r *http.Request) {
			id, rest := splitResourcePath(r.URL.Path, "/actions/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch rest {
			case "":
				switch r.Method {
				case http.MethodGet:
					cfg.Actions.Get(w, r)
				case http.MethodPut:
					cfg.Actions.Update(w, r)
				case http.MethodDelete:
					cfg.Actions.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case "status":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Actions.UpdateStatus(w, r)
			case "parent":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Actions.Reparent(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Registry != nil {
		mux.HandleFunc("/rooms", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Registry.ListRooms(w, r)
			case http.MethodPost:
				cfg.Registry.CreateRoom(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/rooms/", func(w http.ResponseWriter, r *http.Request) {
			id, rest := splitResourcePath(r.URL.Path, "/rooms/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch rest {
			case "":
				switch r.Method {
				case http.MethodGet:
					cfg.Registry.GetRoom(w, r)
				case http.MethodPut:
					cfg.Registry.UpdateRoom(w, r)
				case http.MethodDelete:
					cfg.Registry.DeleteRoom(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
				}
			case "status":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Registry.RoomStatus(w, r)
			default:
				http.NotFound(w, r)
			}
		})
		mux.HandleFunc("/equipment", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Registry.ListEquipment(w, r)
			case http.MethodPost:
				cfg.Registry.CreateEquipment(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/equipment/", func(w http.ResponseWriter, r *http.Request) {
			id, rest := splitResourcePath(r.URL.Path, "/equipment/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch rest {
			case "":
				if r.Method != http.MethodPut {
					methodNotAllowed(w, http.MethodPut)
					return
				}
				cfg.Registry.UpdateEquipment(w, r)
			case "status":
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Registry.EquipmentStatus(w, r)
			default:
				http.NotFound(w, r)
			}
		})
		mux.HandleFunc("/locations", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Registry.ListLocations(w, r)
			case http.MethodPost:
				cfg.Registry.CreateLocation(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/roles", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Registry.ListRoles(w, r)
			case http.MethodPost:
				cfg.Registry.CreateRole(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/roles/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/roles/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithResourceID(r.Context(), id))
			switch r.Method {
			case http.MethodPut:
				cfg.Registry.UpdateRole(w, r)
			case http.MethodDelete:
				cfg.Registry.DeleteRole(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Invitations != nil {
		// Invitation links carry their whole credential in the path:
		// /invitations/{planification}/{participant}/{token}.
		mux.HandleFunc("/invitations/", func(w http.ResponseWriter, r *http.Request) {
			parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/invitations/"), "/")
			if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Invitations.Respond(w, r, parts[0], parts[1], parts[2])
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

// splitResourcePath peels the resource id and at most one trailing segment
// off a path below prefix. Deeper paths report an empty id so callers 404.
func splitResourcePath(path, prefix string) (id, rest string) {
	trimmed := strings.TrimPrefix(path, prefix)
	parts := strings.SplitN(trimmed, "/", 3)
	switch len(parts) {
	case 1:
		return parts[0], ""
	case 2:
		if parts[1] == "" {
			return parts[0], ""
		}
		return parts[0], parts[1]
	default:
		return "", ""
	}
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

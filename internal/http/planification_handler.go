package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/meeting-planner/internal/application"
)

type planificationService interface {
	CreatePlanification(ctx context.Context, principal application.Principal, input application.PlanificationInput) (application.Planification, error)
	UpdatePlanification(ctx context.Context, principal application.Principal, id string, input application.PlanificationInput) (application.Planification, error)
	GetPlanification(ctx context.Context, id string) (application.Planification, error)
	ListPlanifications(ctx context.Context, query application.PlanificationQuery) ([]application.Planification, error)
	DeletePlanification(ctx context.Context, principal application.Principal, id string) error
	Confirm(ctx context.Context, principal application.Principal, id string) (application.Planification, error)
	Plan(ctx context.Context, principal application.Principal, id string) (application.Planification, error)
	Start(ctx context.Context, principal application.Principal, id string) (application.StartResult, error)
	Cancel(ctx context.Context, principal application.Principal, id string) (application.Planification, error)
	Done(ctx context.Context, principal application.Principal, id string) (application.Planification, error)
	ResetToDraft(ctx context.Context, principal application.Principal, id string) (application.Planification, error)
	PreviewConflicts(ctx context.Context, id string) ([]application.ConflictPreview, error)
}

type PlanificationHandler struct {
	service   planificationService
	responder responder
	logger    *slog.Logger
}

func NewPlanificationHandler(service planificationService, logger *slog.Logger) *PlanificationHandler {
	base := defaultLogger(logger)
	return &PlanificationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *PlanificationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "PlanificationHandler", operation, attrs...)
}

func (h *PlanificationHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}

	var req planificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode planification request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)
	plan, err := h.service.CreatePlanification(r.Context(), principal, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "planification creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("planification_id", plan.ID).InfoContext(r.Context(), "planification created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, planificationResponse{Planification: toPlanificationDTO(plan)})
}

func (h *PlanificationHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req planificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "planification_id", id)
	plan, err := h.service.UpdatePlanification(r.Context(), principal, id, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "planification update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "planification updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, planificationResponse{Planification: toPlanificationDTO(plan)})
}

func (h *PlanificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	plan, err := h.service.GetPlanification(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, planificationResponse{Planification: toPlanificationDTO(plan)})
}

func (h *PlanificationHandler) List(w http.ResponseWriter, r *http.Request) {
	query := application.PlanificationQuery{}
	params := r.URL.Query()
	for _, state := range params["state"] {
		query.States = append(query.States, application.PlanificationState(state))
	}
	if value := params.Get("room_id"); value != "" {
		query.RoomID = &value
	}
	if value := params.Get("starts_after"); value != "" {
		at, err := time.Parse(time.RFC3339, value)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		query.StartsAfter = &at
	}
	if value := params.Get("ends_before"); value != "" {
		at, err := time.Parse(time.RFC3339, value)
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
		query.EndsBefore = &at
	}

	plans, err := h.service.ListPlanifications(r.Context(), query)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "planification list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]planificationDTO, 0, len(plans))
	for _, plan := range plans {
		dtos = append(dtos, toPlanificationDTO(plan))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listPlanificationsResponse{Planifications: dtos})
}

func (h *PlanificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "planification_id", id)
	if err := h.service.DeletePlanification(r.Context(), principal, id); err != nil {
		logger.ErrorContext(r.Context(), "planification delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "planification deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Transition runs the named lifecycle transition on the planification.
func (h *PlanificationHandler) Transition(w http.ResponseWriter, r *http.Request, action string) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	logger := h.log(r.Context(), "Transition", "principal_id", principal.UserID, "planification_id", id, "action", action)

	if action == "start" {
		result, err := h.service.Start(r.Context(), principal, id)
		if err != nil {
			logger.ErrorContext(r.Context(), "planification transition failed", "error", err, "error_kind", application.ErrorKind(err))
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		logger.With("meeting_id", result.Meeting.ID).InfoContext(r.Context(), "planification started")
		resp := startResponse{Meeting: toMeetingDTO(result.Meeting)}
		if result.OwnSession != nil {
			dto := toSessionDTO(*result.OwnSession)
			resp.OwnSession = &dto
		}
		h.responder.writeJSON(r.Context(), w, http.StatusOK, resp)
		return
	}

	var (
		plan application.Planification
		err  error
	)
	switch action {
	case "confirm":
		plan, err = h.service.Confirm(r.Context(), principal, id)
	case "plan":
		plan, err = h.service.Plan(r.Context(), principal, id)
	case "cancel":
		plan, err = h.service.Cancel(r.Context(), principal, id)
	case "done":
		plan, err = h.service.Done(r.Context(), principal, id)
	case "reset":
		plan, err = h.service.ResetToDraft(r.Context(), principal, id)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "planification transition failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("state", string(plan.State)).InfoContext(r.Context(), "planification transitioned")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, planificationResponse{Planification: toPlanificationDTO(plan)})
}

// Conflicts reports the reservations that currently block planning the
// planification. An empty list means the drafted room and equipment are free.
func (h *PlanificationHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	previews, err := h.service.PreviewConflicts(r.Context(), id)
	if err != nil {
		h.log(r.Context(), "Conflicts", "planification_id", id).ErrorContext(r.Context(), "conflict preview failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]conflictPreviewDTO, 0, len(previews))
	for _, preview := range previews {
		dtos = append(dtos, toConflictPreviewDTO(preview))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, conflictPreviewResponse{Conflicts: dtos})
}

func requirePrincipal(w http.ResponseWriter, r *http.Request, resp responder) (application.Principal, bool) {
	principal, ok := PrincipalFromContext(r.Context())
	if !ok || strings.TrimSpace(principal.UserID) == "" {
		resp.writeError(r.Context(), w, http.StatusUnauthorized, errMissingUser)
		return application.Principal{}, false
	}
	return principal, true
}

type planificationRequest struct {
	Title           string   `json:"title"`
	Subject         string   `json:"subject"`
	Start           string   `json:"start"`
	DurationMinutes int      `json:"duration_minutes"`
	RoomID          *string  `json:"room_id"`
	LocationID      *string  `json:"location_id"`
	EquipmentIDs    []string `json:"equipment_ids"`
	AgendaLines     []string `json:"agenda_lines"`
	External        bool     `json:"external"`
	OffSite         bool     `json:"off_site"`
	HasPV           bool     `json:"has_pv"`
	SyncCalendar    bool     `json:"sync_calendar"`
}

func (r planificationRequest) toInput() (application.PlanificationInput, error) {
	start, err := time.Parse(time.RFC3339, r.Start)
	if err != nil {
		return application.PlanificationInput{}, errBadRequestBody
	}
	return application.PlanificationInput{
		Title:        strings.TrimSpace(r.Title),
		Subject:      strings.TrimSpace(r.Subject),
		Start:        start,
		Duration:     time.Duration(r.DurationMinutes) * time.Minute,
		RoomID:       r.RoomID,
		LocationID:   r.LocationID,
		EquipmentIDs: r.EquipmentIDs,
		AgendaLines:  r.AgendaLines,
		External:     r.External,
		OffSite:      r.OffSite,
		HasPV:        r.HasPV,
		SyncCalendar: r.SyncCalendar,
	}, nil
}

type planificationResponse struct {
	Planification planificationDTO `json:"planification"`
}

type listPlanificationsResponse struct {
	Planifications []planificationDTO `json:"planifications"`
}

type startResponse struct {
	Meeting    meetingDTO  `json:"meeting"`
	OwnSession *sessionDTO `json:"own_session,omitempty"`
}

type conflictPreviewResponse struct {
	Conflicts []conflictPreviewDTO `json:"conflicts"`
}

type conflictPreviewDTO struct {
	ResourceKind    string `json:"resource_kind"`
	ResourceID      string `json:"resource_id"`
	ResourceLabel   string `json:"resource_label,omitempty"`
	ReservationID   string `json:"reservation_id"`
	PlanificationID string `json:"planification_id"`
	Start           string `json:"start"`
	End             string `json:"end"`
}

func toConflictPreviewDTO(preview application.ConflictPreview) conflictPreviewDTO {
	return conflictPreviewDTO{
		ResourceKind:    preview.ResourceKind,
		ResourceID:      preview.ResourceID,
		ResourceLabel:   preview.ResourceLabel,
		ReservationID:   preview.ReservationID,
		PlanificationID: preview.PlanificationID,
		Start:           preview.Start.UTC().Format(time.RFC3339),
		End:             preview.End.UTC().Format(time.RFC3339),
	}
}

type planificationDTO struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Subject         string   `json:"subject,omitempty"`
	State           string   `json:"state"`
	Start           string   `json:"start"`
	DurationMinutes int      `json:"duration_minutes"`
	End             string   `json:"end"`
	RoomID          *string  `json:"room_id,omitempty"`
	LocationID      *string  `json:"location_id,omitempty"`
	EquipmentIDs    []string `json:"equipment_ids,omitempty"`
	AgendaLines     []string `json:"agenda_lines,omitempty"`
	External        bool     `json:"external"`
	OffSite         bool     `json:"off_site"`
	HasPV           bool     `json:"has_pv"`
	SyncCalendar    bool     `json:"sync_calendar"`
	CalendarEventID *string  `json:"calendar_event_id,omitempty"`
	MeetingID       *string  `json:"meeting_id,omitempty"`
	CreatedBy       string   `json:"created_by"`
	CreatedAt       string   `json:"created_at"`
	UpdatedAt       string   `json:"updated_at"`
}

func toPlanificationDTO(plan application.Planification) planificationDTO {
	return planificationDTO{
		ID:              plan.ID,
		Title:           plan.Title,
		Subject:         plan.Subject,
		State:           string(plan.State),
		Start:           plan.Start.UTC().Format(time.RFC3339),
		DurationMinutes: int(plan.Duration / time.Minute),
		End:             plan.End().UTC().Format(time.RFC3339),
		RoomID:          plan.RoomID,
		LocationID:      plan.LocationID,
		EquipmentIDs:    plan.EquipmentIDs,
		AgendaLines:     plan.AgendaLines,
		External:        plan.External,
		OffSite:         plan.OffSite,
		HasPV:           plan.HasPV,
		SyncCalendar:    plan.SyncCalendar,
		CalendarEventID: plan.CalendarEventID,
		MeetingID:       plan.MeetingID,
		CreatedBy:       plan.CreatedBy,
		CreatedAt:       plan.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       plan.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

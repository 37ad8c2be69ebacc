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

type actionService interface {
	CreateAction(ctx context.Context, principal application.Principal, input application.ActionInput) (application.Action, error)
	GetAction(ctx context.Context, id string) (application.Action, error)
	ListActions(ctx context.Context, query application.ActionQuery) ([]application.Action, error)
	UpdateAction(ctx context.Context, principal application.Principal, id string, input application.ActionInput) (application.Action, error)
	UpdateStatus(ctx context.Context, principal application.Principal, id string, status application.ActionStatus) (application.Action, error)
	Reparent(ctx context.Context, principal application.Principal, id string, parentID *string) (application.Action, error)
	DeleteAction(ctx context.Context, principal application.Principal, id string) error
}

type ActionHandler struct {
	service   actionService
	responder responder
	logger    *slog.Logger
}

func NewActionHandler(service actionService, logger *slog.Logger) *ActionHandler {
	base := defaultLogger(logger)
	return &ActionHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ActionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ActionHandler", operation, attrs...)
}

func (h *ActionHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)
	action, err := h.service.CreateAction(r.Context(), principal, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "action creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("action_id", action.ID).InfoContext(r.Context(), "action created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, actionResponse{Action: toActionDTO(action)})
}

func (h *ActionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	action, err := h.service.GetAction(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, actionResponse{Action: toActionDTO(action)})
}

func (h *ActionHandler) List(w http.ResponseWriter, r *http.Request) {
	query := application.ActionQuery{}
	params := r.URL.Query()
	if value := params.Get("meeting_id"); value != "" {
		query.MeetingID = &value
	}
	if value := params.Get("session_id"); value != "" {
		query.SessionID = &value
	}
	if value := params.Get("parent_id"); value != "" {
		query.ParentID = &value
	}
	if value := params.Get("assignee_id"); value != "" {
		query.AssigneeID = &value
	}

	actions, err := h.service.ListActions(r.Context(), query)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "action list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]actionDTO, 0, len(actions))
	for _, action := range actions {
		dtos = append(dtos, toActionDTO(action))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listActionsResponse{Actions: dtos})
}

func (h *ActionHandler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "action_id", id)
	action, err := h.service.UpdateAction(r.Context(), principal, id, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "action update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "action updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, actionResponse{Action: toActionDTO(action)})
}

// UpdateStatus moves the action through its workflow, cascading completion
// to the parent when the last open child closes.
func (h *ActionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "UpdateStatus", "principal_id", principal.UserID, "action_id", id, "status", req.Status)
	action, err := h.service.UpdateStatus(r.Context(), principal, id, application.ActionStatus(req.Status))
	if err != nil {
		logger.ErrorContext(r.Context(), "status update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "status updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, actionResponse{Action: toActionDTO(action)})
}

// Reparent moves the action under a new parent, or to the top level when
// parent_id is null.
func (h *ActionHandler) Reparent(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req reparentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Reparent", "principal_id", principal.UserID, "action_id", id)
	action, err := h.service.Reparent(r.Context(), principal, id, req.ParentID)
	if err != nil {
		logger.ErrorContext(r.Context(), "reparent failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "action reparented")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, actionResponse{Action: toActionDTO(action)})
}

func (h *ActionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "action_id", id)
	if err := h.service.DeleteAction(r.Context(), principal, id); err != nil {
		logger.ErrorContext(r.Context(), "action delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "action deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type actionRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	AssigneeID  *string `json:"assignee_id"`
	MeetingID   *string `json:"meeting_id"`
	SessionID   *string `json:"session_id"`
	ParentID    *string `json:"parent_id"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
}

func (r actionRequest) toInput() (application.ActionInput, error) {
	input := application.ActionInput{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
		AssigneeID:  r.AssigneeID,
		MeetingID:   r.MeetingID,
		SessionID:   r.SessionID,
		ParentID:    r.ParentID,
		Priority:    application.ActionPriority(r.Priority),
	}
	if r.DueDate != nil && *r.DueDate != "" {
		due, err := time.Parse(time.RFC3339, *r.DueDate)
		if err != nil {
			return application.ActionInput{}, errBadRequestBody
		}
		input.DueDate = &due
	}
	return input, nil
}

type statusRequest struct {
	Status string `json:"status"`
}

type reparentRequest struct {
	ParentID *string `json:"parent_id"`
}

type actionResponse struct {
	Action actionDTO `json:"action"`
}

type listActionsResponse struct {
	Actions []actionDTO `json:"actions"`
}

type actionDTO struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
	MeetingID   *string `json:"meeting_id,omitempty"`
	SessionID   *string `json:"session_id,omitempty"`
	ParentID    *string `json:"parent_id,omitempty"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	DueDate     *string `json:"due_date,omitempty"`
	CompletedAt *string `json:"completed_at,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toActionDTO(action application.Action) actionDTO {
	return actionDTO{
		ID:          action.ID,
		Title:       action.Title,
		Description: action.Description,
		AssigneeID:  action.AssigneeID,
		MeetingID:   action.MeetingID,
		SessionID:   action.SessionID,
		ParentID:    action.ParentID,
		Priority:    string(action.Priority),
		Status:      string(action.Status),
		DueDate:     formatOptionalTime(action.DueDate),
		CompletedAt: formatOptionalTime(action.CompletedAt),
		CreatedAt:   action.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   action.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

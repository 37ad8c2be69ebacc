package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/meeting-planner/internal/application"
)

type invitationService interface {
	Respond(ctx context.Context, planificationID, participantID, token string, accept bool) (application.RespondResult, error)
}

// InvitationHandler serves the public, tokenized invitation endpoint. It is
// the only surface reachable without a principal.
type InvitationHandler struct {
	service   invitationService
	responder responder
	logger    *slog.Logger
}

func NewInvitationHandler(service invitationService, logger *slog.Logger) *InvitationHandler {
	base := defaultLogger(logger)
	return &InvitationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *InvitationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "InvitationHandler", operation, attrs...)
}

// Respond records the invitee's answer. Every failure mode renders the same
// generic message so the endpoint cannot be probed for valid participant ids.
func (h *InvitationHandler) Respond(w http.ResponseWriter, r *http.Request, planificationID, participantID, token string) {
	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Respond", "planification_id", planificationID, "participant_id", participantID)
	result, err := h.service.Respond(r.Context(), planificationID, participantID, token, req.Accept)
	if err != nil {
		logger.ErrorContext(r.Context(), "invitation response failed", "error", err, "error_kind", application.ErrorKind(err))
		if errors.Is(err, application.ErrInvalidToken) ||
			errors.Is(err, application.ErrParticipantMismatch) ||
			errors.Is(err, application.ErrNotFound) {
			h.responder.writeJSON(r.Context(), w, http.StatusNotFound, errorResponse{Message: invitationLinkMessage})
			return
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", string(result.Status), "already_responded", result.AlreadyResponded).InfoContext(r.Context(), "invitation answered")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, respondResponse{
		Status:           string(result.Status),
		AlreadyResponded: result.AlreadyResponded,
	})
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

type respondResponse struct {
	Status           string `json:"status"`
	AlreadyResponded bool   `json:"already_responded"`
}

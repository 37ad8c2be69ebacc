package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/meeting-planner/internal/application"
)

type participantService interface {
	AddParticipant(ctx context.Context, principal application.Principal, planificationID string, identity application.Identity, roleID *string, isPV bool) (application.Participant, error)
	AssignRole(ctx context.Context, principal application.Principal, participantID string, roleID *string, isPV bool) (application.Participant, error)
	RemoveParticipant(ctx context.Context, principal application.Principal, participantID string) error
	ListParticipants(ctx context.Context, planificationID string) ([]application.Participant, error)
	GenerateToken(ctx context.Context, principal application.Principal, participantID string) (string, error)
}

type ParticipantHandler struct {
	service   participantService
	responder responder
	logger    *slog.Logger
}

func NewParticipantHandler(service participantService, logger *slog.Logger) *ParticipantHandler {
	base := defaultLogger(logger)
	return &ParticipantHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ParticipantHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ParticipantHandler", operation, attrs...)
}

// Add invites an identity to the planification identified in the path.
func (h *ParticipantHandler) Add(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	planificationID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req participantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Add", "principal_id", principal.UserID, "planification_id", planificationID)
	participant, err := h.service.AddParticipant(r.Context(), principal, planificationID, application.Identity{
		EmployeeID: req.EmployeeID,
		PartnerID:  req.PartnerID,
	}, req.RoleID, req.IsPV)
	if err != nil {
		logger.ErrorContext(r.Context(), "participant creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("participant_id", participant.ID).InfoContext(r.Context(), "participant added")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, participantResponse{Participant: toParticipantDTO(participant)})
}

// List returns the participants of the planification identified in the path.
func (h *ParticipantHandler) List(w http.ResponseWriter, r *http.Request) {
	planificationID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	participants, err := h.service.ListParticipants(r.Context(), planificationID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]participantDTO, 0, len(participants))
	for _, participant := range participants {
		dtos = append(dtos, toParticipantDTO(participant))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listParticipantsResponse{Participants: dtos})
}

// AssignRole changes the participant's role or PV writer flag.
func (h *ParticipantHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	participantID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req assignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AssignRole", "principal_id", principal.UserID, "participant_id", participantID)
	participant, err := h.service.AssignRole(r.Context(), principal, participantID, req.RoleID, req.IsPV)
	if err != nil {
		logger.ErrorContext(r.Context(), "role assignment failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("role_name", participant.RoleName).InfoContext(r.Context(), "role assigned")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, participantResponse{Participant: toParticipantDTO(participant)})
}

// Remove deletes the participant.
func (h *ParticipantHandler) Remove(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	participantID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	logger := h.log(r.Context(), "Remove", "principal_id", principal.UserID, "participant_id", participantID)
	if err := h.service.RemoveParticipant(r.Context(), principal, participantID); err != nil {
		logger.ErrorContext(r.Context(), "participant removal failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "participant removed")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// GenerateToken issues (or re-reads) the participant's invitation token.
func (h *ParticipantHandler) GenerateToken(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	participantID, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	logger := h.log(r.Context(), "GenerateToken", "principal_id", principal.UserID, "participant_id", participantID)
	token, err := h.service.GenerateToken(r.Context(), principal, participantID)
	if err != nil {
		logger.ErrorContext(r.Context(), "token generation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "token generated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, tokenResponse{Token: token})
}

type participantRequest struct {
	EmployeeID *string `json:"employee_id"`
	PartnerID  *string `json:"partner_id"`
	RoleID     *string `json:"role_id"`
	IsPV       bool    `json:"is_pv"`
}

type assignRoleRequest struct {
	RoleID *string `json:"role_id"`
	IsPV   bool    `json:"is_pv"`
}

type participantResponse struct {
	Participant participantDTO `json:"participant"`
}

type listParticipantsResponse struct {
	Participants []participantDTO `json:"participants"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type participantDTO struct {
	ID               string  `json:"id"`
	PlanificationID  string  `json:"planification_id"`
	MeetingID        *string `json:"meeting_id,omitempty"`
	EmployeeID       *string `json:"employee_id,omitempty"`
	PartnerID        *string `json:"partner_id,omitempty"`
	Name             string  `json:"name"`
	Email            string  `json:"email,omitempty"`
	RoleID           *string `json:"role_id,omitempty"`
	RoleName         string  `json:"role_name,omitempty"`
	IsPV             bool    `json:"is_pv"`
	InvitationStatus string  `json:"invitation_status"`
	CreatedAt        string  `json:"created_at"`
}

func toParticipantDTO(participant application.Participant) participantDTO {
	// The access token is deliberately absent: it only travels inside
	// invitation links.
	return participantDTO{
		ID:               participant.ID,
		PlanificationID:  participant.PlanificationID,
		MeetingID:        participant.MeetingID,
		EmployeeID:       participant.Identity.EmployeeID,
		PartnerID:        participant.Identity.PartnerID,
		Name:             participant.Name,
		Email:            participant.Email,
		RoleID:           participant.RoleID,
		RoleName:         participant.RoleName,
		IsPV:             participant.IsPV,
		InvitationStatus: string(participant.InvitationStatus),
		CreatedAt:        participant.CreatedAt.UTC().Format(time.RFC3339),
	}
}

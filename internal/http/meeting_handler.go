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

type meetingService interface {
	GetMeeting(ctx context.Context, id string) (application.Meeting, error)
	Join(ctx context.Context, principal application.Principal, meetingID string) (application.Session, error)
	Leave(ctx context.Context, principal application.Principal, meetingID string) (application.Session, error)
	Complete(ctx context.Context, principal application.Principal, meetingID, pv string) (application.Meeting, error)
	AddNote(ctx context.Context, principal application.Principal, meetingID, content string) (application.MeetingNote, error)
	AddDecision(ctx context.Context, principal application.Principal, meetingID string, decision application.MeetingDecision) (application.MeetingDecision, error)
	ListNotes(ctx context.Context, meetingID string) ([]application.MeetingNote, error)
	ListDecisions(ctx context.Context, meetingID string) ([]application.MeetingDecision, error)
	GenerateSummary(ctx context.Context, principal application.Principal, meetingID string) (application.MeetingSummary, error)
	GetSummary(ctx context.Context, meetingID string) (application.MeetingSummary, error)
}

type MeetingHandler struct {
	service   meetingService
	responder responder
	logger    *slog.Logger
}

func NewMeetingHandler(service meetingService, logger *slog.Logger) *MeetingHandler {
	base := defaultLogger(logger)
	return &MeetingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *MeetingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "MeetingHandler", operation, attrs...)
}

func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	meeting, err := h.service.GetMeeting(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func (h *MeetingHandler) Join(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	logger := h.log(r.Context(), "Join", "principal_id", principal.UserID, "meeting_id", id)
	session, err := h.service.Join(r.Context(), principal, id)
	if err != nil {
		logger.ErrorContext(r.Context(), "meeting join failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("attendance", string(session.Attendance)).InfoContext(r.Context(), "participant joined")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
}

func (h *MeetingHandler) Leave(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	logger := h.log(r.Context(), "Leave", "principal_id", principal.UserID, "meeting_id", id)
	session, err := h.service.Leave(r.Context(), principal, id)
	if err != nil {
		logger.ErrorContext(r.Context(), "meeting leave failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "participant left")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
}

func (h *MeetingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req completeMeetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Complete", "principal_id", principal.UserID, "meeting_id", id)
	meeting, err := h.service.Complete(r.Context(), principal, id, req.PV)
	if err != nil {
		logger.ErrorContext(r.Context(), "meeting completion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "meeting completed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, meetingResponse{Meeting: toMeetingDTO(meeting)})
}

func (h *MeetingHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	note, err := h.service.AddNote(r.Context(), principal, id, strings.TrimSpace(req.Content))
	if err != nil {
		h.log(r.Context(), "AddNote", "meeting_id", id).ErrorContext(r.Context(), "note creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, noteResponse{Note: toNoteDTO(note)})
}

func (h *MeetingHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	notes, err := h.service.ListNotes(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]noteDTO, 0, len(notes))
	for _, note := range notes {
		dtos = append(dtos, toNoteDTO(note))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listNotesResponse{Notes: dtos})
}

func (h *MeetingHandler) AddDecision(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	decision, err := h.service.AddDecision(r.Context(), principal, id, application.MeetingDecision{
		Title:  strings.TrimSpace(req.Title),
		Detail: strings.TrimSpace(req.Detail),
		Impact: strings.TrimSpace(req.Impact),
	})
	if err != nil {
		h.log(r.Context(), "AddDecision", "meeting_id", id).ErrorContext(r.Context(), "decision creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, decisionResponse{Decision: toDecisionDTO(decision)})
}

func (h *MeetingHandler) ListDecisions(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	decisions, err := h.service.ListDecisions(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	dtos := make([]decisionDTO, 0, len(decisions))
	for _, decision := range decisions {
		dtos = append(dtos, toDecisionDTO(decision))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listDecisionsResponse{Decisions: dtos})
}

func (h *MeetingHandler) GenerateSummary(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r, h.responder)
	if !ok {
		return
	}
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	logger := h.log(r.Context(), "GenerateSummary", "principal_id", principal.UserID, "meeting_id", id)
	summary, err := h.service.GenerateSummary(r.Context(), principal, id)
	if err != nil {
		logger.ErrorContext(r.Context(), "summary generation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("model", summary.Model).InfoContext(r.Context(), "summary generated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, summaryResponse{Summary: toSummaryDTO(summary)})
}

func (h *MeetingHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id, ok := ResourceIDFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidID)
		return
	}

	summary, err := h.service.GetSummary(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, summaryResponse{Summary: toSummaryDTO(summary)})
}

type completeMeetingRequest struct {
	PV string `json:"pv"`
}

type noteRequest struct {
	Content string `json:"content"`
}

type decisionRequest struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Impact string `json:"impact"`
}

type meetingResponse struct {
	Meeting meetingDTO `json:"meeting"`
}

type sessionResponse struct {
	Session sessionDTO `json:"session"`
}

type noteResponse struct {
	Note noteDTO `json:"note"`
}

type listNotesResponse struct {
	Notes []noteDTO `json:"notes"`
}

type decisionResponse struct {
	Decision decisionDTO `json:"decision"`
}

type listDecisionsResponse struct {
	Decisions []decisionDTO `json:"decisions"`
}

type summaryResponse struct {
	Summary summaryDTO `json:"summary"`
}

type meetingDTO struct {
	ID              string   `json:"id"`
	PlanificationID string   `json:"planification_id"`
	Title           string   `json:"title"`
	Subject         string   `json:"subject,omitempty"`
	State           string   `json:"state"`
	Start           string   `json:"start"`
	DurationMinutes int      `json:"duration_minutes"`
	RoomID          *string  `json:"room_id,omitempty"`
	LocationID      *string  `json:"location_id,omitempty"`
	AgendaLines     []string `json:"agenda_lines,omitempty"`
	ActualStart     *string  `json:"actual_start,omitempty"`
	ActualEnd       *string  `json:"actual_end,omitempty"`
	PV              string   `json:"pv,omitempty"`
}

func toMeetingDTO(meeting application.Meeting) meetingDTO {
	return meetingDTO{
		ID:              meeting.ID,
		PlanificationID: meeting.PlanificationID,
		Title:           meeting.Title,
		Subject:         meeting.Subject,
		State:           string(meeting.State),
		Start:           meeting.Start.UTC().Format(time.RFC3339),
		DurationMinutes: int(meeting.Duration / time.Minute),
		RoomID:          meeting.RoomID,
		LocationID:      meeting.LocationID,
		AgendaLines:     meeting.AgendaLines,
		ActualStart:     formatOptionalTime(meeting.ActualStart),
		ActualEnd:       formatOptionalTime(meeting.ActualEnd),
		PV:              meeting.PV,
	}
}

type sessionDTO struct {
	ID            string  `json:"id"`
	MeetingID     string  `json:"meeting_id"`
	ParticipantID string  `json:"participant_id"`
	UserID        string  `json:"user_id"`
	State         string  `json:"state"`
	Attendance    string  `json:"attendance"`
	JoinedAt      *string `json:"joined_at,omitempty"`
	LeftAt        *string `json:"left_at,omitempty"`
}

func toSessionDTO(session application.Session) sessionDTO {
	return sessionDTO{
		ID:            session.ID,
		MeetingID:     session.MeetingID,
		ParticipantID: session.ParticipantID,
		UserID:        session.UserID,
		State:         string(session.State),
		Attendance:    string(session.Attendance),
		JoinedAt:      formatOptionalTime(session.JoinedAt),
		LeftAt:        formatOptionalTime(session.LeftAt),
	}
}

type noteDTO struct {
	ID        string `json:"id"`
	MeetingID string `json:"meeting_id"`
	AuthorID  string `json:"author_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func toNoteDTO(note application.MeetingNote) noteDTO {
	return noteDTO{
		ID:        note.ID,
		MeetingID: note.MeetingID,
		AuthorID:  note.AuthorID,
		Content:   note.Content,
		CreatedAt: note.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type decisionDTO struct {
	ID        string `json:"id"`
	MeetingID string `json:"meeting_id"`
	Title     string `json:"title"`
	Detail    string `json:"detail,omitempty"`
	DecidedBy string `json:"decided_by,omitempty"`
	Impact    string `json:"impact,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toDecisionDTO(decision application.MeetingDecision) decisionDTO {
	return decisionDTO{
		ID:        decision.ID,
		MeetingID: decision.MeetingID,
		Title:     decision.Title,
		Detail:    decision.Detail,
		DecidedBy: decision.DecidedBy,
		Impact:    decision.Impact,
		CreatedAt: decision.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type summaryDTO struct {
	MeetingID        string `json:"meeting_id"`
	Model            string `json:"model,omitempty"`
	ExecutiveSummary string `json:"executive_summary"`
	KeyDecisions     string `json:"key_decisions"`
	ActionItems      string `json:"action_items"`
	DiscussionPoints string `json:"discussion_points"`
	GeneratedAt      string `json:"generated_at"`
}

func toSummaryDTO(summary application.MeetingSummary) summaryDTO {
	return summaryDTO{
		MeetingID:        summary.MeetingID,
		Model:            summary.Model,
		ExecutiveSummary: summary.Sections.ExecutiveSummary,
		KeyDecisions:     summary.Sections.KeyDecisions,
		ActionItems:      summary.Sections.ActionItems,
		DiscussionPoints: summary.Sections.DiscussionPoints,
		GeneratedAt:      summary.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	value := t.UTC().Format(time.RFC3339)
	return &value
}

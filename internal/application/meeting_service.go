package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
)

// MeetingStore is the meeting persistence surface used by MeetingService.
type MeetingStore interface {
	// CreateMeeting inserts the meeting; a second meeting for the same
	// planification returns persistence.ErrDuplicate.
	CreateMeeting(ctx context.Context, meeting Meeting) (Meeting, error)
	GetMeeting(ctx context.Context, id string) (Meeting, error)
	UpdateMeeting(ctx context.Context, meeting Meeting) (Meeting, error)
	// UpdateMeetingState returns persistence.ErrStale when the stored state
	// no longer matches from.
	UpdateMeetingState(ctx context.Context, id string, from, to MeetingState) error

	AddNote(ctx context.Context, note MeetingNote) (MeetingNote, error)
	ListNotes(ctx context.Context, meetingID string) ([]MeetingNote, error)
	AddDecision(ctx context.Context, decision MeetingDecision) (MeetingDecision, error)
	ListDecisions(ctx context.Context, meetingID string) ([]MeetingDecision, error)

	SaveSummary(ctx context.Context, summary MeetingSummary) error
	GetSummary(ctx context.Context, meetingID string) (MeetingSummary, error)
}

// SessionStore is the session persistence surface used by MeetingService.
type SessionStore interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	GetSessionByMeetingAndUser(ctx context.Context, meetingID, userID string) (Session, error)
	ListSessions(ctx context.Context, meetingID string) ([]Session, error)
}

// ParticipantLinker stamps the materialized meeting onto the roster.
type ParticipantLinker interface {
	LinkMeeting(ctx context.Context, planificationID, meetingID string) error
}

// MeetingActions lists the action items attached to a meeting, used when
// assembling the summary input.
type MeetingActions interface {
	ListActionsByMeeting(ctx context.Context, meetingID string) ([]Action, error)
}

// MeetingService runs the live phase: it materializes meetings from started
// planifications, tracks per-user sessions and attendance, and produces the
// minutes and AI summary of completed meetings.
type MeetingService struct {
	meetings     MeetingStore
	sessions     SessionStore
	participants ParticipantLinker
	actions      MeetingActions
	exporter     MinutesExporter
	summaries    SummaryClient
	tolerance    time.Duration
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewMeetingService wires dependencies for the live phase. tolerance is how
// late a join may be and still count as present.
func NewMeetingService(meetings MeetingStore, sessions SessionStore, participants ParticipantLinker, actions MeetingActions, exporter MinutesExporter, summaries SummaryClient, tolerance time.Duration, idGenerator func() string, now func() time.Time, logger *slog.Logger) *MeetingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &MeetingService{
		meetings:     meetings,
		sessions:     sessions,
		participants: participants,
		actions:      actions,
		exporter:     exporter,
		summaries:    summaries,
		tolerance:    tolerance,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *MeetingService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "MeetingService", operation, attrs...)
}

// Materialize creates the meeting for a started planification, stamps it on
// every participant, and spawns one session per participant with a user
// account. The acting user joins immediately; everyone else starts awaiting.
func (s *MeetingService) Materialize(ctx context.Context, plan Planification, participants []Participant, actingUserID string) (meeting Meeting, ownSession *Session, err error) {
	logger := s.loggerWith(ctx, "Materialize", "planification_id", plan.ID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to materialize meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("meeting_id", meeting.ID).InfoContext(ctx, "meeting materialized")
	}()

	now := s.now()
	meeting = Meeting{
		ID:              s.idGenerator(),
		PlanificationID: plan.ID,
		Title:           plan.Title,
		Subject:         plan.Subject,
		State:           MeetingInProgress,
		Start:           plan.Start,
		Duration:        plan.Duration,
		RoomID:          plan.RoomID,
		LocationID:      plan.LocationID,
		AgendaLines:     plan.AgendaLines,
		ActualStart:     &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	meeting, err = s.meetings.CreateMeeting(ctx, meeting)
	if err != nil {
		if errors.Is(err, persistence.ErrDuplicate) {
			err = ErrAlreadyMaterialized
			return
		}
		err = mapRepoError(err)
		return
	}

	if err = s.participants.LinkMeeting(ctx, plan.ID, meeting.ID); err != nil {
		err = mapRepoError(err)
		return
	}

	for _, p := range participants {
		if !p.HasUser() {
			// External contacts without accounts attend off the record.
			continue
		}
		session := Session{
			ID:            s.idGenerator(),
			MeetingID:     meeting.ID,
			ParticipantID: p.ID,
			UserID:        *p.UserID,
			State:         SessionInProgress,
			Attendance:    AttendanceAwaiting,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if session.UserID == actingUserID {
			joined := now
			session.JoinedAt = &joined
			session.Attendance = s.attendanceAt(meeting, joined)
		}
		session, err = s.sessions.CreateSession(ctx, session)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		if session.UserID == actingUserID {
			own := session
			ownSession = &own
		}
	}
	return
}

// GetMeeting returns a single meeting.
func (s *MeetingService) GetMeeting(ctx context.Context, id string) (Meeting, error) {
	meeting, err := s.meetings.GetMeeting(ctx, id)
	if err != nil {
		return Meeting{}, mapRepoError(err)
	}
	return meeting, nil
}

// Join records the acting user's arrival. Attendance is computed once, at
// first join, against the meeting's actual start; repeated joins are no-ops
// returning the existing session.
func (s *MeetingService) Join(ctx context.Context, principal Principal, meetingID string) (session Session, err error) {
	logger := s.loggerWith(ctx, "Join", "principal_id", principal.UserID, "meeting_id", meetingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to join meeting", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	var meeting Meeting
	meeting, err = s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if meeting.State != MeetingInProgress {
		err = &PreconditionError{Reason: fmt.Sprintf("meeting is %s, not in progress", meeting.State)}
		return
	}

	session, err = s.sessions.GetSessionByMeetingAndUser(ctx, meetingID, principal.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrUnauthorized
			return
		}
		err = mapRepoError(err)
		return
	}
	if session.JoinedAt != nil {
		return
	}

	joined := s.now()
	session.JoinedAt = &joined
	session.Attendance = s.attendanceAt(meeting, joined)
	session.UpdatedAt = joined
	session, err = s.sessions.UpdateSession(ctx, session)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// Leave records the acting user's departure and closes their session.
func (s *MeetingService) Leave(ctx context.Context, principal Principal, meetingID string) (session Session, err error) {
	logger := s.loggerWith(ctx, "Leave", "principal_id", principal.UserID, "meeting_id", meetingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to leave meeting", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	session, err = s.sessions.GetSessionByMeetingAndUser(ctx, meetingID, principal.UserID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			err = ErrUnauthorized
			return
		}
		err = mapRepoError(err)
		return
	}
	if session.State != SessionInProgress {
		return
	}

	now := s.now()
	session.LeftAt = &now
	session.State = SessionDone
	session.UpdatedAt = now
	session, err = s.sessions.UpdateSession(ctx, session)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// Complete closes the meeting: it stamps the actual end, stores the PV
// text, exports the minutes, and closes every open session. Participants who
// never joined are marked absent.
func (s *MeetingService) Complete(ctx context.Context, principal Principal, meetingID, pv string) (meeting Meeting, err error) {
	logger := s.loggerWith(ctx, "Complete", "principal_id", principal.UserID, "meeting_id", meetingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to complete meeting", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "meeting completed")
	}()

	meeting, err = s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if meeting.State != MeetingInProgress {
		err = &PreconditionError{Reason: fmt.Sprintf("meeting is %s, not in progress", meeting.State)}
		return
	}

	if err = s.meetings.UpdateMeetingState(ctx, meetingID, MeetingInProgress, MeetingDone); err != nil {
		if errors.Is(err, persistence.ErrStale) {
			err = &PreconditionError{Reason: "meeting is no longer in progress"}
			return
		}
		err = mapRepoError(err)
		return
	}

	now := s.now()
	meeting.State = MeetingDone
	meeting.ActualEnd = &now
	meeting.PV = pv
	meeting.UpdatedAt = now
	meeting, err = s.meetings.UpdateMeeting(ctx, meeting)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	var sessions []Session
	sessions, err = s.sessions.ListSessions(ctx, meetingID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	for _, session := range sessions {
		if session.State != SessionInProgress {
			continue
		}
		session.State = SessionDone
		if session.JoinedAt == nil && session.Attendance == AttendanceAwaiting {
			session.Attendance = AttendanceAbsent
		}
		if session.LeftAt == nil {
			left := now
			session.LeftAt = &left
		}
		session.UpdatedAt = now
		if _, uErr := s.sessions.UpdateSession(ctx, session); uErr != nil {
			logger.WarnContext(ctx, "failed to close session", "session_id", session.ID, "error", uErr)
		}
	}

	if s.exporter != nil && strings.TrimSpace(meeting.PV) != "" {
		if eErr := s.exporter.ExportMinutes(ctx, meeting); eErr != nil {
			logger.WarnContext(ctx, "minutes export failed", "error", eErr)
		}
	}
	return
}

// AddNote appends a note to a meeting in progress.
func (s *MeetingService) AddNote(ctx context.Context, principal Principal, meetingID, content string) (MeetingNote, error) {
	if strings.TrimSpace(content) == "" {
		vErr := &ValidationError{}
		vErr.add("content", "note content is required")
		return MeetingNote{}, vErr
	}
	if err := s.requireInProgress(ctx, meetingID); err != nil {
		return MeetingNote{}, err
	}
	note := MeetingNote{
		ID:        s.idGenerator(),
		MeetingID: meetingID,
		AuthorID:  principal.UserID,
		Content:   content,
		CreatedAt: s.now(),
	}
	note, err := s.meetings.AddNote(ctx, note)
	if err != nil {
		return MeetingNote{}, mapRepoError(err)
	}
	return note, nil
}

// AddDecision records a decision taken during a meeting in progress.
func (s *MeetingService) AddDecision(ctx context.Context, principal Principal, meetingID string, decision MeetingDecision) (MeetingDecision, error) {
	vErr := &ValidationError{}
	if strings.TrimSpace(decision.Title) == "" {
		vErr.add("title", "decision title is required")
	}
	if vErr.HasErrors() {
		return MeetingDecision{}, vErr
	}
	if err := s.requireInProgress(ctx, meetingID); err != nil {
		return MeetingDecision{}, err
	}
	decision.ID = s.idGenerator()
	decision.MeetingID = meetingID
	decision.DecidedBy = principal.UserID
	decision.CreatedAt = s.now()
	decision, err := s.meetings.AddDecision(ctx, decision)
	if err != nil {
		return MeetingDecision{}, mapRepoError(err)
	}
	return decision, nil
}

// ListNotes returns the notes of a meeting.
func (s *MeetingService) ListNotes(ctx context.Context, meetingID string) ([]MeetingNote, error) {
	notes, err := s.meetings.ListNotes(ctx, meetingID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return notes, nil
}

// ListDecisions returns the decisions of a meeting.
func (s *MeetingService) ListDecisions(ctx context.Context, meetingID string) ([]MeetingDecision, error) {
	decisions, err := s.meetings.ListDecisions(ctx, meetingID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return decisions, nil
}

// GenerateSummary assembles the meeting's notes, decisions, and actions,
// asks the summary client for tagged text, parses it into sections, and
// stores the result. Sections missing from the response come back empty.
func (s *MeetingService) GenerateSummary(ctx context.Context, principal Principal, meetingID string) (summary MeetingSummary, err error) {
	logger := s.loggerWith(ctx, "GenerateSummary", "principal_id", principal.UserID, "meeting_id", meetingID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to generate summary", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("model", summary.Model).InfoContext(ctx, "summary generated")
	}()

	if s.summaries == nil {
		err = &PreconditionError{Reason: "no summary backend is configured"}
		return
	}

	var meeting Meeting
	meeting, err = s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	var input SummaryInput
	input, err = s.buildSummaryInput(ctx, meeting)
	if err != nil {
		return
	}

	text, model, gErr := s.summaries.GenerateSummary(ctx, input)
	if gErr != nil {
		vErr := &ValidationError{}
		vErr.add("summary", fmt.Sprintf("summary generation failed: %v", gErr))
		err = vErr
		return
	}

	summary = MeetingSummary{
		MeetingID:   meetingID,
		RawText:     text,
		Model:       model,
		Sections:    ParseSummarySections(text),
		GeneratedAt: s.now(),
	}
	if err = s.meetings.SaveSummary(ctx, summary); err != nil {
		err = mapRepoError(err)
	}
	return
}

// GetSummary returns the stored summary of a meeting.
func (s *MeetingService) GetSummary(ctx context.Context, meetingID string) (MeetingSummary, error) {
	summary, err := s.meetings.GetSummary(ctx, meetingID)
	if err != nil {
		return MeetingSummary{}, mapRepoError(err)
	}
	return summary, nil
}

func (s *MeetingService) buildSummaryInput(ctx context.Context, meeting Meeting) (SummaryInput, error) {
	notes, err := s.meetings.ListNotes(ctx, meeting.ID)
	if err != nil {
		return SummaryInput{}, mapRepoError(err)
	}
	decisions, err := s.meetings.ListDecisions(ctx, meeting.ID)
	if err != nil {
		return SummaryInput{}, mapRepoError(err)
	}

	input := SummaryInput{
		Title:       meeting.Title,
		Subject:     meeting.Subject,
		Start:       meeting.Start,
		AgendaLines: meeting.AgendaLines,
	}
	for _, note := range notes {
		input.Notes = append(input.Notes, note.Content)
	}
	for _, decision := range decisions {
		line := decision.Title
		if decision.Detail != "" {
			line = fmt.Sprintf("%s: %s", decision.Title, decision.Detail)
		}
		input.Decisions = append(input.Decisions, line)
	}
	if s.actions != nil {
		actions, aErr := s.actions.ListActionsByMeeting(ctx, meeting.ID)
		if aErr != nil {
			return SummaryInput{}, mapRepoError(aErr)
		}
		for _, action := range actions {
			input.Actions = append(input.Actions, fmt.Sprintf("%s [%s]", action.Title, action.Status))
		}
	}
	return input, nil
}

func (s *MeetingService) requireInProgress(ctx context.Context, meetingID string) error {
	meeting, err := s.meetings.GetMeeting(ctx, meetingID)
	if err != nil {
		return mapRepoError(err)
	}
	if meeting.State != MeetingInProgress {
		return &PreconditionError{Reason: fmt.Sprintf("meeting is %s, not in progress", meeting.State)}
	}
	return nil
}

func (s *MeetingService) attendanceAt(meeting Meeting, joined time.Time) AttendanceStatus {
	if meeting.ActualStart == nil {
		return AttendanceAwaiting
	}
	if joined.Sub(*meeting.ActualStart) <= s.tolerance {
		return AttendancePresent
	}
	return AttendanceLate
}

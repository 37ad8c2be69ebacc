package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
	"github.com/example/meeting-planner/internal/scheduler"
)

// PlanificationStore captures the persistence interactions needed by the scheduler.
type PlanificationStore interface {
	CreatePlanification(ctx context.Context, plan Planification) (Planification, error)
	UpdatePlanification(ctx context.Context, plan Planification) (Planification, error)
	GetPlanification(ctx context.Context, id string) (Planification, error)
	ListPlanifications(ctx context.Context, query PlanificationQuery) ([]Planification, error)
	DeletePlanification(ctx context.Context, id string) error

	UpdateState(ctx context.Context, id string, from, to PlanificationState) error
	TransitionToPlanned(ctx context.Context, id string, reservations []Reservation) error
	ReplaceReservations(ctx context.Context, id string, reservations []Reservation) error
	LinkMeeting(ctx context.Context, id, meetingID string) error
	SetCalendarEvent(ctx context.Context, id string, eventID *string) error
}

// PlanificationQuery narrows planification listings.
type PlanificationQuery struct {
	States      []PlanificationState
	StartsAfter *time.Time
	EndsBefore  *time.Time
	RoomID      *string
}

// ParticipantStore is the slice of participant persistence the scheduler needs.
type ParticipantStore interface {
	ListParticipants(ctx context.Context, planificationID string) ([]Participant, error)
	SetAccessTokenIfEmpty(ctx context.Context, participantID, token string) (string, error)
}

// ResourceCatalog resolves resource names for reservation labels and
// conflict messages.
type ResourceCatalog interface {
	RoomName(ctx context.Context, id string) (string, error)
	EquipmentName(ctx context.Context, id string) (string, error)
}

// Materializer converts a started planification into a live meeting with
// per-user sessions. Implemented by MeetingService.
type Materializer interface {
	Materialize(ctx context.Context, plan Planification, participants []Participant, actingUserID string) (Meeting, *Session, error)
}

// ReservationLedger reads the active reservations of a single resource.
// Used by conflict previews; the authoritative overlap check runs inside
// the storage transaction of TransitionToPlanned.
type ReservationLedger interface {
	ListActiveReservations(ctx context.Context, roomID, equipmentID *string) ([]Reservation, error)
}

// ConflictPreview describes one existing reservation that would block
// planning a planification as currently drafted.
type ConflictPreview struct {
	ResourceKind    string
	ResourceID      string
	ResourceLabel   string
	ReservationID   string
	PlanificationID string
	Start           time.Time
	End             time.Time
}

// PlanificationService validates and drives the planning state machine:
// draft, confirmed, planned, started, done, with cancelled reachable from
// any non-terminal state.
type PlanificationService struct {
	plans        PlanificationStore
	participants ParticipantStore
	catalog      ResourceCatalog
	ledger       ReservationLedger
	materializer Materializer
	calendar     CalendarSync
	invitations  InvitationSender
	secret       []byte
	linkBase     string
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewPlanificationService wires dependencies for the scheduler.
func NewPlanificationService(plans PlanificationStore, participants ParticipantStore, catalog ResourceCatalog, ledger ReservationLedger, materializer Materializer, calendar CalendarSync, invitations InvitationSender, secret []byte, linkBase string, idGenerator func() string, now func() time.Time, logger *slog.Logger) *PlanificationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &PlanificationService{
		plans:        plans,
		participants: participants,
		catalog:      catalog,
		ledger:       ledger,
		materializer: materializer,
		calendar:     calendar,
		invitations:  invitations,
		secret:       secret,
		linkBase:     strings.TrimSuffix(linkBase, "/"),
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *PlanificationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "PlanificationService", operation, attrs...)
}

// CreatePlanification validates the request and stores a draft planification.
func (s *PlanificationService) CreatePlanification(ctx context.Context, principal Principal, input PlanificationInput) (plan Planification, err error) {
	logger := s.loggerWith(ctx, "CreatePlanification", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create planification", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("planification_id", plan.ID).InfoContext(ctx, "planification created")
	}()

	if vErr := s.validateInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	plan = Planification{
		ID:           s.idGenerator(),
		Title:        strings.TrimSpace(input.Title),
		Subject:      input.Subject,
		State:        StateDraft,
		Start:        input.Start,
		Duration:     input.Duration,
		RoomID:       input.RoomID,
		LocationID:   input.LocationID,
		EquipmentIDs: uniqueStrings(input.EquipmentIDs),
		AgendaLines:  input.AgendaLines,
		External:     input.External,
		OffSite:      input.OffSite,
		HasPV:        input.HasPV,
		SyncCalendar: input.SyncCalendar,
		CreatedBy:    principal.UserID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if plan.OffSite {
		// Off-site meetings never hold on-site resources.
		plan.RoomID = nil
		plan.EquipmentIDs = nil
	}

	plan, err = s.plans.CreatePlanification(ctx, plan)
	if err != nil {
		err = mapRepoError(err)
	}
	return
}

// UpdatePlanification edits a planification. Room, equipment, and interval
// edits while planned re-run the overlap validation and atomically replace
// the reservations.
func (s *PlanificationService) UpdatePlanification(ctx context.Context, principal Principal, id string, input PlanificationInput) (plan Planification, err error) {
	logger := s.loggerWith(ctx, "UpdatePlanification", "principal_id", principal.UserID, "planification_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update planification", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	var existing Planification
	existing, err = s.plans.GetPlanification(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	switch existing.State {
	case StateDraft, StateConfirmed, StatePlanned:
	default:
		err = &PreconditionError{Reason: fmt.Sprintf("planification in state %q cannot be edited", existing.State)}
		return
	}

	if vErr := s.validateInput(input); vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Title = strings.TrimSpace(input.Title)
	updated.Subject = input.Subject
	updated.Start = input.Start
	updated.Duration = input.Duration
	updated.RoomID = input.RoomID
	updated.LocationID = input.LocationID
	updated.EquipmentIDs = uniqueStrings(input.EquipmentIDs)
	updated.AgendaLines = input.AgendaLines
	updated.External = input.External
	updated.OffSite = input.OffSite
	updated.HasPV = input.HasPV
	updated.SyncCalendar = input.SyncCalendar
	updated.UpdatedAt = s.now()
	if updated.OffSite {
		updated.RoomID = nil
		updated.EquipmentIDs = nil
	}

	if existing.State == StatePlanned && resourcesChanged(existing, updated) {
		var reservations []Reservation
		reservations, err = s.buildReservations(ctx, updated)
		if err != nil {
			return
		}
		if err = s.plans.ReplaceReservations(ctx, id, reservations); err != nil {
			err = s.mapTransitionError(err)
			return
		}
	}

	plan, err = s.plans.UpdatePlanification(ctx, updated)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if s.calendar != nil && plan.SyncCalendar && plan.CalendarEventID != nil {
		if uErr := s.calendar.UpdateEvent(ctx, *plan.CalendarEventID, plan); uErr != nil {
			logger.WarnContext(ctx, "calendar update failed", "error", uErr)
		}
	}
	return
}

// GetPlanification returns a single planification.
func (s *PlanificationService) GetPlanification(ctx context.Context, id string) (Planification, error) {
	plan, err := s.plans.GetPlanification(ctx, id)
	if err != nil {
		return Planification{}, mapRepoError(err)
	}
	return plan, nil
}

// ListPlanifications enumerates planifications matching the query.
func (s *PlanificationService) ListPlanifications(ctx context.Context, query PlanificationQuery) ([]Planification, error) {
	plans, err := s.plans.ListPlanifications(ctx, query)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return plans, nil
}

// PreviewConflicts reports the active reservations that would block planning
// the planification with its current room and equipment. It is a read-only
// check; the authoritative overlap detection runs inside the storage
// transaction when the planification is planned.
func (s *PlanificationService) PreviewConflicts(ctx context.Context, id string) ([]ConflictPreview, error) {
	if s.ledger == nil {
		return nil, nil
	}
	plan, err := s.plans.GetPlanification(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}

	interval := scheduler.Interval{Start: plan.Start, End: plan.End()}

	var (
		claims   []scheduler.Claim
		existing []scheduler.Reservation
		byID     = make(map[string]Reservation)
	)
	collect := func(kind scheduler.ResourceKind, resourceID string) error {
		var roomID, equipmentID *string
		switch kind {
		case scheduler.ResourceRoom:
			roomID = &resourceID
		case scheduler.ResourceEquipment:
			equipmentID = &resourceID
		}
		reservations, err := s.ledger.ListActiveReservations(ctx, roomID, equipmentID)
		if err != nil {
			return mapRepoError(err)
		}
		for _, res := range reservations {
			if res.PlanificationID == plan.ID {
				continue
			}
			byID[res.ID] = res
			existing = append(existing, scheduler.Reservation{
				ID:              res.ID,
				PlanificationID: res.PlanificationID,
				Kind:            kind,
				ResourceID:      resourceID,
				Interval:        scheduler.Interval{Start: res.Start, End: res.End},
			})
		}
		claims = append(claims, scheduler.Claim{Kind: kind, ResourceID: resourceID, Interval: interval})
		return nil
	}

	if plan.RoomID != nil {
		if err := collect(scheduler.ResourceRoom, *plan.RoomID); err != nil {
			return nil, err
		}
	}
	for _, equipmentID := range plan.EquipmentIDs {
		if err := collect(scheduler.ResourceEquipment, equipmentID); err != nil {
			return nil, err
		}
	}

	var previews []ConflictPreview
	for _, c := range scheduler.DetectConflicts(existing, claims) {
		res := byID[c.ReservationID]
		previews = append(previews, ConflictPreview{
			ResourceKind:    string(c.Kind),
			ResourceID:      c.ResourceID,
			ResourceLabel:   res.Label,
			ReservationID:   c.ReservationID,
			PlanificationID: c.PlanificationID,
			Start:           res.Start,
			End:             res.End,
		})
	}
	return previews, nil
}

// Confirm transitions draft to confirmed. It requires at least one
// participant, at least one host, and, when a PV is requested, exactly one
// PV writer.
func (s *PlanificationService) Confirm(ctx context.Context, principal Principal, id string) (plan Planification, err error) {
	logger := s.loggerWith(ctx, "Confirm", "principal_id", principal.UserID, "planification_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to confirm planification", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "planification confirmed")
	}()

	plan, err = s.plans.GetPlanification(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if plan.State != StateDraft {
		err = illegalTransition(plan.State, StateConfirmed)
		return
	}

	var participants []Participant
	participants, err = s.participants.ListParticipants(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	vErr := &ValidationError{}
	if len(participants) == 0 {
		vErr.add("participants", "cannot confirm a planification without any participant")
	}
	if countHosts(participants) == 0 {
		vErr.add("host", "at least one participant must be designated as host")
	}
	if plan.HasPV {
		switch pvCount := countPVWriters(participants); {
		case pvCount == 0:
			vErr.add("pv", "a PV has been requested but no participant is designated as PV writer")
		case pvCount > 1:
			vErr.add("pv", "only one participant may be designated as PV writer")
		}
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if err = s.plans.UpdateState(ctx, id, StateDraft, StateConfirmed); err != nil {
		err = s.mapTransitionError(err)
		return
	}
	plan.State = StateConfirmed
	return
}

// Plan transitions confirmed to planned: it reserves the room and every
// equipment item atomically, generates missing access tokens, dispatches
// invitations, and creates the calendar event.
func (s *PlanificationService) Plan(ctx context.Context, principal Principal, id string) (plan Planification, err error) {
	logger := s.loggerWith(ctx, "Plan", "principal_id", principal.UserID, "planification_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to plan planification", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "planification planned")
	}()

	plan, err = s.plans.GetPlanification(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if plan.State != StateConfirmed {
		err = illegalTransition(plan.State, StatePlanned)
		return
	}

	var reservations []Reservation
	reservations, err = s.buildReservations(ctx, plan)
	if err != nil {
		return
	}

	if err = s.plans.TransitionToPlanned(ctx, id, reservations); err != nil {
		err = s.mapTransitionError(err)
		return
	}
	plan.State = StatePlanned

	var participants []Participant
	participants, err = s.participants.ListParticipants(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	for i := range participants {
		p := &participants[i]
		token := AccessToken(s.secret, p.ID, id)
		stored, tErr := s.participants.SetAccessTokenIfEmpty(ctx, p.ID, token)
		if tErr != nil {
			err = mapRepoError(tErr)
			return
		}
		p.AccessToken = stored
	}

	if s.invitations != nil {
		for _, p := range participants {
			if p.Email == "" {
				logger.WarnContext(ctx, "participant has no email address, skipping invitation", "participant_id", p.ID)
				continue
			}
			link := s.invitationLink(id, p)
			if sErr := s.invitations.SendInvitation(ctx, p, link); sErr != nil {
				logger.WarnContext(ctx, "invitation dispatch failed", "participant_id", p.ID, "error", sErr)
			}
		}
	}

	if s.calendar != nil && plan.SyncCalendar && plan.CalendarEventID == nil {
		eventID, cErr := s.calendar.CreateEvent(ctx, plan)
		if cErr != nil {
			vErr := &ValidationError{}
			vErr.add("calendar", fmt.Sprintf("failed to create calendar event: %v", cErr))
			err = vErr
			return
		}
		if err = s.plans.SetCalendarEvent(ctx, id, &eventID); err != nil {
			err = mapRepoError(err)
			return
		}
		plan.CalendarEventID = &eventID
	}
	return
}

// Start transitions planned to started: it re-validates the host, creates
// the meeting, links participants, and spawns one session per participant
// with a resolvable user. The acting user's own session is returned when
// they participate.
func (s *PlanificationService) Start(ctx context.Context, principal Principal, id string) (result StartResult, err error) {
	logger := s.loggerWith(ctx, "Start", "principal_id", principal.UserID, "planification_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to start planification", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("meeting_id", result.Meeting.ID).InfoContext(ctx, "planification started")
	}()

	var plan Planification
	plan, err = s.plans.GetPlanification(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if plan.State != StatePlanned {
		err = illegalTransition(plan.State, StateStarted)
		return
	}
	if plan.MeetingID != nil {
		err = ErrAlreadyMaterialized
		return
	}

	var participants []Participant
	participants, err = s.participants.ListParticipants(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if countHosts(participants) == 0 {
		vErr := &ValidationError{}
		vErr.add("host", "at least one participant must be designated as host before starting the meeting")
		err = vErr
		return
	}

	var meeting Meeting
	var ownSession *Session
	meeting, ownSession, err = s.materializer.Materialize(ctx, plan, participants, principal.UserID)
	if err != nil {
		return
	}

	if err = s.plans.LinkMeeting(ctx, id, meeting.ID); err != nil {
		err = mapRepoError(err)
		return
	}
	if err = s.plans.UpdateState(ctx, id, StatePlanned, StateStarted); err != nil {
		err = s.mapTransitionError(err)
		return
	}

	result = StartResult{Meeting: meeting, OwnSession: ownSession}
	return
}

// Cancel moves any non-terminal planification to cancelled. Its reservations
// stop participating in conflict checks by virtue of the state change; the
// calendar event is removed best effort.
func (s *PlanificationService) Cancel(ctx context.Context, principal Principal, id string) (plan Planification, err error) {
	logger := s.loggerWith(ctx, "Cancel", "principal_id", principal.UserID, "planification_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel planification", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "planification cancelled")
	}()

	plan, err = s.plans.GetPlanification(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if plan.State.Terminal() {
		err = illegalTransition(plan.State, StateCancelled)
		return
	}

	if s.calendar != nil && plan.CalendarEventID != nil {
		if dErr := s.calendar.DeleteEvent(ctx, *plan.CalendarEventID); dErr != nil {
			logger.WarnContext(ctx, "calendar event deletion failed", "error", dErr)
		} else if sErr := s.plans.SetCalendarEvent(ctx, id, nil); sErr != nil {
			logger.WarnContext(ctx, "failed to clear calendar event reference", "error", sErr)
		}
	}

	if err = s.plans.UpdateState(ctx, id, plan.State, StateCancelled); err != nil {
		err = s.mapTransitionError(err)
		return
	}
	plan.State = StateCancelled
	return
}

// Done marks a planification terminal. Its reservations stop participating
// in conflict checks.
func (s *PlanificationService) Done(ctx context.Context, principal Principal, id string) (Planification, error) {
	plan, err := s.plans.GetPlanification(ctx, id)
	if err != nil {
		return Planification{}, mapRepoError(err)
	}
	switch plan.State {
	case StateConfirmed, StatePlanned, StateStarted:
	case StateDone:
		return plan, nil
	default:
		return Planification{}, illegalTransition(plan.State, StateDone)
	}
	if err := s.plans.UpdateState(ctx, id, plan.State, StateDone); err != nil {
		return Planification{}, s.mapTransitionError(err)
	}
	plan.State = StateDone
	return plan, nil
}

// ResetToDraft returns a confirmed or cancelled planification to draft,
// provided no meeting has been materialized from it.
func (s *PlanificationService) ResetToDraft(ctx context.Context, principal Principal, id string) (Planification, error) {
	plan, err := s.plans.GetPlanification(ctx, id)
	if err != nil {
		return Planification{}, mapRepoError(err)
	}
	if plan.MeetingID != nil {
		return Planification{}, &PreconditionError{Reason: "a meeting has already been created from this planification"}
	}
	switch plan.State {
	case StateConfirmed, StateCancelled:
	default:
		return Planification{}, illegalTransition(plan.State, StateDraft)
	}
	if err := s.plans.UpdateState(ctx, id, plan.State, StateDraft); err != nil {
		return Planification{}, s.mapTransitionError(err)
	}
	plan.State = StateDraft
	return plan, nil
}

// DeletePlanification removes a planification. Deletion is legal only in
// draft and only before a meeting has been materialized.
func (s *PlanificationService) DeletePlanification(ctx context.Context, principal Principal, id string) (err error) {
	logger := s.loggerWith(ctx, "DeletePlanification", "principal_id", principal.UserID, "planification_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete planification", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "planification deleted")
	}()

	var plan Planification
	plan, err = s.plans.GetPlanification(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if plan.MeetingID != nil {
		err = &PreconditionError{Reason: fmt.Sprintf("cannot delete planification %q: a meeting has already been created from it", plan.Title)}
		return
	}
	if plan.State != StateDraft {
		err = &PreconditionError{Reason: fmt.Sprintf("cannot delete planification %q in state %q", plan.Title, plan.State)}
		return
	}

	if s.calendar != nil && plan.CalendarEventID != nil {
		if dErr := s.calendar.DeleteEvent(ctx, *plan.CalendarEventID); dErr != nil {
			logger.WarnContext(ctx, "calendar event deletion failed", "error", dErr)
		}
	}

	err = mapRepoError(s.plans.DeletePlanification(ctx, id))
	return
}

func (s *PlanificationService) validateInput(input PlanificationInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if input.Start.IsZero() {
		vErr.add("start", "start is required")
	} else if input.Start.Before(s.now()) {
		vErr.add("start", "you cannot set a reservation date in the past")
	}
	if input.Duration <= 0 {
		vErr.add("duration", "duration must be positive")
	}
	return vErr
}

func (s *PlanificationService) buildReservations(ctx context.Context, plan Planification) ([]Reservation, error) {
	interval := struct{ start, end time.Time }{plan.Start, plan.End()}
	var reservations []Reservation

	if plan.RoomID != nil {
		name, err := s.catalog.RoomName(ctx, *plan.RoomID)
		if err != nil {
			return nil, mapRepoError(err)
		}
		reservations = append(reservations, Reservation{
			ID:              s.idGenerator(),
			PlanificationID: plan.ID,
			RoomID:          plan.RoomID,
			Label:           fmt.Sprintf("Room: %s", name),
			Start:           interval.start,
			End:             interval.end,
		})
	}

	for _, equipmentID := range plan.EquipmentIDs {
		equipmentID := equipmentID
		name, err := s.catalog.EquipmentName(ctx, equipmentID)
		if err != nil {
			return nil, mapRepoError(err)
		}
		reservations = append(reservations, Reservation{
			ID:              s.idGenerator(),
			PlanificationID: plan.ID,
			EquipmentID:     &equipmentID,
			Label:           fmt.Sprintf("Equipment: %s", name),
			Start:           interval.start,
			End:             interval.end,
		})
	}
	return reservations, nil
}

func (s *PlanificationService) invitationLink(planificationID string, p Participant) string {
	return fmt.Sprintf("%s/invitations/%s/%s/%s", s.linkBase, planificationID, p.ID, p.AccessToken)
}

func (s *PlanificationService) mapTransitionError(err error) error {
	if err == nil {
		return nil
	}
	var conflict *persistence.ReservationConflict
	if errors.As(err, &conflict) {
		return &ConflictError{
			ResourceKind:  conflict.ResourceKind,
			ResourceID:    conflict.ResourceID,
			ResourceLabel: conflict.ResourceLabel,
			ReservationID: conflict.ReservationID,
		}
	}
	if errors.Is(err, persistence.ErrStale) {
		vErr := &ValidationError{}
		vErr.add("state", "planification is no longer in the expected state")
		return vErr
	}
	return mapRepoError(err)
}

func illegalTransition(from, to PlanificationState) error {
	vErr := &ValidationError{}
	vErr.add("state", fmt.Sprintf("cannot transition from %q to %q", from, to))
	return vErr
}

func countHosts(participants []Participant) int {
	count := 0
	for _, p := range participants {
		if p.IsHost() {
			count++
		}
	}
	return count
}

func countPVWriters(participants []Participant) int {
	count := 0
	for _, p := range participants {
		if p.IsPV {
			count++
		}
	}
	return count
}

func resourcesChanged(before, after Planification) bool {
	if !before.Start.Equal(after.Start) || before.Duration != after.Duration {
		return true
	}
	if !equalOptional(before.RoomID, after.RoomID) {
		return true
	}
	if len(before.EquipmentIDs) != len(after.EquipmentIDs) {
		return true
	}
	seen := make(map[string]struct{}, len(before.EquipmentIDs))
	for _, id := range before.EquipmentIDs {
		seen[id] = struct{}{}
	}
	for _, id := range after.EquipmentIDs {
		if _, ok := seen[id]; !ok {
			return true
		}
	}
	return false
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}

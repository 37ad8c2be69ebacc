package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
)

type planStoreStub struct {
	plans        map[string]Planification
	reservations map[string][]Reservation
	conflict     *persistence.ReservationConflict
	staleStates  bool
	calendarIDs  map[string]*string
}

func newPlanStoreStub(plans ...Planification) *planStoreStub {
	stub := &planStoreStub{
		plans:        make(map[string]Planification),
		reservations: make(map[string][]Reservation),
		calendarIDs:  make(map[string]*string),
	}
	for _, plan := range plans {
		stub.plans[plan.ID] = plan
	}
	return stub
}

func (s *planStoreStub) CreatePlanification(ctx context.Context, plan Planification) (Planification, error) {
	s.plans[plan.ID] = plan
	return plan, nil
}

func (s *planStoreStub) UpdatePlanification(ctx context.Context, plan Planification) (Planification, error) {
	if _, ok := s.plans[plan.ID]; !ok {
		return Planification{}, persistence.ErrNotFound
	}
	s.plans[plan.ID] = plan
	return plan, nil
}

func (s *planStoreStub) GetPlanification(ctx context.Context, id string) (Planification, error) {
	plan, ok := s.plans[id]
	if !ok {
		return Planification{}, persistence.ErrNotFound
	}
	return plan, nil
}

func (s *planStoreStub) ListPlanifications(ctx context.Context, query PlanificationQuery) ([]Planification, error) {
	out := make([]Planification, 0, len(s.plans))
	for _, plan := range s.plans {
		out = append(out, plan)
	}
	return out, nil
}

func (s *planStoreStub) DeletePlanification(ctx context.Context, id string) error {
	if _, ok := s.plans[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.plans, id)
	return nil
}

func (s *planStoreStub) UpdateState(ctx context.Context, id string, from, to PlanificationState) error {
	plan, ok := s.plans[id]
	if !ok {
		return persistence.ErrNotFound
	}
	if s.staleStates || plan.State != from {
		return persistence.ErrStale
	}
	plan.State = to
	s.plans[id] = plan
	return nil
}

func (s *planStoreStub) TransitionToPlanned(ctx context.Context, id string, reservations []Reservation) error {
	if s.conflict != nil {
		return s.conflict
	}
	if err := s.UpdateState(ctx, id, StateConfirmed, StatePlanned); err != nil {
		return err
	}
	s.reservations[id] = reservations
	return nil
}

func (s *planStoreStub) ReplaceReservations(ctx context.Context, id string, reservations []Reservation) error {
	if s.conflict != nil {
		return s.conflict
	}
	s.reservations[id] = reservations
	return nil
}

func (s *planStoreStub) LinkMeeting(ctx context.Context, id, meetingID string) error {
	plan, ok := s.plans[id]
	if !ok {
		return persistence.ErrNotFound
	}
	plan.MeetingID = &meetingID
	s.plans[id] = plan
	return nil
}

func (s *planStoreStub) SetCalendarEvent(ctx context.Context, id string, eventID *string) error {
	plan, ok := s.plans[id]
	if !ok {
		return persistence.ErrNotFound
	}
	plan.CalendarEventID = eventID
	s.plans[id] = plan
	s.calendarIDs[id] = eventID
	return nil
}

type rosterStub struct {
	participants map[string][]Participant
	tokens       map[string]string
}

func newRosterStub() *rosterStub {
	return &rosterStub{
		participants: make(map[string][]Participant),
		tokens:       make(map[string]string),
	}
}

func (s *rosterStub) add(planificationID string, p Participant) {
	p.PlanificationID = planificationID
	s.participants[planificationID] = append(s.participants[planificationID], p)
}

func (s *rosterStub) ListParticipants(ctx context.Context, planificationID string) ([]Participant, error) {
	return append([]Participant(nil), s.participants[planificationID]...), nil
}

func (s *rosterStub) SetAccessTokenIfEmpty(ctx context.Context, participantID, token string) (string, error) {
	if stored, ok := s.tokens[participantID]; ok && stored != "" {
		return stored, nil
	}
	s.tokens[participantID] = token
	return token, nil
}

type catalogStub struct {
	rooms     map[string]string
	equipment map[string]string
}

func (s *catalogStub) RoomName(ctx context.Context, id string) (string, error) {
	name, ok := s.rooms[id]
	if !ok {
		return "", persistence.ErrNotFound
	}
	return name, nil
}

func (s *catalogStub) EquipmentName(ctx context.Context, id string) (string, error) {
	name, ok := s.equipment[id]
	if !ok {
		return "", persistence.ErrNotFound
	}
	return name, nil
}

type materializerStub struct {
	meeting    Meeting
	ownSession *Session
	err        error
}

func (s *materializerStub) Materialize(ctx context.Context, plan Planification, participants []Participant, actingUserID string) (Meeting, *Session, error) {
	if s.err != nil {
		return Meeting{}, nil, s.err
	}
	return s.meeting, s.ownSession, nil
}

type calendarStub struct {
	createErr error
	eventID   string
	created   int
	deleted   []string
}

func (s *calendarStub) CreateEvent(ctx context.Context, plan Planification) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.created++
	return s.eventID, nil
}

func (s *calendarStub) UpdateEvent(ctx context.Context, eventID string, plan Planification) error {
	return nil
}

func (s *calendarStub) DeleteEvent(ctx context.Context, eventID string) error {
	s.deleted = append(s.deleted, eventID)
	return nil
}

type invitationStub struct {
	sent []string
	err  error
}

func (s *invitationStub) SendInvitation(ctx context.Context, participant Participant, tokenLink string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, participant.ID)
	return nil
}

type ledgerStub struct {
	reservations []Reservation
	err          error
}

func (s *ledgerStub) ListActiveReservations(ctx context.Context, roomID, equipmentID *string) ([]Reservation, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []Reservation
	for _, res := range s.reservations {
		if roomID != nil && (res.RoomID == nil || *res.RoomID != *roomID) {
			continue
		}
		if equipmentID != nil && (res.EquipmentID == nil || *res.EquipmentID != *equipmentID) {
			continue
		}
		out = append(out, res)
	}
	return out, nil
}

func fixedNow() time.Time {
	return time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
}

func newPlanService(store *planStoreStub, roster *rosterStub, calendar *calendarStub, invitations *invitationStub) *PlanificationService {
	return newPlanServiceWithLedger(store, roster, calendar, invitations, &ledgerStub{})
}

func newPlanServiceWithLedger(store *planStoreStub, roster *rosterStub, calendar *calendarStub, invitations *invitationStub, ledger ReservationLedger) *PlanificationService {
	catalog := &catalogStub{
		rooms:     map[string]string{"room-1": "Aquarium"},
		equipment: map[string]string{"eq-1": "Projector"},
	}
	counter := 0
	idGen := func() string {
		counter++
		return fmt.Sprintf("id-%d", counter)
	}
	return NewPlanificationService(store, roster, catalog, ledger, &materializerStub{}, calendar, invitations, []byte("secret"), "https://planner.example.com", idGen, fixedNow, nil)
}

func hostParticipant(id string) Participant {
	user := "user-" + id
	return Participant{ID: id, Name: "Host " + id, Email: id + "@example.com", UserID: &user, RoleName: RoleNameHost}
}

func plainParticipant(id string) Participant {
	user := "user-" + id
	return Participant{ID: id, Name: "Member " + id, Email: id + "@example.com", UserID: &user}
}

func TestPlanificationService_CreatePlanification_RejectsPastStart(t *testing.T) {
	t.Parallel()

	svc := newPlanService(newPlanStoreStub(), newRosterStub(), &calendarStub{}, &invitationStub{})

	_, err := svc.CreatePlanification(context.Background(), Principal{UserID: "user-1"}, PlanificationInput{
		Title:    "Retro",
		Start:    fixedNow().Add(-time.Hour),
		Duration: time.Hour,
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["start"]; !ok {
		t.Fatalf("expected start validation error, got %v", vErr.FieldErrors)
	}
}

func TestPlanificationService_CreatePlanification_RequiredFields(t *testing.T) {
	t.Parallel()

	svc := newPlanService(newPlanStoreStub(), newRosterStub(), &calendarStub{}, &invitationStub{})

	_, err := svc.CreatePlanification(context.Background(), Principal{UserID: "user-1"}, PlanificationInput{})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"title", "start", "duration"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("expected %s validation error, got %v", field, vErr.FieldErrors)
		}
	}
}

func TestPlanificationService_CreatePlanification_OffSiteDropsRoom(t *testing.T) {
	t.Parallel()

	store := newPlanStoreStub()
	svc := newPlanService(store, newRosterStub(), &calendarStub{}, &invitationStub{})

	roomID := "room-1"
	plan, err := svc.CreatePlanification(context.Background(), Principal{UserID: "user-1"}, PlanificationInput{
		Title:        "Client visit",
		Start:        fixedNow().Add(24 * time.Hour),
		Duration:     2 * time.Hour,
		RoomID:       &roomID,
		EquipmentIDs: []string{"eq-1"},
		OffSite:      true,
	})
	if err != nil {
		t.Fatalf("CreatePlanification returned %v", err)
	}
	if plan.RoomID != nil || len(plan.EquipmentIDs) != 0 {
		t.Fatalf("off-site planification kept on-site resources: %+v", plan)
	}
	if plan.State != StateDraft {
		t.Fatalf("expected draft state, got %s", plan.State)
	}
}

func TestPlanificationService_Confirm_RequiresRoster(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name         string
		hasPV        bool
		participants []Participant
		wantFields   []string
	}{
		{
			name:       "no participants",
			wantFields: []string{"participants", "host"},
		},
		{
			name:         "no host",
			participants: []Participant{plainParticipant("p1")},
			wantFields:   []string{"host"},
		},
		{
			name:         "pv requested but nobody designated",
			hasPV:        true,
			participants: []Participant{hostParticipant("p1")},
			wantFields:   []string{"pv"},
		},
		{
			name:  "two pv writers",
			hasPV: true,
			participants: func() []Participant {
				a := hostParticipant("p1")
				a.IsPV = true
				b := plainParticipant("p2")
				b.IsPV = true
				return []Participant{a, b}
			}(),
			wantFields: []string{"pv"},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newPlanStoreStub(Planification{ID: "plan-1", Title: "Retro", State: StateDraft, Start: fixedNow().Add(time.Hour), Duration: time.Hour, HasPV: tc.hasPV})
			roster := newRosterStub()
			for _, p := range tc.participants {
				roster.add("plan-1", p)
			}
			svc := newPlanService(store, roster, &calendarStub{}, &invitationStub{})

			_, err := svc.Confirm(context.Background(), Principal{UserID: "user-1"}, "plan-1")

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			for _, field := range tc.wantFields {
				if _, ok := vErr.FieldErrors[field]; !ok {
					t.Errorf("expected %s validation error, got %v", field, vErr.FieldErrors)
				}
			}
		})
	}
}

func TestPlanificationService_Confirm_Transitions(t *testing.T) {
	t.Parallel()

	store := newPlanStoreStub(Planification{ID: "plan-1", Title: "Retro", State: StateDraft, Start: fixedNow().Add(time.Hour), Duration: time.Hour})
	roster := newRosterStub()
	roster.add("plan-1", hostParticipant("p1"))
	svc := newPlanService(store, roster, &calendarStub{}, &invitationStub{})

	plan, err := svc.Confirm(context.Background(), Principal{UserID: "user-1"}, "plan-1")
	if err != nil {
		t.Fatalf("Confirm returned %v", err)
	}
	if plan.State != StateConfirmed {
		t.Fatalf("expected confirmed, got %s", plan.State)
	}
}

func TestPlanificationService_Confirm_RejectsWrongState(t *testing.T) {
	t.Parallel()

	store := newPlanStoreStub(Planification{ID: "plan-1", Title: "Retro", State: StatePlanned, Start: fixedNow().Add(time.Hour), Duration: time.Hour})
	roster := newRosterStub()
	roster.add("plan-1", hostParticipant("p1"))
	svc := newPlanService(store, roster, &calendarStub{}, &invitationStub{})

	_, err := svc.Confirm(context.Background(), Principal{UserID: "user-1"}, "plan-1")

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["state"]; !ok {
		t.Fatalf("expected state validation error, got %v", vErr.FieldErrors)
	}
}

func TestPlanificationService_Plan_ReservesResourcesAndInvites(t *testing.T) {
	t.Parallel()

	roomID := "room-1"
	store := newPlanStoreStub(Planification{
		ID: "plan-1", Title: "Retro", State: StateConfirmed,
		Start: fixedNow().Add(time.Hour), Duration: time.Hour,
		RoomID: &roomID, EquipmentIDs: []string{"eq-1"},
	})
	roster := newRosterStub()
	roster.add("plan-1", hostParticipant("p1"))
	roster.add("plan-1", plainParticipant("p2"))
	invitations := &invitationStub{}
	svc := newPlanService(store, roster, &calendarStub{eventID: "evt-1"}, invitations)

	plan, err := svc.Plan(context.Background(), Principal{UserID: "user-1"}, "plan-1")
	if err != nil {
		t.Fatalf("Plan returned %v", err)
	}
	if plan.State != StatePlanned {
		t.Fatalf("expected planned, got %s", plan.State)
	}

	reservations := store.reservations["plan-1"]
	if len(reservations) != 2 {
		t.Fatalf("expected room and equipment reservations, got %d", len(reservations))
	}
	for _, r := range reservations {
		if !r.Start.Equal(plan.Start) || !r.End.Equal(plan.Start.Add(plan.Duration)) {
			t.Errorf("reservation %q does not cover the planned interval: %v - %v", r.Label, r.Start, r.End)
		}
	}

	if len(invitations.sent) != 2 {
		t.Fatalf("expected 2 invitations, got %d", len(invitations.sent))
	}
	for _, id := range []string{"p1", "p2"} {
		if roster.tokens[id] == "" {
			t.Errorf("participant %s has no access token", id)
		}
	}
}

func TestPlanificationService_Plan_MapsConflict(t *testing.T) {
	t.Parallel()

	roomID := "room-1"
	store := newPlanStoreStub(Planification{
		ID: "plan-1", Title: "Retro", State: StateConfirmed,
		Start: fixedNow().Add(time.Hour), Duration: time.Hour, RoomID: &roomID,
	})
	store.conflict = &persistence.ReservationConflict{
		ResourceKind:  "room",
		ResourceID:    "room-1",
		ResourceLabel: "Aquarium",
		ReservationID: "res-9",
	}
	roster := newRosterStub()
	roster.add("plan-1", hostParticipant("p1"))
	svc := newPlanService(store, roster, &calendarStub{}, &invitationStub{})

	_, err := svc.Plan(context.Background(), Principal{UserID: "user-1"}, "plan-1")

	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if cErr.ResourceID != "room-1" {
		t.Fatalf("conflict names wrong resource: %+v", cErr)
	}

	// A conflict is a validation failure from the caller's perspective.
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected conflict to unwrap to ValidationError, got %v", err)
	}
}

func TestPlanificationService_Plan_TokensAreIdempotent(t *testing.T) {
	t.Parallel()

	store := newPlanStoreStub(Planification{ID: "plan-1", Title: "Retro", State: StateConfirmed, Start: fixedNow().Add(time.Hour), Duration: time.Hour})
	roster := newRosterStub()
	roster.add("plan-1", hostParticipant("p1"))
	roster.tokens["p1"] = "pre-existing"
	svc := newPlanService(store, roster, &calendarStub{}, &invitationStub{})

	if _, err := svc.Plan(context.Background(), Principal{UserID: "user-1"}, "plan-1"); err != nil {
		t.Fatalf("Plan returned %v", err)
	}
	if roster.tokens["p1"] != "pre-existing" {
		t.Fatalf("existing token was overwritten: %s", roster.tokens["p1"])
	}
}

func TestPlanificationService_Plan_CalendarFailureKeepsPlannedState(t *testing.T) {
	t.Parallel()

	store := newPlanStoreStub(Planification{ID: "plan-1", Title: "Retro", State: StateConfirmed, Start: fixedNow().Add(time.Hour), Duration: time.Hour, SyncCalendar: true})
	roster := newRosterStub()
	roster.add("plan-1", hostParticipant("p1"))
	svc := newPlanService(store, roster, &calendarStub{createErr: errors.New("calendar down")}, &invitationStub{})

	_, err := svc.Plan(context.Background(), Principal{UserID: "user-1"}, "plan-1")

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["calendar"]; !ok {
		t.Fatalf("expected calendar validation error, got %v", vErr.FieldErrors)
	}
	if store.plans["plan-1"].State != StatePlanned {
		t.Fatalf("reservation work must survive the calendar failure, state is %s", store.plans["plan-1"].State)
	}
}

func TestPlanificationService_PreviewConflicts(t *testing.T) {
	t.Parallel()

	roomID := "room-1"
	otherRoom := "room-2"
	eqID := "eq-1"
	start := fixedNow().Add(time.Hour)
	store := newPlanStoreStub(Planification{
		ID: "plan-1", Title: "Retro", State: StateConfirmed,
		Start: start, Duration: time.Hour,
		RoomID: &roomID, EquipmentIDs: []string{"eq-1"},
	})
	ledger := &ledgerStub{reservations: []Reservation{
		{
			ID: "res-1", PlanificationID: "plan-2", RoomID: &roomID, Label: "Room: Aquarium",
			Start: start.Add(30 * time.Minute), End: start.Add(90 * time.Minute),
		},
		{
			// Back-to-back bookings do not overlap.
			ID: "res-2", PlanificationID: "plan-3", RoomID: &roomID, Label: "Room: Aquarium",
			Start: start.Add(time.Hour), End: start.Add(2 * time.Hour),
		},
		{
			// A different room never blocks this planification.
			ID: "res-3", PlanificationID: "plan-4", RoomID: &otherRoom, Label: "Room: Annex",
			Start: start, End: start.Add(time.Hour),
		},
		{
			ID: "res-4", PlanificationID: "plan-5", EquipmentID: &eqID, Label: "Equipment: Projector",
			Start: start.Add(-30 * time.Minute), End: start.Add(30 * time.Minute),
		},
	}}
	svc := newPlanServiceWithLedger(store, newRosterStub(), &calendarStub{}, &invitationStub{}, ledger)

	previews, err := svc.PreviewConflicts(context.Background(), "plan-1")
	if err != nil {
		t.Fatalf("PreviewConflicts returned %v", err)
	}
	if len(previews) != 2 {
		t.Fatalf("expected 2 conflicts, got %d: %+v", len(previews), previews)
	}
	room := previews[0]
	if room.ResourceKind != "room" || room.ResourceID != "room-1" || room.ReservationID != "res-1" {
		t.Errorf("unexpected room conflict: %+v", room)
	}
	if room.ResourceLabel != "Room: Aquarium" || room.PlanificationID != "plan-2" {
		t.Errorf("room conflict missing reservation details: %+v", room)
	}
	equipment := previews[1]
	if equipment.ResourceKind != "equipment" || equipment.ReservationID != "res-4" {
		t.Errorf("unexpected equipment conflict: %+v", equipment)
	}
}

func TestPlanificationService_PreviewConflicts_IgnoresOwnReservations(t *testing.T) {
	t.Parallel()

	roomID := "room-1"
	start := fixedNow().Add(time.Hour)
	store := newPlanStoreStub(Planification{
		ID: "plan-1", Title: "Retro", State: StatePlanned,
		Start: start, Duration: time.Hour, RoomID: &roomID,
	})
	ledger := &ledgerStub{reservations: []Reservation{{
		ID: "res-1", PlanificationID: "plan-1", RoomID: &roomID, Label: "Room: Aquarium",
		Start: start, End: start.Add(time.Hour),
	}}}
	svc := newPlanServiceWithLedger(store, newRosterStub(), &calendarStub{}, &invitationStub{}, ledger)

	previews, err := svc.PreviewConflicts(context.Background(), "plan-1")
	if err != nil {
		t.Fatalf("PreviewConflicts returned %v", err)
	}
	if len(previews) != 0 {
		t.Fatalf("expected no conflicts, got %+v", previews)
	}
}

func TestPlanificationService_Start_ReturnsOwnSession(t *testing.T) {
	t.Parallel()

	store := newPlanStoreStub(Planification{ID: "plan-1", Title: "Retro", State: StatePlanned, Start: fixedNow().Add(time.Hour), Duration: time.Hour})
	roster := newRosterStub()
	roster.add("plan-1", hostParticipant("p1"))
	svc := newPlanService(store, roster, &calendarStub{}, &invitationStub{})
	own := Session{ID: "session-1", MeetingID: "meeting-1", UserID: "user-p1"}
	svc.materializer = &materializerStub{meeting: Meeting{ID: "meeting-1", PlanificationID: "plan-1"}, ownSession: &own}

	result, err := svc.Start(context.Background(), Principal{UserID: "user-p1"}, "plan-1")
	if err != nil {
		t.Fatalf("Start returned %v", err)
	}
	if result.Meeting.ID != "meeting-1" {
		t.Fatalf("unexpected meeting %+v", result.Meeting)
	}
	if result.OwnSession == nil || result.OwnSession.ID != "session-1" {
		t.Fatalf("expected own session, got %+v", result.OwnSession)
	}

	stored := store.plans["plan-1"]
	if stored.State != StateStarted {
		t.Fatalf("expected started, got %s", stored.State)
	}
	if stored.MeetingID == nil || *stored.MeetingID != "meeting-1" {
		t.Fatalf("meeting not linked: %+v", stored)
	}
}

func TestPlanificationService_Start_RequiresHost(t *testing.T) {
	t.Parallel()

	store := newPlanStoreStub(Planification{ID: "plan-1", Title: "Retro", State: StatePlanned, Start: fixedNow().Add(time.Hour), Duration: time.Hour})
	roster := newRosterStub()
	roster.add("plan-1", plainParticipant("p1"))
	svc := newPlanService(store, roster, &calendarStub{}, &invitationStub{})

	_, err := svc.Start(context.Background(), Principal{UserID: "user-p1"}, "plan-1")

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["host"]; !ok {
		t.Fatalf("expected host validation error, got %v", vErr.FieldErrors)
	}
}

func TestPlanificationService_Start_RejectsSecondMaterialization(t *testing.T) {
	t.Parallel()

	meetingID := "meeting-1"
	store := newPlanStoreStub(Planification{ID: "plan-1", Title: "Retro", State: StatePlanned, Start: fixedNow().Add(time.Hour), Duration: time.Hour, MeetingID: &meetingID})
	roster := newRosterStub()
	roster.add("plan-1", hostParticipant("p1"))
	svc := newPlanService(store, roster, &calendarStub{}, &invitationStub{})

	_, err := svc.Start(context.Background(), Principal{UserID: "user-p1"}, "plan-1")
	if !errors.Is(err, ErrAlreadyMaterialized) {
		t.Fatalf("expected ErrAlreadyMaterialized, got %v", err)
	}
}

func TestPlanificationService_Cancel_ClearsCalendarEvent(t *testing.T) {
	t.Parallel()

	eventID := "evt-1"
	store := newPlanStoreStub(Planification{ID: "plan-1", Title: "Retro", State: StatePlanned, Start: fixedNow().Add(time.Hour), Duration: time.Hour, CalendarEventID: &eventID})
	calendar := &calendarStub{}
	svc := newPlanService(store, newRosterStub(), calendar, &invitationStub{})

	plan, err := svc.Cancel(context.Background(), Principal{UserID: "user-1"}, "plan-1")
	if err != nil {
		t.Fatalf("Cancel returned %v", err)
	}
	if plan.State != StateCancelled {
		t.Fatalf("expected cancelled, got %s", plan.State)
	}
	if len(calendar.deleted) != 1 || calendar.deleted[0] != "evt-1" {
		t.Fatalf("calendar event not deleted: %v", calendar.deleted)
	}
}

func TestPlanificationService_Cancel_RejectsTerminalStates(t *testing.T) {
	t.Parallel()

	for _, state := range []PlanificationState{StateDone, StateCancelled} {
		state := state
		t.Run(string(state), func(t *testing.T) {
			t.Parallel()

			store := newPlanStoreStub(Planification{ID: "plan-1", Title: "Retro", State: state, Start: fixedNow(), Duration: time.Hour})
			svc := newPlanService(store, newRosterStub(), &calendarStub{}, &invitationStub{})

			_, err := svc.Cancel(context.Background(), Principal{UserID: "user-1"}, "plan-1")

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestPlanificationService_DeletePlanification_Preconditions(t *testing.T) {
	t.Parallel()

	meetingID := "meeting-1"
	cases := []struct {
		name string
		plan Planification
	}{
		{name: "confirmed", plan: Planification{ID: "plan-1", Title: "Retro", State: StateConfirmed}},
		{name: "has meeting", plan: Planification{ID: "plan-1", Title: "Retro", State: StateDraft, MeetingID: &meetingID}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newPlanStoreStub(tc.plan)
			svc := newPlanService(store, newRosterStub(), &calendarStub{}, &invitationStub{})

			err := svc.DeletePlanification(context.Background(), Principal{UserID: "user-1"}, "plan-1")

			var pErr *PreconditionError
			if !errors.As(err, &pErr) {
				t.Fatalf("expected PreconditionError, got %v", err)
			}
			if _, ok := store.plans["plan-1"]; !ok {
				t.Fatal("planification was deleted despite the precondition")
			}
		})
	}
}

func TestPlanificationService_DeletePlanification_DraftSucceeds(t *testing.T) {
	t.Parallel()

	store := newPlanStoreStub(Planification{ID: "plan-1", Title: "Retro", State: StateDraft})
	svc := newPlanService(store, newRosterStub(), &calendarStub{}, &invitationStub{})

	if err := svc.DeletePlanification(context.Background(), Principal{UserID: "user-1"}, "plan-1"); err != nil {
		t.Fatalf("DeletePlanification returned %v", err)
	}
	if _, ok := store.plans["plan-1"]; ok {
		t.Fatal("planification still present after delete")
	}
}

func TestPlanificationService_ResetToDraft(t *testing.T) {
	t.Parallel()

	store := newPlanStoreStub(Planification{ID: "plan-1", Title: "Retro", State: StateCancelled})
	svc := newPlanService(store, newRosterStub(), &calendarStub{}, &invitationStub{})

	plan, err := svc.ResetToDraft(context.Background(), Principal{UserID: "user-1"}, "plan-1")
	if err != nil {
		t.Fatalf("ResetToDraft returned %v", err)
	}
	if plan.State != StateDraft {
		t.Fatalf("expected draft, got %s", plan.State)
	}
}

func TestPlanificationService_ResetToDraft_BlockedByMeeting(t *testing.T) {
	t.Parallel()

	meetingID := "meeting-1"
	store := newPlanStoreStub(Planification{ID: "plan-1", Title: "Retro", State: StateCancelled, MeetingID: &meetingID})
	svc := newPlanService(store, newRosterStub(), &calendarStub{}, &invitationStub{})

	_, err := svc.ResetToDraft(context.Background(), Principal{UserID: "user-1"}, "plan-1")

	var pErr *PreconditionError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
}

func TestPlanificationService_UpdatePlanification_ReplacesReservationsWhilePlanned(t *testing.T) {
	t.Parallel()

	roomID := "room-1"
	store := newPlanStoreStub(Planification{
		ID: "plan-1", Title: "Retro", State: StatePlanned,
		Start: fixedNow().Add(time.Hour), Duration: time.Hour, RoomID: &roomID,
	})
	svc := newPlanService(store, newRosterStub(), &calendarStub{}, &invitationStub{})

	_, err := svc.UpdatePlanification(context.Background(), Principal{UserID: "user-1"}, "plan-1", PlanificationInput{
		Title:    "Retro",
		Start:    fixedNow().Add(2 * time.Hour),
		Duration: time.Hour,
		RoomID:   &roomID,
	})
	if err != nil {
		t.Fatalf("UpdatePlanification returned %v", err)
	}

	reservations := store.reservations["plan-1"]
	if len(reservations) != 1 {
		t.Fatalf("expected 1 replaced reservation, got %d", len(reservations))
	}
	if !reservations[0].Start.Equal(fixedNow().Add(2 * time.Hour)) {
		t.Fatalf("reservation not moved to the new interval: %v", reservations[0].Start)
	}
}

func TestPlanificationService_UpdatePlanification_RejectsStartedPlan(t *testing.T) {
	t.Parallel()

	store := newPlanStoreStub(Planification{ID: "plan-1", Title: "Retro", State: StateStarted, Start: fixedNow(), Duration: time.Hour})
	svc := newPlanService(store, newRosterStub(), &calendarStub{}, &invitationStub{})

	_, err := svc.UpdatePlanification(context.Background(), Principal{UserID: "user-1"}, "plan-1", PlanificationInput{
		Title:    "Retro",
		Start:    fixedNow().Add(time.Hour),
		Duration: time.Hour,
	})

	var pErr *PreconditionError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}
}

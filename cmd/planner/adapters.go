package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/meeting-planner/internal/application"
	"github.com/example/meeting-planner/internal/persistence"
	"github.com/example/meeting-planner/internal/persistence/sqlite"
)

type roomRepositoryAdapter struct {
	repo *sqlite.RoomRepository
}

func newRoomRepositoryAdapter(repo *sqlite.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) UpdateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.UpdateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

func (a *roomRepositoryAdapter) DeleteRoom(ctx context.Context, id string) error {
	return a.repo.DeleteRoom(ctx, id)
}

type equipmentRepositoryAdapter struct {
	repo *sqlite.EquipmentRepository
}

func newEquipmentRepositoryAdapter(repo *sqlite.EquipmentRepository) *equipmentRepositoryAdapter {
	return &equipmentRepositoryAdapter{repo: repo}
}

func (a *equipmentRepositoryAdapter) CreateEquipment(ctx context.Context, eq application.Equipment) (application.Equipment, error) {
	if err := a.repo.CreateEquipment(ctx, toPersistenceEquipment(eq)); err != nil {
		return application.Equipment{}, err
	}
	stored, err := a.repo.GetEquipment(ctx, eq.ID)
	if err != nil {
		return application.Equipment{}, err
	}
	return toApplicationEquipment(stored), nil
}

func (a *equipmentRepositoryAdapter) UpdateEquipment(ctx context.Context, eq application.Equipment) (application.Equipment, error) {
	if err := a.repo.UpdateEquipment(ctx, toPersistenceEquipment(eq)); err != nil {
		return application.Equipment{}, err
	}
	stored, err := a.repo.GetEquipment(ctx, eq.ID)
	if err != nil {
		return application.Equipment{}, err
	}
	return toApplicationEquipment(stored), nil
}

func (a *equipmentRepositoryAdapter) GetEquipment(ctx context.Context, id string) (application.Equipment, error) {
	stored, err := a.repo.GetEquipment(ctx, id)
	if err != nil {
		return application.Equipment{}, err
	}
	return toApplicationEquipment(stored), nil
}

func (a *equipmentRepositoryAdapter) ListEquipment(ctx context.Context) ([]application.Equipment, error) {
	models, err := a.repo.ListEquipment(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]application.Equipment, 0, len(models))
	for _, model := range models {
		items = append(items, toApplicationEquipment(model))
	}
	return items, nil
}

func (a *equipmentRepositoryAdapter) DeleteEquipment(ctx context.Context, id string) error {
	return a.repo.DeleteEquipment(ctx, id)
}

type locationRepositoryAdapter struct {
	repo *sqlite.LocationRepository
}

func newLocationRepositoryAdapter(repo *sqlite.LocationRepository) *locationRepositoryAdapter {
	return &locationRepositoryAdapter{repo: repo}
}

func (a *locationRepositoryAdapter) CreateLocation(ctx context.Context, loc application.Location) (application.Location, error) {
	if err := a.repo.CreateLocation(ctx, toPersistenceLocation(loc)); err != nil {
		return application.Location{}, err
	}
	stored, err := a.repo.GetLocation(ctx, loc.ID)
	if err != nil {
		return application.Location{}, err
	}
	return toApplicationLocation(stored), nil
}

func (a *locationRepositoryAdapter) UpdateLocation(ctx context.Context, loc application.Location) (application.Location, error) {
	if err := a.repo.UpdateLocation(ctx, toPersistenceLocation(loc)); err != nil {
		return application.Location{}, err
	}
	stored, err := a.repo.GetLocation(ctx, loc.ID)
	if err != nil {
		return application.Location{}, err
	}
	return toApplicationLocation(stored), nil
}

func (a *locationRepositoryAdapter) GetLocation(ctx context.Context, id string) (application.Location, error) {
	stored, err := a.repo.GetLocation(ctx, id)
	if err != nil {
		return application.Location{}, err
	}
	return toApplicationLocation(stored), nil
}

func (a *locationRepositoryAdapter) ListLocations(ctx context.Context) ([]application.Location, error) {
	models, err := a.repo.ListLocations(ctx)
	if err != nil {
		return nil, err
	}
	locations := make([]application.Location, 0, len(models))
	for _, model := range models {
		locations = append(locations, toApplicationLocation(model))
	}
	return locations, nil
}

func (a *locationRepositoryAdapter) DeleteLocation(ctx context.Context, id string) error {
	return a.repo.DeleteLocation(ctx, id)
}

type roleDirectoryAdapter struct {
	repo *sqlite.RoleRepository
}

func newRoleDirectoryAdapter(repo *sqlite.RoleRepository) *roleDirectoryAdapter {
	return &roleDirectoryAdapter{repo: repo}
}

func (a *roleDirectoryAdapter) CreateRole(ctx context.Context, role application.Role) (application.Role, error) {
	if err := a.repo.CreateRole(ctx, toPersistenceRole(role)); err != nil {
		return application.Role{}, err
	}
	stored, err := a.repo.GetRole(ctx, role.ID)
	if err != nil {
		return application.Role{}, err
	}
	return toApplicationRole(stored), nil
}

func (a *roleDirectoryAdapter) UpdateRole(ctx context.Context, role application.Role) (application.Role, error) {
	if err := a.repo.UpdateRole(ctx, toPersistenceRole(role)); err != nil {
		return application.Role{}, err
	}
	stored, err := a.repo.GetRole(ctx, role.ID)
	if err != nil {
		return application.Role{}, err
	}
	return toApplicationRole(stored), nil
}

func (a *roleDirectoryAdapter) GetRole(ctx context.Context, id string) (application.Role, error) {
	stored, err := a.repo.GetRole(ctx, id)
	if err != nil {
		return application.Role{}, err
	}
	return toApplicationRole(stored), nil
}

func (a *roleDirectoryAdapter) GetRoleByName(ctx context.Context, name string) (application.Role, error) {
	stored, err := a.repo.GetRoleByName(ctx, name)
	if err != nil {
		return application.Role{}, err
	}
	return toApplicationRole(stored), nil
}

func (a *roleDirectoryAdapter) ListRoles(ctx context.Context) ([]application.Role, error) {
	models, err := a.repo.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	roles := make([]application.Role, 0, len(models))
	for _, model := range models {
		roles = append(roles, toApplicationRole(model))
	}
	return roles, nil
}

func (a *roleDirectoryAdapter) DeleteRole(ctx context.Context, id string) error {
	return a.repo.DeleteRole(ctx, id)
}

func (a *roleDirectoryAdapter) CountParticipantsWithRole(ctx context.Context, roleID string) (int, error) {
	return a.repo.CountParticipantsWithRole(ctx, roleID)
}

// occupancyAdapter composes the reservation ledger and the meeting table
// into the instant-occupancy view status endpoints need.
type occupancyAdapter struct {
	reservations *sqlite.ReservationRepository
	meetings     *sqlite.MeetingRepository
}

func newOccupancyAdapter(reservations *sqlite.ReservationRepository, meetings *sqlite.MeetingRepository) *occupancyAdapter {
	return &occupancyAdapter{reservations: reservations, meetings: meetings}
}

func (a *occupancyAdapter) CoveringReservation(ctx context.Context, roomID, equipmentID *string, at time.Time) (application.Reservation, error) {
	filter := persistence.ReservationFilter{
		RoomID:      roomID,
		EquipmentID: equipmentID,
		ActiveOnly:  true,
	}
	stored, err := a.reservations.CoveringReservation(ctx, filter, at)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *occupancyAdapter) ListActiveReservations(ctx context.Context, roomID, equipmentID *string) ([]application.Reservation, error) {
	filter := persistence.ReservationFilter{
		RoomID:      roomID,
		EquipmentID: equipmentID,
		ActiveOnly:  true,
	}
	models, err := a.reservations.ListReservations(ctx, filter)
	if err != nil {
		return nil, err
	}
	reservations := make([]application.Reservation, 0, len(models))
	for _, model := range models {
		reservations = append(reservations, toApplicationReservation(model))
	}
	return reservations, nil
}

func (a *occupancyAdapter) InProgressMeetingForRoom(ctx context.Context, roomID string, at time.Time) (application.Meeting, error) {
	filter := persistence.MeetingFilter{
		RoomID:     &roomID,
		States:     []string{string(application.MeetingInProgress)},
		CoveringAt: &at,
	}
	meetings, err := a.meetings.ListMeetings(ctx, filter)
	if err != nil {
		return application.Meeting{}, err
	}
	if len(meetings) == 0 {
		return application.Meeting{}, persistence.ErrNotFound
	}
	return toApplicationMeeting(meetings[0]), nil
}

type contactResolverAdapter struct {
	repo *sqlite.ContactRepository
}

func newContactResolverAdapter(repo *sqlite.ContactRepository) *contactResolverAdapter {
	return &contactResolverAdapter{repo: repo}
}

func (a *contactResolverAdapter) ResolveEmployee(ctx context.Context, employeeID string) (application.Contact, error) {
	return a.resolve(ctx, "employee", employeeID)
}

func (a *contactResolverAdapter) ResolvePartner(ctx context.Context, partnerID string) (application.Contact, error) {
	return a.resolve(ctx, "partner", partnerID)
}

func (a *contactResolverAdapter) resolve(ctx context.Context, kind, id string) (application.Contact, error) {
	stored, err := a.repo.GetContact(ctx, kind, id)
	if err != nil {
		return application.Contact{}, err
	}
	return application.Contact{
		Name:   stored.Name,
		Email:  stored.Email,
		UserID: stored.UserID,
	}, nil
}

type planificationStoreAdapter struct {
	repo *sqlite.PlanificationRepository
}

func newPlanificationStoreAdapter(repo *sqlite.PlanificationRepository) *planificationStoreAdapter {
	return &planificationStoreAdapter{repo: repo}
}

func (a *planificationStoreAdapter) CreatePlanification(ctx context.Context, plan application.Planification) (application.Planification, error) {
	if err := a.repo.CreatePlanification(ctx, toPersistencePlanification(plan)); err != nil {
		return application.Planification{}, err
	}
	stored, err := a.repo.GetPlanification(ctx, plan.ID)
	if err != nil {
		return application.Planification{}, err
	}
	return toApplicationPlanification(stored), nil
}

func (a *planificationStoreAdapter) UpdatePlanification(ctx context.Context, plan application.Planification) (application.Planification, error) {
	if err := a.repo.UpdatePlanification(ctx, toPersistencePlanification(plan)); err != nil {
		return application.Planification{}, err
	}
	stored, err := a.repo.GetPlanification(ctx, plan.ID)
	if err != nil {
		return application.Planification{}, err
	}
	return toApplicationPlanification(stored), nil
}

func (a *planificationStoreAdapter) GetPlanification(ctx context.Context, id string) (application.Planification, error) {
	stored, err := a.repo.GetPlanification(ctx, id)
	if err != nil {
		return application.Planification{}, err
	}
	return toApplicationPlanification(stored), nil
}

func (a *planificationStoreAdapter) ListPlanifications(ctx context.Context, query application.PlanificationQuery) ([]application.Planification, error) {
	filter := persistence.PlanificationFilter{
		StartsAfter: query.StartsAfter,
		EndsBefore:  query.EndsBefore,
		RoomID:      query.RoomID,
	}
	for _, state := range query.States {
		filter.States = append(filter.States, string(state))
	}
	models, err := a.repo.ListPlanifications(ctx, filter)
	if err != nil {
		return nil, err
	}
	plans := make([]application.Planification, 0, len(models))
	for _, model := range models {
		plans = append(plans, toApplicationPlanification(model))
	}
	return plans, nil
}

func (a *planificationStoreAdapter) DeletePlanification(ctx context.Context, id string) error {
	return a.repo.DeletePlanification(ctx, id)
}

func (a *planificationStoreAdapter) UpdateState(ctx context.Context, id string, from, to application.PlanificationState) error {
	return a.repo.UpdateState(ctx, id, string(from), string(to))
}

func (a *planificationStoreAdapter) TransitionToPlanned(ctx context.Context, id string, reservations []application.Reservation) error {
	return a.repo.TransitionToPlanned(ctx, id, toPersistenceReservations(reservations))
}

func (a *planificationStoreAdapter) ReplaceReservations(ctx context.Context, id string, reservations []application.Reservation) error {
	return a.repo.ReplaceReservations(ctx, id, toPersistenceReservations(reservations))
}

func (a *planificationStoreAdapter) LinkMeeting(ctx context.Context, id, meetingID string) error {
	return a.repo.LinkMeeting(ctx, id, meetingID)
}

func (a *planificationStoreAdapter) SetCalendarEvent(ctx context.Context, id string, eventID *string) error {
	return a.repo.SetCalendarEvent(ctx, id, eventID)
}

type participantDirectoryAdapter struct {
	repo *sqlite.ParticipantRepository
}

func newParticipantDirectoryAdapter(repo *sqlite.ParticipantRepository) *participantDirectoryAdapter {
	return &participantDirectoryAdapter{repo: repo}
}

func (a *participantDirectoryAdapter) CreateParticipant(ctx context.Context, p application.Participant) (application.Participant, error) {
	if err := a.repo.AddParticipant(ctx, toPersistenceParticipant(p)); err != nil {
		return application.Participant{}, err
	}
	stored, err := a.repo.GetParticipant(ctx, p.ID)
	if err != nil {
		return application.Participant{}, err
	}
	return toApplicationParticipant(stored), nil
}

func (a *participantDirectoryAdapter) GetParticipant(ctx context.Context, id string) (application.Participant, error) {
	stored, err := a.repo.GetParticipant(ctx, id)
	if err != nil {
		return application.Participant{}, err
	}
	return toApplicationParticipant(stored), nil
}

func (a *participantDirectoryAdapter) ListParticipants(ctx context.Context, planificationID string) ([]application.Participant, error) {
	models, err := a.repo.ListParticipants(ctx, planificationID)
	if err != nil {
		return nil, err
	}
	participants := make([]application.Participant, 0, len(models))
	for _, model := range models {
		participants = append(participants, toApplicationParticipant(model))
	}
	return participants, nil
}

func (a *participantDirectoryAdapter) UpdateParticipant(ctx context.Context, p application.Participant) (application.Participant, error) {
	if err := a.repo.UpdateParticipant(ctx, toPersistenceParticipant(p)); err != nil {
		return application.Participant{}, err
	}
	stored, err := a.repo.GetParticipant(ctx, p.ID)
	if err != nil {
		return application.Participant{}, err
	}
	return toApplicationParticipant(stored), nil
}

func (a *participantDirectoryAdapter) DeleteParticipant(ctx context.Context, id string) error {
	return a.repo.DeleteParticipant(ctx, id)
}

func (a *participantDirectoryAdapter) SetAccessTokenIfEmpty(ctx context.Context, participantID, token string) (string, error) {
	return a.repo.SetAccessTokenIfEmpty(ctx, participantID, token)
}

func (a *participantDirectoryAdapter) UpdateInvitationStatus(ctx context.Context, participantID string, from, to application.InvitationStatus) error {
	return a.repo.UpdateInvitationStatus(ctx, participantID, string(from), string(to))
}

func (a *participantDirectoryAdapter) LinkMeeting(ctx context.Context, planificationID, meetingID string) error {
	return a.repo.LinkMeeting(ctx, planificationID, meetingID)
}

// resourceCatalogAdapter resolves display names for reservation labels.
type resourceCatalogAdapter struct {
	rooms     *sqlite.RoomRepository
	equipment *sqlite.EquipmentRepository
}

func newResourceCatalogAdapter(rooms *sqlite.RoomRepository, equipment *sqlite.EquipmentRepository) *resourceCatalogAdapter {
	return &resourceCatalogAdapter{rooms: rooms, equipment: equipment}
}

func (a *resourceCatalogAdapter) RoomName(ctx context.Context, id string) (string, error) {
	room, err := a.rooms.GetRoom(ctx, id)
	if err != nil {
		return "", err
	}
	return room.Name, nil
}

func (a *resourceCatalogAdapter) EquipmentName(ctx context.Context, id string) (string, error) {
	eq, err := a.equipment.GetEquipment(ctx, id)
	if err != nil {
		return "", err
	}
	return eq.Name, nil
}

type meetingStoreAdapter struct {
	repo        *sqlite.MeetingRepository
	idGenerator func() string
}

func newMeetingStoreAdapter(repo *sqlite.MeetingRepository, idGenerator func() string) *meetingStoreAdapter {
	return &meetingStoreAdapter{repo: repo, idGenerator: idGenerator}
}

func (a *meetingStoreAdapter) CreateMeeting(ctx context.Context, meeting application.Meeting) (application.Meeting, error) {
	if err := a.repo.CreateMeeting(ctx, toPersistenceMeeting(meeting)); err != nil {
		return application.Meeting{}, err
	}
	stored, err := a.repo.GetMeeting(ctx, meeting.ID)
	if err != nil {
		return application.Meeting{}, err
	}
	return toApplicationMeeting(stored), nil
}

func (a *meetingStoreAdapter) GetMeeting(ctx context.Context, id string) (application.Meeting, error) {
	stored, err := a.repo.GetMeeting(ctx, id)
	if err != nil {
		return application.Meeting{}, err
	}
	return toApplicationMeeting(stored), nil
}

func (a *meetingStoreAdapter) UpdateMeeting(ctx context.Context, meeting application.Meeting) (application.Meeting, error) {
	if err := a.repo.UpdateMeeting(ctx, toPersistenceMeeting(meeting)); err != nil {
		return application.Meeting{}, err
	}
	stored, err := a.repo.GetMeeting(ctx, meeting.ID)
	if err != nil {
		return application.Meeting{}, err
	}
	return toApplicationMeeting(stored), nil
}

func (a *meetingStoreAdapter) UpdateMeetingState(ctx context.Context, id string, from, to application.MeetingState) error {
	return a.repo.UpdateMeetingState(ctx, id, string(from), string(to))
}

func (a *meetingStoreAdapter) AddNote(ctx context.Context, note application.MeetingNote) (application.MeetingNote, error) {
	if err := a.repo.AddNote(ctx, persistence.MeetingNote(note)); err != nil {
		return application.MeetingNote{}, err
	}
	return note, nil
}

func (a *meetingStoreAdapter) ListNotes(ctx context.Context, meetingID string) ([]application.MeetingNote, error) {
	models, err := a.repo.ListNotes(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	notes := make([]application.MeetingNote, 0, len(models))
	for _, model := range models {
		notes = append(notes, application.MeetingNote(model))
	}
	return notes, nil
}

func (a *meetingStoreAdapter) AddDecision(ctx context.Context, decision application.MeetingDecision) (application.MeetingDecision, error) {
	if err := a.repo.AddDecision(ctx, persistence.MeetingDecision(decision)); err != nil {
		return application.MeetingDecision{}, err
	}
	return decision, nil
}

func (a *meetingStoreAdapter) ListDecisions(ctx context.Context, meetingID string) ([]application.MeetingDecision, error) {
	models, err := a.repo.ListDecisions(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	decisions := make([]application.MeetingDecision, 0, len(models))
	for _, model := range models {
		decisions = append(decisions, application.MeetingDecision(model))
	}
	return decisions, nil
}

func (a *meetingStoreAdapter) SaveSummary(ctx context.Context, summary application.MeetingSummary) error {
	return a.repo.SaveSummary(ctx, persistence.MeetingSummary{
		ID:               a.idGenerator(),
		MeetingID:        summary.MeetingID,
		RawText:          summary.RawText,
		ExecutiveSummary: summary.Sections.ExecutiveSummary,
		KeyDecisions:     summary.Sections.KeyDecisions,
		ActionItems:      summary.Sections.ActionItems,
		DiscussionPoints: summary.Sections.DiscussionPoints,
		ModelUsed:        summary.Model,
		CreatedAt:        summary.GeneratedAt,
	})
}

func (a *meetingStoreAdapter) GetSummary(ctx context.Context, meetingID string) (application.MeetingSummary, error) {
	stored, err := a.repo.GetSummary(ctx, meetingID)
	if err != nil {
		return application.MeetingSummary{}, err
	}
	return application.MeetingSummary{
		MeetingID: stored.MeetingID,
		RawText:   stored.RawText,
		Model:     stored.ModelUsed,
		Sections: application.Summary{
			ExecutiveSummary: stored.ExecutiveSummary,
			KeyDecisions:     stored.KeyDecisions,
			ActionItems:      stored.ActionItems,
			DiscussionPoints: stored.DiscussionPoints,
		},
		GeneratedAt: stored.CreatedAt,
	}, nil
}

type sessionStoreAdapter struct {
	repo *sqlite.SessionRepository
}

func newSessionStoreAdapter(repo *sqlite.SessionRepository) *sessionStoreAdapter {
	return &sessionStoreAdapter{repo: repo}
}

func (a *sessionStoreAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	if err := a.repo.CreateSession(ctx, toPersistenceSession(session)); err != nil {
		return application.Session{}, err
	}
	stored, err := a.repo.GetSession(ctx, session.ID)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionStoreAdapter) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	if err := a.repo.UpdateSession(ctx, toPersistenceSession(session)); err != nil {
		return application.Session{}, err
	}
	stored, err := a.repo.GetSession(ctx, session.ID)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionStoreAdapter) GetSession(ctx context.Context, id string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionStoreAdapter) GetSessionByMeetingAndUser(ctx context.Context, meetingID, userID string) (application.Session, error) {
	stored, err := a.repo.GetSessionByMeetingAndUser(ctx, meetingID, userID)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionStoreAdapter) ListSessions(ctx context.Context, meetingID string) ([]application.Session, error) {
	models, err := a.repo.ListSessions(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	sessions := make([]application.Session, 0, len(models))
	for _, model := range models {
		sessions = append(sessions, toApplicationSession(model))
	}
	return sessions, nil
}

type actionStoreAdapter struct {
	repo *sqlite.ActionRepository
}

func newActionStoreAdapter(repo *sqlite.ActionRepository) *actionStoreAdapter {
	return &actionStoreAdapter{repo: repo}
}

func (a *actionStoreAdapter) CreateAction(ctx context.Context, action application.Action) (application.Action, error) {
	if err := a.repo.CreateAction(ctx, toPersistenceAction(action)); err != nil {
		return application.Action{}, err
	}
	stored, err := a.repo.GetAction(ctx, action.ID)
	if err != nil {
		return application.Action{}, err
	}
	return toApplicationAction(stored), nil
}

func (a *actionStoreAdapter) UpdateAction(ctx context.Context, action application.Action) (application.Action, error) {
	if err := a.repo.UpdateAction(ctx, toPersistenceAction(action)); err != nil {
		return application.Action{}, err
	}
	stored, err := a.repo.GetAction(ctx, action.ID)
	if err != nil {
		return application.Action{}, err
	}
	return toApplicationAction(stored), nil
}

func (a *actionStoreAdapter) GetAction(ctx context.Context, id string) (application.Action, error) {
	stored, err := a.repo.GetAction(ctx, id)
	if err != nil {
		return application.Action{}, err
	}
	return toApplicationAction(stored), nil
}

func (a *actionStoreAdapter) ListActions(ctx context.Context, query application.ActionQuery) ([]application.Action, error) {
	models, err := a.repo.ListActions(ctx, persistence.ActionFilter{
		MeetingID:  query.MeetingID,
		SessionID:  query.SessionID,
		ParentID:   query.ParentID,
		AssigneeID: query.AssigneeID,
	})
	if err != nil {
		return nil, err
	}
	actions := make([]application.Action, 0, len(models))
	for _, model := range models {
		actions = append(actions, toApplicationAction(model))
	}
	return actions, nil
}

func (a *actionStoreAdapter) DeleteAction(ctx context.Context, id string) error {
	return a.repo.DeleteAction(ctx, id)
}

// auditLogAdapter appends domain events to the audit trail. Failures are
// logged, never surfaced: auditing must not break the operation it records.
type auditLogAdapter struct {
	repo        *sqlite.AuditRepository
	idGenerator func() string
	logger      *slog.Logger
}

func newAuditLogAdapter(repo *sqlite.AuditRepository, idGenerator func() string, logger *slog.Logger) *auditLogAdapter {
	return &auditLogAdapter{repo: repo, idGenerator: idGenerator, logger: logger}
}

func (a *auditLogAdapter) Record(ctx context.Context, entry application.AuditEntry) {
	err := a.repo.AppendAudit(ctx, persistence.AuditEntry{
		ID:         a.idGenerator(),
		EntityKind: entry.EntityKind,
		EntityID:   entry.EntityID,
		Event:      entry.Event,
		ActorID:    entry.ActorID,
		Message:    entry.Message,
	})
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to append audit entry",
			"entity_kind", entry.EntityKind, "entity_id", entry.EntityID, "event", entry.Event, "error", err)
	}
}

// logNotifier delivers in-app notifications to the log until a real
// notification channel is wired.
type logNotifier struct {
	logger *slog.Logger
}

func (n logNotifier) Notify(ctx context.Context, recipientUserID, subject, body string) error {
	n.logger.InfoContext(ctx, "notification", "recipient", recipientUserID, "subject", subject, "body", body)
	return nil
}

type logInvitationSender struct {
	logger *slog.Logger
}

func (s logInvitationSender) SendInvitation(ctx context.Context, participant application.Participant, tokenLink string) error {
	s.logger.InfoContext(ctx, "invitation sent",
		"participant_id", participant.ID, "email", participant.Email, "link", tokenLink)
	return nil
}

type logCalendarSync struct {
	idGenerator func() string
	logger      *slog.Logger
}

func (c logCalendarSync) CreateEvent(ctx context.Context, plan application.Planification) (string, error) {
	eventID := "evt-" + c.idGenerator()
	c.logger.InfoContext(ctx, "calendar event created", "planification_id", plan.ID, "event_id", eventID)
	return eventID, nil
}

func (c logCalendarSync) UpdateEvent(ctx context.Context, eventID string, plan application.Planification) error {
	c.logger.InfoContext(ctx, "calendar event updated", "planification_id", plan.ID, "event_id", eventID)
	return nil
}

func (c logCalendarSync) DeleteEvent(ctx context.Context, eventID string) error {
	c.logger.InfoContext(ctx, "calendar event deleted", "event_id", eventID)
	return nil
}

type logMinutesExporter struct {
	logger *slog.Logger
}

func (e logMinutesExporter) ExportMinutes(ctx context.Context, meeting application.Meeting) error {
	e.logger.InfoContext(ctx, "minutes exported", "meeting_id", meeting.ID, "pv_length", len(meeting.PV))
	return nil
}

// templateSummaryClient renders the tagged summary sections from the
// structured meeting data without calling an external model.
type templateSummaryClient struct{}

func (templateSummaryClient) GenerateSummary(ctx context.Context, input application.SummaryInput) (string, string, error) {
	var b strings.Builder

	b.WriteString("[EXECUTIVE_SUMMARY]\n")
	fmt.Fprintf(&b, "%s (%s) held on %s with %d participants.\n",
		input.Title, input.Subject, input.Start.Format("2006-01-02"), len(input.Participants))
	if len(input.Notes) > 0 {
		fmt.Fprintf(&b, "%d notes were captured during the meeting.\n", len(input.Notes))
	}
	b.WriteString("[/EXECUTIVE_SUMMARY]\n")

	b.WriteString("[KEY_DECISIONS]\n")
	writeBulleted(&b, input.Decisions, "No decisions were recorded.")
	b.WriteString("[/KEY_DECISIONS]\n")

	b.WriteString("[ACTION_ITEMS_SUMMARY]\n")
	writeBulleted(&b, input.Actions, "No action items were recorded.")
	b.WriteString("[/ACTION_ITEMS_SUMMARY]\n")

	b.WriteString("[DISCUSSION_POINTS]\n")
	points := input.AgendaLines
	if len(input.Notes) > 0 {
		points = input.Notes
	}
	writeBulleted(&b, points, "No discussion points were recorded.")
	b.WriteString("[/DISCUSSION_POINTS]\n")

	return b.String(), "template-v1", nil
}

func writeBulleted(b *strings.Builder, lines []string, empty string) {
	if len(lines) == 0 {
		b.WriteString(empty + "\n")
		return
	}
	for _, line := range lines {
		fmt.Fprintf(b, "- %s\n", line)
	}
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room(room)
}

func toApplicationRoom(room persistence.Room) application.Room {
	return application.Room(room)
}

func toPersistenceEquipment(eq application.Equipment) persistence.Equipment {
	return persistence.Equipment(eq)
}

func toApplicationEquipment(eq persistence.Equipment) application.Equipment {
	return application.Equipment(eq)
}

func toPersistenceLocation(loc application.Location) persistence.Location {
	return persistence.Location{
		ID:          loc.ID,
		Name:        loc.Name,
		Address:     loc.Address,
		Description: loc.Description,
		OnSite:      loc.OnSite,
		CreatedAt:   loc.CreatedAt,
		UpdatedAt:   loc.UpdatedAt,
	}
}

func toApplicationLocation(loc persistence.Location) application.Location {
	return application.Location{
		ID:          loc.ID,
		Name:        loc.Name,
		Address:     loc.Address,
		Description: loc.Description,
		OnSite:      loc.OnSite,
		CreatedAt:   loc.CreatedAt,
		UpdatedAt:   loc.UpdatedAt,
	}
}

func toPersistenceRole(role application.Role) persistence.Role {
	return persistence.Role{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		System:      role.System,
	}
}

func toApplicationRole(role persistence.Role) application.Role {
	return application.Role{
		ID:          role.ID,
		Name:        role.Name,
		Description: role.Description,
		System:      role.System,
	}
}

func toPersistencePlanification(plan application.Planification) persistence.Planification {
	return persistence.Planification{
		ID:              plan.ID,
		Title:           plan.Title,
		Subject:         plan.Subject,
		State:           string(plan.State),
		Start:           plan.Start,
		DurationMinutes: int(plan.Duration / time.Minute),
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
		CreatedAt:       plan.CreatedAt,
		UpdatedAt:       plan.UpdatedAt,
	}
}

func toApplicationPlanification(plan persistence.Planification) application.Planification {
	return application.Planification{
		ID:              plan.ID,
		Title:           plan.Title,
		Subject:         plan.Subject,
		State:           application.PlanificationState(plan.State),
		Start:           plan.Start,
		Duration:        time.Duration(plan.DurationMinutes) * time.Minute,
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
		CreatedAt:       plan.CreatedAt,
		UpdatedAt:       plan.UpdatedAt,
	}
}

func toPersistenceReservations(reservations []application.Reservation) []persistence.Reservation {
	out := make([]persistence.Reservation, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, persistence.Reservation{
			ID:              res.ID,
			PlanificationID: res.PlanificationID,
			RoomID:          res.RoomID,
			EquipmentID:     res.EquipmentID,
			Label:           res.Label,
			Start:           res.Start,
			End:             res.End,
		})
	}
	return out
}

func toApplicationReservation(res persistence.Reservation) application.Reservation {
	return application.Reservation{
		ID:              res.ID,
		PlanificationID: res.PlanificationID,
		RoomID:          res.RoomID,
		EquipmentID:     res.EquipmentID,
		Label:           res.Label,
		Start:           res.Start,
		End:             res.End,
	}
}

func toPersistenceParticipant(p application.Participant) persistence.Participant {
	return persistence.Participant{
		ID:               p.ID,
		PlanificationID:  p.PlanificationID,
		MeetingID:        p.MeetingID,
		EmployeeID:       p.Identity.EmployeeID,
		PartnerID:        p.Identity.PartnerID,
		Name:             p.Name,
		Email:            p.Email,
		UserID:           p.UserID,
		RoleID:           p.RoleID,
		IsPV:             p.IsPV,
		AccessToken:      p.AccessToken,
		InvitationStatus: string(p.InvitationStatus),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toApplicationParticipant(p persistence.Participant) application.Participant {
	return application.Participant{
		ID:              p.ID,
		PlanificationID: p.PlanificationID,
		MeetingID:       p.MeetingID,
		Identity: application.Identity{
			EmployeeID: p.EmployeeID,
			PartnerID:  p.PartnerID,
		},
		Name:             p.Name,
		Email:            p.Email,
		UserID:           p.UserID,
		RoleID:           p.RoleID,
		RoleName:         p.RoleName,
		IsPV:             p.IsPV,
		AccessToken:      p.AccessToken,
		InvitationStatus: application.InvitationStatus(p.InvitationStatus),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toPersistenceMeeting(m application.Meeting) persistence.Meeting {
	return persistence.Meeting{
		ID:              m.ID,
		PlanificationID: m.PlanificationID,
		Title:           m.Title,
		Subject:         m.Subject,
		State:           string(m.State),
		Start:           m.Start,
		DurationMinutes: int(m.Duration / time.Minute),
		RoomID:          m.RoomID,
		LocationID:      m.LocationID,
		AgendaLines:     m.AgendaLines,
		ActualStart:     m.ActualStart,
		ActualEnd:       m.ActualEnd,
		PV:              m.PV,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toApplicationMeeting(m persistence.Meeting) application.Meeting {
	return application.Meeting{
		ID:              m.ID,
		PlanificationID: m.PlanificationID,
		Title:           m.Title,
		Subject:         m.Subject,
		State:           application.MeetingState(m.State),
		Start:           m.Start,
		Duration:        time.Duration(m.DurationMinutes) * time.Minute,
		RoomID:          m.RoomID,
		LocationID:      m.LocationID,
		AgendaLines:     m.AgendaLines,
		ActualStart:     m.ActualStart,
		ActualEnd:       m.ActualEnd,
		PV:              m.PV,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toPersistenceSession(s application.Session) persistence.Session {
	return persistence.Session{
		ID:            s.ID,
		MeetingID:     s.MeetingID,
		ParticipantID: s.ParticipantID,
		UserID:        s.UserID,
		State:         string(s.State),
		Attendance:    string(s.Attendance),
		JoinedAt:      s.JoinedAt,
		LeftAt:        s.LeftAt,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toApplicationSession(s persistence.Session) application.Session {
	return application.Session{
		ID:            s.ID,
		MeetingID:     s.MeetingID,
		ParticipantID: s.ParticipantID,
		UserID:        s.UserID,
		State:         application.SessionState(s.State),
		Attendance:    application.AttendanceStatus(s.Attendance),
		JoinedAt:      s.JoinedAt,
		LeftAt:        s.LeftAt,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func toPersistenceAction(a application.Action) persistence.Action {
	return persistence.Action{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		AssigneeID:  a.AssigneeID,
		MeetingID:   a.MeetingID,
		SessionID:   a.SessionID,
		ParentID:    a.ParentID,
		Priority:    string(a.Priority),
		Status:      string(a.Status),
		DueDate:     a.DueDate,
		CompletedAt: a.CompletedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func toApplicationAction(a persistence.Action) application.Action {
	return application.Action{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		AssigneeID:  a.AssigneeID,
		MeetingID:   a.MeetingID,
		SessionID:   a.SessionID,
		ParentID:    a.ParentID,
		Priority:    application.ActionPriority(a.Priority),
		Status:      application.ActionStatus(a.Status),
		DueDate:     a.DueDate,
		CompletedAt: a.CompletedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

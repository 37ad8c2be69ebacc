package persistence

import (
	"context"
	"time"
)

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// EquipmentRepository exposes CRUD operations for equipment and their types.
type EquipmentRepository interface {
	CreateEquipment(ctx context.Context, eq Equipment) error
	UpdateEquipment(ctx context.Context, eq Equipment) error
	GetEquipment(ctx context.Context, id string) (Equipment, error)
	ListEquipment(ctx context.Context) ([]Equipment, error)
	DeleteEquipment(ctx context.Context, id string) error

	CreateEquipmentType(ctx context.Context, et EquipmentType) error
	GetEquipmentType(ctx context.Context, id string) (EquipmentType, error)
	ListEquipmentTypes(ctx context.Context) ([]EquipmentType, error)
}

// LocationRepository exposes CRUD operations for locations.
type LocationRepository interface {
	CreateLocation(ctx context.Context, loc Location) error
	UpdateLocation(ctx context.Context, loc Location) error
	GetLocation(ctx context.Context, id string) (Location, error)
	ListLocations(ctx context.Context) ([]Location, error)
	DeleteLocation(ctx context.Context, id string) error
}

// RoleRepository stores participant roles. Role names are unique.
type RoleRepository interface {
	CreateRole(ctx context.Context, role Role) error
	UpdateRole(ctx context.Context, role Role) error
	GetRole(ctx context.Context, id string) (Role, error)
	GetRoleByName(ctx context.Context, name string) (Role, error)
	ListRoles(ctx context.Context) ([]Role, error)
	DeleteRole(ctx context.Context, id string) error
	// CountParticipantsWithRole reports how many participants reference the role.
	CountParticipantsWithRole(ctx context.Context, roleID string) (int, error)
}

// ContactRepository resolves employee and partner identities.
type ContactRepository interface {
	CreateContact(ctx context.Context, c Contact) error
	GetContact(ctx context.Context, kind, id string) (Contact, error)
}

// PlanificationFilter narrows planification queries.
type PlanificationFilter struct {
	States      []string
	StartsAfter *time.Time
	EndsBefore  *time.Time
	RoomID      *string
}

// PlanificationRepository stores planifications and drives the state
// transitions that must be atomic with reservation writes.
type PlanificationRepository interface {
	CreatePlanification(ctx context.Context, plan Planification) error
	UpdatePlanification(ctx context.Context, plan Planification) error
	GetPlanification(ctx context.Context, id string) (Planification, error)
	ListPlanifications(ctx context.Context, filter PlanificationFilter) ([]Planification, error)
	DeletePlanification(ctx context.Context, id string) error

	// UpdateState transitions the planification from one state to another.
	// Returns ErrStale when the stored state no longer matches from.
	UpdateState(ctx context.Context, id, from, to string) error

	// TransitionToPlanned flips state from confirmed to planned and inserts
	// the given reservations in one transaction. Overlap against reservations
	// of other active planifications is re-checked inside the transaction;
	// a *ReservationConflict is returned and nothing is written when any
	// single claim conflicts.
	TransitionToPlanned(ctx context.Context, id string, reservations []Reservation) error

	// ReplaceReservations atomically swaps the planification's reservations,
	// re-running the same overlap validation. Used when room, equipment, or
	// the interval is edited while the planification is planned.
	ReplaceReservations(ctx context.Context, id string, reservations []Reservation) error

	// LinkMeeting records the materialized meeting id on the planification.
	LinkMeeting(ctx context.Context, id, meetingID string) error

	// SetCalendarEvent records or clears the external calendar event id.
	SetCalendarEvent(ctx context.Context, id string, eventID *string) error
}

// ReservationFilter narrows reservation queries.
type ReservationFilter struct {
	RoomID          *string
	EquipmentID     *string
	PlanificationID *string
	// ActiveOnly keeps reservations whose owning planification is in an
	// active state (confirmed, planned, started).
	ActiveOnly bool
}

// ReservationRepository reads the reservation ledger. Writes happen through
// PlanificationRepository so they stay atomic with state transitions.
type ReservationRepository interface {
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	// CoveringReservation returns the active reservation covering the instant
	// for the resource, or ErrNotFound.
	CoveringReservation(ctx context.Context, filter ReservationFilter, at time.Time) (Reservation, error)
}

// ParticipantRepository stores participants of planifications. Uniqueness of
// (planification, employee) and (planification, partner) is enforced by the
// storage layer.
type ParticipantRepository interface {
	AddParticipant(ctx context.Context, p Participant) error
	UpdateParticipant(ctx context.Context, p Participant) error
	GetParticipant(ctx context.Context, id string) (Participant, error)
	ListParticipants(ctx context.Context, planificationID string) ([]Participant, error)
	DeleteParticipant(ctx context.Context, id string) error

	// SetAccessTokenIfEmpty stores the token only when none is set yet and
	// returns the token now on record, making generation idempotent.
	SetAccessTokenIfEmpty(ctx context.Context, id, token string) (string, error)

	// UpdateInvitationStatus is a compare-and-set on invitation_status.
	// Returns ErrStale when the stored status no longer matches from.
	UpdateInvitationStatus(ctx context.Context, id, from, to string) error

	// LinkMeeting stamps the meeting id on every participant of the
	// planification.
	LinkMeeting(ctx context.Context, planificationID, meetingID string) error
}

// MeetingFilter narrows meeting queries.
type MeetingFilter struct {
	RoomID      *string
	States      []string
	CoveringAt  *time.Time
	StartsAfter *time.Time
}

// MeetingRepository stores materialized meetings and their child records.
type MeetingRepository interface {
	// CreateMeeting inserts the meeting. At most one meeting may exist per
	// planification; a second insert returns ErrDuplicate.
	CreateMeeting(ctx context.Context, m Meeting) error
	UpdateMeeting(ctx context.Context, m Meeting) error
	GetMeeting(ctx context.Context, id string) (Meeting, error)
	GetMeetingByPlanification(ctx context.Context, planificationID string) (Meeting, error)
	ListMeetings(ctx context.Context, filter MeetingFilter) ([]Meeting, error)

	// UpdateMeetingState is a compare-and-set on the meeting state.
	UpdateMeetingState(ctx context.Context, id, from, to string) error

	AddNote(ctx context.Context, note MeetingNote) error
	ListNotes(ctx context.Context, meetingID string) ([]MeetingNote, error)
	AddDecision(ctx context.Context, decision MeetingDecision) error
	ListDecisions(ctx context.Context, meetingID string) ([]MeetingDecision, error)

	SaveSummary(ctx context.Context, summary MeetingSummary) error
	GetSummary(ctx context.Context, meetingID string) (MeetingSummary, error)
}

// SessionRepository stores per-user live-attendance records. At most one
// session exists per (meeting, user).
type SessionRepository interface {
	CreateSession(ctx context.Context, s Session) error
	UpdateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	GetSessionByMeetingAndUser(ctx context.Context, meetingID, userID string) (Session, error)
	ListSessions(ctx context.Context, meetingID string) ([]Session, error)
}

// ActionFilter narrows action queries.
type ActionFilter struct {
	MeetingID  *string
	SessionID  *string
	ParentID   *string
	AssigneeID *string
}

// ActionRepository stores action items in a flat table keyed by id with an
// optional parent pointer.
type ActionRepository interface {
	CreateAction(ctx context.Context, a Action) error
	UpdateAction(ctx context.Context, a Action) error
	GetAction(ctx context.Context, id string) (Action, error)
	ListActions(ctx context.Context, filter ActionFilter) ([]Action, error)
	DeleteAction(ctx context.Context, id string) error
}

// AuditRepository appends and reads the audit trail.
type AuditRepository interface {
	AppendAudit(ctx context.Context, entry AuditEntry) error
	ListAudit(ctx context.Context, entityKind, entityID string) ([]AuditEntry, error)
}

package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/meeting-planner/internal/application"
	"github.com/example/meeting-planner/internal/persistence"
)

var (
	roomCounter          uint64
	planificationCounter uint64
	participantCounter   uint64
	meetingCounter       uint64
	actionCounter        uint64
)

var referenceTime = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic meeting room record.
type RoomFixture struct {
	ID          string
	Name        string
	Floor       int
	Capacity    int
	LocationID  *string
	Maintenance bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	id := fmt.Sprintf("room-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := RoomFixture{
		ID:        id,
		Name:      fmt.Sprintf("Room %03d", idx),
		Floor:     int(idx % 5),
		Capacity:  int(4 + idx%6),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) { f.ID = id }
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) { f.Name = name }
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) { f.Capacity = capacity }
}

// WithRoomMaintenance flags the room as under maintenance.
func WithRoomMaintenance() RoomOption {
	return func(f *RoomFixture) { f.Maintenance = true }
}

// Application returns the fixture as an application.Room value.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:          f.ID,
		Name:        f.Name,
		Floor:       f.Floor,
		Capacity:    f.Capacity,
		LocationID:  copyStringPtr(f.LocationID),
		Maintenance: f.Maintenance,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:          f.ID,
		Name:        f.Name,
		Floor:       f.Floor,
		Capacity:    f.Capacity,
		LocationID:  copyStringPtr(f.LocationID),
		Maintenance: f.Maintenance,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// ------------------------- Planification fixtures ------------------------

// PlanificationFixture represents a deterministic planification record.
type PlanificationFixture struct {
	ID           string
	Title        string
	Subject      string
	State        application.PlanificationState
	Start        time.Time
	Duration     time.Duration
	RoomID       *string
	EquipmentIDs []string
	HasPV        bool
	SyncCalendar bool
	MeetingID    *string
	CreatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PlanificationOption configures the generated planification fixture.
type PlanificationOption func(*PlanificationFixture)

// NewPlanificationFixture returns a deterministic planification fixture.
func NewPlanificationFixture(opts ...PlanificationOption) PlanificationFixture {
	idx := atomic.AddUint64(&planificationCounter, 1)
	id := fmt.Sprintf("plan-%03d", idx)
	start := referenceTime.Add(time.Duration(idx) * 24 * time.Hour)
	fixture := PlanificationFixture{
		ID:        id,
		Title:     fmt.Sprintf("Planification %03d", idx),
		State:     application.StateDraft,
		Start:     start,
		Duration:  time.Hour,
		CreatedBy: fmt.Sprintf("user-%03d", idx),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithPlanificationID overrides the generated ID.
func WithPlanificationID(id string) PlanificationOption {
	return func(f *PlanificationFixture) { f.ID = id }
}

// WithPlanificationState sets the lifecycle state.
func WithPlanificationState(state application.PlanificationState) PlanificationOption {
	return func(f *PlanificationFixture) { f.State = state }
}

// WithPlanificationStart sets the planned start and duration.
func WithPlanificationStart(start time.Time, duration time.Duration) PlanificationOption {
	return func(f *PlanificationFixture) {
		f.Start = start
		f.Duration = duration
	}
}

// WithPlanificationRoom sets the reserved room.
func WithPlanificationRoom(roomID string) PlanificationOption {
	return func(f *PlanificationFixture) {
		id := roomID
		f.RoomID = &id
	}
}

// WithPlanificationEquipment sets the reserved equipment items.
func WithPlanificationEquipment(ids ...string) PlanificationOption {
	return func(f *PlanificationFixture) {
		f.EquipmentIDs = append([]string(nil), ids...)
	}
}

// WithPlanificationPV requests a PV for the planification.
func WithPlanificationPV() PlanificationOption {
	return func(f *PlanificationFixture) { f.HasPV = true }
}

// WithPlanificationMeeting links an already materialized meeting.
func WithPlanificationMeeting(meetingID string) PlanificationOption {
	return func(f *PlanificationFixture) {
		id := meetingID
		f.MeetingID = &id
	}
}

// Application returns the fixture as an application.Planification value.
func (f PlanificationFixture) Application() application.Planification {
	return application.Planification{
		ID:           f.ID,
		Title:        f.Title,
		Subject:      f.Subject,
		State:        f.State,
		Start:        f.Start,
		Duration:     f.Duration,
		RoomID:       copyStringPtr(f.RoomID),
		EquipmentIDs: append([]string(nil), f.EquipmentIDs...),
		HasPV:        f.HasPV,
		SyncCalendar: f.SyncCalendar,
		MeetingID:    copyStringPtr(f.MeetingID),
		CreatedBy:    f.CreatedBy,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Planification value.
func (f PlanificationFixture) Persistence() persistence.Planification {
	return persistence.Planification{
		ID:              f.ID,
		Title:           f.Title,
		Subject:         f.Subject,
		State:           string(f.State),
		Start:           f.Start,
		DurationMinutes: int(f.Duration / time.Minute),
		RoomID:          copyStringPtr(f.RoomID),
		EquipmentIDs:    append([]string(nil), f.EquipmentIDs...),
		HasPV:           f.HasPV,
		SyncCalendar:    f.SyncCalendar,
		MeetingID:       copyStringPtr(f.MeetingID),
		CreatedBy:       f.CreatedBy,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// -------------------------- Participant fixtures -------------------------

// ParticipantFixture represents a deterministic participant record.
type ParticipantFixture struct {
	ID               string
	PlanificationID  string
	EmployeeID       *string
	PartnerID        *string
	Name             string
	Email            string
	UserID           *string
	RoleName         string
	IsPV             bool
	AccessToken      string
	InvitationStatus application.InvitationStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ParticipantOption configures the generated participant fixture.
type ParticipantOption func(*ParticipantFixture)

// NewParticipantFixture returns a deterministic participant fixture bound to
// an employee identity with a user account.
func NewParticipantFixture(opts ...ParticipantOption) ParticipantFixture {
	idx := atomic.AddUint64(&participantCounter, 1)
	id := fmt.Sprintf("participant-%03d", idx)
	employee := fmt.Sprintf("employee-%03d", idx)
	user := fmt.Sprintf("user-%03d", idx)
	fixture := ParticipantFixture{
		ID:               id,
		PlanificationID:  fmt.Sprintf("plan-%03d", idx),
		EmployeeID:       &employee,
		Name:             fmt.Sprintf("Employee %03d", idx),
		Email:            fmt.Sprintf("%s@example.com", employee),
		UserID:           &user,
		InvitationStatus: application.InvitationPending,
		CreatedAt:        referenceTime,
		UpdatedAt:        referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithParticipantID overrides the generated ID.
func WithParticipantID(id string) ParticipantOption {
	return func(f *ParticipantFixture) { f.ID = id }
}

// WithParticipantPlanification binds the participant to a planification.
func WithParticipantPlanification(planificationID string) ParticipantOption {
	return func(f *ParticipantFixture) { f.PlanificationID = planificationID }
}

// WithParticipantPartner rebinds the identity to an external partner with no
// user account.
func WithParticipantPartner(partnerID string) ParticipantOption {
	return func(f *ParticipantFixture) {
		id := partnerID
		f.EmployeeID = nil
		f.PartnerID = &id
		f.UserID = nil
	}
}

// WithParticipantUser overrides the resolved user account.
func WithParticipantUser(userID string) ParticipantOption {
	return func(f *ParticipantFixture) {
		id := userID
		f.UserID = &id
	}
}

// WithParticipantRole sets the role name.
func WithParticipantRole(name string) ParticipantOption {
	return func(f *ParticipantFixture) { f.RoleName = name }
}

// WithParticipantHost designates the participant as host.
func WithParticipantHost() ParticipantOption {
	return WithParticipantRole(application.RoleNameHost)
}

// WithParticipantPV designates the participant as PV writer.
func WithParticipantPV() ParticipantOption {
	return func(f *ParticipantFixture) { f.IsPV = true }
}

// WithParticipantToken sets the stored access token.
func WithParticipantToken(token string) ParticipantOption {
	return func(f *ParticipantFixture) { f.AccessToken = token }
}

// WithParticipantStatus sets the invitation status.
func WithParticipantStatus(status application.InvitationStatus) ParticipantOption {
	return func(f *ParticipantFixture) { f.InvitationStatus = status }
}

// Application returns the fixture as an application.Participant value.
func (f ParticipantFixture) Application() application.Participant {
	return application.Participant{
		ID:              f.ID,
		PlanificationID: f.PlanificationID,
		Identity: application.Identity{
			EmployeeID: copyStringPtr(f.EmployeeID),
			PartnerID:  copyStringPtr(f.PartnerID),
		},
		Name:             f.Name,
		Email:            f.Email,
		UserID:           copyStringPtr(f.UserID),
		RoleName:         f.RoleName,
		IsPV:             f.IsPV,
		AccessToken:      f.AccessToken,
		InvitationStatus: f.InvitationStatus,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Participant value.
func (f ParticipantFixture) Persistence() persistence.Participant {
	return persistence.Participant{
		ID:               f.ID,
		PlanificationID:  f.PlanificationID,
		EmployeeID:       copyStringPtr(f.EmployeeID),
		PartnerID:        copyStringPtr(f.PartnerID),
		Name:             f.Name,
		Email:            f.Email,
		UserID:           copyStringPtr(f.UserID),
		RoleName:         f.RoleName,
		IsPV:             f.IsPV,
		AccessToken:      f.AccessToken,
		InvitationStatus: string(f.InvitationStatus),
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

// ---------------------------- Meeting fixtures ---------------------------

// MeetingFixture represents a deterministic materialized meeting record.
type MeetingFixture struct {
	ID              string
	PlanificationID string
	Title           string
	State           application.MeetingState
	Start           time.Time
	Duration        time.Duration
	ActualStart     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MeetingOption configures the generated meeting fixture.
type MeetingOption func(*MeetingFixture)

// NewMeetingFixture returns a deterministic in-progress meeting fixture.
func NewMeetingFixture(opts ...MeetingOption) MeetingFixture {
	idx := atomic.AddUint64(&meetingCounter, 1)
	id := fmt.Sprintf("meeting-%03d", idx)
	start := referenceTime.Add(time.Duration(idx) * 24 * time.Hour)
	actual := start
	fixture := MeetingFixture{
		ID:              id,
		PlanificationID: fmt.Sprintf("plan-%03d", idx),
		Title:           fmt.Sprintf("Meeting %03d", idx),
		State:           application.MeetingInProgress,
		Start:           start,
		Duration:        time.Hour,
		ActualStart:     &actual,
		CreatedAt:       start,
		UpdatedAt:       start,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMeetingID overrides the generated ID.
func WithMeetingID(id string) MeetingOption {
	return func(f *MeetingFixture) { f.ID = id }
}

// WithMeetingState sets the meeting state.
func WithMeetingState(state application.MeetingState) MeetingOption {
	return func(f *MeetingFixture) { f.State = state }
}

// WithMeetingActualStart sets the recorded start instant.
func WithMeetingActualStart(t time.Time) MeetingOption {
	return func(f *MeetingFixture) {
		at := t
		f.ActualStart = &at
	}
}

// Application returns the fixture as an application.Meeting value.
func (f MeetingFixture) Application() application.Meeting {
	return application.Meeting{
		ID:              f.ID,
		PlanificationID: f.PlanificationID,
		Title:           f.Title,
		State:           f.State,
		Start:           f.Start,
		Duration:        f.Duration,
		ActualStart:     copyTimePtr(f.ActualStart),
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// ---------------------------- Action fixtures ----------------------------

// ActionFixture represents a deterministic action item record.
type ActionFixture struct {
	ID         string
	Title      string
	AssigneeID *string
	MeetingID  *string
	ParentID   *string
	Priority   application.ActionPriority
	Status     application.ActionStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ActionOption configures the generated action fixture.
type ActionOption func(*ActionFixture)

// NewActionFixture returns a deterministic open action fixture.
func NewActionFixture(opts ...ActionOption) ActionFixture {
	idx := atomic.AddUint64(&actionCounter, 1)
	id := fmt.Sprintf("action-%03d", idx)
	assignee := fmt.Sprintf("user-%03d", idx)
	fixture := ActionFixture{
		ID:         id,
		Title:      fmt.Sprintf("Action %03d", idx),
		AssigneeID: &assignee,
		Priority:   application.PriorityMedium,
		Status:     application.ActionTodo,
		CreatedAt:  referenceTime,
		UpdatedAt:  referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithActionID overrides the generated ID.
func WithActionID(id string) ActionOption {
	return func(f *ActionFixture) { f.ID = id }
}

// WithActionStatus sets the workflow status.
func WithActionStatus(status application.ActionStatus) ActionOption {
	return func(f *ActionFixture) { f.Status = status }
}

// WithActionParent links the action under a parent.
func WithActionParent(parentID string) ActionOption {
	return func(f *ActionFixture) {
		id := parentID
		f.ParentID = &id
	}
}

// WithActionMeeting links the action to a meeting.
func WithActionMeeting(meetingID string) ActionOption {
	return func(f *ActionFixture) {
		id := meetingID
		f.MeetingID = &id
	}
}

// Application returns the fixture as an application.Action value.
func (f ActionFixture) Application() application.Action {
	return application.Action{
		ID:         f.ID,
		Title:      f.Title,
		AssigneeID: copyStringPtr(f.AssigneeID),
		MeetingID:  copyStringPtr(f.MeetingID),
		ParentID:   copyStringPtr(f.ParentID),
		Priority:   f.Priority,
		Status:     f.Status,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

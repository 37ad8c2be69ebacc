package application

import "time"

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID  string
	IsAdmin bool
}

// PlanificationState enumerates the planning state machine.
type PlanificationState string

const (
	StateDraft     PlanificationState = "draft"
	StateConfirmed PlanificationState = "confirmed"
	StatePlanned   PlanificationState = "planned"
	StateStarted   PlanificationState = "started"
	StateDone      PlanificationState = "done"
	StateCancelled PlanificationState = "cancelled"
)

// ActiveStates are the planification states whose reservations participate
// in conflict checks.
var ActiveStates = []PlanificationState{StateConfirmed, StatePlanned, StateStarted}

// Terminal reports whether no further transitions leave the state.
func (s PlanificationState) Terminal() bool {
	return s == StateDone || s == StateCancelled
}

// MeetingState enumerates the live meeting lifecycle.
type MeetingState string

const (
	MeetingDraft      MeetingState = "draft"
	MeetingConfirmed  MeetingState = "confirmed"
	MeetingInProgress MeetingState = "in_progress"
	MeetingDone       MeetingState = "done"
	MeetingCancelled  MeetingState = "cancelled"
)

// InvitationStatus tracks a participant's response to the invitation.
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
)

// AttendanceStatus is computed once at first join.
type AttendanceStatus string

const (
	AttendanceAwaiting AttendanceStatus = "awaiting"
	AttendancePresent  AttendanceStatus = "present"
	AttendanceLate     AttendanceStatus = "late"
	AttendanceAbsent   AttendanceStatus = "absent"
	AttendanceExcused  AttendanceStatus = "excused"
)

// SessionState enumerates the session lifecycle.
type SessionState string

const (
	SessionInProgress SessionState = "in_progress"
	SessionDone       SessionState = "done"
	SessionCancelled  SessionState = "cancelled"
)

// ActionStatus enumerates action item workflow states.
type ActionStatus string

const (
	ActionTodo       ActionStatus = "todo"
	ActionInProgress ActionStatus = "in_progress"
	ActionDone       ActionStatus = "done"
	ActionBlocked    ActionStatus = "blocked"
)

// ActionPriority enumerates action item priorities.
type ActionPriority string

const (
	PriorityLow    ActionPriority = "low"
	PriorityMedium ActionPriority = "medium"
	PriorityHigh   ActionPriority = "high"
)

// RoomStatus is the derived availability view of a room.
type RoomStatus string

const (
	RoomFree        RoomStatus = "free"
	RoomReserved    RoomStatus = "reserved"
	RoomMaintenance RoomStatus = "maintenance"
)

// RoleNameHost is the single role authorized to start the live session.
const RoleNameHost = "host"

// Room represents a meeting room catalog entry.
type Room struct {
	ID          string
	Name        string
	Floor       int
	Capacity    int
	LocationID  *string
	Maintenance bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name        string
	Floor       int
	Capacity    int
	LocationID  *string
	Maintenance bool
}

// Equipment represents a reservable equipment item.
type Equipment struct {
	ID           string
	Name         string
	SerialNumber string
	TypeID       *string
	Maintenance  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EquipmentInput captures caller provided equipment fields.
type EquipmentInput struct {
	Name         string
	SerialNumber string
	TypeID       *string
	Maintenance  bool
}

// EquipmentType groups equipment items of the same kind.
type EquipmentType struct {
	ID          string
	Name        string
	Description string
}

// Location represents a site where rooms live or off-site meetings happen.
type Location struct {
	ID          string
	Name        string
	Address     string
	Description string
	OnSite      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LocationInput captures caller provided location fields.
type LocationInput struct {
	Name        string
	Address     string
	Description string
	OnSite      bool
}

// Role represents a participant role in the directory.
type Role struct {
	ID          string
	Name        string
	Description string
	System      bool
}

// Identity references either an internal employee or an external partner,
// mutually exclusive.
type Identity struct {
	EmployeeID *string
	PartnerID  *string
}

// Participant represents one identity invited to a planification.
type Participant struct {
	ID               string
	PlanificationID  string
	MeetingID        *string
	Identity         Identity
	Name             string
	Email            string
	UserID           *string
	RoleID           *string
	RoleName         string
	IsPV             bool
	AccessToken      string
	InvitationStatus InvitationStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsHost reports whether the participant carries the host role.
func (p Participant) IsHost() bool {
	return p.RoleName == RoleNameHost
}

// HasUser reports whether the identity resolves to an internal user account.
func (p Participant) HasUser() bool {
	return p.UserID != nil && *p.UserID != ""
}

// Planification is a planned meeting subject to scheduling validation.
type Planification struct {
	ID              string
	Title           string
	Subject         string
	State           PlanificationState
	Start           time.Time
	Duration        time.Duration
	RoomID          *string
	LocationID      *string
	EquipmentIDs    []string
	AgendaLines     []string
	External        bool
	OffSite         bool
	HasPV           bool
	SyncCalendar    bool
	CalendarEventID *string
	MeetingID       *string
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// End is the derived end instant of the planned interval.
func (p Planification) End() time.Time {
	return p.Start.Add(p.Duration)
}

// PlanificationInput captures caller provided planification fields.
type PlanificationInput struct {
	Title        string
	Subject      string
	Start        time.Time
	Duration     time.Duration
	RoomID       *string
	LocationID   *string
	EquipmentIDs []string
	AgendaLines  []string
	External     bool
	OffSite      bool
	HasPV        bool
	SyncCalendar bool
}

// Reservation is a time-bounded claim on a room or an equipment item.
type Reservation struct {
	ID              string
	PlanificationID string
	RoomID          *string
	EquipmentID     *string
	Label           string
	Start           time.Time
	End             time.Time
}

// Meeting is the materialized runtime instance of a started planification.
type Meeting struct {
	ID              string
	PlanificationID string
	Title           string
	Subject         string
	State           MeetingState
	Start           time.Time
	Duration        time.Duration
	RoomID          *string
	LocationID      *string
	AgendaLines     []string
	ActualStart     *time.Time
	ActualEnd       *time.Time
	PV              string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MeetingNote is a note captured during a live meeting.
type MeetingNote struct {
	ID        string
	MeetingID string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}

// MeetingDecision records a decision taken during a meeting.
type MeetingDecision struct {
	ID        string
	MeetingID string
	Title     string
	Detail    string
	DecidedBy string
	Impact    string
	CreatedAt time.Time
}

// Session is a single user's live-attendance record within a meeting.
type Session struct {
	ID            string
	MeetingID     string
	ParticipantID string
	UserID        string
	State         SessionState
	Attendance    AttendanceStatus
	JoinedAt      *time.Time
	LeftAt        *time.Time
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Action is a task possibly linked to a meeting, session, or parent action.
type Action struct {
	ID          string
	Title       string
	Description string
	AssigneeID  *string
	MeetingID   *string
	SessionID   *string
	ParentID    *string
	Priority    ActionPriority
	Status      ActionStatus
	DueDate     *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ActionInput captures caller provided action fields.
type ActionInput struct {
	Title       string
	Description string
	AssigneeID  *string
	MeetingID   *string
	SessionID   *string
	ParentID    *string
	Priority    ActionPriority
	DueDate     *time.Time
}

// StartResult is returned by the planned-to-started transition. OwnSession is
// set when the acting user is a participant with a session of their own.
type StartResult struct {
	Meeting    Meeting
	OwnSession *Session
}

// RespondResult is returned by invitation responses. AlreadyResponded is set
// when the participant had responded before this call; Status then reflects
// the earlier answer and nothing was mutated.
type RespondResult struct {
	Participant      Participant
	Status           InvitationStatus
	AlreadyResponded bool
}

// Summary holds the four parsed AI summary sections.
type Summary struct {
	ExecutiveSummary string
	KeyDecisions     string
	ActionItems      string
	DiscussionPoints string
}

// MeetingSummary is a generated summary persisted with its raw text and the
// model that produced it.
type MeetingSummary struct {
	MeetingID   string
	RawText     string
	Model       string
	Sections    Summary
	GeneratedAt time.Time
}

package persistence

import "time"

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

// EquipmentType groups equipment items of the same kind.
type EquipmentType struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
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

// Role represents a participant role. System roles cannot be edited or
// deleted while referenced by participants.
type Role struct {
	ID          string
	Name        string
	Description string
	System      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Contact is a directory entry a participant identity resolves through.
// Kind is either "employee" or "partner".
type Contact struct {
	ID     string
	Kind   string
	Name   string
	Email  string
	UserID *string
}

// Planification represents a planned meeting subject to scheduling validation.
type Planification struct {
	ID              string
	Title           string
	Subject         string
	State           string
	Start           time.Time
	DurationMinutes int
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

// Reservation is a time-bounded claim on a room or an equipment item.
// Exactly one of RoomID / EquipmentID is set.
type Reservation struct {
	ID              string
	PlanificationID string
	RoomID          *string
	EquipmentID     *string
	Label           string
	Start           time.Time
	End             time.Time
	CreatedAt       time.Time
}

// Participant represents one identity invited to a planification. Exactly
// one of EmployeeID / PartnerID is set. RoleName is populated on reads by
// joining the roles table.
type Participant struct {
	ID               string
	PlanificationID  string
	MeetingID        *string
	EmployeeID       *string
	PartnerID        *string
	Name             string
	Email            string
	UserID           *string
	RoleID           *string
	RoleName         string
	IsPV             bool
	AccessToken      string
	InvitationStatus string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Meeting is the materialized runtime instance of a started planification.
type Meeting struct {
	ID              string
	PlanificationID string
	Title           string
	Subject         string
	State           string
	Start           time.Time
	DurationMinutes int
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

// MeetingSummary stores the parsed AI-generated summary sections.
type MeetingSummary struct {
	ID               string
	MeetingID        string
	RawText          string
	ExecutiveSummary string
	KeyDecisions     string
	ActionItems      string
	DiscussionPoints string
	GeneratedBy      string
	ModelUsed        string
	CreatedAt        time.Time
}

// Session is a single user's live-attendance record within a meeting.
type Session struct {
	ID            string
	MeetingID     string
	ParticipantID string
	UserID        string
	State         string
	Attendance    string
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
	Priority    string
	Status      string
	DueDate     *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AuditEntry is an append-only record of a notable domain event.
type AuditEntry struct {
	ID         string
	EntityKind string
	EntityID   string
	Event      string
	ActorID    string
	Message    string
	CreatedAt  time.Time
}

package application

import (
	"context"
	"time"
)

// Notifier delivers fire-and-forget notifications to users. Failures are
// logged by the caller and never abort the triggering transition.
type Notifier interface {
	Notify(ctx context.Context, recipientUserID, subject, body string) error
}

// InvitationSender dispatches invitation messages carrying the token link.
type InvitationSender interface {
	SendInvitation(ctx context.Context, participant Participant, tokenLink string) error
}

// CalendarSync mirrors planifications into an external calendar. CreateEvent
// failures surface synchronously at plan time; update and delete are best
// effort.
type CalendarSync interface {
	CreateEvent(ctx context.Context, plan Planification) (eventID string, err error)
	UpdateEvent(ctx context.Context, eventID string, plan Planification) error
	DeleteEvent(ctx context.Context, eventID string) error
}

// MinutesExporter renders the PV text of a completed meeting into a document.
type MinutesExporter interface {
	ExportMinutes(ctx context.Context, meeting Meeting) error
}

// SummaryClient generates the tagged summary text from structured meeting
// data. The response uses [SECTION]...[/SECTION] delimiters parsed by
// ParseSummarySections.
type SummaryClient interface {
	GenerateSummary(ctx context.Context, input SummaryInput) (text string, model string, err error)
}

// SummaryInput is the structured meeting data handed to the summary client.
type SummaryInput struct {
	Title        string
	Subject      string
	Start        time.Time
	Participants []string
	AgendaLines  []string
	Notes        []string
	Decisions    []string
	Actions      []string
}

// AuditLog records notable domain events at defined points: role changes,
// invitation responses, blocked actions, auto-completions.
type AuditLog interface {
	Record(ctx context.Context, entry AuditEntry)
}

// AuditEntry describes one audited event.
type AuditEntry struct {
	EntityKind string
	EntityID   string
	Event      string
	ActorID    string
	Message    string
}

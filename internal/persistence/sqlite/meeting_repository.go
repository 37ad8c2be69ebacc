package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
)

// MeetingRepository implements persistence.MeetingRepository using SQLite.
type MeetingRepository struct {
	pool *ConnectionPool
}

// NewMeetingRepository creates a new SQLite meeting repository.
func NewMeetingRepository(pool *ConnectionPool) *MeetingRepository {
	return &MeetingRepository{pool: pool}
}

// CreateMeeting inserts the meeting. At most one meeting may exist per
// planification; a second insert returns ErrDuplicate.
func (r *MeetingRepository) CreateMeeting(ctx context.Context, m persistence.Meeting) error {
	if m.ID == "" || m.PlanificationID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO meetings (
			id, planification_id, title, subject, state, start, duration_minutes,
			room_id, location_id, agenda, actual_start, actual_end, pv, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		m.ID, m.PlanificationID, m.Title, m.Subject, m.State,
		formatTime(m.Start), m.DurationMinutes,
		nullString(m.RoomID), nullString(m.LocationID),
		joinLines(m.AgendaLines),
		formatTimePtr(m.ActualStart), formatTimePtr(m.ActualEnd),
		m.PV, formatTime(now), formatTime(now),
	)
	return mapSQLiteError(err)
}

// UpdateMeeting rewrites the mutable fields. State is not touched here;
// transitions go through UpdateMeetingState.
func (r *MeetingRepository) UpdateMeeting(ctx context.Context, m persistence.Meeting) error {
	query := `
		UPDATE meetings
		SET title = ?, subject = ?, agenda = ?, actual_start = ?, actual_end = ?, pv = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.db.ExecContext(ctx, query,
		m.Title, m.Subject, joinLines(m.AgendaLines),
		formatTimePtr(m.ActualStart), formatTimePtr(m.ActualEnd), m.PV,
		formatTime(time.Now().UTC()),
		m.ID,
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

// GetMeeting fetches a meeting by id.
func (r *MeetingRepository) GetMeeting(ctx context.Context, id string) (persistence.Meeting, error) {
	query := selectMeeting + ` WHERE id = ?`
	return scanMeeting(r.pool.db.QueryRowContext(ctx, query, id))
}

// GetMeetingByPlanification fetches the meeting materialized from the
// planification.
func (r *MeetingRepository) GetMeetingByPlanification(ctx context.Context, planificationID string) (persistence.Meeting, error) {
	query := selectMeeting + ` WHERE planification_id = ?`
	return scanMeeting(r.pool.db.QueryRowContext(ctx, query, planificationID))
}

// ListMeetings returns meetings matching the filter, ordered by start.
func (r *MeetingRepository) ListMeetings(ctx context.Context, filter persistence.MeetingFilter) ([]persistence.Meeting, error) {
	query := selectMeeting
	var (
		clauses []string
		args    []any
	)
	if filter.RoomID != nil {
		clauses = append(clauses, `room_id = ?`)
		args = append(args, *filter.RoomID)
	}
	if len(filter.States) > 0 {
		clauses = append(clauses, `state IN (`+placeholders(len(filter.States))+`)`)
		for _, state := range filter.States {
			args = append(args, state)
		}
	}
	if filter.CoveringAt != nil {
		// A running meeting covers the instant from its actual start until it
		// ends; a meeting with no actual end covers until its planned end.
		clauses = append(clauses, `actual_start IS NOT NULL AND actual_start <= ?`)
		args = append(args, formatTime(*filter.CoveringAt))
		clauses = append(clauses, `(actual_end IS NULL OR ? < actual_end)`)
		args = append(args, formatTime(*filter.CoveringAt))
	}
	if filter.StartsAfter != nil {
		clauses = append(clauses, `start >= ?`)
		args = append(args, formatTime(*filter.StartsAfter))
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY start`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var meetings []persistence.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, m)
	}
	return meetings, rows.Err()
}

// UpdateMeetingState is a compare-and-set on the meeting state.
func (r *MeetingRepository) UpdateMeetingState(ctx context.Context, id, from, to string) error {
	result, err := r.pool.db.ExecContext(ctx,
		`UPDATE meetings SET state = ?, updated_at = ? WHERE id = ? AND state = ?`,
		to, formatTime(time.Now().UTC()), id, from,
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return persistence.ErrStale
	}
	return nil
}

// AddNote appends a note to the meeting.
func (r *MeetingRepository) AddNote(ctx context.Context, note persistence.MeetingNote) error {
	_, err := r.pool.db.ExecContext(ctx,
		`INSERT INTO meeting_notes (id, meeting_id, author_id, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		note.ID, note.MeetingID, note.AuthorID, note.Content, formatTime(time.Now().UTC()),
	)
	return mapSQLiteError(err)
}

// ListNotes returns the meeting's notes in insertion order.
func (r *MeetingRepository) ListNotes(ctx context.Context, meetingID string) ([]persistence.MeetingNote, error) {
	query := `
		SELECT id, meeting_id, author_id, content, created_at
		FROM meeting_notes
		WHERE meeting_id = ?
		ORDER BY created_at
	`
	rows, err := r.pool.db.QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var notes []persistence.MeetingNote
	for rows.Next() {
		var (
			note      persistence.MeetingNote
			createdAt string
		)
		if err := rows.Scan(&note.ID, &note.MeetingID, &note.AuthorID, &note.Content, &createdAt); err != nil {
			return nil, err
		}
		if note.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

// AddDecision records a decision taken during the meeting.
func (r *MeetingRepository) AddDecision(ctx context.Context, decision persistence.MeetingDecision) error {
	_, err := r.pool.db.ExecContext(ctx,
		`INSERT INTO meeting_decisions (id, meeting_id, title, detail, decided_by, impact, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		decision.ID, decision.MeetingID, decision.Title, decision.Detail, decision.DecidedBy, decision.Impact,
		formatTime(time.Now().UTC()),
	)
	return mapSQLiteError(err)
}

// ListDecisions returns the meeting's decisions in insertion order.
func (r *MeetingRepository) ListDecisions(ctx context.Context, meetingID string) ([]persistence.MeetingDecision, error) {
	query := `
		SELECT id, meeting_id, title, detail, decided_by, impact, created_at
		FROM meeting_decisions
		WHERE meeting_id = ?
		ORDER BY created_at
	`
	rows, err := r.pool.db.QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var decisions []persistence.MeetingDecision
	for rows.Next() {
		var (
			d         persistence.MeetingDecision
			createdAt string
		)
		if err := rows.Scan(&d.ID, &d.MeetingID, &d.Title, &d.Detail, &d.DecidedBy, &d.Impact, &createdAt); err != nil {
			return nil, err
		}
		if d.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	return decisions, rows.Err()
}

// SaveSummary upserts the meeting's summary. Regeneration overwrites the
// previous record.
func (r *MeetingRepository) SaveSummary(ctx context.Context, summary persistence.MeetingSummary) error {
	query := `
		INSERT INTO meeting_summaries (
			id, meeting_id, raw_text, executive_summary, key_decisions,
			action_items, discussion_points, generated_by, model_used, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (meeting_id) DO UPDATE SET
			raw_text = excluded.raw_text,
			executive_summary = excluded.executive_summary,
			key_decisions = excluded.key_decisions,
			action_items = excluded.action_items,
			discussion_points = excluded.discussion_points,
			generated_by = excluded.generated_by,
			model_used = excluded.model_used,
			created_at = excluded.created_at
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		summary.ID, summary.MeetingID, summary.RawText,
		summary.ExecutiveSummary, summary.KeyDecisions,
		summary.ActionItems, summary.DiscussionPoints,
		summary.GeneratedBy, summary.ModelUsed,
		formatTime(time.Now().UTC()),
	)
	return mapSQLiteError(err)
}

// GetSummary fetches the meeting's summary, or ErrNotFound.
func (r *MeetingRepository) GetSummary(ctx context.Context, meetingID string) (persistence.MeetingSummary, error) {
	query := `
		SELECT id, meeting_id, raw_text, executive_summary, key_decisions,
		       action_items, discussion_points, generated_by, model_used, created_at
		FROM meeting_summaries
		WHERE meeting_id = ?
	`
	var (
		s         persistence.MeetingSummary
		createdAt string
	)
	err := r.pool.db.QueryRowContext(ctx, query, meetingID).Scan(
		&s.ID, &s.MeetingID, &s.RawText, &s.ExecutiveSummary, &s.KeyDecisions,
		&s.ActionItems, &s.DiscussionPoints, &s.GeneratedBy, &s.ModelUsed, &createdAt,
	)
	if err != nil {
		return persistence.MeetingSummary{}, mapSQLiteError(err)
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.MeetingSummary{}, err
	}
	return s, nil
}

const selectMeeting = `
	SELECT id, planification_id, title, subject, state, start, duration_minutes,
	       room_id, location_id, agenda, actual_start, actual_end, pv, created_at, updated_at
	FROM meetings
`

func scanMeeting(row rowScanner) (persistence.Meeting, error) {
	var (
		m                           persistence.Meeting
		start, createdAt, updatedAt string
		roomID, locationID          sql.NullString
		actualStart, actualEnd      sql.NullString
		agenda                      string
	)
	err := row.Scan(
		&m.ID, &m.PlanificationID, &m.Title, &m.Subject, &m.State,
		&start, &m.DurationMinutes, &roomID, &locationID,
		&agenda, &actualStart, &actualEnd, &m.PV, &createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.Meeting{}, mapSQLiteError(err)
	}
	m.RoomID = stringPtr(roomID)
	m.LocationID = stringPtr(locationID)
	m.AgendaLines = splitLines(agenda)
	if m.Start, err = parseTime(start); err != nil {
		return persistence.Meeting{}, err
	}
	if m.ActualStart, err = parseTimePtr(actualStart); err != nil {
		return persistence.Meeting{}, err
	}
	if m.ActualEnd, err = parseTimePtr(actualEnd); err != nil {
		return persistence.Meeting{}, err
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Meeting{}, err
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Meeting{}, err
	}
	return m, nil
}

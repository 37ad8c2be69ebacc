package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
// The (meeting, user) pair is unique at the table level.
type SessionRepository struct {
	pool *ConnectionPool
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// CreateSession inserts a session.
func (r *SessionRepository) CreateSession(ctx context.Context, s persistence.Session) error {
	if s.ID == "" || s.MeetingID == "" || s.UserID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO sessions (
			id, meeting_id, participant_id, user_id, state, attendance,
			joined_at, left_at, notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		s.ID, s.MeetingID, s.ParticipantID, s.UserID, s.State, s.Attendance,
		formatTimePtr(s.JoinedAt), formatTimePtr(s.LeftAt), s.Notes,
		formatTime(now), formatTime(now),
	)
	return mapSQLiteError(err)
}

// UpdateSession rewrites the mutable fields.
func (r *SessionRepository) UpdateSession(ctx context.Context, s persistence.Session) error {
	query := `
		UPDATE sessions
		SET state = ?, attendance = ?, joined_at = ?, left_at = ?, notes = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.db.ExecContext(ctx, query,
		s.State, s.Attendance,
		formatTimePtr(s.JoinedAt), formatTimePtr(s.LeftAt), s.Notes,
		formatTime(time.Now().UTC()),
		s.ID,
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

// GetSession fetches a session by id.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	query := selectSession + ` WHERE id = ?`
	return scanSession(r.pool.db.QueryRowContext(ctx, query, id))
}

// GetSessionByMeetingAndUser fetches the user's session within the meeting.
func (r *SessionRepository) GetSessionByMeetingAndUser(ctx context.Context, meetingID, userID string) (persistence.Session, error) {
	query := selectSession + ` WHERE meeting_id = ? AND user_id = ?`
	return scanSession(r.pool.db.QueryRowContext(ctx, query, meetingID, userID))
}

// ListSessions returns the meeting's sessions in creation order.
func (r *SessionRepository) ListSessions(ctx context.Context, meetingID string) ([]persistence.Session, error) {
	query := selectSession + ` WHERE meeting_id = ? ORDER BY created_at, id`
	rows, err := r.pool.db.QueryContext(ctx, query, meetingID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var sessions []persistence.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

const selectSession = `
	SELECT id, meeting_id, participant_id, user_id, state, attendance,
	       joined_at, left_at, notes, created_at, updated_at
	FROM sessions
`

func scanSession(row rowScanner) (persistence.Session, error) {
	var (
		s                    persistence.Session
		joinedAt, leftAt     sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&s.ID, &s.MeetingID, &s.ParticipantID, &s.UserID, &s.State, &s.Attendance,
		&joinedAt, &leftAt, &s.Notes, &createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.Session{}, mapSQLiteError(err)
	}
	if s.JoinedAt, err = parseTimePtr(joinedAt); err != nil {
		return persistence.Session{}, err
	}
	if s.LeftAt, err = parseTimePtr(leftAt); err != nil {
		return persistence.Session{}, err
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Session{}, err
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Session{}, err
	}
	return s, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
)

// ActionRepository implements persistence.ActionRepository using SQLite.
type ActionRepository struct {
	pool *ConnectionPool
}

// NewActionRepository creates a new SQLite action repository.
func NewActionRepository(pool *ConnectionPool) *ActionRepository {
	return &ActionRepository{pool: pool}
}

// CreateAction inserts an action item.
func (r *ActionRepository) CreateAction(ctx context.Context, a persistence.Action) error {
	if a.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO actions (
			id, title, description, assignee_id, meeting_id, session_id, parent_id,
			priority, status, due_date, completed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		a.ID, a.Title, a.Description,
		nullString(a.AssigneeID), nullString(a.MeetingID), nullString(a.SessionID), nullString(a.ParentID),
		a.Priority, a.Status,
		formatTimePtr(a.DueDate), formatTimePtr(a.CompletedAt),
		formatTime(now), formatTime(now),
	)
	return mapSQLiteError(err)
}

// UpdateAction rewrites the mutable fields.
func (r *ActionRepository) UpdateAction(ctx context.Context, a persistence.Action) error {
	query := `
		UPDATE actions
		SET title = ?, description = ?, assignee_id = ?, parent_id = ?,
		    priority = ?, status = ?, due_date = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.db.ExecContext(ctx, query,
		a.Title, a.Description, nullString(a.AssigneeID), nullString(a.ParentID),
		a.Priority, a.Status,
		formatTimePtr(a.DueDate), formatTimePtr(a.CompletedAt),
		formatTime(time.Now().UTC()),
		a.ID,
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

// GetAction fetches an action by id.
func (r *ActionRepository) GetAction(ctx context.Context, id string) (persistence.Action, error) {
	query := selectAction + ` WHERE id = ?`
	return scanAction(r.pool.db.QueryRowContext(ctx, query, id))
}

// ListActions returns actions matching the filter, ordered by creation time.
func (r *ActionRepository) ListActions(ctx context.Context, filter persistence.ActionFilter) ([]persistence.Action, error) {
	query := selectAction
	var (
		clauses []string
		args    []any
	)
	if filter.MeetingID != nil {
		clauses = append(clauses, `meeting_id = ?`)
		args = append(args, *filter.MeetingID)
	}
	if filter.SessionID != nil {
		clauses = append(clauses, `session_id = ?`)
		args = append(args, *filter.SessionID)
	}
	if filter.ParentID != nil {
		clauses = append(clauses, `parent_id = ?`)
		args = append(args, *filter.ParentID)
	}
	if filter.AssigneeID != nil {
		clauses = append(clauses, `assignee_id = ?`)
		args = append(args, *filter.AssigneeID)
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var actions []persistence.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// DeleteAction removes an action by id.
func (r *ActionRepository) DeleteAction(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM actions WHERE id = ?`, id)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

const selectAction = `
	SELECT id, title, description, assignee_id, meeting_id, session_id, parent_id,
	       priority, status, due_date, completed_at, created_at, updated_at
	FROM actions
`

func scanAction(row rowScanner) (persistence.Action, error) {
	var (
		a                     persistence.Action
		assigneeID, meetingID sql.NullString
		sessionID, parentID   sql.NullString
		dueDate, completedAt  sql.NullString
		createdAt, updatedAt  string
	)
	err := row.Scan(
		&a.ID, &a.Title, &a.Description, &assigneeID, &meetingID, &sessionID, &parentID,
		&a.Priority, &a.Status, &dueDate, &completedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.Action{}, mapSQLiteError(err)
	}
	a.AssigneeID = stringPtr(assigneeID)
	a.MeetingID = stringPtr(meetingID)
	a.SessionID = stringPtr(sessionID)
	a.ParentID = stringPtr(parentID)
	if a.DueDate, err = parseTimePtr(dueDate); err != nil {
		return persistence.Action{}, err
	}
	if a.CompletedAt, err = parseTimePtr(completedAt); err != nil {
		return persistence.Action{}, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Action{}, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Action{}, err
	}
	return a, nil
}

package sqlite

import (
	"context"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
)

// AuditRepository implements persistence.AuditRepository using SQLite.
type AuditRepository struct {
	pool *ConnectionPool
}

// NewAuditRepository creates a new SQLite audit repository.
func NewAuditRepository(pool *ConnectionPool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

// AppendAudit appends an entry to the audit trail.
func (r *AuditRepository) AppendAudit(ctx context.Context, entry persistence.AuditEntry) error {
	if entry.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO audit_log (id, entity_kind, entity_id, event, actor_id, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		entry.ID, entry.EntityKind, entry.EntityID, entry.Event,
		entry.ActorID, entry.Message, formatTime(entry.CreatedAt),
	)
	return mapSQLiteError(err)
}

// ListAudit returns the entity's audit entries, oldest first.
func (r *AuditRepository) ListAudit(ctx context.Context, entityKind, entityID string) ([]persistence.AuditEntry, error) {
	query := `
		SELECT id, entity_kind, entity_id, event, actor_id, message, created_at
		FROM audit_log
		WHERE entity_kind = ? AND entity_id = ?
		ORDER BY created_at, id
	`
	rows, err := r.pool.db.QueryContext(ctx, query, entityKind, entityID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var entries []persistence.AuditEntry
	for rows.Next() {
		var (
			entry     persistence.AuditEntry
			createdAt string
		)
		if err := rows.Scan(&entry.ID, &entry.EntityKind, &entry.EntityID, &entry.Event, &entry.ActorID, &entry.Message, &createdAt); err != nil {
			return nil, err
		}
		if entry.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

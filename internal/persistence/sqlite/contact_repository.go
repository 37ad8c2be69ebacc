package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/meeting-planner/internal/persistence"
)

// ContactRepository implements persistence.ContactRepository using SQLite.
type ContactRepository struct {
	pool *ConnectionPool
}

// NewContactRepository creates a new SQLite contact repository.
func NewContactRepository(pool *ConnectionPool) *ContactRepository {
	return &ContactRepository{pool: pool}
}

// CreateContact inserts a directory entry.
func (r *ContactRepository) CreateContact(ctx context.Context, c persistence.Contact) error {
	if c.ID == "" || (c.Kind != "employee" && c.Kind != "partner") {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO contacts (id, kind, name, email, user_id)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query, c.ID, c.Kind, c.Name, c.Email, nullString(c.UserID))
	return mapSQLiteError(err)
}

// GetContact fetches a directory entry by kind and id.
func (r *ContactRepository) GetContact(ctx context.Context, kind, id string) (persistence.Contact, error) {
	query := `
		SELECT id, kind, name, email, user_id
		FROM contacts
		WHERE kind = ? AND id = ?
	`
	var (
		c      persistence.Contact
		userID sql.NullString
	)
	err := r.pool.db.QueryRowContext(ctx, query, kind, id).Scan(&c.ID, &c.Kind, &c.Name, &c.Email, &userID)
	if err != nil {
		return persistence.Contact{}, mapSQLiteError(err)
	}
	c.UserID = stringPtr(userID)
	return c, nil
}

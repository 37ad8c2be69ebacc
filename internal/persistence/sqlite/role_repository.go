package sqlite

import (
	"context"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
)

// RoleRepository implements persistence.RoleRepository using SQLite.
type RoleRepository struct {
	pool *ConnectionPool
}

// NewRoleRepository creates a new SQLite role repository.
func NewRoleRepository(pool *ConnectionPool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// CreateRole inserts a new role. Names are unique.
func (r *RoleRepository) CreateRole(ctx context.Context, role persistence.Role) error {
	if role.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO roles (id, name, description, system, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		role.ID,
		role.Name,
		role.Description,
		role.System,
		formatTime(now),
		formatTime(now),
	)
	return mapSQLiteError(err)
}

// UpdateRole updates an existing role.
func (r *RoleRepository) UpdateRole(ctx context.Context, role persistence.Role) error {
	query := `
		UPDATE roles
		SET name = ?, description = ?, system = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.db.ExecContext(ctx, query,
		role.Name,
		role.Description,
		role.System,
		formatTime(time.Now().UTC()),
		role.ID,
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

// GetRole fetches a role by id.
func (r *RoleRepository) GetRole(ctx context.Context, id string) (persistence.Role, error) {
	query := `
		SELECT id, name, description, system, created_at, updated_at
		FROM roles
		WHERE id = ?
	`
	return scanRole(r.pool.db.QueryRowContext(ctx, query, id))
}

// GetRoleByName fetches a role by its unique name.
func (r *RoleRepository) GetRoleByName(ctx context.Context, name string) (persistence.Role, error) {
	query := `
		SELECT id, name, description, system, created_at, updated_at
		FROM roles
		WHERE name = ?
	`
	return scanRole(r.pool.db.QueryRowContext(ctx, query, name))
}

// ListRoles returns all roles ordered by name.
func (r *RoleRepository) ListRoles(ctx context.Context) ([]persistence.Role, error) {
	query := `
		SELECT id, name, description, system, created_at, updated_at
		FROM roles
		ORDER BY name
	`
	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var roles []persistence.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// DeleteRole removes a role by id.
func (r *RoleRepository) DeleteRole(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM roles WHERE id = ?`, id)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

// CountParticipantsWithRole reports how many participants reference the role.
func (r *RoleRepository) CountParticipantsWithRole(ctx context.Context, roleID string) (int, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM participants WHERE role_id = ?`, roleID,
	).Scan(&count)
	if err != nil {
		return 0, mapSQLiteError(err)
	}
	return count, nil
}

func scanRole(row rowScanner) (persistence.Role, error) {
	var (
		role                 persistence.Role
		createdAt, updatedAt string
	)
	err := row.Scan(&role.ID, &role.Name, &role.Description, &role.System, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Role{}, mapSQLiteError(err)
	}
	if role.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Role{}, err
	}
	if role.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Role{}, err
	}
	return role, nil
}

package sqlite

import (
	"context"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
)

// LocationRepository implements persistence.LocationRepository using SQLite.
type LocationRepository struct {
	pool *ConnectionPool
}

// NewLocationRepository creates a new SQLite location repository.
func NewLocationRepository(pool *ConnectionPool) *LocationRepository {
	return &LocationRepository{pool: pool}
}

// CreateLocation inserts a new location.
func (r *LocationRepository) CreateLocation(ctx context.Context, loc persistence.Location) error {
	if loc.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO locations (id, name, address, description, on_site, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		loc.ID,
		loc.Name,
		loc.Address,
		loc.Description,
		loc.OnSite,
		formatTime(now),
		formatTime(now),
	)
	return mapSQLiteError(err)
}

// UpdateLocation updates an existing location.
func (r *LocationRepository) UpdateLocation(ctx context.Context, loc persistence.Location) error {
	query := `
		UPDATE locations
		SET name = ?, address = ?, description = ?, on_site = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.db.ExecContext(ctx, query,
		loc.Name,
		loc.Address,
		loc.Description,
		loc.OnSite,
		formatTime(time.Now().UTC()),
		loc.ID,
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

// GetLocation fetches a location by id.
func (r *LocationRepository) GetLocation(ctx context.Context, id string) (persistence.Location, error) {
	query := `
		SELECT id, name, address, description, on_site, created_at, updated_at
		FROM locations
		WHERE id = ?
	`
	return scanLocation(r.pool.db.QueryRowContext(ctx, query, id))
}

// ListLocations returns all locations ordered by name.
func (r *LocationRepository) ListLocations(ctx context.Context) ([]persistence.Location, error) {
	query := `
		SELECT id, name, address, description, on_site, created_at, updated_at
		FROM locations
		ORDER BY name
	`
	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var locations []persistence.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// DeleteLocation removes a location by id.
func (r *LocationRepository) DeleteLocation(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM locations WHERE id = ?`, id)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

func scanLocation(row rowScanner) (persistence.Location, error) {
	var (
		loc                  persistence.Location
		createdAt, updatedAt string
	)
	err := row.Scan(&loc.ID, &loc.Name, &loc.Address, &loc.Description, &loc.OnSite, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Location{}, mapSQLiteError(err)
	}
	if loc.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Location{}, err
	}
	if loc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Location{}, err
	}
	return loc, nil
}

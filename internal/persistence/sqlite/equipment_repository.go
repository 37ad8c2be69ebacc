package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
)

// EquipmentRepository implements persistence.EquipmentRepository using SQLite.
type EquipmentRepository struct {
	pool *ConnectionPool
}

// NewEquipmentRepository creates a new SQLite equipment repository.
func NewEquipmentRepository(pool *ConnectionPool) *EquipmentRepository {
	return &EquipmentRepository{pool: pool}
}

// CreateEquipment inserts a new equipment item.
func (r *EquipmentRepository) CreateEquipment(ctx context.Context, eq persistence.Equipment) error {
	if eq.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO equipment (id, name, serial_number, type_id, maintenance, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		eq.ID,
		eq.Name,
		eq.SerialNumber,
		nullString(eq.TypeID),
		eq.Maintenance,
		formatTime(now),
		formatTime(now),
	)
	return mapSQLiteError(err)
}

// UpdateEquipment updates an existing equipment item.
func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, eq persistence.Equipment) error {
	query := `
		UPDATE equipment
		SET name = ?, serial_number = ?, type_id = ?, maintenance = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.db.ExecContext(ctx, query,
		eq.Name,
		eq.SerialNumber,
		nullString(eq.TypeID),
		eq.Maintenance,
		formatTime(time.Now().UTC()),
		eq.ID,
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

// GetEquipment fetches an equipment item by id.
func (r *EquipmentRepository) GetEquipment(ctx context.Context, id string) (persistence.Equipment, error) {
	query := `
		SELECT id, name, serial_number, type_id, maintenance, created_at, updated_at
		FROM equipment
		WHERE id = ?
	`
	return scanEquipment(r.pool.db.QueryRowContext(ctx, query, id))
}

// ListEquipment returns all equipment ordered by name.
func (r *EquipmentRepository) ListEquipment(ctx context.Context) ([]persistence.Equipment, error) {
	query := `
		SELECT id, name, serial_number, type_id, maintenance, created_at, updated_at
		FROM equipment
		ORDER BY name
	`
	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var items []persistence.Equipment
	for rows.Next() {
		eq, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, eq)
	}
	return items, rows.Err()
}

// DeleteEquipment removes an equipment item by id.
func (r *EquipmentRepository) DeleteEquipment(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = ?`, id)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

// CreateEquipmentType inserts a new equipment type. Type names are unique.
func (r *EquipmentRepository) CreateEquipmentType(ctx context.Context, et persistence.EquipmentType) error {
	if et.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO equipment_types (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query, et.ID, et.Name, et.Description, formatTime(now), formatTime(now))
	return mapSQLiteError(err)
}

// GetEquipmentType fetches an equipment type by id.
func (r *EquipmentRepository) GetEquipmentType(ctx context.Context, id string) (persistence.EquipmentType, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM equipment_types
		WHERE id = ?
	`
	return scanEquipmentType(r.pool.db.QueryRowContext(ctx, query, id))
}

// ListEquipmentTypes returns all equipment types ordered by name.
func (r *EquipmentRepository) ListEquipmentTypes(ctx context.Context) ([]persistence.EquipmentType, error) {
	query := `
		SELECT id, name, description, created_at, updated_at
		FROM equipment_types
		ORDER BY name
	`
	rows, err := r.pool.db.QueryContext(ctx, query)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var types []persistence.EquipmentType
	for rows.Next() {
		et, err := scanEquipmentType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, et)
	}
	return types, rows.Err()
}

func scanEquipment(row rowScanner) (persistence.Equipment, error) {
	var (
		eq                   persistence.Equipment
		typeID               sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&eq.ID, &eq.Name, &eq.SerialNumber, &typeID, &eq.Maintenance, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Equipment{}, mapSQLiteError(err)
	}
	eq.TypeID = stringPtr(typeID)
	if eq.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Equipment{}, err
	}
	if eq.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Equipment{}, err
	}
	return eq, nil
}

func scanEquipmentType(row rowScanner) (persistence.EquipmentType, error) {
	var (
		et                   persistence.EquipmentType
		createdAt, updatedAt string
	)
	err := row.Scan(&et.ID, &et.Name, &et.Description, &createdAt, &updatedAt)
	if err != nil {
		return persistence.EquipmentType{}, mapSQLiteError(err)
	}
	if et.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.EquipmentType{}, err
	}
	if et.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.EquipmentType{}, err
	}
	return et, nil
}

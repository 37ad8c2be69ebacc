package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository using
// SQLite. It is read-only; writes go through PlanificationRepository.
type ReservationRepository struct {
	pool *ConnectionPool
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

// ListReservations returns reservations matching the filter, ordered by start.
func (r *ReservationRepository) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	query, args := reservationQuery(filter)
	query += ` ORDER BY r.start_at`

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var reservations []persistence.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
	}
	return reservations, rows.Err()
}

// CoveringReservation returns the reservation covering the instant for the
// filtered resource, or ErrNotFound.
func (r *ReservationRepository) CoveringReservation(ctx context.Context, filter persistence.ReservationFilter, at time.Time) (persistence.Reservation, error) {
	query, args := reservationQuery(filter)
	query += ` AND r.start_at <= ? AND ? < r.end_at LIMIT 1`
	instant := formatTime(at)
	args = append(args, instant, instant)

	return scanReservation(r.pool.db.QueryRowContext(ctx, query, args...))
}

func reservationQuery(filter persistence.ReservationFilter) (string, []any) {
	query := `
		SELECT r.id, r.planification_id, r.room_id, r.equipment_id, r.label, r.start_at, r.end_at, r.created_at
		FROM reservations r
	`
	var (
		clauses []string
		args    []any
	)
	if filter.ActiveOnly {
		query += ` JOIN planifications p ON p.id = r.planification_id`
		clauses = append(clauses, `p.state IN (`+placeholders(len(activePlanificationStates))+`)`)
		for _, state := range activePlanificationStates {
			args = append(args, state)
		}
	}
	if filter.RoomID != nil {
		clauses = append(clauses, `r.room_id = ?`)
		args = append(args, *filter.RoomID)
	}
	if filter.EquipmentID != nil {
		clauses = append(clauses, `r.equipment_id = ?`)
		args = append(args, *filter.EquipmentID)
	}
	if filter.PlanificationID != nil {
		clauses = append(clauses, `r.planification_id = ?`)
		args = append(args, *filter.PlanificationID)
	}
	if len(clauses) == 0 {
		clauses = append(clauses, `1 = 1`)
	}
	query += ` WHERE ` + strings.Join(clauses, ` AND `)
	return query, args
}

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var (
		res                       persistence.Reservation
		roomID, equipmentID       sql.NullString
		startAt, endAt, createdAt string
	)
	err := row.Scan(&res.ID, &res.PlanificationID, &roomID, &equipmentID, &res.Label, &startAt, &endAt, &createdAt)
	if err != nil {
		return persistence.Reservation{}, mapSQLiteError(err)
	}
	res.RoomID = stringPtr(roomID)
	res.EquipmentID = stringPtr(equipmentID)
	if res.Start, err = parseTime(startAt); err != nil {
		return persistence.Reservation{}, err
	}
	if res.End, err = parseTime(endAt); err != nil {
		return persistence.Reservation{}, err
	}
	if res.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Reservation{}, err
	}
	return res, nil
}

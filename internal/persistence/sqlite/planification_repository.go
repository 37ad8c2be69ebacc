package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
)

// activePlanificationStates are the states whose reservations block other
// claims on the same resource.
var activePlanificationStates = []string{"confirmed", "planned", "started"}

// PlanificationRepository implements persistence.PlanificationRepository
// using SQLite. State transitions that touch the reservation ledger run in a
// single transaction so a conflict leaves nothing behind.
type PlanificationRepository struct {
	pool *ConnectionPool
}

// NewPlanificationRepository creates a new SQLite planification repository.
func NewPlanificationRepository(pool *ConnectionPool) *PlanificationRepository {
	return &PlanificationRepository{pool: pool}
}

// CreatePlanification inserts a new planification and its equipment links.
func (r *PlanificationRepository) CreatePlanification(ctx context.Context, plan persistence.Planification) error {
	if plan.ID == "" || plan.DurationMinutes <= 0 {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO planifications (
				id, title, subject, state, start, duration_minutes, room_id, location_id,
				agenda, external, off_site, has_pv, sync_calendar, calendar_event_id,
				meeting_id, created_by, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query,
			plan.ID, plan.Title, plan.Subject, plan.State,
			formatTime(plan.Start), plan.DurationMinutes,
			nullString(plan.RoomID), nullString(plan.LocationID),
			joinLines(plan.AgendaLines),
			plan.External, plan.OffSite, plan.HasPV, plan.SyncCalendar,
			nullString(plan.CalendarEventID), nullString(plan.MeetingID),
			plan.CreatedBy, formatTime(plan.CreatedAt), formatTime(plan.UpdatedAt),
		)
		if err != nil {
			return mapSQLiteError(err)
		}
		return replaceEquipmentLinks(ctx, tx, plan.ID, plan.EquipmentIDs)
	})
}

// UpdatePlanification rewrites the mutable fields and the equipment links.
// State is not touched here; transitions go through UpdateState and
// TransitionToPlanned.
func (r *PlanificationRepository) UpdatePlanification(ctx context.Context, plan persistence.Planification) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			UPDATE planifications
			SET title = ?, subject = ?, start = ?, duration_minutes = ?, room_id = ?,
			    location_id = ?, agenda = ?, external = ?, off_site = ?, has_pv = ?,
			    sync_calendar = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := tx.ExecContext(ctx, query,
			plan.Title, plan.Subject, formatTime(plan.Start), plan.DurationMinutes,
			nullString(plan.RoomID), nullString(plan.LocationID),
			joinLines(plan.AgendaLines),
			plan.External, plan.OffSite, plan.HasPV, plan.SyncCalendar,
			formatTime(time.Now().UTC()),
			plan.ID,
		)
		if err != nil {
			return mapSQLiteError(err)
		}
		if err := requireRowAffected(result); err != nil {
			return err
		}
		return replaceEquipmentLinks(ctx, tx, plan.ID, plan.EquipmentIDs)
	})
}

// GetPlanification fetches a planification with its equipment links.
func (r *PlanificationRepository) GetPlanification(ctx context.Context, id string) (persistence.Planification, error) {
	query := selectPlanification + ` WHERE id = ?`
	plan, err := scanPlanification(r.pool.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return persistence.Planification{}, err
	}
	plan.EquipmentIDs, err = r.equipmentLinks(ctx, plan.ID)
	if err != nil {
		return persistence.Planification{}, err
	}
	return plan, nil
}

// ListPlanifications returns planifications matching the filter, ordered by
// start time.
func (r *PlanificationRepository) ListPlanifications(ctx context.Context, filter persistence.PlanificationFilter) ([]persistence.Planification, error) {
	query := selectPlanification
	var (
		clauses []string
		args    []any
	)
	if len(filter.States) > 0 {
		clauses = append(clauses, `state IN (`+placeholders(len(filter.States))+`)`)
		for _, state := range filter.States {
			args = append(args, state)
		}
	}
	if filter.StartsAfter != nil {
		clauses = append(clauses, `start >= ?`)
		args = append(args, formatTime(*filter.StartsAfter))
	}
	if filter.EndsBefore != nil {
		// End is derived, so compare on start plus duration.
		clauses = append(clauses, `datetime(start, '+' || duration_minutes || ' minutes') <= datetime(?)`)
		args = append(args, formatTime(*filter.EndsBefore))
	}
	if filter.RoomID != nil {
		clauses = append(clauses, `room_id = ?`)
		args = append(args, *filter.RoomID)
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

	var plans []persistence.Planification
	for rows.Next() {
		plan, err := scanPlanification(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range plans {
		plans[i].EquipmentIDs, err = r.equipmentLinks(ctx, plans[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return plans, nil
}

// DeletePlanification removes a planification. Equipment links and
// reservations cascade.
func (r *PlanificationRepository) DeletePlanification(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM planifications WHERE id = ?`, id)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

// UpdateState transitions the planification from one state to another.
// Returns ErrStale when the stored state no longer matches from.
func (r *PlanificationRepository) UpdateState(ctx context.Context, id, from, to string) error {
	result, err := r.pool.db.ExecContext(ctx,
		`UPDATE planifications SET state = ?, updated_at = ? WHERE id = ? AND state = ?`,
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

// TransitionToPlanned flips state from confirmed to planned and inserts the
// reservations in one transaction.
func (r *PlanificationRepository) TransitionToPlanned(ctx context.Context, id string, reservations []persistence.Reservation) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE planifications SET state = 'planned', updated_at = ? WHERE id = ? AND state = 'confirmed'`,
			formatTime(time.Now().UTC()), id,
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
		return insertReservations(ctx, tx, id, reservations)
	})
}

// ReplaceReservations atomically swaps the planification's reservations,
// re-running the overlap validation.
func (r *PlanificationRepository) ReplaceReservations(ctx context.Context, id string, reservations []persistence.Reservation) error {
	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reservations WHERE planification_id = ?`, id); err != nil {
			return mapSQLiteError(err)
		}
		return insertReservations(ctx, tx, id, reservations)
	})
}

// LinkMeeting records the materialized meeting id on the planification.
func (r *PlanificationRepository) LinkMeeting(ctx context.Context, id, meetingID string) error {
	result, err := r.pool.db.ExecContext(ctx,
		`UPDATE planifications SET meeting_id = ?, updated_at = ? WHERE id = ?`,
		meetingID, formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

// SetCalendarEvent records or clears the external calendar event id.
func (r *PlanificationRepository) SetCalendarEvent(ctx context.Context, id string, eventID *string) error {
	result, err := r.pool.db.ExecContext(ctx,
		`UPDATE planifications SET calendar_event_id = ?, updated_at = ? WHERE id = ?`,
		nullString(eventID), formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

// insertReservations validates each claim against the active ledger and
// inserts it. The first conflicting claim aborts the transaction.
func insertReservations(ctx context.Context, tx *sql.Tx, planificationID string, reservations []persistence.Reservation) error {
	now := time.Now().UTC()
	for _, res := range reservations {
		if err := checkOverlap(ctx, tx, planificationID, res); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reservations (id, planification_id, room_id, equipment_id, label, start_at, end_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			res.ID, planificationID,
			nullString(res.RoomID), nullString(res.EquipmentID),
			res.Label, formatTime(res.Start), formatTime(res.End), formatTime(now),
		)
		if err != nil {
			return mapSQLiteError(err)
		}
	}
	return nil
}

// checkOverlap looks for an active reservation on the same resource whose
// half-open interval intersects the candidate's.
func checkOverlap(ctx context.Context, tx *sql.Tx, planificationID string, res persistence.Reservation) error {
	var (
		resourceColumn string
		resourceID     string
	)
	switch {
	case res.RoomID != nil:
		resourceColumn, resourceID = "room_id", *res.RoomID
	case res.EquipmentID != nil:
		resourceColumn, resourceID = "equipment_id", *res.EquipmentID
	default:
		return persistence.ErrConstraintViolation
	}

	query := `
		SELECT r.id, r.planification_id, r.label
		FROM reservations r
		JOIN planifications p ON p.id = r.planification_id
		WHERE r.` + resourceColumn + ` = ?
		  AND r.planification_id <> ?
		  AND p.state IN (` + placeholders(len(activePlanificationStates)) + `)
		  AND r.start_at < ?
		  AND ? < r.end_at
		LIMIT 1
	`
	args := []any{resourceID, planificationID}
	for _, state := range activePlanificationStates {
		args = append(args, state)
	}
	args = append(args, formatTime(res.End), formatTime(res.Start))

	var conflictID, conflictPlan, conflictLabel string
	err := tx.QueryRowContext(ctx, query, args...).Scan(&conflictID, &conflictPlan, &conflictLabel)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return mapSQLiteError(err)
	}

	kind := "room"
	if res.EquipmentID != nil {
		kind = "equipment"
	}
	return &persistence.ReservationConflict{
		ResourceKind:    kind,
		ResourceID:      resourceID,
		ResourceLabel:   conflictLabel,
		ReservationID:   conflictID,
		PlanificationID: conflictPlan,
	}
}

func replaceEquipmentLinks(ctx context.Context, tx *sql.Tx, planificationID string, equipmentIDs []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM planification_equipment WHERE planification_id = ?`, planificationID); err != nil {
		return mapSQLiteError(err)
	}
	for _, eqID := range equipmentIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO planification_equipment (planification_id, equipment_id) VALUES (?, ?)`,
			planificationID, eqID,
		)
		if err != nil {
			return mapSQLiteError(err)
		}
	}
	return nil
}

func (r *PlanificationRepository) equipmentLinks(ctx context.Context, planificationID string) ([]string, error) {
	rows, err := r.pool.db.QueryContext(ctx,
		`SELECT equipment_id FROM planification_equipment WHERE planification_id = ? ORDER BY equipment_id`,
		planificationID,
	)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const selectPlanification = `
	SELECT id, title, subject, state, start, duration_minutes, room_id, location_id,
	       agenda, external, off_site, has_pv, sync_calendar, calendar_event_id,
	       meeting_id, created_by, created_at, updated_at
	FROM planifications
`

func scanPlanification(row rowScanner) (persistence.Planification, error) {
	var (
		plan                        persistence.Planification
		start, createdAt, updatedAt string
		roomID, locationID          sql.NullString
		calendarEventID, meetingID  sql.NullString
		agenda                      string
	)
	err := row.Scan(
		&plan.ID, &plan.Title, &plan.Subject, &plan.State,
		&start, &plan.DurationMinutes, &roomID, &locationID,
		&agenda, &plan.External, &plan.OffSite, &plan.HasPV, &plan.SyncCalendar,
		&calendarEventID, &meetingID, &plan.CreatedBy, &createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.Planification{}, mapSQLiteError(err)
	}
	plan.RoomID = stringPtr(roomID)
	plan.LocationID = stringPtr(locationID)
	plan.CalendarEventID = stringPtr(calendarEventID)
	plan.MeetingID = stringPtr(meetingID)
	plan.AgendaLines = splitLines(agenda)
	if plan.Start, err = parseTime(start); err != nil {
		return persistence.Planification{}, err
	}
	if plan.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Planification{}, err
	}
	if plan.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Planification{}, err
	}
	return plan, nil
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/meeting-planner/internal/persistence"
)

// ParticipantRepository implements persistence.ParticipantRepository using
// SQLite. The (planification, employee) and (planification, partner) pairs
// are unique at the table level.
type ParticipantRepository struct {
	pool *ConnectionPool
}

// NewParticipantRepository creates a new SQLite participant repository.
func NewParticipantRepository(pool *ConnectionPool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

// AddParticipant inserts a participant. A second insert for the same identity
// on the same planification returns ErrDuplicate.
func (r *ParticipantRepository) AddParticipant(ctx context.Context, p persistence.Participant) error {
	if p.ID == "" || p.PlanificationID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO participants (
			id, planification_id, meeting_id, employee_id, partner_id, name, email,
			user_id, role_id, is_pv, access_token, invitation_status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		p.ID, p.PlanificationID, nullString(p.MeetingID),
		nullString(p.EmployeeID), nullString(p.PartnerID),
		p.Name, p.Email, nullString(p.UserID), nullString(p.RoleID),
		p.IsPV, p.AccessToken, p.InvitationStatus,
		formatTime(now), formatTime(now),
	)
	return mapSQLiteError(err)
}

// UpdateParticipant rewrites the mutable fields.
func (r *ParticipantRepository) UpdateParticipant(ctx context.Context, p persistence.Participant) error {
	query := `
		UPDATE participants
		SET name = ?, email = ?, user_id = ?, role_id = ?, is_pv = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.db.ExecContext(ctx, query,
		p.Name, p.Email, nullString(p.UserID), nullString(p.RoleID), p.IsPV,
		formatTime(time.Now().UTC()),
		p.ID,
	)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

// GetParticipant fetches a participant with its role name.
func (r *ParticipantRepository) GetParticipant(ctx context.Context, id string) (persistence.Participant, error) {
	query := selectParticipant + ` WHERE pt.id = ?`
	return scanParticipant(r.pool.db.QueryRowContext(ctx, query, id))
}

// ListParticipants returns the planification's participants ordered by name.
func (r *ParticipantRepository) ListParticipants(ctx context.Context, planificationID string) ([]persistence.Participant, error) {
	query := selectParticipant + ` WHERE pt.planification_id = ? ORDER BY pt.name`
	rows, err := r.pool.db.QueryContext(ctx, query, planificationID)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	defer rows.Close()

	var participants []persistence.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// DeleteParticipant removes a participant by id.
func (r *ParticipantRepository) DeleteParticipant(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, `DELETE FROM participants WHERE id = ?`, id)
	if err != nil {
		return mapSQLiteError(err)
	}
	return requireRowAffected(result)
}

// SetAccessTokenIfEmpty stores the token only when none is set yet and
// returns the token now on record.
func (r *ParticipantRepository) SetAccessTokenIfEmpty(ctx context.Context, id, token string) (string, error) {
	_, err := r.pool.db.ExecContext(ctx,
		`UPDATE participants SET access_token = ?, updated_at = ? WHERE id = ? AND access_token = ''`,
		token, formatTime(time.Now().UTC()), id,
	)
	if err != nil {
		return "", mapSQLiteError(err)
	}

	var stored string
	err = r.pool.db.QueryRowContext(ctx, `SELECT access_token FROM participants WHERE id = ?`, id).Scan(&stored)
	if err != nil {
		return "", mapSQLiteError(err)
	}
	return stored, nil
}

// UpdateInvitationStatus is a compare-and-set on invitation_status.
func (r *ParticipantRepository) UpdateInvitationStatus(ctx context.Context, id, from, to string) error {
	result, err := r.pool.db.ExecContext(ctx,
		`UPDATE participants SET invitation_status = ?, updated_at = ? WHERE id = ? AND invitation_status = ?`,
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

// LinkMeeting stamps the meeting id on every participant of the planification.
func (r *ParticipantRepository) LinkMeeting(ctx context.Context, planificationID, meetingID string) error {
	_, err := r.pool.db.ExecContext(ctx,
		`UPDATE participants SET meeting_id = ?, updated_at = ? WHERE planification_id = ?`,
		meetingID, formatTime(time.Now().UTC()), planificationID,
	)
	return mapSQLiteError(err)
}

const selectParticipant = `
	SELECT pt.id, pt.planification_id, pt.meeting_id, pt.employee_id, pt.partner_id,
	       pt.name, pt.email, pt.user_id, pt.role_id, COALESCE(ro.name, ''),
	       pt.is_pv, pt.access_token, pt.invitation_status, pt.created_at, pt.updated_at
	FROM participants pt
	LEFT JOIN roles ro ON ro.id = pt.role_id
`

func scanParticipant(row rowScanner) (persistence.Participant, error) {
	var (
		p                         persistence.Participant
		meetingID, employeeID     sql.NullString
		partnerID, userID, roleID sql.NullString
		createdAt, updatedAt      string
	)
	err := row.Scan(
		&p.ID, &p.PlanificationID, &meetingID, &employeeID, &partnerID,
		&p.Name, &p.Email, &userID, &roleID, &p.RoleName,
		&p.IsPV, &p.AccessToken, &p.InvitationStatus, &createdAt, &updatedAt,
	)
	if err != nil {
		return persistence.Participant{}, mapSQLiteError(err)
	}
	p.MeetingID = stringPtr(meetingID)
	p.EmployeeID = stringPtr(employeeID)
	p.PartnerID = stringPtr(partnerID)
	p.UserID = stringPtr(userID)
	p.RoleID = stringPtr(roleID)
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return persistence.Participant{}, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return persistence.Participant{}, err
	}
	return p, nil
}

package sqlite

import (
	"context"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS locations (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		address     TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		on_site     INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rooms (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		floor       INTEGER NOT NULL DEFAULT 0,
		capacity    INTEGER NOT NULL CHECK (capacity > 0),
		location_id TEXT REFERENCES locations(id),
		maintenance INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS equipment_types (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS equipment (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		serial_number TEXT NOT NULL DEFAULT '',
		type_id       TEXT REFERENCES equipment_types(id),
		maintenance   INTEGER NOT NULL DEFAULT 0,
		created_at    TEXT NOT NULL,
		updated_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS roles (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		system      INTEGER NOT NULL DEFAULT 0,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		id      TEXT NOT NULL,
		kind    TEXT NOT NULL CHECK (kind IN ('employee', 'partner')),
		name    TEXT NOT NULL,
		email   TEXT NOT NULL DEFAULT '',
		user_id TEXT,
		PRIMARY KEY (kind, id)
	)`,
	`CREATE TABLE IF NOT EXISTS planifications (
		id                TEXT PRIMARY KEY,
		title             TEXT NOT NULL,
		subject           TEXT NOT NULL DEFAULT '',
		state             TEXT NOT NULL CHECK (state IN ('draft', 'confirmed', 'planned', 'started', 'done', 'cancelled')),
		start             TEXT NOT NULL,
		duration_minutes  INTEGER NOT NULL CHECK (duration_minutes > 0),
		room_id           TEXT REFERENCES rooms(id),
		location_id       TEXT REFERENCES locations(id),
		agenda            TEXT NOT NULL DEFAULT '',
		external          INTEGER NOT NULL DEFAULT 0,
		off_site          INTEGER NOT NULL DEFAULT 0,
		has_pv            INTEGER NOT NULL DEFAULT 0,
		sync_calendar     INTEGER NOT NULL DEFAULT 0,
		calendar_event_id TEXT,
		meeting_id        TEXT,
		created_by        TEXT NOT NULL,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS planification_equipment (
		planification_id TEXT NOT NULL REFERENCES planifications(id) ON DELETE CASCADE,
		equipment_id     TEXT NOT NULL REFERENCES equipment(id),
		PRIMARY KEY (planification_id, equipment_id)
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id               TEXT PRIMARY KEY,
		planification_id TEXT NOT NULL REFERENCES planifications(id) ON DELETE CASCADE,
		room_id          TEXT REFERENCES rooms(id),
		equipment_id     TEXT REFERENCES equipment(id),
		label            TEXT NOT NULL DEFAULT '',
		start_at         TEXT NOT NULL,
		end_at           TEXT NOT NULL,
		created_at       TEXT NOT NULL,
		CHECK ((room_id IS NULL) <> (equipment_id IS NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_room ON reservations(room_id, start_at)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_equipment ON reservations(equipment_id, start_at)`,
	`CREATE TABLE IF NOT EXISTS participants (
		id                TEXT PRIMARY KEY,
		planification_id  TEXT NOT NULL REFERENCES planifications(id) ON DELETE CASCADE,
		meeting_id        TEXT,
		employee_id       TEXT,
		partner_id        TEXT,
		name              TEXT NOT NULL,
		email             TEXT NOT NULL DEFAULT '',
		user_id           TEXT,
		role_id           TEXT REFERENCES roles(id),
		is_pv             INTEGER NOT NULL DEFAULT 0,
		access_token      TEXT NOT NULL DEFAULT '',
		invitation_status TEXT NOT NULL DEFAULT 'pending' CHECK (invitation_status IN ('pending', 'accepted', 'declined')),
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL,
		CHECK ((employee_id IS NULL) <> (partner_id IS NULL)),
		UNIQUE (planification_id, employee_id),
		UNIQUE (planification_id, partner_id)
	)`,
	`CREATE TABLE IF NOT EXISTS meetings (
		id               TEXT PRIMARY KEY,
		planification_id TEXT NOT NULL UNIQUE REFERENCES planifications(id),
		title            TEXT NOT NULL,
		subject          TEXT NOT NULL DEFAULT '',
		state            TEXT NOT NULL CHECK (state IN ('draft', 'confirmed', 'in_progress', 'done', 'cancelled')),
		start            TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		room_id          TEXT REFERENCES rooms(id),
		location_id      TEXT REFERENCES locations(id),
		agenda           TEXT NOT NULL DEFAULT '',
		actual_start     TEXT,
		actual_end       TEXT,
		pv               TEXT NOT NULL DEFAULT '',
		created_at       TEXT NOT NULL,
		updated_at       TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS meeting_notes (
		id         TEXT PRIMARY KEY,
		meeting_id TEXT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
		author_id  TEXT NOT NULL,
		content    TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS meeting_decisions (
		id         TEXT PRIMARY KEY,
		meeting_id TEXT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
		title      TEXT NOT NULL,
		detail     TEXT NOT NULL DEFAULT '',
		decided_by TEXT NOT NULL DEFAULT '',
		impact     TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS meeting_summaries (
		id                TEXT PRIMARY KEY,
		meeting_id        TEXT NOT NULL UNIQUE REFERENCES meetings(id) ON DELETE CASCADE,
		raw_text          TEXT NOT NULL DEFAULT '',
		executive_summary TEXT NOT NULL DEFAULT '',
		key_decisions     TEXT NOT NULL DEFAULT '',
		action_items      TEXT NOT NULL DEFAULT '',
		discussion_points TEXT NOT NULL DEFAULT '',
		generated_by      TEXT NOT NULL DEFAULT '',
		model_used        TEXT NOT NULL DEFAULT '',
		created_at        TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id             TEXT PRIMARY KEY,
		meeting_id     TEXT NOT NULL REFERENCES meetings(id) ON DELETE CASCADE,
		participant_id TEXT NOT NULL REFERENCES participants(id),
		user_id        TEXT NOT NULL,
		state          TEXT NOT NULL CHECK (state IN ('in_progress', 'done', 'cancelled')),
		attendance     TEXT NOT NULL CHECK (attendance IN ('awaiting', 'present', 'late', 'absent', 'excused')),
		joined_at      TEXT,
		left_at        TEXT,
		notes          TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL,
		UNIQUE (meeting_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS actions (
		id           TEXT PRIMARY KEY,
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		assignee_id  TEXT,
		meeting_id   TEXT REFERENCES meetings(id),
		session_id   TEXT REFERENCES sessions(id),
		parent_id    TEXT REFERENCES actions(id),
		priority     TEXT NOT NULL CHECK (priority IN ('low', 'medium', 'high')),
		status       TEXT NOT NULL CHECK (status IN ('todo', 'in_progress', 'done', 'blocked')),
		due_date     TEXT,
		completed_at TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS audit_log (
		id          TEXT PRIMARY KEY,
		entity_kind TEXT NOT NULL,
		entity_id   TEXT NOT NULL,
		event       TEXT NOT NULL,
		actor_id    TEXT NOT NULL DEFAULT '',
		message     TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_entity ON audit_log(entity_kind, entity_id)`,
}

// Migrate creates the schema and seeds the system host role.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	// The host role is a singleton the participant validation relies on.
	_, err := cp.db.ExecContext(ctx, `
		INSERT INTO roles (id, name, description, system, created_at, updated_at)
		VALUES ('role-host', 'host', 'Leads the meeting and may start the live session', 1, datetime('now'), datetime('now'))
		ON CONFLICT (name) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to seed host role: %w", err)
	}
	return nil
}

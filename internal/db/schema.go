package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied idempotently at startup. Dates and wall-clock times
// are stored as their canonical text forms; the availability template
// and referral data are jsonb.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS therapists (
		id              uuid PRIMARY KEY,
		name            text NOT NULL,
		specialization  text NOT NULL,
		phone           text,
		availability    jsonb NOT NULL,
		created_at      timestamptz NOT NULL DEFAULT now(),
		updated_at      timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS patients (
		medical_record_number  text PRIMARY KEY,
		name                   text NOT NULL,
		phone                  text,
		patient_type           text NOT NULL,
		referral               jsonb,
		created_at             timestamptz NOT NULL DEFAULT now(),
		updated_at             timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS appointments (
		id                uuid PRIMARY KEY,
		therapist_id      uuid NOT NULL REFERENCES therapists (id),
		patient_mrn       text NOT NULL REFERENCES patients (medical_record_number),
		date              text NOT NULL,
		start_time        text NOT NULL,
		end_time          text NOT NULL,
		status            text NOT NULL,
		session_type      text NOT NULL,
		notes             text,
		reminder_sent_at  timestamptz,
		created_at        timestamptz NOT NULL DEFAULT now(),
		updated_at        timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_therapist_date
		ON appointments (therapist_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_appointments_reminders
		ON appointments (date) WHERE reminder_sent_at IS NULL AND status = 'scheduled'`,
	`CREATE TABLE IF NOT EXISTS event_logs (
		id              bigserial PRIMARY KEY,
		event_type      text NOT NULL,
		appointment_id  uuid,
		payload         jsonb,
		created_at      timestamptz NOT NULL DEFAULT now()
	)`,
}

// Migrate creates any missing tables and indexes.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

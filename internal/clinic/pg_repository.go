package clinic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hanenda/clinic-scheduling/internal/clock"
)

// PgRepository implements Repository on a pgx pool. Dates and wall-clock
// times are stored as their canonical text forms ("YYYY-MM-DD",
// "HH:MM") and converted at this boundary; the availability template
// and referral data live in jsonb columns.
type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanTherapist(row pgx.Row) (*Therapist, error) {
	var t Therapist
	var availability []byte

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Specialization,
		&t.Phone,
		&availability,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTherapistNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(availability, &t.Availability); err != nil {
		return nil, fmt.Errorf("decode availability for therapist %s: %w", t.ID, err)
	}
	return &t, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var referral []byte

	err := row.Scan(
		&p.MedicalRecordNumber,
		&p.Name,
		&p.Phone,
		&p.Type,
		&referral,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	if len(referral) > 0 {
		var r Referral
		if err := json.Unmarshal(referral, &r); err != nil {
			return nil, fmt.Errorf("decode referral for patient %s: %w", p.MedicalRecordNumber, err)
		}
		p.Referral = &r
	}
	return &p, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var date, start, end string
	var notes *string
	var remindedAt *time.Time

	err := row.Scan(
		&a.ID,
		&a.TherapistID,
		&a.PatientMRN,
		&date,
		&start,
		&end,
		&a.Status,
		&a.SessionType,
		&notes,
		&remindedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	if a.Date, err = clock.ParseDate(date); err != nil {
		return nil, fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	if a.Start, err = clock.ParseTimeOfDay(start); err != nil {
		return nil, fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	if a.End, err = clock.ParseTimeOfDay(end); err != nil {
		return nil, fmt.Errorf("appointment %s: %w", a.ID, err)
	}
	a.Notes = notes
	a.ReminderSentAt = remindedAt
	return &a, nil
}

func encodeAvailability(w WeeklyAvailability) ([]byte, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode availability: %w", err)
	}
	return data, nil
}

func encodeReferral(r *Referral) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode referral: %w", err)
	}
	return data, nil
}

// Therapists

const therapistColumns = "id, name, specialization, phone, availability, created_at, updated_at"

func (r *PgRepository) ListTherapists(ctx context.Context) ([]Therapist, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+therapistColumns+`
		FROM therapists
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Therapist
	for rows.Next() {
		t, err := scanTherapist(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}

func (r *PgRepository) GetTherapistByID(ctx context.Context, id uuid.UUID) (*Therapist, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+therapistColumns+`
		FROM therapists
		WHERE id = $1
	`, id)
	return scanTherapist(row)
}

func (r *PgRepository) CreateTherapist(ctx context.Context, t Therapist) (*Therapist, error) {
	availability, err := encodeAvailability(t.Availability)
	if err != nil {
		return nil, err
	}

	id := t.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO therapists (id, name, specialization, phone, availability, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING `+therapistColumns+`
	`, id, t.Name, t.Specialization, t.Phone, availability)
	return scanTherapist(row)
}

func (r *PgRepository) UpdateTherapist(ctx context.Context, t Therapist) (*Therapist, error) {
	availability, err := encodeAvailability(t.Availability)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE therapists
		SET name = $2,
		    specialization = $3,
		    phone = $4,
		    availability = $5,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+therapistColumns+`
	`, t.ID, t.Name, t.Specialization, t.Phone, availability)
	return scanTherapist(row)
}

func (r *PgRepository) DeleteTherapist(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM therapists WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTherapistNotFound
	}
	return nil
}

// Patients

const patientColumns = "medical_record_number, name, phone, patient_type, referral, created_at, updated_at"

func (r *PgRepository) ListPatients(ctx context.Context) ([]Patient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		ORDER BY medical_record_number
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func (r *PgRepository) GetPatientByMRN(ctx context.Context, mrn string) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+patientColumns+`
		FROM patients
		WHERE medical_record_number = $1
	`, mrn)
	return scanPatient(row)
}

func (r *PgRepository) CreatePatient(ctx context.Context, p Patient) (*Patient, error) {
	referral, err := encodeReferral(p.Referral)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (medical_record_number, name, phone, patient_type, referral, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING `+patientColumns+`
	`, p.MedicalRecordNumber, p.Name, p.Phone, p.Type, referral)

	created, err := scanPatient(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrPatientExists
		}
		return nil, err
	}
	return created, nil
}

func (r *PgRepository) UpdatePatient(ctx context.Context, p Patient) (*Patient, error) {
	referral, err := encodeReferral(p.Referral)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE patients
		SET name = $2,
		    phone = $3,
		    patient_type = $4,
		    referral = $5,
		    updated_at = now()
		WHERE medical_record_number = $1
		RETURNING `+patientColumns+`
	`, p.MedicalRecordNumber, p.Name, p.Phone, p.Type, referral)
	return scanPatient(row)
}

func (r *PgRepository) DeletePatient(ctx context.Context, mrn string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patients WHERE medical_record_number = $1`, mrn)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

// Appointments

const appointmentColumns = "id, therapist_id, patient_mrn, date, start_time, end_time, status, session_type, notes, reminder_sent_at, created_at, updated_at"

func (r *PgRepository) ListAppointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE 1=1`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.TherapistID != uuid.Nil {
		query += ` AND therapist_id = ` + arg(f.TherapistID)
	}
	if f.PatientMRN != "" {
		query += ` AND patient_mrn = ` + arg(f.PatientMRN)
	}
	if !f.Date.IsZero() {
		query += ` AND date = ` + arg(f.Date.String())
	}
	if !f.From.IsZero() {
		query += ` AND date >= ` + arg(f.From.String())
	}
	if !f.To.IsZero() {
		query += ` AND date <= ` + arg(f.To.String())
	}
	query += ` ORDER BY date, start_time`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	id := a.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, therapist_id, patient_mrn, date, start_time, end_time, status, session_type, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING `+appointmentColumns+`
	`, id, a.TherapistID, a.PatientMRN, a.Date.String(), a.Start.String(), a.End.String(), a.Status, a.SessionType, a.Notes)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET therapist_id = $2,
		    patient_mrn = $3,
		    date = $4,
		    start_time = $5,
		    end_time = $6,
		    status = $7,
		    session_type = $8,
		    notes = $9,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, a.ID, a.TherapistID, a.PatientMRN, a.Date.String(), a.Start.String(), a.End.String(), a.Status, a.SessionType, a.Notes)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, to AppointmentStatus) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, to)
	return scanAppointment(row)
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// Reminder worker

func (r *PgRepository) FindUnremindedScheduled(ctx context.Context, date clock.Date) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE date = $1
		  AND status = 'scheduled'
		  AND reminder_sent_at IS NULL
		ORDER BY start_time
	`, date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *PgRepository) MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET reminder_sent_at = $2,
		    updated_at = now()
		WHERE id = $1
	`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// Event logging

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

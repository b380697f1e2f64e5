package clinic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hanenda/clinic-scheduling/internal/clock"
)

var (
	ErrTherapistNotFound   = errors.New("therapist not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPatientExists       = errors.New("patient with that medical record number already exists")
)

// AppointmentFilter narrows ListAppointments. Zero values mean "any".
type AppointmentFilter struct {
	TherapistID uuid.UUID
	PatientMRN  string
	Date        clock.Date
	From        clock.Date
	To          clock.Date
}

// Repository contains all DB interactions needed by the service.
type Repository interface {
	ListTherapists(ctx context.Context) ([]Therapist, error)
	GetTherapistByID(ctx context.Context, id uuid.UUID) (*Therapist, error)
	CreateTherapist(ctx context.Context, t Therapist) (*Therapist, error)
	UpdateTherapist(ctx context.Context, t Therapist) (*Therapist, error)
	DeleteTherapist(ctx context.Context, id uuid.UUID) error

	ListPatients(ctx context.Context) ([]Patient, error)
	GetPatientByMRN(ctx context.Context, mrn string) (*Patient, error)
	CreatePatient(ctx context.Context, p Patient) (*Patient, error)
	UpdatePatient(ctx context.Context, p Patient) (*Patient, error)
	DeletePatient(ctx context.Context, mrn string) error

	ListAppointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error)
	UpdateAppointment(ctx context.Context, a Appointment) (*Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, to AppointmentStatus) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id uuid.UUID) error

	// Reminder worker
	FindUnremindedScheduled(ctx context.Context, date clock.Date) ([]Appointment, error)
	MarkReminderSent(ctx context.Context, id uuid.UUID, at time.Time) error

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}

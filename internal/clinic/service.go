package clinic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hanenda/clinic-scheduling/internal/clock"
	"github.com/hanenda/clinic-scheduling/internal/config"
	redisclient "github.com/hanenda/clinic-scheduling/internal/redis"
)

const (
	EventAppointmentBooked      = "APPOINTMENT_BOOKED"
	EventAppointmentRescheduled = "APPOINTMENT_RESCHEDULED"
	EventAppointmentStatus      = "APPOINTMENT_STATUS_CHANGED"
	EventAppointmentDeleted     = "APPOINTMENT_DELETED"
	EventReminderSent           = "REMINDER_SENT"
)

var (
	ErrScheduleBusy  = errors.New("schedule is being updated, please retry")
	ErrInvalidStatus = errors.New("unknown appointment status")
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
	cfg    config.Config
}

func NewService(repo Repository, locker redisclient.Locker, cfg config.Config) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		cfg:    cfg,
	}
}

func (s *Service) policy() ConflictPolicy {
	return ConflictPolicy{CanceledBlocks: s.cfg.CanceledBlocksSlot}
}

// Therapists

func (s *Service) ListTherapists(ctx context.Context) ([]Therapist, error) {
	return s.repo.ListTherapists(ctx)
}

func (s *Service) GetTherapist(ctx context.Context, id uuid.UUID) (*Therapist, error) {
	return s.repo.GetTherapistByID(ctx, id)
}

func (s *Service) CreateTherapist(ctx context.Context, t Therapist) (*Therapist, error) {
	if errs := ValidateTherapist(t); errs != nil {
		return nil, errs
	}
	created, err := s.repo.CreateTherapist(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create therapist: %w", err)
	}
	return created, nil
}

// UpdateTherapist overwrites the therapist, weekly template included.
// No template history is kept.
func (s *Service) UpdateTherapist(ctx context.Context, t Therapist) (*Therapist, error) {
	if errs := ValidateTherapist(t); errs != nil {
		return nil, errs
	}
	updated, err := s.repo.UpdateTherapist(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("update therapist: %w", err)
	}
	return updated, nil
}

func (s *Service) DeleteTherapist(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteTherapist(ctx, id)
}

// Patients

func (s *Service) ListPatients(ctx context.Context) ([]Patient, error) {
	return s.repo.ListPatients(ctx)
}

func (s *Service) GetPatient(ctx context.Context, mrn string) (*Patient, error) {
	return s.repo.GetPatientByMRN(ctx, mrn)
}

// CreatePatient fixes the referral expiry at creation time: issued date
// plus the 90-day authorization window. It is never re-derived after
// that.
func (s *Service) CreatePatient(ctx context.Context, p Patient) (*Patient, error) {
	if errs := ValidatePatient(p); errs != nil {
		return nil, errs
	}
	if p.Referral != nil && p.Referral.ExpiryDate.IsZero() {
		p.Referral.ExpiryDate = p.Referral.IssuedDate.AddDays(ReferralValidityDays)
	}
	created, err := s.repo.CreatePatient(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return created, nil
}

func (s *Service) UpdatePatient(ctx context.Context, p Patient) (*Patient, error) {
	if errs := ValidatePatient(p); errs != nil {
		return nil, errs
	}
	if p.Referral != nil && p.Referral.ExpiryDate.IsZero() {
		p.Referral.ExpiryDate = p.Referral.IssuedDate.AddDays(ReferralValidityDays)
	}
	updated, err := s.repo.UpdatePatient(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return updated, nil
}

func (s *Service) DeletePatient(ctx context.Context, mrn string) error {
	return s.repo.DeletePatient(ctx, mrn)
}

// Appointments

type BookingRequest struct {
	TherapistID uuid.UUID
	PatientMRN  string
	Date        clock.Date
	Start       clock.TimeOfDay
	SessionType SessionType
	Notes       *string
}

// BookAppointment validates the request and creates the appointment
// under a per therapist-day lock, so two concurrent bookings for the
// same therapist cannot both pass the conflict check.
func (s *Service) BookAppointment(ctx context.Context, req BookingRequest) (*Appointment, error) {
	candidate := BookingCandidate{
		TherapistID: req.TherapistID,
		Date:        req.Date,
		Start:       req.Start,
		SessionType: req.SessionType,
	}

	// Required-field validation up front, before touching storage.
	if errs := ValidateBooking(candidate, req.PatientMRN, nil, uuid.Nil, s.policy()); errs != nil {
		return nil, errs
	}

	if _, err := s.repo.GetTherapistByID(ctx, req.TherapistID); err != nil {
		if errors.Is(err, ErrTherapistNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load therapist: %w", err)
	}
	if _, err := s.repo.GetPatientByMRN(ctx, req.PatientMRN); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	end, err := SessionEndTime(req.Start, req.SessionType)
	if err != nil {
		return nil, FieldErrors{"startTime": "session does not fit within the day"}
	}

	var created *Appointment

	err = s.locker.WithScheduleLock(ctx, req.TherapistID, req.Date, func(lockCtx context.Context) error {
		// Re-read the day inside the critical section.
		existing, err := s.repo.ListAppointments(lockCtx, AppointmentFilter{
			TherapistID: req.TherapistID,
			Date:        req.Date,
		})
		if err != nil {
			return fmt.Errorf("list day appointments: %w", err)
		}

		if errs := ValidateBooking(candidate, req.PatientMRN, existing, uuid.Nil, s.policy()); errs != nil {
			return errs
		}

		appt, err := s.repo.CreateAppointment(lockCtx, Appointment{
			TherapistID: req.TherapistID,
			PatientMRN:  req.PatientMRN,
			Date:        req.Date,
			Start:       req.Start,
			End:         end,
			Status:      StatusScheduled,
			SessionType: req.SessionType,
			Notes:       req.Notes,
		})
		if err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}

		created = appt

		s.logEvent(lockCtx, &appt.ID, EventAppointmentBooked, map[string]any{
			"therapist_id": req.TherapistID.String(),
			"patient_mrn":  req.PatientMRN,
			"date":         req.Date.String(),
			"start_time":   req.Start.String(),
			"end_time":     end.String(),
		})
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrScheduleBusy
		}
		return nil, err
	}

	return created, nil
}

// RescheduleAppointment applies a date/time/therapist edit. The edit is
// revalidated against the target day's appointments with the edited
// appointment excluded, so it never conflicts with itself.
func (s *Service) RescheduleAppointment(ctx context.Context, id uuid.UUID, req BookingRequest) (*Appointment, error) {
	current, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	candidate := BookingCandidate{
		TherapistID: req.TherapistID,
		Date:        req.Date,
		Start:       req.Start,
		SessionType: req.SessionType,
	}
	if errs := ValidateBooking(candidate, req.PatientMRN, nil, id, s.policy()); errs != nil {
		return nil, errs
	}
	if _, err := s.repo.GetTherapistByID(ctx, req.TherapistID); err != nil {
		return nil, err
	}

	end, err := SessionEndTime(req.Start, req.SessionType)
	if err != nil {
		return nil, FieldErrors{"startTime": "session does not fit within the day"}
	}

	var updated *Appointment

	err = s.locker.WithScheduleLock(ctx, req.TherapistID, req.Date, func(lockCtx context.Context) error {
		existing, err := s.repo.ListAppointments(lockCtx, AppointmentFilter{
			TherapistID: req.TherapistID,
			Date:        req.Date,
		})
		if err != nil {
			return fmt.Errorf("list day appointments: %w", err)
		}

		if errs := ValidateBooking(candidate, req.PatientMRN, existing, id, s.policy()); errs != nil {
			return errs
		}

		next := *current
		next.TherapistID = req.TherapistID
		next.PatientMRN = req.PatientMRN
		next.Date = req.Date
		next.Start = req.Start
		next.End = end
		next.SessionType = req.SessionType
		next.Notes = req.Notes

		appt, err := s.repo.UpdateAppointment(lockCtx, next)
		if err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}

		updated = appt

		s.logEvent(lockCtx, &appt.ID, EventAppointmentRescheduled, map[string]any{
			"therapist_id": req.TherapistID.String(),
			"date":         req.Date.String(),
			"start_time":   req.Start.String(),
		})
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrScheduleBusy
		}
		return nil, err
	}

	return updated, nil
}

// ChangeAppointmentStatus applies an explicit status transition. There
// is no transition table: the front desk may move an appointment
// between any two statuses.
func (s *Service) ChangeAppointmentStatus(ctx context.Context, id uuid.UUID, to AppointmentStatus) (*Appointment, error) {
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}
	updated, err := s.repo.UpdateAppointmentStatus(ctx, id, to)
	if err != nil {
		return nil, err
	}
	s.logEvent(ctx, &updated.ID, EventAppointmentStatus, map[string]any{
		"status": string(to),
	})
	return updated, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointmentByID(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, f AppointmentFilter) ([]Appointment, error) {
	return s.repo.ListAppointments(ctx, f)
}

// DeleteAppointment removes the appointment outright. Deletion has no
// cascading effect on other entities.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		return err
	}
	s.logEvent(ctx, nil, EventAppointmentDeleted, map[string]any{
		"appointment_id": id.String(),
	})
	return nil
}

// Availability

// DailyAvailability reports the therapist's bookable slots for a date:
// the template window walked in 30-minute steps, the midday break
// excluded, each slot marked occupied or open.
func (s *Service) DailyAvailability(ctx context.Context, therapistID uuid.UUID, date clock.Date) ([]Slot, error) {
	therapist, err := s.repo.GetTherapistByID(ctx, therapistID)
	if err != nil {
		return nil, err
	}
	appointments, err := s.repo.ListAppointments(ctx, AppointmentFilter{
		TherapistID: therapistID,
		Date:        date,
	})
	if err != nil {
		return nil, fmt.Errorf("list day appointments: %w", err)
	}
	return AvailableSlots(*therapist, date, KPISessionMinutes, appointments, s.policy()), nil
}

// GridSlot is one entry of the fixed booking-form grid.
type GridSlot struct {
	Start     clock.TimeOfDay `json:"start"`
	Available bool            `json:"available"`
}

// SlotGrid returns the fixed 15-minute picker grid with each start time
// tested against the therapist's day for a session of the given type.
// This grid is intentionally independent of the weekly template; the
// template-derived view is DailyAvailability.
func (s *Service) SlotGrid(ctx context.Context, therapistID uuid.UUID, date clock.Date, st SessionType) ([]GridSlot, error) {
	appointments, err := s.repo.ListAppointments(ctx, AppointmentFilter{
		TherapistID: therapistID,
		Date:        date,
	})
	if err != nil {
		return nil, fmt.Errorf("list day appointments: %w", err)
	}

	times := CandidateTimeSlots(GridDayStart, GridDayEnd, GridStepMinutes)
	grid := make([]GridSlot, 0, len(times))
	for _, t := range times {
		occupied := IsSlotOccupied(therapistID, date, t, st.DurationMinutes(), appointments, uuid.Nil, s.policy())
		grid = append(grid, GridSlot{Start: t, Available: !occupied})
	}
	return grid, nil
}

// Metrics computes the KPI summary for [from, to].
func (s *Service) Metrics(ctx context.Context, from, to clock.Date) (*Metrics, error) {
	// The new-vs-repeat split needs the full history, not just the
	// range, to find each patient's earliest visit.
	appointments, err := s.repo.ListAppointments(ctx, AppointmentFilter{})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	therapists, err := s.repo.ListTherapists(ctx)
	if err != nil {
		return nil, fmt.Errorf("list therapists: %w", err)
	}
	m := ComputeMetrics(appointments, therapists, from, to, s.policy())
	return &m, nil
}

// Reminders

// SendDueReminders finds scheduled appointments REMINDER_LEAD_DAYS
// ahead that have not been reminded, renders the confirmation message,
// and marks them. Intended to be called periodically by the worker.
func (s *Service) SendDueReminders(ctx context.Context, now time.Time) (int, error) {
	target := clock.DateOf(now).AddDays(s.cfg.ReminderLeadDays)

	due, err := s.repo.FindUnremindedScheduled(ctx, target)
	if err != nil {
		return 0, fmt.Errorf("find due reminders: %w", err)
	}

	sent := 0
	for _, appt := range due {
		msg, err := s.reminderMessage(ctx, appt)
		if err != nil {
			log.Warn().Err(err).Stringer("appointment_id", appt.ID).Msg("skipping reminder")
			continue
		}

		// Delivery is a log line for now; the channel the clinic uses
		// (WhatsApp) is driven off the event log downstream.
		log.Info().
			Stringer("appointment_id", appt.ID).
			Str("patient_mrn", appt.PatientMRN).
			Msg(msg)

		if err := s.repo.MarkReminderSent(ctx, appt.ID, now); err != nil {
			log.Error().Err(err).Stringer("appointment_id", appt.ID).Msg("mark reminder sent")
			continue
		}
		s.logEvent(ctx, &appt.ID, EventReminderSent, map[string]any{
			"date":       appt.Date.String(),
			"start_time": appt.Start.String(),
		})
		sent++
	}
	return sent, nil
}

func (s *Service) reminderMessage(ctx context.Context, appt Appointment) (string, error) {
	patient, err := s.repo.GetPatientByMRN(ctx, appt.PatientMRN)
	if err != nil {
		return "", fmt.Errorf("load patient: %w", err)
	}
	therapist, err := s.repo.GetTherapistByID(ctx, appt.TherapistID)
	if err != nil {
		return "", fmt.Errorf("load therapist: %w", err)
	}
	return fmt.Sprintf("Hello %s, your therapy appointment: therapist %s, %s %s-%s",
		patient.Name, therapist.Name, appt.Date, appt.Start, appt.End), nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID *uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("marshal event payload")
		data = nil
	}

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: appointmentID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("insert event log")
	}
}

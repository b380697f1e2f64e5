// Package clinic holds the scheduling domain: therapists, patients,
// appointments, the availability/conflict engine, and the service that
// ties them to storage.
package clinic

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hanenda/clinic-scheduling/internal/clock"
)

type Specialization string

const (
	SpeechTherapy       Specialization = "speech-therapy"
	Physiotherapy       Specialization = "physiotherapy"
	OccupationalTherapy Specialization = "occupational-therapy"
)

func (s Specialization) Valid() bool {
	switch s {
	case SpeechTherapy, Physiotherapy, OccupationalTherapy:
		return true
	}
	return false
}

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusNoShow    AppointmentStatus = "no-show"
	StatusCanceled  AppointmentStatus = "canceled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusNoShow, StatusCanceled:
		return true
	}
	return false
}

type SessionType string

const (
	SessionRegular           SessionType = "regular"
	SessionInsuranceReferral SessionType = "insurance-referral"
)

func (s SessionType) Valid() bool {
	return s == SessionRegular || s == SessionInsuranceReferral
}

// DurationMinutes is the fixed session length per type.
func (s SessionType) DurationMinutes() int {
	if s == SessionInsuranceReferral {
		return 30
	}
	return 45
}

type PatientType string

const (
	PatientRegular           PatientType = "regular"
	PatientInsuranceReferral PatientType = "insurance-referral"
)

func (p PatientType) Valid() bool {
	return p == PatientRegular || p == PatientInsuranceReferral
}

// SessionType returns the session duration class billed for this
// patient type.
func (p PatientType) SessionType() SessionType {
	if p == PatientInsuranceReferral {
		return SessionInsuranceReferral
	}
	return SessionRegular
}

// DayWindow is one weekday entry of a therapist's availability template.
type DayWindow struct {
	Available bool            `json:"available"`
	Start     clock.TimeOfDay `json:"startTime"`
	End       clock.TimeOfDay `json:"endTime"`
}

// WeeklyAvailability is a therapist's recurring open-hours template,
// indexed by time.Weekday (Sunday = 0). The fixed array makes a missing
// or misspelled weekday unrepresentable.
type WeeklyAvailability [7]DayWindow

// Day looks up the window for a weekday.
func (w WeeklyAvailability) Day(d time.Weekday) DayWindow {
	return w[d]
}

// Validate checks Start < End on every available day.
func (w WeeklyAvailability) Validate() error {
	for d := time.Sunday; d <= time.Saturday; d++ {
		win := w[d]
		if win.Available && !win.Start.Before(win.End) {
			return fmt.Errorf("availability for %s: start %s must be before end %s",
				strings.ToLower(d.String()), win.Start, win.End)
		}
	}
	return nil
}

// The wire and storage form is an object keyed by lowercase weekday
// name, matching what the settings UI submits. Keys are matched
// case-insensitively on the way in.
func (w WeeklyAvailability) MarshalJSON() ([]byte, error) {
	m := make(map[string]DayWindow, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		m[strings.ToLower(d.String())] = w[d]
	}
	return json.Marshal(m)
}

func (w *WeeklyAvailability) UnmarshalJSON(data []byte) error {
	var m map[string]DayWindow
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	var out WeeklyAvailability
	for key, win := range m {
		matched := false
		for d := time.Sunday; d <= time.Saturday; d++ {
			if strings.EqualFold(key, d.String()) {
				out[d] = win
				matched = true
				break
			}
		}
		if !matched {
			return fmt.Errorf("unknown weekday %q in availability", key)
		}
	}
	*w = out
	return nil
}

type Therapist struct {
	ID             uuid.UUID
	Name           string
	Specialization Specialization
	Phone          string
	Availability   WeeklyAvailability
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Referral is the insurance authorization attached to an
// insurance-referral patient. ExpiryDate is fixed at creation time
// (issued date + 90 days) and never re-derived.
type Referral struct {
	Number            string     `json:"referralNumber"`
	IssuedDate        clock.Date `json:"issuedDate"`
	ExpiryDate        clock.Date `json:"expiryDate"`
	ReferringProvider string     `json:"referringProvider"`
}

// ReferralValidityDays is the insurance authorization window.
const ReferralValidityDays = 90

type Patient struct {
	MedicalRecordNumber string
	Name                string
	Phone               string
	Type                PatientType
	Referral            *Referral
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type Appointment struct {
	ID             uuid.UUID
	TherapistID    uuid.UUID
	PatientMRN     string
	Date           clock.Date
	Start          clock.TimeOfDay
	End            clock.TimeOfDay
	Status         AppointmentStatus
	SessionType    SessionType
	Notes          *string
	ReminderSentAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

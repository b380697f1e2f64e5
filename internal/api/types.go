package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hanenda/clinic-scheduling/internal/clinic"
	"github.com/hanenda/clinic-scheduling/internal/clock"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string             `json:"error"`
	Fields clinic.FieldErrors `json:"fields"`
}

// Therapists

type TherapistRequest struct {
	Name           string                    `json:"name"`
	Specialization clinic.Specialization     `json:"specialization"`
	Phone          string                    `json:"phone"`
	Availability   clinic.WeeklyAvailability `json:"availability"`
}

type TherapistResponse struct {
	ID             uuid.UUID                 `json:"id"`
	Name           string                    `json:"name"`
	Specialization clinic.Specialization     `json:"specialization"`
	Phone          string                    `json:"phone"`
	Availability   clinic.WeeklyAvailability `json:"availability"`
	CreatedAt      time.Time                 `json:"createdAt"`
	UpdatedAt      time.Time                 `json:"updatedAt"`
}

func toTherapistResponse(t clinic.Therapist) TherapistResponse {
	return TherapistResponse{
		ID:             t.ID,
		Name:           t.Name,
		Specialization: t.Specialization,
		Phone:          t.Phone,
		Availability:   t.Availability,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// Patients

type PatientRequest struct {
	MedicalRecordNumber string             `json:"medicalRecordNumber"`
	Name                string             `json:"name"`
	Phone               string             `json:"phone"`
	PatientType         clinic.PatientType `json:"patientType"`
	Referral            *clinic.Referral   `json:"referralData,omitempty"`
}

type PatientResponse struct {
	MedicalRecordNumber string             `json:"medicalRecordNumber"`
	Name                string             `json:"name"`
	Phone               string             `json:"phone"`
	PatientType         clinic.PatientType `json:"patientType"`
	Referral            *clinic.Referral   `json:"referralData,omitempty"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
}

func toPatientResponse(p clinic.Patient) PatientResponse {
	return PatientResponse{
		MedicalRecordNumber: p.MedicalRecordNumber,
		Name:                p.Name,
		Phone:               p.Phone,
		PatientType:         p.Type,
		Referral:            p.Referral,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// Appointments

type AppointmentRequest struct {
	TherapistID string             `json:"therapistId"`
	PatientID   string             `json:"patientId"`
	Date        clock.Date         `json:"date"`
	StartTime   clock.TimeOfDay    `json:"startTime"`
	SessionType clinic.SessionType `json:"sessionType"`
	Notes       *string            `json:"notes,omitempty"`
}

type AppointmentResponse struct {
	ID          uuid.UUID                `json:"id"`
	TherapistID uuid.UUID                `json:"therapistId"`
	PatientID   string                   `json:"patientId"`
	Date        clock.Date               `json:"date"`
	StartTime   clock.TimeOfDay          `json:"startTime"`
	EndTime     clock.TimeOfDay          `json:"endTime"`
	Status      clinic.AppointmentStatus `json:"status"`
	SessionType clinic.SessionType       `json:"sessionType"`
	Notes       *string                  `json:"notes,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
}

func toAppointmentResponse(a clinic.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		TherapistID: a.TherapistID,
		PatientID:   a.PatientMRN,
		Date:        a.Date,
		StartTime:   a.Start,
		EndTime:     a.End,
		Status:      a.Status,
		SessionType: a.SessionType,
		Notes:       a.Notes,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

type StatusRequest struct {
	Status clinic.AppointmentStatus `json:"status"`
}

type AvailabilityResponse struct {
	TherapistID uuid.UUID     `json:"therapistId"`
	Date        clock.Date    `json:"date"`
	OpenSlots   int           `json:"openSlots"`
	Slots       []clinic.Slot `json:"slots"`
}

type SlotGridResponse struct {
	TherapistID uuid.UUID          `json:"therapistId"`
	Date        clock.Date         `json:"date"`
	SessionType clinic.SessionType `json:"sessionType"`
	Slots       []clinic.GridSlot  `json:"slots"`
}

package clinic

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// FieldErrors maps a field name to a human-readable rejection message.
// Validation failures are reported this way rather than as hard faults
// so the caller can surface every problem at once.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f)
		b.WriteString(": ")
		b.WriteString(e[f])
	}
	return b.String()
}

// ConflictField is the pseudo-field used for scheduling conflicts.
const ConflictField = "conflict"

// HasConflictError reports whether the validation failure includes a
// scheduling conflict, as opposed to only missing/malformed fields.
func (e FieldErrors) HasConflictError() bool {
	_, ok := e[ConflictField]
	return ok
}

// ValidateBooking checks required fields first, then runs the conflict
// check when enough of the candidate is present. Returns nil when the
// booking is acceptable.
func ValidateBooking(c BookingCandidate, patientMRN string, existing []Appointment, excludeID uuid.UUID, policy ConflictPolicy) FieldErrors {
	errs := FieldErrors{}

	if c.TherapistID == uuid.Nil {
		errs["therapistId"] = "select a therapist"
	}
	if patientMRN == "" {
		errs["patientId"] = "select a patient"
	}
	if c.Date.IsZero() {
		errs["date"] = "select a date"
	}
	if !c.SessionType.Valid() {
		errs["sessionType"] = "unknown session type"
	}
	if _, err := SessionEndTime(c.Start, c.SessionType); err != nil {
		errs["startTime"] = "session does not fit within the day"
	}

	if c.TherapistID != uuid.Nil && !c.Date.IsZero() {
		if HasSchedulingConflict(c, existing, excludeID, policy) {
			errs[ConflictField] = "therapist already has an appointment at that time"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidatePatient enforces the referral invariant: referral data is
// present if and only if the patient is an insurance referral.
func ValidatePatient(p Patient) FieldErrors {
	errs := FieldErrors{}

	if p.MedicalRecordNumber == "" {
		errs["medicalRecordNumber"] = "medical record number is required"
	}
	if p.Name == "" {
		errs["name"] = "name is required"
	}
	if !p.Type.Valid() {
		errs["patientType"] = "unknown patient type"
	}

	switch p.Type {
	case PatientInsuranceReferral:
		if p.Referral == nil {
			errs["referral"] = "referral data is required for insurance patients"
		} else {
			if p.Referral.Number == "" {
				errs["referralNumber"] = "referral number is required"
			}
			if p.Referral.IssuedDate.IsZero() {
				errs["issuedDate"] = "referral issued date is required"
			}
			if p.Referral.ReferringProvider == "" {
				errs["referringProvider"] = "referring provider is required"
			}
		}
	case PatientRegular:
		if p.Referral != nil {
			errs["referral"] = "regular patients must not carry referral data"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateTherapist checks the identity fields and the weekly template.
func ValidateTherapist(t Therapist) FieldErrors {
	errs := FieldErrors{}

	if t.Name == "" {
		errs["name"] = "name is required"
	}
	if !t.Specialization.Valid() {
		errs["specialization"] = "unknown specialization"
	}
	if err := t.Availability.Validate(); err != nil {
		errs["availability"] = err.Error()
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

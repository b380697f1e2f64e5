package clinic

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hanenda/clinic-scheduling/internal/clock"
)

func TestValidateBookingRequiredFields(t *testing.T) {
	errs := ValidateBooking(BookingCandidate{SessionType: SessionRegular}, "", nil, uuid.Nil, DefaultConflictPolicy)
	if errs == nil {
		t.Fatal("empty booking must fail validation")
	}
	for _, field := range []string{"therapistId", "patientId", "date"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("missing %q in field errors: %v", field, errs)
		}
	}
	if errs.HasConflictError() {
		t.Error("missing fields must not produce a conflict error")
	}
}

func TestValidateBookingConflict(t *testing.T) {
	therapistID := uuid.New()
	existing := []Appointment{appt(therapistID, monday, "09:00", "09:45", StatusScheduled)}

	c := BookingCandidate{
		TherapistID: therapistID,
		Date:        monday,
		Start:       clock.MustTimeOfDay("09:15"),
		SessionType: SessionRegular,
	}

	errs := ValidateBooking(c, "MR-00001", existing, uuid.Nil, DefaultConflictPolicy)
	if errs == nil || !errs.HasConflictError() {
		t.Fatalf("overlapping booking must fail with a conflict error, got %v", errs)
	}

	// The same edit excluding itself passes.
	if errs := ValidateBooking(c, "MR-00001", existing, existing[0].ID, DefaultConflictPolicy); errs != nil {
		t.Errorf("self-excluded edit must pass, got %v", errs)
	}

	// Booking at the exact end boundary passes.
	boundary := c
	boundary.Start = clock.MustTimeOfDay("09:45")
	boundary.SessionType = SessionInsuranceReferral
	if errs := ValidateBooking(boundary, "MR-00001", existing, uuid.Nil, DefaultConflictPolicy); errs != nil {
		t.Errorf("boundary booking must pass, got %v", errs)
	}
}

func TestValidateBookingLateStart(t *testing.T) {
	c := BookingCandidate{
		TherapistID: uuid.New(),
		Date:        monday,
		Start:       clock.MustTimeOfDay("23:45"),
		SessionType: SessionRegular,
	}
	errs := ValidateBooking(c, "MR-00001", nil, uuid.Nil, DefaultConflictPolicy)
	if errs == nil {
		t.Fatal("session running past midnight must fail")
	}
	if _, ok := errs["startTime"]; !ok {
		t.Errorf("expected startTime error, got %v", errs)
	}
}

func TestFieldErrorsError(t *testing.T) {
	errs := FieldErrors{"date": "select a date", "therapistId": "select a therapist"}
	msg := errs.Error()
	if !strings.Contains(msg, "date: select a date") || !strings.Contains(msg, "therapistId: select a therapist") {
		t.Errorf("error message missing fields: %q", msg)
	}

	// FieldErrors unwraps through the errors package as a value.
	var target FieldErrors
	if !errors.As(error(errs), &target) {
		t.Error("errors.As must match FieldErrors")
	}
}

func TestValidatePatientReferralInvariant(t *testing.T) {
	regular := Patient{
		MedicalRecordNumber: "MR-00001",
		Name:                "Budi",
		Type:                PatientRegular,
	}
	if errs := ValidatePatient(regular); errs != nil {
		t.Errorf("regular patient must pass, got %v", errs)
	}

	// A regular patient must never carry referral data.
	withReferral := regular
	withReferral.Referral = &Referral{Number: "REF-1"}
	if errs := ValidatePatient(withReferral); errs == nil {
		t.Error("regular patient with referral data must fail")
	}

	// An insurance patient must carry referral data.
	insurance := Patient{
		MedicalRecordNumber: "MR-00002",
		Name:                "Sari",
		Type:                PatientInsuranceReferral,
	}
	if errs := ValidatePatient(insurance); errs == nil {
		t.Error("insurance patient without referral data must fail")
	}

	insurance.Referral = &Referral{
		Number:            "REF-2024-001",
		IssuedDate:        clock.MustDate("2024-01-01"),
		ReferringProvider: "dr. Wijaya",
	}
	if errs := ValidatePatient(insurance); errs != nil {
		t.Errorf("complete insurance patient must pass, got %v", errs)
	}

	incomplete := insurance
	incomplete.Referral = &Referral{Number: "REF-2024-002"}
	errs := ValidatePatient(incomplete)
	if errs == nil {
		t.Fatal("referral missing issued date and provider must fail")
	}
	for _, field := range []string{"issuedDate", "referringProvider"} {
		if _, ok := errs[field]; !ok {
			t.Errorf("missing %q in field errors: %v", field, errs)
		}
	}
}

func TestValidateTherapist(t *testing.T) {
	th := mondayTherapist("08:00", "17:00")
	if errs := ValidateTherapist(th); errs != nil {
		t.Errorf("valid therapist must pass, got %v", errs)
	}

	unnamed := th
	unnamed.Name = ""
	if errs := ValidateTherapist(unnamed); errs == nil {
		t.Error("unnamed therapist must fail")
	}

	quack := th
	quack.Specialization = "astrology"
	if errs := ValidateTherapist(quack); errs == nil {
		t.Error("unknown specialization must fail")
	}

	inverted := th
	inverted.Availability[time.Monday] = DayWindow{
		Available: true,
		Start:     clock.MustTimeOfDay("17:00"),
		End:       clock.MustTimeOfDay("08:00"),
	}
	errs := ValidateTherapist(inverted)
	if errs == nil {
		t.Fatal("inverted availability window must fail")
	}
	if _, ok := errs["availability"]; !ok {
		t.Errorf("expected availability error, got %v", errs)
	}

	// An unavailable day ignores its window entirely.
	dayOff := th
	dayOff.Availability[time.Monday] = DayWindow{Available: false}
	if errs := ValidateTherapist(dayOff); errs != nil {
		t.Errorf("unavailable day must not be validated, got %v", errs)
	}
}

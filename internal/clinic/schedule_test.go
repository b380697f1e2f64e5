package clinic

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hanenda/clinic-scheduling/internal/clock"
)

func mondayTherapist(start, end string) Therapist {
	t := Therapist{
		ID:             uuid.New(),
		Name:           "Ayu",
		Specialization: Physiotherapy,
	}
	t.Availability[time.Monday] = DayWindow{
		Available: true,
		Start:     clock.MustTimeOfDay(start),
		End:       clock.MustTimeOfDay(end),
	}
	return t
}

// 2024-01-01 is a Monday.
var monday = clock.MustDate("2024-01-01")

func appt(therapistID uuid.UUID, date clock.Date, start, end string, status AppointmentStatus) Appointment {
	return Appointment{
		ID:          uuid.New(),
		TherapistID: therapistID,
		PatientMRN:  "MR-00001",
		Date:        date,
		Start:       clock.MustTimeOfDay(start),
		End:         clock.MustTimeOfDay(end),
		Status:      status,
		SessionType: SessionRegular,
	}
}

func TestSessionEndTime(t *testing.T) {
	cases := []struct {
		start   string
		st      SessionType
		want    string
		wantErr bool
	}{
		{start: "09:00", st: SessionRegular, want: "09:45"},
		{start: "09:00", st: SessionInsuranceReferral, want: "09:30"},
		{start: "16:30", st: SessionRegular, want: "17:15"},
		{start: "23:30", st: SessionInsuranceReferral, want: "24:00"},
		{start: "23:45", st: SessionRegular, wantErr: true},
	}

	for _, tc := range cases {
		got, err := SessionEndTime(clock.MustTimeOfDay(tc.start), tc.st)
		if tc.wantErr {
			if err == nil {
				t.Errorf("SessionEndTime(%s, %s): expected error", tc.start, tc.st)
			}
			continue
		}
		if err != nil {
			t.Errorf("SessionEndTime(%s, %s): %v", tc.start, tc.st, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("SessionEndTime(%s, %s) = %s, want %s", tc.start, tc.st, got, tc.want)
		}
	}
}

func TestOverlaps(t *testing.T) {
	at := clock.MustTimeOfDay

	cases := []struct {
		name                   string
		aStart, aEnd           string
		bStart, bEnd           string
		want                   bool
	}{
		{name: "disjoint", aStart: "08:00", aEnd: "08:45", bStart: "10:00", bEnd: "10:45", want: false},
		{name: "identical", aStart: "09:00", aEnd: "09:45", bStart: "09:00", bEnd: "09:45", want: true},
		{name: "partial", aStart: "09:00", aEnd: "09:45", bStart: "09:30", bEnd: "10:15", want: true},
		{name: "contained", aStart: "09:00", aEnd: "10:00", bStart: "09:15", bEnd: "09:45", want: true},
		{name: "shared boundary", aStart: "09:00", aEnd: "09:45", bStart: "09:45", bEnd: "10:30", want: false},
		{name: "shared boundary reversed", aStart: "09:45", aEnd: "10:30", bStart: "09:00", bEnd: "09:45", want: false},
		{name: "touch at start", aStart: "09:00", aEnd: "09:30", bStart: "08:30", bEnd: "09:00", want: false},
	}

	for _, tc := range cases {
		got := Overlaps(at(tc.aStart), at(tc.aEnd), at(tc.bStart), at(tc.bEnd))
		if got != tc.want {
			t.Errorf("%s: Overlaps = %t, want %t", tc.name, got, tc.want)
		}
		// The predicate is symmetric.
		if rev := Overlaps(at(tc.bStart), at(tc.bEnd), at(tc.aStart), at(tc.aEnd)); rev != got {
			t.Errorf("%s: Overlaps is not symmetric", tc.name)
		}
	}
}

// Exhaustive sweep: for every pair of grid-aligned intervals on one
// day, the conflict check must agree with the half-open overlap rule.
func TestHasSchedulingConflictMatchesOverlapRule(t *testing.T) {
	therapistID := uuid.New()
	const step = 15

	for aStart := 8 * 60; aStart < 17*60; aStart += step {
		existing := []Appointment{{
			ID:          uuid.New(),
			TherapistID: therapistID,
			Date:        monday,
			Start:       clock.TimeOfDay(aStart),
			End:         clock.TimeOfDay(aStart + 45),
			Status:      StatusScheduled,
		}}
		for bStart := 8 * 60; bStart < 17*60; bStart += step {
			candidate := BookingCandidate{
				TherapistID: therapistID,
				Date:        monday,
				Start:       clock.TimeOfDay(bStart),
				SessionType: SessionRegular,
			}
			want := bStart < aStart+45 && aStart < bStart+45
			got := HasSchedulingConflict(candidate, existing, uuid.Nil, DefaultConflictPolicy)
			if got != want {
				t.Fatalf("existing [%d,%d) candidate [%d,%d): conflict = %t, want %t",
					aStart, aStart+45, bStart, bStart+45, got, want)
			}
		}
	}
}

func TestHasSchedulingConflict(t *testing.T) {
	therapistID := uuid.New()
	existing := appt(therapistID, monday, "09:00", "09:45", StatusScheduled)

	base := BookingCandidate{
		TherapistID: therapistID,
		Date:        monday,
		Start:       clock.MustTimeOfDay("09:30"),
		SessionType: SessionRegular,
	}

	if !HasSchedulingConflict(base, []Appointment{existing}, uuid.Nil, DefaultConflictPolicy) {
		t.Error("overlapping candidate must conflict")
	}

	// Editing the same appointment in place never conflicts with itself.
	if HasSchedulingConflict(base, []Appointment{existing}, existing.ID, DefaultConflictPolicy) {
		t.Error("candidate must not conflict with the appointment being edited")
	}

	// Booking at the exact end boundary of an existing appointment succeeds.
	boundary := base
	boundary.Start = clock.MustTimeOfDay("09:45")
	boundary.SessionType = SessionInsuranceReferral
	if HasSchedulingConflict(boundary, []Appointment{existing}, uuid.Nil, DefaultConflictPolicy) {
		t.Error("shared boundary must not conflict")
	}

	// Another therapist or another date never conflicts.
	otherTherapist := base
	otherTherapist.TherapistID = uuid.New()
	if HasSchedulingConflict(otherTherapist, []Appointment{existing}, uuid.Nil, DefaultConflictPolicy) {
		t.Error("different therapist must not conflict")
	}
	otherDate := base
	otherDate.Date = monday.AddDays(1)
	if HasSchedulingConflict(otherDate, []Appointment{existing}, uuid.Nil, DefaultConflictPolicy) {
		t.Error("different date must not conflict")
	}
}

func TestHasSchedulingConflictPermissiveDefaults(t *testing.T) {
	existing := appt(uuid.New(), monday, "09:00", "09:45", StatusScheduled)

	// Missing therapist or date short-circuits to no conflict; the
	// required-field validation catches these.
	noTherapist := BookingCandidate{Date: monday, Start: clock.MustTimeOfDay("09:00"), SessionType: SessionRegular}
	if HasSchedulingConflict(noTherapist, []Appointment{existing}, uuid.Nil, DefaultConflictPolicy) {
		t.Error("missing therapist must be permissive")
	}
	noDate := BookingCandidate{TherapistID: existing.TherapistID, Start: clock.MustTimeOfDay("09:00"), SessionType: SessionRegular}
	if HasSchedulingConflict(noDate, []Appointment{existing}, uuid.Nil, DefaultConflictPolicy) {
		t.Error("missing date must be permissive")
	}
}

func TestConflictPolicyCanceled(t *testing.T) {
	therapistID := uuid.New()
	canceled := appt(therapistID, monday, "09:00", "09:45", StatusCanceled)
	noShow := appt(therapistID, monday, "10:00", "10:45", StatusNoShow)

	candidate := BookingCandidate{
		TherapistID: therapistID,
		Date:        monday,
		Start:       clock.MustTimeOfDay("09:00"),
		SessionType: SessionRegular,
	}

	// Historical behavior: every status blocks.
	if !HasSchedulingConflict(candidate, []Appointment{canceled}, uuid.Nil, DefaultConflictPolicy) {
		t.Error("canceled appointment must block under the default policy")
	}

	// Policy with canceled freed: the slot opens up.
	freed := ConflictPolicy{CanceledBlocks: false}
	if HasSchedulingConflict(candidate, []Appointment{canceled}, uuid.Nil, freed) {
		t.Error("canceled appointment must not block when the policy frees it")
	}

	// No-shows always block regardless of policy.
	atNoShow := candidate
	atNoShow.Start = clock.MustTimeOfDay("10:00")
	if !HasSchedulingConflict(atNoShow, []Appointment{noShow}, uuid.Nil, freed) {
		t.Error("no-show appointment must block under any policy")
	}
}

func TestCandidateTimeSlots(t *testing.T) {
	slots := CandidateTimeSlots(GridDayStart, GridDayEnd, GridStepMinutes)

	if len(slots) != 36 {
		t.Fatalf("default grid has %d slots, want 36", len(slots))
	}
	if slots[0].String() != "08:00" {
		t.Errorf("first slot = %s, want 08:00", slots[0])
	}
	if slots[len(slots)-1].String() != "16:45" {
		t.Errorf("last slot = %s, want 16:45 (17:00 excluded)", slots[len(slots)-1])
	}
	for i := 1; i < len(slots); i++ {
		if int(slots[i])-int(slots[i-1]) != GridStepMinutes {
			t.Fatalf("slots not %d minutes apart at index %d", GridStepMinutes, i)
		}
	}
}

func TestAvailableSlotCountFullDay(t *testing.T) {
	th := mondayTherapist("08:00", "17:00")

	// 30-minute steps: 8 slots from 08:00 to 12:00, the 12:00 and
	// 12:30 starts are dropped by the break, then 8 more from 13:00.
	got := AvailableSlotCount(th, monday, 30, nil, DefaultConflictPolicy)
	if got != 16 {
		t.Errorf("open slots = %d, want 16", got)
	}

	slots := AvailableSlots(th, monday, 30, nil, DefaultConflictPolicy)
	for _, s := range slots {
		if Overlaps(s.Start, s.End, BreakStart, BreakEnd) {
			t.Errorf("slot %s-%s overlaps the midday break", s.Start, s.End)
		}
	}
}

func TestAvailableSlotCountBreakExclusion(t *testing.T) {
	// 45-minute sessions in an 11:00-14:00 window: any slot touching
	// the break is dropped entirely even though a shorter session
	// could fit around it.
	th := mondayTherapist("11:00", "14:00")

	slots := AvailableSlots(th, monday, 45, nil, DefaultConflictPolicy)
	if len(slots) != 2 {
		t.Fatalf("got %d slots, want 2 (11:00 and 13:15)", len(slots))
	}
	if slots[0].Start.String() != "11:00" || slots[1].Start.String() != "13:15" {
		t.Errorf("slots = %s, %s; want 11:00, 13:15", slots[0].Start, slots[1].Start)
	}
}

func TestAvailableSlotCountUnavailableDay(t *testing.T) {
	th := mondayTherapist("08:00", "17:00")
	sunday := monday.AddDays(-1)

	if got := AvailableSlotCount(th, sunday, 30, nil, DefaultConflictPolicy); got != 0 {
		t.Errorf("unavailable weekday yielded %d slots, want 0", got)
	}
}

func TestAvailableSlotCountWithAppointments(t *testing.T) {
	th := mondayTherapist("08:00", "17:00")

	// A 09:00-09:45 appointment knocks out the 09:00 and 09:30 slots.
	existing := []Appointment{appt(th.ID, monday, "09:00", "09:45", StatusScheduled)}
	if got := AvailableSlotCount(th, monday, 30, existing, DefaultConflictPolicy); got != 14 {
		t.Errorf("open slots = %d, want 14", got)
	}
}

func TestIsSlotOccupied(t *testing.T) {
	therapistID := uuid.New()
	existing := []Appointment{appt(therapistID, monday, "09:00", "09:45", StatusScheduled)}

	if !IsSlotOccupied(therapistID, monday, clock.MustTimeOfDay("09:30"), 30, existing, uuid.Nil, DefaultConflictPolicy) {
		t.Error("09:30-10:00 slot intersects the appointment and must be occupied")
	}
	if IsSlotOccupied(therapistID, monday, clock.MustTimeOfDay("09:45"), 30, existing, uuid.Nil, DefaultConflictPolicy) {
		t.Error("09:45-10:15 slot only touches the boundary and must be free")
	}
	if IsSlotOccupied(therapistID, monday, clock.MustTimeOfDay("09:00"), 30, existing, existing[0].ID, DefaultConflictPolicy) {
		t.Error("excluded appointment must not occupy the slot")
	}
}

package clinic

import (
	"errors"

	"github.com/google/uuid"

	"github.com/hanenda/clinic-scheduling/internal/clock"
)

// Fixed midday break. Any slot overlapping this window is dropped from
// availability, whatever the session length.
var (
	BreakStart = clock.MustTimeOfDay("12:00")
	BreakEnd   = clock.MustTimeOfDay("13:00")
)

// Defaults for the therapist-independent booking grid. The grid exists
// to populate a picker; true availability comes from the therapist's
// weekly template via AvailableSlots.
var (
	GridDayStart = clock.MustTimeOfDay("08:00")
	GridDayEnd   = clock.MustTimeOfDay("17:00")
)

const GridStepMinutes = 15

var ErrSessionPastMidnight = errors.New("session does not fit within the day")

// ConflictPolicy decides which appointment statuses keep a slot
// occupied. Completed, no-show, and scheduled appointments always
// block; whether a canceled one still does is a clinic policy choice.
type ConflictPolicy struct {
	CanceledBlocks bool
}

// DefaultConflictPolicy preserves the historical behavior: every
// appointment blocks its slot regardless of status.
var DefaultConflictPolicy = ConflictPolicy{CanceledBlocks: true}

func (p ConflictPolicy) blocks(a Appointment) bool {
	if a.Status == StatusCanceled {
		return p.CanceledBlocks
	}
	return true
}

// SessionEndTime computes the end of a session starting at start. A
// session that would run past midnight is out of domain.
func SessionEndTime(start clock.TimeOfDay, st SessionType) (clock.TimeOfDay, error) {
	end, ok := start.Add(st.DurationMinutes())
	if !ok {
		return 0, ErrSessionPastMidnight
	}
	return end, nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Every conflict and availability check in
// the engine reduces to this predicate; intervals that merely share a
// boundary do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd clock.TimeOfDay) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// BookingCandidate is a proposed new or edited appointment, before an
// end time has been derived.
type BookingCandidate struct {
	TherapistID uuid.UUID
	Date        clock.Date
	Start       clock.TimeOfDay
	SessionType SessionType
}

// HasSchedulingConflict reports whether the candidate collides with an
// existing appointment for the same therapist on the same date.
// excludeID skips the appointment being edited so it never conflicts
// with itself; pass uuid.Nil when creating. Missing therapist or date
// short-circuits to no conflict; required-field validation is handled
// elsewhere.
func HasSchedulingConflict(c BookingCandidate, existing []Appointment, excludeID uuid.UUID, policy ConflictPolicy) bool {
	if c.TherapistID == uuid.Nil || c.Date.IsZero() {
		return false
	}
	end, err := SessionEndTime(c.Start, c.SessionType)
	if err != nil {
		return false
	}
	for _, a := range existing {
		if a.ID == excludeID {
			continue
		}
		if a.TherapistID != c.TherapistID || a.Date != c.Date {
			continue
		}
		if !policy.blocks(a) {
			continue
		}
		if Overlaps(c.Start, end, a.Start, a.End) {
			return true
		}
	}
	return false
}

// CandidateTimeSlots produces every step-aligned start time from
// dayStart up to but not including dayEnd.
func CandidateTimeSlots(dayStart, dayEnd clock.TimeOfDay, stepMinutes int) []clock.TimeOfDay {
	var slots []clock.TimeOfDay
	for t := dayStart; t.Before(dayEnd); {
		slots = append(slots, t)
		next, ok := t.Add(stepMinutes)
		if !ok {
			break
		}
		t = next
	}
	return slots
}

// IsSlotOccupied reports whether any blocking appointment for the
// therapist on the date overlaps the slot [slotStart, slotStart+dur).
func IsSlotOccupied(therapistID uuid.UUID, date clock.Date, slotStart clock.TimeOfDay, slotMinutes int, appointments []Appointment, excludeID uuid.UUID, policy ConflictPolicy) bool {
	slotEnd, ok := slotStart.Add(slotMinutes)
	if !ok {
		return true
	}
	for _, a := range appointments {
		if a.ID == excludeID {
			continue
		}
		if a.TherapistID != therapistID || a.Date != date {
			continue
		}
		if !policy.blocks(a) {
			continue
		}
		if Overlaps(slotStart, slotEnd, a.Start, a.End) {
			return true
		}
	}
	return false
}

// Slot is one bookable position within a therapist's daily window.
type Slot struct {
	Start    clock.TimeOfDay `json:"start"`
	End      clock.TimeOfDay `json:"end"`
	Occupied bool            `json:"occupied"`
}

// AvailableSlots walks the therapist's template window for the date in
// sessionMinutes steps and returns each slot with its occupancy. Slots
// overlapping the midday break are dropped entirely. Returns nil when
// the template marks the weekday unavailable.
func AvailableSlots(t Therapist, date clock.Date, sessionMinutes int, appointments []Appointment, policy ConflictPolicy) []Slot {
	win := t.Availability.Day(date.Weekday())
	if !win.Available {
		return nil
	}

	var slots []Slot
	for cur := win.Start; ; {
		end, ok := cur.Add(sessionMinutes)
		if !ok || end.After(win.End) {
			break
		}
		if !Overlaps(cur, end, BreakStart, BreakEnd) {
			slots = append(slots, Slot{
				Start:    cur,
				End:      end,
				Occupied: IsSlotOccupied(t.ID, date, cur, sessionMinutes, appointments, uuid.Nil, policy),
			})
		}
		cur = end
	}
	return slots
}

// AvailableSlotCount counts the open slots AvailableSlots yields.
func AvailableSlotCount(t Therapist, date clock.Date, sessionMinutes int, appointments []Appointment, policy ConflictPolicy) int {
	n := 0
	for _, s := range AvailableSlots(t, date, sessionMinutes, appointments, policy) {
		if !s.Occupied {
			n++
		}
	}
	return n
}

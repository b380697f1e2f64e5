package clinic

import (
	"github.com/hanenda/clinic-scheduling/internal/clock"
)

// KPISessionMinutes is the slot length used for the occupancy
// denominator: total bookable capacity is counted in 30-minute slots.
const KPISessionMinutes = 30

// Metrics is the KPI summary for a date range.
type Metrics struct {
	From              clock.Date `json:"from"`
	To                clock.Date `json:"to"`
	TotalAppointments int        `json:"totalAppointments"`
	NoShowRate        float64    `json:"noShowRate"`
	OccupancyRate     float64    `json:"occupancyRate"`
	NewPatientVisits  int        `json:"newPatientVisits"`
	RepeatVisits      int        `json:"repeatVisits"`
}

// ComputeMetrics aggregates KPIs over [from, to] inclusive.
//
// Occupancy divides in-range appointment count by the clinic's total
// slot capacity: the sum of each therapist's open template slots on
// each date in range, computed against an empty schedule. New-vs-repeat
// classifies each in-range appointment against the patient's earliest
// appointment date across the entire history, not just the range, so a
// patient with two visits on their first day counts twice as new.
func ComputeMetrics(appointments []Appointment, therapists []Therapist, from, to clock.Date, policy ConflictPolicy) Metrics {
	m := Metrics{From: from, To: to}

	var inRange []Appointment
	for _, a := range appointments {
		if !a.Date.Before(from) && !a.Date.After(to) {
			inRange = append(inRange, a)
		}
	}
	m.TotalAppointments = len(inRange)

	noShows := 0
	for _, a := range inRange {
		if a.Status == StatusNoShow {
			noShows++
		}
	}
	if m.TotalAppointments > 0 {
		m.NoShowRate = float64(noShows) / float64(m.TotalAppointments)
	}

	capacity := 0
	for _, t := range therapists {
		for _, d := range clock.DatesBetween(from, to) {
			capacity += AvailableSlotCount(t, d, KPISessionMinutes, nil, policy)
		}
	}
	if capacity > 0 {
		m.OccupancyRate = float64(m.TotalAppointments) / float64(capacity)
	}

	earliest := make(map[string]clock.Date)
	for _, a := range appointments {
		if cur, ok := earliest[a.PatientMRN]; !ok || a.Date.Before(cur) {
			earliest[a.PatientMRN] = a.Date
		}
	}
	for _, a := range inRange {
		if earliest[a.PatientMRN] == a.Date {
			m.NewPatientVisits++
		} else {
			m.RepeatVisits++
		}
	}

	return m
}

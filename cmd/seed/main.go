// Seeds the database with a plausible clinic: therapists with weekly
// templates, a patient roster, and a conflict-free spread of
// appointments over the coming weeks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/hanenda/clinic-scheduling/internal/clinic"
	"github.com/hanenda/clinic-scheduling/internal/clock"
	"github.com/hanenda/clinic-scheduling/internal/db"
)

func main() {
	log.Logger = log.With().Str("service", "seed").Logger()
	log.Info().Msg("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal().Msg("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrate schema")
	}

	gofakeit.Seed(time.Now().UnixNano())

	therapists, err := seedTherapists(context.Background(), pool, 6)
	if err != nil {
		log.Fatal().Err(err).Msg("seed therapists")
	}
	patients, err := seedPatients(context.Background(), pool, 40)
	if err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}
	if err := seedAppointments(context.Background(), pool, therapists, patients); err != nil {
		log.Fatal().Err(err).Msg("seed appointments")
	}

	log.Info().Msg("seed complete")
}

func weekdayTemplate(start, end string) clinic.WeeklyAvailability {
	var w clinic.WeeklyAvailability
	for d := time.Monday; d <= time.Friday; d++ {
		w[d] = clinic.DayWindow{
			Available: true,
			Start:     clock.MustTimeOfDay(start),
			End:       clock.MustTimeOfDay(end),
		}
	}
	return w
}

func seedTherapists(ctx context.Context, pool *pgxpool.Pool, count int) ([]uuid.UUID, error) {
	log.Info().Int("count", count).Msg("seeding therapists")

	specializations := []clinic.Specialization{
		clinic.SpeechTherapy,
		clinic.Physiotherapy,
		clinic.OccupationalTherapy,
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.New()

		template := weekdayTemplate("08:00", "17:00")
		if i%2 == 1 {
			template = weekdayTemplate("09:00", "15:00")
		}
		availability, err := json.Marshal(template)
		if err != nil {
			return nil, err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO therapists (id, name, specialization, phone, availability, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, id, gofakeit.Name(), specializations[i%len(specializations)], gofakeit.Phone(), availability)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ids, nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) ([]string, error) {
	log.Info().Int("count", count).Msg("seeding patients")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	mrns := make([]string, 0, count)
	today := clock.DateOf(time.Now())

	for i := 0; i < count; i++ {
		mrn := fmt.Sprintf("MR-%05d", i+1)
		patientType := clinic.PatientRegular

		var referral []byte
		if i%4 == 0 {
			patientType = clinic.PatientInsuranceReferral
			issued := today.AddDays(-gofakeit.Number(0, 60))
			data, err := json.Marshal(clinic.Referral{
				Number:            fmt.Sprintf("REF-%06d", gofakeit.Number(100000, 999999)),
				IssuedDate:        issued,
				ExpiryDate:        issued.AddDays(clinic.ReferralValidityDays),
				ReferringProvider: "dr. " + gofakeit.LastName(),
			})
			if err != nil {
				return nil, err
			}
			referral = data
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO patients (medical_record_number, name, phone, patient_type, referral, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, mrn, gofakeit.Name(), gofakeit.Phone(), patientType, referral)
		if err != nil {
			return nil, err
		}
		mrns = append(mrns, mrn)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return mrns, nil
}

func seedAppointments(ctx context.Context, pool *pgxpool.Pool, therapists []uuid.UUID, patients []string) error {
	log.Info().Msg("seeding appointments")

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Hourly starts keep sessions inside their hour, so no two seeded
	// appointments for the same therapist can overlap.
	starts := []string{"08:00", "09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}
	statuses := []clinic.AppointmentStatus{
		clinic.StatusScheduled,
		clinic.StatusCompleted,
		clinic.StatusNoShow,
		clinic.StatusCanceled,
	}

	today := clock.DateOf(time.Now())
	total := 0

	for dayOffset := -7; dayOffset <= 14; dayOffset++ {
		date := today.AddDays(dayOffset)
		if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
			continue
		}
		for _, therapistID := range therapists {
			// A handful of bookings per therapist per day.
			order := indices(len(starts))
			gofakeit.ShuffleInts(order)
			for _, idx := range order[:gofakeit.Number(2, 4)] {
				start := clock.MustTimeOfDay(starts[idx])
				mrn := patients[gofakeit.Number(0, len(patients)-1)]

				sessionType := clinic.SessionRegular
				if gofakeit.Number(0, 3) == 0 {
					sessionType = clinic.SessionInsuranceReferral
				}
				end, err := clinic.SessionEndTime(start, sessionType)
				if err != nil {
					return err
				}

				status := clinic.StatusScheduled
				if dayOffset < 0 {
					status = statuses[gofakeit.Number(1, len(statuses)-1)]
				}

				_, err = tx.Exec(ctx, `
					INSERT INTO appointments (id, therapist_id, patient_mrn, date, start_time, end_time, status, session_type, notes, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULL, now(), now())
				`, uuid.New(), therapistID, mrn, date.String(), start.String(), end.String(), status, sessionType)
				if err != nil {
					return err
				}
				total++
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	log.Info().Int("total", total).Msg("appointments seeded")
	return nil
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// Booking-race simulator: fires concurrent bookings for the same
// therapist, date, and start time through the API and reports how many
// won, conflicted, or failed. With the schedule lock in place exactly
// one request should win per start time.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

type simConfig struct {
	APIBaseURL string
	Workers    int
	Date       string
	StartTime  string
}

type therapistDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type patientDTO struct {
	MedicalRecordNumber string `json:"medicalRecordNumber"`
}

func loadSimConfig() simConfig {
	cfg := simConfig{
		APIBaseURL: "http://localhost:8080",
		Workers:    20,
		Date:       time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
		StartTime:  "09:00",
	}
	if v := os.Getenv("SIM_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("SIM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("SIM_DATE"); v != "" {
		cfg.Date = v
	}
	if v := os.Getenv("SIM_START_TIME"); v != "" {
		cfg.StartTime = v
	}
	return cfg
}

func main() {
	log.Logger = log.With().Str("service", "simulate").Logger()

	cfg := loadSimConfig()
	client := &http.Client{Timeout: 10 * time.Second}

	therapist, err := fetchOne[therapistDTO](client, cfg.APIBaseURL+"/therapists")
	if err != nil {
		log.Fatal().Err(err).Msg("fetch therapists")
	}
	patients, err := fetchAll[patientDTO](client, cfg.APIBaseURL+"/patients")
	if err != nil {
		log.Fatal().Err(err).Msg("fetch patients")
	}
	if len(patients) < cfg.Workers {
		log.Fatal().Int("patients", len(patients)).Int("workers", cfg.Workers).
			Msg("need at least one patient per worker, run the seeder first")
	}

	log.Info().
		Str("therapist", therapist.Name).
		Str("date", cfg.Date).
		Str("start_time", cfg.StartTime).
		Int("workers", cfg.Workers).
		Msg("racing bookings")

	var created, conflicted, failed int64
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()

			body, _ := json.Marshal(map[string]any{
				"therapistId": therapist.ID,
				"patientId":   patients[worker].MedicalRecordNumber,
				"date":        cfg.Date,
				"startTime":   cfg.StartTime,
				"sessionType": "regular",
			})

			resp, err := client.Post(cfg.APIBaseURL+"/appointments", "application/json", bytes.NewReader(body))
			if err != nil {
				atomic.AddInt64(&failed, 1)
				return
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusCreated:
				atomic.AddInt64(&created, 1)
			case http.StatusConflict:
				atomic.AddInt64(&conflicted, 1)
			default:
				atomic.AddInt64(&failed, 1)
			}
		}(i)
	}
	wg.Wait()

	log.Info().
		Int64("created", created).
		Int64("conflicted", conflicted).
		Int64("failed", failed).
		Dur("took", time.Since(start)).
		Msg("simulation complete")

	if created != 1 {
		log.Warn().Int64("created", created).Msg("expected exactly one winner")
		os.Exit(1)
	}
}

func fetchAll[T any](client *http.Client, url string) ([]T, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	var out []T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func fetchOne[T any](client *http.Client, url string) (T, error) {
	var zero T
	all, err := fetchAll[T](client, url)
	if err != nil {
		return zero, err
	}
	if len(all) == 0 {
		return zero, fmt.Errorf("GET %s: empty result, run the seeder first", url)
	}
	return all[0], nil
}

// Package api exposes the clinic scheduling HTTP surface.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/hanenda/clinic-scheduling/internal/clinic"
)

type RouterConfig struct {
	Service *clinic.Service
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Therapists
	r.Route("/therapists", func(r chi.Router) {
		r.Get("/", listTherapistsHandler(cfg.Service))
		r.Post("/", createTherapistHandler(cfg.Service))
		r.Get("/{id}", getTherapistHandler(cfg.Service))
		r.Put("/{id}", updateTherapistHandler(cfg.Service))
		r.Delete("/{id}", deleteTherapistHandler(cfg.Service))
		r.Get("/{id}/availability", therapistAvailabilityHandler(cfg.Service))
	})

	// Patients, keyed by medical record number
	r.Route("/patients", func(r chi.Router) {
		r.Get("/", listPatientsHandler(cfg.Service))
		r.Post("/", createPatientHandler(cfg.Service))
		r.Get("/{mrn}", getPatientHandler(cfg.Service))
		r.Put("/{mrn}", updatePatientHandler(cfg.Service))
		r.Delete("/{mrn}", deletePatientHandler(cfg.Service))
	})

	// Appointments
	r.Route("/appointments", func(r chi.Router) {
		r.Get("/", listAppointmentsHandler(cfg.Service))
		r.Post("/", createAppointmentHandler(cfg.Service))
		r.Get("/{id}", getAppointmentHandler(cfg.Service))
		r.Put("/{id}", updateAppointmentHandler(cfg.Service))
		r.Delete("/{id}", deleteAppointmentHandler(cfg.Service))
		r.Post("/{id}/status", updateAppointmentStatusHandler(cfg.Service))
	})

	// Booking grid and KPIs
	r.Get("/schedule/slots", slotGridHandler(cfg.Service))
	r.Get("/metrics/kpi", kpiHandler(cfg.Service))

	return r
}

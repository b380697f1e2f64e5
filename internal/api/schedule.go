package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hanenda/clinic-scheduling/internal/clinic"
	"github.com/hanenda/clinic-scheduling/internal/clock"
)

// slotGridHandler serves the fixed 15-minute picker grid:
// GET /schedule/slots?therapist_id=&date=&session_type=
func slotGridHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		therapistID, err := uuid.Parse(q.Get("therapist_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_therapist_id", "therapist_id must be a valid UUID")
			return
		}
		date, err := clock.ParseDate(q.Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		sessionType := clinic.SessionType(q.Get("session_type"))
		if sessionType == "" {
			sessionType = clinic.SessionRegular
		}
		if !sessionType.Valid() {
			writeError(w, http.StatusBadRequest, "invalid_session_type", "unknown session type")
			return
		}

		grid, err := svc.SlotGrid(r.Context(), therapistID, date, sessionType)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, SlotGridResponse{
			TherapistID: therapistID,
			Date:        date,
			SessionType: sessionType,
			Slots:       grid,
		})
	}
}

// kpiHandler serves the dashboard metrics:
// GET /metrics/kpi?from=&to=
func kpiHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		from, err := clock.ParseDate(q.Get("from"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_from", "from must be YYYY-MM-DD")
			return
		}
		to, err := clock.ParseDate(q.Get("to"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_to", "to must be YYYY-MM-DD")
			return
		}
		if to.Before(from) {
			writeError(w, http.StatusBadRequest, "invalid_range", "to must not be before from")
			return
		}

		metrics, err := svc.Metrics(r.Context(), from, to)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, metrics)
	}
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hanenda/clinic-scheduling/internal/clinic"
	"github.com/hanenda/clinic-scheduling/internal/clock"
)

func listTherapistsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		therapists, err := svc.ListTherapists(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp := make([]TherapistResponse, 0, len(therapists))
		for _, t := range therapists {
			resp = append(resp, toTherapistResponse(t))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getTherapistHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := therapistID(w, r)
		if !ok {
			return
		}
		t, err := svc.GetTherapist(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTherapistResponse(*t))
	}
}

func createTherapistHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TherapistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}

		created, err := svc.CreateTherapist(r.Context(), clinic.Therapist{
			Name:           req.Name,
			Specialization: req.Specialization,
			Phone:          req.Phone,
			Availability:   req.Availability,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toTherapistResponse(*created))
	}
}

func updateTherapistHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := therapistID(w, r)
		if !ok {
			return
		}
		var req TherapistRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}

		updated, err := svc.UpdateTherapist(r.Context(), clinic.Therapist{
			ID:             id,
			Name:           req.Name,
			Specialization: req.Specialization,
			Phone:          req.Phone,
			Availability:   req.Availability,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTherapistResponse(*updated))
	}
}

func deleteTherapistHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := therapistID(w, r)
		if !ok {
			return
		}
		if err := svc.DeleteTherapist(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// therapistAvailabilityHandler reports the template-derived slots for
// one date: GET /therapists/{id}/availability?date=YYYY-MM-DD
func therapistAvailabilityHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := therapistID(w, r)
		if !ok {
			return
		}
		date, err := clock.ParseDate(r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}

		slots, err := svc.DailyAvailability(r.Context(), id, date)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		open := 0
		for _, s := range slots {
			if !s.Occupied {
				open++
			}
		}
		writeJSON(w, http.StatusOK, AvailabilityResponse{
			TherapistID: id,
			Date:        date,
			OpenSlots:   open,
			Slots:       slots,
		})
	}
}

func therapistID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_therapist_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

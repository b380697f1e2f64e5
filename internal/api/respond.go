package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hanenda/clinic-scheduling/internal/clinic"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}

// writeDomainError maps service errors onto HTTP statuses. Validation
// failures carry their field map; conflicts and contention are 409.
func writeDomainError(w http.ResponseWriter, err error) {
	var fieldErrs clinic.FieldErrors
	if errors.As(err, &fieldErrs) {
		status := http.StatusBadRequest
		code := "validation_failed"
		if fieldErrs.HasConflictError() {
			status = http.StatusConflict
			code = "scheduling_conflict"
		}
		writeJSON(w, status, ValidationErrorResponse{Error: code, Fields: fieldErrs})
		return
	}

	switch {
	case errors.Is(err, clinic.ErrTherapistNotFound):
		writeError(w, http.StatusNotFound, "therapist_not_found", err.Error())
	case errors.Is(err, clinic.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, clinic.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, clinic.ErrPatientExists):
		writeError(w, http.StatusConflict, "patient_exists", err.Error())
	case errors.Is(err, clinic.ErrScheduleBusy):
		writeError(w, http.StatusConflict, "schedule_busy", "schedule is being updated, please retry shortly")
	case errors.Is(err, clinic.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

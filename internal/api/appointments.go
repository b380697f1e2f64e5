package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hanenda/clinic-scheduling/internal/clinic"
	"github.com/hanenda/clinic-scheduling/internal/clock"
)

func listAppointmentsHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter clinic.AppointmentFilter

		q := r.URL.Query()
		if v := q.Get("therapist_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_therapist_id", "therapist_id must be a valid UUID")
				return
			}
			filter.TherapistID = id
		}
		if v := q.Get("patient_id"); v != "" {
			filter.PatientMRN = v
		}
		for param, dst := range map[string]*clock.Date{
			"date": &filter.Date,
			"from": &filter.From,
			"to":   &filter.To,
		} {
			if v := q.Get(param); v != "" {
				d, err := clock.ParseDate(v)
				if err != nil {
					writeError(w, http.StatusBadRequest, "invalid_"+param, param+" must be YYYY-MM-DD")
					return
				}
				*dst = d
			}
		}

		appointments, err := svc.ListAppointments(r.Context(), filter)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		resp := make([]AppointmentResponse, 0, len(appointments))
		for _, a := range appointments {
			resp = append(resp, toAppointmentResponse(a))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}
		a, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*a))
	}
}

func createAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeBookingRequest(w, r)
		if !ok {
			return
		}
		appt, err := svc.BookAppointment(r.Context(), req)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAppointmentResponse(*appt))
	}
}

func updateAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}
		req, ok := decodeBookingRequest(w, r)
		if !ok {
			return
		}
		appt, err := svc.RescheduleAppointment(r.Context(), id, req)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func updateAppointmentStatusHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}
		var req StatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
			return
		}
		appt, err := svc.ChangeAppointmentStatus(r.Context(), id, req.Status)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func deleteAppointmentHandler(svc *clinic.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}
		if err := svc.DeleteAppointment(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeBookingRequest(w http.ResponseWriter, r *http.Request) (clinic.BookingRequest, bool) {
	var req AppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", err.Error())
		return clinic.BookingRequest{}, false
	}

	var therapistID uuid.UUID
	if req.TherapistID != "" {
		id, err := uuid.Parse(req.TherapistID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_therapist_id", "therapistId must be a valid UUID")
			return clinic.BookingRequest{}, false
		}
		therapistID = id
	}

	return clinic.BookingRequest{
		TherapistID: therapistID,
		PatientMRN:  req.PatientID,
		Date:        req.Date,
		Start:       req.StartTime,
		SessionType: req.SessionType,
		Notes:       req.Notes,
	}, true
}

func appointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

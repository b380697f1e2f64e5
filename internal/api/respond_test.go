package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hanenda/clinic-scheduling/internal/clinic"
)

func TestWriteDomainErrorStatus(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation failure",
			err:        clinic.FieldErrors{"name": "name is required"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
		},
		{
			name:       "scheduling conflict",
			err:        clinic.FieldErrors{clinic.ConflictField: "the selected time overlaps another appointment"},
			wantStatus: http.StatusConflict,
			wantCode:   "scheduling_conflict",
		},
		{
			name:       "unknown therapist",
			err:        clinic.ErrTherapistNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "therapist_not_found",
		},
		{
			name:       "wrapped not found",
			err:        errors.Join(errors.New("load appointment"), clinic.ErrAppointmentNotFound),
			wantStatus: http.StatusNotFound,
			wantCode:   "appointment_not_found",
		},
		{
			name:       "duplicate patient",
			err:        clinic.ErrPatientExists,
			wantStatus: http.StatusConflict,
			wantCode:   "patient_exists",
		},
		{
			name:       "lock contention",
			err:        clinic.ErrScheduleBusy,
			wantStatus: http.StatusConflict,
			wantCode:   "schedule_busy",
		},
		{
			name:       "invalid status",
			err:        clinic.ErrInvalidStatus,
			wantStatus: http.StatusBadRequest,
			wantCode:   "invalid_status",
		},
		{
			name:       "unexpected error",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tc.err)

			if rec.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tc.wantStatus)
			}

			var body struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tc.wantCode {
				t.Errorf("error code = %q, want %q", body.Error, tc.wantCode)
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	// A caller-supplied ID passes through untouched.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/therapists", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	handler.ServeHTTP(rec, req)

	if seen != "abc-123" {
		t.Errorf("context request id = %q, want abc-123", seen)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("header request id = %q, want abc-123", got)
	}

	// Without one, a fresh ID is generated and echoed back.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/therapists", nil))

	if seen == "" || seen == "abc-123" {
		t.Errorf("expected a generated request id, got %q", seen)
	}
	if rec.Header().Get("X-Request-ID") != seen {
		t.Error("response header must carry the generated id")
	}
}

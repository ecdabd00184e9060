package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thetheqs/sghss-scheduling/internal/scheduling"
)

func listSlotsHandler(svc *scheduling.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		professionalID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional_id", "id must be a valid UUID")
			return
		}

		from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_from", "from must be RFC3339")
			return
		}
		to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_to", "to must be RFC3339")
			return
		}

		slots, err := svc.AvailableSlots(r.Context(), professionalID, from, to)
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		resp := make([]AvailableSlotResponse, 0, len(slots))
		for _, s := range slots {
			resp = append(resp, AvailableSlotResponse{
				Start:           s.StartTime,
				End:             s.EndTime,
				DurationMinutes: int(s.EndTime.Sub(s.StartTime) / time.Minute),
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func createAppointmentHandler(svc *scheduling.BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		professionalID, err := uuid.Parse(req.ProfessionalID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_professional_id", "professional_id must be a valid UUID")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		apptType, ok := parseAppointmentType(req.Type)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_type", "type must be in_person or teleconsultation")
			return
		}

		appt, err := svc.Schedule(r.Context(), scheduling.BookingRequest{
			ProfessionalID: professionalID,
			PatientID:      patientID,
			Start:          req.Start,
			End:            req.End,
			Type:           apptType,
			Description:    req.Description,
		})
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func updateAppointmentStatusHandler(svc *scheduling.LifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req UpdateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		apptStatus, ok := parseAppointmentStatus(req.AppointmentStatus)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_appointment_status", "unknown appointment status")
			return
		}
		slotStatus, ok := parseSlotStatus(req.SlotStatus)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_slot_status", "unknown slot status")
			return
		}

		appt, err := svc.UpdateStatus(r.Context(), id, apptStatus, slotStatus)
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func completeAppointmentHandler(svc *scheduling.LifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req CompleteAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		toDetails := func(d *DocumentRequest) *scheduling.DocumentDetails {
			if d == nil {
				return nil
			}
			return &scheduling.DocumentDetails{Details: d.Details}
		}

		result, err := svc.Complete(r.Context(), id, scheduling.CompletionRequest{
			Certificate:   toDetails(req.Certificate),
			Prescription:  toDetails(req.Prescription),
			MedicalRecord: toDetails(req.MedicalRecord),
		})
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		resp := CompleteAppointmentResponse{
			AppointmentID:  result.AppointmentID,
			SlotID:         result.SlotID,
			CertificateID:  result.CertificateID,
			PrescriptionID: result.PrescriptionID,
			RecordID:       result.RecordID,
		}
		for _, f := range result.Failures {
			resp.Failures = append(resp.Failures, DocumentFailureResponse{
				Kind:  string(f.Kind),
				Error: f.Err.Error(),
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func appointmentLinkHandler(svc *scheduling.LifecycleService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		patientID, err := uuid.Parse(r.URL.Query().Get("patient_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		link, err := svc.AppointmentLink(r.Context(), id, patientID)
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AppointmentLinkResponse{Link: link})
	}
}

func parseAppointmentType(s string) (scheduling.AppointmentType, bool) {
	switch scheduling.AppointmentType(s) {
	case scheduling.TypeInPerson, scheduling.TypeTeleconsultation:
		return scheduling.AppointmentType(s), true
	}
	return "", false
}

func parseAppointmentStatus(s string) (scheduling.AppointmentStatus, bool) {
	switch scheduling.AppointmentStatus(s) {
	case scheduling.StatusConfirmed, scheduling.StatusCompleted, scheduling.StatusCanceled:
		return scheduling.AppointmentStatus(s), true
	}
	return "", false
}

func parseSlotStatus(s string) (scheduling.SlotStatus, bool) {
	switch scheduling.SlotStatus(s) {
	case scheduling.SlotAvailable, scheduling.SlotReserved, scheduling.SlotCompleted, scheduling.SlotCanceled:
		return scheduling.SlotStatus(s), true
	}
	return "", false
}

func handleSchedulingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduling.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, scheduling.ErrProfessionalNotFound),
		errors.Is(err, scheduling.ErrScheduleNotFound):
		writeError(w, http.StatusNotFound, "schedule_not_found", err.Error())
	case errors.Is(err, scheduling.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, scheduling.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot_not_found", err.Error())
	case errors.Is(err, scheduling.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "invalid_range", err.Error())
	case errors.Is(err, scheduling.ErrOutsidePolicy):
		writeError(w, http.StatusUnprocessableEntity, "outside_policy", err.Error())
	case errors.Is(err, scheduling.ErrSlotConflict):
		writeError(w, http.StatusConflict, "slot_conflict", err.Error())
	case errors.Is(err, scheduling.ErrScheduleBusy):
		writeError(w, http.StatusConflict, "schedule_busy", "schedule is currently being booked, please retry shortly")
	case errors.Is(err, scheduling.ErrAppointmentTerminal):
		writeError(w, http.StatusConflict, "appointment_terminal", err.Error())
	case errors.Is(err, scheduling.ErrNotConfirmed):
		writeError(w, http.StatusConflict, "appointment_not_confirmed", err.Error())
	case errors.Is(err, scheduling.ErrLinkForbidden):
		writeError(w, http.StatusForbidden, "link_forbidden", err.Error())
	case errors.Is(err, scheduling.ErrNoLink):
		writeError(w, http.StatusNotFound, "link_not_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

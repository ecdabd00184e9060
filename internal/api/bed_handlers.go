package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thetheqs/sghss-scheduling/internal/hospitalization"
)

func hospitalizeHandler(svc *hospitalization.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req HospitalizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}
		bedID, err := uuid.Parse(req.BedID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_bed_id", "bed_id must be a valid UUID")
			return
		}

		h, err := svc.Hospitalize(r.Context(), patientID, bedID, req.Reason)
		if err != nil {
			handleHospitalizationError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toHospitalizationResponse(h))
	}
}

func dischargeHandler(svc *hospitalization.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patientID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "id must be a valid UUID")
			return
		}

		h, err := svc.Discharge(r.Context(), patientID)
		if err != nil {
			handleHospitalizationError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toHospitalizationResponse(h))
	}
}

func bedMaintenanceHandler(svc *hospitalization.Service) http.HandlerFunc {
	return bedTransitionHandler(svc.MarkUnderMaintenance)
}

func bedAvailableHandler(svc *hospitalization.Service) http.HandlerFunc {
	return bedTransitionHandler(svc.MarkAvailable)
}

func bedTransitionHandler(transition func(ctx context.Context, bedID uuid.UUID) (*hospitalization.Bed, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bedID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_bed_id", "id must be a valid UUID")
			return
		}

		bed, err := transition(r.Context(), bedID)
		if err != nil {
			handleHospitalizationError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BedResponse{
			ID:        bed.ID,
			BedNumber: bed.BedNumber,
			Type:      bed.Type,
			Status:    string(bed.Status),
		})
	}
}

func toHospitalizationResponse(h *hospitalization.Hospitalization) HospitalizationResponse {
	return HospitalizationResponse{
		ID:            h.ID,
		PatientID:     h.PatientID,
		BedID:         h.BedID,
		AdmissionDate: h.AdmissionDate,
		DischargeDate: h.DischargeDate,
		Reason:        h.Reason,
		Status:        string(h.Status),
	}
}

func handleHospitalizationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hospitalization.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, hospitalization.ErrBedNotFound):
		writeError(w, http.StatusNotFound, "bed_not_found", err.Error())
	case errors.Is(err, hospitalization.ErrBedNotAvailable):
		writeError(w, http.StatusConflict, "bed_not_available", err.Error())
	case errors.Is(err, hospitalization.ErrAlreadyHospitalized):
		writeError(w, http.StatusConflict, "already_hospitalized", err.Error())
	case errors.Is(err, hospitalization.ErrNoActiveHospitalization):
		writeError(w, http.StatusConflict, "no_active_hospitalization", err.Error())
	case errors.Is(err, hospitalization.ErrHospitalizationWithoutBed):
		writeError(w, http.StatusConflict, "hospitalization_without_bed", err.Error())
	case errors.Is(err, hospitalization.ErrBedNotOccupied):
		writeError(w, http.StatusConflict, "bed_not_occupied", err.Error())
	case errors.Is(err, hospitalization.ErrBedNotReadyForMaintenance),
		errors.Is(err, hospitalization.ErrBedNotUnderMaintenance):
		writeError(w, http.StatusConflict, "invalid_bed_transition", err.Error())
	case errors.Is(err, hospitalization.ErrBedBusy):
		writeError(w, http.StatusConflict, "bed_busy", "bed is currently being updated, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/thetheqs/sghss-scheduling/internal/scheduling"
)

type AvailableSlotResponse struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
}

type CreateAppointmentRequest struct {
	ProfessionalID string    `json:"professional_id"`
	PatientID      string    `json:"patient_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Type           string    `json:"type"`
	Description    string    `json:"description,omitempty"`
}

type AppointmentResponse struct {
	ID             uuid.UUID `json:"id"`
	SlotID         uuid.UUID `json:"slot_id"`
	PatientID      uuid.UUID `json:"patient_id"`
	ProfessionalID uuid.UUID `json:"professional_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Status         string    `json:"status"`
	Type           string    `json:"type"`
	Link           *string   `json:"link,omitempty"`
}

func toAppointmentResponse(a *scheduling.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:             a.ID,
		SlotID:         a.SlotID,
		PatientID:      a.PatientID,
		ProfessionalID: a.ProfessionalID,
		Start:          a.StartTime,
		End:            a.EndTime,
		Status:         string(a.Status),
		Type:           string(a.Type),
		Link:           a.Link,
	}
}

type UpdateStatusRequest struct {
	AppointmentStatus string `json:"appointment_status"`
	SlotStatus        string `json:"slot_status"`
}

type DocumentRequest struct {
	Details string `json:"details"`
}

type CompleteAppointmentRequest struct {
	Certificate   *DocumentRequest `json:"certificate,omitempty"`
	Prescription  *DocumentRequest `json:"prescription,omitempty"`
	MedicalRecord *DocumentRequest `json:"medical_record,omitempty"`
}

type DocumentFailureResponse struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

type CompleteAppointmentResponse struct {
	AppointmentID  uuid.UUID                 `json:"appointment_id"`
	SlotID         uuid.UUID                 `json:"slot_id"`
	CertificateID  *uuid.UUID                `json:"certificate_id,omitempty"`
	PrescriptionID *uuid.UUID                `json:"prescription_id,omitempty"`
	RecordID       *uuid.UUID                `json:"record_id,omitempty"`
	Failures       []DocumentFailureResponse `json:"failures,omitempty"`
}

type AppointmentLinkResponse struct {
	Link string `json:"link"`
}

type HospitalizeRequest struct {
	PatientID string `json:"patient_id"`
	BedID     string `json:"bed_id"`
	Reason    string `json:"reason"`
}

type HospitalizationResponse struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	BedID         *uuid.UUID `json:"bed_id,omitempty"`
	AdmissionDate time.Time  `json:"admission_date"`
	DischargeDate *time.Time `json:"discharge_date,omitempty"`
	Reason        string     `json:"reason"`
	Status        string     `json:"status"`
}

type BedResponse struct {
	ID        uuid.UUID `json:"id"`
	BedNumber string    `json:"bed_number"`
	Type      string    `json:"type"`
	Status    string    `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

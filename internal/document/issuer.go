// Package document issues the clinical documents that can accompany a
// completed appointment: medical certificates, electronic prescriptions and
// medical record updates. Each kind is an independent workflow; the caller
// tolerates per-document failure.
package document

import (
	"context"

	"github.com/google/uuid"
)

type Kind string

const (
	KindCertificate   Kind = "certificate"
	KindPrescription  Kind = "prescription"
	KindMedicalRecord Kind = "medical_record"
)

type IssueRequest struct {
	PatientID      uuid.UUID
	ProfessionalID uuid.UUID
	HealthUnitID   uuid.UUID
	AppointmentID  uuid.UUID
	Details        string
}

type Issuer interface {
	Issue(ctx context.Context, req IssueRequest) (uuid.UUID, error)
}

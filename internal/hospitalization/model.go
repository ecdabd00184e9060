// Package hospitalization couples bed occupancy to patient admissions. A bed
// is occupied exactly while one admitted hospitalization references it, and a
// patient holds at most one admitted hospitalization at a time.
package hospitalization

import (
	"time"

	"github.com/google/uuid"
)

type BedStatus string

const (
	BedAvailable        BedStatus = "available"
	BedOccupied         BedStatus = "occupied"
	BedUnderMaintenance BedStatus = "under_maintenance"
)

type HospitalizationStatus string

const (
	StatusAdmitted   HospitalizationStatus = "admitted"
	StatusDischarged HospitalizationStatus = "discharged"
)

type Bed struct {
	ID           uuid.UUID
	BedNumber    string
	Type         string
	HealthUnitID uuid.UUID
	Status       BedStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Hospitalization is the period a patient occupies a bed. DischargeDate nil
// means the stay is still active.
type Hospitalization struct {
	ID            uuid.UUID
	PatientID     uuid.UUID
	BedID         *uuid.UUID
	AdmissionDate time.Time
	DischargeDate *time.Time
	Reason        string
	Status        HospitalizationStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

package hospitalization

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store contains all persistence interactions needed by the service. The
// dual-entity writes (admit, discharge) must be atomic for the pair.
type Store interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
	GetBedByID(ctx context.Context, id uuid.UUID) (*Bed, error)

	// GetActiveHospitalization returns the patient's admitted
	// hospitalization, or ErrHospitalizationNotFound when there is none.
	GetActiveHospitalization(ctx context.Context, patientID uuid.UUID) (*Hospitalization, error)

	// Admit creates the hospitalization and marks its bed occupied as one
	// unit, guarded by the bed still being available. Returns
	// ErrBedNotAvailable when the guard fails.
	Admit(ctx context.Context, h *Hospitalization) error

	// Discharge closes the hospitalization and frees its bed as one unit,
	// guarded by the bed still being occupied.
	Discharge(ctx context.Context, hospitalizationID, bedID uuid.UUID, at time.Time) (*Hospitalization, error)

	// UpdateBedStatus is a compare-and-set transition for the maintenance
	// paths. Returns ErrBedNotFound when no bed matches id+from.
	UpdateBedStatus(ctx context.Context, id uuid.UUID, from, to BedStatus) (*Bed, error)
}

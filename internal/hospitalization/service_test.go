package hospitalization

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/thetheqs/sghss-scheduling/internal/redis"
)

type fixture struct {
	store     *MemoryStore
	service   *Service
	patientID uuid.UUID
	bedID     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := NewMemoryStore()
	patientID := uuid.New()
	bedID := uuid.New()

	store.AddPatient(patientID)
	store.AddBed(Bed{
		ID:           bedID,
		BedNumber:    "101",
		Type:         "enfermaria",
		HealthUnitID: uuid.New(),
		Status:       BedAvailable,
	})

	return &fixture{
		store:     store,
		service:   NewService(store, redisclient.NoopLocker{}, zerolog.Nop()),
		patientID: patientID,
		bedID:     bedID,
	}
}

func (f *fixture) addBed(status BedStatus) uuid.UUID {
	id := uuid.New()
	f.store.AddBed(Bed{ID: id, BedNumber: "102", Type: "uti", HealthUnitID: uuid.New(), Status: status})
	return id
}

func TestHospitalize_OccupiesBed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h, err := f.service.Hospitalize(ctx, f.patientID, f.bedID, "pneumonia")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.Status != StatusAdmitted {
		t.Errorf("expected admitted, got %s", h.Status)
	}
	if h.DischargeDate != nil {
		t.Error("active hospitalization must have nil discharge date")
	}

	bed, _ := f.store.GetBedByID(ctx, f.bedID)
	if bed.Status != BedOccupied {
		t.Errorf("expected occupied bed, got %s", bed.Status)
	}
}

func TestHospitalize_Preconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown patient", func(t *testing.T) {
		_, err := f.service.Hospitalize(ctx, uuid.New(), f.bedID, "x")
		if !errors.Is(err, ErrPatientNotFound) {
			t.Fatalf("expected ErrPatientNotFound, got %v", err)
		}
	})

	t.Run("unknown bed", func(t *testing.T) {
		_, err := f.service.Hospitalize(ctx, f.patientID, uuid.New(), "x")
		if !errors.Is(err, ErrBedNotFound) {
			t.Fatalf("expected ErrBedNotFound, got %v", err)
		}
	})

	t.Run("bed under maintenance", func(t *testing.T) {
		bedID := f.addBed(BedUnderMaintenance)
		_, err := f.service.Hospitalize(ctx, f.patientID, bedID, "x")
		if !errors.Is(err, ErrBedNotAvailable) {
			t.Fatalf("expected ErrBedNotAvailable, got %v", err)
		}
	})
}

func TestHospitalize_SecondAdmissionRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.Hospitalize(ctx, f.patientID, f.bedID, "pneumonia"); err != nil {
		t.Fatalf("first admission failed: %v", err)
	}

	secondBed := f.addBed(BedAvailable)
	_, err := f.service.Hospitalize(ctx, f.patientID, secondBed, "outro motivo")
	if !errors.Is(err, ErrAlreadyHospitalized) {
		t.Fatalf("expected ErrAlreadyHospitalized, got %v", err)
	}

	// The second bed must be untouched.
	bed, _ := f.store.GetBedByID(ctx, secondBed)
	if bed.Status != BedAvailable {
		t.Errorf("second bed changed status: %s", bed.Status)
	}
}

func TestDischarge_FreesBed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.Hospitalize(ctx, f.patientID, f.bedID, "pneumonia"); err != nil {
		t.Fatalf("admission failed: %v", err)
	}

	h, err := f.service.Discharge(ctx, f.patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if h.Status != StatusDischarged {
		t.Errorf("expected discharged, got %s", h.Status)
	}
	if h.DischargeDate == nil {
		t.Error("expected discharge date to be set")
	}

	bed, _ := f.store.GetBedByID(ctx, f.bedID)
	if bed.Status != BedAvailable {
		t.Errorf("expected available bed after discharge, got %s", bed.Status)
	}

	// Patient can be admitted again after discharge.
	if _, err := f.service.Hospitalize(ctx, f.patientID, f.bedID, "retorno"); err != nil {
		t.Fatalf("re-admission after discharge failed: %v", err)
	}
}

func TestDischarge_Preconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("unknown patient", func(t *testing.T) {
		_, err := f.service.Discharge(ctx, uuid.New())
		if !errors.Is(err, ErrPatientNotFound) {
			t.Fatalf("expected ErrPatientNotFound, got %v", err)
		}
	})

	t.Run("no active hospitalization", func(t *testing.T) {
		_, err := f.service.Discharge(ctx, f.patientID)
		if !errors.Is(err, ErrNoActiveHospitalization) {
			t.Fatalf("expected ErrNoActiveHospitalization, got %v", err)
		}
	})
}

func TestDischarge_DefensiveConsistencyChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	t.Run("hospitalization without bed", func(t *testing.T) {
		patientID := uuid.New()
		f.store.AddPatient(patientID)
		id := uuid.New()
		f.store.hospitalizations[id] = &Hospitalization{
			ID:        id,
			PatientID: patientID,
			Status:    StatusAdmitted,
		}

		_, err := f.service.Discharge(ctx, patientID)
		if !errors.Is(err, ErrHospitalizationWithoutBed) {
			t.Fatalf("expected ErrHospitalizationWithoutBed, got %v", err)
		}
	})

	t.Run("bed not occupied", func(t *testing.T) {
		patientID := uuid.New()
		f.store.AddPatient(patientID)
		bedID := f.addBed(BedAvailable)
		id := uuid.New()
		f.store.hospitalizations[id] = &Hospitalization{
			ID:        id,
			PatientID: patientID,
			BedID:     &bedID,
			Status:    StatusAdmitted,
		}

		_, err := f.service.Discharge(ctx, patientID)
		if !errors.Is(err, ErrBedNotOccupied) {
			t.Fatalf("expected ErrBedNotOccupied, got %v", err)
		}
	})
}

func TestBedMaintenanceTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bed, err := f.service.MarkUnderMaintenance(ctx, f.bedID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bed.Status != BedUnderMaintenance {
		t.Errorf("expected under_maintenance, got %s", bed.Status)
	}

	// Maintenance is not reachable twice.
	if _, err := f.service.MarkUnderMaintenance(ctx, f.bedID); !errors.Is(err, ErrBedNotReadyForMaintenance) {
		t.Fatalf("expected ErrBedNotReadyForMaintenance, got %v", err)
	}

	bed, err = f.service.MarkAvailable(ctx, f.bedID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bed.Status != BedAvailable {
		t.Errorf("expected available, got %s", bed.Status)
	}

	if _, err := f.service.MarkAvailable(ctx, f.bedID); !errors.Is(err, ErrBedNotUnderMaintenance) {
		t.Fatalf("expected ErrBedNotUnderMaintenance, got %v", err)
	}
}

func TestBedMaintenance_OccupiedBedRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.service.Hospitalize(ctx, f.patientID, f.bedID, "pneumonia"); err != nil {
		t.Fatalf("admission failed: %v", err)
	}

	if _, err := f.service.MarkUnderMaintenance(ctx, f.bedID); !errors.Is(err, ErrBedNotReadyForMaintenance) {
		t.Fatalf("expected ErrBedNotReadyForMaintenance for occupied bed, got %v", err)
	}
}

func TestBedMaintenance_UnknownBed(t *testing.T) {
	f := newFixture(t)

	if _, err := f.service.MarkUnderMaintenance(context.Background(), uuid.New()); !errors.Is(err, ErrBedNotFound) {
		t.Fatalf("expected ErrBedNotFound, got %v", err)
	}
}

// One patient racing into many available beds: exactly one admission succeeds
// and the patient ends up with exactly one admitted hospitalization.
func TestHospitalize_ConcurrentSamePatient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 8

	beds := make([]uuid.UUID, workers)
	beds[0] = f.bedID
	for i := 1; i < workers; i++ {
		beds[i] = f.addBed(BedAvailable)
	}

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(bedID uuid.UUID) {
			defer wg.Done()
			_, err := f.service.Hospitalize(ctx, f.patientID, bedID, "emergência")
			results <- err
		}(beds[i])
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrAlreadyHospitalized) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful admission, got %d", succeeded)
	}

	var admitted, occupied int
	f.store.mu.Lock()
	for _, h := range f.store.hospitalizations {
		if h.PatientID == f.patientID && h.Status == StatusAdmitted {
			admitted++
		}
	}
	for _, b := range f.store.beds {
		if b.Status == BedOccupied {
			occupied++
		}
	}
	f.store.mu.Unlock()

	if admitted != 1 {
		t.Fatalf("expected exactly 1 admitted hospitalization for the patient, got %d", admitted)
	}
	if occupied != 1 {
		t.Fatalf("expected exactly 1 occupied bed, got %d", occupied)
	}
}

// Many patients racing for one bed: exactly one admission succeeds and the
// bed ends up occupied by exactly one admitted hospitalization.
func TestHospitalize_ConcurrentSameBed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 16

	patients := make([]uuid.UUID, workers)
	for i := range patients {
		patients[i] = uuid.New()
		f.store.AddPatient(patients[i])
	}

	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(patientID uuid.UUID) {
			defer wg.Done()
			_, err := f.service.Hospitalize(ctx, patientID, f.bedID, "emergência")
			results <- err
		}(patients[i])
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrBedNotAvailable) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 1 {
		t.Fatalf("expected exactly 1 successful admission, got %d", succeeded)
	}

	var admitted int
	f.store.mu.Lock()
	for _, h := range f.store.hospitalizations {
		if h.BedID != nil && *h.BedID == f.bedID && h.Status == StatusAdmitted {
			admitted++
		}
	}
	f.store.mu.Unlock()

	if admitted != 1 {
		t.Fatalf("expected exactly 1 admitted hospitalization for the bed, got %d", admitted)
	}
}

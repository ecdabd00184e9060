package hospitalization

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store implementation for unit tests and local
// runs without Postgres.
type MemoryStore struct {
	mu               sync.Mutex
	patients         map[uuid.UUID]struct{}
	beds             map[uuid.UUID]*Bed
	hospitalizations map[uuid.UUID]*Hospitalization
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		patients:         make(map[uuid.UUID]struct{}),
		beds:             make(map[uuid.UUID]*Bed),
		hospitalizations: make(map[uuid.UUID]*Hospitalization),
	}
}

// AddPatient registers a patient id for test setup.
func (m *MemoryStore) AddPatient(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patients[id] = struct{}{}
}

// AddBed registers a bed for test setup.
func (m *MemoryStore) AddBed(b Bed) {
	m.mu.Lock()
	defer m.mu.Unlock()
	bed := b
	m.beds[b.ID] = &bed
}

func (m *MemoryStore) PatientExists(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.patients[id]
	return ok, nil
}

func (m *MemoryStore) GetBedByID(_ context.Context, id uuid.UUID) (*Bed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.beds[id]
	if !ok {
		return nil, ErrBedNotFound
	}
	out := *b
	return &out, nil
}

func (m *MemoryStore) GetActiveHospitalization(_ context.Context, patientID uuid.UUID) (*Hospitalization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, h := range m.hospitalizations {
		if h.PatientID == patientID && h.Status == StatusAdmitted {
			out := *h
			return &out, nil
		}
	}
	return nil, ErrHospitalizationNotFound
}

func (m *MemoryStore) Admit(_ context.Context, h *Hospitalization) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Same guard the pg store gets from the partial unique index on admitted
	// stays: the per-bed lock does not serialize two admissions of one
	// patient into different beds.
	for _, existing := range m.hospitalizations {
		if existing.PatientID == h.PatientID && existing.Status == StatusAdmitted {
			return ErrAlreadyHospitalized
		}
	}

	if h.BedID == nil {
		return ErrBedNotFound
	}
	bed, ok := m.beds[*h.BedID]
	if !ok {
		return ErrBedNotFound
	}
	if bed.Status != BedAvailable {
		return ErrBedNotAvailable
	}

	bed.Status = BedOccupied
	bed.UpdatedAt = time.Now()

	stay := *h
	m.hospitalizations[stay.ID] = &stay
	return nil
}

func (m *MemoryStore) Discharge(_ context.Context, hospitalizationID, bedID uuid.UUID, at time.Time) (*Hospitalization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hospitalizations[hospitalizationID]
	if !ok || h.Status != StatusAdmitted {
		return nil, ErrHospitalizationNotFound
	}
	bed, ok := m.beds[bedID]
	if !ok {
		return nil, ErrBedNotFound
	}
	if bed.Status != BedOccupied {
		return nil, ErrBedNotOccupied
	}

	h.Status = StatusDischarged
	h.DischargeDate = &at
	h.UpdatedAt = time.Now()

	bed.Status = BedAvailable
	bed.UpdatedAt = h.UpdatedAt

	out := *h
	return &out, nil
}

func (m *MemoryStore) UpdateBedStatus(_ context.Context, id uuid.UUID, from, to BedStatus) (*Bed, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.beds[id]
	if !ok || b.Status != from {
		return nil, ErrBedNotFound
	}

	b.Status = to
	b.UpdatedAt = time.Now()
	out := *b
	return &out, nil
}

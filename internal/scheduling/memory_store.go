package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store implementation. It backs unit tests and
// the simulate command; a single mutex gives it the same atomicity the pg
// store gets from transactions.
type MemoryStore struct {
	mu            sync.Mutex
	patients      map[uuid.UUID]Patient
	professionals map[uuid.UUID]Professional
	schedules     map[uuid.UUID]*Schedule // keyed by professional id
	slots         map[uuid.UUID]*ScheduleSlot
	appointments  map[uuid.UUID]*Appointment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		patients:      make(map[uuid.UUID]Patient),
		professionals: make(map[uuid.UUID]Professional),
		schedules:     make(map[uuid.UUID]*Schedule),
		slots:         make(map[uuid.UUID]*ScheduleSlot),
		appointments:  make(map[uuid.UUID]*Appointment),
	}
}

// AddPatient registers a patient for test setup and initialization.
func (m *MemoryStore) AddPatient(p Patient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patients[p.ID] = p
}

// AddProfessional registers a professional for test setup and initialization.
func (m *MemoryStore) AddProfessional(p Professional) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.professionals[p.ID] = p
}

// AddSchedule registers a schedule under its professional.
func (m *MemoryStore) AddSchedule(s Schedule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc := s
	m.schedules[s.ProfessionalID] = &sc
}

func (m *MemoryStore) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (m *MemoryStore) GetProfessionalByID(_ context.Context, id uuid.UUID) (*Professional, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.professionals[id]
	if !ok {
		return nil, ErrProfessionalNotFound
	}
	return &p, nil
}

func (m *MemoryStore) GetScheduleByProfessionalID(_ context.Context, professionalID uuid.UUID) (*Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.schedules[professionalID]
	if !ok {
		return nil, ErrScheduleNotFound
	}

	out := Schedule{
		ID:             s.ID,
		ProfessionalID: s.ProfessionalID,
		Policy:         s.Policy,
	}
	for _, slot := range m.slots {
		if slot.ScheduleID == s.ID && slot.Status.Occupies() {
			out.Slots = append(out.Slots, *slot)
		}
	}
	return &out, nil
}

func (m *MemoryStore) GetSlotByID(_ context.Context, id uuid.UUID) (*ScheduleSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	out := *s
	return &out, nil
}

func (m *MemoryStore) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	out := *a
	return &out, nil
}

func (m *MemoryStore) ReserveSlot(_ context.Context, slot *ScheduleSlot, appt *Appointment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Same re-check the pg store runs inside its transaction.
	chosen := slot.Interval()
	for _, existing := range m.slots {
		if existing.ScheduleID == slot.ScheduleID && existing.Status.Occupies() && chosen.Overlaps(existing.Interval()) {
			return ErrSlotConflict
		}
	}

	s := *slot
	a := *appt
	m.slots[s.ID] = &s
	m.appointments[a.ID] = &a
	return nil
}

func (m *MemoryStore) UpdateAppointmentAndSlotStatus(_ context.Context, id uuid.UUID, from AppointmentStatus, apptStatus AppointmentStatus, slotStatus SlotStatus) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}

	a.Status = apptStatus
	a.UpdatedAt = time.Now()

	if slot, ok := m.slots[a.SlotID]; ok {
		slot.Status = slotStatus
		slot.UpdatedAt = a.UpdatedAt
	}

	out := *a
	return &out, nil
}

func (m *MemoryStore) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}

	a.Status = to
	a.UpdatedAt = time.Now()
	out := *a
	return &out, nil
}

func (m *MemoryStore) UpdateSlotStatus(_ context.Context, id uuid.UUID, from, to SlotStatus) (*ScheduleSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slots[id]
	if !ok || s.Status != from {
		return nil, ErrSlotNotFound
	}

	s.Status = to
	s.UpdatedAt = time.Now()
	out := *s
	return &out, nil
}

func (m *MemoryStore) SetAppointmentDocuments(_ context.Context, id uuid.UUID, certificateID, prescriptionID, recordID *uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.appointments[id]
	if !ok {
		return ErrAppointmentNotFound
	}

	if certificateID != nil {
		a.CertificateID = certificateID
	}
	if prescriptionID != nil {
		a.PrescriptionID = prescriptionID
	}
	if recordID != nil {
		a.RecordID = recordID
	}
	a.UpdatedAt = time.Now()
	return nil
}

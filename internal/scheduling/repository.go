package scheduling

import (
	"context"

	"github.com/google/uuid"
)

// Store contains all persistence interactions needed by the booking and
// lifecycle services. Implementations must make each write method atomic for
// the aggregates it touches.
type Store interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetProfessionalByID(ctx context.Context, id uuid.UUID) (*Professional, error)

	// GetScheduleByProfessionalID loads the policy, its weekly windows and
	// every live (reserved or completed) slot.
	GetScheduleByProfessionalID(ctx context.Context, professionalID uuid.UUID) (*Schedule, error)

	GetSlotByID(ctx context.Context, id uuid.UUID) (*ScheduleSlot, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// ReserveSlot persists the reserved slot and its confirmed appointment as
	// one unit. It re-checks the slot interval against live slots inside the
	// same transaction and returns ErrSlotConflict on any overlap, so two
	// concurrent bookings can never both commit.
	ReserveSlot(ctx context.Context, slot *ScheduleSlot, appt *Appointment) error

	// UpdateAppointmentAndSlotStatus writes both statuses in one unit,
	// guarded by the current appointment status. Returns
	// ErrAppointmentNotFound when no appointment matches id+from.
	UpdateAppointmentAndSlotStatus(ctx context.Context, id uuid.UUID, from AppointmentStatus, apptStatus AppointmentStatus, slotStatus SlotStatus) (*Appointment, error)

	// Compare-and-set transitions used by the completion path, where the
	// slot write must happen strictly after the appointment write.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error)
	UpdateSlotStatus(ctx context.Context, id uuid.UUID, from, to SlotStatus) (*ScheduleSlot, error)

	// SetAppointmentDocuments records the ids of documents issued at
	// completion. Nil pointers leave the column untouched.
	SetAppointmentDocuments(ctx context.Context, id uuid.UUID, certificateID, prescriptionID, recordID *uuid.UUID) error
}

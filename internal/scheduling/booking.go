package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/thetheqs/sghss-scheduling/internal/notification"
	redisclient "github.com/thetheqs/sghss-scheduling/internal/redis"
)

const lockScopeSchedule = "schedule"

// BookingService coordinates slot reservation: it re-derives policy validity
// for the chosen slot, re-checks conflicts against live state under a
// per-schedule lock, and persists slot plus appointment as one unit.
type BookingService struct {
	store    Store
	locker   redisclient.Locker
	notifier notification.Notifier
	log      zerolog.Logger
}

func NewBookingService(store Store, locker redisclient.Locker, notifier notification.Notifier, log zerolog.Logger) *BookingService {
	return &BookingService{
		store:    store,
		locker:   locker,
		notifier: notifier,
		log:      log,
	}
}

type BookingRequest struct {
	ProfessionalID uuid.UUID
	PatientID      uuid.UUID
	Start          time.Time
	End            time.Time
	Type           AppointmentType
	Description    string
}

// AvailableSlots generates the bookable candidates for a professional over
// [from, to), removing intervals already taken by reserved or completed
// slots. The result is advisory; Schedule re-validates at booking time.
func (s *BookingService) AvailableSlots(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]ScheduleSlot, error) {
	schedule, err := s.store.GetScheduleByProfessionalID(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	slots, err := GenerateAvailableSlots(schedule.Policy, schedule.OccupiedIntervals(), from, to)
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// Schedule books the chosen slot for the patient. Every precondition is a
// hard, typed failure; re-submitting an already booked slot fails with
// ErrSlotConflict rather than silently succeeding.
func (s *BookingService) Schedule(ctx context.Context, req BookingRequest) (*Appointment, error) {
	if _, err := s.store.GetPatientByID(ctx, req.PatientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	schedule, err := s.store.GetScheduleByProfessionalID(ctx, req.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	if !fitsPolicy(schedule.Policy, req.Start, req.End) {
		return nil, ErrOutsidePolicy
	}

	var created *Appointment

	err = s.locker.WithLock(ctx, lockScopeSchedule, schedule.ID, func(lockCtx context.Context) error {
		// Inside the critical section re-load the live slots and re-check
		// for conflicts. The generated candidate list may be stale by now.
		live, err := s.store.GetScheduleByProfessionalID(lockCtx, req.ProfessionalID)
		if err != nil {
			return fmt.Errorf("reload schedule: %w", err)
		}

		chosen := Interval{Start: req.Start, End: req.End}
		if overlapsAny(chosen, live.OccupiedIntervals()) {
			return ErrSlotConflict
		}

		now := time.Now()
		slot := &ScheduleSlot{
			ID:         uuid.New(),
			ScheduleID: schedule.ID,
			StartTime:  req.Start,
			EndTime:    req.End,
			Status:     SlotReserved,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		appt := &Appointment{
			ID:             uuid.New(),
			SlotID:         slot.ID,
			PatientID:      req.PatientID,
			ProfessionalID: req.ProfessionalID,
			StartTime:      req.Start,
			EndTime:        req.End,
			Status:         StatusConfirmed,
			Type:           req.Type,
			Description:    req.Description,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if req.Type == TypeTeleconsultation {
			link := fmt.Sprintf("/teleconsultation/%s", appt.ID)
			appt.Link = &link
		}

		if err := s.store.ReserveSlot(lockCtx, slot, appt); err != nil {
			return fmt.Errorf("reserve slot: %w", err)
		}

		created = appt
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrScheduleBusy
		}
		return nil, err
	}

	s.notify(ctx, created.PatientID, fmt.Sprintf(
		"Consulta agendada para %s.", created.StartTime.Format("02/01/2006 15:04")))

	return created, nil
}

// notify is fire-and-forget: a delivery failure never rolls back a booking.
func (s *BookingService) notify(ctx context.Context, patientID uuid.UUID, message string) {
	if err := s.notifier.Notify(ctx, patientID, notification.ChannelApp, message); err != nil {
		s.log.Warn().Err(err).
			Str("patient_id", patientID.String()).
			Msg("failed to notify patient")
	}
}

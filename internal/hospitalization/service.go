package hospitalization

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/thetheqs/sghss-scheduling/internal/redis"
)

const lockScopeBed = "bed"

// Service drives the bed state machine: Available ⇄ UnderMaintenance and
// Available → Occupied → Available via admission and discharge. The
// availability check and the occupancy write for one bed always run inside
// the same per-bed critical section.
type Service struct {
	store  Store
	locker redisclient.Locker
	log    zerolog.Logger
}

func NewService(store Store, locker redisclient.Locker, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		locker: locker,
		log:    log,
	}
}

// Hospitalize admits the patient into the bed, creating an active
// hospitalization and marking the bed occupied as one unit.
func (s *Service) Hospitalize(ctx context.Context, patientID, bedID uuid.UUID, reason string) (*Hospitalization, error) {
	ok, err := s.store.PatientExists(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("check patient: %w", err)
	}
	if !ok {
		return nil, ErrPatientNotFound
	}

	if _, err := s.store.GetBedByID(ctx, bedID); err != nil {
		return nil, err
	}

	var created *Hospitalization

	err = s.locker.WithLock(ctx, lockScopeBed, bedID, func(lockCtx context.Context) error {
		// Re-read inside the critical section: the bed may have been taken
		// between the first load and lock acquisition.
		bed, err := s.store.GetBedByID(lockCtx, bedID)
		if err != nil {
			return err
		}
		if bed.Status != BedAvailable {
			return ErrBedNotAvailable
		}

		_, err = s.store.GetActiveHospitalization(lockCtx, patientID)
		if err == nil {
			return ErrAlreadyHospitalized
		}
		if !errors.Is(err, ErrHospitalizationNotFound) {
			return fmt.Errorf("check active hospitalization: %w", err)
		}

		now := time.Now()
		h := &Hospitalization{
			ID:            uuid.New(),
			PatientID:     patientID,
			BedID:         &bedID,
			AdmissionDate: now,
			Reason:        reason,
			Status:        StatusAdmitted,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := s.store.Admit(lockCtx, h); err != nil {
			return fmt.Errorf("admit patient: %w", err)
		}

		created = h
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrBedBusy
		}
		return nil, err
	}

	return created, nil
}

// Discharge closes the patient's active hospitalization and frees its bed.
// The bed-status checks are defensive: under correct operation an admitted
// hospitalization always references an occupied bed.
func (s *Service) Discharge(ctx context.Context, patientID uuid.UUID) (*Hospitalization, error) {
	ok, err := s.store.PatientExists(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("check patient: %w", err)
	}
	if !ok {
		return nil, ErrPatientNotFound
	}

	active, err := s.store.GetActiveHospitalization(ctx, patientID)
	if err != nil {
		if errors.Is(err, ErrHospitalizationNotFound) {
			return nil, ErrNoActiveHospitalization
		}
		return nil, fmt.Errorf("load active hospitalization: %w", err)
	}

	if active.BedID == nil {
		return nil, ErrHospitalizationWithoutBed
	}
	bedID := *active.BedID

	var discharged *Hospitalization

	err = s.locker.WithLock(ctx, lockScopeBed, bedID, func(lockCtx context.Context) error {
		bed, err := s.store.GetBedByID(lockCtx, bedID)
		if err != nil {
			return err
		}
		if bed.Status != BedOccupied {
			return ErrBedNotOccupied
		}

		h, err := s.store.Discharge(lockCtx, active.ID, bedID, time.Now())
		if err != nil {
			return fmt.Errorf("discharge patient: %w", err)
		}

		discharged = h
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrBedBusy
		}
		return nil, err
	}

	return discharged, nil
}

// MarkUnderMaintenance takes an available bed out of service.
func (s *Service) MarkUnderMaintenance(ctx context.Context, bedID uuid.UUID) (*Bed, error) {
	return s.transitionBed(ctx, bedID, BedAvailable, BedUnderMaintenance, ErrBedNotReadyForMaintenance)
}

// MarkAvailable returns a bed from maintenance to service.
func (s *Service) MarkAvailable(ctx context.Context, bedID uuid.UUID) (*Bed, error) {
	return s.transitionBed(ctx, bedID, BedUnderMaintenance, BedAvailable, ErrBedNotUnderMaintenance)
}

func (s *Service) transitionBed(ctx context.Context, bedID uuid.UUID, from, to BedStatus, wrongState error) (*Bed, error) {
	if _, err := s.store.GetBedByID(ctx, bedID); err != nil {
		return nil, err
	}

	var updated *Bed

	err := s.locker.WithLock(ctx, lockScopeBed, bedID, func(lockCtx context.Context) error {
		bed, err := s.store.UpdateBedStatus(lockCtx, bedID, from, to)
		if err != nil {
			// The bed exists, so a compare-and-set miss means wrong state.
			if errors.Is(err, ErrBedNotFound) {
				return wrongState
			}
			return fmt.Errorf("update bed status: %w", err)
		}
		updated = bed
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrBedBusy
		}
		return nil, err
	}

	return updated, nil
}

package scheduling

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/thetheqs/sghss-scheduling/internal/document"
	"github.com/thetheqs/sghss-scheduling/internal/notification"
)

// Issuers groups the three independent document workflows invoked at
// completion. Any of them may be nil when the deployment does not support
// that document kind.
type Issuers struct {
	Certificate   document.Issuer
	Prescription  document.Issuer
	MedicalRecord document.Issuer
}

// LifecycleService drives appointments and their slots through cancellation
// and completion. Appointment and slot status never diverge: both are written
// by the same operation, never by independent public calls.
type LifecycleService struct {
	store    Store
	issuers  Issuers
	notifier notification.Notifier
	log      zerolog.Logger
}

func NewLifecycleService(store Store, issuers Issuers, notifier notification.Notifier, log zerolog.Logger) *LifecycleService {
	return &LifecycleService{
		store:    store,
		issuers:  issuers,
		notifier: notifier,
		log:      log,
	}
}

// UpdateStatus overwrites the appointment/slot status pair, permitted only
// while the appointment is still confirmed. The caller chooses the paired
// target states; the cancellation path passes (canceled, canceled).
func (s *LifecycleService) UpdateStatus(ctx context.Context, id uuid.UUID, apptStatus AppointmentStatus, slotStatus SlotStatus) (*Appointment, error) {
	appt, err := s.store.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status.Terminal() {
		return nil, ErrAppointmentTerminal
	}

	updated, err := s.store.UpdateAppointmentAndSlotStatus(ctx, id, StatusConfirmed, apptStatus, slotStatus)
	if err != nil {
		// A concurrent transition won the compare-and-set.
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrAppointmentTerminal
		}
		return nil, fmt.Errorf("update status: %w", err)
	}

	s.notify(ctx, updated.PatientID, fmt.Sprintf(
		"O status da sua consulta de %s foi atualizado.", updated.StartTime.Format("02/01/2006 15:04")))

	return updated, nil
}

// DocumentDetails carries the free-text content for one requested document.
type DocumentDetails struct {
	Details string
}

type CompletionRequest struct {
	Certificate   *DocumentDetails
	Prescription  *DocumentDetails
	MedicalRecord *DocumentDetails
}

// DocumentFailure reports one child workflow that failed without aborting
// the completion.
type DocumentFailure struct {
	Kind document.Kind
	Err  error
}

type CompletionResult struct {
	AppointmentID  uuid.UUID
	SlotID         uuid.UUID
	CertificateID  *uuid.UUID
	PrescriptionID *uuid.UUID
	RecordID       *uuid.UUID
	Failures       []DocumentFailure
}

// Complete transitions a confirmed appointment to completed, then its slot,
// then issues whatever documents were requested. The completion itself is the
// atomic unit; document issuance is best-effort per document.
func (s *LifecycleService) Complete(ctx context.Context, id uuid.UUID, req CompletionRequest) (*CompletionResult, error) {
	appt, err := s.store.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusConfirmed {
		return nil, ErrNotConfirmed
	}

	// Loaded before any write: a failure here must not leave the appointment
	// half-completed.
	professional, err := s.store.GetProfessionalByID(ctx, appt.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("load professional: %w", err)
	}

	appt, err = s.store.UpdateAppointmentStatus(ctx, id, StatusConfirmed, StatusCompleted)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, ErrNotConfirmed
		}
		return nil, fmt.Errorf("complete appointment: %w", err)
	}

	// The slot transition happens strictly after the appointment one.
	slot, err := s.store.UpdateSlotStatus(ctx, appt.SlotID, SlotReserved, SlotCompleted)
	if err != nil {
		return nil, fmt.Errorf("complete slot: %w", err)
	}

	result := &CompletionResult{
		AppointmentID: appt.ID,
		SlotID:        slot.ID,
	}

	issue := func(kind document.Kind, issuer document.Issuer, details *DocumentDetails) *uuid.UUID {
		if details == nil {
			return nil
		}
		if issuer == nil {
			result.Failures = append(result.Failures, DocumentFailure{
				Kind: kind,
				Err:  fmt.Errorf("no issuer configured for %s", kind),
			})
			return nil
		}
		docID, err := issuer.Issue(ctx, document.IssueRequest{
			PatientID:      appt.PatientID,
			ProfessionalID: appt.ProfessionalID,
			HealthUnitID:   professional.HealthUnitID,
			AppointmentID:  appt.ID,
			Details:        details.Details,
		})
		if err != nil {
			s.log.Warn().Err(err).
				Str("appointment_id", appt.ID.String()).
				Str("kind", string(kind)).
				Msg("document issuance failed")
			result.Failures = append(result.Failures, DocumentFailure{Kind: kind, Err: err})
			return nil
		}
		return &docID
	}

	result.CertificateID = issue(document.KindCertificate, s.issuers.Certificate, req.Certificate)
	result.PrescriptionID = issue(document.KindPrescription, s.issuers.Prescription, req.Prescription)
	result.RecordID = issue(document.KindMedicalRecord, s.issuers.MedicalRecord, req.MedicalRecord)

	if result.CertificateID != nil || result.PrescriptionID != nil || result.RecordID != nil {
		if err := s.store.SetAppointmentDocuments(ctx, appt.ID, result.CertificateID, result.PrescriptionID, result.RecordID); err != nil {
			s.log.Warn().Err(err).
				Str("appointment_id", appt.ID.String()).
				Msg("failed to record document references")
		}
	}

	s.notify(ctx, appt.PatientID, fmt.Sprintf(
		"Sua consulta de %s foi concluída.", appt.StartTime.Format("02/01/2006 15:04")))

	return result, nil
}

// AppointmentLink returns the teleconsultation link, restricted to the
// appointment's own patient.
func (s *LifecycleService) AppointmentLink(ctx context.Context, id, callerPatientID uuid.UUID) (string, error) {
	appt, err := s.store.GetAppointmentByID(ctx, id)
	if err != nil {
		return "", err
	}
	if appt.PatientID != callerPatientID {
		return "", ErrLinkForbidden
	}
	if appt.Link == nil {
		return "", ErrNoLink
	}
	return *appt.Link, nil
}

func (s *LifecycleService) notify(ctx context.Context, patientID uuid.UUID, message string) {
	if err := s.notifier.Notify(ctx, patientID, notification.ChannelApp, message); err != nil {
		s.log.Warn().Err(err).
			Str("patient_id", patientID.String()).
			Msg("failed to notify patient")
	}
}

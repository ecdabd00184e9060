package scheduling

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/thetheqs/sghss-scheduling/internal/document"
)

type lifecycleFixture struct {
	*bookingFixture
	lifecycle    *LifecycleService
	certificates *document.MemoryIssuer
	prescription *document.MemoryIssuer
	records      *document.MemoryIssuer
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()

	bf := newBookingFixture(t)

	f := &lifecycleFixture{
		bookingFixture: bf,
		certificates:   document.NewMemoryIssuer(document.KindCertificate),
		prescription:   document.NewMemoryIssuer(document.KindPrescription),
		records:        document.NewMemoryIssuer(document.KindMedicalRecord),
	}
	f.lifecycle = NewLifecycleService(bf.store, Issuers{
		Certificate:   f.certificates,
		Prescription:  f.prescription,
		MedicalRecord: f.records,
	}, bf.notifier, zerolog.Nop())

	return f
}

func (f *lifecycleFixture) book(t *testing.T) *Appointment {
	t.Helper()
	appt, err := f.booking.Schedule(context.Background(), f.request(at(monday, 8, 0), at(monday, 8, 30)))
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	return appt
}

func TestComplete_NoDocuments(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	appt := f.book(t)

	result, err := f.lifecycle.Complete(ctx, appt.ID, CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.CertificateID != nil || result.PrescriptionID != nil || result.RecordID != nil {
		t.Error("expected no document ids when none requested")
	}
	if len(result.Failures) != 0 {
		t.Errorf("expected no failures, got %v", result.Failures)
	}

	got, _ := f.store.GetAppointmentByID(ctx, appt.ID)
	if got.Status != StatusCompleted {
		t.Errorf("expected completed appointment, got %s", got.Status)
	}
	slot, _ := f.store.GetSlotByID(ctx, appt.SlotID)
	if slot.Status != SlotCompleted {
		t.Errorf("expected completed slot, got %s", slot.Status)
	}

	// Completing again must fail: completed is terminal.
	if _, err := f.lifecycle.Complete(ctx, appt.ID, CompletionRequest{}); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed on second completion, got %v", err)
	}
}

func TestComplete_WithAllDocuments(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	appt := f.book(t)

	result, err := f.lifecycle.Complete(ctx, appt.ID, CompletionRequest{
		Certificate:   &DocumentDetails{Details: "Afastamento de 2 dias"},
		Prescription:  &DocumentDetails{Details: "Dipirona 500mg"},
		MedicalRecord: &DocumentDetails{Details: "Paciente estável"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.CertificateID == nil || result.PrescriptionID == nil || result.RecordID == nil {
		t.Fatal("expected all three document ids")
	}

	req, ok := f.certificates.Issued(*result.CertificateID)
	if !ok {
		t.Fatal("certificate not recorded by issuer")
	}
	if req.PatientID != appt.PatientID || req.AppointmentID != appt.ID {
		t.Error("certificate issued with wrong references")
	}

	got, _ := f.store.GetAppointmentByID(ctx, appt.ID)
	if got.CertificateID == nil || *got.CertificateID != *result.CertificateID {
		t.Error("certificate id not recorded on appointment")
	}
}

func TestComplete_DocumentFailureIsIsolated(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	appt := f.book(t)

	f.prescription.FailWith = errors.New("signature service down")

	result, err := f.lifecycle.Complete(ctx, appt.ID, CompletionRequest{
		Certificate:  &DocumentDetails{Details: "Afastamento"},
		Prescription: &DocumentDetails{Details: "Dipirona"},
	})
	if err != nil {
		t.Fatalf("completion must not fail on document error: %v", err)
	}

	if result.CertificateID == nil {
		t.Error("certificate should still be issued")
	}
	if result.PrescriptionID != nil {
		t.Error("failed prescription must not return an id")
	}
	if len(result.Failures) != 1 || result.Failures[0].Kind != document.KindPrescription {
		t.Fatalf("expected one prescription failure, got %v", result.Failures)
	}

	// The appointment itself still completed.
	got, _ := f.store.GetAppointmentByID(ctx, appt.ID)
	if got.Status != StatusCompleted {
		t.Errorf("expected completed appointment, got %s", got.Status)
	}
}

func TestComplete_ProfessionalLoadFailureLeavesAppointmentConfirmed(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	appt := f.book(t)

	f.store.mu.Lock()
	professional := f.store.professionals[appt.ProfessionalID]
	delete(f.store.professionals, appt.ProfessionalID)
	f.store.mu.Unlock()

	if _, err := f.lifecycle.Complete(ctx, appt.ID, CompletionRequest{}); err == nil {
		t.Fatal("expected completion to fail when the professional cannot be loaded")
	}

	// Nothing committed: the appointment is still confirmed and the slot
	// still reserved.
	got, _ := f.store.GetAppointmentByID(ctx, appt.ID)
	if got.Status != StatusConfirmed {
		t.Fatalf("expected confirmed appointment after failed completion, got %s", got.Status)
	}
	slot, _ := f.store.GetSlotByID(ctx, appt.SlotID)
	if slot.Status != SlotReserved {
		t.Fatalf("expected reserved slot after failed completion, got %s", slot.Status)
	}

	// A retry after the failure is resolved completes normally.
	f.store.AddProfessional(professional)
	if _, err := f.lifecycle.Complete(ctx, appt.ID, CompletionRequest{}); err != nil {
		t.Fatalf("retry after restoring professional failed: %v", err)
	}
}

func TestComplete_UnknownAppointment(t *testing.T) {
	f := newLifecycleFixture(t)

	_, err := f.lifecycle.Complete(context.Background(), uuid.New(), CompletionRequest{})
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestComplete_CanceledAppointment(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	appt := f.book(t)

	if _, err := f.lifecycle.UpdateStatus(ctx, appt.ID, StatusCanceled, SlotCanceled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	if _, err := f.lifecycle.Complete(ctx, appt.ID, CompletionRequest{}); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
}

func TestUpdateStatus_CancelFreesInterval(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	appt := f.book(t)

	updated, err := f.lifecycle.UpdateStatus(ctx, appt.ID, StatusCanceled, SlotCanceled)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusCanceled {
		t.Errorf("expected canceled appointment, got %s", updated.Status)
	}

	slot, _ := f.store.GetSlotByID(ctx, appt.SlotID)
	if slot.Status != SlotCanceled {
		t.Errorf("expected canceled slot, got %s", slot.Status)
	}

	// The interval is bookable again.
	if _, err := f.booking.Schedule(ctx, f.request(at(monday, 8, 0), at(monday, 8, 30))); err != nil {
		t.Fatalf("rebooking canceled interval failed: %v", err)
	}
}

func TestUpdateStatus_TerminalIsFinal(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	appt := f.book(t)

	if _, err := f.lifecycle.UpdateStatus(ctx, appt.ID, StatusCanceled, SlotCanceled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	_, err := f.lifecycle.UpdateStatus(ctx, appt.ID, StatusConfirmed, SlotReserved)
	if !errors.Is(err, ErrAppointmentTerminal) {
		t.Fatalf("expected ErrAppointmentTerminal, got %v", err)
	}
}

func TestAppointmentLink_OwnPatientOnly(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	req := f.request(at(monday, 8, 0), at(monday, 8, 30))
	req.Type = TypeTeleconsultation
	appt, err := f.booking.Schedule(ctx, req)
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}

	link, err := f.lifecycle.AppointmentLink(ctx, appt.ID, f.patientID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if link == "" {
		t.Fatal("expected non-empty link")
	}

	if _, err := f.lifecycle.AppointmentLink(ctx, appt.ID, uuid.New()); !errors.Is(err, ErrLinkForbidden) {
		t.Fatalf("expected ErrLinkForbidden for other caller, got %v", err)
	}
}

func TestAppointmentLink_NoLinkForInPerson(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()
	appt := f.book(t)

	if _, err := f.lifecycle.AppointmentLink(ctx, appt.ID, f.patientID); !errors.Is(err, ErrNoLink) {
		t.Fatalf("expected ErrNoLink, got %v", err)
	}
}

// The lifecycle service must work with a real locker-free store path too;
// exercise the state pairing invariant over a mixed sequence.
func TestStatePairing_Invariant(t *testing.T) {
	f := newLifecycleFixture(t)
	ctx := context.Background()

	first := f.book(t)
	second, err := f.booking.Schedule(ctx, f.request(at(monday, 9, 0), at(monday, 9, 30)))
	if err != nil {
		t.Fatalf("second booking failed: %v", err)
	}

	if _, err := f.lifecycle.Complete(ctx, first.ID, CompletionRequest{}); err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if _, err := f.lifecycle.UpdateStatus(ctx, second.ID, StatusCanceled, SlotCanceled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	pairs := map[AppointmentStatus]SlotStatus{
		StatusCompleted: SlotCompleted,
		StatusCanceled:  SlotCanceled,
	}
	for _, id := range []uuid.UUID{first.ID, second.ID} {
		appt, _ := f.store.GetAppointmentByID(ctx, id)
		slot, _ := f.store.GetSlotByID(ctx, appt.SlotID)
		if want, ok := pairs[appt.Status]; ok && slot.Status != want {
			t.Errorf("appointment %s is %s but slot is %s", id, appt.Status, slot.Status)
		}
	}
}

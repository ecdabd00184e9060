package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var email *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Email = email
	return &p, nil
}

func scanProfessional(row pgx.Row) (*Professional, error) {
	var p Professional
	var specialty *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&specialty,
		&p.HealthUnitID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfessionalNotFound
		}
		return nil, err
	}

	p.Specialty = specialty
	return &p, nil
}

func scanSlot(row pgx.Row) (*ScheduleSlot, error) {
	var s ScheduleSlot

	err := row.Scan(
		&s.ID,
		&s.ScheduleID,
		&s.StartTime,
		&s.EndTime,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	return &s, nil
}

const appointmentColumns = `id, slot_id, patient_id, professional_id, start_time, end_time,
	status, type, description, link, certificate_id, prescription_id, record_id,
	created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.SlotID,
		&a.PatientID,
		&a.ProfessionalID,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.Type,
		&a.Description,
		&a.Link,
		&a.CertificateID,
		&a.PrescriptionID,
		&a.RecordID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

// Interface methods

func (r *PgStore) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgStore) GetProfessionalByID(ctx context.Context, id uuid.UUID) (*Professional, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialty, health_unit_id, created_at, updated_at
		FROM professionals
		WHERE id = $1
	`, id)
	return scanProfessional(row)
}

func (r *PgStore) GetScheduleByProfessionalID(ctx context.Context, professionalID uuid.UUID) (*Schedule, error) {
	var s Schedule

	err := r.pool.QueryRow(ctx, `
		SELECT id, professional_id, duration_minutes, timezone
		FROM schedules
		WHERE professional_id = $1
	`, professionalID).Scan(&s.ID, &s.ProfessionalID, &s.Policy.DurationMinutes, &s.Policy.Timezone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	windows, err := r.loadWindows(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("load weekly windows: %w", err)
	}
	s.Policy.Windows = windows

	slots, err := r.loadLiveSlots(ctx, s.ID)
	if err != nil {
		return nil, fmt.Errorf("load live slots: %w", err)
	}
	s.Slots = slots

	return &s, nil
}

func (r *PgStore) loadWindows(ctx context.Context, scheduleID uuid.UUID) ([]WeeklyWindow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT weekday, start_time, end_time
		FROM weekly_windows
		WHERE schedule_id = $1
		ORDER BY weekday, start_time
	`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []WeeklyWindow
	for rows.Next() {
		var weekday int
		var start, end string
		if err := rows.Scan(&weekday, &start, &end); err != nil {
			return nil, err
		}

		w := WeeklyWindow{Weekday: time.Weekday(weekday)}
		if w.Start, err = ParseTimeOfDay(start); err != nil {
			return nil, err
		}
		if w.End, err = ParseTimeOfDay(end); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}

	return windows, rows.Err()
}

func (r *PgStore) loadLiveSlots(ctx context.Context, scheduleID uuid.UUID) ([]ScheduleSlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, schedule_id, start_time, end_time, status, created_at, updated_at
		FROM schedule_slots
		WHERE schedule_id = $1
		  AND status IN ('reserved', 'completed')
		ORDER BY start_time
	`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []ScheduleSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		slots = append(slots, *s)
	}

	return slots, rows.Err()
}

func (r *PgStore) GetSlotByID(ctx context.Context, id uuid.UUID) (*ScheduleSlot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, schedule_id, start_time, end_time, status, created_at, updated_at
		FROM schedule_slots
		WHERE id = $1
	`, id)
	return scanSlot(row)
}

func (r *PgStore) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

// ReserveSlot locks the schedule row, re-checks the interval against live
// slots and inserts slot plus appointment, all in one transaction. This is
// the final guard against two concurrent bookings committing overlapping
// reservations.
func (r *PgStore) ReserveSlot(ctx context.Context, slot *ScheduleSlot, appt *Appointment) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		SELECT 1 FROM schedules WHERE id = $1 FOR UPDATE
	`, slot.ScheduleID); err != nil {
		return fmt.Errorf("lock schedule: %w", err)
	}

	var conflict bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM schedule_slots
			WHERE schedule_id = $1
			  AND status IN ('reserved', 'completed')
			  AND start_time < $3
			  AND end_time > $2
		)
	`, slot.ScheduleID, slot.StartTime, slot.EndTime).Scan(&conflict)
	if err != nil {
		return fmt.Errorf("check conflicts: %w", err)
	}
	if conflict {
		return ErrSlotConflict
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO schedule_slots (id, schedule_id, start_time, end_time, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`, slot.ID, slot.ScheduleID, slot.StartTime, slot.EndTime, slot.Status); err != nil {
		return fmt.Errorf("insert slot: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO appointments (id, slot_id, patient_id, professional_id, start_time, end_time,
			status, type, description, link, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())
	`, appt.ID, appt.SlotID, appt.PatientID, appt.ProfessionalID, appt.StartTime, appt.EndTime,
		appt.Status, appt.Type, appt.Description, appt.Link); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *PgStore) UpdateAppointmentAndSlotStatus(ctx context.Context, id uuid.UUID, from AppointmentStatus, apptStatus AppointmentStatus, slotStatus SlotStatus) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, apptStatus, from)

	appt, err := scanAppointment(row)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE schedule_slots
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
	`, appt.SlotID, slotStatus); err != nil {
		return nil, fmt.Errorf("update slot status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return appt, nil
}

func (r *PgStore) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to AppointmentStatus) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)

	return scanAppointment(row)
}

func (r *PgStore) UpdateSlotStatus(ctx context.Context, id uuid.UUID, from, to SlotStatus) (*ScheduleSlot, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE schedule_slots
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING id, schedule_id, start_time, end_time, status, created_at, updated_at
	`, id, to, from)

	return scanSlot(row)
}

func (r *PgStore) SetAppointmentDocuments(ctx context.Context, id uuid.UUID, certificateID, prescriptionID, recordID *uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE appointments
		SET certificate_id  = COALESCE($2, certificate_id),
		    prescription_id = COALESCE($3, prescription_id),
		    record_id       = COALESCE($4, record_id),
		    updated_at      = now()
		WHERE id = $1
	`, id, certificateID, prescriptionID, recordID)
	if err != nil {
		return fmt.Errorf("set appointment documents: %w", err)
	}
	return nil
}

package hospitalization

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func scanBed(row pgx.Row) (*Bed, error) {
	var b Bed

	err := row.Scan(
		&b.ID,
		&b.BedNumber,
		&b.Type,
		&b.HealthUnitID,
		&b.Status,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBedNotFound
		}
		return nil, err
	}

	return &b, nil
}

func scanHospitalization(row pgx.Row) (*Hospitalization, error) {
	var h Hospitalization

	err := row.Scan(
		&h.ID,
		&h.PatientID,
		&h.BedID,
		&h.AdmissionDate,
		&h.DischargeDate,
		&h.Reason,
		&h.Status,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrHospitalizationNotFound
		}
		return nil, err
	}

	return &h, nil
}

func (r *PgStore) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM patients WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PgStore) GetBedByID(ctx context.Context, id uuid.UUID) (*Bed, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, bed_number, type, health_unit_id, status, created_at, updated_at
		FROM beds
		WHERE id = $1
	`, id)
	return scanBed(row)
}

func (r *PgStore) GetActiveHospitalization(ctx context.Context, patientID uuid.UUID) (*Hospitalization, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, patient_id, bed_id, admission_date, discharge_date, reason, status, created_at, updated_at
		FROM hospitalizations
		WHERE patient_id = $1 AND status = 'admitted'
	`, patientID)
	return scanHospitalization(row)
}

// Admit inserts the hospitalization and flips the bed to occupied in one
// transaction, guarded by the bed still being available.
func (r *PgStore) Admit(ctx context.Context, h *Hospitalization) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE beds
		SET status = 'occupied',
		    updated_at = now()
		WHERE id = $1
		  AND status = 'available'
	`, h.BedID)
	if err != nil {
		return fmt.Errorf("occupy bed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBedNotAvailable
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO hospitalizations (id, patient_id, bed_id, admission_date, discharge_date, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULL, $5, $6, now(), now())
	`, h.ID, h.PatientID, h.BedID, h.AdmissionDate, h.Reason, h.Status); err != nil {
		// The partial unique index on admitted stays catches a concurrent
		// admission of the same patient into another bed.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrAlreadyHospitalized
		}
		return fmt.Errorf("insert hospitalization: %w", err)
	}

	return tx.Commit(ctx)
}

// Discharge closes the hospitalization and frees its bed in one transaction.
func (r *PgStore) Discharge(ctx context.Context, hospitalizationID, bedID uuid.UUID, at time.Time) (*Hospitalization, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE hospitalizations
		SET status = 'discharged',
		    discharge_date = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'admitted'
		RETURNING id, patient_id, bed_id, admission_date, discharge_date, reason, status, created_at, updated_at
	`, hospitalizationID, at)

	h, err := scanHospitalization(row)
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE beds
		SET status = 'available',
		    updated_at = now()
		WHERE id = $1
		  AND status = 'occupied'
	`, bedID)
	if err != nil {
		return nil, fmt.Errorf("free bed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrBedNotOccupied
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

func (r *PgStore) UpdateBedStatus(ctx context.Context, id uuid.UUID, from, to BedStatus) (*Bed, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE beds
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING id, bed_number, type, health_unit_id, status, created_at, updated_at
	`, id, to, from)

	return scanBed(row)
}

package document

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgIssuer stores issued documents in the clinical_documents table, one
// issuer instance per document kind.
type PgIssuer struct {
	pool *pgxpool.Pool
	kind Kind
}

func NewPgIssuer(pool *pgxpool.Pool, kind Kind) *PgIssuer {
	return &PgIssuer{pool: pool, kind: kind}
}

func (i *PgIssuer) Issue(ctx context.Context, req IssueRequest) (uuid.UUID, error) {
	id := uuid.New()

	_, err := i.pool.Exec(ctx, `
		INSERT INTO clinical_documents (id, kind, patient_id, professional_id, health_unit_id, appointment_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
	`, id, string(i.kind), req.PatientID, req.ProfessionalID, req.HealthUnitID, req.AppointmentID, req.Details)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert %s: %w", i.kind, err)
	}

	return id, nil
}

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/thetheqs/sghss-scheduling/internal/db"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	unitID, err := seedHealthUnit(context.Background(), pool)
	if err != nil {
		log.Fatalf("seed health unit: %v", err)
	}
	if err := seedProfessionals(context.Background(), pool, unitID, 50); err != nil {
		log.Fatalf("seed professionals: %v", err)
	}
	if err := seedPatients(context.Background(), pool, 2000); err != nil {
		log.Fatalf("seed patients: %v", err)
	}
	if err := seedBeds(context.Background(), pool, unitID, 120); err != nil {
		log.Fatalf("seed beds: %v", err)
	}

	log.Println("seed complete")
}

func seedHealthUnit(ctx context.Context, pool *pgxpool.Pool) (uuid.UUID, error) {
	id := uuid.New()
	_, err := pool.Exec(ctx, `
		INSERT INTO health_units (id, name, created_at, updated_at)
		VALUES ($1, $2, now(), now())
	`, id, gofakeit.Company()+" Hospital")
	if err != nil {
		return uuid.Nil, err
	}
	log.Println("health unit seeded")
	return id, nil
}

func seedProfessionals(ctx context.Context, pool *pgxpool.Pool, unitID uuid.UUID, count int) error {
	log.Printf("seeding %d professionals", count)

	specialties := []string{
		"Dermatologia",
		"Cardiologia",
		"Clínica Geral",
		"Ortopedia",
		"Endocrinologia",
		"Neurologia",
		"Pediatria",
		"Psiquiatria",
		"Oftalmologia",
		"Otorrinolaringologia",
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		id := uuid.New()
		name := gofakeit.Name()
		spec := specialties[gofakeit.Number(0, len(specialties)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO professionals (id, name, specialty, health_unit_id, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, id, name, spec, unitID)
		if err != nil {
			return err
		}

		if err := seedSchedule(ctx, tx, id); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("professionals seeded")
	return nil
}

// seedSchedule gives each professional a weekday-morning policy with a
// randomized afternoon block.
func seedSchedule(ctx context.Context, tx pgx.Tx, professionalID uuid.UUID) error {
	scheduleID := uuid.New()
	duration := []int{20, 30, 60}[gofakeit.Number(0, 2)]

	_, err := tx.Exec(ctx, `
		INSERT INTO schedules (id, professional_id, duration_minutes, timezone)
		VALUES ($1, $2, $3, 'America/Sao_Paulo')
	`, scheduleID, professionalID, duration)
	if err != nil {
		return err
	}

	for weekday := 1; weekday <= 5; weekday++ {
		_, err := tx.Exec(ctx, `
			INSERT INTO weekly_windows (id, schedule_id, weekday, start_time, end_time)
			VALUES ($1, $2, $3, '08:00', '12:00')
		`, uuid.New(), scheduleID, weekday)
		if err != nil {
			return err
		}

		if gofakeit.Bool() {
			_, err := tx.Exec(ctx, `
				INSERT INTO weekly_windows (id, schedule_id, weekday, start_time, end_time)
				VALUES ($1, $2, $3, '14:00', '18:00')
			`, uuid.New(), scheduleID, weekday)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	const batchSize = 500

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			id := uuid.New()
			name := gofakeit.Name()
			email := gofakeit.Email()

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (id, name, email, created_at, updated_at)
				VALUES ($1, $2, $3, now(), now())
			`, id, name, email)
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return nil
}

func seedBeds(ctx context.Context, pool *pgxpool.Pool, unitID uuid.UUID, count int) error {
	log.Printf("seeding %d beds", count)

	types := []string{"enfermaria", "uti", "isolamento"}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		_, err := tx.Exec(ctx, `
			INSERT INTO beds (id, bed_number, type, health_unit_id, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 'available', now(), now())
		`, uuid.New(), fmt.Sprintf("%03d", i+1), types[gofakeit.Number(0, len(types)-1)], unitID)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("beds seeded")
	return nil
}

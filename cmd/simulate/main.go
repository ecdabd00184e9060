// Command simulate fires concurrent booking attempts at a small set of
// generated slots and reports how many succeeded, conflicted or failed. With
// more workers than slots, the success count must equal the slot count and
// every other attempt must end in a conflict; anything else means the
// non-overlap guarantee is broken.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/thetheqs/sghss-scheduling/internal/notification"
	redisclient "github.com/thetheqs/sghss-scheduling/internal/redis"
	"github.com/thetheqs/sghss-scheduling/internal/scheduling"
)

type metrics struct {
	total     int64
	success   int64
	conflict  int64
	failed    int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (m *metrics) record(latency time.Duration, err error) {
	atomic.AddInt64(&m.total, 1)
	switch {
	case err == nil:
		atomic.AddInt64(&m.success, 1)
	case errors.Is(err, scheduling.ErrSlotConflict):
		atomic.AddInt64(&m.conflict, 1)
	default:
		atomic.AddInt64(&m.failed, 1)
	}

	m.mu.Lock()
	m.latencies = append(m.latencies, latency)
	m.mu.Unlock()
}

func (m *metrics) p95() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(m.latencies))
	copy(sorted, m.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := len(sorted) * 95 / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func main() {
	workers := flag.Int("workers", 200, "concurrent booking workers")
	patients := flag.Int("patients", 50, "patients competing for slots")
	flag.Parse()

	log.SetFlags(log.LstdFlags)
	gofakeit.Seed(time.Now().UnixNano())

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	store := scheduling.NewMemoryStore()
	booking := scheduling.NewBookingService(store, redisclient.NoopLocker{}, notification.NewLogNotifier(logger), logger)

	professionalID := uuid.New()
	store.AddProfessional(scheduling.Professional{ID: professionalID, Name: gofakeit.Name(), HealthUnitID: uuid.New()})
	store.AddSchedule(scheduling.Schedule{
		ID:             uuid.New(),
		ProfessionalID: professionalID,
		Policy: scheduling.AvailabilityPolicy{
			DurationMinutes: 30,
			Timezone:        "UTC",
			Windows: []scheduling.WeeklyWindow{
				{Weekday: time.Monday, Start: scheduling.TimeOfDay{Hour: 8}, End: scheduling.TimeOfDay{Hour: 12}},
			},
		},
	})

	patientIDs := make([]uuid.UUID, *patients)
	for i := range patientIDs {
		patientIDs[i] = uuid.New()
		store.AddPatient(scheduling.Patient{ID: patientIDs[i], Name: gofakeit.Name()})
	}

	// Next Monday, full morning window: 8 slots of 30 minutes.
	from := nextMonday(time.Now().UTC())
	to := from.Add(24 * time.Hour)

	slots, err := booking.AvailableSlots(context.Background(), professionalID, from, to)
	if err != nil {
		log.Fatalf("generate slots: %v", err)
	}
	log.Printf("generated %d candidate slots, firing %d workers", len(slots), *workers)

	var m metrics
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			slot := slots[rand.Intn(len(slots))]
			patient := patientIDs[rand.Intn(len(patientIDs))]

			began := time.Now()
			_, err := booking.Schedule(context.Background(), scheduling.BookingRequest{
				ProfessionalID: professionalID,
				PatientID:      patient,
				Start:          slot.StartTime,
				End:            slot.EndTime,
				Type:           scheduling.TypeInPerson,
			})
			m.record(time.Since(began), err)
		}()
	}
	wg.Wait()

	fmt.Printf("\nsimulation finished in %s\n", time.Since(start))
	fmt.Printf("  attempts:  %d\n", m.total)
	fmt.Printf("  booked:    %d (slots: %d)\n", m.success, len(slots))
	fmt.Printf("  conflicts: %d\n", m.conflict)
	fmt.Printf("  failures:  %d\n", m.failed)
	fmt.Printf("  p95:       %s\n", m.p95())

	if int(m.success) > len(slots) {
		log.Fatal("INVARIANT BROKEN: more bookings succeeded than slots exist")
	}
}

func nextMonday(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	for t.Weekday() != time.Monday {
		t = t.AddDate(0, 0, 1)
	}
	return t.AddDate(0, 0, 7)
}

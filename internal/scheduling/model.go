package scheduling

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCanceled  AppointmentStatus = "canceled"
)

// Terminal reports whether no further status transition is permitted.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCanceled
}

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotReserved  SlotStatus = "reserved"
	SlotCompleted SlotStatus = "completed"
	SlotCanceled  SlotStatus = "canceled"
)

// Occupies reports whether a slot in this status blocks its interval for
// new reservations.
func (s SlotStatus) Occupies() bool {
	return s == SlotReserved || s == SlotCompleted
}

type AppointmentType string

const (
	TypeInPerson         AppointmentType = "in_person"
	TypeTeleconsultation AppointmentType = "teleconsultation"
)

// TimeOfDay is a wall-clock time within a single day, minute resolution.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "15:04" formatted strings.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

// On anchors the wall-clock time onto the calendar day of d, in d's location.
func (t TimeOfDay) On(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, 0, 0, d.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// WeeklyWindow is one recurring bookable span. Same-day only, no wraparound
// across midnight.
type WeeklyWindow struct {
	Weekday time.Weekday
	Start   TimeOfDay
	End     TimeOfDay
}

// AvailabilityPolicy governs which times are bookable for one professional's
// schedule: appointment duration plus an owned list of recurring windows.
type AvailabilityPolicy struct {
	DurationMinutes int
	Timezone        string
	Windows         []WeeklyWindow
}

func (p AvailabilityPolicy) Duration() time.Duration {
	return time.Duration(p.DurationMinutes) * time.Minute
}

// Location resolves the policy timezone, falling back to UTC when the tag is
// empty or unknown.
func (p AvailabilityPolicy) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Interval is a half-open [Start, End) time span.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Professional struct {
	ID           uuid.UUID
	Name         string
	Specialty    *string
	HealthUnitID uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ScheduleSlot is a discrete bookable interval. The generator emits them as
// ephemeral candidates (zero ID, status available); a slot is persisted only
// once reserved.
type ScheduleSlot struct {
	ID         uuid.UUID
	ScheduleID uuid.UUID
	StartTime  time.Time
	EndTime    time.Time
	Status     SlotStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (s ScheduleSlot) Interval() Interval {
	return Interval{Start: s.StartTime, End: s.EndTime}
}

// Schedule is one professional's booking aggregate: the availability policy
// plus every live (reserved or completed) slot.
type Schedule struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	Policy         AvailabilityPolicy
	Slots          []ScheduleSlot
}

// OccupiedIntervals returns the intervals of all slots that block new
// reservations, for feeding the generator and the booking conflict check.
func (s *Schedule) OccupiedIntervals() []Interval {
	var out []Interval
	for _, slot := range s.Slots {
		if slot.Status.Occupies() {
			out = append(out, slot.Interval())
		}
	}
	return out
}

type Appointment struct {
	ID             uuid.UUID
	SlotID         uuid.UUID
	PatientID      uuid.UUID
	ProfessionalID uuid.UUID
	StartTime      time.Time
	EndTime        time.Time
	Status         AppointmentStatus
	Type           AppointmentType
	Description    string
	Link           *string
	CertificateID  *uuid.UUID
	PrescriptionID *uuid.UUID
	RecordID       *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

package scheduling

import (
	"sort"
	"time"
)

// GenerateAvailableSlots projects the policy's recurring weekly windows onto
// the concrete [from, to) range and removes every candidate that overlaps an
// occupied interval. Pure computation: the result is advisory and must be
// re-validated at booking time against live state.
//
// For each calendar day in the range (in the policy's timezone), every window
// matching that weekday is walked forward in duration-sized steps from its
// start. A candidate is emitted when it fits entirely inside the window and
// inside [from, to). Candidates never cross window boundaries or midnight.
// The result is ordered by start time ascending.
func GenerateAvailableSlots(policy AvailabilityPolicy, occupied []Interval, from, to time.Time) ([]ScheduleSlot, error) {
	if from.After(to) {
		return nil, ErrInvalidRange
	}
	if policy.DurationMinutes <= 0 || len(policy.Windows) == 0 {
		return nil, nil
	}

	loc := policy.Location()
	duration := policy.Duration()

	from = from.In(loc)
	to = to.In(loc)

	var slots []ScheduleSlot

	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	for day.Before(to) {
		for _, window := range policy.Windows {
			if window.Weekday != day.Weekday() {
				continue
			}

			windowEnd := window.End.On(day)
			for start := window.Start.On(day); !start.Add(duration).After(windowEnd); start = start.Add(duration) {
				end := start.Add(duration)

				if start.Before(from) || end.After(to) {
					continue
				}

				candidate := Interval{Start: start, End: end}
				if overlapsAny(candidate, occupied) {
					continue
				}

				slots = append(slots, ScheduleSlot{
					StartTime: start,
					EndTime:   end,
					Status:    SlotAvailable,
				})
			}
		}
		day = day.AddDate(0, 0, 1)
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})

	return slots, nil
}

func overlapsAny(candidate Interval, occupied []Interval) bool {
	for _, o := range occupied {
		if candidate.Overlaps(o) {
			return true
		}
	}
	return false
}

// fitsPolicy reports whether [start, end) is a slot the policy itself could
// have generated: some window of the right weekday fully contains it and the
// duration matches exactly. The booking coordinator uses this to re-derive
// validity instead of trusting the candidate list.
func fitsPolicy(policy AvailabilityPolicy, start, end time.Time) bool {
	if policy.DurationMinutes <= 0 {
		return false
	}
	if end.Sub(start) != policy.Duration() {
		return false
	}

	loc := policy.Location()
	start = start.In(loc)
	end = end.In(loc)

	for _, window := range policy.Windows {
		if window.Weekday != start.Weekday() {
			continue
		}
		if !start.Before(window.Start.On(start)) && !end.After(window.End.On(start)) {
			return true
		}
	}
	return false
}

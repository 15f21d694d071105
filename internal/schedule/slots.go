// Package schedule derives bookable time slots from a barbershop's opening
// hours, the service duration and the per-shop buffer between appointments.
package schedule

import (
	"fmt"
	"time"
)

const hoursLayout = "15:04"

// Slot is a single bookable interval.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two slots share any time.
func (s Slot) Overlaps(o Slot) bool {
	return s.Start.Before(o.End) && o.Start.Before(s.End)
}

// Slots computes the bookable slots for one day. open and close use the
// 24-hour "HH:MM" form. Consecutive slots are spaced by the service duration
// plus the buffer; a slot is only included when the full service fits before
// closing time.
func Slots(day time.Time, open, close string, service, buffer time.Duration) ([]Slot, error) {
	if service <= 0 {
		return nil, fmt.Errorf("schedule: service duration must be positive")
	}
	if buffer < 0 {
		return nil, fmt.Errorf("schedule: buffer cannot be negative")
	}

	openAt, err := atTime(day, open)
	if err != nil {
		return nil, fmt.Errorf("schedule: invalid opening time %q: %w", open, err)
	}
	closeAt, err := atTime(day, close)
	if err != nil {
		return nil, fmt.Errorf("schedule: invalid closing time %q: %w", close, err)
	}
	if !openAt.Before(closeAt) {
		return nil, fmt.Errorf("schedule: closing time %s is not after opening time %s", close, open)
	}

	var slots []Slot
	step := service + buffer
	for start := openAt; !start.Add(service).After(closeAt); start = start.Add(step) {
		slots = append(slots, Slot{Start: start, End: start.Add(service)})
	}
	return slots, nil
}

func atTime(day time.Time, hhmm string) (time.Time, error) {
	parsed, err := time.Parse(hoursLayout, hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, day.Location()), nil
}

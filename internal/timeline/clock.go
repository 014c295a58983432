// Package timeline places cards on the fixed hour slots of the daily view and
// recomputes their times when one is dropped on another slot.
package timeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay bounds every Clock value.
const MinutesPerDay = 24 * 60

// ErrInvalidClock is returned for anything that is not a valid HH:MM time.
var ErrInvalidClock = errors.New("invalid clock value")

// Clock is a time of day in minutes since midnight, in [0, MinutesPerDay).
type Clock int

// At builds a Clock from hours and minutes, wrapping around midnight.
func At(hour, minute int) Clock {
	return wrap(hour*60 + minute)
}

// ParseClock reads "HH:MM" (or "H:MM") in 24-hour form.
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(mm) != 2 || len(hh) == 0 || len(hh) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return Clock(h*60 + m), nil
}

// ValidClock reports whether s parses as a Clock.
func ValidClock(s string) bool {
	_, err := ParseClock(s)
	return err == nil
}

func (c Clock) Hour() int   { return int(c) / 60 }
func (c Clock) Minute() int { return int(c) % 60 }

// String formats c as zero-padded HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Add returns c shifted by minutes, wrapped into a single day.
func (c Clock) Add(minutes int) Clock {
	return wrap(int(c) + minutes)
}

func wrap(minutes int) Clock {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return Clock(minutes)
}

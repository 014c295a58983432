package timeline

import "fmt"

// Slots is the fixed, evenly spaced set of drop targets of the daily view:
// every Step minutes from First to Last inclusive.
type Slots struct {
	First Clock
	Last  Clock
	Step  int
}

// DefaultSlots is the hourly 08:00 to 19:00 layout.
func DefaultSlots() Slots {
	return HourlySlots(At(8, 0), At(19, 0))
}

// HourlySlots returns one slot per hour between first and last.
func HourlySlots(first, last Clock) Slots {
	return Slots{First: first, Last: last, Step: 60}
}

// FiveMinuteSlots returns one slot every five minutes between first and last.
func FiveMinuteSlots(first, last Clock) Slots {
	return Slots{First: first, Last: last, Step: 5}
}

// Validate checks that the layout describes at least one slot.
func (s Slots) Validate() error {
	if s.Step <= 0 || s.Step > MinutesPerDay {
		return fmt.Errorf("slot step %d out of range", s.Step)
	}
	if s.Last < s.First {
		return fmt.Errorf("slot range %s-%s is reversed", s.First, s.Last)
	}
	return nil
}

// Contains reports whether c is one of the slots.
func (s Slots) Contains(c Clock) bool {
	if s.Step <= 0 || c < s.First || c > s.Last {
		return false
	}
	return int(c-s.First)%s.Step == 0
}

// List returns the slots in order.
func (s Slots) List() []Clock {
	if s.Validate() != nil {
		return nil
	}
	out := make([]Clock, 0, int(s.Last-s.First)/s.Step+1)
	for c := s.First; c <= s.Last; c += Clock(s.Step) {
		out = append(out, c)
	}
	return out
}

// Labels returns the slots formatted as HH:MM.
func (s Slots) Labels() []string {
	list := s.List()
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.String()
	}
	return out
}

// SlotFor returns the slot whose bucket holds c: the last slot at or before
// c. Times before the first slot or past the end of the last bucket have no
// slot.
func (s Slots) SlotFor(c Clock) (Clock, bool) {
	if s.Validate() != nil || c < s.First || int(c) >= int(s.Last)+s.Step {
		return 0, false
	}
	return s.First + Clock(int(c-s.First)/s.Step*s.Step), true
}

package timeline

// Times is the start/end pair of a card as stored: HH:MM strings, End empty
// when the card has no end.
type Times struct {
	Start string `json:"startTime"`
	End   string `json:"endTime,omitempty"`
}

// Reassign computes the times of a card dropped on target. The duration
// between start and end is kept in whole minutes; an end that crosses
// midnight wraps around (modulo 24h) since cards never roll over to another
// day.
//
// A card without an end keeps no end, and a zero-length card stays zero
// length at its new start. ok is false, and cur is returned unchanged, when
// target is not one of slots, when the card already starts there, or when
// its stored times cannot be read.
func Reassign(cur Times, target string, slots Slots) (next Times, ok bool) {
	to, err := ParseClock(target)
	if err != nil || !slots.Contains(to) {
		return cur, false
	}
	from, err := ParseClock(cur.Start)
	if err != nil || from == to {
		return cur, false
	}

	next.Start = to.String()
	if cur.End == "" {
		return next, true
	}

	end, err := ParseClock(cur.End)
	if err != nil {
		return cur, false
	}
	if end == from {
		next.End = next.Start
		return next, true
	}

	next.End = Shift(from, end, to).String()
	return next, true
}

// Shift returns the end of an interval [start, end) moved to begin at
// newStart.
func Shift(start, end, newStart Clock) Clock {
	return newStart.Add(int(end) - int(start))
}

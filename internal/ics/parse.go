// Package ics turns iCalendar text into importable events and cards back
// into iCalendar text.
package ics

import (
	"iter"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

const (
	dateLayout     = "2006-01-02"
	clockLayout    = "15:04"
	icsDateLayout  = "20060102"
	icsStampLayout = "20060102T150405"

	// AllDayStart and AllDayEnd are the clock values given to events that
	// only carry a date.
	AllDayStart = "00:00"
	AllDayEnd   = "23:59"
)

// ParsedEvent is one VEVENT normalized for card creation.
type ParsedEvent struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime,omitempty"`
	ExternalID  string `json:"externalId,omitempty"`
	AllDay      bool   `json:"allDay"`

	// Recurrence is the raw RRULE value, if any. Parse never expands it.
	Recurrence string `json:"recurrence,omitempty"`
}

// Parse returns the future events found in content. Nothing is parsed until
// the sequence is ranged over, and every range starts from the beginning of
// content again.
//
// Parse never fails: lines it cannot read are skipped, events without a
// SUMMARY or a DTSTART are dropped, as are events whose start is strictly
// before now and events still open at the end of input.
func Parse(content string, now time.Time) iter.Seq[ParsedEvent] {
	return func(yield func(ParsedEvent) bool) {
		for ev := range scan(content) {
			if !retained(ev, now) {
				continue
			}
			if !yield(ev) {
				return
			}
		}
	}
}

// ParseAll collects Parse into a slice.
func ParseAll(content string, now time.Time) []ParsedEvent {
	var out []ParsedEvent
	for ev := range Parse(content, now) {
		out = append(out, ev)
	}
	return out
}

// retained reports whether ev is complete and does not start in the past.
func retained(ev ParsedEvent, now time.Time) bool {
	if ev.Title == "" || ev.Date == "" {
		return false
	}
	start, err := time.ParseInLocation(dateLayout+" "+clockLayout, ev.Date+" "+ev.StartTime, now.Location())
	if err != nil {
		return false
	}
	return !start.Before(now)
}

// scan walks the logical lines of content and yields every terminated VEVENT,
// complete or not, with defaults applied. The accumulator lives only inside
// one call.
func scan(content string) iter.Seq[ParsedEvent] {
	return func(yield func(ParsedEvent) bool) {
		var (
			cur     ParsedEvent
			inEvent bool
		)
		for line := range logicalLines(content) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}

			switch {
			case line == "BEGIN:VEVENT":
				cur, inEvent = ParsedEvent{}, true
			case line == "END:VEVENT":
				if !inEvent {
					continue
				}
				ev := cur
				cur, inEvent = ParsedEvent{}, false
				if ev.StartTime == "" {
					ev.StartTime = AllDayStart
				}
				if !yield(ev) {
					return
				}
			case inEvent:
				applyProperty(&cur, line)
			}
		}
	}
}

// applyProperty folds a single KEY[;PARAM=...]:VALUE line into ev.
func applyProperty(ev *ParsedEvent, line string) {
	head, value, ok := strings.Cut(line, ":")
	if !ok {
		return
	}
	key, _, _ := strings.Cut(head, ";")

	switch strings.ToUpper(key) {
	case "SUMMARY":
		ev.Title = unescapeText(value)
	case "DESCRIPTION":
		ev.Description = unescapeText(value)
	case "UID":
		ev.ExternalID = value
	case "RRULE":
		ev.Recurrence = value
	case "DTSTART":
		applyStart(ev, value)
	case "DTEND":
		applyEnd(ev, value)
	}
}

func applyStart(ev *ParsedEvent, value string) {
	if strings.Contains(value, "T") {
		t, ok := parseStamp(value)
		if !ok {
			return
		}
		ev.Date = t.Format(dateLayout)
		ev.StartTime = t.Format(clockLayout)
		ev.AllDay = false
		return
	}

	d, err := time.Parse(icsDateLayout, value)
	if err != nil {
		return
	}
	ev.Date = d.Format(dateLayout)
	ev.StartTime = AllDayStart
	ev.AllDay = true
	if ev.EndTime == "" {
		ev.EndTime = AllDayEnd
	}
}

func applyEnd(ev *ParsedEvent, value string) {
	if strings.Contains(value, "T") {
		t, ok := parseStamp(value)
		if !ok {
			return
		}
		ev.EndTime = t.Format(clockLayout)
		return
	}

	if _, err := time.Parse(icsDateLayout, value); err != nil {
		return
	}
	// An all-day DTEND is exclusive, so the last covered day is the one
	// before it. Only a single day is kept on the card, ending at 23:59.
	ev.EndTime = AllDayEnd
}

// parseStamp reads YYYYMMDDTHHMMSS with an optional trailing Z. The clock
// value is kept as written; no zone conversion happens.
func parseStamp(value string) (time.Time, bool) {
	value = strings.TrimSuffix(value, "Z")
	if len(value) < len(icsStampLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(icsStampLayout, value[:len(icsStampLayout)])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func unescapeText(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return ical.FromText(s)
}

// logicalLines splits content on line breaks and joins folded lines: a
// physical line starting with a space or a tab continues the previous one,
// minus that first character.
func logicalLines(content string) iter.Seq[string] {
	return func(yield func(string) bool) {
		var (
			buf     strings.Builder
			started bool
		)
		rest := content
		for len(rest) > 0 {
			var physical string
			if i := strings.IndexByte(rest, '\n'); i >= 0 {
				physical, rest = rest[:i], rest[i+1:]
			} else {
				physical, rest = rest, ""
			}
			physical = strings.TrimSuffix(physical, "\r")

			if started && len(physical) > 0 && (physical[0] == ' ' || physical[0] == '\t') {
				buf.WriteString(physical[1:])
				continue
			}
			if started && !yield(buf.String()) {
				return
			}
			buf.Reset()
			buf.WriteString(physical)
			started = true
		}
		if started {
			yield(buf.String())
		}
	}
}

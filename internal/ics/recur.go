package ics

import (
	"iter"
	"time"

	"github.com/teambition/rrule-go"
)

// maxOccurrencesPerEvent caps the repetitions yielded for one RRULE.
const maxOccurrencesPerEvent = 500

// maxRecurrenceSteps bounds how many instants of one rule are walked, so a
// SECONDLY rule starting long ago cannot keep the importer busy.
const maxRecurrenceSteps = 100_000

// occurrenceLayout keys an occurrence by its full start, so that sub-daily
// rules give distinct ids within a day.
const occurrenceLayout = "20060102T1504"

// Occurrences yields the repetitions of recurring events that fall within
// [now, now+horizon]. The first instance of a series is not repeated here;
// Parse already yields it when it lies in the future. Each occurrence gets
// the external id "<UID>/<YYYYMMDDTHHMM>" so that re-importing the same file
// skips it.
func Occurrences(content string, now time.Time, horizon time.Duration) iter.Seq[ParsedEvent] {
	return func(yield func(ParsedEvent) bool) {
		if horizon <= 0 {
			return
		}
		for ev := range scan(content) {
			if ev.Recurrence == "" || ev.Title == "" || ev.Date == "" {
				continue
			}
			for occ := range expand(ev, now, horizon) {
				if !yield(occ) {
					return
				}
			}
		}
	}
}

// expand walks the rule lazily and stops at the end of the window, after
// maxOccurrencesPerEvent repetitions or after maxRecurrenceSteps instants,
// whichever comes first.
func expand(ev ParsedEvent, now time.Time, horizon time.Duration) iter.Seq[ParsedEvent] {
	return func(yield func(ParsedEvent) bool) {
		start, err := time.ParseInLocation(dateLayout+" "+clockLayout, ev.Date+" "+ev.StartTime, now.Location())
		if err != nil {
			return
		}
		r, err := rrule.StrToRRule(ev.Recurrence)
		if err != nil {
			return
		}
		r.DTStart(start)

		end := now.Add(horizon)
		next := r.Iterator()
		yielded := 0
		for step := 0; step < maxRecurrenceSteps && yielded < maxOccurrencesPerEvent; step++ {
			t, ok := next()
			if !ok || t.After(end) {
				return
			}
			if t.Before(now) || t.Equal(start) {
				continue
			}

			occ := ev
			occ.Date = t.Format(dateLayout)
			occ.StartTime = t.Format(clockLayout)
			occ.Recurrence = ""
			if ev.ExternalID != "" {
				occ.ExternalID = ev.ExternalID + "/" + t.Format(occurrenceLayout)
			}
			yielded++
			if !yield(occ) {
				return
			}
		}
	}
}

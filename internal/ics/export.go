package ics

import (
	"time"

	ical "github.com/arran4/golang-ical"
)

// ExportEvent is the card shape Export understands.
type ExportEvent struct {
	UID         string
	Title       string
	Description string
	Date        string
	StartTime   string
	EndTime     string
}

// Export renders events as a VCALENDAR. Times are written as floating local
// times, which is how cards store them. A card spanning 00:00 to 23:59 is
// written as an all-day event. Events with an unreadable date are skipped.
func Export(name string, events []ExportEvent, stamp time.Time) string {
	cal := ical.NewCalendarFor("Notrello")
	cal.SetMethod(ical.MethodPublish)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for _, e := range events {
		day, err := time.Parse(dateLayout, e.Date)
		if err != nil {
			continue
		}

		ve := cal.AddEvent(e.UID)
		ve.SetDtStampTime(stamp)
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}

		if e.StartTime == AllDayStart && e.EndTime == AllDayEnd {
			ve.SetAllDayStartAt(day)
			ve.SetAllDayEndAt(day.AddDate(0, 0, 1))
			continue
		}

		start, ok := onDay(day, e.StartTime)
		if !ok {
			start = day
		}
		ve.SetProperty(ical.ComponentPropertyDtStart, start.Format(icsStampLayout))

		if end, ok := onDay(day, e.EndTime); ok {
			if end.Before(start) {
				end = end.AddDate(0, 0, 1)
			}
			ve.SetProperty(ical.ComponentPropertyDtEnd, end.Format(icsStampLayout))
		}
	}

	return cal.Serialize()
}

func onDay(day time.Time, clock string) (time.Time, bool) {
	if clock == "" {
		return time.Time{}, false
	}
	c, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, false
	}
	return day.Add(time.Duration(c.Hour())*time.Hour + time.Duration(c.Minute())*time.Minute), true
}

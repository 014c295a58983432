package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
)

func TestExport(t *testing.T) {
	convey.Convey("Given cards to export", t, func() {
		events := []ExportEvent{
			{UID: "card-1@notrello", Title: "Standup, daily", Date: "2099-03-02", StartTime: "09:00", EndTime: "09:15"},
			{UID: "card-2@notrello", Title: "Conference", Description: "Hall B", Date: "2099-03-03", StartTime: "00:00", EndTime: "23:59"},
			{UID: "card-3@notrello", Title: "Night shift", Date: "2099-03-04", StartTime: "22:00", EndTime: "02:00"},
			{UID: "card-4@notrello", Title: "No date", Date: "someday", StartTime: "10:00"},
		}
		stamp := time.Date(2026, time.October, 17, 8, 0, 0, 0, time.UTC)

		out := Export("My cards", events, stamp)

		convey.Convey("Then a calendar with one VEVENT per dated card is written", func() {
			convey.So(out, convey.ShouldStartWith, "BEGIN:VCALENDAR")
			convey.So(strings.Count(out, "BEGIN:VEVENT"), convey.ShouldEqual, 3)
			convey.So(out, convey.ShouldContainSubstring, "X-WR-CALNAME:My cards")
			convey.So(out, convey.ShouldContainSubstring, "DTSTART;VALUE=DATE:20990303")
			convey.So(out, convey.ShouldContainSubstring, "DTEND:20990305T020000")
		})

		convey.Convey("Then parsing the export gives the cards back", func() {
			parsed := ParseAll(out, testNow)

			convey.So(parsed, convey.ShouldHaveLength, 3)
			convey.So(parsed[0].Title, convey.ShouldEqual, "Standup, daily")
			convey.So(parsed[0].ExternalID, convey.ShouldEqual, "card-1@notrello")
			convey.So(parsed[0].StartTime, convey.ShouldEqual, "09:00")
			convey.So(parsed[0].EndTime, convey.ShouldEqual, "09:15")
			convey.So(parsed[1].AllDay, convey.ShouldBeTrue)
			convey.So(parsed[1].Description, convey.ShouldEqual, "Hall B")
			convey.So(parsed[2].EndTime, convey.ShouldEqual, "02:00")
		})
	})
}

func TestOccurrences(t *testing.T) {
	convey.Convey("Given a recurring event", t, func() {
		content := calendar(
			"BEGIN:VEVENT",
			"UID:yoga@example.com",
			"SUMMARY:Yoga",
			"DTSTART:20261019T180000",
			"DTEND:20261019T190000",
			"RRULE:FREQ=WEEKLY;COUNT=4",
			"END:VEVENT",
		)

		convey.Convey("When the horizon covers the whole series", func() {
			var got []ParsedEvent
			for ev := range Occurrences(content, testNow, 60*24*time.Hour) {
				got = append(got, ev)
			}

			convey.Convey("Then the repetitions after the first are returned", func() {
				convey.So(got, convey.ShouldHaveLength, 3)
				convey.So(got[0].Date, convey.ShouldEqual, "2026-10-26")
				convey.So(got[0].StartTime, convey.ShouldEqual, "18:00")
				convey.So(got[0].EndTime, convey.ShouldEqual, "19:00")
				convey.So(got[0].ExternalID, convey.ShouldEqual, "yoga@example.com/20261026T1800")
				convey.So(got[0].Recurrence, convey.ShouldBeEmpty)
				convey.So(got[2].Date, convey.ShouldEqual, "2026-11-09")
			})

			convey.Convey("Then Parse still yields only the first instance", func() {
				parsed := ParseAll(content, testNow)
				convey.So(parsed, convey.ShouldHaveLength, 1)
				convey.So(parsed[0].Recurrence, convey.ShouldEqual, "FREQ=WEEKLY;COUNT=4")
			})
		})

		convey.Convey("When the horizon is short", func() {
			var got []ParsedEvent
			for ev := range Occurrences(content, testNow, 10*24*time.Hour) {
				got = append(got, ev)
			}

			convey.Convey("Then only occurrences inside it are returned", func() {
				convey.So(got, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When expansion is disabled", func() {
			var got []ParsedEvent
			for ev := range Occurrences(content, testNow, 0) {
				got = append(got, ev)
			}

			convey.Convey("Then nothing is returned", func() {
				convey.So(got, convey.ShouldBeEmpty)
			})
		})
	})

	convey.Convey("Given an hourly event repeating within one day", t, func() {
		content := calendar(
			"BEGIN:VEVENT",
			"UID:standup",
			"SUMMARY:Standup",
			"DTSTART:20261020T090000",
			"RRULE:FREQ=HOURLY;COUNT=3",
			"END:VEVENT",
		)

		var got []ParsedEvent
		for ev := range Occurrences(content, testNow, 30*24*time.Hour) {
			got = append(got, ev)
		}

		convey.Convey("Then each repetition has its own external id", func() {
			convey.So(got, convey.ShouldHaveLength, 2)
			convey.So(got[0].Date, convey.ShouldEqual, got[1].Date)
			convey.So(got[0].ExternalID, convey.ShouldEqual, "standup/20261020T1000")
			convey.So(got[1].ExternalID, convey.ShouldEqual, "standup/20261020T1100")
		})
	})

	convey.Convey("Given a rule firing every second", t, func() {
		event := func(start string) string {
			return calendar(
				"BEGIN:VEVENT",
				"UID:tick",
				"SUMMARY:Tick",
				"DTSTART:"+start,
				"RRULE:FREQ=SECONDLY",
				"END:VEVENT",
			)
		}

		convey.Convey("When it starts inside the window", func() {
			var got []ParsedEvent
			for ev := range Occurrences(event("20261017T110000"), testNow, 30*24*time.Hour) {
				got = append(got, ev)
			}

			convey.Convey("Then expansion stops at the per-event cap", func() {
				convey.So(got, convey.ShouldHaveLength, maxOccurrencesPerEvent)
				convey.So(got[0].ExternalID, convey.ShouldEqual, "tick/20261017T1100")
			})
		})

		convey.Convey("When it started years before the window", func() {
			n := 0
			for range Occurrences(event("20200101T000000"), testNow, 30*24*time.Hour) {
				n++
			}

			convey.Convey("Then the walk gives up before reaching it", func() {
				convey.So(n, convey.ShouldEqual, 0)
			})
		})
	})
}

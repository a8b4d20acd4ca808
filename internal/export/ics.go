// Package export serializes a computed schedule as an iCalendar feed so the
// timetable can be subscribed to from external calendar apps.
package export

import (
	"fmt"

	ical "github.com/arran4/golang-ical"

	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/model"
)

// ICS renders the day columns of a schedule as an iCalendar document. Month
// views carry no event detail, only presence flags, so they serialize to an
// empty calendar.
func ICS(s model.Schedule) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//mzut//schedule//PL")

	for _, day := range s.Days {
		for _, ev := range day.Events {
			uid := fmt.Sprintf("%s-%s@plan.zut.edu.pl",
				ev.Start.Format("20060102T150405"), ev.Category)

			ve := cal.AddEvent(uid)
			ve.SetDtStampTime(ev.Start)
			ve.SetStartAt(ev.Start)
			ve.SetEndAt(ev.End)
			ve.SetSummary(summary(ev.Event))
			if ev.Room != "" {
				ve.SetLocation(ev.Room)
			}
			if ev.Teacher != "" {
				ve.SetDescription(ev.Teacher)
			}
		}
	}

	return cal.Serialize()
}

func summary(ev model.Event) string {
	if ev.Subject == "" {
		return ev.CategoryLabel
	}
	return ev.Subject + " (" + ev.CategoryLabel + ")"
}

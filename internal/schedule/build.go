package schedule

import (
	"fmt"
	"sort"
	"time"

	appLog "github.com/Kejlo523/mzut-v2-pwa-sub000/internal/log"
	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/model"
)

// Query identifies one schedule request.
type Query struct {
	Mode   ViewMode
	Anchor string // YYYY-MM-DD; empty or malformed falls back to today
	Album  string // student album number
	Search string // free-text teacher/room filter, used instead of Album when set
}

// ID returns the query identity string used in diagnostics and cache keys.
func (q Query) ID() string {
	if q.Search != "" {
		return "search:" + q.Search
	}
	if q.Album != "" {
		return "album:" + q.Album
	}
	return ""
}

// polishMonths holds nominative month names for the month-view header.
var polishMonths = [...]string{
	"Styczeń", "Luty", "Marzec", "Kwiecień", "Maj", "Czerwiec",
	"Lipiec", "Sierpień", "Wrzesień", "Październik", "Listopad", "Grudzień",
}

// Build turns raw upstream records into the final schedule for one view
// request. It is pure computation over already-retrieved data: deterministic
// for identical inputs, no I/O, no shared state. Malformed records are
// dropped during normalization; an empty raw list yields a well-formed empty
// schedule for the requested range.
func Build(q Query, raw []model.RawOccurrence, periods []model.SessionPeriod, now time.Time, loc *time.Location) model.Schedule {
	if loc == nil {
		loc = time.Local
	}
	r := Resolve(q.Mode, q.Anchor, now, loc)

	// Normalize, classify, and bucket by calendar day. Only events inside
	// the visible window land in a bucket; day mode fetches its whole week
	// but displays a single day.
	byDay := make(map[string][]model.Event)
	dropped := 0
	for _, rec := range raw {
		ev, ok := Normalize(rec, loc)
		if !ok {
			dropped++
			continue
		}
		day := midnight(ev.Start)
		if day.Before(r.Start) || day.After(r.End) {
			continue
		}
		key := day.Format(DateLayout)
		byDay[key] = append(byDay[key], ev)
	}
	if dropped > 0 {
		appLog.Debug("schedule: dropped records missing time bounds", "dropped", dropped, "total", len(raw))
	}

	datesWithData := make([]string, 0, len(byDay))
	for d := range byDay {
		datesWithData = append(datesWithData, d)
	}
	sort.Strings(datesWithData)

	s := model.Schedule{
		Mode:       string(q.Mode),
		Anchor:     r.Current,
		RangeStart: r.Start,
		RangeEnd:   r.End,
		Prev:       r.Prev,
		Next:       r.Next,
		Today:      midnight(now.In(loc)),
		Header:     headerLabel(q.Mode, r),
		Sessions:   periods,
		Diagnostics: model.Diagnostics{
			RawCount:      len(raw),
			DatesWithData: datesWithData,
			QueryID:       q.ID(),
		},
	}

	if q.Mode == ModeMonth {
		present := make(map[string]bool, len(byDay))
		for d := range byDay {
			present[d] = true
		}
		s.Grid = MonthGrid(r.Current, present)
		return s
	}

	// Day/week: one column per visible day, laid out independently.
	for day := r.Start; !day.After(r.End); day = day.AddDate(0, 0, 1) {
		s.Days = append(s.Days, model.DayColumn{
			Date:   day,
			Events: Layout(byDay[day.Format(DateLayout)]),
		})
	}
	return s
}

func headerLabel(mode ViewMode, r Range) string {
	switch mode {
	case ModeDay:
		return r.Current.Format("02.01.2006")
	case ModeMonth:
		return fmt.Sprintf("%s %d", polishMonths[r.Current.Month()-1], r.Current.Year())
	default:
		return r.Start.Format("02.01.2006") + " – " + r.End.Format("02.01.2006")
	}
}

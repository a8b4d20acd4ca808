package schedule

import (
	"time"

	appLog "github.com/Kejlo523/mzut-v2-pwa-sub000/internal/log"
)

// ViewMode selects how wide a schedule view is.
type ViewMode string

const (
	ModeDay   ViewMode = "day"
	ModeWeek  ViewMode = "week"
	ModeMonth ViewMode = "month"
)

// DateLayout is the canonical calendar-date form used at every boundary.
const DateLayout = "2006-01-02"

// Range describes the resolved window for one view request.
//
// Start/End bound what is displayed; FetchStart/FetchEnd bound what is
// retrieved upstream. In day mode the fetch window is widened to the whole
// containing week so that day-to-day navigation is served from cache. This
// widening is a tunable, not a correctness requirement; if narrowed, only
// perceived responsiveness changes.
type Range struct {
	Current time.Time
	Start   time.Time
	End     time.Time

	FetchStart time.Time
	FetchEnd   time.Time

	Prev time.Time
	Next time.Time
}

// ParseMode maps a request string onto a ViewMode, defaulting to week.
func ParseMode(s string) ViewMode {
	switch ViewMode(s) {
	case ModeDay, ModeWeek, ModeMonth:
		return ViewMode(s)
	default:
		return ModeWeek
	}
}

// Resolve computes the visible and fetch windows for mode around anchor.
//
// anchor is a YYYY-MM-DD string; an unparseable or empty anchor falls back to
// now's date. This is a deliberate defensive default, not a failure: the UI
// always gets a renderable window. now is injected so callers (and tests)
// control what "today" means.
func Resolve(mode ViewMode, anchor string, now time.Time, loc *time.Location) Range {
	if loc == nil {
		loc = time.Local
	}

	current, err := time.ParseInLocation(DateLayout, anchor, loc)
	if err != nil {
		if anchor != "" {
			appLog.Debug("range: unparseable anchor, using today", "anchor", anchor)
		}
		current = now.In(loc)
	}
	// Time-of-day is ignored; normalize to local midnight.
	current = midnight(current)

	var r Range
	r.Current = current

	switch mode {
	case ModeDay:
		r.Start = current
		r.End = current
		r.Prev = current.AddDate(0, 0, -1)
		r.Next = current.AddDate(0, 0, 1)
		// Fetch the containing week for fast day-to-day navigation.
		r.FetchStart = startOfWeek(current)
		r.FetchEnd = r.FetchStart.AddDate(0, 0, 6)

	case ModeMonth:
		r.Start = time.Date(current.Year(), current.Month(), 1, 0, 0, 0, 0, loc)
		// Day 0 of the next month is the last day of this one.
		r.End = time.Date(current.Year(), current.Month()+1, 0, 0, 0, 0, 0, loc)
		r.Prev = time.Date(current.Year(), current.Month()-1, 1, 0, 0, 0, 0, loc)
		r.Next = time.Date(current.Year(), current.Month()+1, 1, 0, 0, 0, 0, loc)
		r.FetchStart = r.Start
		r.FetchEnd = r.End

	default: // ModeWeek
		r.Start = startOfWeek(current)
		r.End = r.Start.AddDate(0, 0, 6)
		r.Prev = current.AddDate(0, 0, -7)
		r.Next = current.AddDate(0, 0, 7)
		r.FetchStart = r.Start
		r.FetchEnd = r.End
	}

	return r
}

// startOfWeek returns the Monday on or before t. Weeks start on Monday;
// Sunday maps to 7 (ISO numbering).
func startOfWeek(t time.Time) time.Time {
	dow := int(t.Weekday())
	if dow == 0 {
		dow = 7
	}
	return midnight(t.AddDate(0, 0, -(dow - 1)))
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

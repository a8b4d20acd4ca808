package schedule

import (
	"strings"
	"time"

	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/model"
)

// MinEventDuration is the floor applied to every event so that degenerate
// zero-length occurrences stay visible in the layout.
const MinEventDuration = 15 * time.Minute

// missingRoom is rendered when the upstream record carries no room.
const missingRoom = "—"

// occurrenceTimeLayouts are the timestamp forms the plan service has been
// observed to emit. Values carry no zone designator and are interpreted in
// the display timezone.
var occurrenceTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Normalize converts one raw upstream record into a canonical Event.
//
// Records missing a parseable start or end are rejected (ok == false) and
// simply dropped; upstream feeds are expected to contain some incomplete
// rows, so this is not an error. All field aliases are coalesced here, once;
// nothing downstream re-inspects the raw record.
func Normalize(raw model.RawOccurrence, loc *time.Location) (model.Event, bool) {
	if loc == nil {
		loc = time.Local
	}

	start, ok := parseOccurrenceTime(raw.Start, loc)
	if !ok {
		return model.Event{}, false
	}
	end, ok := parseOccurrenceTime(raw.End, loc)
	if !ok {
		return model.Event{}, false
	}

	// Keep degenerate events visible.
	if end.Before(start.Add(MinEventDuration)) {
		end = start.Add(MinEventDuration)
	}

	ev := model.Event{
		Subject:  coalesce(raw.Subject, raw.Title),
		Room:     coalesce(raw.Room, missingRoom),
		Teacher:  coalesce(raw.WorkerTitle, raw.Worker),
		Group:    coalesce(raw.GroupName, raw.TokName),
		GroupKey: coalesce(raw.Subject, raw.Title),
		Start:    start,
		End:      end,
	}
	ev.Category, ev.CategoryLabel = Classify(raw)

	return ev, true
}

func parseOccurrenceTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range occurrenceTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// coalesce returns the first non-empty candidate.
func coalesce(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}

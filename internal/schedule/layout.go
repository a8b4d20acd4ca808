package schedule

import (
	"sort"

	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/model"
)

// Layout assigns each of a single day's events a horizontal slot so that
// temporally overlapping events render side by side instead of on top of
// each other.
//
// The algorithm is interval-graph greedy coloring by sweep:
//
//  1. Sort events by start minute, then end minute, then subject.
//  2. Sweep the sorted list into maximal overlapping clusters: a cluster's
//     end bound extends while the next event starts strictly before it.
//  3. Within a cluster, greedily assign each event to the first column whose
//     last occupant ends at or before the event's start; open a new column
//     when none qualifies. This uses the minimum possible number of columns
//     for the cluster.
//  4. Every event in a cluster gets width 100/columnCount and left offset
//     columnIndex * width.
//
// Columns are cluster-local: disjoint clusters reuse indexes with different
// widths and never share column state.
func Layout(events []model.Event) []model.PositionedEvent {
	if len(events) == 0 {
		return []model.PositionedEvent{}
	}

	out := make([]model.PositionedEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, model.PositionedEvent{
			Event:    ev,
			StartMin: ev.StartMinute(),
			EndMin:   ev.EndMinute(),
			LeftPct:  0,
			WidthPct: 100,
		})
	}
	if len(out) == 1 {
		return out
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartMin != out[j].StartMin {
			return out[i].StartMin < out[j].StartMin
		}
		if out[i].EndMin != out[j].EndMin {
			return out[i].EndMin < out[j].EndMin
		}
		return out[i].Subject < out[j].Subject
	})

	// Partition into maximal overlapping clusters and lay each one out.
	clusterStart := 0
	clusterEnd := out[0].EndMin
	for i := 1; i < len(out); i++ {
		if out[i].StartMin < clusterEnd {
			if out[i].EndMin > clusterEnd {
				clusterEnd = out[i].EndMin
			}
			continue
		}
		layoutCluster(out[clusterStart:i])
		clusterStart = i
		clusterEnd = out[i].EndMin
	}
	layoutCluster(out[clusterStart:])

	return out
}

// layoutCluster performs greedy column assignment over one cluster of
// transitively overlapping events, already sorted by start time.
func layoutCluster(cluster []model.PositionedEvent) {
	if len(cluster) == 1 {
		cluster[0].LeftPct = 0
		cluster[0].WidthPct = 100
		return
	}

	// columnFreeAt[i] is the minute at which column i becomes reusable.
	columnFreeAt := make([]int, 0, len(cluster))
	columnOf := make([]int, len(cluster))

	for i, ev := range cluster {
		assigned := -1
		for col, freeAt := range columnFreeAt {
			if freeAt <= ev.StartMin {
				assigned = col
				break
			}
		}
		if assigned == -1 {
			columnFreeAt = append(columnFreeAt, ev.EndMin)
			assigned = len(columnFreeAt) - 1
		} else {
			columnFreeAt[assigned] = ev.EndMin
		}
		columnOf[i] = assigned
	}

	width := 100.0 / float64(len(columnFreeAt))
	for i := range cluster {
		cluster[i].WidthPct = width
		cluster[i].LeftPct = float64(columnOf[i]) * width
	}
}

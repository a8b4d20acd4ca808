package schedule

import (
	"time"

	"github.com/Kejlo523/mzut-v2-pwa-sub000/internal/model"
)

// monthGridCells is the fixed cell count of the month view: 6 full weeks of
// 7 days, regardless of how many weeks the month actually needs.
const monthGridCells = 42

// MonthGrid builds the 6x7 month view around current, Monday-first,
// beginning on the Monday on or before the 1st of current's month. present
// holds YYYY-MM-DD dates that have at least one event. Leading and trailing
// cells from adjacent months are included to fill the grid.
func MonthGrid(current time.Time, present map[string]bool) []model.MonthCell {
	loc := current.Location()
	first := time.Date(current.Year(), current.Month(), 1, 0, 0, 0, 0, loc)
	day := startOfWeek(first)

	cells := make([]model.MonthCell, 0, monthGridCells)
	for i := 0; i < monthGridCells; i++ {
		cells = append(cells, model.MonthCell{
			Date:      day,
			HasEvents: present[day.Format(DateLayout)],
			InMonth:   day.Month() == current.Month(),
		})
		day = day.AddDate(0, 0, 1)
	}
	return cells
}

package activity

import "time"

const (
	// GridWeeks is the fixed number of week columns in a year grid. 53
	// columns of 7 days cover any year regardless of which weekday Jan 1
	// falls on.
	GridWeeks   = 53
	DaysPerWeek = 7
	GridCells   = GridWeeks * DaysPerWeek
)

// OutOfYearBand marks grid padding before Jan 1 or after Dec 31. Padding
// cells are semantically distinct from zero-activity in-year days and must
// never render with the band-0 color.
const OutOfYearBand = -1

// Cell is one day slot in the year grid.
type Cell struct {
	Date      Day             `json:"date"`
	InYear    bool            `json:"in_year"`
	Band      int             `json:"band"`
	Aggregate *DailyAggregate `json:"aggregate,omitempty"`
}

// YearGrid is the Sunday-aligned 53x7 heatmap layout for one target year.
type YearGrid struct {
	Year  int                          `json:"year"`
	Start Day                          `json:"start"`
	Weeks [GridWeeks][DaysPerWeek]Cell `json:"weeks"`
}

// GridRange returns the first and last civil dates a year's grid covers,
// so callers can fetch exactly the records the grid can display.
func GridRange(year int) (Day, Day) {
	start := gridStart(year)
	end := start.AddDate(0, 0, GridCells-1)
	return Day(start.Format(dayLayout)), Day(end.Format(dayLayout))
}

// gridStart is the Sunday on or before January 1 of the target year.
func gridStart(year int) time.Time {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return jan1.AddDate(0, 0, -int(jan1.Weekday()))
}

// BuildYearGrid lays out the full-year grid and binds each in-year cell to
// its daily aggregate. Cells are walked column-major: down each week
// column, then across. Out-of-year cells carry no aggregate and the
// placeholder band.
func BuildYearGrid(year int, days map[Day]*DailyAggregate) *YearGrid {
	start := gridStart(year)
	grid := &YearGrid{Year: year, Start: Day(start.Format(dayLayout))}

	for week := 0; week < GridWeeks; week++ {
		for dow := 0; dow < DaysPerWeek; dow++ {
			t := start.AddDate(0, 0, week*DaysPerWeek+dow)
			cell := Cell{Date: Day(t.Format(dayLayout))}
			if t.Year() == year {
				cell.InYear = true
				if agg, ok := days[cell.Date]; ok {
					cell.Aggregate = agg
					cell.Band = Band(agg.Hours)
				}
			} else {
				cell.Band = OutOfYearBand
			}
			grid.Weeks[week][dow] = cell
		}
	}
	return grid
}

// Band maps an hour-equivalent score to its fixed intensity band. The
// ladder is part of the engine contract so every heatmap render agrees:
// 0, (0,1), [1,3), [3,6), [6,12), and 12 map to bands 0 through 5.
func Band(hours float64) int {
	switch {
	case hours <= 0:
		return 0
	case hours < 1:
		return 1
	case hours < 3:
		return 2
	case hours < 6:
		return 3
	case hours < MaxDailyHours:
		return 4
	default:
		return 5
	}
}

package activity

// StreakStats holds the longest and current runs of consecutive active days.
type StreakStats struct {
	Longest int `json:"longest"`
	Current int `json:"current"`
}

// Streaks scans dateRange in chronological order and computes streaks over
// the supplied aggregates. A day is active iff its aggregate count is
// positive. Current counts backward from the last day of the range and is
// zero as soon as that day is inactive; an empty or all-inactive range
// yields zero stats.
func Streaks(days map[Day]*DailyAggregate, dateRange []Day) StreakStats {
	var stats StreakStats

	run := 0
	for _, d := range dateRange {
		if active(days, d) {
			run++
			if run > stats.Longest {
				stats.Longest = run
			}
		} else {
			run = 0
		}
	}

	for i := len(dateRange) - 1; i >= 0; i-- {
		if !active(days, dateRange[i]) {
			break
		}
		stats.Current++
	}

	return stats
}

func active(days map[Day]*DailyAggregate, d Day) bool {
	agg, ok := days[d]
	return ok && agg.Count > 0
}

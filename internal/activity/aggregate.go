package activity

import (
	"math"

	"garagelog/internal/core"
)

// MaxDailyHours caps the hour-equivalent score for a single day. A day of
// documented work never shows more than a 12-hour workday, no matter how
// many records land on it.
const MaxDailyHours = 12.0

// Hour-equivalent weighting. These constants are the single source of
// truth for intensity scoring; the calendar, the legend, and the day
// receipt all derive from the same numbers.
const (
	hoursPerCount          = 0.25 // vehicle edits, annotations, anything unlisted
	hoursPerVerification   = 0.5
	imageSessionBaseline   = 0.25 // flat session-touch cost of any upload batch
	imagesPerHour          = 20.0
	maxImageHoursPerRecord = 9.0
)

// DailyAggregate is the derived activity for one civil date.
type DailyAggregate struct {
	Date  Day                            `json:"date"`
	Count int                            `json:"count"`
	Hours float64                        `json:"hours"`
	Types map[core.ContributionType]bool `json:"types"`
}

// Aggregate groups records by canonical date and derives each day's count
// and hour-equivalent intensity. The result is rebuilt from scratch on
// every call; no record is ever dropped, so the summed counts across all
// days equal the summed counts across all input records.
func Aggregate(records []core.ContributionRecord) map[Day]*DailyAggregate {
	days := make(map[Day]*DailyAggregate)
	for _, rec := range records {
		date := Normalize(rec.RawDate)
		agg, ok := days[date]
		if !ok {
			agg = &DailyAggregate{Date: date, Types: make(map[core.ContributionType]bool)}
			days[date] = agg
		}
		agg.Types[rec.Type] = true
		agg.Count += rec.Count
		agg.Hours += hourContribution(rec.Type, rec.Count)
		// Clamp after every record, not once at the end: a day already at
		// the ceiling stays there even as later records keep folding in.
		if agg.Hours > MaxDailyHours {
			agg.Hours = MaxDailyHours
		}
	}
	return days
}

func hourContribution(t core.ContributionType, count int) float64 {
	switch t {
	case core.TypeImageUpload:
		return math.Min(maxImageHoursPerRecord, float64(count)/imagesPerHour) + imageSessionBaseline
	case core.TypeVerification:
		return hoursPerVerification * float64(count)
	default:
		return hoursPerCount * float64(count)
	}
}

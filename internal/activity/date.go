// Package activity is the contribution-activity engine: date normalization,
// per-day aggregation, streaks, the year heatmap grid, and day receipts.
//
// Every function here is a pure, stateless computation over in-memory
// records. The same records feed the calendar, the legend, and the day
// receipt, so each call recomputes from scratch; there is no cached state
// inside the engine that could let the views disagree.
package activity

import (
	"regexp"
	"strings"
	"time"
)

// Day is a timezone-stable civil date key in YYYY-MM-DD form. Every record
// maps to exactly one Day regardless of the time-of-day or zone its raw
// date carries.
type Day string

const dayLayout = "2006-01-02"

var canonicalDay = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Layouts tried for dates that are neither canonical nor ISO datetimes.
// Parsed in local time so the civil date matches the user's calendar.
var parseLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// Normalize canonicalizes an arbitrary raw date string to a Day.
// It never fails: blank or unparseable input falls back to today's date.
// That fallback is inherited behavior, not a silent bug; see DESIGN.md.
func Normalize(raw string) Day {
	return NormalizeAt(raw, time.Now())
}

// NormalizeAt is Normalize with an explicit clock, for deterministic tests.
//
// An ISO datetime is split on the literal 'T' and the date part is taken
// verbatim. Re-parsing through time.Time here would convert to UTC and
// shift the calendar day for users west of UTC on events logged late in
// the evening, which is exactly the bug this engine exists to avoid.
func NormalizeAt(raw string, now time.Time) Day {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Day(now.Format(dayLayout))
	}
	if i := strings.IndexByte(raw, 'T'); i >= 0 {
		return Day(raw[:i])
	}
	if canonicalDay.MatchString(raw) {
		return Day(raw)
	}
	for _, layout := range parseLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return Day(t.Format(dayLayout))
		}
	}
	return Day(now.Format(dayLayout))
}

// Today returns the current civil date.
func Today() Day {
	return Day(time.Now().Format(dayLayout))
}

// Time parses the Day back into a midnight-UTC time.Time. A Day produced
// by Normalize always parses; the zero time is returned otherwise.
func (d Day) Time() time.Time {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the Day n calendar days after d (negative n goes back).
func (d Day) AddDays(n int) Day {
	return Day(d.Time().AddDate(0, 0, n).Format(dayLayout))
}

// RangeEnding builds the contiguous span of `days` civil dates ending at
// end, in chronological order. This is the shape Streaks expects; the
// typical caller passes today and 365.
func RangeEnding(end Day, days int) []Day {
	if days <= 0 {
		return nil
	}
	out := make([]Day, days)
	start := end.Time().AddDate(0, 0, -(days - 1))
	for i := range out {
		out[i] = Day(start.AddDate(0, 0, i).Format(dayLayout))
	}
	return out
}

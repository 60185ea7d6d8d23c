package statement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dayFirstPattern matches D/M/YYYY and D-M-YYYY with 1-2 digit day and month.
// Group 1 is the day, group 2 the month, group 3 the year. Bank exports we
// ingest use day-first dates, so "03/04/2024" is April 3rd, never March 4th,
// regardless of which bank produced the file.
var dayFirstPattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)

// textualLayouts are tried before the day-first pattern for statements that
// spell the month out.
var textualLayouts = []string{
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// ParseDate resolves a statement date string to a calendar date in UTC.
// Grammars are tried in order: ISO YYYY-MM-DD, textual month layouts, then
// explicit day-first D/M/YYYY or D-M-YYYY. Anything else is an error.
func ParseDate(s string) (time.Time, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if t, err := time.Parse("2006-01-02", cleaned); err == nil {
		return t, nil
	}

	for _, layout := range textualLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, nil
		}
	}

	if m := dayFirstPattern.FindStringSubmatch(cleaned); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])

		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// time.Date normalizes overflow (e.g. 31/02 rolls into March), which
		// would silently accept an invalid statement date. Reject instead.
		if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
			return time.Time{}, fmt.Errorf("invalid calendar date: %q", s)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
}

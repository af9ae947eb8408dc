// Package dateparse resolves free-form chat phrases to calendar dates.
package dateparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Date is a calendar date. Components are kept as raw integers: the ISO
// branch of Resolve passes unvalidated month/day values through, so a Date
// is not guaranteed to name a real day on the calendar.
type Date struct {
	Year  int
	Month int
	Day   int
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// FromTime extracts the calendar date of t.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// tomorrowWords covers the spellings of "tomorrow" seen in real chat.
var tomorrowWords = []string{
	"tomorrow", "tommorow", "tommorrow", "tomorow", "tmrw", "tmr",
}

var isoRe = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)

const monthPattern = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var (
	monthFirstRe = regexp.MustCompile(`\b(` + monthPattern + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s+(\d{4}))?\b`)
	dayFirstRe   = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthPattern + `)(?:,?\s+(\d{4}))?\b`)
)

var monthsByPrefix = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// Resolve parses text against the supported date phrase forms and returns
// the resolved date. Resolution order, first match wins: "tomorrow" tokens,
// ISO YYYY-MM-DD, "monthname day[, year]", "day monthname[, year]". The ISO
// branch does not range-check month or day. Absence of a match is reported
// via ok=false, never an error.
func Resolve(text string, now time.Time) (Date, bool) {
	text = strings.ToLower(text)

	for _, w := range tomorrowWords {
		if strings.Contains(text, w) {
			return FromTime(now.AddDate(0, 0, 1)), true
		}
	}

	if m := isoRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return Date{Year: year, Month: month, Day: day}, true
	}

	if m := monthFirstRe.FindStringSubmatch(text); m != nil {
		if d, ok := resolveNamed(m[1], m[2], m[3], now); ok {
			return d, true
		}
	}

	if m := dayFirstRe.FindStringSubmatch(text); m != nil {
		if d, ok := resolveNamed(m[2], m[1], m[3], now); ok {
			return d, true
		}
	}

	return Date{}, false
}

// resolveNamed builds a date from a month name, day string, and optional
// year string. When the year is omitted it defaults to the reference year
// and rolls forward one year if the result is more than 24 hours in the
// past, so "dec 1" said mid-December means next December.
func resolveNamed(monthName, dayStr, yearStr string, now time.Time) (Date, bool) {
	prefix := monthName
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	month, ok := monthsByPrefix[prefix]
	if !ok {
		return Date{}, false
	}

	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > 31 {
		return Date{}, false
	}

	if yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return Date{}, false
		}
		return Date{Year: year, Month: month, Day: day}, true
	}

	year := now.Year()
	candidate := time.Date(year, time.Month(month), day, 0, 0, 0, 0, now.Location())
	if now.Sub(candidate) > 24*time.Hour {
		year++
	}
	return Date{Year: year, Month: month, Day: day}, true
}

// Package dateutils parses the free-form confirmation dates found in market
// confirmation emails.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layouts observed in provider emails, tried in order. The provider has
// changed its date formatting more than once, so this list is deliberately
// permissive.
var CommonLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	"Jan 2, 2006 3:04pm MST",
	"Jan 2, 2006 3:04PM MST",
	"Jan 2, 2006 3:04pm",
	"Jan 2, 2006 15:04:05",
	"Jan 2, 2006",
	"2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon Jan 2 15:04:05 2006",
}

var spacePattern = regexp.MustCompile(`\s+`)

// CleanDateString normalizes a raw date fragment: trims whitespace, drops
// the "@" separator some layouts place between date and time, and collapses
// repeated spaces.
func CleanDateString(dateStr string) string {
	dateStr = strings.ReplaceAll(dateStr, "@", " ")
	dateStr = spacePattern.ReplaceAllString(dateStr, " ")
	return strings.TrimSpace(dateStr)
}

// ParseDate attempts to parse a date string using each known layout.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = CleanDateString(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	for _, layout := range CommonLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// ParseLabeledDate parses a line of the form "<label>: <date>", tolerating a
// missing label. Returns an error if no recognizable date follows.
func ParseLabeledDate(line, label string) (time.Time, error) {
	rest := line
	if idx := strings.Index(line, label); idx >= 0 {
		rest = line[idx+len(label):]
	}
	rest = strings.TrimLeft(rest, ": \t")
	return ParseDate(rest)
}

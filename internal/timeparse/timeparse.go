// Package timeparse provides lenient, locale-agnostic timestamp parsing for
// CDR cell values. Parsing is best-effort: callers get an ok flag, never an
// error, because a cell that fails to parse simply becomes missing.
package timeparse

import (
	"strconv"
	"strings"
	"time"
)

// Timestamp layouts tried in order. Day-first forms are listed before
// month-first because CDR exports overwhelmingly come from DMY locales.
var tsLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02 15:04",
	"02.01.2006 15:04:05",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006/01/02 15:04:05",
}

// Date-only layouts. A bare date parses to midnight so that a date-only
// start_time column still survives normalization.
var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
	"01/02/2006",
}

// Parse attempts to interpret s as a timestamp.
//
// Accepted forms, in order of preference:
//   - one of the timestamp layouts above
//   - a date-only layout (midnight)
//   - unix epoch seconds (10 digits) or milliseconds (13 digits)
//
// Whitespace is trimmed first. ok=false means the value is unusable and the
// caller should treat the cell as missing.
func Parse(s string) (t time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, lay := range tsLayouts {
		if t, err := time.Parse(lay, s); err == nil {
			return t, true
		}
	}
	for _, lay := range dateLayouts {
		if t, err := time.Parse(lay, s); err == nil {
			return t, true
		}
	}

	if isDigits(s) {
		switch len(s) {
		case 10:
			sec, err := strconv.ParseInt(s, 10, 64)
			if err == nil {
				return time.Unix(sec, 0).UTC(), true
			}
		case 13:
			ms, err := strconv.ParseInt(s, 10, 64)
			if err == nil {
				return time.UnixMilli(ms).UTC(), true
			}
		}
	}

	return time.Time{}, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

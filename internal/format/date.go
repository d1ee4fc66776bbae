// Package format turns stored resume fields into display-ready values.
// Every function is pure and falls back to its raw input instead of failing.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// PresentLabel is shown for an empty date, typically an open-ended end date.
const PresentLabel = "Present"

// DateMode selects how Date renders a parsed date
type DateMode string

const (
	// MonthYear renders "Mar 2024". It is the default mode.
	MonthYear DateMode = "monthyear"
	// Year renders "2024".
	Year DateMode = "year"
)

// ParseDateMode converts a user supplied mode name. An empty name yields MonthYear.
func ParseDateMode(s string) (DateMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(MonthYear):
		return MonthYear, nil
	case string(Year):
		return Year, nil
	default:
		return "", fmt.Errorf("unknown date mode %q (expected %q or %q)", s, MonthYear, Year)
	}
}

var monthNames = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// genericLayouts are tried in order when the value is not a plain YYYY-MM[-DD].
var genericLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01",
	"January 2006",
	"Jan 2006",
	"2006",
}

var logger atomic.Pointer[zerolog.Logger]

// SetLogger sets the logger used for diagnostics about malformed input.
func SetLogger(l zerolog.Logger) {
	logger.Store(&l)
}

func debugLog() *zerolog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	nop := zerolog.Nop()
	return &nop
}

// Date renders a stored date. Empty input yields "Present"; anything unparseable is returned unchanged.
// The year and month parts must be whole numbers, so "2024-03abc" is kept as written.
func Date(s string, mode DateMode) string {
	if strings.TrimSpace(s) == "" {
		return PresentLabel
	}

	parts := strings.Split(s, "-")
	if len(parts) >= 2 {
		year, yearErr := strconv.Atoi(parts[0])
		month, monthErr := strconv.Atoi(parts[1])
		if yearErr == nil && monthErr == nil && month >= 1 && month <= 12 {
			return renderDate(year, month, mode)
		}
	}

	trimmed := strings.TrimSpace(s)
	for _, layout := range genericLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return renderDate(t.Year(), int(t.Month()), mode)
		}
	}

	debugLog().Debug().Str("value", s).Msg("unparseable date, using raw value")
	return s
}

// DateRange renders "<start> - <end>" with both ends formatted by Date.
func DateRange(start, end string, mode DateMode) string {
	return Date(start, mode) + " - " + Date(end, mode)
}

func renderDate(year, month int, mode DateMode) string {
	if mode == Year {
		return strconv.Itoa(year)
	}
	return monthNames[month-1] + " " + strconv.Itoa(year)
}

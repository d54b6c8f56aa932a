// Package compliance derives compliance status from expiry dates. It is the
// only place date arithmetic for status lives; every consumer calls it on
// each read instead of trusting a stored status.
package compliance

import (
	"math"
	"strings"
	"time"

	"github.com/covera-app/covera/constants"
)

const day = 24 * time.Hour

// Classify maps an expiry date to a compliance status relative to today.
// Missing or unparseable dates are non-compliant: no proof of coverage is
// treated as no coverage.
func Classify(expiry *string, thresholdDays int, today time.Time) constants.ComplianceStatus {
	if expiry == nil {
		return constants.StatusNonCompliant
	}
	days, ok := DaysUntil(*expiry, today)
	if !ok {
		return constants.StatusNonCompliant
	}
	return classifyDays(days, thresholdDays)
}

func classifyDays(days, thresholdDays int) constants.ComplianceStatus {
	switch {
	case days < 0:
		return constants.StatusNonCompliant
	case days <= thresholdDays:
		return constants.StatusAtRisk
	default:
		return constants.StatusCompliant
	}
}

// DaysUntil returns ceil((expiry at local midnight - today at local midnight) / 1 day).
// ok is false when expiry is empty, the invalid-date sentinel, or unparseable.
func DaysUntil(expiry string, today time.Time) (int, bool) {
	exp, ok := ParseDate(expiry, today.Location())
	if !ok {
		return 0, false
	}
	// Compare calendar days in UTC so a DST shift between the two local
	// midnights cannot round a 23h or 25h span to the wrong day count.
	diff := civil(exp).Sub(civil(today))
	return int(math.Ceil(diff.Hours() / day.Hours())), true
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns local
// midnight of that calendar day in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == constants.InvalidDateSentinel {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return midnight(t.In(loc)), true
	}
	return time.Time{}, false
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

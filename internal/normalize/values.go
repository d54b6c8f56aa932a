package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/covera-app/covera/internal/llm"
)

// ParseAmount strips everything but digits, '.' and a leading '-' and parses
// the rest. nil in, nil out; unparseable input becomes nil rather than 0.
func ParseAmount(a *llm.Amount) *float64 {
	if a == nil {
		return nil
	}
	return ParseCurrency(string(*a))
}

// ParseCurrency parses a display string such as "$1,234.50" or "1000000".
func ParseCurrency(s string) *float64 {
	var b strings.Builder
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0 && i < 2:
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" || digits == "-" {
		return nil
	}
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

// ParseLimit parses a coverage limit into whole currency units. Values that
// do not fit an int64 are unreadable, not clamped.
func ParseLimit(a *llm.Amount) *int64 {
	f := ParseAmount(a)
	if f == nil {
		return nil
	}
	r := math.Round(*f)
	if r >= math.MaxInt64 || r < math.MinInt64 {
		return nil
	}
	n := int64(r)
	return &n
}

// FormatCurrency renders the stored display form: "$" prefix, thousands
// separators, cents only when present. Used only at the storage boundary.
func FormatCurrency(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	cents := int64(math.Round(v * 100))
	whole, frac := cents/100, cents%100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if frac != 0 {
		b.WriteByte('.')
		if frac < 10 {
			b.WriteByte('0')
		}
		b.WriteString(strconv.FormatInt(frac, 10))
	}
	return b.String()
}

// ParseISODate accepts only YYYY-MM-DD. Anything else, including MM/DD/YYYY,
// becomes nil: the prompt owns date disambiguation, not the normalizer.
func ParseISODate(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	t, err := time.Parse(time.DateOnly, v)
	if err != nil || t.Format(time.DateOnly) != v {
		return nil
	}
	return &v
}

func cleanString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

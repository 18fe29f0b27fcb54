// Package period converts provider period identifiers to canonical labels:
// "YYYY" for annual data and "YYYY_Q" for quarterly data.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/finstat-dev/finstat/internal/model"
)

// MalformedError reports a period identifier that cannot be labelled.
type MalformedError struct {
	Period model.PeriodID
	Reason string
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("malformed period %q: %s", e.Period.String(), e.Reason)
}

// Label returns the canonical label for id at granularity g.
func Label(id model.PeriodID, g model.Granularity) (string, error) {
	if id.Year <= 0 {
		return "", &MalformedError{Period: id, Reason: "missing year"}
	}
	switch g {
	case model.Quarterly:
		if id.Quarter < 1 || id.Quarter > 4 {
			return "", &MalformedError{Period: id, Reason: fmt.Sprintf("quarter %d out of range", id.Quarter)}
		}
		return FormatQuarterly(id.Year, id.Quarter), nil
	case model.Annual:
		return FormatAnnual(id.Year), nil
	default:
		return "", fmt.Errorf("unknown granularity %q", g)
	}
}

// FormatQuarterly returns a label like "2023_4".
func FormatQuarterly(year, quarter int) string {
	return fmt.Sprintf("%d_%d", year, quarter)
}

// FormatAnnual returns a label like "2022".
func FormatAnnual(year int) string {
	return strconv.Itoa(year)
}

// Parse splits a canonical label into year and quarter. Quarter is 0 for
// annual labels.
func Parse(label string) (year, quarter int, err error) {
	y, q, hasQuarter := strings.Cut(label, "_")
	year, err = strconv.Atoi(y)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in label %q: %w", label, err)
	}
	if !hasQuarter {
		return year, 0, nil
	}
	quarter, err = strconv.Atoi(q)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid quarter in label %q: %w", label, err)
	}
	if quarter < 1 || quarter > 4 {
		return 0, 0, fmt.Errorf("quarter out of range in label %q", label)
	}
	return year, quarter, nil
}

// Year coerces a pure-year label to a number. Quarter-tagged labels are not
// coerced; their interpretation is left to the consumer.
func Year(label string) (float64, bool) {
	year, quarter, err := Parse(label)
	if err != nil || quarter != 0 {
		return 0, false
	}
	return float64(year), true
}

// FromDate builds an identifier from a period-end date, using the calendar
// quarter the date falls in.
func FromDate(t time.Time, raw string) model.PeriodID {
	return model.PeriodID{
		Year:    t.Year(),
		Quarter: (int(t.Month())-1)/3 + 1,
		Raw:     raw,
	}
}

// ParseIdentifier reads a provider column header. Accepted forms are
// "2024-03-31", "2024Q1" and "2024". Anything else yields an identifier
// with no year, which Label rejects.
func ParseIdentifier(s string) model.PeriodID {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return FromDate(t, s)
	}
	if y, q, ok := strings.Cut(strings.ToUpper(s), "Q"); ok {
		year, yerr := strconv.Atoi(y)
		quarter, qerr := strconv.Atoi(q)
		if yerr == nil && qerr == nil {
			return model.PeriodID{Year: year, Quarter: quarter, Raw: s}
		}
		return model.PeriodID{Raw: s}
	}
	if year, err := strconv.Atoi(s); err == nil && len(s) == 4 {
		return model.PeriodID{Year: year, Raw: s}
	}
	return model.PeriodID{Raw: s}
}

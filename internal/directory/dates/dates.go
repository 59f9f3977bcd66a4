// Package dates converts birth dates to the normalized form the age index is
// keyed on, and derives the birth-date bounds for a whole-year age.
//
// Everything is computed in UTC at day granularity: a birth date and "today"
// both normalize to midnight UTC, so two people born on the same day always
// share a key.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Layout is the only accepted birth-date format: day/month/year, numeric,
// with optional leading zeros on day and month.
const Layout = "2/1/2006"

// ParseDOB parses a birth date and returns its normalized time in Unix seconds.
func ParseDOB(dob string) (int64, error) {
	t, err := time.ParseInLocation(Layout, strings.TrimSpace(dob), time.UTC)
	if err != nil {
		return 0, fmt.Errorf("parse birth date %q: %w", dob, err)
	}
	return t.Unix(), nil
}

// Today truncates now to midnight UTC.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// YearsAgo returns, in Unix seconds, the same calendar day as now minus years.
// A day the target month does not have is clamped to the month's last day,
// so Feb 29 in a non-leap target year becomes Feb 28.
func YearsAgo(now time.Time, years int) int64 {
	y, m, d := now.UTC().Date()
	y -= years
	if last := daysIn(y, m); d > last {
		d = last
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix()
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AgeBounds returns the half-open birth-time interval (min, max] of everyone
// whose current age in whole years is age. Someone born exactly age years ago
// today is included; someone born exactly age+1 years ago today is not.
func AgeBounds(now time.Time, age int) (minDoB, maxDoB int64) {
	return YearsAgo(now, age+1), YearsAgo(now, age)
}

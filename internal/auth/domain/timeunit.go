package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimeUnit names the unit a duration count is expressed in.
type TimeUnit string

const (
	UnitMilliseconds TimeUnit = "milliseconds"
	UnitSeconds      TimeUnit = "seconds"
	UnitMinutes      TimeUnit = "minutes"
	UnitHours        TimeUnit = "hours"
	UnitDays         TimeUnit = "days"
	UnitWeeks        TimeUnit = "weeks"
	UnitMonths       TimeUnit = "months"
	UnitYears        TimeUnit = "years"
)

// TimeUnits lists every unit the service understands.
var TimeUnits = []TimeUnit{
	UnitMilliseconds,
	UnitSeconds,
	UnitMinutes,
	UnitHours,
	UnitDays,
	UnitWeeks,
	UnitMonths,
	UnitYears,
}

// ParseTimeUnit accepts the unit name case-insensitively, in singular or plural.
func ParseTimeUnit(s string) (TimeUnit, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v != "" && !strings.HasSuffix(v, "s") {
		v += "s"
	}
	for _, u := range TimeUnits {
		if string(u) == v {
			return u, nil
		}
	}
	return "", fmt.Errorf("unknown time unit %q", s)
}

func (u TimeUnit) Valid() bool {
	for _, known := range TimeUnits {
		if u == known {
			return true
		}
	}
	return false
}

// Add returns t shifted by n units. Months and years follow the calendar.
func (u TimeUnit) Add(t time.Time, n int) time.Time {
	switch u {
	case UnitMilliseconds:
		return t.Add(time.Duration(n) * time.Millisecond)
	case UnitSeconds:
		return t.Add(time.Duration(n) * time.Second)
	case UnitHours:
		return t.Add(time.Duration(n) * time.Hour)
	case UnitDays:
		return t.AddDate(0, 0, n)
	case UnitWeeks:
		return t.AddDate(0, 0, 7*n)
	case UnitMonths:
		return t.AddDate(0, n, 0)
	case UnitYears:
		return t.AddDate(n, 0, 0)
	default:
		return t.Add(time.Duration(n) * time.Minute)
	}
}

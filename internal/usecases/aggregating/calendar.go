// Package aggregating groups and totals sales by calendar day.
//
// Every function here is pure and total: malformed amounts count as zero and no
// input makes them fail. All day comparisons go through Calendar.Key so that
// filtering, bucketing and labelling always agree on what "the same day" means.
package aggregating

import (
	"time"

	"github.com/vfg2006/sales-dashboard-api/pkg/utils"
)

// DateKey identifies a calendar day as YYYY-MM-DD
type DateKey string

// Calendar maps instants to calendar days in a fixed location
type Calendar struct {
	Location *time.Location
}

// NewCalendar returns a Calendar for loc, or the process local zone when loc is nil
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{Location: loc}
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

// KeyOfTime is the single normalization from an instant to a DateKey
func (c Calendar) KeyOfTime(t time.Time) DateKey {
	return DateKey(t.In(c.location()).Format(time.DateOnly))
}

// Key returns the DateKey of a millisecond timestamp
func (c Calendar) Key(timestampMillis int64) DateKey {
	return c.KeyOfTime(time.UnixMilli(timestampMillis))
}

// DaysBefore returns the key of the calendar day n days before now.
// Day arithmetic is done on the calendar date, so DST shifts never skip a day.
func (c Calendar) DaysBefore(now time.Time, n int) DateKey {
	local := now.In(c.location())
	day := time.Date(local.Year(), local.Month(), local.Day()-n, 12, 0, 0, 0, c.location())
	return c.KeyOfTime(day)
}

// ReferenceKeys returns today, yesterday and the day before yesterday relative to now
func (c Calendar) ReferenceKeys(now time.Time) (today, yesterday, dayBefore DateKey) {
	return c.DaysBefore(now, 0), c.DaysBefore(now, 1), c.DaysBefore(now, 2)
}

// ParseDate reads a YYYY-MM-DD date picked by a user as a day in the calendar location
func (c Calendar) ParseDate(s string) (DateKey, bool) {
	date, err := utils.ParseDateIn(s, c.location())
	if err != nil || date == nil {
		return "", false
	}
	return c.KeyOfTime(*date), true
}

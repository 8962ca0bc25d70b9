package aggregating

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
)

// DateFilter selects which days a dashboard shows
type DateFilter string

const (
	FilterToday              DateFilter = "today"
	FilterYesterday          DateFilter = "yesterday"
	FilterDayBeforeYesterday DateFilter = "dayBefore"
	FilterCustom             DateFilter = "custom"
	FilterAll                DateFilter = "all"
)

// ParseDateFilter accepts the query values used by the dashboards
func ParseDateFilter(s string) (DateFilter, bool) {
	switch f := DateFilter(s); f {
	case FilterToday, FilterYesterday, FilterDayBeforeYesterday, FilterCustom, FilterAll:
		return f, true
	default:
		return "", false
	}
}

// TargetDate resolves the single day a filter points at.
// It returns false for All, and for Custom without a usable date.
func TargetDate(cal Calendar, filter DateFilter, customDate string, now time.Time) (DateKey, bool) {
	switch filter {
	case FilterToday:
		return cal.DaysBefore(now, 0), true
	case FilterYesterday:
		return cal.DaysBefore(now, 1), true
	case FilterDayBeforeYesterday:
		return cal.DaysBefore(now, 2), true
	case FilterCustom:
		return cal.ParseDate(customDate)
	default:
		return "", false
	}
}

// SelectByDateFilter applies filter to sales.
// A single-day filter always yields exactly one bucket, empty when nothing matched.
// Otherwise the full BucketByDate grouping is returned.
func SelectByDateFilter(cal Calendar, sales []domain.Sale, filter DateFilter, customDate string, now time.Time) Buckets {
	target, ok := TargetDate(cal, filter, customDate, now)
	if !ok {
		return BucketByDate(cal, sales)
	}

	return Buckets{{Key: target, Sales: FilterByDate(cal, sales, target)}}
}

// SelectedTotal sums the day a filter points at. It reports false when the
// filter does not point at a single day.
func SelectedTotal(cal Calendar, sales []domain.Sale, filter DateFilter, customDate string, now time.Time) (decimal.Decimal, bool) {
	target, ok := TargetDate(cal, filter, customDate, now)
	if !ok {
		return decimal.Zero, false
	}
	return SumTotals(FilterByDate(cal, sales, target)), true
}

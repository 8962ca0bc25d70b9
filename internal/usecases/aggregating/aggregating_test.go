package aggregating

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func at(year int, month time.Month, day, hour, min int) int64 {
	return time.Date(year, month, day, hour, min, 0, 0, ist).UnixMilli()
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sale(id string, ts int64, entries ...domain.Entry) domain.Sale {
	return domain.Sale{ID: id, Timestamp: ts, Entries: entries}
}

func entry(name, price string) domain.Entry {
	return domain.Entry{ProductName: name, Price: domain.Price(price)}
}

// D0 is 2024-03-10 in IST
func scenarioSales() []domain.Sale {
	return []domain.Sale{
		sale("s1", at(2024, 3, 10, 10, 0), entry("Tea", "10")),
		sale("s2", at(2024, 3, 10, 11, 0), entry("Coffee", "20"), entry("Tea", "10")),
		sale("s3", at(2024, 3, 9, 9, 0), entry("Tea", "10")),
	}
}

func TestScenarioBucketAndYesterdayFilter(t *testing.T) {
	cal := NewCalendar(ist)
	now := time.Date(2024, 3, 10, 18, 0, 0, 0, ist)

	sorted := SortNewestFirst(scenarioSales())
	buckets := BucketByDate(cal, sorted)

	require.Len(t, buckets, 2)
	assert.Equal(t, []DateKey{"2024-03-10", "2024-03-09"}, buckets.Keys())

	d0, ok := buckets.Get("2024-03-10")
	require.True(t, ok)
	require.Len(t, d0, 2)
	assert.Equal(t, "s2", d0[0].ID)
	assert.Equal(t, "s1", d0[1].ID)
	assert.Equal(t, "40", SumTotals(d0).String())

	selected := SelectByDateFilter(cal, sorted, FilterYesterday, "", now)
	require.Len(t, selected, 1)
	assert.Equal(t, DateKey("2024-03-09"), selected[0].Key)
	require.Len(t, selected[0].Sales, 1)
	assert.Equal(t, "s3", selected[0].Sales[0].ID)
	assert.Equal(t, "10", SumTotals(selected[0].Sales).String())
}

func TestBucketByDateIsLosslessPartition(t *testing.T) {
	cal := NewCalendar(ist)
	sales := []domain.Sale{
		sale("a", at(2024, 1, 1, 0, 0)),
		sale("b", at(2024, 1, 1, 23, 59)),
		sale("c", at(2024, 1, 2, 0, 0)),
		sale("d", at(2023, 12, 31, 23, 59)),
		sale("e", at(2024, 1, 1, 12, 0)),
	}

	buckets := BucketByDate(cal, sales)

	seen := map[string]int{}
	total := 0
	for _, bucket := range buckets {
		assert.NotEmpty(t, bucket.Sales)
		for _, s := range bucket.Sales {
			seen[s.ID]++
			total++
			assert.Equal(t, bucket.Key, cal.Key(s.Timestamp))
		}
	}

	assert.Equal(t, len(sales), total)
	for _, s := range sales {
		assert.Equal(t, 1, seen[s.ID], "sale %s", s.ID)
	}

	jan1, _ := buckets.Get("2024-01-01")
	assert.Equal(t, []string{"a", "b", "e"}, ids(jan1), "input order is preserved inside a bucket")
}

func TestBucketByDateUsesCalendarLocation(t *testing.T) {
	// 2024-03-09 20:00 UTC is already 2024-03-10 in IST
	ts := time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC).UnixMilli()

	assert.Equal(t, DateKey("2024-03-10"), NewCalendar(ist).Key(ts))
	assert.Equal(t, DateKey("2024-03-09"), NewCalendar(time.UTC).Key(ts))
}

func TestBucketByDateEmptyInput(t *testing.T) {
	assert.Empty(t, BucketByDate(NewCalendar(ist), nil))
}

func TestSumTotalsIsAdditive(t *testing.T) {
	sales := []domain.Sale{
		sale("a", 1, entry("Tea", "10"), entry("Cake", "2.50")),
		{ID: "b", Timestamp: 2, Entries: []domain.Entry{entry("x", "1")}, Total: dec("99.99")},
		sale("c", 3, entry("Broken", "n/a")),
		sale("d", 4),
		{ID: "e", Timestamp: 5, Entries: []domain.Entry{entry("Tea", "10")}, Total: dec("0")},
	}

	whole := SumTotals(sales)
	for split := 0; split <= len(sales); split++ {
		parts := SumTotals(sales[:split]).Add(SumTotals(sales[split:]))
		assert.True(t, whole.Equal(parts), "split at %d: %s != %s", split, whole, parts)
	}

	assert.Equal(t, "122.49", whole.String())
}

func TestSumTotalsWithHugeExponentsStaysFast(t *testing.T) {
	sales := []domain.Sale{
		sale("a", 1, entry("Tea", "10.5")),
		sale("b", 2, entry("Typo", "1e9000000")),
		{ID: "c", Timestamp: 3, Entries: []domain.Entry{entry("Cake", "3")}, Total: dec("-1e9000000")},
	}

	start := time.Now()
	total := SumTotals(sales)

	assert.Equal(t, "13.5", total.String())
	assert.Less(t, time.Since(start), time.Second)
}

func TestSaleTotalFallback(t *testing.T) {
	tests := []struct {
		name string
		sale domain.Sale
		want string
	}{
		{name: "stored total wins", sale: domain.Sale{Entries: []domain.Entry{entry("Tea", "10")}, Total: dec("12")}, want: "12"},
		{name: "missing total recomputes", sale: sale("x", 0, entry("Tea", "10"), entry("Coffee", "20")), want: "30"},
		{name: "zero total recomputes", sale: domain.Sale{Entries: []domain.Entry{entry("Tea", "10")}, Total: dec("0")}, want: "10"},
		{name: "malformed price is zero", sale: sale("x", 0, entry("Tea", "abc"), entry("Coffee", "")), want: "0"},
		{name: "numeric prefix is kept", sale: sale("x", 0, entry("Tea", "15rs")), want: "15"},
		{name: "huge price exponent is malformed", sale: sale("x", 0, entry("Tea", "10.5"), entry("Typo", "1e9000000")), want: "10.5"},
		{name: "huge stored total recomputes", sale: domain.Sale{Entries: []domain.Entry{entry("Tea", "10")}, Total: dec("1e9000000")}, want: "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SaleTotal(tt.sale).String())
		})
	}
}

func TestSelectByDateFilterSameDayIsStable(t *testing.T) {
	cal := NewCalendar(ist)
	sales := SortNewestFirst(scenarioSales())

	for _, filter := range []DateFilter{FilterToday, FilterYesterday, FilterDayBeforeYesterday} {
		morning := SelectByDateFilter(cal, sales, filter, "", time.Date(2024, 3, 10, 0, 1, 0, 0, ist))
		night := SelectByDateFilter(cal, sales, filter, "", time.Date(2024, 3, 10, 23, 59, 0, 0, ist))
		assert.Equal(t, morning, night, "filter %s", filter)
	}
}

func TestSelectByDateFilterMaterializesEmptyBucket(t *testing.T) {
	cal := NewCalendar(ist)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, ist)

	selected := SelectByDateFilter(cal, scenarioSales(), FilterDayBeforeYesterday, "", now)

	require.Len(t, selected, 1)
	assert.Equal(t, DateKey("2024-03-08"), selected[0].Key)
	assert.NotNil(t, selected[0].Sales)
	assert.Empty(t, selected[0].Sales)
}

func TestSelectByDateFilterCustom(t *testing.T) {
	cal := NewCalendar(ist)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, ist)
	sales := scenarioSales()

	selected := SelectByDateFilter(cal, sales, FilterCustom, "2024-03-09", now)
	require.Len(t, selected, 1)
	assert.Equal(t, []string{"s3"}, ids(selected[0].Sales))

	empty := SelectByDateFilter(cal, sales, FilterCustom, "2020-01-01", now)
	require.Len(t, empty, 1)
	assert.Empty(t, empty[0].Sales)

	all := SelectByDateFilter(cal, sales, FilterCustom, "", now)
	assert.Equal(t, BucketByDate(cal, sales), all)

	invalid := SelectByDateFilter(cal, sales, FilterCustom, "not-a-date", now)
	assert.Equal(t, BucketByDate(cal, sales), invalid)
}

func TestSelectByDateFilterAll(t *testing.T) {
	cal := NewCalendar(ist)
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, ist)

	all := SelectByDateFilter(cal, scenarioSales(), FilterAll, "", now)

	assert.Len(t, all, 2)
	_, hasToday := all.Get(cal.DaysBefore(now, 0))
	assert.False(t, hasToday, "all never adds synthetic days")
}

func TestSelectedTotal(t *testing.T) {
	cal := NewCalendar(ist)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, ist)

	total, ok := SelectedTotal(cal, scenarioSales(), FilterToday, "", now)
	assert.True(t, ok)
	assert.Equal(t, "40", total.String())

	_, ok = SelectedTotal(cal, scenarioSales(), FilterAll, "", now)
	assert.False(t, ok)
}

func TestReferenceKeysAndLabels(t *testing.T) {
	cal := NewCalendar(ist)
	today, yesterday, dayBefore := cal.ReferenceKeys(time.Date(2024, 3, 1, 0, 30, 0, 0, ist))

	assert.Equal(t, DateKey("2024-03-01"), today)
	assert.Equal(t, DateKey("2024-02-29"), yesterday)
	assert.Equal(t, DateKey("2024-02-28"), dayBefore)

	assert.Equal(t, "Today", LabelForDate(today, today, yesterday, dayBefore))
	assert.Equal(t, "Yesterday", LabelForDate(yesterday, today, yesterday, dayBefore))
	assert.Equal(t, "Day Before Yesterday", LabelForDate(dayBefore, today, yesterday, dayBefore))
	assert.Equal(t, "2024-01-15", LabelForDate("2024-01-15", today, yesterday, dayBefore))
}

func TestParseDateFilter(t *testing.T) {
	f, ok := ParseDateFilter("dayBefore")
	assert.True(t, ok)
	assert.Equal(t, FilterDayBeforeYesterday, f)

	_, ok = ParseDateFilter("tomorrow")
	assert.False(t, ok)
}

func ids(sales []domain.Sale) []string {
	out := make([]string, 0, len(sales))
	for _, s := range sales {
		out = append(out, s.ID)
	}
	return out
}

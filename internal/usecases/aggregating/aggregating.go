package aggregating

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/pkg/utils"
)

// Bucket holds the sales of one calendar day
type Bucket struct {
	Key   DateKey
	Sales []domain.Sale
}

// Buckets is ordered by the first appearance of each day in the input
type Buckets []Bucket

// Get returns the sales of key and whether the key is present
func (b Buckets) Get(key DateKey) ([]domain.Sale, bool) {
	for _, bucket := range b {
		if bucket.Key == key {
			return bucket.Sales, true
		}
	}
	return nil, false
}

func (b Buckets) Keys() []DateKey {
	keys := make([]DateKey, 0, len(b))
	for _, bucket := range b {
		keys = append(keys, bucket.Key)
	}
	return keys
}

// SortNewestFirst returns a copy of sales ordered by descending timestamp.
// Equal timestamps keep their input order.
func SortNewestFirst(sales []domain.Sale) []domain.Sale {
	sorted := make([]domain.Sale, len(sales))
	copy(sorted, sales)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})
	return sorted
}

// BucketByDate partitions sales by calendar day, keeping the input order inside each day
func BucketByDate(cal Calendar, sales []domain.Sale) Buckets {
	index := make(map[DateKey]int)
	buckets := make(Buckets, 0)

	for _, sale := range sales {
		key := cal.Key(sale.Timestamp)
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key})
		}
		buckets[i].Sales = append(buckets[i].Sales, sale)
	}

	return buckets
}

// FilterByDate keeps the sales falling on key, in input order
func FilterByDate(cal Calendar, sales []domain.Sale, key DateKey) []domain.Sale {
	filtered := make([]domain.Sale, 0)
	for _, sale := range sales {
		if cal.Key(sale.Timestamp) == key {
			filtered = append(filtered, sale)
		}
	}
	return filtered
}

// SaleTotal returns the stored total when present, non-zero and of sane scale,
// else the sum of entry prices
func SaleTotal(sale domain.Sale) decimal.Decimal {
	if sale.Total != nil && !sale.Total.IsZero() && utils.WithinScale(*sale.Total) {
		return *sale.Total
	}
	return SumEntries(sale.Entries)
}

// SumEntries adds entry prices leniently
func SumEntries(entries []domain.Entry) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range entries {
		total = total.Add(entry.Price.Decimal())
	}
	return total
}

// SumTotals adds the totals of all sales
func SumTotals(sales []domain.Sale) decimal.Decimal {
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(SaleTotal(sale))
	}
	return total
}

// LabelForDate names a day relative to the reference keys, falling back to the key itself
func LabelForDate(key, today, yesterday, dayBefore DateKey) string {
	switch key {
	case today:
		return "Today"
	case yesterday:
		return "Yesterday"
	case dayBefore:
		return "Day Before Yesterday"
	default:
		return string(key)
	}
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is one product line of a sale
type Entry struct {
	ProductName string `json:"productName"`
	Price       Price  `json:"price"`
}

// Sale is a recorded transaction.
// Total is stored redundantly and may be absent on older records.
type Sale struct {
	ID        string           `json:"id"`
	Timestamp int64            `json:"timestamp"`
	Entries   []Entry          `json:"entries"`
	Total     *decimal.Decimal `json:"total,omitempty"`
}

// Time converts the millisecond timestamp into a time.Time in loc
func (s Sale) Time(loc *time.Location) time.Time {
	return time.UnixMilli(s.Timestamp).In(loc)
}

// MillisOf returns t as milliseconds since epoch
func MillisOf(t time.Time) int64 {
	return t.UnixMilli()
}

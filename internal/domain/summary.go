package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySummary is the persisted total of one calendar day
type DailySummary struct {
	Date       string          `json:"date"`
	SalesCount int             `json:"sales_count"`
	Total      decimal.Decimal `json:"total"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

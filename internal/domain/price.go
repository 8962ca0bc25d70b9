package domain

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/sales-dashboard-api/pkg/utils"
)

// Price is a decimal amount kept as the text it was entered with.
// Stored records may carry it as a JSON string or a JSON number.
type Price string

// Decimal returns the lenient numeric value of the price; malformed text is zero
func (p Price) Decimal() decimal.Decimal {
	return utils.ParseLenientDecimal(string(p))
}

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(string(p))), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*p = ""
	case data[0] == '"':
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return errors.Wrap(err, "decode price")
		}
		*p = Price(s)
	default:
		*p = Price(data)
	}
	return nil
}

package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceUnmarshalAcceptsStringAndNumber(t *testing.T) {
	var entries []Entry
	raw := `[{"productName":"Tea","price":"10"},{"productName":"Coffee","price":20.5},{"productName":"Cake"}]`

	require.NoError(t, json.Unmarshal([]byte(raw), &entries))
	require.Len(t, entries, 3)

	assert.Equal(t, Price("10"), entries[0].Price)
	assert.Equal(t, Price("20.5"), entries[1].Price)
	assert.Equal(t, Price(""), entries[2].Price)
	assert.Equal(t, "20.5", entries[1].Price.Decimal().String())
	assert.True(t, entries[2].Price.Decimal().IsZero())
}

func TestPriceMarshalsAsString(t *testing.T) {
	out, err := json.Marshal(Entry{ProductName: "Tea", Price: "10"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"productName":"Tea","price":"10"}`, string(out))
}

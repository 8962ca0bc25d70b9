package selling_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/selling"
)

func TestNewDraftHasOneBlankRow(t *testing.T) {
	draft := selling.NewDraft()
	assert.Equal(t, []domain.Entry{{}}, draft.Entries)
	assert.Nil(t, draft.Editing)
}

func TestDraftRowTransitions(t *testing.T) {
	draft := selling.NewDraft().
		ChangeRow(0, selling.FieldProductName, "Tea").
		ChangeRow(0, selling.FieldPrice, "10").
		AddRow().
		ChangeRow(1, selling.FieldProductName, "Coffee")

	assert.Equal(t, []domain.Entry{
		{ProductName: "Tea", Price: "10"},
		{ProductName: "Coffee"},
	}, draft.Entries)

	unchanged := draft.ChangeRow(5, selling.FieldPrice, "1").ChangeRow(0, selling.Field("color"), "red")
	assert.Equal(t, draft, unchanged)

	assert.Equal(t, []domain.Entry{{ProductName: "Coffee"}}, draft.DeleteRow(0).Entries)
	assert.Equal(t, []domain.Entry{{}}, draft.DeleteRow(0).DeleteRow(0).Entries, "the last row is replaced by a blank one")
	assert.Equal(t, draft, draft.DeleteRow(-1))
}

func TestDraftTransitionsDoNotMutateReceiver(t *testing.T) {
	original := selling.NewDraft().ChangeRow(0, selling.FieldProductName, "Tea")

	_ = original.ChangeRow(0, selling.FieldProductName, "Coffee")
	_ = original.AddRow()
	_ = original.DeleteRow(0)
	_ = original.PickProduct(domain.Product{Name: "Cake", Price: "5"})

	assert.Equal(t, []domain.Entry{{ProductName: "Tea"}}, original.Entries)
}

func TestPickProduct(t *testing.T) {
	tea := domain.Product{ID: "p1", Name: "Tea", Price: "10"}

	tests := []struct {
		name    string
		entries []domain.Entry
		want    []domain.Entry
	}{
		{
			name:    "fills the blank row",
			entries: []domain.Entry{{}},
			want:    []domain.Entry{{ProductName: "Tea", Price: "10"}},
		},
		{
			name:    "fills only the first blank row",
			entries: []domain.Entry{{ProductName: "Coffee", Price: "20"}, {ProductName: "  ", Price: "3"}, {}},
			want:    []domain.Entry{{ProductName: "Coffee", Price: "20"}, {ProductName: "Tea", Price: "10"}, {}},
		},
		{
			name:    "appends when every row is named",
			entries: []domain.Entry{{ProductName: "Coffee", Price: "20"}},
			want:    []domain.Entry{{ProductName: "Coffee", Price: "20"}, {ProductName: "Tea", Price: "10"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := selling.Draft{Entries: tt.entries}
			assert.Equal(t, tt.want, draft.PickProduct(tea).Entries)
		})
	}
}

func TestEditLifecycle(t *testing.T) {
	sale := domain.Sale{ID: "s1", Timestamp: 42, Entries: []domain.Entry{{ProductName: "Tea", Price: "10"}}}

	editing := selling.NewDraft().StartEdit(sale)
	assert.Equal(t, &selling.EditTarget{ID: "s1", Timestamp: 42}, editing.Editing)
	assert.Equal(t, sale.Entries, editing.Entries)

	editing.Entries[0].Price = "99"
	assert.Equal(t, domain.Price("10"), sale.Entries[0].Price, "editing must not alias the sale")

	assert.Equal(t, selling.NewDraft(), editing.CancelEdit())

	empty := selling.NewDraft().StartEdit(domain.Sale{ID: "s2"})
	assert.Equal(t, []domain.Entry{{}}, empty.Entries)
}

func TestValidEntries(t *testing.T) {
	draft := selling.Draft{Entries: []domain.Entry{
		{ProductName: "Tea", Price: "10"},
		{ProductName: "   ", Price: "5"},
		{},
		{ProductName: "Free sample"},
	}}

	assert.Equal(t, []domain.Entry{
		{ProductName: "Tea", Price: "10"},
		{ProductName: "Free sample"},
	}, draft.ValidEntries())
}

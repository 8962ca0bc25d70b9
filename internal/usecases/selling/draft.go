package selling

import (
	"strings"

	"github.com/vfg2006/sales-dashboard-api/internal/domain"
)

// Field names an editable column of a draft row
type Field string

const (
	FieldProductName Field = "productName"
	FieldPrice       Field = "price"
)

// ParseField accepts the column names used by the sale form
func ParseField(s string) (Field, bool) {
	switch f := Field(s); f {
	case FieldProductName, FieldPrice:
		return f, true
	default:
		return "", false
	}
}

// EditTarget identifies the stored sale a draft will overwrite
type EditTarget struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
}

// Draft is the state of the sale form. Transitions never mutate the receiver.
type Draft struct {
	Entries []domain.Entry `json:"entries"`
	Editing *EditTarget    `json:"editing,omitempty"`
}

// NewDraft returns a form with a single blank row
func NewDraft() Draft {
	return Draft{Entries: []domain.Entry{{}}}
}

func (d Draft) clone() Draft {
	entries := make([]domain.Entry, len(d.Entries))
	copy(entries, d.Entries)

	var editing *EditTarget
	if d.Editing != nil {
		target := *d.Editing
		editing = &target
	}

	return Draft{Entries: entries, Editing: editing}
}

// Normalize guarantees at least one row
func (d Draft) Normalize() Draft {
	next := d.clone()
	if len(next.Entries) == 0 {
		next.Entries = []domain.Entry{{}}
	}
	return next
}

func (d Draft) AddRow() Draft {
	next := d.clone()
	next.Entries = append(next.Entries, domain.Entry{})
	return next
}

// ChangeRow sets one column of row i; an unknown row or field leaves the draft unchanged
func (d Draft) ChangeRow(i int, field Field, value string) Draft {
	next := d.clone()
	if i < 0 || i >= len(next.Entries) {
		return next
	}

	switch field {
	case FieldProductName:
		next.Entries[i].ProductName = value
	case FieldPrice:
		next.Entries[i].Price = domain.Price(value)
	}

	return next
}

// DeleteRow removes row i, never leaving the form without rows
func (d Draft) DeleteRow(i int) Draft {
	next := d.clone()
	if i < 0 || i >= len(next.Entries) {
		return next
	}

	next.Entries = append(next.Entries[:i], next.Entries[i+1:]...)
	if len(next.Entries) == 0 {
		next.Entries = []domain.Entry{{}}
	}

	return next
}

// PickProduct fills the first blank row with product, or appends a row when
// every row already names a product
func (d Draft) PickProduct(product domain.Product) Draft {
	next := d.clone()
	entry := domain.Entry{ProductName: product.Name, Price: product.Price}

	for i, row := range next.Entries {
		if isBlank(row) {
			next.Entries[i] = entry
			return next
		}
	}

	next.Entries = append(next.Entries, entry)
	return next
}

// StartEdit loads sale into the form, remembering its key and original timestamp
func (d Draft) StartEdit(sale domain.Sale) Draft {
	entries := make([]domain.Entry, len(sale.Entries))
	copy(entries, sale.Entries)

	next := Draft{
		Entries: entries,
		Editing: &EditTarget{ID: sale.ID, Timestamp: sale.Timestamp},
	}

	return next.Normalize()
}

// CancelEdit drops the edit target and resets the form
func (d Draft) CancelEdit() Draft {
	return NewDraft()
}

// ValidEntries returns the rows naming a product
func (d Draft) ValidEntries() []domain.Entry {
	return validEntries(d.Entries)
}

func validEntries(entries []domain.Entry) []domain.Entry {
	valid := make([]domain.Entry, 0, len(entries))
	for _, entry := range entries {
		if !isBlank(entry) {
			valid = append(valid, entry)
		}
	}
	return valid
}

func isBlank(entry domain.Entry) bool {
	return strings.TrimSpace(entry.ProductName) == ""
}

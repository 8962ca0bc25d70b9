package handler

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/selling"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
)

const (
	FormActionAddRow    = "add_row"
	FormActionChangeRow = "change_row"
	FormActionDeleteRow = "delete_row"
	FormActionPick      = "pick"
	FormActionEdit      = "edit"
	FormActionCancel    = "cancel"
)

// FormRequest is one transition of the sale form
type FormRequest struct {
	Action    string        `json:"action"`
	Draft     selling.Draft `json:"draft"`
	Index     int           `json:"index"`
	Field     string        `json:"field,omitempty"`
	Value     string        `json:"value,omitempty"`
	ProductID string        `json:"product_id,omitempty"`
	SaleID    string        `json:"sale_id,omitempty"`
}

// FormTransition applies a form action to the posted draft and returns the next draft
func FormTransition(seller selling.Seller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req FormRequest
		if !decodeBody(w, r, &req) {
			return
		}

		draft := req.Draft.Normalize()

		switch req.Action {
		case FormActionAddRow:
			draft = draft.AddRow()

		case FormActionChangeRow:
			field, ok := selling.ParseField(req.Field)
			if !ok {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "unknown field", map[string]string{"field": req.Field})
				return
			}
			draft = draft.ChangeRow(req.Index, field, req.Value)

		case FormActionDeleteRow:
			draft = draft.DeleteRow(req.Index)

		case FormActionPick:
			product, ok, err := seller.FindProduct(r.Context(), req.ProductID)
			if err != nil {
				log.ForContext(r.Context()).WithError(err).Error("could not read product")
				apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "could not read product", nil)
				return
			}
			if !ok {
				apiErrors.WriteError(w, apiErrors.ErrProductNotFound, "product not found", nil)
				return
			}
			draft = draft.PickProduct(product)

		case FormActionEdit:
			sale, err := seller.FindSale(r.Context(), req.SaleID)
			if err != nil {
				if errors.Is(err, selling.ErrSaleNotFound) {
					apiErrors.WriteError(w, apiErrors.ErrSaleNotFound, err.Error(), nil)
					return
				}
				log.ForContext(r.Context()).WithError(err).Error("could not read sale")
				apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "could not read sale", nil)
				return
			}
			draft = draft.StartEdit(sale)

		case FormActionCancel:
			draft = draft.CancelEdit()

		default:
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "unknown form action", map[string]string{"action": req.Action})
			return
		}

		writeJSON(w, r, http.StatusOK, draft)
	}
}

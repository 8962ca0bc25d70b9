package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/selling"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
)

type UpdateSaleRequest struct {
	Entries []domain.Entry `json:"entries"`
}

type AddProductRequest struct {
	Name  string       `json:"name"`
	Price domain.Price `json:"price"`
}

// SubmitSale records the draft as a new sale, or overwrites the sale it is editing
func SubmitSale(seller selling.Seller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft selling.Draft
		if !decodeBody(w, r, &draft) {
			return
		}

		outcome, err := seller.SubmitSale(r.Context(), draft)
		writeOutcome(w, r, outcome, err)
	}
}

func UpdateSale(seller selling.Seller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req UpdateSaleRequest
		if !decodeBody(w, r, &req) {
			return
		}

		outcome, err := seller.UpdateSale(r.Context(), id, req.Entries)
		writeOutcome(w, r, outcome, err)
	}
}

func DeleteSale(seller selling.Seller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		outcome, err := seller.DeleteSale(r.Context(), id)
		writeOutcome(w, r, outcome, err)
	}
}

func AddProduct(seller selling.Seller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddProductRequest
		if !decodeBody(w, r, &req) {
			return
		}

		outcome, err := seller.AddProduct(r.Context(), req.Name, string(req.Price))
		writeOutcome(w, r, outcome, err)
	}
}

func DeleteProduct(seller selling.Seller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		outcome, err := seller.DeleteProduct(r.Context(), id)
		writeOutcome(w, r, outcome, err)
	}
}

// writeOutcome answers a mutation. Rejected input is not an error: the
// outcome reports Written=false with status 200.
func writeOutcome(w http.ResponseWriter, r *http.Request, outcome selling.Outcome, err error) {
	if err == nil {
		writeJSON(w, r, http.StatusOK, outcome)
		return
	}

	var storeErr *selling.StoreError
	switch {
	case errors.Is(err, selling.ErrSaleNotFound):
		apiErrors.WriteError(w, apiErrors.ErrSaleNotFound, err.Error(), nil)
	case errors.As(err, &storeErr):
		apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, storeErr.Error(), outcome)
	default:
		log.ForContext(r.Context()).WithError(err).Error("sale mutation failed")
		apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "could not read the record store", nil)
	}
}

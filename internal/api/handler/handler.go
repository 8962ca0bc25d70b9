// Package handler holds the HTTP handlers and route groups of the dashboard API.
package handler

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.ForContext(r.Context()).WithError(err).Error("error writing response")
	}
}

// decodeBody reads a JSON body into v and answers VAL_001 when it cannot
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.ForContext(r.Context()).WithError(err).Debug("invalid request body")
		apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "invalid request format", nil)
		return false
	}
	return true
}

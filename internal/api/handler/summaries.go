package handler

import (
	"net/http"
	"time"

	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
)

// ListDailySummaries returns stored day totals, newest first, between the
// optional from and to dates
func ListDailySummaries(summaries repository.DailySummaryRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		from, to := query.Get("from"), query.Get("to")

		for _, date := range []string{from, to} {
			if date == "" {
				continue
			}
			if _, err := time.Parse(time.DateOnly, date); err != nil {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "dates must be YYYY-MM-DD", map[string]string{"date": date})
				return
			}
		}

		list, err := summaries.List(r.Context(), from, to)
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("could not list daily summaries")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "could not list daily summaries", nil)
			return
		}

		writeJSON(w, r, http.StatusOK, list)
	}
}

package handler

import (
	"net/http"

	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/selling"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
	"github.com/vfg2006/sales-dashboard-api/pkg/middleware"
)

const (
	publicPath = "/"
	adminPath  = "/admin"
)

// AdminView is the admin dashboard: the view, an empty sale form and the signed in user
type AdminView struct {
	dashboard.View
	Draft selling.Draft  `json:"draft"`
	User  *domain.Claims `json:"user"`
}

func viewState(r *http.Request, fallback dashboard.ViewState) dashboard.ViewState {
	query := r.URL.Query()
	return dashboard.ParseViewState(query.Get("filter"), query.Get("date"), fallback)
}

// PublicDashboard renders every recorded sale, by default across all days
func PublicDashboard(viewer dashboard.Viewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := viewer.Current(r.Context())
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("could not read dashboard snapshot")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "could not read sales", nil)
			return
		}

		writeJSON(w, r, http.StatusOK, viewer.Render(viewState(r, dashboard.PublicDefault()), snapshot))
	}
}

// AdminDashboard renders the admin surface, by default for today
func AdminDashboard(viewer dashboard.Viewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := middleware.SessionFromContext(r.Context())

		snapshot, err := viewer.Current(r.Context())
		if err != nil {
			log.ForContext(r.Context()).WithError(err).Error("could not read dashboard snapshot")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "could not read sales", nil)
			return
		}

		writeJSON(w, r, http.StatusOK, AdminView{
			View:  viewer.Render(viewState(r, dashboard.AdminDefault()), snapshot),
			Draft: selling.NewDraft(),
			User:  claims,
		})
	}
}

package middleware

import (
	"net/http"

	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
)

// LoginPath is where guarded pages send visitors without a session
const LoginPath = "/login"

// RequireSession guards a route. Without a session, page reads are redirected
// to the login route with an empty body and every other method gets 401.
func RequireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := SessionFromContext(r.Context()); ok {
				next.ServeHTTP(w, r)
				return
			}

			log.ForContext(r.Context()).WithField("path", r.URL.Path).Debug("no session on guarded route")

			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Location", LoginPath)
				w.WriteHeader(http.StatusSeeOther)
				return
			}

			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "authentication required", nil)
		})
	}
}

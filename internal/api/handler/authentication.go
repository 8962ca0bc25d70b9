package handler

import (
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
	"github.com/vfg2006/sales-dashboard-api/pkg/middleware"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginDescriptor describes the login form to clients
type LoginDescriptor struct {
	Authenticated bool     `json:"authenticated"`
	Action        string   `json:"action"`
	Method        string   `json:"method"`
	Fields        []string `json:"fields"`
	Redirect      string   `json:"redirect"`
}

// LoginPage answers the login route with the form descriptor
func LoginPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, authenticated := middleware.SessionFromContext(r.Context())

		writeJSON(w, r, http.StatusOK, LoginDescriptor{
			Authenticated: authenticated,
			Action:        middleware.LoginPath,
			Method:        http.MethodPost,
			Fields:        []string{"email", "password"},
			Redirect:      adminPath,
		})
	}
}

func Login(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if !decodeBody(w, r, &req) {
			return
		}

		login, err := service.LoginUser(r.Context(), req.Email, req.Password)
		if err != nil {
			handleLoginError(w, r, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    login.Token,
			Path:     "/",
			Expires:  login.Session.ExpiresAt,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		writeJSON(w, r, http.StatusOK, login)
	}
}

// Logout ends the current session and sends the client to the public dashboard
func Logout(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.SessionFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "user not authenticated", nil)
			return
		}

		if err := service.EndSession(r.Context(), claims.SessionID); err != nil {
			handleLoginError(w, r, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		w.Header().Set("Location", publicPath)
		w.WriteHeader(http.StatusSeeOther)
	}
}

// GetMe returns the profile of the signed in user
func GetMe(service authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.SessionFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "user not authenticated", nil)
			return
		}

		user, err := service.GetUserProfile(r.Context(), claims.UserID)
		if err != nil {
			handleLoginError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, user)
	}
}

func handleLoginError(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *authenticating.AuthError
	if errors.As(err, &authErr) {
		if !authenticating.IsCredentialsError(err) {
			log.ForContext(r.Context()).WithError(err).Error("authentication failed")
		}
		apiErrors.WriteError(w, authErr.Code, authErr.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, authenticating.ErrInvalidCredentials):
		apiErrors.WriteError(w, apiErrors.ErrInvalidCredentials, "invalid credentials", nil)

	case errors.Is(err, authenticating.ErrUserDisabled):
		apiErrors.WriteError(w, apiErrors.ErrUserDisabled, "user disabled", nil)

	case errors.Is(err, authenticating.ErrUserNotFound):
		apiErrors.WriteError(w, apiErrors.ErrUserNotFound, "user not found", nil)

	case authenticating.IsSessionError(err):
		apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "session is no longer valid", nil)

	default:
		log.ForContext(r.Context()).WithError(err).Error("authentication failed")
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "internal error during authentication", nil)
	}
}

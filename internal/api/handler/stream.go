package handler

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vfg2006/sales-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
	"github.com/vfg2006/sales-dashboard-api/pkg/middleware"
)

const (
	eventSnapshot     = "snapshot"
	eventSessionEnded = "session_ended"
)

// PublicStream pushes a rendered view every time sales or products change
func PublicStream(viewer dashboard.Viewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		streamViews(r.Context(), w, r, viewer, viewState(r, dashboard.PublicDefault()))
	}
}

// AdminStream is PublicStream for the admin surface. It ends when the session
// is revoked or its expiry passes.
func AdminStream(viewer dashboard.Viewer, auth authenticating.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.SessionFromContext(r.Context())
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "user not authenticated", nil)
			return
		}

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		var (
			endOnce sync.Once
			reason  string
		)
		ended := make(chan struct{})
		end := func(why string) {
			endOnce.Do(func() {
				reason = why
				close(ended)
			})
			cancel()
		}

		unsubscribe := auth.SubscribeSessionChanges(func(event authenticating.SessionEvent) {
			if event.Type == authenticating.SessionEnded && event.SessionID == claims.SessionID {
				end("session ended")
			}
		})
		defer unsubscribe()

		if claims.ExpiresAt != nil {
			expiry := time.AfterFunc(time.Until(claims.ExpiresAt.Time), func() { end("session expired") })
			defer expiry.Stop()
		}

		if streamViews(ctx, w, r, viewer, viewState(r, dashboard.AdminDefault())) {
			select {
			case <-ended:
				writeEvent(w, eventSessionEnded, []byte("{}"))
				flush(w)
				log.ForContext(r.Context()).WithFields(log.Fields{
					"session_id": claims.SessionID,
					"reason":     reason,
				}).Info("admin stream closed")
			default:
			}
		}
	}
}

// streamViews writes server-sent events until ctx ends or the snapshots stop.
// It reports whether the stream was opened.
func streamViews(ctx context.Context, w http.ResponseWriter, r *http.Request, viewer dashboard.Viewer, state dashboard.ViewState) bool {
	if _, ok := w.(http.Flusher); !ok {
		apiErrors.WriteError(w, apiErrors.ErrStreamUnsupported, "streaming unsupported", nil)
		return false
	}

	snapshots, err := viewer.Watch(ctx)
	if err != nil {
		log.ForContext(ctx).WithError(err).Error("could not subscribe to dashboard")
		apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "could not subscribe to sales", nil)
		return false
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flush(w)

	logger := log.ForContext(r.Context()).WithField("path", r.URL.Path)
	logger.Debug("stream opened")

	for snapshot := range snapshots {
		data, err := json.Marshal(viewer.Render(state, snapshot))
		if err != nil {
			logger.WithError(err).Error("could not encode view")
			continue
		}

		if err := writeEvent(w, eventSnapshot, data); err != nil {
			logger.WithError(err).Debug("stream client went away")
			return true
		}
		flush(w)
	}

	logger.Debug("stream closed")
	return true
}

func writeEvent(w http.ResponseWriter, event string, data []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

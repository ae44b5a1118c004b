package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/rs/zerolog/log"
)

// SessionEventsHandler streams a redirect event to an open page when the
// session changes so that the page may no longer be shown. The page passes
// its own path as ?path=. The stream ends after the first redirect or when
// the server stops.
func (s *Server) SessionEventsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
			return
		}

		path := r.URL.Query().Get("path")
		if !strings.HasPrefix(path, "/") || strings.HasPrefix(path, "//") {
			path = RouteDashboard
		}

		w.Header().Set("Content-Type", contentTypeEventStream)
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		stopWatching := context.AfterFunc(s.stopped, cancel)
		defer stopWatching()

		sent := false
		s.gate.Watch(ctx, func() string { return path }, func(location string) {
			if sent {
				return
			}
			sent = true
			log.Debug().Str("from", path).Str("to", location).Msg("Pushing session redirect")
			fmt.Fprintf(w, "event: redirect\ndata: %s\n\n", location)
			flusher.Flush()
			cancel()
		})
	}
}

// HealthResponse is the body of the liveness endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Session string `json:"session"`
}

// HealthHandler reports liveness and the session phase
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(HealthResponse{
			Status:  "ok",
			Session: string(s.session.Snapshot().Phase()),
		})
	}
}

func isSessionEnded(err error) bool {
	return errors.Is(err, apperrors.ErrSessionExpired)
}

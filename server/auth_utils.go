package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-admin-console/apiclient"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/rs/zerolog/log"
)

// redirectSuccess helper for htmx-aware redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, withParam(path, errorParam, errorMsg))
}

// redirectWithNotice helper for htmx-aware redirects carrying a toast
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	redirectSuccess(w, r, withParam(path, noticeParam, notice))
}

func withParam(path, key, value string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + key + "=" + url.QueryEscape(value)
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// safeReturnPath accepts only local, non public paths as a post login
// destination.
func (s *Server) safeReturnPath(from string) string {
	if from == "" || !strings.HasPrefix(from, "/") || strings.HasPrefix(from, "//") || strings.HasPrefix(from, "/\\") {
		return RouteDashboard
	}
	u, err := url.Parse(from)
	if err != nil || u.Host != "" || s.gate.IsPublic(u.Path) {
		return RouteDashboard
	}
	return from
}

// handleAPIError turns an API failure into navigation. An ended session goes
// to the login page; anything else returns to back with a toast.
func (s *Server) handleAPIError(w http.ResponseWriter, r *http.Request, err error, back string) {
	if errors.Is(err, apperrors.ErrSessionExpired) {
		log.Info().Str("path", r.URL.Path).Msg("Session expired, sending to login")
		redirectSuccess(w, r, RouteLogin)
		return
	}
	log.Err(err).Str("path", r.URL.Path).Msg("API call failed")
	redirectWithError(w, r, back, errorText(err))
}

// errorText is the message shown to the operator for err
func errorText(err error) string {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return http.StatusText(apiErr.StatusCode)
	}
	if errors.Is(err, apperrors.ErrInvalidRequest) {
		msg := err.Error()
		return strings.TrimSuffix(msg, ": "+apperrors.ErrInvalidRequest.Error())
	}
	return "Something went wrong, please try again"
}

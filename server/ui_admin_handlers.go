package server

import (
	"net/http"

	"github.com/jrsteele09/go-admin-console/finetune"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/rs/zerolog/log"
)

// IndexHandler sends the operator to the landing page
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectSuccess(w, r, RouteDashboard)
	}
}

// DashboardData is the overview shown on the landing page
type DashboardData struct {
	FineTunes     finetune.Page
	UserCount     int
	CanSeeUsers   bool
	CheckedOnPage int
}

// DashboardHandler renders the overview
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recent, err := s.api.ListFineTunes(r.Context(), 1, finetune.DefaultPageSize)
		if err != nil {
			s.handleAPIError(w, r, err, RouteProfile)
			return
		}

		data := DashboardData{FineTunes: recent}
		for _, f := range recent.Data {
			if f.IsChecked {
				data.CheckedOnPage++
			}
		}

		if s.session.Snapshot().User.IsAdmin() {
			list, err := s.api.ListUsers(r.Context())
			if err != nil {
				s.handleAPIError(w, r, err, RouteProfile)
				return
			}
			data.UserCount = len(list)
			data.CanSeeUsers = true
		}

		s.renderPage(w, r, http.StatusOK, "dashboard.html", "dashboard", "Dashboard", data)
	}
}

// ProfileHandler shows the signed in user, reloading it from the API
func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := s.api.Profile(r.Context())
		if err != nil {
			if isSessionEnded(err) {
				s.handleAPIError(w, r, err, RouteDashboard)
				return
			}
			log.Err(err).Msg("Failed to reload profile, showing cached copy")
			profile = s.session.Snapshot().User
		}
		s.renderPage(w, r, http.StatusOK, "profile.html", "profile", "Profile", profile)
	}
}

// SettingsData describes the console's own configuration
type SettingsData struct {
	APIURL         string
	Environment    string
	DataFolder     string
	SecureCookies  bool
	SealedStorage  bool
	RequestTimeout string
}

// SettingsHandler shows the console configuration
func (s *Server) SettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := SettingsData{
			APIURL:         s.config.GetAPIURL(),
			Environment:    s.config.GetEnv(),
			DataFolder:     s.config.GetDataFolder(),
			SecureCookies:  s.config.GetSecureCookies(),
			SealedStorage:  s.config.GetStoragePassphrase() != "",
			RequestTimeout: s.config.GetRequestTimeout().String(),
		}
		s.renderPage(w, r, http.StatusOK, "settings.html", "settings", "Settings", data)
	}
}

// PlaceholderHandler renders a public page whose flow lives in the API
func (s *Server) PlaceholderHandler(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, http.StatusOK, "placeholder.html", "", title, nil)
	}
}

// roleOptions and statusOptions fill the user form selects
var (
	roleOptions   = []users.RoleType{users.RoleAdmin, users.RoleUser}
	statusOptions = []users.StatusType{users.StatusActive, users.StatusInactive}
)

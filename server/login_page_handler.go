package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Email string // Preserve email on error
	From  string // Where to return after signing in
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		data := LoginPageData{
			Email: query.Get("email"),
			From:  query.Get(fromParam),
		}
		s.renderPage(w, r, http.StatusOK, "login.html", "", "Sign in", data)
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := r.FormValue("email")
		password := r.FormValue("password")
		from := r.FormValue(fromParam)

		if email == "" || password == "" {
			s.renderLoginError(w, r, "Email and password are required", email, from)
			return
		}

		if _, err := s.api.Login(r.Context(), email, password); err != nil {
			log.Err(err).Msg("Login submission rejected")
			s.renderLoginError(w, r, loginErrorText(err), email, from)
			return
		}

		redirectSuccess(w, r, s.safeReturnPath(from))
	}
}

// LogoutHandler clears the credential and returns to the login page
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.api.Logout()
		redirectSuccess(w, r, RouteLogin)
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email, from string) {
	redirectURL := withParam(RouteLogin, errorParam, errorMsg)
	if email != "" {
		redirectURL = withParam(redirectURL, "email", email)
	}
	if from != "" {
		redirectURL = withParam(redirectURL, fromParam, from)
	}
	redirectSuccess(w, r, redirectURL)
}

func loginErrorText(err error) string {
	msg := errorText(err)
	if msg == http.StatusText(http.StatusUnauthorized) {
		return "Invalid email or password"
	}
	return msg
}

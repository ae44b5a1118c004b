// Package apitest runs an in-process fake of the REST API the console talks
// to. It issues real HS256 JWT pairs, rotates refresh tokens and exposes
// hooks for forcing the failures the console has to survive.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-admin-console/finetune"
	"github.com/jrsteele09/go-admin-console/users"
)

// Seeded operator
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "password"
)

// Server is the fake API
type Server struct {
	*httptest.Server

	users     *userRepo
	fineTunes *fineTuneRepo
	tokens    *issuer
	admin     users.User

	mu    sync.Mutex
	calls map[string]int

	refreshCalls  atomic.Int32
	failRefresh   atomic.Bool
	failProfile   atomic.Bool
	forbidUsers   atomic.Bool
	failFineTunes atomic.Bool
	rejectAll     atomic.Bool
	refreshDelay  atomic.Int64
}

// New starts a fake API seeded with one active admin. It is closed when the
// test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		users:     newUserRepo(),
		fineTunes: newFineTuneRepo(),
		tokens:    newIssuer(),
		calls:     make(map[string]int),
	}
	s.admin = s.users.upsert(users.User{
		FirstName:   "Ada",
		LastName:    "Admin",
		Email:       AdminEmail,
		PhoneNumber: "0123456789",
		Role:        users.RoleAdmin,
		Status:      users.StatusActive,
	}, AdminPassword)

	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", s.login)
	mux.HandleFunc("POST /api/v1/auth/refresh-token", s.refresh)
	mux.HandleFunc("GET /api/v1/auth/profile", s.authenticated(s.profile))

	mux.HandleFunc("GET /api/v1/users", s.authenticated(s.listUsers))
	mux.HandleFunc("POST /api/v1/users", s.authenticated(s.createUser))
	mux.HandleFunc("GET /api/v1/users/{id}", s.authenticated(s.getUser))
	mux.HandleFunc("PATCH /api/v1/users/{id}", s.authenticated(s.updateUser))
	mux.HandleFunc("DELETE /api/v1/users/{id}", s.authenticated(s.deleteUser))

	mux.HandleFunc("GET /api/v1/fine-tune", s.authenticated(s.listFineTunes))
	mux.HandleFunc("GET /api/v1/fine-tune/search", s.authenticated(s.searchFineTunes))
	mux.HandleFunc("POST /api/v1/fine-tune", s.authenticated(s.createFineTune))
	mux.HandleFunc("GET /api/v1/fine-tune/{id}", s.authenticated(s.getFineTune))
	mux.HandleFunc("PATCH /api/v1/fine-tune/{id}", s.authenticated(s.updateFineTune))
	mux.HandleFunc("PATCH /api/v1/fine-tune/{id}/check", s.authenticated(s.checkFineTune))
	mux.HandleFunc("DELETE /api/v1/fine-tune/{id}", s.authenticated(s.deleteFineTune))

	return s.count(mux)
}

// Admin returns the seeded operator
func (s *Server) Admin() users.User {
	return s.admin
}

// AddUser adds a user that can log in with password
func (s *Server) AddUser(user users.User, password string) users.User {
	return s.users.upsert(user, password)
}

// AddFineTune adds a fine-tune record
func (s *Server) AddFineTune(prompt, response string) finetune.FineTune {
	return s.fineTunes.create(finetune.Request{Prompt: prompt, Response: response})
}

// FineTune returns a stored record
func (s *Server) FineTune(id string) (finetune.FineTune, bool) {
	return s.fineTunes.get(id)
}

// IssuePair creates a valid token pair for user without a login call
func (s *Server) IssuePair(user users.User) (string, string) {
	access, refresh, err := s.tokens.issue(&user)
	if err != nil {
		panic(err)
	}
	return access, refresh
}

// ExpireAccessTokens makes every access token issued so far answer 401
func (s *Server) ExpireAccessTokens() {
	s.tokens.expireAccess()
}

// RevokeRefreshTokens makes every refresh token issued so far unusable
func (s *Server) RevokeRefreshTokens() {
	s.tokens.revokeRefresh()
}

// FailRefresh makes the refresh endpoint answer 401
func (s *Server) FailRefresh(fail bool) {
	s.failRefresh.Store(fail)
}

// FailProfile makes the profile endpoint answer 500
func (s *Server) FailProfile(fail bool) {
	s.failProfile.Store(fail)
}

// ForbidUserList makes the user list answer 403
func (s *Server) ForbidUserList(forbid bool) {
	s.forbidUsers.Store(forbid)
}

// FailFineTuneList makes the fine-tune list answer 500
func (s *Server) FailFineTuneList(fail bool) {
	s.failFineTunes.Store(fail)
}

// RejectAllTokens makes every authenticated endpoint answer 401, even with a
// freshly refreshed token.
func (s *Server) RejectAllTokens(reject bool) {
	s.rejectAll.Store(reject)
}

// SetRefreshDelay slows the refresh endpoint down
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.refreshDelay.Store(int64(d))
}

// RefreshCalls is the number of refresh requests received
func (s *Server) RefreshCalls() int {
	return int(s.refreshCalls.Load())
}

// Calls is the number of requests received for method and path
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[r.Method+" "+r.URL.Path]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

type userHandler func(w http.ResponseWriter, r *http.Request, user users.User)

func (s *Server) authenticated(next userHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || s.rejectAll.Load() {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		userID, ok := s.tokens.userForAccess(token)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		user, ok := s.users.get(userID)
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next(w, r, user)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	user, ok := s.users.authenticate(req.Email, req.Password)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if user.Status != users.StatusActive {
		writeError(w, http.StatusForbidden, "Account is inactive")
		return
	}

	access, refresh, err := s.tokens.issue(&user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  access,
		"refresh_token": refresh,
		"user":          user,
	})
}

// refresh answers with camelCase names, as the real API does on this route
func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	s.refreshCalls.Add(1)
	if d := time.Duration(s.refreshDelay.Load()); d > 0 {
		time.Sleep(d)
	}

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}
	if s.failRefresh.Load() {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	userID, ok := s.tokens.redeem(req.RefreshToken)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	user, ok := s.users.get(userID)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	access, refresh, err := s.tokens.issue(&user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"accessToken":  access,
		"refreshToken": refresh,
	})
}

func (s *Server) profile(w http.ResponseWriter, _ *http.Request, user users.User) {
	if s.failProfile.Load() {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) listUsers(w http.ResponseWriter, _ *http.Request, caller users.User) {
	if s.forbidUsers.Load() || caller.Role != users.RoleAdmin {
		writeError(w, http.StatusForbidden, "Forbidden resource")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": s.users.list()})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request, _ users.User) {
	user, ok := s.users.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request, caller users.User) {
	if caller.Role != users.RoleAdmin {
		writeError(w, http.StatusForbidden, "Forbidden resource")
		return
	}
	var req users.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	user := s.users.upsert(users.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		Status:      req.Status,
	}, req.Password)
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, caller users.User) {
	if caller.Role != users.RoleAdmin {
		writeError(w, http.StatusForbidden, "Forbidden resource")
		return
	}
	existing, ok := s.users.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	var req users.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	existing.FirstName = req.FirstName
	existing.LastName = req.LastName
	existing.Email = req.Email
	existing.PhoneNumber = req.PhoneNumber
	existing.Role = req.Role
	existing.Status = req.Status
	writeJSON(w, http.StatusOK, s.users.upsert(existing, ""))
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request, _ users.User) {
	if !s.users.delete(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listFineTunes(w http.ResponseWriter, r *http.Request, _ users.User) {
	if s.failFineTunes.Load() {
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	page, limit := pageParams(r)
	writeJSON(w, http.StatusOK, s.fineTunes.page("", page, limit))
}

func (s *Server) searchFineTunes(w http.ResponseWriter, r *http.Request, _ users.User) {
	page, limit := pageParams(r)
	writeJSON(w, http.StatusOK, s.fineTunes.page(r.URL.Query().Get("keyword"), page, limit))
}

func (s *Server) getFineTune(w http.ResponseWriter, r *http.Request, _ users.User) {
	record, ok := s.fineTunes.get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Fine-tune not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) createFineTune(w http.ResponseWriter, r *http.Request, _ users.User) {
	var req finetune.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	writeJSON(w, http.StatusCreated, s.fineTunes.create(req))
}

func (s *Server) updateFineTune(w http.ResponseWriter, r *http.Request, _ users.User) {
	var req finetune.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	record, ok := s.fineTunes.update(r.PathValue("id"), func(f *finetune.FineTune) {
		f.Prompt = req.Prompt
		f.Response = req.Response
		f.IsChecked = req.IsChecked
	})
	if !ok {
		writeError(w, http.StatusNotFound, "Fine-tune not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) checkFineTune(w http.ResponseWriter, r *http.Request, _ users.User) {
	var req struct {
		IsChecked bool `json:"isChecked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	record, ok := s.fineTunes.update(r.PathValue("id"), func(f *finetune.FineTune) {
		f.IsChecked = req.IsChecked
	})
	if !ok {
		writeError(w, http.StatusNotFound, "Fine-tune not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) deleteFineTune(w http.ResponseWriter, r *http.Request, _ users.User) {
	if !s.fineTunes.delete(r.PathValue("id")) {
		writeError(w, http.StatusNotFound, "Fine-tune not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pageParams(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = finetune.DefaultPageSize
	}
	return page, limit
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"statusCode": status,
		"message":    message,
	})
}

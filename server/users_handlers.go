package server

import (
	"net/http"

	"github.com/jrsteele09/go-admin-console/users"
)

// UsersPageData is the users table with its form options
type UsersPageData struct {
	Users    []users.User
	Roles    []users.RoleType
	Statuses []users.StatusType
}

// UsersListHandler lists all users
func (s *Server) UsersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.api.ListUsers(r.Context())
		if err != nil {
			s.handleAPIError(w, r, err, RouteDashboard)
			return
		}
		data := UsersPageData{Users: list, Roles: roleOptions, Statuses: statusOptions}
		s.renderPage(w, r, http.StatusOK, "users.html", "users", "Users", data)
	}
}

// UserCreateHandler creates a user from the add user form
func (s *Server) UserCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		req := users.CreateUserRequest{
			FirstName:   r.FormValue("firstName"),
			LastName:    r.FormValue("lastName"),
			Email:       r.FormValue("email"),
			PhoneNumber: r.FormValue("phoneNumber"),
			Password:    r.FormValue("password"),
			Role:        users.RoleType(r.FormValue("role")),
			Status:      users.StatusType(r.FormValue("status")),
		}
		if _, err := s.api.CreateUser(r.Context(), req); err != nil {
			s.handleAPIError(w, r, err, RouteUsers)
			return
		}
		redirectWithNotice(w, r, RouteUsers, "User created successfully")
	}
}

// UserUpdateHandler saves the edit user form
func (s *Server) UserUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		req := users.UpdateUserRequest{
			FirstName:   r.FormValue("firstName"),
			LastName:    r.FormValue("lastName"),
			Email:       r.FormValue("email"),
			PhoneNumber: r.FormValue("phoneNumber"),
			Role:        users.RoleType(r.FormValue("role")),
			Status:      users.StatusType(r.FormValue("status")),
		}
		if _, err := s.api.UpdateUser(r.Context(), r.PathValue("id"), req); err != nil {
			s.handleAPIError(w, r, err, RouteUsers)
			return
		}
		redirectWithNotice(w, r, RouteUsers, "User updated successfully")
	}
}

// UserDeleteHandler deletes a user after the confirm dialog
func (s *Server) UserDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.api.DeleteUser(r.Context(), r.PathValue("id")); err != nil {
			s.handleAPIError(w, r, err, RouteUsers)
			return
		}
		redirectWithNotice(w, r, RouteUsers, "User deleted successfully")
	}
}

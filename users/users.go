package users

import (
	"fmt"
	"net/mail"
	"strings"
)

// RoleType represents a platform role
type RoleType string

const (
	RoleAdmin RoleType = "ADMIN" // Can list, create and update users
	RoleUser  RoleType = "USER"  // Regular platform user
)

// StatusType represents whether an account may sign in
type StatusType string

const (
	StatusActive   StatusType = "ACTIVE"
	StatusInactive StatusType = "INACTIVE"
)

// Profile is the signed-in user as returned by the auth endpoints. It is also
// the shape of every row in the users table.
type Profile struct {
	ID          string     `json:"id"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	Role        RoleType   `json:"role"`
	Status      StatusType `json:"status"`
}

// User is a platform user managed through the users endpoints
type User = Profile

// DisplayName returns "First Last", falling back to the email address
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	fullName := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if fullName != "" {
		return fullName
	}
	return p.Email
}

// IsAdmin returns true if the user holds the ADMIN role
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// CreateUserRequest is the payload of POST /api/v1/users
type CreateUserRequest struct {
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	Password    string     `json:"password"`
	Role        RoleType   `json:"role"`
	Status      StatusType `json:"status"`
}

// UpdateUserRequest is the payload of PATCH /api/v1/users/:id
type UpdateUserRequest struct {
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	Role        RoleType   `json:"role"`
	Status      StatusType `json:"status"`
}

// Validate checks the create form the same way the dashboard dialog does:
// names of at least 2 characters, a valid email, a phone number, a password
// of at least 6 characters and known role/status values.
func (r CreateUserRequest) Validate() error {
	if len(strings.TrimSpace(r.FirstName)) < 2 {
		return fmt.Errorf("first name must be at least 2 characters")
	}
	if len(strings.TrimSpace(r.LastName)) < 2 {
		return fmt.Errorf("last name must be at least 2 characters")
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if strings.TrimSpace(r.PhoneNumber) == "" {
		return fmt.Errorf("phone number is required")
	}
	if len(r.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return validateRoleStatus(r.Role, r.Status)
}

// Validate checks the edit form: every field is required
func (r UpdateUserRequest) Validate() error {
	if strings.TrimSpace(r.FirstName) == "" {
		return fmt.Errorf("first name is required")
	}
	if strings.TrimSpace(r.LastName) == "" {
		return fmt.Errorf("last name is required")
	}
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if strings.TrimSpace(r.PhoneNumber) == "" {
		return fmt.Errorf("phone number is required")
	}
	return validateRoleStatus(r.Role, r.Status)
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

func validateRoleStatus(role RoleType, status StatusType) error {
	switch role {
	case RoleAdmin, RoleUser:
	default:
		return fmt.Errorf("unknown role %q", role)
	}
	switch status {
	case StatusActive, StatusInactive:
	default:
		return fmt.Errorf("unknown status %q", status)
	}
	return nil
}

package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/jrsteele09/go-admin-console/users"
	"github.com/rs/zerolog/log"
)

// ListUsers returns every platform user. An operator without permission to
// list users gets an empty list rather than an error.
func (c *Client) ListUsers(ctx context.Context) ([]users.User, error) {
	list := []users.User{}
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   UsersPath,
		decode: func(body []byte) error {
			return decodeEnvelope(body, &list, "data")
		},
	})

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusForbidden {
		log.Info().Msg("Permission denied listing users, showing none")
		return []users.User{}, nil
	}
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []users.User{}
	}
	return list, nil
}

// GetUser fetches one user
func (c *Client) GetUser(ctx context.Context, id string) (*users.User, error) {
	var user users.User
	if err := c.do(ctx, call{
		method: http.MethodGet,
		path:   userPath(id),
		decode: func(body []byte) error {
			return decodeEnvelope(body, &user, "data", "user")
		},
	}); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser validates the request locally and creates the user
func (c *Client) CreateUser(ctx context.Context, req users.CreateUserRequest) (*users.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "%s", err)
	}

	var user users.User
	if err := c.do(ctx, call{
		method: http.MethodPost,
		path:   UsersPath,
		body:   req,
		decode: func(body []byte) error {
			return decodeEnvelope(body, &user, "data", "user")
		},
	}); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser validates the request locally and patches the user
func (c *Client) UpdateUser(ctx context.Context, id string, req users.UpdateUserRequest) (*users.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "%s", err)
	}

	user := users.User{ID: id}
	if err := c.do(ctx, call{
		method: http.MethodPatch,
		path:   userPath(id),
		body:   req,
		decode: func(body []byte) error {
			return decodeEnvelope(body, &user, "data", "user")
		},
	}); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes the user
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		path:   userPath(id),
	})
}

func userPath(id string) string {
	return UsersPath + "/" + url.PathEscape(id)
}

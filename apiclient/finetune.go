package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-admin-console/finetune"
	apperrors "github.com/jrsteele09/go-admin-console/internal/errors"
	"github.com/rs/zerolog/log"
)

// ListFineTunes returns one page of records. Zero page or limit leaves the
// choice to the API. A server error is shown as an empty page.
func (c *Client) ListFineTunes(ctx context.Context, page, limit int) (finetune.Page, error) {
	result, err := c.fineTunePage(ctx, FineTunePath, pageQuery(url.Values{}, page, limit), page, limit)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusInternalServerError {
		log.Warn().Err(err).Msg("Fine-tune list failed, showing an empty page")
		empty := finetune.Page{}
		empty.Normalise(page, limit)
		return empty, nil
	}
	return result, err
}

// SearchFineTunes returns one page of records matching keyword
func (c *Client) SearchFineTunes(ctx context.Context, keyword string, page, limit int) (finetune.Page, error) {
	query := url.Values{}
	query.Set("keyword", keyword)
	return c.fineTunePage(ctx, FineTunePath+"/search", pageQuery(query, page, limit), page, limit)
}

func (c *Client) fineTunePage(ctx context.Context, path string, query url.Values, page, limit int) (finetune.Page, error) {
	var result finetune.Page
	err := c.do(ctx, call{
		method: http.MethodGet,
		path:   path,
		query:  query,
		decode: func(body []byte) error {
			return json.Unmarshal(body, &result)
		},
	})
	if err != nil {
		return finetune.Page{}, err
	}
	result.Normalise(page, limit)
	return result, nil
}

// GetFineTune fetches one record
func (c *Client) GetFineTune(ctx context.Context, id string) (*finetune.FineTune, error) {
	var record finetune.FineTune
	if err := c.do(ctx, call{
		method: http.MethodGet,
		path:   fineTunePath(id),
		decode: func(body []byte) error {
			return decodeEnvelope(body, &record, "data")
		},
	}); err != nil {
		return nil, err
	}
	return &record, nil
}

// CreateFineTune validates the request locally and creates the record
func (c *Client) CreateFineTune(ctx context.Context, req finetune.Request) (*finetune.FineTune, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "%s", err)
	}
	return c.writeFineTune(ctx, http.MethodPost, FineTunePath, req, finetune.FineTune{})
}

// UpdateFineTune validates the request locally and patches the record
func (c *Client) UpdateFineTune(ctx context.Context, id string, req finetune.Request) (*finetune.FineTune, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidRequest, "%s", err)
	}
	return c.writeFineTune(ctx, http.MethodPatch, fineTunePath(id), req, finetune.FineTune{ID: id})
}

// SetFineTuneChecked toggles the reviewed flag of a record
func (c *Client) SetFineTuneChecked(ctx context.Context, id string, checked bool) error {
	return c.do(ctx, call{
		method: http.MethodPatch,
		path:   fineTunePath(id) + "/check",
		body:   struct {
			IsChecked bool `json:"isChecked"`
		}{IsChecked: checked},
	})
}

// DeleteFineTune removes the record
func (c *Client) DeleteFineTune(ctx context.Context, id string) error {
	return c.do(ctx, call{
		method: http.MethodDelete,
		path:   fineTunePath(id),
	})
}

func (c *Client) writeFineTune(ctx context.Context, method, path string, req finetune.Request, record finetune.FineTune) (*finetune.FineTune, error) {
	if err := c.do(ctx, call{
		method: method,
		path:   path,
		body:   req,
		decode: func(body []byte) error {
			return decodeEnvelope(body, &record, "data")
		},
	}); err != nil {
		return nil, err
	}
	return &record, nil
}

func pageQuery(query url.Values, page, limit int) url.Values {
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return query
}

func fineTunePath(id string) string {
	return FineTunePath + "/" + url.PathEscape(id)
}

package finetune

import (
	"fmt"
	"strings"
	"time"
)

// DefaultPageSize is the number of rows shown per page in the dashboard table
const DefaultPageSize = 10

// FineTune is one prompt/response training example
type FineTune struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	IsChecked bool      `json:"isChecked"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Request is the payload for creating or updating a fine-tune record
type Request struct {
	Prompt    string `json:"prompt"`
	Response  string `json:"response"`
	IsChecked bool   `json:"isChecked"`
}

// Validate requires a non-empty prompt and response
func (r Request) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	if strings.TrimSpace(r.Response) == "" {
		return fmt.Errorf("response is required")
	}
	return nil
}

// Page is one page of the paginated list and search endpoints
type Page struct {
	Data       []FineTune `json:"data"`
	Total      int        `json:"total"`
	Page       int        `json:"page,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	TotalPages int        `json:"totalPages,omitempty"`
}

// Normalise fills in the fields a server may omit. TotalPages falls back to
// ceil(Total/Limit).
func (p *Page) Normalise(page, limit int) {
	if p.Data == nil {
		p.Data = []FineTune{}
	}
	if p.Page == 0 {
		p.Page = page
	}
	if p.Limit == 0 {
		p.Limit = limit
	}
	if p.TotalPages == 0 && p.Limit > 0 {
		p.TotalPages = (p.Total + p.Limit - 1) / p.Limit
	}
}

// HasNext reports whether a following page exists
func (p Page) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrevious reports whether a preceding page exists
func (p Page) HasPrevious() bool {
	return p.Page > 1
}

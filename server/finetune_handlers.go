package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-admin-console/finetune"
)

// FineTunePageData is one page of the fine-tune table
type FineTunePageData struct {
	Page    finetune.Page
	Keyword string
}

// FineTuneListHandler lists or searches fine-tune records, ten per page
func (s *Server) FineTuneListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keyword := strings.TrimSpace(r.URL.Query().Get("q"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page < 1 {
			page = 1
		}

		var (
			result finetune.Page
			err    error
		)
		if keyword != "" {
			result, err = s.api.SearchFineTunes(r.Context(), keyword, page, finetune.DefaultPageSize)
		} else {
			result, err = s.api.ListFineTunes(r.Context(), page, finetune.DefaultPageSize)
		}
		if err != nil {
			s.handleAPIError(w, r, err, RouteDashboard)
			return
		}

		data := FineTunePageData{Page: result, Keyword: keyword}
		s.renderPage(w, r, http.StatusOK, "finetune.html", "fine-tune", "Fine-tune data", data)
	}
}

// FineTuneCreateHandler creates a record from the add form
func (s *Server) FineTuneCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := fineTuneForm(w, r)
		if !ok {
			return
		}
		if _, err := s.api.CreateFineTune(r.Context(), req); err != nil {
			s.handleAPIError(w, r, err, RouteFineTunes)
			return
		}
		redirectWithNotice(w, r, RouteFineTunes, "Fine-tune created successfully")
	}
}

// FineTuneUpdateHandler saves the edit form
func (s *Server) FineTuneUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := fineTuneForm(w, r)
		if !ok {
			return
		}
		back := fineTuneReturnPath(r)
		if _, err := s.api.UpdateFineTune(r.Context(), r.PathValue("id"), req); err != nil {
			s.handleAPIError(w, r, err, back)
			return
		}
		redirectWithNotice(w, r, back, "Fine-tune updated successfully")
	}
}

// FineTuneCheckHandler toggles the reviewed flag from the table
func (s *Server) FineTuneCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		checked := r.FormValue("isChecked") == "true"
		back := fineTuneReturnPath(r)
		if err := s.api.SetFineTuneChecked(r.Context(), r.PathValue("id"), checked); err != nil {
			s.handleAPIError(w, r, err, back)
			return
		}
		redirectSuccess(w, r, back)
	}
}

// FineTuneDeleteHandler deletes a record after the confirm dialog
func (s *Server) FineTuneDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		back := fineTuneReturnPath(r)
		if err := s.api.DeleteFineTune(r.Context(), r.PathValue("id")); err != nil {
			s.handleAPIError(w, r, err, back)
			return
		}
		redirectWithNotice(w, r, back, "Fine-tune deleted successfully")
	}
}

func fineTuneForm(w http.ResponseWriter, r *http.Request) (finetune.Request, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return finetune.Request{}, false
	}
	return finetune.Request{
		Prompt:    r.FormValue("prompt"),
		Response:  r.FormValue("response"),
		IsChecked: r.FormValue("isChecked") == "true" || r.FormValue("isChecked") == "on",
	}, true
}

// fineTuneReturnPath keeps the table on the page and search the form came from
func fineTuneReturnPath(r *http.Request) string {
	query := url.Values{}
	if q := strings.TrimSpace(r.FormValue("q")); q != "" {
		query.Set("q", q)
	}
	if page, err := strconv.Atoi(r.FormValue("page")); err == nil && page > 1 {
		query.Set("page", strconv.Itoa(page))
	}
	if len(query) == 0 {
		return RouteFineTunes
	}
	return RouteFineTunes + "?" + query.Encode()
}

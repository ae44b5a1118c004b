package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/jrsteele09/go-admin-console/users"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

const layoutTemplate = "layout.html"

// pageTemplates are rendered inside the layout
var pageTemplates = []string{
	"login.html",
	"loading.html",
	"placeholder.html",
	"dashboard.html",
	"users.html",
	"finetune.html",
	"profile.html",
	"settings.html",
}

var templateFuncs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// parsePages parses every page together with the shared layout
func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		tmpl, err := template.New(layoutTemplate).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), layoutTemplate, name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// PageData is the model every page is rendered with
type PageData struct {
	AppName    string
	Title      string
	ActivePage string
	Path       string
	User       *users.Profile
	Error      string
	Notice     string
	Content    any
}

// renderPage renders a page in the layout with the flash messages from the
// query string.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, page, activePage, title string, content any) {
	tmpl, ok := s.templates[page]
	if !ok {
		http.Error(w, "Failed to load page template", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	data := PageData{
		AppName:    s.config.GetAppName(),
		Title:      title,
		ActivePage: activePage,
		Path:       r.URL.Path,
		User:       s.session.Snapshot().User,
		Error:      query.Get(errorParam),
		Notice:     query.Get(noticeParam),
		Content:    content,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		log.Err(err).Str("page", page).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"travelog/internal/markdown"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pageNames = []string{"landing", "login", "register", "article", "article_form", "error"}

// views holds one parsed template tree per page, each sharing the
// layout and partials.
type views struct {
	pages map[string]*template.Template
}

func newViews() (*views, error) {
	funcs := template.FuncMap{
		"chromaCSS": markdown.ChromaCSS,
	}

	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.tmpl").Funcs(funcs).ParseFS(
			templateFS,
			"templates/layout.tmpl",
			"templates/partials.tmpl",
			"templates/"+name+".tmpl",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s templates: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &views{pages: pages}, nil
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (v *views) render(w http.ResponseWriter, status int, name string, data any) error {
	tmpl, ok := v.pages[name]
	if !ok {
		return fmt.Errorf("unknown page template %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.tmpl", data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	setNoStore(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Package web holds the server-rendered pages and the renderer that plugs
// them into Echo.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

const baseTemplate = "base.html"

// Renderer executes a page inside the base layout. Pages are parsed once
// at construction.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page under templates/ together with the base
// layout.
func NewRenderer() (*Renderer, error) {
	base, err := template.ParseFS(templateFS, "templates/"+baseTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse base template: %w", err)
	}
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		page := path.Base(name)
		if page == baseTemplate {
			continue
		}
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, name); err != nil {
			return nil, fmt.Errorf("parse template %q: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, baseTemplate, data)
}

package server

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/jrsteele09/go-station-dashboard/dashboard"
	"github.com/jrsteele09/go-station-dashboard/stations"
)

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

const layoutTemplate = "layout.html"

// Pages rendered inside layout.html. Each defines "title" and "content".
var pageTemplates = []string{
	"login.html",
	"signup.html",
	"forgot_password.html",
	"dashboard.html",
}

var templateFuncs = template.FuncMap{
	"statuses": func() []stations.Status { return stations.Statuses },
	"add":      func(a, b int) int { return a + b },
	"sub":      func(a, b int) int { return a - b },
	"statusLabel": func(filter string) string {
		if filter == dashboard.StatusAll {
			return "All statuses"
		}
		return stations.Status(filter).Label()
	},
}

// templateSet holds one parsed tree per page so that every page can define
// its own "content" block.
type templateSet struct {
	pages map[string]*template.Template
}

func loadTemplates() (*templateSet, error) {
	set := &templateSet{pages: make(map[string]*template.Template, len(pageTemplates))}
	for _, page := range pageTemplates {
		tmpl, err := ParseTemplate(page)
		if err != nil {
			return nil, err
		}
		set.pages[page] = tmpl
	}
	return set, nil
}

// ParseTemplate parses page together with the shared layout
func ParseTemplate(page string) (*template.Template, error) {
	tmpl, err := template.New(page).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), layoutTemplate, page)
	if err != nil {
		return nil, fmt.Errorf("[ParseTemplate] %s: %w", page, err)
	}
	return tmpl, nil
}

// render executes the named template of page; name is the layout for a full
// page or a block name for an HTMX fragment.
func (t *templateSet) render(w io.Writer, page, name string, data any) error {
	tmpl, ok := t.pages[page]
	if !ok {
		return fmt.Errorf("[templateSet render] unknown page %s", page)
	}
	return tmpl.ExecuteTemplate(w, name, data)
}

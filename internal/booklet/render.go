package booklet

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rexgen/internal/conflict"
)

// defaultTemplates are the built-in booklet templates. A templates
// directory on disk overrides them file by file.
//
//go:embed templates
var defaultTemplates embed.FS

// Renderer renders the booklet, index, and error pages. dir, when
// non-empty, points at a directory whose files shadow the embedded
// defaults.
type Renderer struct {
	dir string
}

// NewRenderer returns a Renderer with optional template overrides from dir.
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// source returns the raw bytes for a template file, preferring the override
// directory.
func (r *Renderer) source(name string) ([]byte, error) {
	if r.dir != "" {
		if data, err := os.ReadFile(filepath.Join(r.dir, name)); err == nil {
			return data, nil
		}
	}
	return defaultTemplates.ReadFile("templates/" + name)
}

func (r *Renderer) load(name string) (*template.Template, error) {
	data, err := r.source(name)
	if err != nil {
		return nil, fmt.Errorf("template %s: %w", name, err)
	}
	return template.New(name).Funcs(funcs).Parse(string(data))
}

var funcs = template.FuncMap{
	"formatWhen": FormatWhen,
	"dayTitle": func(key string) string {
		day, err := time.Parse(dateKey, key)
		if err != nil {
			return key
		}
		return day.Format("Monday, January 2")
	},
	"join": func(parts []string) string { return strings.Join(parts, ", ") },
}

// pageData feeds the outer page shell, template.html.
type pageData struct {
	Title   string
	Content template.HTML
}

// renderPage wraps already-rendered content in the page shell.
func (r *Renderer) renderPage(title string, content template.HTML) (string, error) {
	tpl, err := r.load("template.html")
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, pageData{Title: title, Content: content}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderBooklet renders guide.html with the derived booklet grouping.
func (r *Renderer) RenderBooklet(b *Booklet) (string, error) {
	tpl, err := r.load("guide.html")
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, b); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// errorsData feeds the errors.html fragment.
type errorsData struct {
	Keys   []string
	Report *conflict.Report
}

// RenderErrors renders the grouped error report page. Always fully
// rendered; a large error count never suppresses other output.
func (r *Renderer) RenderErrors(report *conflict.Report, name string) (string, error) {
	tpl, err := r.load("errors.html")
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, errorsData{Keys: report.Keys(), Report: report}); err != nil {
		return "", err
	}
	return r.renderPage(name+" Event Errors", template.HTML(buf.String()))
}

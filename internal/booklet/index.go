package booklet

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// RenderIndex renders the homepage from index.md: markdown body through
// goldmark, front-matter metadata (title) into the page shell.
func (r *Renderer) RenderIndex() (string, error) {
	source, err := r.source("index.md")
	if err != nil {
		return "", err
	}

	md := goldmark.New(goldmark.WithExtensions(meta.Meta))

	var buf bytes.Buffer
	ctx := parser.NewContext()
	if err := md.Convert(source, &buf, parser.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("index.md: %w", err)
	}

	title := ""
	if v, ok := meta.Get(ctx)["title"]; ok {
		title = fmt.Sprint(v)
	}

	return r.renderPage(title, template.HTML(buf.String()))
}

// Package templates renders the transactional email layouts embedded in the
// binary. Every layout has an HTML and a plain text part.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
)

//go:embed *.html *.txt
var files embed.FS

// trustedSuffix marks data keys holding markup that was escaped upstream.
const trustedSuffix = "HTML"

// Renderer executes the embedded layouts.
type Renderer struct {
	html *htmltemplate.Template
	text *texttemplate.Template
}

// NewRenderer parses every embedded layout.
func NewRenderer() (*Renderer, error) {
	html, err := htmltemplate.ParseFS(files, "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse html layouts: %w", err)
	}
	text, err := texttemplate.ParseFS(files, "*.txt")
	if err != nil {
		return nil, fmt.Errorf("parse text layouts: %w", err)
	}
	return &Renderer{html: html, text: text}, nil
}

// Has reports whether a layout called name exists.
func (r *Renderer) Has(name string) bool {
	return r.html.Lookup(name+".html") != nil && r.text.Lookup(name+".txt") != nil
}

// Render executes both parts of layout name. Values whose key ends in "HTML"
// are inserted into the HTML part without escaping.
func (r *Renderer) Render(name string, data map[string]string) (html, text string, err error) {
	htmlData := make(map[string]any, len(data))
	textData := make(map[string]any, len(data))
	for k, v := range data {
		textData[k] = v
		if strings.HasSuffix(k, trustedSuffix) {
			htmlData[k] = htmltemplate.HTML(v) //nolint:gosec // escaped by the producer
			continue
		}
		htmlData[k] = v
	}

	var hb, tb bytes.Buffer
	if err := r.html.ExecuteTemplate(&hb, name+".html", htmlData); err != nil {
		return "", "", fmt.Errorf("render %s.html: %w", name, err)
	}
	if err := r.text.ExecuteTemplate(&tb, name+".txt", textData); err != nil {
		return "", "", fmt.Errorf("render %s.txt: %w", name, err)
	}
	return hb.String(), tb.String(), nil
}

package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"sync"
	texttemplate "text/template"

	"contestdraw/internal/domain"
)

//go:embed templates/*
var templateFS embed.FS

type executor interface {
	Execute(w io.Writer, data any) error
}

// templateCache parses each embedded file once and keeps the result.
type templateCache[T executor] struct {
	mu    sync.Mutex
	byKey map[string]T
	parse func(name, src string) (T, error)
}

func newTemplateCache[T executor](parse func(name, src string) (T, error)) *templateCache[T] {
	return &templateCache[T]{byKey: make(map[string]T), parse: parse}
}

func (c *templateCache[T]) get(name string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.byKey[name]; ok {
		return t, nil
	}
	var zero T
	raw, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		return zero, err
	}
	t, err := c.parse(name, string(raw))
	if err != nil {
		return zero, err
	}
	c.byKey[name] = t
	return t, nil
}

func (c *templateCache[T]) execute(name string, data any) (string, error) {
	t, err := c.get(name)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// templateRenderer implements domain.EmailTemplateRenderer over the embedded templates.
// A message kind "winner" uses winner_subject.txt, winner.html and winner.txt.
type templateRenderer struct {
	html *templateCache[*template.Template]
	text *templateCache[*texttemplate.Template]
}

// NewTemplateRenderer returns an EmailTemplateRenderer backed by the embedded templates folder.
func NewTemplateRenderer() domain.EmailTemplateRenderer {
	return &templateRenderer{
		html: newTemplateCache(func(name, src string) (*template.Template, error) {
			return template.New(name).Option("missingkey=error").Parse(src)
		}),
		text: newTemplateCache(func(name, src string) (*texttemplate.Template, error) {
			return texttemplate.New(name).Option("missingkey=error").Parse(src)
		}),
	}
}

func (r *templateRenderer) Render(templateName string, data any) (subject, htmlBody, textBody string, err error) {
	if subject, err = r.text.execute(templateName+"_subject.txt", data); err != nil {
		return "", "", "", fmt.Errorf("render subject: %w", err)
	}
	if htmlBody, err = r.html.execute(templateName+".html", data); err != nil {
		return "", "", "", fmt.Errorf("render html: %w", err)
	}
	if textBody, err = r.text.execute(templateName+".txt", data); err != nil {
		return "", "", "", fmt.Errorf("render text: %w", err)
	}
	return strings.TrimSpace(subject), htmlBody, textBody, nil
}

package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Имена страниц
const (
	PageIndex   = "index"
	PagePrivacy = "privacy"
	PageSuccess = "success"
	PageOCR     = "ocr"
	PageError   = "error"
)

var pages = []string{PageIndex, PagePrivacy, PageSuccess, PageOCR, PageError}

// Renderer HTML страницы из встроенных шаблонов
type Renderer struct {
	pages map[string]*template.Template
}

// New разбирает все шаблоны один раз при старте
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}

	for _, page := range pages {
		t, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		r.pages[page] = t
	}

	return r, nil
}

// Render пишет страницу page со статусом status.
// Страница собирается в буфер, чтобы ошибка шаблона не оставила половину ответа.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

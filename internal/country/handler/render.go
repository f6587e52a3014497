package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"pageHref": func(n int) string {
		return "/?page=" + strconv.Itoa(n) + "#top"
	},
}

// renderer holds one parsed template set per page, each combined with the
// shared layout.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() *renderer {
	r := &renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{"index.html", "detail.html", "error.html"} {
		r.pages[page] = template.Must(template.New("layout.html").
			Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/cards.html", "templates/"+page))
	}
	return r
}

// render executes page into a buffer first so a template failure never
// leaves a half-written response.
func (r *renderer) render(w http.ResponseWriter, status int, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %s", page)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

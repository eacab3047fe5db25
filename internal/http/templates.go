package http

import (
	"bytes"
	"embed"
	"html/template"
	"time"

	"github.com/nurpe/licitaciones-portal/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"number":   view.Number,
		"money":    func(v float64) string { return view.Currency(&v, "") },
		"longDate": func(t time.Time) string { return view.LongDate(t) },
		"closing":  view.ClosingLabel,
	}
	return template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

func renderTemplate(tpl *template.Template, name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

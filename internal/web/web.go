// Package web holds the server-rendered page templates.
package web

import (
	"embed"
	"html/template"
	"time"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/utils"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var files embed.FS

// Funcs are the helpers available inside every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"money": utils.FormatMoney,
		"date": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return utils.FormatDate(t)
		},
		"datetime": utils.FormatDateTime,
		"can": func(a domain.Actor, c string) bool {
			return a.Role.Can(domain.Capability(c))
		},
		"isZero": func(d decimal.Decimal) bool { return d.IsZero() },
		"add":    func(a, b int) int { return a + b },
	}
}

// Templates parses every page. Each file defines one named template.
func Templates() (*template.Template, error) {
	return template.New("pages").Funcs(Funcs()).ParseFS(files, "templates/*.html")
}

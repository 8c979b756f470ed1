package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"price": formatPrice,
}).ParseFS(templatesFS, "templates/*.html"))

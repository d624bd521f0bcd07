package core

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageTemplates parses the embedded pages. Called once per router build.
func pageTemplates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

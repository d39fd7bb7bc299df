package handle

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Templates parses the embedded page templates for gin's HTML renderer.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(TemplateFuncs).ParseFS(templatesFS, "templates/*.html"))
}

package site

import (
	"embed"
	"html/template"
)

//go:embed static/index.html
var staticFS embed.FS

// index is the landing page template.
var index = template.Must(template.ParseFS(staticFS, "static/index.html"))

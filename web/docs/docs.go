// Package docs serves an interactive API reference for the OpenAPI document.
package docs

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/JaimeStill/medora/pkg/module"
)

// ScriptURL is the Scalar API reference bundle loaded by the page.
const ScriptURL = "https://cdn.jsdelivr.net/npm/@scalar/api-reference"

//go:embed index.html
var staticFS embed.FS

var page = template.Must(template.ParseFS(staticFS, "index.html"))

// NewModule creates a module at prefix that renders the API reference for the
// spec served at specURL.
func NewModule(prefix, title, specURL string) *module.Module {
	data := map[string]string{
		"Title":     title,
		"SpecURL":   specURL,
		"ScriptURL": ScriptURL,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		page.Execute(w, data)
	})

	return module.New(prefix, mux)
}

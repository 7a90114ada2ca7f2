// Package swagger serves the OpenAPI description of the scoring API and a
// ReDoc page that renders it.
package swagger

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/okian/housescore/internal/domain/schema"
)

// Error constants.
var (
	ErrServe = errors.New("swagger serve failed")
)

// Register attaches the API documentation routes to mux.
// Routes:
//
//	GET /api-docs      -> ReDoc HTML
//	GET /swagger.json  -> OpenAPI document generated from sc
//	GET /openapi.yaml  -> the same document as YAML
func Register(_ context.Context, mux *http.ServeMux, sc *schema.Schema) {
	if mux == nil {
		panic("mux is nil")
	}
	if sc == nil {
		sc = schema.HousePrices()
	}

	var (
		once     sync.Once
		jsonDoc  []byte
		yamlDoc  []byte
		buildErr error
	)
	build := func() error {
		once.Do(func() {
			doc := Document(sc)
			if jsonDoc, buildErr = MarshalJSON(doc); buildErr != nil {
				return
			}
			yamlDoc, buildErr = MarshalYAML(doc)
		})
		return buildErr
	}

	mux.HandleFunc("/api-docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})

	mux.HandleFunc("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
		if err := build(); err != nil {
			http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write(jsonDoc)
	})

	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		if err := build(); err != nil {
			http.Error(w, ErrServe.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(yamlDoc)
	})
}

// Minimal HTML that loads ReDoc and renders /swagger.json.
const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>House Price Scoring API – ReDoc</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
    <script>Redoc.init('/swagger.json', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`

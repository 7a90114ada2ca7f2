// Package site serves the landing page of the scoring service.
package site

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/okian/housescore/internal/domain/types"
)

// Error constants
var (
	ErrRender = errors.New("landing page render failed")
)

// Title of the landing page.
const Title = "House Price Scoring"

// ModelInfoFunc reports the loaded model, if any.
type ModelInfoFunc func() (types.ModelInfo, bool)

// Register attaches the landing page to mux at /.
func Register(_ context.Context, mux *http.ServeMux, info ModelInfoFunc) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", NewRootHandler(info))
}

// RootHandler handles root path requests
type RootHandler struct {
	info ModelInfoFunc
}

// NewRootHandler creates a new root handler
func NewRootHandler(info ModelInfoFunc) *RootHandler {
	if info == nil {
		info = func() (types.ModelInfo, bool) { return types.ModelInfo{}, false }
	}
	return &RootHandler{info: info}
}

type page struct {
	Title string
	Ready bool
	Model types.ModelInfo
}

// ServeHTTP renders the landing page for GET / and 404s everything else.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" || r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	m, ok := h.info()

	var buf bytes.Buffer
	if err := index.Execute(&buf, page{Title: Title, Ready: ok, Model: m}); err != nil {
		http.Error(w, ErrRender.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// Package site serves the embedded stylesheet and page script.
package site

import (
	"context"
	"errors"
	"net/http"
)

// Prefix is the URL path the static files are served under.
const Prefix = "/static/"

// Error constants
var (
	ErrServe = errors.New("static site serve failed")
)

// Register attaches the embedded static files to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle(Prefix, Handler())
}

// Handler serves the embedded files below Prefix. Directory listings are
// not exposed.
func Handler() http.Handler {
	files := http.StripPrefix(Prefix, http.FileServer(FS()))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.NotFound(w, r)
			return
		}
		if r.URL.Path == Prefix || r.URL.Path[len(r.URL.Path)-1] == '/' {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		files.ServeHTTP(w, r)
	})
}

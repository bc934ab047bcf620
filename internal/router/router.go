package router

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/parisxmas/OxiDB/OxiAnketa/internal/handler"
	mw "github.com/parisxmas/OxiDB/OxiAnketa/internal/middleware"
)

type Options struct {
	Log        *zap.Logger
	CORSOrigin string
	// StaticDir serves a built client bundle with index.html fallback.
	// Empty disables static serving.
	StaticDir string
}

func New(
	opts Options,
	appH *handler.ApplicationHandler,
	formH *handler.FormHandler,
	diagH *handler.DiagnosticHandler,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Recovery(opts.Log))
	r.Use(mw.Logger(opts.Log))
	r.Use(mw.CORS(opts.CORSOrigin))

	r.Route("/api", func(r chi.Router) {
		r.Post("/application", appH.Create)
		r.Get("/application/{id}", appH.Get)
		r.Get("/form", formH.Get)
		r.Get("/test", diagH.Test)
	})

	if opts.StaticDir != "" {
		r.NotFound(spa(opts.StaticDir))
	} else {
		r.NotFound(notFound)
	}
	r.MethodNotAllowed(notFound)

	return r
}

func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"message":"Route not found"}` + "\n"))
}

func spa(dir string) http.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") || (r.Method != http.MethodGet && r.Method != http.MethodHead) {
			notFound(w, r)
			return
		}
		p := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+r.URL.Path)))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, index)
	}
}

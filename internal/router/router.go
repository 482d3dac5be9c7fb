package router

import (
	"log/slog"
	"net/http"
	"time"

	"ArtForge/config"
	"ArtForge/internal/handler"
	"ArtForge/internal/synth"

	"github.com/gorilla/mux"
)

func setCORSHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(log *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("request", "method", r.Method, "uri", r.RequestURI, "duration", time.Since(start))
		})
	}
}

// NewRouter serves the generated collection under outputDir. finder may be
// nil, in which case trait search answers 503. CORS wraps the whole router so
// preflight requests are answered before route matching.
func NewRouter(c config.Collection, outputDir string, finder handler.ArtifactFinder, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	layout := synth.LayoutFor(c, outputDir)

	r := mux.NewRouter()
	r.Use(loggingMiddleware(log))

	r.HandleFunc("/artifacts/{id:[0-9]+}", handler.GetMetadata(layout, log)).Methods("GET")
	r.HandleFunc("/artifacts/{id:[0-9]+}/image", handler.GetImage(layout)).Methods("GET")
	r.HandleFunc("/shards/{shard:[0-9]+}", handler.GetShard(layout, log)).Methods("GET")
	r.HandleFunc("/search", handler.SearchArtifacts(finder, c.Name, c.BaseURL, layout, log)).Methods("GET")

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(outputDir))))

	return setCORSHeaders(r)
}

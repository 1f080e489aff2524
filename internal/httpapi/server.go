// Package httpapi is the HTTP façade over the cache engine — a thin
// request/response translator, not part of the core.
package httpapi

import (
	"embed"
	"net/http"

	"go.uber.org/zap"

	"github.com/flowcache/flowcache/internal/cacheengine"
	"github.com/flowcache/flowcache/internal/telemetry"
)

//go:embed static/index.html
var staticFiles embed.FS

// Server adapts an *cacheengine.Engine onto net/http.
type Server struct {
	engine *cacheengine.Engine
	log    *zap.Logger
}

// NewServer constructs the adapter. log may be nil, in which case a no-op
// logger is used.
func NewServer(engine *cacheengine.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{engine: engine, log: log}
}

// Mux builds the request router, with every cache route wrapped in
// telemetry.Instrument.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", telemetry.MetricsHandler())
	mux.Handle("/put", telemetry.Instrument("put", http.HandlerFunc(s.handlePut)))
	mux.Handle("/get", telemetry.Instrument("get", http.HandlerFunc(s.handleGet)))
	mux.Handle("/delete", telemetry.Instrument("delete", http.HandlerFunc(s.handleDelete)))
	mux.Handle("/clear", telemetry.Instrument("clear", http.HandlerFunc(s.handleClear)))
	mux.Handle("/stats", telemetry.Instrument("stats", http.HandlerFunc(s.handleStats)))
	mux.Handle("/all", telemetry.Instrument("all", http.HandlerFunc(s.handleAll)))
	mux.HandleFunc("/", s.handleUI)

	return mux
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	if s.engine.IsShutdown() {
		http.Error(w, "shut down", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleUI(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

// Package server exposes the engine over HTTP: definitions, attack
// analysis, batch simulation and run lookups under /api, and a websocket
// at /ws/battle that streams a battle event by event.
package server

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/pefman/fleet-sim/internal/defs"
	"github.com/pefman/fleet-sim/internal/sim"
)

// DefaultSimTimeout bounds one POST /api/sim.
const DefaultSimTimeout = 30 * time.Second

type Config struct {
	Defs       *defs.Definitions
	Logger     *zap.Logger
	SimTimeout time.Duration
}

type Server struct {
	defs       *defs.Definitions
	log        *zap.Logger
	runner     *sim.Runner
	simTimeout time.Duration
	router     *mux.Router
	upgrader   websocket.Upgrader
}

func New(cfg Config) *Server {
	s := &Server{
		defs:       cfg.Defs,
		log:        cfg.Logger,
		simTimeout: cfg.SimTimeout,
		router:     mux.NewRouter(),
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	if s.defs == nil {
		s.defs = defs.MustDefault()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.simTimeout <= 0 {
		s.simTimeout = DefaultSimTimeout
	}
	s.runner = sim.NewRunner(s.defs, s.log)
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/definitions", s.handleDefinitions).Methods(http.MethodGet)
	api.HandleFunc("/analyze/shelling", s.handleAnalyzeShelling).Methods(http.MethodPost)
	api.HandleFunc("/analyze/night", s.handleAnalyzeNight).Methods(http.MethodPost)
	api.HandleFunc("/analyze/anti-air", s.handleAnalyzeAntiAir).Methods(http.MethodPost)
	api.HandleFunc("/sim", s.handleSimulate).Methods(http.MethodPost)
	api.HandleFunc("/sim/runs", s.handleListRuns).Methods(http.MethodGet)
	api.HandleFunc("/sim/runs/{id}", s.handleGetRun).Methods(http.MethodGet)
	api.HandleFunc("/stats/max-damage/today", s.handleMaxDamageToday).Methods(http.MethodGet)
	s.router.HandleFunc("/ws/battle", s.handleBattleWS)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "unsupported path")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, r.Method+" not allowed")
	})
	s.router.Use(s.logRequests)
}

// Handler is the full HTTP surface with CORS applied.
func (s *Server) Handler() http.Handler { return withCORS(s.router) }

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   http.StatusText(code),
		"message": msg,
		"status":  code,
	})
}

// simple CORS for GET/POST/OPTIONS
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder keeps the response code for the access log. It passes
// Hijack through so websocket upgrades still work behind it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer cannot hijack")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("remote", r.RemoteAddr))
	})
}

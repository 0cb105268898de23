package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	contractx "github.com/ovgu-assistant/campus-assistant/agent/contract"
	statex "github.com/ovgu-assistant/campus-assistant/agent/state"
)

const maxBodyBytes = 16 << 10

// TurnService is the orchestrator surface the handlers need.
type TurnService interface {
	Invoke(ctx context.Context, in *contractx.TurnState, sessionID string) (*contractx.TurnState, error)
	Session(ctx context.Context, sessionID string) (*statex.SessionState, error)
	Reset(ctx context.Context, sessionID string) error
}

// HTTPObserver receives one observation per served request.
type HTTPObserver interface {
	ObserveHTTP(route string, code int, elapsed time.Duration)
}

type Config struct {
	Addr            string        `envconfig:"ADDR" split_words:"true" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" split_words:"true" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" split_words:"true" default:"180s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"30s"`
}

type Server struct {
	turns    TurnService
	observer HTTPObserver
	metrics  http.Handler
	newID    func() string
}

type Option func(*Server)

func WithObserver(observer HTTPObserver) Option {
	return func(s *Server) {
		s.observer = observer
	}
}

func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewServer(turns TurnService, opts ...Option) (*Server, error) {
	if turns == nil {
		return nil, errors.New("turn service is required")
	}
	s := &Server{
		turns: turns,
		newID: newSessionID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Router wires every route onto a fresh mux router.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.observe)

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/sessions", s.handleCreateSession).Methods(http.MethodPost).Name("create_session")
	v1.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet).Name("get_session")
	v1.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods(http.MethodDelete).Name("delete_session")
	v1.HandleFunc("/sessions/{id}/turns", s.handleTurn).Methods(http.MethodPost).Name("turn")

	router.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet).Name("healthz")
	if s.metrics != nil {
		router.Handle("/metrics", s.metrics).Methods(http.MethodGet).Name("metrics")
	}
	return router
}

// HTTPServer returns a configured http.Server for the router.
func (s *Server) HTTPServer(cfg Config) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil && current.GetName() != "" {
			route = current.GetName()
		}
		elapsed := time.Since(start)
		if s.observer != nil {
			s.observer.ObserveHTTP(route, rec.code, elapsed)
		}
		log.Debug().Str("route", route).Int("code", rec.code).Dur("elapsed", elapsed).Msg("http: request served")
	})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("http: encode response failed")
	}
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Error: message})
}

// Package server exposes games and attack queries over HTTP, with WebSocket
// push of game updates.
package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/hailam/chessmatch/internal/storage"
)

// PlayerHeader carries the caller's identity on every game request.
const PlayerHeader = "X-Player-ID"

const maxJSONBodyBytes int64 = 1 << 16

// Config holds server settings. The zero value is usable.
type Config struct {
	// EnforceCaptureTurn is used for new games whose request does not say.
	EnforceCaptureTurn bool

	// AllowedOrigins for CORS and WebSocket upgrades. Empty allows any.
	AllowedOrigins []string

	// AccessLog receives one line per request. Nil means stdout.
	AccessLog io.Writer

	Logger *log.Logger
}

// DefaultConfig returns the settings used by the binary when nothing is set.
func DefaultConfig() Config {
	return Config{EnforceCaptureTurn: true}
}

// Server wires the HTTP layer to the game store.
type Server struct {
	store  *storage.Storage
	cfg    Config
	logger *log.Logger
	router *mux.Router
	hub    *hub

	locksMu sync.Mutex
	locks   map[string]*gameLock

	srvMu sync.Mutex
	srv   *http.Server
}

// New builds a Server on top of an open store.
func New(store *storage.Storage, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		store:  store,
		cfg:    cfg,
		logger: logger,
		router: mux.NewRouter(),
		locks:  make(map[string]*gameLock),
	}
	s.hub = newHub(logger, cfg.AllowedOrigins)
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	r.HandleFunc("/games", s.handleCreateGame).Methods(http.MethodPost)
	r.HandleFunc("/games", s.handleListGames).Methods(http.MethodGet)
	r.HandleFunc("/games/{id}", s.handleGetGame).Methods(http.MethodGet)
	r.HandleFunc("/games/{id}", s.handleDeleteGame).Methods(http.MethodDelete)
	r.HandleFunc("/games/{id}/turn", s.handleTurn).Methods(http.MethodGet)
	r.HandleFunc("/games/{id}/opponent", s.handleOpponent).Methods(http.MethodGet)
	r.HandleFunc("/games/{id}/move", s.handleMove).Methods(http.MethodPost)
	r.HandleFunc("/games/{id}/capture", s.handleCapture).Methods(http.MethodPost)
	r.HandleFunc("/games/{id}/ws", s.handleSubscribe).Methods(http.MethodGet)

	r.HandleFunc("/attacks", s.handleAttacks).Methods(http.MethodGet)
	r.HandleFunc("/attacks.png", s.handleAttacksPNG).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// Handler returns the router wrapped in recovery, CORS and access logging.
func (s *Server) Handler() http.Handler {
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	var h http.Handler = s.router
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(s.logger), handlers.PrintRecoveryStack(true))(h)
	h = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", PlayerHeader}),
	)(h)

	out := s.cfg.AccessLog
	if out == nil {
		out = os.Stdout
	}
	return handlers.LoggingHandler(out, h)
}

// Listen starts the HTTP server and blocks until it stops.
func (s *Server) Listen(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	s.srvMu.Lock()
	s.srv = srv
	s.srvMu.Unlock()
	defer func() {
		s.srvMu.Lock()
		s.srv = nil
		s.srvMu.Unlock()
	}()

	s.logger.Printf("HTTP listening on %s", addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close shuts the HTTP server down gracefully and drops subscribers.
func (s *Server) Close(ctx context.Context) error {
	s.hub.closeAll()

	s.srvMu.Lock()
	srv := s.srv
	s.srvMu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// gameLock is a per-game mutex shared by the requests currently holding
// or waiting on it.
type gameLock struct {
	mu   sync.Mutex
	refs int
}

// lockGame serialises writers of one game. The returned func unlocks and
// drops the entry once no request is left on it.
func (s *Server) lockGame(id string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &gameLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.LoadStats()
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// record folds an outcome into the store's counters. Failures only get
// logged; counters never fail a request.
func (s *Server) record(o storage.Outcome) {
	if err := s.store.RecordOutcome(o); err != nil {
		s.logger.Printf("stats: %v", err)
	}
}

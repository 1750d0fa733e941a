package devtools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/statekit-dev/statekit/pkg/state"
)

// ErrDuplicateStore is returned when attaching a store under a name
// that is already taken.
var ErrDuplicateStore = errors.New("devtools: store name already attached")

// registration holds the per-store pieces the server needs without
// knowing the store's state type.
type registration struct {
	hub      *hub
	snapshot func() any
	cancel   func()
}

// Server exposes attached stores over HTTP for inspection.
type Server struct {
	logger *slog.Logger
	mux    *chi.Mux

	mu     sync.RWMutex
	stores map[string]*registration

	httpMu  sync.Mutex
	httpSrv *http.Server
}

// ServerOption configures a devtools Server.
type ServerOption func(*Server)

// WithServerLogger sets the server's logger. Defaults to slog.Default().
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a devtools server with no stores attached.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		logger: slog.Default(),
		stores: make(map[string]*registration),
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := chi.NewRouter()
	mux.Get("/stores", s.handleList)
	mux.Get("/stores/{name}", s.handleSnapshot)
	mux.Get("/stores/{name}/live", s.handleLive)
	s.mux = mux

	return s
}

// Attach registers a store under name and relays its committed
// transitions to the name's live streams. The relay runs on its own
// goroutine fed by the store's lossy Watch channel, so a stalled
// websocket client can never block the store's broadcast: the store at
// worst drops frames destined for devtools, never the update itself.
// Attach is a free function because methods cannot introduce type
// parameters.
func Attach[S any](srv *Server, name string, st *state.Store[S]) error {
	h := newHub(srv.logger)
	ctx, cancel := context.WithCancel(context.Background())

	srv.mu.Lock()
	if _, exists := srv.stores[name]; exists {
		srv.mu.Unlock()
		cancel()
		return fmt.Errorf("%w: %q", ErrDuplicateStore, name)
	}
	reg := &registration{
		hub:      h,
		snapshot: func() any { return st.Read() },
		cancel:   cancel,
	}
	srv.stores[name] = reg
	srv.mu.Unlock()

	changes := st.Watch(ctx)
	go func() {
		for change := range changes {
			if change.IsInitial() {
				// Joining clients get a per-connection snapshot instead.
				continue
			}
			h.broadcast(StateFrame{Store: name, State: change.New})
		}
	}()

	srv.logger.Debug("devtools store attached", "store", name)
	return nil
}

// Detach cancels the subscription for name and disconnects its live
// streams. Detaching an unknown name is a no-op.
func (s *Server) Detach(name string) {
	s.mu.Lock()
	reg, ok := s.stores[name]
	if ok {
		delete(s.stores, name)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	if reg.cancel != nil {
		reg.cancel()
	}
	reg.hub.closeAll()
	s.logger.Debug("devtools store detached", "store", name)
}

// Handler returns the server's HTTP handler, for mounting into an
// existing mux or an httptest server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves the inspection routes on addr until Shutdown.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux}

	s.httpMu.Lock()
	s.httpSrv = srv
	s.httpMu.Unlock()

	s.logger.Info("devtools listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server, detaches every store, and
// disconnects all live streams.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	names := make([]string, 0, len(s.stores))
	for name := range s.stores {
		names = append(names, name)
	}
	s.mu.Unlock()

	for _, name := range names {
		s.Detach(name)
	}

	s.httpMu.Lock()
	srv := s.httpSrv
	s.httpMu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (s *Server) lookup(name string) (*registration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.stores[name]
	return reg, ok
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	names := make([]string, 0, len(s.stores))
	for name := range s.stores {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)

	writeJSON(w, http.StatusOK, map[string]any{"stores": names})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	reg, ok := s.lookup(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, StateFrame{Store: name, State: reg.snapshot()})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	reg, ok := s.lookup(name)
	if !ok {
		http.NotFound(w, r)
		return
	}

	reg.hub.handleWebSocket(w, r, func(conn *websocket.Conn) {
		frame := StateFrame{Store: name, Initial: true, State: reg.snapshot()}
		data, err := json.Marshal(frame)
		if err != nil {
			s.logger.Warn("devtools snapshot marshal failed", "store", name, "error", err)
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			s.logger.Warn("devtools snapshot write failed", "store", name, "error", err)
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

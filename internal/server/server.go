// Package server exposes the layout engine over HTTP and WebSocket for
// canvas clients: REST endpoints for graph access and engine control, plus a
// push stream of graph-changed and settled-layout events.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ShantaRam81/Nodes/pkg/graph"
	"github.com/ShantaRam81/Nodes/pkg/sim"
	"github.com/ShantaRam81/Nodes/pkg/snapshot"
	"github.com/ShantaRam81/Nodes/pkg/store"
)

// Server serves the graph API. The engine is single-threaded by contract,
// so every engine access is serialized through one mutex shared between the
// HTTP handlers and the simulation tick loop (see LockedTicker).
type Server struct {
	mu     *sync.Mutex
	store  *store.Store
	engine *sim.Engine
	snaps  snapshot.Store // nil disables the snapshot endpoints
	logger *log.Logger
	hub    *hub
	root   string
}

// LockedTicker wraps a sim.Ticker so scheduled ticks run holding Mu,
// serializing simulation frames with API handlers. Build the engine with a
// LockedTicker and pass the same mutex to New.
type LockedTicker struct {
	Inner sim.Ticker
	Mu    *sync.Mutex
}

// Schedule runs fn under the shared mutex.
func (t LockedTicker) Schedule(fn func()) (cancel func()) {
	return t.Inner.Schedule(func() {
		t.Mu.Lock()
		defer t.Mu.Unlock()
		fn()
	})
}

// New wires a server over the given store and engine. mu must be the mutex
// the engine's LockedTicker uses (nil creates a fresh one for engines ticked
// elsewhere); snaps may be nil when snapshot persistence is not configured.
// The server subscribes to store changes and engine settles and forwards
// both to WebSocket clients.
func New(st *store.Store, engine *sim.Engine, snaps snapshot.Store, root string, mu *sync.Mutex, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if mu == nil {
		mu = &sync.Mutex{}
	}
	s := &Server{
		mu:     mu,
		store:  st,
		engine: engine,
		snaps:  snaps,
		logger: logger,
		hub:    newHub(logger),
		root:   root,
	}

	// Both callbacks fire from code paths already holding mu (a tick under
	// the locked ticker, or a Load/Refresh inside a handler), so they read
	// engine stats directly instead of going through s.stats().
	st.Subscribe(func(nodes []*graph.Node, edges []*graph.Edge) {
		s.hub.broadcast(event{Type: "graph-changed", Stats: toStatsResponse(s.engine.Stats())})
	})
	engine.OnSettle(func() {
		s.hub.broadcast(event{Type: "settled", Stats: toStatsResponse(s.engine.Stats())})
	})
	return s
}

// Router builds the chi route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Get("/graph", s.handleGraph)
		r.Get("/stats", s.handleStats)
		r.Get("/node/{id}", s.handleNode)
		r.Post("/reheat", s.handleReheat)
		r.Post("/mode", s.handleMode)
		r.Post("/strict-layout", s.handleStrictLayout)
		r.Post("/node/{id}/pin", s.handlePin)
		r.Delete("/node/{id}/pin", s.handleUnpin)

		if s.snaps != nil {
			r.Route("/snapshots", func(r chi.Router) {
				r.Get("/", s.handleSnapshotList)
				r.Post("/", s.handleSnapshotCreate)
				r.Get("/{id}", s.handleSnapshotGet)
				r.Post("/{id}/restore", s.handleSnapshotRestore)
				r.Delete("/{id}", s.handleSnapshotDelete)
			})
		}
	})
	r.Get("/ws", s.handleWS)
	return r
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("serving graph API", "addr", addr)

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method, "path", r.URL.Path, "dur", time.Since(start))
	})
}

func (s *Server) stats() sim.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Stats()
}

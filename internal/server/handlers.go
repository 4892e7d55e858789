package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ShantaRam81/Nodes/pkg/errors"
	"github.com/ShantaRam81/Nodes/pkg/graph"
	"github.com/ShantaRam81/Nodes/pkg/sim"
	"github.com/ShantaRam81/Nodes/pkg/snapshot"
)

type graphResponse struct {
	Nodes []*graph.Node `json:"nodes"`
	Edges []*graph.Edge `json:"edges"`
	Stats statsResponse `json:"stats"`
}

type statsResponse struct {
	State       string  `json:"state"`
	Mode        string  `json:"mode"`
	Energy      float64 `json:"energy"`
	Ticks       int     `json:"ticks"`
	ActiveNodes int     `json:"activeNodes"`
	TotalNodes  int     `json:"totalNodes"`
}

func toStatsResponse(st sim.Stats) statsResponse {
	return statsResponse{
		State:       st.State.String(),
		Mode:        st.Mode.String(),
		Energy:      st.Energy,
		Ticks:       st.Ticks,
		ActiveNodes: st.ActiveNodes,
		TotalNodes:  st.TotalNodes,
	}
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	s.respondShared(w, http.StatusOK, func() any {
		return graphResponse{
			Nodes: s.store.Nodes(),
			Edges: s.store.Edges(),
			Stats: toStatsResponse(s.engine.Stats()),
		}
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, toStatsResponse(s.stats()))
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	n, ok := s.store.Node(id)
	s.mu.Unlock()
	if !ok {
		s.respondError(w, errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id))
		return
	}
	s.respondShared(w, http.StatusOK, func() any { return n })
}

func (s *Server) handleReheat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Energy *float64 `json:"energy"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	energy := -1.0 // engine default
	if req.Energy != nil {
		energy = *req.Energy
	}

	s.mu.Lock()
	s.engine.Reheat(energy)
	st := s.engine.Stats()
	s.mu.Unlock()
	s.respondJSON(w, http.StatusOK, toStatsResponse(st))
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Mode string `json:"mode"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}
	mode, err := sim.ParseMode(req.Mode)
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.mu.Lock()
	s.engine.SetMode(mode)
	st := s.engine.Stats()
	s.mu.Unlock()
	s.respondJSON(w, http.StatusOK, toStatsResponse(st))
}

func (s *Server) handleStrictLayout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OnlyUnpositioned bool `json:"onlyUnpositioned"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	s.mu.Lock()
	s.engine.ApplyStrict(req.OnlyUnpositioned)
	st := s.engine.Stats()
	s.mu.Unlock()
	s.respondJSON(w, http.StatusOK, toStatsResponse(st))
}

func (s *Server) handlePin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	s.mu.Lock()
	n, ok := s.store.Node(id)
	if !ok {
		s.mu.Unlock()
		s.respondError(w, errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id))
		return
	}
	n.Pin(req.X, req.Y)
	s.engine.Reheat(-1)
	s.mu.Unlock()
	s.respondShared(w, http.StatusOK, func() any { return n })
}

func (s *Server) handleUnpin(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	n, ok := s.store.Node(id)
	if !ok {
		s.mu.Unlock()
		s.respondError(w, errors.New(errors.ErrCodeNodeNotFound, "node %s not found", id))
		return
	}
	n.Unpin()
	s.engine.Reheat(-1)
	s.mu.Unlock()
	s.respondShared(w, http.StatusOK, func() any { return n })
}

func (s *Server) handleSnapshotCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.respondError(w, err)
		return
	}

	// snapshot.New deep-copies the graph under the lock, so the slower Save
	// can serialize outside it without observing later ticks.
	s.mu.Lock()
	snap := snapshot.New(req.Label, s.root, s.engine.Mode().String(),
		s.store.Nodes(), s.store.Edges())
	s.mu.Unlock()

	if err := s.snaps.Save(r.Context(), snap); err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, snap.Meta)
}

func (s *Server) handleSnapshotList(w http.ResponseWriter, r *http.Request) {
	metas, err := s.snaps.List(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	if metas == nil {
		metas = []snapshot.Meta{}
	}
	s.respondJSON(w, http.StatusOK, metas)
}

func (s *Server) handleSnapshotGet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snaps.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSnapshotRestore(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snaps.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, err)
		return
	}

	s.mu.Lock()
	fixed := s.store.Load(snap.Nodes, snap.Edges)
	s.engine.Reheat(-1)
	st := s.engine.Stats()
	s.mu.Unlock()

	s.logger.Info("snapshot restored", "id", snap.ID, "repairs", fixed)
	s.respondJSON(w, http.StatusOK, toStatsResponse(st))
}

func (s *Server) handleSnapshotDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.snaps.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", "err", err)
	}
}

// respondShared marshals a response that references simulation-owned state.
// Encoding runs under s.mu so a concurrent tick cannot rewrite node positions
// mid-serialization; only the finished bytes are written after unlocking.
func (s *Server) respondShared(w http.ResponseWriter, status int, build func() any) {
	s.mu.Lock()
	data, err := json.Marshal(build())
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("encode response", "err", err)
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidMode, errors.ErrCodeInvalidPath:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound,
		errors.ErrCodeFileNotFound, errors.ErrCodeSnapshotNotFound:
		status = http.StatusNotFound
	}
	s.respondJSON(w, status, errorResponse{
		Code:    string(code),
		Message: errors.UserMessage(err),
	})
}

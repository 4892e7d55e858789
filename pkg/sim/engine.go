package sim

import (
	"github.com/charmbracelet/log"

	"github.com/ShantaRam81/Nodes/pkg/graph"
	"github.com/ShantaRam81/Nodes/pkg/layout"
	"github.com/ShantaRam81/Nodes/pkg/store"
)

// State is the engine lifecycle state.
type State int

const (
	// StateIdle means no tick is scheduled; positions are at rest.
	StateIdle State = iota
	// StateRunning means a tick is scheduled and energy has not yet decayed
	// below the settle threshold.
	StateRunning
)

// String returns a human-readable state name.
func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// Engine is the force simulation stepper. It reads the canonical node/edge
// set from the integrity store, applies the configured force pipeline each
// tick, and writes positions back into the shared node objects.
//
// The engine is a state machine with two states, idle and running. Reheat
// injects energy and (re)starts ticking; energy decays geometrically each
// tick until it falls below Config.MinEnergy, at which point the engine
// settles back to idle and fires the settle callbacks.
//
// Engine is not safe for concurrent use: every method, and every scheduled
// tick, must run on the single cooperative layout thread. The injectable
// Ticker is what enforces the frame boundary between ticks.
type Engine struct {
	store  *store.Store
	cfg    Config
	ticker Ticker
	logger *log.Logger

	mode   Mode
	state  State
	energy float64
	ticks  int
	cancel func()

	settleFns []func()
	tickFns   []func()
}

// Stats is a read-only snapshot of engine state for telemetry and UIs.
type Stats struct {
	State       State
	Mode        Mode
	Energy      float64
	Ticks       int
	ActiveNodes int
	TotalNodes  int
}

// New creates an engine over the given store. A nil ticker defaults to a
// 60 fps IntervalTicker; a nil logger falls back to log.Default().
func New(st *store.Store, cfg Config, ticker Ticker, logger *log.Logger) *Engine {
	if ticker == nil {
		ticker = NewFrameTicker()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		store:  st,
		cfg:    cfg,
		ticker: ticker,
		logger: logger,
	}
}

// Mode returns the active structural force strategy.
func (e *Engine) Mode() Mode { return e.mode }

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// Energy returns the current decaying energy parameter.
func (e *Engine) Energy() float64 { return e.energy }

// TickCount returns the number of ticks stepped since creation.
func (e *Engine) TickCount() int { return e.ticks }

// Stats returns a snapshot of the engine for display.
func (e *Engine) Stats() Stats {
	active, _ := e.activeSubset()
	return Stats{
		State:       e.state,
		Mode:        e.mode,
		Energy:      e.energy,
		Ticks:       e.ticks,
		ActiveNodes: len(active),
		TotalNodes:  len(e.store.Nodes()),
	}
}

// OnSettle registers fn to run every time the engine settles to idle.
func (e *Engine) OnSettle(fn func()) {
	e.settleFns = append(e.settleFns, fn)
}

// OnTick registers fn to run after every completed tick, at the frame
// boundary where external readers may safely observe positions.
func (e *Engine) OnTick(fn func()) {
	e.tickFns = append(e.tickFns, fn)
}

// SetMode switches the structural force strategy and triggers a reheat.
// Entering strict mode applies the deterministic strict layout immediately,
// so the first tick already observes formula positions.
func (e *Engine) SetMode(m Mode) {
	e.mode = m
	if m == ModeStrict {
		e.ApplyStrict(false)
	}
	e.Reheat(e.cfg.DefaultEnergy)
}

// Reheat sets the energy parameter (clamped to [0, 1]; pass a negative value
// for the configured default), recomputes the depth/order annotations, and
// starts ticking if idle. Mutation-producing collaborators call this after
// every structural change.
//
// An empty graph never starts: all layout operations are no-ops.
func (e *Engine) Reheat(energy float64) {
	if energy < 0 {
		energy = e.cfg.DefaultEnergy
	}
	if energy > 1 {
		energy = 1
	}
	e.energy = energy

	layout.Annotate(e.store.Nodes(), e.store.Edges())

	if len(e.store.Nodes()) == 0 {
		return
	}
	e.Start()
}

// Start transitions idle→running and begins the tick loop. Calling Start on
// a running engine is a no-op.
func (e *Engine) Start() {
	if e.state == StateRunning || len(e.store.Nodes()) == 0 {
		return
	}
	e.state = StateRunning
	e.scheduleNext()
}

// Stop cancels any pending tick and returns to idle. It is immediate and
// idempotent; no partial-tick cleanup is needed because each tick fully
// completes before the next is scheduled.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.state = StateIdle
}

func (e *Engine) scheduleNext() {
	e.cancel = e.ticker.Schedule(func() {
		e.cancel = nil
		e.Step()
		if e.state == StateRunning {
			e.scheduleNext()
		}
	})
}

// Step executes exactly one tick: recompute the active subset, apply the
// force pipeline in its fixed order, integrate, decay energy, and settle if
// the energy floor is crossed. Tests drive the engine by calling Step
// directly instead of going through a Ticker.
func (e *Engine) Step() {
	active, activeEdges := e.activeSubset()
	if len(active) == 0 {
		e.settle()
		return
	}

	if e.mode == ModeStrict {
		// Layout-by-assignment: no physics, pins are the only motion.
		e.snapPins(active)
	} else {
		e.applyRepulsion(active)
		e.applySprings(active, activeEdges)
		if e.mode == ModeFree {
			e.applyCentering(active)
		}
		if e.mode == ModeRadial {
			e.applyRadial(active)
		}
		e.applyCollision(active)
		e.integrate(active)
	}

	e.ticks++
	e.energy *= 1 - e.cfg.DecayRate
	if e.energy < e.cfg.MinEnergy {
		e.settle()
	}

	for _, fn := range e.tickFns {
		fn()
	}
}

func (e *Engine) settle() {
	wasRunning := e.state == StateRunning
	e.Stop()
	if wasRunning {
		e.logger.Debug("simulation settled",
			"ticks", e.ticks, "mode", e.mode.String())
		for _, fn := range e.settleFns {
			fn()
		}
	}
}

// activeSubset returns the visible nodes and the edges between them. A
// collapsed folder stays visible but hides its entire subtree.
func (e *Engine) activeSubset() ([]*graph.Node, []*graph.Edge) {
	nodes := e.store.Nodes()
	if len(nodes) == 0 {
		return nil, nil
	}
	root := e.store.Root()
	if root == nil {
		return nodes, e.store.Edges()
	}

	children := make(map[string][]string, len(nodes))
	for _, ed := range e.store.Edges() {
		children[ed.Source] = append(children[ed.Source], ed.Target)
	}

	visible := map[string]bool{root.ID: true}
	queue := []*graph.Node{root}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		if curr.Collapsed {
			continue
		}
		for _, id := range children[curr.ID] {
			if visible[id] {
				continue
			}
			if n, ok := e.store.Node(id); ok {
				visible[id] = true
				queue = append(queue, n)
			}
		}
	}

	var activeNodes []*graph.Node
	for _, n := range nodes {
		if visible[n.ID] {
			activeNodes = append(activeNodes, n)
		}
	}
	var activeEdges []*graph.Edge
	for _, ed := range e.store.Edges() {
		if visible[ed.Source] && visible[ed.Target] {
			activeEdges = append(activeEdges, ed)
		}
	}
	return activeNodes, activeEdges
}

// snapPins applies the strict-mode tick: pinned nodes snap to their pin with
// zeroed velocity, everything else holds its assigned position.
func (e *Engine) snapPins(nodes []*graph.Node) {
	for _, n := range nodes {
		if n.Pinned() {
			n.X, n.Y = *n.FX, *n.FY
			n.VX, n.VY = 0, 0
		}
	}
}

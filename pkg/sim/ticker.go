package sim

import "time"

// Ticker schedules the next simulation tick. It abstracts the host's
// per-frame callback so the engine can be driven by a timer in production
// and stepped synchronously in tests.
//
// Schedule arranges for fn to run exactly once, later, and returns a cancel
// function. Cancel must be safe to call after fn has already run. Ticks are
// never scheduled concurrently: the engine schedules the next tick only
// after the previous one has fully completed, which is what guarantees
// external readers always observe a complete tick's output.
type Ticker interface {
	Schedule(fn func()) (cancel func())
}

// IntervalTicker drives ticks off a wall-clock timer, one frame per
// Interval. This is the production scheduler.
type IntervalTicker struct {
	Interval time.Duration
}

// NewFrameTicker returns an IntervalTicker at ~60 frames per second.
func NewFrameTicker() IntervalTicker {
	return IntervalTicker{Interval: time.Second / 60}
}

// Schedule runs fn after the configured interval.
func (t IntervalTicker) Schedule(fn func()) (cancel func()) {
	iv := t.Interval
	if iv <= 0 {
		iv = time.Second / 60
	}
	timer := time.AfterFunc(iv, fn)
	return func() { timer.Stop() }
}

// ManualTicker queues scheduled callbacks and runs them only when Advance is
// called. It lets tests drive the engine deterministically, one frame at a
// time, on the calling goroutine.
type ManualTicker struct {
	pending []*manualEntry
}

type manualEntry struct {
	fn        func()
	cancelled bool
}

// NewManualTicker creates an empty manual ticker.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{}
}

// Schedule queues fn for the next Advance call.
func (t *ManualTicker) Schedule(fn func()) (cancel func()) {
	e := &manualEntry{fn: fn}
	t.pending = append(t.pending, e)
	return func() { e.cancelled = true }
}

// Advance runs every currently queued callback (callbacks scheduled during
// Advance wait for the next call, mirroring frame semantics). It returns the
// number of callbacks run.
func (t *ManualTicker) Advance() int {
	batch := t.pending
	t.pending = nil
	ran := 0
	for _, e := range batch {
		if e.cancelled {
			continue
		}
		e.fn()
		ran++
	}
	return ran
}

// Pending reports how many callbacks are queued.
func (t *ManualTicker) Pending() int {
	n := 0
	for _, e := range t.pending {
		if !e.cancelled {
			n++
		}
	}
	return n
}

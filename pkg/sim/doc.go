// Package sim implements the force-directed layout engine.
//
// The engine positions a file-tree graph in 2D by iterative physics: pairwise
// repulsion, spring attraction along edges, an optional centering pull, a
// mode-specific structural force, collision separation, and damped velocity
// integration with a displacement clamp. A decaying energy parameter scales
// every force; when it crosses the settle threshold the engine stops itself
// and the layout is considered at rest.
//
// # Modes
//
// Three structural strategies are available as a closed enum:
//
//   - [ModeFree]: plain physics plus a global centering pull
//   - [ModeStrict]: deterministic depth/sibling placement (see
//     [Engine.ApplyStrict]); the tick only honors pins
//   - [ModeRadial]: concentric orbits by depth with evenly spaced angular
//     slots per sibling group
//
// # Scheduling
//
// Ticks are driven through the injectable [Ticker] abstraction: an
// [IntervalTicker] in production, a [ManualTicker] (or direct [Engine.Step]
// calls) in tests. Ticks never overlap; a tick is scheduled only after the
// previous one fully completes, so readers at the frame boundary always see
// a consistent layout.
//
// # Pins
//
// A node with a non-nil pin (FX/FY) snaps to the pin at the end of every
// tick with zeroed velocity, overriding all forces. Drag interactions and
// explicit placement coexist with physics through pins alone.
//
// # Performance
//
// Repulsion and collision are exact O(n²) up to Config.RepulsionExactLimit
// nodes, and switch to a uniform-grid spatial hash above it, keeping ticks
// sub-frame into the low thousands of nodes.
package sim

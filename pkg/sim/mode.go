package sim

import "github.com/ShantaRam81/Nodes/pkg/errors"

// Mode selects the structural force strategy applied each tick.
// It is a closed enum: invalid modes are unrepresentable inside the engine,
// and string parsing at the API boundary returns a structured error.
type Mode int

const (
	// ModeFree runs unconstrained physics: repulsion, springs, and a global
	// centering pull, with no extra structural force.
	ModeFree Mode = iota

	// ModeStrict is layout-by-assignment: positions come from the strict
	// positioner's deterministic depth/sibling formula, and the tick only
	// honors pins. No physics forces apply.
	ModeStrict

	// ModeRadial arranges nodes in concentric orbits: each node is pulled
	// toward a radius proportional to its depth and toward an evenly spaced
	// angular slot among its depth siblings. The root is pulled to the origin.
	ModeRadial
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeRadial:
		return "radial"
	default:
		return "free"
	}
}

// ParseMode converts a wire-format mode name to a Mode.
// Unknown names return ErrCodeInvalidMode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "free":
		return ModeFree, nil
	case "strict":
		return ModeStrict, nil
	case "radial":
		return ModeRadial, nil
	default:
		return ModeFree, errors.New(errors.ErrCodeInvalidMode, "unknown layout mode: %q", s)
	}
}

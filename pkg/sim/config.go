package sim

// Config holds every tunable of the simulation and the strict positioner.
// The zero value is not usable; start from DefaultConfig and override fields.
type Config struct {
	// Energy lifecycle.
	DefaultEnergy float64 `toml:"default_energy"` // reheat energy when unspecified
	DecayRate     float64 `toml:"decay_rate"`     // per-tick geometric decay
	MinEnergy     float64 `toml:"min_energy"`     // settle threshold

	// Integration.
	Damping         float64 `toml:"damping"`          // multiplicative velocity decay per tick
	MaxDisplacement float64 `toml:"max_displacement"` // per-tick position change clamp
	Epsilon         float64 `toml:"epsilon"`          // minimum distance for force math

	// Pairwise repulsion.
	Repulsion           float64 `toml:"repulsion"`             // inverse-square strength
	RepulsionExactLimit int     `toml:"repulsion_exact_limit"` // node count above which the grid approximation kicks in
	GridCellSize        float64 `toml:"grid_cell_size"`        // spatial hash cell edge

	// Link springs.
	LinkDistance   float64 `toml:"link_distance"`   // spring rest length
	SpringStrength float64 `toml:"spring_strength"` // spring constant

	// Free-mode centering.
	CenterStrength float64 `toml:"center_strength"`

	// Collision separation.
	CollidePadding float64 `toml:"collide_padding"` // extra gap between node extents

	// Radial mode.
	RadiusStep      float64 `toml:"radius_step"`      // orbit spacing per depth level
	RadialStrength  float64 `toml:"radial_strength"`  // pull toward the target radius
	AngularStrength float64 `toml:"angular_strength"` // pull toward the angular slot

	// Strict mode.
	HorizontalStep float64 `toml:"horizontal_step"` // depth → x spacing
	VerticalStep   float64 `toml:"vertical_step"`   // sibling index → y spacing
}

// DefaultConfig returns the standard tuning. Values are calibrated for
// graphs of hundreds to low thousands of nodes rendered at roughly
// 100 px/unit scale.
func DefaultConfig() Config {
	return Config{
		DefaultEnergy: 0.6,
		DecayRate:     0.018,
		MinEnergy:     0.005,

		Damping:         0.7,
		MaxDisplacement: 20,
		Epsilon:         0.01,

		Repulsion:           1200,
		RepulsionExactLimit: 600,
		GridCellSize:        96,

		LinkDistance:   110,
		SpringStrength: 0.06,

		CenterStrength: 0.012,

		CollidePadding: 4,

		RadiusStep:      140,
		RadialStrength:  0.08,
		AngularStrength: 0.05,

		HorizontalStep: 160,
		VerticalStep:   80,
	}
}

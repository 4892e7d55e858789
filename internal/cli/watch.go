package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ShantaRam81/Nodes/internal/scan"
	"github.com/ShantaRam81/Nodes/pkg/graph"
	"github.com/ShantaRam81/Nodes/pkg/sim"
	"github.com/ShantaRam81/Nodes/pkg/store"
)

// watchCommand creates the watch command with its live terminal view.
func (c *CLI) watchCommand() *cobra.Command {
	opts := c.scanOptions()

	cmd := &cobra.Command{
		Use:   "watch [directory]",
		Short: "Watch a directory tree with a live simulation view",
		Long: `Watch a directory tree with a live simulation view.

The watch command scans a directory, follows filesystem changes, and shows
the simulation state (energy, ticks, node count, mode) in the terminal while
the layout settles. Keys: m cycles the mode, r reheats, s applies the strict
formula, q quits.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return c.runWatch(cmd, dir, opts)
		},
	}

	cmd.Flags().IntVar(&opts.MaxDepth, "max-depth", opts.MaxDepth, "recursion limit (0 = unlimited)")
	cmd.Flags().BoolVar(&opts.IncludeHidden, "hidden", opts.IncludeHidden, "include dotfiles and dot-directories")

	return cmd
}

func (c *CLI) runWatch(cmd *cobra.Command, dir string, opts scan.Options) error {
	ctx := cmd.Context()

	st := store.New(c.Logger)
	ticker := sim.NewManualTicker()
	engine := sim.New(st, c.Config.Sim, ticker, c.Logger)

	model := newWatchModel(dir, st, engine, ticker)
	prog := tea.NewProgram(model, tea.WithContext(ctx))

	// The watcher runs on its own goroutine and hands fresh graphs to the
	// TUI as messages; all engine access happens inside Update.
	scanner := scan.NewScanner(opts, c.Logger)
	debounce := time.Duration(c.Config.Scan.DebounceMS) * time.Millisecond
	watcher := scan.NewWatcher(dir, scanner, debounce, c.Logger,
		func(nodes []*graph.Node, edges []*graph.Edge) {
			prog.Send(graphMsg{nodes: nodes, edges: edges})
		})

	watchErr := make(chan error, 1)
	go func() { watchErr <- watcher.Run(ctx) }()

	if _, err := prog.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch ui: %w", err)
	}
	if err := <-watchErr; err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// watchModel - Live Simulation View
// =============================================================================

// watchFPS is the TUI frame rate; each frame advances the simulation by at
// most one tick.
const watchFPS = 30

type graphMsg struct {
	nodes []*graph.Node
	edges []*graph.Edge
}

type frameMsg time.Time

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/watchFPS, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// watchModel is the bubbletea model for the watch command. It owns the
// engine: graph updates and simulation ticks both flow through Update, so
// the single-threaded engine contract holds.
type watchModel struct {
	dir     string
	store   *store.Store
	engine  *sim.Engine
	ticker  *sim.ManualTicker
	repairs int
	scans   int
	settled bool
}

func newWatchModel(dir string, st *store.Store, engine *sim.Engine, ticker *sim.ManualTicker) *watchModel {
	m := &watchModel{dir: dir, store: st, engine: engine, ticker: ticker}
	engine.OnSettle(func() { m.settled = true })
	return m
}

func (m *watchModel) Init() tea.Cmd {
	return frameTick()
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.engine.Stop()
			return m, tea.Quit
		case "r":
			m.settled = false
			m.engine.Reheat(-1)
		case "m":
			m.settled = false
			m.engine.SetMode(nextMode(m.engine.Mode()))
		case "s":
			m.engine.ApplyStrict(false)
		}

	case graphMsg:
		m.scans++
		m.settled = false
		m.repairs += m.store.Refresh(msg.nodes, msg.edges)
		m.engine.Reheat(-1)

	case frameMsg:
		m.ticker.Advance()
		return m, frameTick()
	}
	return m, nil
}

func (m *watchModel) View() string {
	stats := m.engine.Stats()

	var b strings.Builder
	b.WriteString(StyleTitle.Render("nodes watch"))
	b.WriteString(StyleDim.Render("  " + m.dir))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("m mode  r reheat  s strict snap  q quit"))
	b.WriteString("\n\n")

	b.WriteString(kv("mode", stats.Mode.String()))
	b.WriteString(kv("state", renderState(stats, m.settled)))
	b.WriteString(kv("energy", energyBar(stats.Energy)))
	b.WriteString(kv("ticks", fmt.Sprintf("%d", stats.Ticks)))
	b.WriteString(kv("nodes", fmt.Sprintf("%d visible / %d total", stats.ActiveNodes, stats.TotalNodes)))
	b.WriteString(kv("scans", fmt.Sprintf("%d", m.scans)))
	if m.repairs > 0 {
		b.WriteString(kv("repairs", StyleWarning.Render(fmt.Sprintf("%d", m.repairs))))
	}

	return b.String()
}

func kv(key, value string) string {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(10)
	return keyStyle.Render(key) + " " + StyleValue.Render(value) + "\n"
}

func renderState(stats sim.Stats, settled bool) string {
	if stats.State == sim.StateRunning {
		return StyleWarning.Render("running")
	}
	if settled {
		return StyleSuccess.Render("settled")
	}
	return StyleDim.Render("idle")
}

// energyBar renders the decaying energy as a fixed-width meter.
func energyBar(energy float64) string {
	const width = 24
	filled := int(energy * width)
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return styleIconSpinner.Render(bar) + StyleDim.Render(fmt.Sprintf(" %.3f", energy))
}

func nextMode(m sim.Mode) sim.Mode {
	switch m {
	case sim.ModeFree:
		return sim.ModeStrict
	case sim.ModeStrict:
		return sim.ModeRadial
	default:
		return sim.ModeFree
	}
}

package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ShantaRam81/Nodes/pkg/graph"
)

// newTestCLI builds a CLI isolated from the developer's real config, cache,
// and home directory.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	c.Config.Cache.Backend = "none"
	c.Config.Snapshot.Backend = "file"
	c.Config.Snapshot.Dir = filepath.Join(t.TempDir(), "snapshots")
	return c
}

// writeSampleTree lays down a small directory tree for scan-based tests.
func writeSampleTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		"README.md":   "hello",
		"src/main.go": "package main",
		"src/util.go": "package main",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func runCommand(t *testing.T, c *CLI, args ...string) error {
	t.Helper()
	root := c.RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestNewCreatesWorkingCLI(t *testing.T) {
	c := newTestCLI(t)
	if c.Logger == nil {
		t.Fatal("New() should set a logger")
	}
	if c.Config.Server.Addr == "" {
		t.Error("New() should resolve a config with defaults")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := newTestCLI(t)
	root := c.RootCommand()

	want := []string{"scan", "layout", "export", "render", "serve", "watch", "snapshots", "completion"}
	have := make(map[string]bool)
	for _, sub := range root.Commands() {
		have[sub.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("root command missing subcommand %q", name)
		}
	}
}

func TestScanLayoutExportPipeline(t *testing.T) {
	c := newTestCLI(t)
	tree := writeSampleTree(t)
	out := t.TempDir()

	graphPath := filepath.Join(out, "graph.json")
	if err := runCommand(t, c, "scan", tree, "-o", graphPath); err != nil {
		t.Fatalf("scan: %v", err)
	}

	g, err := graph.ReadFile(graphPath)
	if err != nil {
		t.Fatalf("read scan output: %v", err)
	}
	// Root, README.md, src, main.go, util.go.
	if len(g.Nodes) != 5 {
		t.Errorf("scan produced %d nodes, want 5", len(g.Nodes))
	}
	if len(g.Edges) != 4 {
		t.Errorf("scan produced %d edges, want 4", len(g.Edges))
	}

	layoutPath := filepath.Join(out, "graph.layout.json")
	if err := runCommand(t, c, "layout", graphPath, "-m", "strict", "-o", layoutPath); err != nil {
		t.Fatalf("layout: %v", err)
	}

	laid, err := graph.ReadFile(layoutPath)
	if err != nil {
		t.Fatalf("read layout output: %v", err)
	}
	positioned := false
	for _, n := range laid.Nodes {
		if n.X != 0 || n.Y != 0 {
			positioned = true
			break
		}
	}
	if !positioned {
		t.Error("layout output should carry settled positions")
	}

	dotPath := filepath.Join(out, "graph.dot")
	if err := runCommand(t, c, "export", layoutPath, "-f", "dot", "-o", dotPath); err != nil {
		t.Fatalf("export: %v", err)
	}

	dot, err := os.ReadFile(dotPath)
	if err != nil {
		t.Fatalf("read export output: %v", err)
	}
	if !bytes.Contains(dot, []byte("digraph")) {
		t.Error("export output should be a DOT digraph")
	}
	if !bytes.Contains(dot, []byte(`pos="`)) {
		t.Error("positioned export should pin node positions")
	}
}

func TestRenderOneShot(t *testing.T) {
	c := newTestCLI(t)
	tree := writeSampleTree(t)
	base := filepath.Join(t.TempDir(), "tree")

	if err := runCommand(t, c, "render", tree, "-m", "strict", "-f", "dot", "-o", base); err != nil {
		t.Fatalf("render: %v", err)
	}

	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatalf("read render output: %v", err)
	}
	if !bytes.Contains(dot, []byte("digraph")) {
		t.Error("render output should be a DOT digraph")
	}
}

func TestLayoutRejectsUnknownMode(t *testing.T) {
	c := newTestCLI(t)
	tree := writeSampleTree(t)
	out := t.TempDir()

	graphPath := filepath.Join(out, "graph.json")
	if err := runCommand(t, c, "scan", tree, "-o", graphPath); err != nil {
		t.Fatalf("scan: %v", err)
	}

	err := runCommand(t, c, "layout", graphPath, "-m", "spiral")
	if err == nil {
		t.Fatal("expected error for unknown layout mode")
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	c := newTestCLI(t)
	tree := writeSampleTree(t)
	out := t.TempDir()

	graphPath := filepath.Join(out, "graph.json")
	if err := runCommand(t, c, "scan", tree, "-o", graphPath); err != nil {
		t.Fatalf("scan: %v", err)
	}

	err := runCommand(t, c, "export", graphPath, "-f", "png")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestScanRejectsMissingDirectory(t *testing.T) {
	c := newTestCLI(t)
	out := filepath.Join(t.TempDir(), "graph.json")

	err := runCommand(t, c, "scan", "/definitely/not/a/real/path", "-o", out)
	if err == nil {
		t.Fatal("expected error for missing scan root")
	}
}

func TestSnapshotsListEmpty(t *testing.T) {
	c := newTestCLI(t)

	if err := runCommand(t, c, "snapshots", "list"); err != nil {
		t.Fatalf("snapshots list: %v", err)
	}
}

func TestSnapshotsShowUnknownID(t *testing.T) {
	c := newTestCLI(t)

	if err := runCommand(t, c, "snapshots", "show", "no-such-id"); err == nil {
		t.Fatal("expected error for unknown snapshot ID")
	}
}

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := &CLI{Logger: newTestLogger(&buf)}

	c.Logger.Debug("hidden")
	if buf.Len() != 0 {
		t.Error("debug output should be suppressed at info level")
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("visible")
	if buf.Len() == 0 {
		t.Error("debug output should appear after SetLogLevel(LogDebug)")
	}
}

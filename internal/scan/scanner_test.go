package scan

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ShantaRam81/Nodes/pkg/errors"
	"github.com/ShantaRam81/Nodes/pkg/graph"
	"github.com/ShantaRam81/Nodes/pkg/store"
)

func quiet() *log.Logger { return log.New(io.Discard) }

// writeTree creates the given files (keyed by slash-relative path) under a
// fresh temp dir and returns the dir.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func byPath(nodes []*graph.Node) map[string]*graph.Node {
	m := make(map[string]*graph.Node, len(nodes))
	for _, n := range nodes {
		m[n.Path] = n
	}
	return m
}

func TestScanBuildsTree(t *testing.T) {
	root := writeTree(t, map[string]string{
		"main.go":        "package main",
		"docs/readme.md": "hello",
		"docs/img/a.png": "xxxx",
	})

	s := NewScanner(Options{}, quiet())
	nodes, edges, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	paths := byPath(nodes)
	for _, want := range []string{"/", "/main.go", "/docs", "/docs/readme.md", "/docs/img", "/docs/img/a.png"} {
		if paths[want] == nil {
			t.Errorf("missing node for %s", want)
		}
	}
	if got := paths["/main.go"].Category; got != graph.CategoryCode {
		t.Errorf("main.go category = %v, want code", got)
	}
	if got := paths["/docs/img/a.png"].Category; got != graph.CategoryImage {
		t.Errorf("a.png category = %v, want image", got)
	}
	if paths["/docs"].Kind != graph.KindFolder {
		t.Error("/docs should be a folder")
	}

	// One edge per non-root node.
	if len(edges) != len(nodes)-1 {
		t.Errorf("%d edges for %d nodes, want %d", len(edges), len(nodes), len(nodes)-1)
	}
}

func TestScanOutputPassesRepairClean(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/b/c.txt": "1",
		"a/d.txt":   "2",
		"e.txt":     "3",
	})

	s := NewScanner(Options{}, quiet())
	nodes, edges, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	st := store.New(quiet())
	if fixed := st.Load(nodes, edges); fixed != 0 {
		t.Errorf("scanner output required %d repairs, want 0", fixed)
	}
}

func TestScanSubtreeSizes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/one.txt": "12345",  // 5 bytes
		"a/two.txt": "123",    // 3 bytes
		"b/big.bin": "123456", // 6 bytes
	})

	s := NewScanner(Options{}, quiet())
	nodes, _, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	paths := byPath(nodes)
	if got := paths["/a"].SubtreeSizeBytes; got != 8 {
		t.Errorf("/a subtree size = %d, want 8", got)
	}
	if got := paths["/"].SubtreeSizeBytes; got != 14 {
		t.Errorf("root subtree size = %d, want 14", got)
	}
	if got := paths["/a/one.txt"].SizeBytes; got != 5 {
		t.Errorf("one.txt size = %d, want 5", got)
	}
}

func TestScanStableIDs(t *testing.T) {
	root := writeTree(t, map[string]string{"x/y.txt": "v1"})

	s := NewScanner(Options{}, quiet())
	first, _, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	// Content changes, structure does not: IDs must hold.
	if err := os.WriteFile(filepath.Join(root, "x", "y.txt"), []byte("v2 longer"), 0644); err != nil {
		t.Fatal(err)
	}
	second, _, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	a, b := byPath(first), byPath(second)
	for p := range a {
		if b[p] == nil || a[p].ID != b[p].ID {
			t.Errorf("ID for %s not stable across scans", p)
		}
	}
}

func TestScanGroupsLargeDirectories(t *testing.T) {
	files := map[string]string{"keep/solo.txt": "x"}
	for i := 0; i < 30; i++ {
		files[fmt.Sprintf("flood/f%02d.txt", i)] = "1234"
	}
	root := writeTree(t, files)

	s := NewScanner(Options{GroupFiles: true, GroupThreshold: 24}, quiet())
	nodes, _, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	var group *graph.Node
	for _, n := range nodes {
		if n.IsFileGroup() {
			group = n
		}
		if n.Kind == graph.KindFile && filepath.Dir(n.Path) == "/flood" {
			t.Errorf("flooded file %s not aggregated", n.Path)
		}
	}
	if group == nil {
		t.Fatal("no file-group node produced")
	}
	if group.Name != "30 files" {
		t.Errorf("group name = %q, want %q", group.Name, "30 files")
	}
	if group.SizeBytes != 30*4 {
		t.Errorf("group size = %d, want %d", group.SizeBytes, 30*4)
	}

	// The small directory stays ungrouped.
	if byPath(nodes)["/keep/solo.txt"] == nil {
		t.Error("file below the threshold was grouped away")
	}
}

func TestScanMaxDepth(t *testing.T) {
	root := writeTree(t, map[string]string{
		"l1/l2/l3/deep.txt": "x",
		"l1/shallow.txt":    "y",
	})

	s := NewScanner(Options{MaxDepth: 2}, quiet())
	nodes, _, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	paths := byPath(nodes)
	if paths["/l1/shallow.txt"] == nil {
		t.Error("depth-2 file missing")
	}
	if paths["/l1/l2/l3"] != nil || paths["/l1/l2/l3/deep.txt"] != nil {
		t.Error("nodes beyond MaxDepth were scanned")
	}
}

func TestScanSkipsHiddenByDefault(t *testing.T) {
	root := writeTree(t, map[string]string{
		".git/config": "x",
		"visible.txt": "y",
	})

	s := NewScanner(Options{}, quiet())
	nodes, _, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if byPath(nodes)["/.git"] != nil {
		t.Error("hidden directory scanned without IncludeHidden")
	}

	s = NewScanner(Options{IncludeHidden: true}, quiet())
	nodes, _, err = s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if byPath(nodes)["/.git/config"] == nil {
		t.Error("hidden file missing with IncludeHidden")
	}
}

func TestScanRejectsNonDirectory(t *testing.T) {
	root := writeTree(t, map[string]string{"file.txt": "x"})

	s := NewScanner(Options{}, quiet())
	_, _, err := s.Scan(context.Background(), filepath.Join(root, "file.txt"))
	if errors.GetCode(err) != errors.ErrCodeInvalidPath {
		t.Errorf("error code = %v, want invalid path", errors.GetCode(err))
	}

	_, _, err = s.Scan(context.Background(), filepath.Join(root, "absent"))
	if errors.GetCode(err) != errors.ErrCodeInvalidPath {
		t.Errorf("error code = %v, want invalid path", errors.GetCode(err))
	}
}

func TestWatcherRescansOnChange(t *testing.T) {
	root := writeTree(t, map[string]string{"a.txt": "x"})

	type result struct{ nodes int }
	results := make(chan result, 8)
	w := NewWatcher(root, NewScanner(Options{}, quiet()), 50*time.Millisecond, quiet(),
		func(nodes []*graph.Node, edges []*graph.Edge) {
			results <- result{nodes: len(nodes)}
		})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Initial scan: root + a.txt.
	select {
	case r := <-results:
		if r.nodes != 2 {
			t.Fatalf("initial scan saw %d nodes, want 2", r.nodes)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no initial scan")
	}

	if err := os.WriteFile(filepath.Join(root, "b.txt"), []byte("y"), 0644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case r := <-results:
			if r.nodes == 3 {
				cancel()
				if err := <-done; err != nil {
					t.Fatalf("Run: %v", err)
				}
				return
			}
		case <-deadline:
			t.Fatal("watcher never picked up the new file")
		}
	}
}

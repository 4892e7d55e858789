package pipeline

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ShantaRam81/Nodes/pkg/cache"
)

func quiet() *log.Logger {
	return log.New(io.Discard)
}

func sampleTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "docs"), 0755); err != nil {
		t.Fatal(err)
	}
	files := []string{"main.go", "docs/guide.md", "docs/notes.md"}
	for _, name := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func strictOptions(root string, formats ...string) Options {
	return Options{
		Root:       root,
		Mode:       "strict",
		GroupFiles: true,
		Formats:    formats,
	}
}

func TestExecuteRendersArtifacts(t *testing.T) {
	runner := NewRunner(nil, nil, quiet())

	result, err := runner.Execute(context.Background(), strictOptions(sampleTree(t), "dot", "png"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	// Root, main.go, docs, guide.md, notes.md.
	if result.Stats.NodeCount != 5 {
		t.Errorf("NodeCount = %d, want 5", result.Stats.NodeCount)
	}
	if result.Stats.Repairs != 0 {
		t.Errorf("fresh scan needed %d repairs", result.Stats.Repairs)
	}
	if result.GraphHash == "" {
		t.Error("GraphHash should be set")
	}

	dot, ok := result.Artifacts["dot"]
	if !ok || !bytes.Contains(dot, []byte("digraph")) {
		t.Error("dot artifact missing or malformed")
	}
	png, ok := result.Artifacts["png"]
	if !ok || !bytes.HasPrefix(png, []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("png artifact missing or malformed")
	}
}

func TestExecuteSecondRunHitsEveryStage(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, quiet())
	opts := strictOptions(sampleTree(t), "dot")

	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.ScanHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss every stage, got %+v", first.CacheInfo)
	}

	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.ScanHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit every stage, got %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts["dot"], second.Artifacts["dot"]) {
		t.Error("cached artifact differs from computed one")
	}
}

func TestExecuteRefreshBypassesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, quiet())
	opts := strictOptions(sampleTree(t), "dot")

	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatalf("warmup Execute() error = %v", err)
	}

	opts.Refresh = true
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if result.CacheInfo.ScanHit || result.CacheInfo.LayoutHit || result.CacheInfo.RenderHit {
		t.Errorf("refresh run should bypass every stage, got %+v", result.CacheInfo)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "missing root", opts: Options{}, wantErr: true},
		{name: "bad mode", opts: Options{Root: "/tmp", Mode: "spiral"}, wantErr: true},
		{name: "bad format", opts: Options{Root: "/tmp", Formats: []string{"pdf"}}, wantErr: true},
		{name: "defaults", opts: Options{Root: "/tmp"}, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.opts.Mode != "free" {
				t.Errorf("default mode = %q, want free", tt.opts.Mode)
			}
			if len(tt.opts.Formats) != 1 || tt.opts.Formats[0] != FormatSVG {
				t.Errorf("default formats = %v, want [svg]", tt.opts.Formats)
			}
			if tt.opts.Energy != -1 {
				t.Errorf("default energy = %v, want -1", tt.opts.Energy)
			}
		})
	}
}

func TestExecuteMissingRootDirectory(t *testing.T) {
	runner := NewRunner(nil, nil, quiet())

	_, err := runner.Execute(context.Background(), strictOptions("/definitely/not/here", "dot"))
	if err == nil {
		t.Fatal("expected error for missing scan root")
	}
}

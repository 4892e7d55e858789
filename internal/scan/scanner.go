// Package scan turns a local directory tree into the node-link graph the
// layout engine consumes, and keeps it fresh via filesystem watching.
package scan

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/ShantaRam81/Nodes/pkg/cache"
	"github.com/ShantaRam81/Nodes/pkg/errors"
	"github.com/ShantaRam81/Nodes/pkg/graph"
)

// Options controls a directory scan.
type Options struct {
	// MaxDepth limits recursion; 0 means unlimited.
	MaxDepth int

	// GroupFiles aggregates the plain files of a directory into a single
	// file-group node when their count exceeds GroupThreshold, keeping huge
	// flat directories from flooding the simulation.
	GroupFiles     bool
	GroupThreshold int

	// IncludeHidden scans dotfiles and dot-directories.
	IncludeHidden bool
}

// DefaultOptions returns the scan defaults used by the CLI.
func DefaultOptions() Options {
	return Options{GroupFiles: true, GroupThreshold: 24}
}

// Scanner walks directory trees into graphs. It is stateless apart from its
// options and logger and safe to reuse across scans.
type Scanner struct {
	opts   Options
	logger *log.Logger
}

// NewScanner creates a scanner. A nil logger falls back to log.Default().
func NewScanner(opts Options, logger *log.Logger) *Scanner {
	if logger == nil {
		logger = log.Default()
	}
	if opts.GroupThreshold <= 0 {
		opts.GroupThreshold = DefaultOptions().GroupThreshold
	}
	return &Scanner{opts: opts, logger: logger}
}

// Scan walks root and returns the graph of its tree. Node paths are
// root-relative slash paths ("/" is the root itself); IDs are content hashes
// of those paths, so re-scanning an unchanged tree yields identical IDs.
//
// Unreadable subdirectories are skipped with a debug log instead of failing
// the scan. The root itself must be a readable directory.
func (s *Scanner) Scan(ctx context.Context, root string) ([]*graph.Node, []*graph.Edge, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", root)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "stat %s", root)
	}
	if !info.IsDir() {
		return nil, nil, errors.New(errors.ErrCodeInvalidPath, "%s is not a directory", root)
	}

	rootNode := &graph.Node{
		ID:   nodeID("/"),
		Name: filepath.Base(abs),
		Path: "/",
		Kind: graph.KindFolder,
	}

	w := &walk{scanner: s, nodes: []*graph.Node{rootNode}}
	size, err := w.dir(ctx, abs, rootNode, 1)
	if err != nil {
		return nil, nil, err
	}
	rootNode.SubtreeSizeBytes = size

	s.logger.Debug("scan complete",
		"root", abs, "nodes", len(w.nodes), "edges", len(w.edges))
	return w.nodes, w.edges, nil
}

type walk struct {
	scanner *Scanner
	nodes   []*graph.Node
	edges   []*graph.Edge
}

// dir scans one directory level and returns the subtree size in bytes.
func (w *walk) dir(ctx context.Context, absDir string, parent *graph.Node, depth int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeScan, err, "scan cancelled")
	}
	opts := w.scanner.opts
	if opts.MaxDepth > 0 && depth > opts.MaxDepth {
		return 0, nil
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		w.scanner.logger.Debug("skipping unreadable directory", "dir", absDir, "err", err)
		return 0, nil
	}

	var total int64
	var files []os.DirEntry
	for _, e := range entries {
		if !opts.IncludeHidden && e.Name()[0] == '.' {
			continue
		}
		if e.IsDir() {
			child := w.add(parent, e.Name(), graph.KindFolder)
			size, err := w.dir(ctx, filepath.Join(absDir, e.Name()), child, depth+1)
			if err != nil {
				return 0, err
			}
			child.SubtreeSizeBytes = size
			total += size
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		files = append(files, e)
	}

	if opts.GroupFiles && len(files) > opts.GroupThreshold {
		group := w.add(parent, fmt.Sprintf("%d files", len(files)), graph.KindFileGroup)
		for _, e := range files {
			if info, err := e.Info(); err == nil {
				group.SizeBytes += info.Size()
			}
		}
		total += group.SizeBytes
		return total, nil
	}

	for _, e := range files {
		file := w.add(parent, e.Name(), graph.KindFile)
		file.Category = graph.Categorize(e.Name())
		if info, err := e.Info(); err == nil {
			file.SizeBytes = info.Size()
		}
		total += file.SizeBytes
	}
	return total, nil
}

// add appends a child node under parent plus the connecting edge.
func (w *walk) add(parent *graph.Node, name string, kind graph.Kind) *graph.Node {
	p := path.Join(parent.Path, name)
	n := &graph.Node{
		ID:       nodeID(p),
		Name:     name,
		Path:     p,
		Kind:     kind,
		ParentID: parent.ID,
	}
	w.nodes = append(w.nodes, n)
	w.edges = append(w.edges, &graph.Edge{
		ID:     parent.ID + ":" + n.ID,
		Source: parent.ID,
		Target: n.ID,
	})
	return n
}

// nodeID derives a stable node ID from the root-relative slash path.
func nodeID(slashPath string) string {
	return cache.Hash([]byte(slashPath))[:16]
}

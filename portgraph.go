package portgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/aretw0/portgraph/internal/logging"
	"github.com/aretw0/portgraph/pkg/codec"
	"github.com/aretw0/portgraph/pkg/domain"
	"github.com/aretw0/portgraph/pkg/graph"
	"github.com/aretw0/portgraph/pkg/library"
	"github.com/aretw0/portgraph/pkg/observability"
	"github.com/aretw0/portgraph/pkg/ports"
	"github.com/aretw0/portgraph/pkg/registry"
	"github.com/aretw0/portgraph/pkg/schema"
	"github.com/aretw0/portgraph/pkg/workspace"
)

// Editor is the high-level entry point for the library.
// It bundles the node type registry, graph observers and the codec.
type Editor struct {
	Registry *registry.Registry

	hooks  domain.GraphHooks
	logger *slog.Logger
}

// Option defines a functional option for configuring the Editor.
type Option func(*Editor)

// WithRegistry replaces the default registry holding the sample library.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Editor) {
		e.Registry = r
	}
}

// WithHooks registers observability hooks on every graph the Editor creates.
func WithHooks(hooks domain.GraphHooks) Option {
	return func(e *Editor) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets the logger and logs graph events through it.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Editor) {
		e.logger = logger
		e.hooks = e.hooks.Merge(observability.LogHooks(logger))
	}
}

// New creates an Editor.
func New(opts ...Option) *Editor {
	e := &Editor{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	if e.Registry == nil {
		e.Registry = library.NewRegistry()
	}
	return e
}

// Hooks returns the observers attached to new graphs.
func (e *Editor) Hooks() domain.GraphHooks { return e.hooks }

func (e *Editor) graphOptions() []graph.Option {
	return []graph.Option{graph.WithHooks(e.hooks)}
}

// NewGraph creates an empty graph observed by the Editor's hooks.
func (e *Editor) NewGraph(name string) *graph.Graph {
	return graph.New(name, e.graphOptions()...)
}

// Templates lists the names of the sample graphs.
func (e *Editor) Templates() []string {
	names := make([]string, 0, len(library.Templates))
	for name := range library.Templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Template builds a sample graph by name.
func (e *Editor) Template(name string) (*graph.Graph, error) {
	build, ok := library.Templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q (available: %v)", name, e.Templates())
	}
	return build(e.graphOptions()...)
}

// Encode converts g into its document form.
func (e *Editor) Encode(g *graph.Graph) (*codec.GraphDocument, error) {
	return codec.Encode(g)
}

// Decode validates doc and restores it, reconciling every node against the
// currently registered types.
func (e *Editor) Decode(doc *codec.GraphDocument) (*graph.Graph, error) {
	return codec.Decode(doc, e.Registry, e.graphOptions()...)
}

// ReadFile loads a document from path; the format follows the extension.
func (e *Editor) ReadFile(path string) (*codec.GraphDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	doc, err := codec.Unmarshal(data, codec.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// LoadFile reads and decodes a graph file.
func (e *Editor) LoadFile(path string) (*graph.Graph, *codec.GraphDocument, error) {
	doc, err := e.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	g, err := e.Decode(doc)
	if err != nil {
		return nil, doc, err
	}
	return g, doc, nil
}

// SaveFile encodes g and writes it to path. The description is kept as is.
func (e *Editor) SaveFile(path string, g *graph.Graph, description string) error {
	doc, err := e.Encode(g)
	if err != nil {
		return err
	}
	doc.Description = description
	data, err := codec.Marshal(doc, codec.FormatFromPath(path))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write graph file: %w", err)
	}
	return nil
}

// Workspace creates a manager over store that decodes with the Editor's
// registry and hooks.
func (e *Editor) Workspace(store ports.GraphStore, opts ...workspace.Option) *workspace.Manager {
	base := []workspace.Option{
		workspace.WithHooks(e.hooks),
		workspace.WithLogger(e.logger),
	}
	return workspace.NewManager(store, e.Registry, append(base, opts...)...)
}

// Import copies the listed graphs of a read-only source into the workspace.
// With no IDs every graph of the source is imported. Graphs that fail to
// decode are skipped and reported together.
func (e *Editor) Import(ctx context.Context, src ports.GraphLoader, ws *workspace.Manager, ids ...string) (int, error) {
	if len(ids) == 0 {
		var err error
		if ids, err = src.List(ctx); err != nil {
			return 0, fmt.Errorf("failed to list source graphs: %w", err)
		}
	}

	var errs []error
	imported := 0
	for _, id := range ids {
		doc, err := src.Load(ctx, id)
		if err == nil {
			_, err = ws.Put(ctx, id, doc)
		}
		if err != nil {
			e.logger.Warn("Failed to import graph", "graph_id", id, "err", err)
			errs = append(errs, fmt.Errorf("graph %s: %w", id, err))
			continue
		}
		imported++
	}
	return imported, errors.Join(errs...)
}

// Reload replaces node type definitions in the registry and rebinds g to
// them, reconciling the ports of every node.
func (e *Editor) Reload(g *graph.Graph, types ...*schema.NodeType) (map[graph.NodeID]graph.ReconcileReport, error) {
	for _, t := range types {
		if err := e.Registry.Replace(t); err != nil {
			return nil, fmt.Errorf("failed to reload %s: %w", t.Name, err)
		}
	}
	return g.Rebind(e.Registry.NodeType)
}

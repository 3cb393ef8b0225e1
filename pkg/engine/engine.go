package engine

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gantry/pkg/assemble"
	"github.com/matzehuels/gantry/pkg/component"
	"github.com/matzehuels/gantry/pkg/graph"
	"github.com/matzehuels/gantry/pkg/solve"
)

// Engine wraps exactly one finalized component graph. An engine never
// mutates its graph in place - reconfiguration yields a new engine - so a
// single engine may serve any number of concurrent assemblies.
type Engine struct {
	root         *graph.Node
	reg          *component.Registry
	log          *log.Logger
	instantiable bool
}

// Option configures Build and Load.
type Option func(*options)

type options struct {
	reg *component.Registry
	log *log.Logger
}

// WithRegistry selects the component registry consulted for requirements,
// shareability defaults, and snapshot type resolution. Defaults to
// [component.DefaultRegistry].
func WithRegistry(reg *component.Registry) Option {
	return func(o *options) { o.reg = reg }
}

// WithLogger attaches a logger to solve, instantiate, and load operations.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.reg == nil {
		o.reg = component.DefaultRegistry()
	}
	if o.log == nil {
		o.log = log.New(io.Discard)
	}
	return o
}

// Build solves the bindings into a dependency graph, builds every shareable
// node, and returns an engine wrapping the finalized graph.
//
// Build may be long-running: instantiation invokes real construction rules,
// which for recommender components typically means model training. It runs
// single-threaded and is not cancellable; callers needing timeouts must
// enforce them externally.
//
// Errors surface unchanged: ambiguity and cycles from solving, unresolved
// dependencies and construction failures from instantiation. No partial
// engine is ever returned.
func Build(b *solve.Bindings, opts ...Option) (*Engine, error) {
	o := buildOptions(opts)

	solver := solve.New(o.reg, o.log)
	g, err := solver.Solve(b, nil)
	if err != nil {
		return nil, err
	}

	final, err := assemble.NewInstantiator(g, o.reg, o.log).Instantiate()
	if err != nil {
		return nil, err
	}
	return newEngine(final, o), nil
}

func newEngine(root *graph.Node, o options) *Engine {
	return &Engine{
		root:         root,
		reg:          o.reg,
		log:          o.log,
		instantiable: len(assemble.PlaceholderNodes(root)) == 0,
	}
}

// Graph returns the engine's finalized graph. The graph is immutable and
// safe to share.
func (e *Engine) Graph() *graph.Node { return e.root }

// Registry returns the component registry the engine was built with.
func (e *Engine) Registry() *component.Registry { return e.reg }

// IsInstantiable reports whether the graph contains no unresolved
// placeholder at all. Engines that are not instantiable can still be written
// and reconfigured; creating an assembly from them fails until extra
// bindings supply the missing pieces.
func (e *Engine) IsInstantiable() bool { return e.instantiable }

// Reconfigure re-solves the current graph against extra bindings and
// re-instantiates whatever changed, returning a fresh engine. Already-built
// shared subgraphs are preserved by identity wherever the new bindings do
// not touch them, so one expensive build can serve many lightweight
// per-session configurations (swapping a data source, say) without repeating
// shared computation.
func (e *Engine) Reconfigure(extra *solve.Bindings) (*Engine, error) {
	o := options{reg: e.reg, log: e.log}
	solver := solve.New(e.reg, e.log)
	g, err := solver.Solve(extra, e.root)
	if err != nil {
		return nil, err
	}
	final, err := assemble.NewInstantiator(g, e.reg, e.log).Instantiate()
	if err != nil {
		return nil, err
	}
	return newEngine(final, o), nil
}

// Create returns an object assembly over this engine's graph, reconfigured
// with the extra bindings when non-empty (nil is fine). All top-level roots
// are resolved eagerly so configuration and construction errors surface
// here, not on first use.
func (e *Engine) Create(extra *solve.Bindings) (*Assembly, error) {
	eng := e
	if !extra.Empty() {
		var err error
		eng, err = e.Reconfigure(extra)
		if err != nil {
			return nil, err
		}
	}
	if ph := assemble.PlaceholderNodes(eng.root); len(ph) > 0 {
		t := ph[0].Label().Rule.ProducedType()
		return nil, &assemble.UnresolvedDependencyError{Type: t}
	}
	return newAssembly(eng.root, eng.log)
}

// Write serializes the finalized graph to w as a single opaque blob. See the
// package documentation for the type-registration requirements.
func (e *Engine) Write(w io.Writer) error {
	return writeSnapshot(w, e.root)
}

// Load deserializes an engine previously written with [Engine.Write]. The
// graph's prebuilt payloads are embedded in the snapshot, so loading never
// invokes a construction rule. The decoded structure is re-validated: a
// placeholder reachable through non-transient edges, a malformed node table,
// or an unresolvable type name fails the whole load.
func Load(r io.Reader, opts ...Option) (*Engine, error) {
	o := buildOptions(opts)
	root, err := readSnapshot(r, o.reg)
	if err != nil {
		return nil, err
	}
	if err := assemble.CheckPlaceholders(root); err != nil {
		return nil, err
	}
	o.log.Debug("loaded engine snapshot", "nodes", len(graph.Reachable(root)))
	return newEngine(root, o), nil
}

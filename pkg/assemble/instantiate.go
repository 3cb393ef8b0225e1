package assemble

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gantry/pkg/component"
	"github.com/matzehuels/gantry/pkg/graph"
	"github.com/matzehuels/gantry/pkg/observability"
)

// BuildFunc produces the value for a single graph node. The default is an
// [Injector] over the graph being instantiated; tests substitute counters or
// stubs.
type BuildFunc func(*graph.Node) (any, error)

// Instantiator builds the shareable portion of a dependency graph, rewriting
// it so every built node becomes a prebuilt instance.
type Instantiator struct {
	root  *graph.Node
	meta  component.Metadata
	build BuildFunc
	log   *log.Logger
}

// NewInstantiator creates an instantiator that builds nodes through a fresh
// [Injector] over the graph. meta supplies type-level shareability defaults
// and may be nil; logger may be nil.
func NewInstantiator(root *graph.Node, meta component.Metadata, logger *log.Logger) *Instantiator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	inj := NewInjector(root, logger)
	return &Instantiator{root: root, meta: meta, build: inj.Instantiate, log: logger}
}

// NewInstantiatorFunc is like [NewInstantiator] with a custom build function.
func NewInstantiatorFunc(root *graph.Node, meta component.Metadata, logger *log.Logger, build BuildFunc) *Instantiator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Instantiator{root: root, meta: meta, build: build, log: logger}
}

// Graph returns the (unmodified) input graph.
func (it *Instantiator) Graph() *graph.Node { return it.root }

// Instantiate builds every shareable node in dependency order and returns the
// finalized graph. Each built node is replaced by a prebuilt-instance node
// that retains only its non-transient outgoing edges: a build-time-only
// dependency exists purely to produce the value and is not observable once
// the value exists.
//
// Instantiate fails with *UnresolvedDependencyError if a build reaches an
// unresolved placeholder, or if a placeholder remains reachable through
// non-transient edges afterwards. It fails with *ConstructionError when a
// construction rule fails. In both cases no partial graph is returned.
func (it *Instantiator) Instantiate() (*graph.Node, error) {
	start := time.Now()
	built := 0
	g, err := it.replaceShareable(func(n *graph.Node) (*graph.Node, error) {
		label := n.Label()
		switch label.Rule.(type) {
		case component.Instance, component.Null:
			return n, nil
		}
		obj, err := it.build(n)
		if err != nil {
			return nil, err
		}
		built++
		var rule component.Rule
		if obj == nil {
			rule = component.NullOf(label.Rule.ProducedType())
		} else {
			rule = component.InstanceOf(obj)
		}
		return rebuilt(n, component.New(rule, label.Policy)), nil
	})
	observability.Engine().OnInstantiateComplete(built, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	if err := CheckPlaceholders(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Simulate performs the same rewrite as [Instantiator.Instantiate] without
// invoking any construction rule: every shareable node that is not already a
// prebuilt instance is replaced by a null placeholder of its produced type.
// The result is isomorphic to what Instantiate would produce, with null
// payloads standing in for real instances. Simulate is idempotent.
func (it *Instantiator) Simulate() *graph.Node {
	g, _ := it.replaceShareable(func(n *graph.Node) (*graph.Node, error) {
		label := n.Label()
		switch label.Rule.(type) {
		case component.Instance, component.Null:
			return n, nil
		}
		it.log.Debug("simulating instantiation", "node", label.String())
		rule := component.NullOf(label.Rule.ProducedType())
		return rebuilt(n, component.New(rule, label.Policy)), nil
	})
	return g
}

// replaceShareable applies replace to each shareable node in topological
// order, splicing results into the graph. The memo map carries substitutions
// across iterations: a node whose ancestors were rebuilt by an earlier
// replacement is chased to its current version before being replaced itself.
func (it *Instantiator) replaceShareable(replace func(*graph.Node) (*graph.Node, error)) (*graph.Node, error) {
	shared := ShareableNodes(it.root, it.meta)
	it.log.Debug("replacing shareable nodes",
		"graph", len(graph.Reachable(it.root)), "shareable", len(shared))

	memo := make(map[*graph.Node]*graph.Node)
	g := it.root
	for _, n := range shared {
		n = graph.Chase(memo, n)
		repl, err := replace(n)
		if err != nil {
			return nil, err
		}
		if repl != n {
			g = graph.ReplaceNode(g, n, repl, memo)
		}
	}
	it.log.Debug("final graph", "nodes", len(graph.Reachable(g)))
	return g, nil
}

// rebuilt copies a node with a new label, keeping only non-transient edges.
func rebuilt(n *graph.Node, label component.Component) *graph.Node {
	b := graph.NewBuilder(label)
	for _, e := range n.Outgoing() {
		if !e.Requirement().Transient {
			b.AddEdge(e.Target(), e.Requirement())
		}
	}
	return b.Build()
}

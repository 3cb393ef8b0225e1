package solve

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gantry/pkg/component"
	"github.com/matzehuels/gantry/pkg/graph"
	"github.com/matzehuels/gantry/pkg/observability"
)

// Solver resolves binding sets into dependency graphs, consulting a
// component registry for declared requirements and default builders.
type Solver struct {
	reg *component.Registry
	log *log.Logger
}

// New creates a solver. A nil registry means [component.DefaultRegistry];
// logger may be nil.
func New(reg *component.Registry, logger *log.Logger) *Solver {
	if reg == nil {
		reg = component.DefaultRegistry()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Solver{reg: reg, log: logger}
}

// Registry returns the registry the solver consults.
func (s *Solver) Registry() *component.Registry { return s.reg }

// nodeKey identifies one resolved provider within a solve: every dependent
// of the same (type, qualifier) pair shares a single node.
type nodeKey struct {
	t    string
	qual string
}

func keyOf(req component.Requirement) nodeKey {
	return nodeKey{t: component.TypeName(req.Type), qual: req.Qualifier}
}

type session struct {
	solver   *Solver
	binds    *Bindings
	nodes    map[nodeKey]*graph.Node
	existing map[nodeKey]*graph.Node
	reusable map[*graph.Node]bool
	trail    map[nodeKey]bool
}

// Solve resolves the binding set into an unclassified graph rooted at a
// synthetic root node whose outgoing edges are the declared top-level roots.
//
// When existing is non-nil, the solve is a rewrite of it: the existing roots
// are retained (newly declared roots are appended, deduplicated by type and
// qualifier), and any requirement the new bindings do not match that an
// existing node already satisfies resolves to that node. Subgraphs the new
// bindings do not touch are reused by identity; a node with a new binding
// somewhere beneath it keeps its construction rule and policy but re-resolves
// its dependencies. Ad-hoc constructors and per-site policy overrides from
// earlier solves therefore survive re-solving. This is the rewrite step
// behind engine reconfiguration.
func (s *Solver) Solve(b *Bindings, existing *graph.Node) (root *graph.Node, err error) {
	start := time.Now()
	defer func() {
		nodes := 0
		if root != nil {
			nodes = len(graph.Reachable(root)) - 1
		}
		observability.Engine().OnSolveComplete(nodes, time.Since(start), err)
	}()

	if b == nil {
		b = NewBindings()
	}
	idx, reusable := indexExisting(existing, b)
	sess := &session{
		solver:   s,
		binds:    b,
		nodes:    make(map[nodeKey]*graph.Node),
		existing: idx,
		reusable: reusable,
		trail:    make(map[nodeKey]bool),
	}

	roots := b.roots
	if existing != nil {
		// Re-solving keeps the existing roots; newly declared roots are
		// appended, deduplicated by type and qualifier.
		seen := make(map[nodeKey]bool)
		var merged []component.Requirement
		for _, e := range existing.Outgoing() {
			req := e.Requirement()
			if !seen[keyOf(req)] {
				seen[keyOf(req)] = true
				merged = append(merged, req)
			}
		}
		for _, req := range roots {
			if !seen[keyOf(req)] {
				seen[keyOf(req)] = true
				merged = append(merged, req)
			}
		}
		roots = merged
	}

	rb := graph.NewBuilder(component.RootComponent())
	for _, req := range roots {
		n, err := sess.resolve(req)
		if err != nil {
			return nil, err
		}
		rb.AddEdge(n, req)
	}
	root = rb.Build()
	s.log.Debug("solved graph", "roots", len(roots), "nodes", len(graph.Reachable(root)))
	return root, nil
}

// indexExisting maps (type, qualifier) pairs to the nodes of an existing
// graph and classifies which of them are safe to reuse bodily. Prebuilt
// instance and null nodes are final results, always reusable. Any other
// non-placeholder node is reusable only while the new bindings touch nothing
// in its subgraph: a binding matching a requirement beneath it forces that
// path to re-resolve. Placeholder nodes are never indexed; they must re-enter
// resolution so new bindings or registry defaults can fill them.
func indexExisting(root *graph.Node, binds *Bindings) (map[nodeKey]*graph.Node, map[*graph.Node]bool) {
	idx := make(map[nodeKey]*graph.Node)
	reusable := make(map[*graph.Node]bool)
	if root == nil {
		return idx, reusable
	}

	// Dependencies sort before dependents, so one pass settles reusability.
	for _, n := range graph.Sorted(root) {
		switch n.Label().Rule.(type) {
		case component.Instance, component.Null:
			reusable[n] = true
			continue
		case component.Placeholder:
			continue
		}
		ok := true
		for _, e := range n.Outgoing() {
			if !reusable[e.Target()] || len(binds.matches(e.Requirement())) > 0 {
				ok = false
				break
			}
		}
		reusable[n] = ok
	}

	for _, n := range graph.Reachable(root) {
		for _, e := range n.Outgoing() {
			if _, ph := e.Target().Label().Rule.(component.Placeholder); ph {
				continue
			}
			k := keyOf(e.Requirement())
			if _, dup := idx[k]; !dup {
				idx[k] = e.Target()
			}
		}
	}
	return idx, reusable
}

func (sess *session) resolve(req component.Requirement) (*graph.Node, error) {
	k := keyOf(req)
	if n, ok := sess.nodes[k]; ok {
		return n, nil
	}
	if sess.trail[k] {
		return nil, fmt.Errorf("%w: %s requires itself", ErrDependencyCycle, req)
	}
	sess.trail[k] = true
	defer delete(sess.trail, k)

	n, err := sess.resolveUncached(req)
	if err != nil {
		return nil, err
	}
	sess.nodes[k] = n
	return n, nil
}

func (sess *session) resolveUncached(req component.Requirement) (*graph.Node, error) {
	s := sess.solver

	// Explicit bindings always win.
	if cands := sess.binds.matches(req); len(cands) > 0 {
		if len(cands) > 1 {
			return nil, &AmbiguousBindingError{Type: req.Type, Qualifier: req.Qualifier, Count: len(cands)}
		}
		return sess.nodeFor(cands[0])
	}

	// Then the previous graph. Untouched subgraphs come back by identity; a
	// node the new bindings touch beneath keeps its rule and policy but
	// re-resolves its dependencies, so ad-hoc constructors and policy
	// overrides from the earlier solve survive the rewrite.
	if n, ok := sess.existing[keyOf(req)]; ok {
		if sess.reusable[n] {
			return n, nil
		}
		label := n.Label()
		return sess.edges(label.Rule, label)
	}

	// Then the registry's default builder for the type. Qualified
	// requirements always need an explicit binding; a qualifier expresses a
	// choice among providers, which a default cannot make.
	if req.Qualifier == "" {
		infos := s.reg.Providers(req.Type)
		if len(infos) > 1 {
			return nil, &AmbiguousBindingError{Type: req.Type, Count: len(infos)}
		}
		if len(infos) == 1 {
			return sess.constructed(infos[0], component.NoPreference)
		}
	}

	// Nothing can satisfy it now; leave a placeholder for later bindings.
	s.log.Debug("leaving placeholder", "requirement", req.String())
	return graph.NewLeaf(component.New(component.PlaceholderOf(req.Type), component.NoPreference)), nil
}

func (sess *session) nodeFor(bd *binding) (*graph.Node, error) {
	s := sess.solver
	switch bd.kind {
	case bindInstance:
		return graph.NewLeaf(component.New(component.InstanceOf(bd.instance), bd.policy)), nil

	case bindNull:
		return graph.NewLeaf(component.New(component.NullOf(bd.abstract), bd.policy)), nil

	case bindExternal:
		return graph.NewLeaf(component.New(component.PlaceholderOf(bd.abstract), bd.policy)), nil

	case bindFactoryInstance:
		rule := component.FactoryInstance{Type: bd.abstract, Factory: bd.factory}
		return graph.NewLeaf(component.New(rule, bd.policy)), nil

	case bindType:
		info, ok := s.reg.Lookup(bd.impl)
		if !ok {
			return nil, fmt.Errorf("%w: %s", component.ErrUnregistered, component.TypeName(bd.impl))
		}
		return sess.constructed(info, bd.policy)

	case bindConstructor:
		info, err := component.Describe(bd.ctor)
		if err != nil {
			return nil, fmt.Errorf("binding %s: %w", component.TypeName(bd.abstract), err)
		}
		return sess.constructed(info, bd.policy)

	case bindFactoryType:
		info, ok := s.reg.Lookup(bd.impl)
		if !ok {
			return nil, fmt.Errorf("%w: %s", component.ErrUnregistered, component.TypeName(bd.impl))
		}
		rule := component.FactoryType{
			Type:    bd.abstract,
			Factory: info.Type,
			Ctor:    info.Ctor,
			Reqs:    info.Reqs,
		}
		return sess.edges(rule, component.New(rule, bd.policy))

	default:
		panic(fmt.Sprintf("solve: unknown binding kind %d", bd.kind))
	}
}

func (sess *session) constructed(info *component.Info, policy component.CachePolicy) (*graph.Node, error) {
	rule := info.Rule()
	return sess.edges(rule, component.New(rule, policy))
}

// edges resolves a rule's requirements into outgoing edges, in order.
func (sess *session) edges(rule component.Rule, label component.Component) (*graph.Node, error) {
	b := graph.NewBuilder(label)
	for _, req := range rule.Requires() {
		dep, err := sess.resolve(req)
		if err != nil {
			return nil, err
		}
		b.AddEdge(dep, req)
	}
	return b.Build(), nil
}

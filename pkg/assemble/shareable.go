package assemble

import (
	"github.com/matzehuels/gantry/pkg/component"
	"github.com/matzehuels/gantry/pkg/graph"
)

// ShareableNodes returns the nodes reachable from root that are eligible for
// one-time construction, in topological order (dependencies first).
//
// A node is shareable iff it already holds a prebuilt (or null) value, or its
// effective cache policy permits sharing and every non-transient edge points
// to a node already classified shareable. Transient edges are ignored: a node
// may be shareable even though a construction-time dependency is not, because
// that dependency is consumed once during the build and never retained.
//
// One bottom-up pass suffices - dependencies precede dependents in the
// topological order, so a node's classification never needs revision.
func ShareableNodes(root *graph.Node, meta component.Metadata) []*graph.Node {
	var out []*graph.Node
	shared := make(map[*graph.Node]bool)
	for _, n := range graph.Sorted(root) {
		if !selfShareable(n, meta) {
			continue
		}
		ok := true
		for _, e := range n.Outgoing() {
			if !e.Requirement().Transient && !shared[e.Target()] {
				ok = false
				break
			}
		}
		if ok {
			shared[n] = true
			out = append(out, n)
		}
	}
	return out
}

// selfShareable checks the node's own rule and policy, ignoring dependencies.
func selfShareable(n *graph.Node, meta component.Metadata) bool {
	label := n.Label()
	if component.IsRoot(label) {
		return false
	}
	switch label.Rule.(type) {
	case component.Instance, component.Null:
		return true
	case component.Placeholder:
		return false
	}
	switch label.Policy {
	case component.NewInstance:
		return false
	case component.Memoize:
		return true
	default:
		return meta != nil && meta.ShareableByDefault(label.Rule.ProducedType())
	}
}

// PlaceholderNodes returns every reachable node holding a placeholder rule.
func PlaceholderNodes(root *graph.Node) []*graph.Node {
	var out []*graph.Node
	for _, n := range graph.Reachable(root) {
		if _, ok := n.Label().Rule.(component.Placeholder); ok {
			out = append(out, n)
		}
	}
	return out
}

// CheckPlaceholders verifies that no placeholder node is reachable from root
// through non-transient edges only. It returns an *UnresolvedDependencyError
// naming the first offending type, or nil. Transient edges are excluded: a
// placeholder that is only needed at construction time does not violate the
// finalized-graph invariant.
func CheckPlaceholders(root *graph.Node) error {
	seen := map[*graph.Node]bool{root: true}
	queue := []*graph.Node{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if p, ok := n.Label().Rule.(component.Placeholder); ok {
			return &UnresolvedDependencyError{Type: p.Type}
		}
		for _, e := range n.Outgoing() {
			if e.Requirement().Transient || seen[e.Target()] {
				continue
			}
			seen[e.Target()] = true
			queue = append(queue, e.Target())
		}
	}
	return nil
}

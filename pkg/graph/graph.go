package graph

import (
	"github.com/matzehuels/gantry/pkg/component"
)

// Node is an immutable vertex of the dependency DAG: a component label plus
// ordered outgoing edges, one per dependency requirement of the label's rule.
// Nodes are compared by identity; two structurally equal nodes built
// separately are distinct graph vertices.
type Node struct {
	label component.Component
	out   []Edge
}

// Edge is a directed connection from a dependent node to the node supplying
// one of its requirements. The requirement descriptor rides along so lookups
// can match on requested type and qualifier without consulting the target.
type Edge struct {
	target *Node
	req    component.Requirement
}

// Target returns the node supplying the requirement.
func (e Edge) Target() *Node { return e.target }

// Requirement returns the dependency descriptor the edge satisfies.
func (e Edge) Requirement() component.Requirement { return e.req }

// Label returns the node's component label.
func (n *Node) Label() component.Component { return n.label }

// Outgoing returns the node's outgoing edges in requirement order. The
// returned slice must not be modified.
func (n *Node) Outgoing() []Edge { return n.out }

// EdgeFor returns the first outgoing edge whose requirement has the given
// type and qualifier, or a zero edge and false.
func (n *Node) EdgeFor(req component.Requirement) (Edge, bool) {
	for _, e := range n.out {
		if e.req.Type == req.Type && e.req.Qualifier == req.Qualifier {
			return e, true
		}
	}
	return Edge{}, false
}

// Builder assembles a node. Since targets must already exist, graphs are
// necessarily built leaves-first and can never contain a cycle.
type Builder struct {
	label component.Component
	out   []Edge
}

// NewBuilder starts a node with the given label.
func NewBuilder(label component.Component) *Builder {
	return &Builder{label: label}
}

// AddEdge appends an outgoing edge. Edges must be added in the order of the
// label rule's requirements.
func (b *Builder) AddEdge(target *Node, req component.Requirement) *Builder {
	b.out = append(b.out, Edge{target: target, req: req})
	return b
}

// Build finalizes the node. The builder may not be reused.
func (b *Builder) Build() *Node {
	return &Node{label: b.label, out: b.out}
}

// NewLeaf creates a node with no outgoing edges.
func NewLeaf(label component.Component) *Node {
	return &Node{label: label}
}

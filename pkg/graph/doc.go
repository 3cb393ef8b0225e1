// Package graph provides the immutable dependency DAG underlying a gantry
// engine.
//
// # Model
//
// A [Node] pairs a [component.Component] label (construction rule + cache
// policy) with an ordered list of outgoing [Edge]s, one per dependency
// requirement of its rule, in declaration order. Edges point from a dependent
// node to the node supplying one of its requirements and carry the
// requirement descriptor (type, qualifier, transient flag).
//
// Nodes are immutable: the label and edge list are fixed when the node is
// built via [NewBuilder], so a node can only reference nodes that already
// exist. Cycles are therefore unrepresentable and the package needs no cycle
// detection - every graph reachable from a node is a DAG by construction.
//
// # Rewriting
//
// All "mutation" produces new values. [ReplaceNode] rewrites a graph so that
// every former reference to one node points to another, rebuilding exactly
// the ancestors whose edge lists change and sharing every untouched subgraph
// with the input. A memo map threads through repeated replacements so a node
// is never rebuilt twice and chains of replacements ("already replaced,
// redirect again") resolve to the current version.
//
// # Traversal
//
// [Reachable] returns the reachable set in deterministic first-visit order,
// [Sorted] returns a topological order with dependencies before dependents
// (ties broken by edge declaration order), and [FindEdgeBFS] locates the
// shallowest edge satisfying a predicate by breadth-first search.
//
// No construction rule is ever invoked by this package; it is pure structure.
package graph

// Package assemble turns a solved dependency graph into a finalized one and
// resolves concrete objects from it.
//
// Three pieces cooperate:
//
//   - [ShareableNodes] classifies which nodes of a graph are safe to build
//     once and share, in a single bottom-up pass over the topological order.
//   - [Instantiator] builds every shareable node in dependency order and
//     rewrites the graph so each built node becomes a prebuilt instance with
//     its build-time-only edges dropped. [Instantiator.Simulate] performs the
//     same rewrite without invoking any construction rule, replacing would-be
//     results with null placeholders - useful for validating a configuration
//     cheaply.
//   - [Injector] lazily resolves instances from a finalized graph, memoizing
//     results per node so concurrent callers observe at most one construction
//     per shareable node.
//
// Instantiation is expected to be long-running (it may train models) and runs
// single-threaded; only the injector is safe for concurrent use.
package assemble

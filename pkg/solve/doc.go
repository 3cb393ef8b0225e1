// Package solve turns a declarative set of bindings into an unclassified
// dependency graph.
//
// A [Bindings] value declares how abstract requirements are satisfied: by a
// prebuilt instance, a registered concrete type, an ad-hoc constructor, a
// factory (type or instance), a deliberate null, or an external placeholder
// to be supplied later. It also names the top-level roots the resulting graph
// must expose.
//
// [Solver.Solve] resolves each root depth-first. For every requirement it
// consults, in order: the bindings (an explicit match always wins; two
// matches are an *AmbiguousBindingError), the existing graph when
// re-solving (prebuilt nodes are reused by identity, so already-built shared
// subgraphs survive reconfiguration untouched), and finally the component
// registry's default builder for the requested type. A requirement nothing
// can satisfy becomes a placeholder node - resolution never fails just
// because something is missing; using the placeholder later does.
//
// Each distinct (type, qualifier) pair resolves to exactly one node per
// solve, so every dependent of a shared component references the same vertex.
//
// The solver only builds structure; no construction rule is invoked here.
package solve

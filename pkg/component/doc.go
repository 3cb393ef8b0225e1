// Package component defines the vocabulary of the gantry object graph:
// construction rules, cache policies, dependency requirements, and the
// metadata registry that describes how concrete types are built.
//
// # Construction Rules
//
// A [Rule] describes how a single graph node produces its value. The rule set
// is closed - every place that interprets a rule switches exhaustively over
// the six variants:
//
//   - [Instance]: an already-built value, returned as-is
//   - [Constructed]: invoke a constructor function, parameters supplied by
//     the node's outgoing edges in declaration order
//   - [FactoryType]: build a [Factory] via its own constructor, then call
//     its Produce method
//   - [FactoryInstance]: an already-available factory object
//   - [Null]: a deliberate "no value" for an optional dependency
//   - [Placeholder]: a synthetic marker for a dependency the solver could
//     not satisfy; the caller must supply it later via extra bindings
//
// # Cache Policies
//
// Each node carries a [CachePolicy] deciding whether its result may be built
// once and shared. [NoPreference] defers to the type-level default declared
// when the component was registered.
//
// # Metadata
//
// The [Metadata] interface answers two questions about a concrete type: what
// are its declared dependency requirements (in constructor order), and is it
// shareable by default. The standard implementation is [Registry], populated
// by [Registry.Register] with a constructor function and per-parameter
// options:
//
//	reg := component.NewRegistry()
//	err := reg.Register(NewItemMeanScorer,
//	    component.Shareable(),
//	    component.Transient(0))
//
// A process-wide [DefaultRegistry] exists for convenience; it is consulted by
// the solver when no explicit registry is supplied, never by the graph engine
// itself.
package component

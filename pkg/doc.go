// Package pkg provides the core libraries for Gantry component-graph assembly.
//
// # Overview
//
// Gantry builds recommender-style systems out of explicit component graphs: a
// configuration of bindings is solved into an immutable dependency graph,
// shared components are instantiated exactly once, and the finished engine can
// be persisted and reloaded without its build-time dependencies. The pkg
// directory is organized into:
//
//  1. [component] - Construction rules, cache policies, and the type registry
//  2. [graph] - The immutable dependency graph (nodes, edges, traversal, rewriting)
//  3. [solve] - Binding sets and the solver that turns them into graphs
//  4. [assemble] - Lifecycle analysis, injection, and graph instantiation
//  5. [engine] - The public build/persist/reconfigure surface
//  6. [store] - Snapshot storage backends (file, Redis, MongoDB)
//  7. [render/dot] - Graphviz visualization of component graphs
//
// # Architecture
//
// The typical data flow through Gantry:
//
//	Bindings (+ component registry)
//	         ↓
//	    [solve] package (resolve requirements into a graph)
//	         ↓
//	    [assemble] package (classify lifecycles, build shared components)
//	         ↓
//	    [engine] package (persist, reload, reconfigure, create assemblies)
//	         ↓
//	    component instances / snapshots
//
// # Quick Start
//
// Register components, build an engine, and get a component out:
//
//	reg := component.NewRegistry()
//	reg.MustRegister(NewModel, component.Shareable(), component.Transient(0))
//	reg.MustRegister(NewScorer, component.Shareable())
//
//	b := solve.NewBindings().
//	    BindInstance(reflect.TypeOf((*DataSource)(nil)).Elem(), src).
//	    AddRoot(reflect.TypeOf((*Scorer)(nil)))
//
//	eng, err := engine.Build(b, engine.WithRegistry(reg))
//	if err != nil {
//	    return err
//	}
//	asm, err := eng.Create(nil)
//	if err != nil {
//	    return err
//	}
//	scorer, err := asm.Get(reflect.TypeOf((*Scorer)(nil)))
//
// Persist and reload:
//
//	var buf bytes.Buffer
//	eng.Write(&buf)
//	eng2, err := engine.Load(&buf, engine.WithRegistry(reg))
//
// # Main Packages
//
// [component] - The vocabulary of the system: construction rules (instance,
// constructed, factory, null, placeholder), cache policies, requirements, and
// the registry that describes constructors via reflection.
//
// [graph] - Immutable pointer-identity DAG. Graphs are built bottom-up with
// [graph.Builder], which makes cycles unrepresentable, and rewritten
// persistently with [graph.ReplaceNode].
//
// [solve] - Turns a [solve.Bindings] configuration into a dependency graph,
// consulting explicit bindings first, then an existing graph's prebuilt nodes,
// then the registry's default providers, and leaving placeholders for
// anything unresolved.
//
// [assemble] - Lifecycle analysis ([assemble.ShareableNodes]), the lazy
// [assemble.Injector], and the [assemble.Instantiator] that builds shared
// components in dependency order and splices the results back into the graph.
//
// [engine] - Ties the above together: [engine.Build], [engine.Load],
// [engine.Engine.Reconfigure], and [engine.Engine.Create].
//
// [store] - Snapshot persistence: FileStore for CLI use, RedisStore for
// short-lived shared engines, MongoStore for durable fleet-served engines.
//
// [observability] - Optional hooks for solve, construction, and store events.
//
// [buildinfo] - Build-time version information injected via ldflags.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/assemble/... # Specific package
//
// [component]: https://pkg.go.dev/github.com/matzehuels/gantry/pkg/component
// [graph]: https://pkg.go.dev/github.com/matzehuels/gantry/pkg/graph
// [solve]: https://pkg.go.dev/github.com/matzehuels/gantry/pkg/solve
// [assemble]: https://pkg.go.dev/github.com/matzehuels/gantry/pkg/assemble
// [engine]: https://pkg.go.dev/github.com/matzehuels/gantry/pkg/engine
// [store]: https://pkg.go.dev/github.com/matzehuels/gantry/pkg/store
// [render/dot]: https://pkg.go.dev/github.com/matzehuels/gantry/pkg/render/dot
// [observability]: https://pkg.go.dev/github.com/matzehuels/gantry/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/gantry/pkg/buildinfo
package pkg

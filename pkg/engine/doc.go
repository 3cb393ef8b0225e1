// Package engine ties the gantry core together: it builds finalized
// component graphs from bindings, serves object assemblies from them, and
// persists them so expensive construction (model training, index builds)
// never has to run twice.
//
// # Lifecycle
//
//	bindings := solve.NewBindings().
//	    BindInstance(dataSourceType, src).
//	    AddRoot(scorerType)
//
//	eng, err := engine.Build(bindings, engine.WithRegistry(reg))
//	...
//	asm, err := eng.Create(nil)         // resolve the declared roots
//	scorer, err := asm.Get(scorerType)
//
// [Build] solves the bindings into a graph, classifies and instantiates every
// shareable node, and wraps the finalized graph in an [Engine]. The engine
// never mutates its graph: [Engine.Reconfigure] re-solves against extra
// bindings and returns a fresh engine sharing every untouched prebuilt
// subgraph by identity. [Engine.Create] is the per-session entry point - it
// reconfigures (when extra bindings are given) and returns an [Assembly] with
// all top-level roots resolved.
//
// # Persistence
//
// [Engine.Write] serializes the finalized graph - structure, requirement
// descriptors, and embedded prebuilt payloads - as a single opaque blob;
// [Load] restores it without invoking any construction rule. Concrete payload
// types must be registered with [RegisterType] before writing or loading, and
// constructed nodes re-attach their constructors through the component
// registry, so the loading process must register the same component set.
// Deserialized data is untrusted: Load re-checks the no-unresolved-
// placeholder invariant and rejects malformed structure outright.
package engine

package assemble

import (
	"fmt"
	"io"
	"reflect"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gantry/pkg/component"
	"github.com/matzehuels/gantry/pkg/graph"
	"github.com/matzehuels/gantry/pkg/observability"
)

// Injector lazily resolves instances from a finalized graph. It owns one
// provider cache keyed by node identity; the cache lives exactly as long as
// the injector.
//
// The graph itself is immutable and may be shared by any number of injectors
// without synchronization. The provider cache is the only concurrency-
// sensitive state: lookups and provider creation are serialized by a mutex,
// and memoized providers guarantee at most one construction per node per
// injector even under concurrent Get calls. Nodes with the NewInstance policy
// are exempt - concurrent callers may legitimately receive distinct values.
type Injector struct {
	root *graph.Node
	log  *log.Logger

	mu        sync.Mutex
	providers map[*graph.Node]provider
}

type provider func() (any, error)

// NewInjector creates an injector over a finalized graph. logger may be nil.
func NewInjector(root *graph.Node, logger *log.Logger) *Injector {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Injector{
		root:      root,
		log:       logger,
		providers: make(map[*graph.Node]provider),
	}
}

// Get resolves an instance for the requested type. It first looks for a root
// edge whose requested type equals t with no qualifier; failing that, it
// searches breadth-first for the shallowest node whose produced type is
// assignable to t on an unqualified edge. Returns (nil, nil) when nothing in
// the graph satisfies the type.
func (in *Injector) Get(t reflect.Type) (any, error) {
	for _, e := range in.root.Outgoing() {
		req := e.Requirement()
		if req.Type == t && req.Qualifier == "" {
			return in.Instantiate(e.Target())
		}
	}
	return in.get("", t)
}

// GetQualified resolves an instance for the requested type through an edge
// carrying the given qualifier tag. An empty tag matches only untagged edges;
// a specific tag must match exactly. Returns (nil, nil) when nothing matches.
func (in *Injector) GetQualified(tag string, t reflect.Type) (any, error) {
	return in.get(tag, t)
}

func (in *Injector) get(tag string, t reflect.Type) (any, error) {
	e, ok := graph.FindEdgeBFS(in.root, func(e graph.Edge) bool {
		produced := e.Target().Label().Rule.ProducedType()
		return produced != nil && produced.AssignableTo(t) && e.Requirement().Qualifier == tag
	})
	if !ok {
		return nil, nil
	}
	return in.Instantiate(e.Target())
}

// Instantiate resolves the given node through the provider cache, building it
// (and, recursively, its dependencies) on first use.
func (in *Injector) Instantiate(n *graph.Node) (any, error) {
	return in.provider(n)()
}

// provider returns the cached provider for a node, creating it under the
// injector lock on first request. Construction itself runs outside the lock
// so recursive dependency resolution cannot deadlock; memoized providers use
// sync.Once for the at-most-one-construction guarantee.
func (in *Injector) provider(n *graph.Node) provider {
	in.mu.Lock()
	defer in.mu.Unlock()
	if p, ok := in.providers[n]; ok {
		return p
	}
	p := provider(func() (any, error) { return in.build(n) })
	if n.Label().Policy != component.NewInstance {
		p = memoize(p)
	}
	in.providers[n] = p
	return p
}

func memoize(p provider) provider {
	var (
		once sync.Once
		val  any
		err  error
	)
	return func() (any, error) {
		once.Do(func() { val, err = p() })
		return val, err
	}
}

// build interprets the node's construction rule. The switch is exhaustive
// over the closed rule set.
func (in *Injector) build(n *graph.Node) (any, error) {
	switch rule := n.Label().Rule.(type) {
	case component.Instance:
		return rule.Value, nil

	case component.Null:
		return nil, nil

	case component.Placeholder:
		return nil, &UnresolvedDependencyError{Type: rule.Type}

	case component.Constructed:
		args, err := in.arguments(n)
		if err != nil {
			return nil, err
		}
		in.log.Debug("constructing component", "type", component.TypeName(rule.Type))
		start := time.Now()
		obj, err := call(rule.Ctor, args)
		observability.Engine().OnComponentBuild(component.TypeName(rule.Type), time.Since(start), err)
		if err != nil {
			return nil, &ConstructionError{Type: rule.Type, Err: err}
		}
		return obj, nil

	case component.FactoryType:
		args, err := in.arguments(n)
		if err != nil {
			return nil, err
		}
		in.log.Debug("constructing factory", "type", component.TypeName(rule.Factory))
		obj, err := call(rule.Ctor, args)
		if err != nil {
			return nil, &ConstructionError{Type: rule.Factory, Err: err}
		}
		f, ok := obj.(component.Factory)
		if !ok {
			return nil, &ConstructionError{
				Type: rule.Factory,
				Err:  fmt.Errorf("%T does not implement component.Factory", obj),
			}
		}
		return in.produce(f, rule.Type)

	case component.FactoryInstance:
		return in.produce(rule.Factory, rule.Type)

	default:
		// The rule set is closed; a new variant here is a programming error.
		panic(fmt.Sprintf("assemble: unknown construction rule %T", rule))
	}
}

// arguments resolves the node's outgoing edges, in order, into constructor
// arguments. Transient edges are included - their values are still needed to
// build the node, they are simply not retained afterwards.
func (in *Injector) arguments(n *graph.Node) ([]any, error) {
	edges := n.Outgoing()
	args := make([]any, len(edges))
	for i, e := range edges {
		v, err := in.Instantiate(e.Target())
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (in *Injector) produce(f component.Factory, produced reflect.Type) (any, error) {
	start := time.Now()
	obj, err := f.Produce()
	observability.Engine().OnComponentBuild(component.TypeName(produced), time.Since(start), err)
	if err != nil {
		return nil, &ConstructionError{Type: produced, Err: err}
	}
	return obj, nil
}

// call invokes a constructor with the given arguments, mapping nil arguments
// to the parameter type's zero value and unpacking an optional trailing error
// result.
func call(fn reflect.Value, args []any) (any, error) {
	ft := fn.Type()
	if len(args) != ft.NumIn() {
		return nil, fmt.Errorf("want %d arguments, have %d", ft.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil {
			in[i] = reflect.Zero(ft.In(i))
			continue
		}
		v := reflect.ValueOf(a)
		if !v.Type().AssignableTo(ft.In(i)) {
			return nil, fmt.Errorf("argument %d: %s is not assignable to %s",
				i, component.TypeName(v.Type()), component.TypeName(ft.In(i)))
		}
		in[i] = v
	}
	out := fn.Call(in)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	res := out[0]
	// A typed nil result is a legitimate "no value"; normalize it so callers
	// see an untyped nil rather than a non-nil interface around a nil pointer.
	switch res.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		if res.IsNil() {
			return nil, nil
		}
	}
	return res.Interface(), nil
}

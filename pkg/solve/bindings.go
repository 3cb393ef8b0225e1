package solve

import (
	"reflect"

	"github.com/matzehuels/gantry/pkg/component"
)

type bindKind int

const (
	bindInstance bindKind = iota
	bindType
	bindConstructor
	bindFactoryType
	bindFactoryInstance
	bindNull
	bindExternal
)

type binding struct {
	abstract  reflect.Type
	qualifier string
	policy    component.CachePolicy
	kind      bindKind

	instance any               // bindInstance
	impl     reflect.Type      // bindType, bindFactoryType
	ctor     any               // bindConstructor
	factory  component.Factory // bindFactoryInstance
}

// BindOption customizes a single binding or root declaration.
type BindOption func(*binding)

// WithQualifier tags the binding so it satisfies only requirements carrying
// the same qualifier.
func WithQualifier(tag string) BindOption {
	return func(b *binding) { b.qualifier = tag }
}

// WithPolicy overrides the bound component's cache policy at this site.
func WithPolicy(p component.CachePolicy) BindOption {
	return func(b *binding) { b.policy = p }
}

// Bindings is a declarative description of how abstract dependencies are
// satisfied, plus the top-level roots the solved graph must expose. The zero
// value is usable.
type Bindings struct {
	binds []binding
	roots []component.Requirement
}

// NewBindings creates an empty binding set.
func NewBindings() *Bindings { return &Bindings{} }

func (b *Bindings) add(abstract reflect.Type, kind bindKind, opts []BindOption) *binding {
	b.binds = append(b.binds, binding{abstract: abstract, kind: kind})
	bd := &b.binds[len(b.binds)-1]
	for _, opt := range opts {
		opt(bd)
	}
	return bd
}

// BindInstance satisfies the abstract type with an already-built value.
func (b *Bindings) BindInstance(abstract reflect.Type, value any, opts ...BindOption) *Bindings {
	b.add(abstract, bindInstance, opts).instance = value
	return b
}

// BindType satisfies the abstract type with a registered concrete type. The
// solver looks the implementation up in its registry; solving fails if it was
// never registered.
func (b *Bindings) BindType(abstract, impl reflect.Type, opts ...BindOption) *Bindings {
	b.add(abstract, bindType, opts).impl = impl
	return b
}

// BindConstructor satisfies the abstract type with an ad-hoc constructor
// function, reflected at solve time. Parameters become unqualified,
// non-transient requirements; register the type instead when per-parameter
// options are needed.
func (b *Bindings) BindConstructor(abstract reflect.Type, ctor any, opts ...BindOption) *Bindings {
	b.add(abstract, bindConstructor, opts).ctor = ctor
	return b
}

// BindFactoryType satisfies the abstract type by building the registered
// factory type factoryImpl (via its own dependencies) and invoking its
// Produce method.
func (b *Bindings) BindFactoryType(abstract, factoryImpl reflect.Type, opts ...BindOption) *Bindings {
	b.add(abstract, bindFactoryType, opts).impl = factoryImpl
	return b
}

// BindFactory satisfies the abstract type with an already-available factory
// object whose Produce method yields the value.
func (b *Bindings) BindFactory(abstract reflect.Type, f component.Factory, opts ...BindOption) *Bindings {
	b.add(abstract, bindFactoryInstance, opts).factory = f
	return b
}

// BindNull satisfies the abstract type with a deliberate "no value": an
// optional dependency that resolves to nil without error.
func (b *Bindings) BindNull(abstract reflect.Type, opts ...BindOption) *Bindings {
	b.add(abstract, bindNull, opts)
	return b
}

// BindExternal marks the abstract type as supplied later: the solver emits an
// unresolved placeholder that extra bindings must replace before the node's
// value is ever needed (e.g. a live data source attached per session).
func (b *Bindings) BindExternal(abstract reflect.Type, opts ...BindOption) *Bindings {
	b.add(abstract, bindExternal, opts)
	return b
}

// AddRoot declares a top-level requested root: the solved graph's root node
// gains an edge for it, and assemblies resolve it eagerly.
func (b *Bindings) AddRoot(t reflect.Type, opts ...BindOption) *Bindings {
	var tmp binding
	for _, opt := range opts {
		opt(&tmp)
	}
	b.roots = append(b.roots, component.Requirement{Type: t, Qualifier: tmp.qualifier})
	return b
}

// Roots returns the declared top-level roots in declaration order.
func (b *Bindings) Roots() []component.Requirement {
	out := make([]component.Requirement, len(b.roots))
	copy(out, b.roots)
	return out
}

// Empty reports whether the set declares neither bindings nor roots.
func (b *Bindings) Empty() bool {
	return b == nil || (len(b.binds) == 0 && len(b.roots) == 0)
}

// matches returns the bindings satisfying a requirement (type equality plus
// exact qualifier match).
func (b *Bindings) matches(req component.Requirement) []*binding {
	var out []*binding
	for i := range b.binds {
		bd := &b.binds[i]
		if bd.abstract == req.Type && req.Matches(bd.qualifier) {
			out = append(out, bd)
		}
	}
	return out
}

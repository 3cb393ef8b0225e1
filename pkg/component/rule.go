package component

import "reflect"

// Factory produces a value on demand. Factory objects are built (or supplied)
// first, then their Produce method is invoked exactly once per construction
// of the node they satisfy.
type Factory interface {
	Produce() (any, error)
}

// Rule describes how a graph node produces its value. The implementations in
// this package form a closed set; code interpreting a rule switches
// exhaustively over them.
type Rule interface {
	// ProducedType is the static type the rule produces. For Null and
	// Placeholder rules it is the type that was requested.
	ProducedType() reflect.Type

	// Requires lists the dependency requirements the rule needs to build its
	// value, in constructor-parameter order. A node's outgoing edges match
	// this slice exactly, in count and order.
	Requires() []Requirement

	// String renders a short form for logs and graph dumps.
	String() string

	isRule()
}

// Instance is a prebuilt value. Instance nodes are trivially shareable and
// are what instantiation leaves behind for every shareable node.
type Instance struct {
	Type  reflect.Type
	Value any
}

// InstanceOf wraps an already-built value as a rule. The produced type is the
// value's dynamic type.
func InstanceOf(v any) Instance {
	return Instance{Type: reflect.TypeOf(v), Value: v}
}

func (r Instance) ProducedType() reflect.Type { return r.Type }
func (r Instance) Requires() []Requirement    { return nil }
func (r Instance) String() string             { return "instance " + TypeName(r.Type) }
func (r Instance) isRule()                    {}

// Constructed builds a value by invoking a constructor function whose
// parameters are satisfied by the node's outgoing edges in order.
type Constructed struct {
	Type reflect.Type  // constructor result type
	Ctor reflect.Value // func(deps...) (T) or (T, error)
	Reqs []Requirement
}

func (r Constructed) ProducedType() reflect.Type { return r.Type }
func (r Constructed) Requires() []Requirement    { return r.Reqs }
func (r Constructed) String() string             { return "type " + TypeName(r.Type) }
func (r Constructed) isRule()                    {}

// FactoryType builds a [Factory] by invoking its constructor (parameters from
// the node's edges), then calls Produce on the result. The node's produced
// type is the type the factory was bound to satisfy.
type FactoryType struct {
	Type    reflect.Type  // type the factory produces
	Factory reflect.Type  // concrete factory type, for diagnostics
	Ctor    reflect.Value // factory constructor
	Reqs    []Requirement // factory constructor requirements
}

func (r FactoryType) ProducedType() reflect.Type { return r.Type }
func (r FactoryType) Requires() []Requirement    { return r.Reqs }
func (r FactoryType) String() string {
	return "factory-type " + TypeName(r.Factory) + " -> " + TypeName(r.Type)
}
func (r FactoryType) isRule() {}

// FactoryInstance is an already-available factory object; building the node
// calls Produce on it. Factory instance nodes have no edges.
type FactoryInstance struct {
	Type    reflect.Type // type the factory produces
	Factory Factory
}

func (r FactoryInstance) ProducedType() reflect.Type { return r.Type }
func (r FactoryInstance) Requires() []Requirement    { return nil }
func (r FactoryInstance) String() string             { return "factory " + TypeName(r.Type) }
func (r FactoryInstance) isRule()                    {}

// Null is a deliberate "no value" result for an optional dependency. Null
// nodes resolve to nil without invoking anything.
type Null struct {
	Type reflect.Type
}

// NullOf creates a null rule for the given requested type.
func NullOf(t reflect.Type) Null { return Null{Type: t} }

func (r Null) ProducedType() reflect.Type { return r.Type }
func (r Null) Requires() []Requirement    { return nil }
func (r Null) String() string             { return "null " + TypeName(r.Type) }
func (r Null) isRule()                    {}

// Placeholder marks a dependency the solver could not satisfy. The caller
// must supply it through extra bindings before the node can be built;
// resolving a placeholder is a configuration error, never a silent nil.
type Placeholder struct {
	Type reflect.Type
}

// PlaceholderOf creates a placeholder rule for the given requested type.
func PlaceholderOf(t reflect.Type) Placeholder { return Placeholder{Type: t} }

func (r Placeholder) ProducedType() reflect.Type { return r.Type }
func (r Placeholder) Requires() []Requirement    { return nil }
func (r Placeholder) String() string             { return "placeholder " + TypeName(r.Type) }
func (r Placeholder) isRule()                    {}

// rootMarker is the synthetic type carried by a graph's root node. The root
// holds a null rule for it and a NewInstance policy so it is never built,
// cached, or classified shareable; its outgoing edges are the top-level
// requested roots.
type rootMarker struct{}

// RootType is the requested type of every graph root node.
var RootType = reflect.TypeOf(rootMarker{})

// RootComponent returns the label used for graph root nodes.
func RootComponent() Component {
	return New(NullOf(RootType), NewInstance)
}

// IsRoot reports whether a component is a graph root label.
func IsRoot(c Component) bool {
	n, ok := c.Rule.(Null)
	return ok && n.Type == RootType
}

// Component is a graph node's label: a construction rule plus the cache
// policy governing whether its result may be shared.
type Component struct {
	Rule   Rule
	Policy CachePolicy
}

// New creates a component label.
func New(rule Rule, policy CachePolicy) Component {
	return Component{Rule: rule, Policy: policy}
}

// String renders the component for logs and graph dumps.
func (c Component) String() string {
	if c.Policy == NoPreference {
		return c.Rule.String()
	}
	return c.Rule.String() + " [" + c.Policy.String() + "]"
}

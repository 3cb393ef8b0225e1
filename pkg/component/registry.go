package component

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	// ErrInvalidConstructor is returned by [Registry.Register] when the
	// constructor is not a function returning (T) or (T, error).
	ErrInvalidConstructor = errors.New("constructor must be a function returning (T) or (T, error)")

	// ErrDuplicateComponent is returned by [Registry.Register] when a
	// constructor for the same produced type is already registered.
	ErrDuplicateComponent = errors.New("component already registered")

	// ErrUnregistered is returned when metadata is requested for a type that
	// has no registered constructor.
	ErrUnregistered = errors.New("type not registered")

	// ErrBadParameterIndex is returned by [Registry.Register] when a
	// per-parameter option names a parameter the constructor does not have.
	ErrBadParameterIndex = errors.New("parameter index out of range")
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// Metadata describes concrete types to the solver and the classifier: the
// dependency requirements a type declares (in constructor order) and whether
// it is shareable by default. [Registry] is the standard implementation.
type Metadata interface {
	// Requirements returns the declared dependency requirements of t, in
	// constructor-parameter order. Returns ErrUnregistered for unknown types.
	Requirements(t reflect.Type) ([]Requirement, error)

	// ShareableByDefault reports whether t was declared shareable. A node
	// with the NoPreference cache policy is treated as Memoize exactly when
	// this returns true for its produced type.
	ShareableByDefault(t reflect.Type) bool
}

// Info is the registered description of one concrete component type.
type Info struct {
	Type      reflect.Type  // constructor result type
	Ctor      reflect.Value // the constructor function
	Reqs      []Requirement // one per constructor parameter, in order
	Shareable bool          // type-level shareability default
}

// Rule returns a Constructed rule invoking this component's constructor.
func (i *Info) Rule() Constructed {
	return Constructed{Type: i.Type, Ctor: i.Ctor, Reqs: i.Reqs}
}

// Registry holds component descriptions keyed by produced type. It doubles as
// the "known builders" table the solver consults when a requirement has no
// explicit binding, and as the name-to-type index persistence needs to
// rehydrate serialized graphs.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]*Info
	byName map[string]reflect.Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byType: make(map[reflect.Type]*Info),
		byName: make(map[string]reflect.Type),
	}
}

// Option customizes a component registration.
type Option func(*registration)

type registration struct {
	shareable  bool
	qualifiers map[int]string
	transients map[int]bool
}

// Shareable declares the component shareable by default: unless a binding
// overrides its cache policy, it will be built once and reused.
func Shareable() Option {
	return func(r *registration) { r.shareable = true }
}

// Qualifier attaches a qualifier tag to the constructor parameter at index i,
// so the requirement matches only providers bound with the same tag.
func Qualifier(i int, tag string) Option {
	return func(r *registration) { r.qualifiers[i] = tag }
}

// Transient marks the constructor parameter at index i as build-time-only:
// the dependency is consumed during construction and not retained, so it is
// ignored when deciding shareability and its edge is dropped once the
// component has been built.
func Transient(i int) Option {
	return func(r *registration) { r.transients[i] = true }
}

// Describe reflects over a constructor function and returns its component
// description without registering it anywhere. The constructor must be a
// non-variadic function returning either a single value or a value and an
// error; its parameters become the dependency requirements in order.
func Describe(ctor any, opts ...Option) (*Info, error) {
	r := registration{
		qualifiers: make(map[int]string),
		transients: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(&r)
	}

	fn := reflect.ValueOf(ctor)
	ft := fn.Type()
	if fn.Kind() != reflect.Func || ft.NumOut() < 1 || ft.NumOut() > 2 {
		return nil, ErrInvalidConstructor
	}
	if ft.NumOut() == 2 && ft.Out(1) != errType {
		return nil, ErrInvalidConstructor
	}
	if ft.IsVariadic() {
		return nil, ErrInvalidConstructor
	}

	produced := ft.Out(0)
	for i := range r.qualifiers {
		if i < 0 || i >= ft.NumIn() {
			return nil, fmt.Errorf("%w: qualifier on parameter %d of %s", ErrBadParameterIndex, i, TypeName(produced))
		}
	}
	for i := range r.transients {
		if i < 0 || i >= ft.NumIn() {
			return nil, fmt.Errorf("%w: transient on parameter %d of %s", ErrBadParameterIndex, i, TypeName(produced))
		}
	}

	reqs := make([]Requirement, ft.NumIn())
	for i := 0; i < ft.NumIn(); i++ {
		reqs[i] = Requirement{
			Type:      ft.In(i),
			Qualifier: r.qualifiers[i],
			Transient: r.transients[i],
		}
	}

	return &Info{Type: produced, Ctor: fn, Reqs: reqs, Shareable: r.shareable}, nil
}

// Register records a component constructor. See [Describe] for the accepted
// constructor shapes. The produced type and every parameter type are also
// indexed by name for snapshot loading.
func (reg *Registry) Register(ctor any, opts ...Option) error {
	info, err := Describe(ctor, opts...)
	if err != nil {
		return err
	}
	produced := info.Type
	reqs := info.Reqs

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.byType[produced]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateComponent, TypeName(produced))
	}
	reg.byType[produced] = info
	reg.indexLocked(produced)
	for _, rq := range reqs {
		reg.indexLocked(rq.Type)
	}
	return nil
}

// MustRegister is like [Registry.Register] but panics on error. Intended for
// package init-time registration of a fixed component set.
func (reg *Registry) MustRegister(ctor any, opts ...Option) {
	if err := reg.Register(ctor, opts...); err != nil {
		panic(err)
	}
}

// Lookup returns the registered info whose produced type is exactly t.
func (reg *Registry) Lookup(t reflect.Type) (*Info, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	info, ok := reg.byType[t]
	return info, ok
}

// Providers returns every registered info whose produced type is assignable
// to t, in no particular order. The solver uses this as the default-builder
// table for requirements without an explicit binding; more than one result is
// an ambiguity for it to report.
func (reg *Registry) Providers(t reflect.Type) []*Info {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	var out []*Info
	for pt, info := range reg.byType {
		if pt.AssignableTo(t) {
			out = append(out, info)
		}
	}
	return out
}

// Requirements implements [Metadata].
func (reg *Registry) Requirements(t reflect.Type) ([]Requirement, error) {
	info, ok := reg.Lookup(t)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnregistered, TypeName(t))
	}
	return info.Reqs, nil
}

// ShareableByDefault implements [Metadata]. Unregistered types default to
// false: nothing is shared unless it was declared safe to share.
func (reg *Registry) ShareableByDefault(t reflect.Type) bool {
	info, ok := reg.Lookup(t)
	return ok && info.Shareable
}

// RegisterType indexes a type by name without registering a constructor.
// Snapshot loading resolves serialized type names through this index; types
// that only ever appear as prebuilt instances or placeholders must be
// registered here (or transitively via [Registry.Register]) before loading.
func (reg *Registry) RegisterType(t reflect.Type) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.indexLocked(t)
}

// TypeByName resolves a persisted type name back to a type.
func (reg *Registry) TypeByName(name string) (reflect.Type, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	t, ok := reg.byName[name]
	return t, ok
}

func (reg *Registry) indexLocked(t reflect.Type) {
	if t == nil {
		return
	}
	reg.byName[TypeName(t)] = t
	if t.Kind() == reflect.Ptr {
		reg.byName[TypeName(t.Elem())] = t.Elem()
	}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry. It is a convenience for
// applications with a single component set; the engine never consults it
// implicitly except when handed a nil registry.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register records a constructor in the default registry.
func Register(ctor any, opts ...Option) error { return defaultRegistry.Register(ctor, opts...) }

// MustRegister records a constructor in the default registry, panicking on error.
func MustRegister(ctor any, opts ...Option) { defaultRegistry.MustRegister(ctor, opts...) }

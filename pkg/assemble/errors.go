package assemble

import (
	"reflect"

	"github.com/matzehuels/gantry/pkg/component"
)

// UnresolvedDependencyError reports that an unresolved placeholder was
// reached where a real value is required: either a construction rule needed
// its value, or it remained reachable through a non-transient edge after
// instantiation. The whole operation that encountered it fails; no partial
// graph or nil substitute is ever produced.
type UnresolvedDependencyError struct {
	Type reflect.Type
}

func (e *UnresolvedDependencyError) Error() string {
	return "unresolved dependency: " + component.TypeName(e.Type)
}

// ConstructionError reports that a construction rule failed while building a
// node. It carries the failing node's produced type and wraps the underlying
// cause. Construction is assumed deterministic, so nothing retries it.
type ConstructionError struct {
	Type reflect.Type
	Err  error
}

func (e *ConstructionError) Error() string {
	return "building " + component.TypeName(e.Type) + ": " + e.Err.Error()
}

func (e *ConstructionError) Unwrap() error { return e.Err }

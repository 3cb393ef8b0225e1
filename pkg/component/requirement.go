package component

import (
	"fmt"
	"reflect"
)

// Requirement describes one dependency of a component: the requested type, an
// optional qualifier distinguishing among multiple providers of that type,
// and whether the dependency is needed only at construction time.
//
// Transient requirements are consumed once while building the dependent and
// are not retained afterwards: they are ignored when deciding whether the
// dependent can be shared, and their edges are dropped from the graph once
// the dependent has been built.
type Requirement struct {
	Type      reflect.Type
	Qualifier string
	Transient bool
}

// Matches reports whether a provider bound with the given qualifier satisfies
// this requirement's qualifier. An unqualified requirement matches only
// unqualified providers; a qualified requirement needs an exact match.
func (r Requirement) Matches(qualifier string) bool {
	return r.Qualifier == qualifier
}

// String renders the requirement for logs and error messages.
func (r Requirement) String() string {
	s := TypeName(r.Type)
	if r.Qualifier != "" {
		s = r.Qualifier + ":" + s
	}
	if r.Transient {
		s += " (transient)"
	}
	return s
}

// TypeName returns a stable, package-qualified name for a type, suitable for
// persistence and diagnostics. Named types render as "pkgpath.Name"; unnamed
// types (pointers, slices, ...) use reflect's syntax around their element.
func TypeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	if t.Kind() == reflect.Ptr {
		return "*" + TypeName(t.Elem())
	}
	return fmt.Sprint(t)
}

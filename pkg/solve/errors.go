package solve

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/matzehuels/gantry/pkg/component"
)

// ErrDependencyCycle is returned when a requirement transitively requires
// itself. The graph model cannot represent cycles, so the solver refuses the
// configuration instead.
var ErrDependencyCycle = errors.New("dependency cycle")

// AmbiguousBindingError reports that more than one binding (or more than one
// registered default builder) matched a single requirement. The solver never
// picks one arbitrarily.
type AmbiguousBindingError struct {
	Type      reflect.Type
	Qualifier string
	Count     int
}

func (e *AmbiguousBindingError) Error() string {
	req := component.Requirement{Type: e.Type, Qualifier: e.Qualifier}
	return fmt.Sprintf("ambiguous binding: %d candidates for %s", e.Count, req)
}

package engine

import (
	"reflect"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gantry/pkg/assemble"
	"github.com/matzehuels/gantry/pkg/graph"
)

// Assembly is a ready-to-use object graph: every declared root has been
// resolved and further lookups are served from a per-assembly provider
// cache. Assemblies are safe for concurrent use; shareable components are
// constructed at most once per assembly, NewInstance components on every
// request.
type Assembly struct {
	root *graph.Node
	inj  *assemble.Injector
}

func newAssembly(root *graph.Node, logger *log.Logger) (*Assembly, error) {
	a := &Assembly{root: root, inj: assemble.NewInjector(root, logger)}
	for _, e := range root.Outgoing() {
		if _, err := a.inj.Instantiate(e.Target()); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Get resolves an instance assignable to t, or (nil, nil) if the graph
// provides nothing for it. Root edges are consulted first; otherwise the
// shallowest matching node wins.
func (a *Assembly) Get(t reflect.Type) (any, error) { return a.inj.Get(t) }

// GetQualified is [Assembly.Get] restricted to edges carrying the given
// qualifier tag.
func (a *Assembly) GetQualified(tag string, t reflect.Type) (any, error) {
	return a.inj.GetQualified(tag, t)
}

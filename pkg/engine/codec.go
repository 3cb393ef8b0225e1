package engine

import (
	"encoding/gob"
	"fmt"
	"io"
	"reflect"

	"github.com/matzehuels/gantry/pkg/component"
	"github.com/matzehuels/gantry/pkg/graph"
)

// snapshotVersion guards the wire layout. Bump on incompatible changes.
const snapshotVersion = 1

// RegisterType registers a concrete value type for snapshot encoding: the
// gob codec needs it to carry the value through an interface field, and the
// registry needs its name indexed so the loading side can resolve it.
// Types that appear as constructor results or parameters are indexed
// automatically on registration; call this for payload types that only ever
// travel as prebuilt instances (trained models, bound data sources).
func RegisterType(reg *component.Registry, v any) {
	if reg == nil {
		reg = component.DefaultRegistry()
	}
	gob.Register(v)
	reg.RegisterType(reflect.TypeOf(v))
}

// Wire layout: a flat node table in topological order (dependencies first,
// root last) with edges as table indices, so shared substructure round-trips
// by identity.
type encGraph struct {
	Version int
	Nodes   []encNode
	Root    int
}

type encNode struct {
	Kind    encKind
	Type    string  // produced or requested type name
	Factory string  // concrete factory type name, factory-type nodes only
	Value   any     // payload, instance and factory-instance nodes only
	Policy  int
	Edges   []encEdge
}

type encEdge struct {
	Target    int
	Type      string
	Qualifier string
	Transient bool
}

type encKind int

const (
	kindInstance encKind = iota
	kindConstructed
	kindFactoryType
	kindFactoryInstance
	kindNull
	kindPlaceholder
)

func writeSnapshot(w io.Writer, root *graph.Node) error {
	nodes := graph.Sorted(root)
	index := make(map[*graph.Node]int, len(nodes))
	for i, n := range nodes {
		index[n] = i
	}

	out := encGraph{Version: snapshotVersion, Root: index[root]}
	for _, n := range nodes {
		en, err := encodeNode(n, index)
		if err != nil {
			return err
		}
		out.Nodes = append(out.Nodes, en)
	}

	if err := gob.NewEncoder(w).Encode(out); err != nil {
		return &SerializationError{Err: err}
	}
	return nil
}

func encodeNode(n *graph.Node, index map[*graph.Node]int) (encNode, error) {
	label := n.Label()
	en := encNode{Policy: int(label.Policy)}

	switch rule := label.Rule.(type) {
	case component.Instance:
		en.Kind = kindInstance
		en.Type = component.TypeName(rule.Type)
		en.Value = rule.Value
	case component.Constructed:
		en.Kind = kindConstructed
		en.Type = component.TypeName(rule.Type)
	case component.FactoryType:
		en.Kind = kindFactoryType
		en.Type = component.TypeName(rule.Type)
		en.Factory = component.TypeName(rule.Factory)
	case component.FactoryInstance:
		en.Kind = kindFactoryInstance
		en.Type = component.TypeName(rule.Type)
		en.Value = rule.Factory
	case component.Null:
		en.Kind = kindNull
		en.Type = component.TypeName(rule.Type)
	case component.Placeholder:
		en.Kind = kindPlaceholder
		en.Type = component.TypeName(rule.Type)
	default:
		return encNode{}, &SerializationError{Err: fmt.Errorf("unknown rule %T", rule)}
	}

	for _, e := range n.Outgoing() {
		req := e.Requirement()
		en.Edges = append(en.Edges, encEdge{
			Target:    index[e.Target()],
			Type:      component.TypeName(req.Type),
			Qualifier: req.Qualifier,
			Transient: req.Transient,
		})
	}
	return en, nil
}

func readSnapshot(r io.Reader, reg *component.Registry) (*graph.Node, error) {
	// The root marker type never goes through component registration, so
	// make sure its name always resolves.
	reg.RegisterType(component.RootType)

	var in encGraph
	if err := gob.NewDecoder(r).Decode(&in); err != nil {
		return nil, &SerializationError{Err: err}
	}
	if in.Version != snapshotVersion {
		return nil, &SerializationError{Err: fmt.Errorf("unsupported snapshot version %d", in.Version)}
	}
	if in.Root < 0 || in.Root >= len(in.Nodes) {
		return nil, &SerializationError{Err: fmt.Errorf("root index %d out of range", in.Root)}
	}

	nodes := make([]*graph.Node, len(in.Nodes))
	for i, en := range in.Nodes {
		rule, err := decodeRule(en, reg)
		if err != nil {
			return nil, err
		}
		if en.Policy < int(component.NoPreference) || en.Policy > int(component.NewInstance) {
			return nil, &SerializationError{Err: fmt.Errorf("node %d: invalid cache policy %d", i, en.Policy)}
		}
		if want := len(rule.Requires()); want != 0 && want != len(en.Edges) {
			return nil, &SerializationError{Err: fmt.Errorf(
				"node %d: %d edges for rule requiring %d", i, len(en.Edges), want)}
		}

		b := graph.NewBuilder(component.New(rule, component.CachePolicy(en.Policy)))
		for _, ee := range en.Edges {
			// Dependencies precede dependents in the node table; a forward
			// reference would mean a cycle or corruption.
			if ee.Target < 0 || ee.Target >= i {
				return nil, &SerializationError{Err: fmt.Errorf("node %d: edge target %d out of order", i, ee.Target)}
			}
			rt, ok := reg.TypeByName(ee.Type)
			if !ok {
				return nil, &TypeResolutionError{Name: ee.Type}
			}
			b.AddEdge(nodes[ee.Target], component.Requirement{
				Type:      rt,
				Qualifier: ee.Qualifier,
				Transient: ee.Transient,
			})
		}
		nodes[i] = b.Build()
	}
	return nodes[in.Root], nil
}

func decodeRule(en encNode, reg *component.Registry) (component.Rule, error) {
	t, ok := reg.TypeByName(en.Type)
	if !ok {
		return nil, &TypeResolutionError{Name: en.Type}
	}

	switch en.Kind {
	case kindInstance:
		if en.Value == nil {
			return nil, &SerializationError{Err: fmt.Errorf("instance node %s has no payload", en.Type)}
		}
		return component.InstanceOf(en.Value), nil

	case kindConstructed:
		info, ok := reg.Lookup(t)
		if !ok {
			return nil, &TypeResolutionError{Name: en.Type}
		}
		return info.Rule(), nil

	case kindFactoryType:
		ft, ok := reg.TypeByName(en.Factory)
		if !ok {
			return nil, &TypeResolutionError{Name: en.Factory}
		}
		info, ok := reg.Lookup(ft)
		if !ok {
			return nil, &TypeResolutionError{Name: en.Factory}
		}
		return component.FactoryType{Type: t, Factory: info.Type, Ctor: info.Ctor, Reqs: info.Reqs}, nil

	case kindFactoryInstance:
		f, ok := en.Value.(component.Factory)
		if !ok {
			return nil, &SerializationError{Err: fmt.Errorf("factory node %s: payload %T is not a factory", en.Type, en.Value)}
		}
		return component.FactoryInstance{Type: t, Factory: f}, nil

	case kindNull:
		return component.NullOf(t), nil

	case kindPlaceholder:
		return component.PlaceholderOf(t), nil

	default:
		return nil, &SerializationError{Err: fmt.Errorf("unknown node kind %d", en.Kind)}
	}
}

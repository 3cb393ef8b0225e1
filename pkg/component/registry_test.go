package component

import (
	"errors"
	"reflect"
	"testing"
)

type ratings struct{}
type model struct{ r *ratings }

type scorer interface{ score() float64 }

type meanScorer struct{ m *model }

func (s *meanScorer) score() float64 { return 0 }

func newModel(r *ratings, damping float64) (*model, error) { return &model{r: r}, nil }
func newMeanScorer(m *model) *meanScorer                   { return &meanScorer{m: m} }

func TestDescribe(t *testing.T) {
	info, err := Describe(newModel, Shareable(), Transient(0), Qualifier(1, "damping"))
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}

	if info.Type != reflect.TypeOf(&model{}) {
		t.Errorf("produced type = %s, want *model", TypeName(info.Type))
	}
	if !info.Shareable {
		t.Error("Shareable() option not applied")
	}
	if len(info.Reqs) != 2 {
		t.Fatalf("got %d requirements, want 2", len(info.Reqs))
	}
	if !info.Reqs[0].Transient {
		t.Error("parameter 0 should be transient")
	}
	if info.Reqs[1].Qualifier != "damping" {
		t.Errorf("parameter 1 qualifier = %q, want %q", info.Reqs[1].Qualifier, "damping")
	}
}

func TestDescribeRejectsInvalidConstructors(t *testing.T) {
	tests := []struct {
		name string
		ctor any
		want error
	}{
		{"not a function", 42, ErrInvalidConstructor},
		{"no results", func() {}, ErrInvalidConstructor},
		{"second result not error", func() (int, int) { return 0, 0 }, ErrInvalidConstructor},
		{"three results", func() (int, int, error) { return 0, 0, nil }, ErrInvalidConstructor},
		{"variadic", func(xs ...int) int { return 0 }, ErrInvalidConstructor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Describe(tt.ctor); !errors.Is(err, tt.want) {
				t.Errorf("Describe() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDescribeRejectsBadParameterIndex(t *testing.T) {
	if _, err := Describe(newMeanScorer, Transient(3)); !errors.Is(err, ErrBadParameterIndex) {
		t.Errorf("Describe() error = %v, want ErrBadParameterIndex", err)
	}
	if _, err := Describe(newMeanScorer, Qualifier(-1, "x")); !errors.Is(err, ErrBadParameterIndex) {
		t.Errorf("Describe() error = %v, want ErrBadParameterIndex", err)
	}
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(newModel, Shareable()); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	info, ok := reg.Lookup(reflect.TypeOf(&model{}))
	if !ok {
		t.Fatal("Lookup() did not find registered type")
	}
	if len(info.Reqs) != 2 {
		t.Errorf("got %d requirements, want 2", len(info.Reqs))
	}

	if err := reg.Register(newModel); !errors.Is(err, ErrDuplicateComponent) {
		t.Errorf("second Register() error = %v, want ErrDuplicateComponent", err)
	}
}

func TestRegistryProvidersMatchesAssignable(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(newModel, Shareable())
	reg.MustRegister(newMeanScorer, Shareable())

	// Exact concrete type.
	if got := reg.Providers(reflect.TypeOf(&model{})); len(got) != 1 {
		t.Errorf("Providers(*model) returned %d infos, want 1", len(got))
	}

	// Interface satisfied by a registered concrete type.
	scorerType := reflect.TypeOf((*scorer)(nil)).Elem()
	got := reg.Providers(scorerType)
	if len(got) != 1 {
		t.Fatalf("Providers(scorer) returned %d infos, want 1", len(got))
	}
	if got[0].Type != reflect.TypeOf(&meanScorer{}) {
		t.Errorf("Providers(scorer) = %s, want *meanScorer", TypeName(got[0].Type))
	}

	// Nothing registered for the type.
	if got := reg.Providers(reflect.TypeOf("")); len(got) != 0 {
		t.Errorf("Providers(string) returned %d infos, want 0", len(got))
	}
}

func TestRegistryMetadata(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(newModel, Shareable())
	reg.MustRegister(newMeanScorer)

	reqs, err := reg.Requirements(reflect.TypeOf(&model{}))
	if err != nil {
		t.Fatalf("Requirements() error: %v", err)
	}
	if len(reqs) != 2 {
		t.Errorf("got %d requirements, want 2", len(reqs))
	}

	if _, err := reg.Requirements(reflect.TypeOf("")); !errors.Is(err, ErrUnregistered) {
		t.Errorf("Requirements(string) error = %v, want ErrUnregistered", err)
	}

	if !reg.ShareableByDefault(reflect.TypeOf(&model{})) {
		t.Error("model should be shareable by default")
	}
	if reg.ShareableByDefault(reflect.TypeOf(&meanScorer{})) {
		t.Error("meanScorer was not declared shareable")
	}
	if reg.ShareableByDefault(reflect.TypeOf("")) {
		t.Error("unregistered types should not be shareable by default")
	}
}

func TestRegistryNameIndex(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(newModel)

	// Produced and parameter types are indexed by Register.
	for _, typ := range []reflect.Type{
		reflect.TypeOf(&model{}),
		reflect.TypeOf(&ratings{}),
		reflect.TypeOf(float64(0)),
	} {
		got, ok := reg.TypeByName(TypeName(typ))
		if !ok {
			t.Errorf("TypeByName(%q) not found", TypeName(typ))
			continue
		}
		if got != typ {
			t.Errorf("TypeByName(%q) = %s", TypeName(typ), TypeName(got))
		}
	}

	// Pointer registration also indexes the element type.
	if _, ok := reg.TypeByName(TypeName(reflect.TypeOf(model{}))); !ok {
		t.Error("element type of a registered pointer should be indexed")
	}

	if _, ok := reg.TypeByName("no/such.Type"); ok {
		t.Error("TypeByName should miss unknown names")
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want string
	}{
		{reflect.TypeOf(model{}), "github.com/matzehuels/gantry/pkg/component.model"},
		{reflect.TypeOf(&model{}), "*github.com/matzehuels/gantry/pkg/component.model"},
		{reflect.TypeOf(""), "string"},
		{reflect.TypeOf(float64(0)), "float64"},
		{nil, "<nil>"},
	}
	for _, tt := range tests {
		if got := TypeName(tt.typ); got != tt.want {
			t.Errorf("TypeName() = %q, want %q", got, tt.want)
		}
	}
}

func TestRootComponent(t *testing.T) {
	root := RootComponent()
	if !IsRoot(root) {
		t.Error("IsRoot should accept RootComponent")
	}
	if root.Policy != NewInstance {
		t.Error("root labels must never be cached")
	}
	if IsRoot(New(NullOf(reflect.TypeOf(model{})), NoPreference)) {
		t.Error("IsRoot should reject other null components")
	}
}

func TestComponentString(t *testing.T) {
	c := New(NullOf(reflect.TypeOf("")), NoPreference)
	if got := c.String(); got != "null string" {
		t.Errorf("String() = %q", got)
	}
	c = New(NullOf(reflect.TypeOf("")), Memoize)
	if got := c.String(); got != "null string [memoize]" {
		t.Errorf("String() = %q", got)
	}
}

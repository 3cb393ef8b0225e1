package engine

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/matzehuels/gantry/pkg/assemble"
	"github.com/matzehuels/gantry/pkg/component"
	"github.com/matzehuels/gantry/pkg/graph"
	"github.com/matzehuels/gantry/pkg/solve"
)

// Test domain: a mean model trained once from ratings, and a per-session
// recommender combining the shared model with session-supplied data.
// Exported fields so instance payloads survive gob.
type RatingData struct{ N int }
type MeanModel struct{ Total int }
type Recommender struct{ M *MeanModel }
type SessionRecommender struct {
	Data  *RatingData
	Model *MeanModel
}

func typeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

var (
	dataType        = typeOf[*RatingData]()
	modelType       = typeOf[*MeanModel]()
	recommenderType = typeOf[*Recommender]()
	sessionType     = typeOf[*SessionRecommender]()
)

func newMeanModel(d *RatingData) *MeanModel { return &MeanModel{Total: d.N} }
func newRecommender(m *MeanModel) *Recommender {
	return &Recommender{M: m}
}
func newSessionRecommender(d *RatingData, m *MeanModel) *SessionRecommender {
	return &SessionRecommender{Data: d, Model: m}
}

// testRegistry: data is consumed transiently during training; the session
// recommender is deliberately not shareable.
func testRegistry(t *testing.T) *component.Registry {
	t.Helper()
	reg := component.NewRegistry()
	reg.MustRegister(newMeanModel, component.Shareable(), component.Transient(0))
	reg.MustRegister(newRecommender, component.Shareable())
	reg.MustRegister(newSessionRecommender, component.Transient(0))
	RegisterType(reg, &RatingData{})
	RegisterType(reg, &MeanModel{})
	RegisterType(reg, &Recommender{})
	RegisterType(reg, &SessionRecommender{})
	return reg
}

func mustBuild(t *testing.T, b *solve.Bindings, opts ...Option) *Engine {
	t.Helper()
	eng, err := Build(b, opts...)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return eng
}

func get[T any](t *testing.T, a *Assembly) T {
	t.Helper()
	v, err := a.Get(typeOf[T]())
	if err != nil {
		t.Fatalf("Get(%s) error: %v", component.TypeName(typeOf[T]()), err)
	}
	out, ok := v.(T)
	if !ok {
		t.Fatalf("Get(%s) = %T", component.TypeName(typeOf[T]()), v)
	}
	return out
}

func TestBuildCreateGet(t *testing.T) {
	b := solve.NewBindings().
		BindInstance(dataType, &RatingData{N: 12}).
		AddRoot(recommenderType)
	eng := mustBuild(t, b, WithRegistry(testRegistry(t)))

	if !eng.IsInstantiable() {
		t.Fatal("fully bound engine should be instantiable")
	}

	asm, err := eng.Create(nil)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	rec := get[*Recommender](t, asm)
	if rec.M.Total != 12 {
		t.Errorf("model total = %d, want 12", rec.M.Total)
	}
}

func TestBuildDropsTransientTrainingData(t *testing.T) {
	b := solve.NewBindings().
		BindInstance(dataType, &RatingData{N: 12}).
		AddRoot(recommenderType)
	eng := mustBuild(t, b, WithRegistry(testRegistry(t)))

	// The model is prebuilt and its training data is no longer reachable.
	for _, e := range eng.Graph().Outgoing()[0].Target().Outgoing() {
		if e.Requirement().Type == dataType {
			t.Error("training data should be dropped after instantiation")
		}
	}
	for _, n := range graph.Reachable(eng.Graph()) {
		if n.Label().Rule.ProducedType() == dataType {
			t.Error("no reachable node should produce the training data")
		}
	}
}

func TestBuildErrorsSurface(t *testing.T) {
	reg := testRegistry(t)

	t.Run("construction failure", func(t *testing.T) {
		boom := errors.New("bad ratings")
		failing := component.NewRegistry()
		failing.MustRegister(func() (*MeanModel, error) { return nil, boom },
			component.Shareable())

		b := solve.NewBindings().AddRoot(modelType)
		_, err := Build(b, WithRegistry(failing))
		var ce *assemble.ConstructionError
		if !errors.As(err, &ce) || !errors.Is(err, boom) {
			t.Fatalf("Build() error = %v, want wrapped construction failure", err)
		}
	})

	t.Run("unresolved shareable dependency", func(t *testing.T) {
		// No binding for the training data: the model cannot be built.
		b := solve.NewBindings().AddRoot(recommenderType)
		_, err := Build(b, WithRegistry(reg))
		var unresolved *assemble.UnresolvedDependencyError
		if !errors.As(err, &unresolved) {
			t.Fatalf("Build() error = %v, want *UnresolvedDependencyError", err)
		}
	})
}

func TestExternalBindingWorkflow(t *testing.T) {
	trained := &RatingData{N: 7}
	b := solve.NewBindings().
		BindInstance(dataType, trained, solve.WithQualifier("training")).
		BindExternal(dataType).
		AddRoot(sessionType)

	// The session recommender's data arrives per session; the engine builds
	// with a placeholder for it.
	reg := component.NewRegistry()
	reg.MustRegister(func(d *RatingData) *MeanModel { return &MeanModel{Total: d.N} },
		component.Shareable(), component.Transient(0), component.Qualifier(0, "training"))
	reg.MustRegister(newSessionRecommender, component.Transient(0))
	RegisterType(reg, &RatingData{})
	RegisterType(reg, &MeanModel{})

	eng := mustBuild(t, b, WithRegistry(reg))
	if eng.IsInstantiable() {
		t.Fatal("an engine with an external placeholder should not be instantiable")
	}

	// Creating without supplying the external dependency fails loudly.
	_, err := eng.Create(nil)
	var unresolved *assemble.UnresolvedDependencyError
	if !errors.As(err, &unresolved) {
		t.Fatalf("Create() error = %v, want *UnresolvedDependencyError", err)
	}
	if unresolved.Type != dataType {
		t.Errorf("error names %s, want the session data type", component.TypeName(unresolved.Type))
	}

	// Two sessions with different data share the trained model.
	a1, err := eng.Create(solve.NewBindings().BindInstance(dataType, &RatingData{N: 1}))
	if err != nil {
		t.Fatalf("Create(session 1) error: %v", err)
	}
	a2, err := eng.Create(solve.NewBindings().BindInstance(dataType, &RatingData{N: 2}))
	if err != nil {
		t.Fatalf("Create(session 2) error: %v", err)
	}

	r1 := get[*SessionRecommender](t, a1)
	r2 := get[*SessionRecommender](t, a2)
	if r1.Data.N != 1 || r2.Data.N != 2 {
		t.Errorf("session data = %d/%d, want 1/2", r1.Data.N, r2.Data.N)
	}
	if r1.Model != r2.Model {
		t.Error("sessions should share one trained model instance")
	}
	if r1.Model.Total != 7 {
		t.Errorf("model total = %d, want 7 (trained once from the training set)", r1.Model.Total)
	}

	// The base engine is untouched by per-session reconfiguration.
	if eng.IsInstantiable() {
		t.Error("per-session Create must not mutate the base engine")
	}
}

func TestReconfigurePreservesPrebuiltNodes(t *testing.T) {
	b := solve.NewBindings().
		BindInstance(dataType, &RatingData{N: 3}).
		AddRoot(recommenderType)
	eng := mustBuild(t, b, WithRegistry(testRegistry(t)))

	eng2, err := eng.Reconfigure(solve.NewBindings())
	if err != nil {
		t.Fatalf("Reconfigure() error: %v", err)
	}
	if eng2.Graph().Outgoing()[0].Target() != eng.Graph().Outgoing()[0].Target() {
		t.Error("reconfiguring with no changes should reuse prebuilt nodes by identity")
	}
}

func TestReconfigureKeepsAdHocBindings(t *testing.T) {
	// The recommender exists only as an ad-hoc constructor binding with a
	// per-use policy; the registry knows nothing about it. Reconfiguring with
	// an unrelated binding must not lose it.
	reg := component.NewRegistry()
	reg.MustRegister(newMeanModel, component.Shareable(), component.Transient(0))
	RegisterType(reg, &RatingData{})
	RegisterType(reg, &MeanModel{})

	b := solve.NewBindings().
		BindInstance(dataType, &RatingData{N: 9}).
		BindConstructor(recommenderType, newRecommender, solve.WithPolicy(component.NewInstance)).
		AddRoot(recommenderType)
	eng := mustBuild(t, b, WithRegistry(reg))

	if _, err := eng.Create(nil); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	unrelated := solve.NewBindings().BindInstance(typeOf[int](), 10, solve.WithQualifier("top-n"))
	eng2, err := eng.Reconfigure(unrelated)
	if err != nil {
		t.Fatalf("Reconfigure() error: %v", err)
	}
	if eng2.Graph().Outgoing()[0].Target() != eng.Graph().Outgoing()[0].Target() {
		t.Error("an untouched ad-hoc node should survive reconfiguration by identity")
	}

	asm, err := eng2.Create(nil)
	if err != nil {
		t.Fatalf("Create() after Reconfigure error: %v", err)
	}
	if rec := get[*Recommender](t, asm); rec.M.Total != 9 {
		t.Errorf("model total = %d, want 9", rec.M.Total)
	}

	// Create with extra bindings rides the same rewrite.
	if _, err := eng.Create(unrelated); err != nil {
		t.Fatalf("Create(extra) error: %v", err)
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	reg := testRegistry(t)
	b := solve.NewBindings().
		BindInstance(dataType, &RatingData{N: 12}).
		AddRoot(recommenderType)
	eng := mustBuild(t, b, WithRegistry(reg))

	var buf bytes.Buffer
	if err := eng.Write(&buf); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	loaded, err := Load(&buf, WithRegistry(reg))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !loaded.IsInstantiable() {
		t.Fatal("loaded engine should be instantiable")
	}
	if got, want := len(graph.Reachable(loaded.Graph())), len(graph.Reachable(eng.Graph())); got != want {
		t.Errorf("loaded graph has %d nodes, want %d", got, want)
	}

	asm, err := loaded.Create(nil)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	rec := get[*Recommender](t, asm)
	if rec.M.Total != 12 {
		t.Errorf("loaded model total = %d, want 12", rec.M.Total)
	}
}

func TestWriteLoadPreservesSharedStructure(t *testing.T) {
	// Two recommenders over one model: the shared node must round-trip as a
	// single node, not a copy per dependent.
	reg := testRegistry(t)
	type Second struct{ M *MeanModel }
	reg.MustRegister(func(m *MeanModel) *Second { return &Second{M: m} }, component.Shareable())
	RegisterType(reg, &Second{})

	b := solve.NewBindings().
		BindInstance(dataType, &RatingData{N: 4}).
		AddRoot(recommenderType).
		AddRoot(typeOf[*Second]())
	eng := mustBuild(t, b, WithRegistry(reg))

	var buf bytes.Buffer
	if err := eng.Write(&buf); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	loaded, err := Load(&buf, WithRegistry(reg))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	edges := loaded.Graph().Outgoing()
	if len(edges) != 2 {
		t.Fatalf("loaded root has %d edges, want 2", len(edges))
	}
	m1 := edges[0].Target().Outgoing()[0].Target()
	m2 := edges[1].Target().Outgoing()[0].Target()
	if m1 != m2 {
		t.Error("shared model should decode to one node")
	}
}

func TestLoadNeverConstructs(t *testing.T) {
	builds := 0
	reg := component.NewRegistry()
	reg.MustRegister(func(d *RatingData) *MeanModel {
		builds++
		return &MeanModel{Total: d.N}
	}, component.Shareable(), component.Transient(0))
	reg.MustRegister(newRecommender, component.Shareable())
	RegisterType(reg, &RatingData{})
	RegisterType(reg, &MeanModel{})
	RegisterType(reg, &Recommender{})

	b := solve.NewBindings().
		BindInstance(dataType, &RatingData{N: 5}).
		AddRoot(recommenderType)
	eng := mustBuild(t, b, WithRegistry(reg))
	if builds != 1 {
		t.Fatalf("build trained the model %d times, want 1", builds)
	}

	var buf bytes.Buffer
	if err := eng.Write(&buf); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	loaded, err := Load(&buf, WithRegistry(reg))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	asm, err := loaded.Create(nil)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if rec := get[*Recommender](t, asm); rec.M.Total != 5 {
		t.Errorf("model total = %d, want 5", rec.M.Total)
	}
	if builds != 1 {
		t.Errorf("loading invoked construction rules (%d builds)", builds)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := Load(bytes.NewReader([]byte("not a snapshot")), WithRegistry(testRegistry(t)))
	var se *SerializationError
	if !errors.As(err, &se) {
		t.Fatalf("Load() error = %v, want *SerializationError", err)
	}
}

func TestLoadUnknownTypeName(t *testing.T) {
	reg := testRegistry(t)
	b := solve.NewBindings().
		BindInstance(dataType, &RatingData{N: 1}).
		AddRoot(recommenderType)
	eng := mustBuild(t, b, WithRegistry(reg))

	var buf bytes.Buffer
	if err := eng.Write(&buf); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	// A registry that never saw these types cannot resolve their names.
	_, err := Load(&buf, WithRegistry(component.NewRegistry()))
	var tre *TypeResolutionError
	if !errors.As(err, &tre) {
		t.Fatalf("Load() error = %v, want *TypeResolutionError", err)
	}
}

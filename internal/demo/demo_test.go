package demo

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/gantry/pkg/engine"
	"github.com/matzehuels/gantry/pkg/graph"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestParseRatings(t *testing.T) {
	in := "1,10,4.0\n2,10,3.5\n2,11,5\n"
	ratings, err := ParseRatings(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseRatings() error: %v", err)
	}
	want := []Rating{
		{User: 1, Item: 10, Value: 4.0},
		{User: 2, Item: 10, Value: 3.5},
		{User: 2, Item: 11, Value: 5},
	}
	if len(ratings) != len(want) {
		t.Fatalf("parsed %d ratings, want %d", len(ratings), len(want))
	}
	for i := range want {
		if ratings[i] != want[i] {
			t.Errorf("rating %d = %+v, want %+v", i, ratings[i], want[i])
		}
	}
}

func TestParseRatingsRejectsMalformedRows(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"wrong field count", "1,10\n"},
		{"bad user", "x,10,4.0\n"},
		{"bad item", "1,y,4.0\n"},
		{"bad value", "1,10,high\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRatings(strings.NewReader(tt.in)); err == nil {
				t.Error("ParseRatings() should fail")
			}
		})
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ratings.csv")
	if err := os.WriteFile(path, []byte("1,10,4.0\n1,11,2.0\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ratings, err := FileSource{Path: path}.Ratings()
	if err != nil {
		t.Fatalf("Ratings() error: %v", err)
	}
	if len(ratings) != 2 {
		t.Errorf("read %d ratings, want 2", len(ratings))
	}

	if _, err := (FileSource{Path: path + ".missing"}).Ratings(); err == nil {
		t.Error("a missing file should fail")
	}
}

func TestNewItemMeanModel(t *testing.T) {
	src := SliceSource{
		{User: 1, Item: 1, Value: 4},
		{User: 2, Item: 1, Value: 2},
		{User: 1, Item: 2, Value: 5},
	}
	global := 11.0 / 3.0

	t.Run("undamped means", func(t *testing.T) {
		m, err := NewItemMeanModel(src, 0)
		if err != nil {
			t.Fatalf("NewItemMeanModel() error: %v", err)
		}
		if !almost(m.Global, global) {
			t.Errorf("global = %v, want %v", m.Global, global)
		}
		if !almost(m.Means[1], 3) || !almost(m.Means[2], 5) {
			t.Errorf("means = %v, want item1=3 item2=5", m.Means)
		}
	})

	t.Run("damping pulls toward global", func(t *testing.T) {
		m, err := NewItemMeanModel(src, 1)
		if err != nil {
			t.Fatalf("NewItemMeanModel() error: %v", err)
		}
		// item 2 has a single rating of 5: (5 + 1*global) / (1 + 1).
		if want := (5 + global) / 2; !almost(m.Means[2], want) {
			t.Errorf("damped mean = %v, want %v", m.Means[2], want)
		}
		if m.Means[2] >= 5 || m.Means[2] <= global {
			t.Error("damped mean should land between the raw mean and the global mean")
		}
	})

	t.Run("no ratings", func(t *testing.T) {
		if _, err := NewItemMeanModel(SliceSource{}, 0); err == nil {
			t.Error("training on an empty source should fail")
		}
	})
}

func TestItemMeanScorerFallsBackToGlobal(t *testing.T) {
	m := &ItemMeanModel{Global: 3.5, Means: map[int64]float64{7: 4.2}}
	s := NewItemMeanScorer(m)

	if got := s.Score(1, 7); !almost(got, 4.2) {
		t.Errorf("known item score = %v, want 4.2", got)
	}
	if got := s.Score(1, 99); !almost(got, 3.5) {
		t.Errorf("unknown item score = %v, want the global mean", got)
	}
}

func TestRecommendRanksAndTruncates(t *testing.T) {
	m := &ItemMeanModel{
		Global: 3,
		Means:  map[int64]float64{1: 2.0, 2: 4.5, 3: 4.5, 4: 1.0},
	}
	r := NewTopNRecommender(m, NewItemMeanScorer(m), 3)

	got := r.Recommend(1)
	if len(got) != 3 {
		t.Fatalf("Recommend() = %d items, want 3", len(got))
	}
	// 2 and 3 tie at 4.5; the lower item ID wins.
	want := []int64{2, 3, 1}
	for i, item := range want {
		if got[i].Item != item {
			t.Errorf("rank %d = item %d, want %d", i, got[i].Item, item)
		}
	}
}

func TestBuildEndToEnd(t *testing.T) {
	eng, err := Build(SliceSource(SampleRatings()), 5, 3)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if !eng.IsInstantiable() {
		t.Fatal("demo engine should be instantiable")
	}

	// Training data is consumed transiently and must not survive assembly.
	srcType := reflect.TypeOf((*RatingSource)(nil)).Elem()
	for _, n := range graph.Reachable(eng.Graph()) {
		produced := n.Label().Rule.ProducedType()
		if produced != nil && produced.Implements(srcType) {
			t.Error("the rating source should not be reachable in the finalized graph")
		}
	}

	asm, err := eng.Create(nil)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	v, err := asm.Get(reflect.TypeOf((*TopNRecommender)(nil)))
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	recs := v.(*TopNRecommender).Recommend(1)
	if len(recs) != 3 {
		t.Fatalf("Recommend() = %d items, want 3", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Score > recs[i-1].Score {
			t.Error("recommendations should be ranked by descending score")
		}
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	eng, err := Build(SliceSource(SampleRatings()), 5, 2)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	var buf bytes.Buffer
	if err := eng.Write(&buf); err != nil {
		t.Fatalf("Write() error: %v", err)
	}

	reg, err := Registry()
	if err != nil {
		t.Fatalf("Registry() error: %v", err)
	}
	loaded, err := engine.Load(&buf, engine.WithRegistry(reg))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	recommend := func(e *engine.Engine) []ScoredItem {
		t.Helper()
		asm, err := e.Create(nil)
		if err != nil {
			t.Fatalf("Create() error: %v", err)
		}
		v, err := asm.Get(reflect.TypeOf((*TopNRecommender)(nil)))
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		return v.(*TopNRecommender).Recommend(1)
	}

	before, after := recommend(eng), recommend(loaded)
	if len(before) != len(after) {
		t.Fatalf("loaded engine recommends %d items, want %d", len(after), len(before))
	}
	for i := range before {
		if before[i].Item != after[i].Item || !almost(before[i].Score, after[i].Score) {
			t.Errorf("rank %d = %+v after load, want %+v", i, after[i], before[i])
		}
	}
}

// Package demo wires a small item-mean recommender out of gantry components.
//
// The domain is deliberately tiny: a rating source feeds an item-mean model,
// a scorer reads the model, and a top-N recommender ranks items by score.
// The model's dependency on the rating source is transient, so a persisted
// engine carries the trained model but not the training data.
package demo

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strconv"

	"github.com/matzehuels/gantry/pkg/component"
	"github.com/matzehuels/gantry/pkg/engine"
	"github.com/matzehuels/gantry/pkg/solve"
)

// Qualifier tags for the demo's parameter components.
const (
	DampingQualifier = "damping"
	TopNQualifier    = "top-n"
)

// Rating is one user-item rating event.
type Rating struct {
	User  int64
	Item  int64
	Value float64
}

// RatingSource supplies training ratings.
type RatingSource interface {
	Ratings() ([]Rating, error)
}

// SliceSource is an in-memory rating source.
type SliceSource []Rating

func (s SliceSource) Ratings() ([]Rating, error) { return s, nil }

// FileSource reads ratings from a CSV file with user,item,value rows.
type FileSource struct {
	Path string
}

func (s FileSource) Ratings() ([]Rating, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open ratings: %w", err)
	}
	defer f.Close()
	return ParseRatings(f)
}

// ParseRatings reads user,item,value CSV rows.
func ParseRatings(r io.Reader) ([]Rating, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3

	var ratings []Rating
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ratings: %w", err)
		}
		user, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse user %q: %w", rec[0], err)
		}
		item, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse item %q: %w", rec[1], err)
		}
		value, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("parse rating %q: %w", rec[2], err)
		}
		ratings = append(ratings, Rating{User: user, Item: item, Value: value})
	}
	return ratings, nil
}

// ItemMeanModel holds damped per-item mean ratings.
type ItemMeanModel struct {
	Global float64
	Means  map[int64]float64
}

// NewItemMeanModel trains the model from the rating source. The damping term
// pulls sparsely rated items toward the global mean.
func NewItemMeanModel(src RatingSource, damping float64) (*ItemMeanModel, error) {
	ratings, err := src.Ratings()
	if err != nil {
		return nil, fmt.Errorf("train item-mean model: %w", err)
	}
	if len(ratings) == 0 {
		return nil, fmt.Errorf("train item-mean model: no ratings")
	}

	var total float64
	sums := make(map[int64]float64)
	counts := make(map[int64]float64)
	for _, r := range ratings {
		total += r.Value
		sums[r.Item] += r.Value
		counts[r.Item]++
	}
	global := total / float64(len(ratings))

	means := make(map[int64]float64, len(sums))
	for item, sum := range sums {
		means[item] = (sum + damping*global) / (counts[item] + damping)
	}
	return &ItemMeanModel{Global: global, Means: means}, nil
}

// Items returns all items the model knows about.
func (m *ItemMeanModel) Items() []int64 {
	items := make([]int64, 0, len(m.Means))
	for item := range m.Means {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i] < items[j] })
	return items
}

// ItemScorer predicts a rating for a user-item pair.
type ItemScorer interface {
	Score(user, item int64) float64
}

// ItemMeanScorer scores every user identically from the item-mean model.
// Fields are exported so scorer instances survive engine persistence.
type ItemMeanScorer struct {
	Model *ItemMeanModel
}

func NewItemMeanScorer(m *ItemMeanModel) *ItemMeanScorer {
	return &ItemMeanScorer{Model: m}
}

func (s *ItemMeanScorer) Score(user, item int64) float64 {
	if mean, ok := s.Model.Means[item]; ok {
		return mean
	}
	return s.Model.Global
}

// ScoredItem is one ranked recommendation.
type ScoredItem struct {
	Item  int64
	Score float64
}

// TopNRecommender ranks the model's items by score and keeps the best N.
// Fields are exported so recommender instances survive engine persistence.
type TopNRecommender struct {
	Model  *ItemMeanModel
	Scorer ItemScorer
	N      int
}

func NewTopNRecommender(m *ItemMeanModel, s ItemScorer, n int) *TopNRecommender {
	return &TopNRecommender{Model: m, Scorer: s, N: n}
}

// Recommend returns up to N items ranked by predicted score.
// Ties break toward the lower item ID for stable output.
func (r *TopNRecommender) Recommend(user int64) []ScoredItem {
	items := r.Model.Items()
	scored := make([]ScoredItem, 0, len(items))
	for _, item := range items {
		scored = append(scored, ScoredItem{Item: item, Score: r.Scorer.Score(user, item)})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > r.N {
		scored = scored[:r.N]
	}
	return scored
}

// Registry returns a component registry with the demo components registered.
func Registry() (*component.Registry, error) {
	reg := component.NewRegistry()
	if err := reg.Register(NewItemMeanModel,
		component.Shareable(),
		component.Transient(0),
		component.Qualifier(1, DampingQualifier),
	); err != nil {
		return nil, err
	}
	if err := reg.Register(NewItemMeanScorer, component.Shareable()); err != nil {
		return nil, err
	}
	if err := reg.Register(NewTopNRecommender,
		component.Shareable(),
		component.Qualifier(2, TopNQualifier),
	); err != nil {
		return nil, err
	}

	// Instance payloads crossing the persistence boundary. The parameter
	// components ride along as plain int and float64 instances.
	engine.RegisterType(reg, &ItemMeanModel{})
	engine.RegisterType(reg, &ItemMeanScorer{})
	engine.RegisterType(reg, &TopNRecommender{})
	engine.RegisterType(reg, SliceSource(nil))
	engine.RegisterType(reg, int(0))
	engine.RegisterType(reg, float64(0))
	return reg, nil
}

// Bindings produces the configuration for a demo engine: the rating source,
// the damping parameter, the result count, and the recommender root.
func Bindings(src RatingSource, damping float64, topN int) *solve.Bindings {
	return solve.NewBindings().
		BindInstance(reflect.TypeOf((*RatingSource)(nil)).Elem(), src).
		BindInstance(reflect.TypeOf(float64(0)), damping, solve.WithQualifier(DampingQualifier)).
		BindInstance(reflect.TypeOf(int(0)), topN, solve.WithQualifier(TopNQualifier)).
		AddRoot(reflect.TypeOf((*TopNRecommender)(nil)))
}

// Build assembles a ready demo engine from a rating source.
func Build(src RatingSource, damping float64, topN int, opts ...engine.Option) (*engine.Engine, error) {
	reg, err := Registry()
	if err != nil {
		return nil, err
	}
	opts = append([]engine.Option{engine.WithRegistry(reg)}, opts...)
	return engine.Build(Bindings(src, damping, topN), opts...)
}

// SampleRatings is a small built-in dataset for trying the toolkit without
// any input files.
func SampleRatings() []Rating {
	return []Rating{
		{User: 1, Item: 10, Value: 4.0},
		{User: 1, Item: 11, Value: 3.0},
		{User: 1, Item: 12, Value: 5.0},
		{User: 2, Item: 10, Value: 4.5},
		{User: 2, Item: 12, Value: 4.0},
		{User: 2, Item: 13, Value: 2.0},
		{User: 3, Item: 11, Value: 3.5},
		{User: 3, Item: 12, Value: 4.5},
		{User: 3, Item: 13, Value: 1.5},
		{User: 4, Item: 10, Value: 3.0},
		{User: 4, Item: 13, Value: 2.5},
	}
}

package classifierdl

import (
	"context"
	"math/rand"

	"go.uber.org/zap"
)

// Runtime is the numeric state of a neural classifier
type Runtime interface {
	// Predict returns one row of class scores per embedding vector
	Predict(embeddings [][]float32) ([][]float32, error)
	Close() error
}

// VariableSaver is implemented by runtimes that can checkpoint their variables
type VariableSaver interface {
	SaveVariables(prefix string) error
}

// BaseLoader loads the pre-trained base model a run starts from
type BaseLoader interface {
	// LoadBase loads a fresh copy of the base model, configured with the
	// opaque runtime configuration blob (which may be nil)
	LoadBase(config []byte) (Runtime, error)
}

// Trainer fits a base model to a training set
type Trainer interface {
	// Fit trains base on set and returns the trained runtime, which may be
	// base itself. All randomness must come from cfg.Rand.
	Fit(ctx context.Context, base Runtime, set *TrainingSet, cfg FitConfig) (Runtime, error)
}

// FitConfig carries everything a Trainer needs besides the data
type FitConfig struct {
	Params Params
	Rand   *rand.Rand
	RunID  string
	Log    *zap.Logger
}

// TrainingSet is the encoded form of a projection: one embedding and one
// class index per instance
type TrainingSet struct {
	Embeddings [][]float32
	Labels     []int
	NumClasses int
}

// Len returns the number of instances
func (s *TrainingSet) Len() int {
	return len(s.Labels)
}

// Subset returns the instances at the given positions, in that order
func (s *TrainingSet) Subset(indices []int) *TrainingSet {
	sub := &TrainingSet{
		Embeddings: make([][]float32, len(indices)),
		Labels:     make([]int, len(indices)),
		NumClasses: s.NumClasses,
	}
	for i, idx := range indices {
		sub.Embeddings[i] = s.Embeddings[idx]
		sub.Labels[i] = s.Labels[idx]
	}
	return sub
}

// Split shuffles the instances with r and holds out floor(fraction * Len)
// of them for validation. valid is nil when nothing is held out.
func (s *TrainingSet) Split(fraction float64, r *rand.Rand) (train, valid *TrainingSet) {
	n := int(fraction * float64(s.Len()))
	if n <= 0 {
		return s, nil
	}
	perm := r.Perm(s.Len())
	return s.Subset(perm[n:]), s.Subset(perm[:n])
}

package classifierdl

import (
	"context"
	"sync"

	"github.com/kiteco/docclassifier/kite-golib/errors"
)

// fakeRuntime scores every input with a fixed class
type fakeRuntime struct {
	mu     sync.Mutex
	class  int
	width  int
	closed bool
}

func (f *fakeRuntime) Predict(embeddings [][]float32) ([][]float32, error) {
	out := make([][]float32, len(embeddings))
	for i := range out {
		out[i] = make([]float32, f.width)
		out[i][f.class] = 1
	}
	return out, nil
}

func (f *fakeRuntime) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeRuntime) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeLoader struct {
	err    error
	config []byte
	loads  int
	base   *fakeRuntime
}

func (l *fakeLoader) LoadBase(config []byte) (Runtime, error) {
	l.loads++
	l.config = config
	if l.err != nil {
		return nil, l.err
	}
	l.base = &fakeRuntime{width: MaxClasses}
	return l.base, nil
}

// fakeTrainer records its inputs and returns the base runtime, trained to
// predict the most frequent class
type fakeTrainer struct {
	err error
	// noRuntime makes Fit succeed without returning a runtime
	noRuntime bool
	calls     int
	set       *TrainingSet
	cfg       FitConfig
	draws     []int64
}

func (f *fakeTrainer) Fit(ctx context.Context, base Runtime, set *TrainingSet, cfg FitConfig) (Runtime, error) {
	f.calls++
	f.set = set
	f.cfg = cfg
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.noRuntime {
		return nil, nil
	}
	for i := 0; i < 3; i++ {
		f.draws = append(f.draws, cfg.Rand.Int63())
	}

	counts := make([]int, set.NumClasses)
	for _, l := range set.Labels {
		counts[l]++
	}
	best := 0
	for c, n := range counts {
		if n > counts[best] {
			best = c
		}
	}

	rt, ok := base.(*fakeRuntime)
	if !ok {
		return nil, errors.Errorf("unexpected base %T", base)
	}
	rt.class = best
	return rt, nil
}

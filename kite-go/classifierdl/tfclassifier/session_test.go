package tfclassifier

import (
	"sync"

	"github.com/kiteco/docclassifier/kite-golib/errors"
)

// fakeSession stands in for a loaded graph. Training steps report a fixed
// loss and accuracy; inference scores every row as class 0.
type fakeSession struct {
	graph   GraphSpec
	width   int64
	missing map[string]bool
	// onStep runs after every training step
	onStep func()

	mu          sync.Mutex
	steps       int
	batchSizes  []int
	labelWidths []int
	lr, dp      []float32
	predictRows []int
	savedTo     []string
	closed      bool
}

func newFakeSession(width int64) *fakeSession {
	return &fakeSession{graph: DefaultGraphSpec(), width: width, missing: make(map[string]bool)}
}

func (f *fakeSession) OpExists(name string) bool {
	return !f.missing[name]
}

func (f *fakeSession) OutputDim(name string, dim int) int64 {
	if name == f.graph.Labels && dim == 1 {
		return f.width
	}
	return -1
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSession) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeSession) Run(feeds map[string]interface{}, fetches []string, targets []string) (map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, target := range targets {
		switch target {
		case f.graph.Optimizer:
			inputs := feeds[f.graph.Inputs].([][]float32)
			labels := feeds[f.graph.Labels].([][]float32)
			f.steps++
			f.batchSizes = append(f.batchSizes, len(inputs))
			f.labelWidths = append(f.labelWidths, len(labels[0]))
			f.lr = append(f.lr, feeds[f.graph.LearningRate].(float32))
			f.dp = append(f.dp, feeds[f.graph.Dropout].(float32))
			if f.onStep != nil {
				f.onStep()
			}
			return map[string]interface{}{
				f.graph.Loss:     float32(0.5),
				f.graph.Accuracy: float32(0.75),
			}, nil
		case f.graph.Save:
			f.savedTo = append(f.savedTo, feeds[f.graph.SaveFilename].(string))
			return map[string]interface{}{}, nil
		default:
			return nil, errors.Errorf("unexpected target %s", target)
		}
	}

	inputs := feeds[f.graph.Inputs].([][]float32)
	f.predictRows = append(f.predictRows, len(inputs))
	width := int(f.width)
	if width <= 0 {
		width = 2
	}
	scores := make([][]float32, len(inputs))
	for i := range scores {
		scores[i] = make([]float32, width)
		scores[i][0] = 1
	}
	return map[string]interface{}{f.graph.Outputs: scores}, nil
}

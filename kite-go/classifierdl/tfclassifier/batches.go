package tfclassifier

import (
	"github.com/kiteco/docclassifier/kite-golib/errors"
)

// batches splits order into consecutive chunks of at most size
func batches(order []int, size int) [][]int {
	var out [][]int
	for start := 0; start < len(order); start += size {
		end := start + size
		if end > len(order) {
			end = len(order)
		}
		out = append(out, order[start:end])
	}
	return out
}

// accuracy is the fraction of rows whose highest score is at the label index
func accuracy(scores [][]float32, labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	var correct int
	for i, row := range scores {
		if i < len(labels) && argmax(row) == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(labels))
}

func argmax(row []float32) int {
	best := -1
	for i, v := range row {
		if best < 0 || v > row[best] {
			best = i
		}
	}
	return best
}

func scalar(v interface{}) (float64, error) {
	switch v := v.(type) {
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, errors.Errorf("expected a scalar, got %T", v)
	}
}

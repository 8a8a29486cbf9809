package classifierdl

import (
	"sort"

	"github.com/kiteco/docclassifier/kite-golib/errors"
)

// MaxClasses is the exclusive upper bound on the number of distinct labels
const MaxClasses = 50

// EncoderParams is the serializable state of an Encoder: the label
// vocabulary, where a label's position is its class index.
type EncoderParams struct {
	Tags []string `json:"tags" yaml:"tags"`
}

// Encoder maps labels to zero-based class indices and back
type Encoder struct {
	tags  []string
	index map[string]int
}

// NewEncoder builds an encoder over the distinct values of labels, indexed in
// first-seen order. It fails with TooManyClassesError if there are MaxClasses
// or more distinct values.
func NewEncoder(labels []string) (*Encoder, error) {
	tags := DistinctLabels(labels)
	if len(tags) >= MaxClasses {
		return nil, &TooManyClassesError{Count: len(tags)}
	}

	index := make(map[string]int, len(tags))
	for i, tag := range tags {
		index[tag] = i
	}
	return &Encoder{tags: tags, index: index}, nil
}

// NewEncoderFromParams restores an encoder from its params
func NewEncoderFromParams(p EncoderParams) (*Encoder, error) {
	if len(DistinctLabels(p.Tags)) != len(p.Tags) {
		return nil, errors.Errorf("encoder tags must be distinct: %v", p.Tags)
	}
	return NewEncoder(p.Tags)
}

// DistinctLabels returns the distinct labels in first-seen order
func DistinctLabels(labels []string) []string {
	seen := make(map[string]bool)
	var distinct []string
	for _, l := range labels {
		if seen[l] {
			continue
		}
		seen[l] = true
		distinct = append(distinct, l)
	}
	return distinct
}

// NumClasses returns the vocabulary size
func (e *Encoder) NumClasses() int {
	return len(e.tags)
}

// Params returns a copy of the encoder state
func (e *Encoder) Params() EncoderParams {
	return EncoderParams{Tags: append([]string(nil), e.tags...)}
}

// Encode returns the class index of label
func (e *Encoder) Encode(label string) (int, error) {
	idx, ok := e.index[label]
	if !ok {
		return -1, errors.Errorf("unknown label %q", label)
	}
	return idx, nil
}

// EncodeAll encodes every label
func (e *Encoder) EncodeAll(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, l := range labels {
		idx, err := e.Encode(l)
		if err != nil {
			return nil, errors.Wrapf(err, "instance %d", i)
		}
		out[i] = idx
	}
	return out, nil
}

// Decode returns the label of a class index
func (e *Encoder) Decode(idx int) (string, error) {
	if idx < 0 || idx >= len(e.tags) {
		return "", errors.Errorf("class index %d out of range [0, %d)", idx, len(e.tags))
	}
	return e.tags[idx], nil
}

// OneHot encodes class indices as rows of width floats with a single 1
func OneHot(indices []int, width int) [][]float32 {
	out := make([][]float32, len(indices))
	for i, idx := range indices {
		row := make([]float32, width)
		if idx >= 0 && idx < width {
			row[idx] = 1
		}
		out[i] = row
	}
	return out
}

// Prediction is the decoded output for one instance
type Prediction struct {
	Label  string
	Score  float32
	Scores map[string]float32
}

// Predictions decodes rows of class scores. Rows may be wider than the
// vocabulary; extra columns are ignored.
func (e *Encoder) Predictions(scores [][]float32) ([]Prediction, error) {
	out := make([]Prediction, 0, len(scores))
	for i, row := range scores {
		if len(row) < len(e.tags) {
			return nil, errors.Errorf("instance %d: got %d scores for %d classes", i, len(row), len(e.tags))
		}

		p := Prediction{Scores: make(map[string]float32, len(e.tags))}
		best := -1
		for j, tag := range e.tags {
			p.Scores[tag] = row[j]
			if best < 0 || row[j] > row[best] {
				best = j
			}
		}
		if best >= 0 {
			p.Label, p.Score = e.tags[best], row[best]
		}
		out = append(out, p)
	}
	return out, nil
}

// SortedLabels returns the vocabulary in lexical order, for display
func (e *Encoder) SortedLabels() []string {
	labels := append([]string(nil), e.tags...)
	sort.Strings(labels)
	return labels
}

package classifierdl

import (
	"fmt"
	"testing"

	"github.com/kiteco/docclassifier/kite-golib/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderFirstSeenOrder(t *testing.T) {
	enc, err := NewEncoder([]string{"sports", "politics", "sports"})
	require.NoError(t, err)

	assert.Equal(t, 2, enc.NumClasses())
	assert.Equal(t, []string{"sports", "politics"}, enc.Params().Tags)

	idx, err := enc.Encode("politics")
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = enc.Encode("weather")
	assert.Error(t, err)
}

func TestEncoderRoundTrip(t *testing.T) {
	labels := []string{"b", "a", "c", "a", "b", "d"}
	enc, err := NewEncoder(labels)
	require.NoError(t, err)

	indices, err := enc.EncodeAll(labels)
	require.NoError(t, err)

	restored, err := NewEncoderFromParams(enc.Params())
	require.NoError(t, err)
	for i, idx := range indices {
		label, err := restored.Decode(idx)
		require.NoError(t, err)
		assert.Equal(t, labels[i], label)
	}

	_, err = restored.Decode(4)
	assert.Error(t, err)
	_, err = restored.Decode(-1)
	assert.Error(t, err)
}

func TestEncoderClassLimit(t *testing.T) {
	labels := func(n int) []string {
		var out []string
		for i := 0; i < n; i++ {
			out = append(out, fmt.Sprintf("label-%d", i))
		}
		return out
	}

	enc, err := NewEncoder(labels(MaxClasses - 1))
	require.NoError(t, err)
	assert.Equal(t, MaxClasses-1, enc.NumClasses())

	_, err = NewEncoder(labels(MaxClasses))
	var tooMany *TooManyClassesError
	require.True(t, errors.As(err, &tooMany))
	assert.Equal(t, MaxClasses, tooMany.Count)

	_, err = NewEncoder(labels(51))
	require.True(t, errors.As(err, &tooMany))
	assert.Contains(t, err.Error(), "currently is 51")
}

func TestEncoderParamsCopy(t *testing.T) {
	enc, err := NewEncoder([]string{"x", "y"})
	require.NoError(t, err)

	p := enc.Params()
	p.Tags[0] = "changed"
	assert.Equal(t, []string{"x", "y"}, enc.Params().Tags)
}

func TestNewEncoderFromParamsRejectsDuplicates(t *testing.T) {
	_, err := NewEncoderFromParams(EncoderParams{Tags: []string{"x", "x"}})
	assert.Error(t, err)
}

func TestOneHot(t *testing.T) {
	assert.Equal(t, [][]float32{{0, 1, 0}, {1, 0, 0}}, OneHot([]int{1, 0}, 3))
}

func TestPredictions(t *testing.T) {
	enc, err := NewEncoder([]string{"sports", "politics"})
	require.NoError(t, err)

	preds, err := enc.Predictions([][]float32{{0.2, 0.8, 0.9}, {0.6, 0.4}})
	require.NoError(t, err)
	require.Len(t, preds, 2)

	assert.Equal(t, "politics", preds[0].Label)
	assert.Equal(t, float32(0.8), preds[0].Score)
	assert.Equal(t, map[string]float32{"sports": 0.2, "politics": 0.8}, preds[0].Scores)
	assert.Equal(t, "sports", preds[1].Label)

	_, err = enc.Predictions([][]float32{{1}})
	assert.Error(t, err)
}

package classifierdl

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/kiteco/docclassifier/kite-golib/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savingRuntime struct {
	fakeRuntime
	prefix string
}

func (s *savingRuntime) SaveVariables(prefix string) error {
	s.prefix = prefix
	return ioutil.WriteFile(prefix+".index", []byte("index"), 0644)
}

func TestNewModel(t *testing.T) {
	_, err := NewModel(nil, EncoderParams{Tags: []string{"a"}}, testRef, "run")
	assert.Error(t, err)

	_, err = NewModel(&fakeRuntime{width: 1}, EncoderParams{Tags: []string{"a", "a"}}, testRef, "run")
	assert.Error(t, err)
}

func TestModelConfigProto(t *testing.T) {
	m, err := NewModel(&fakeRuntime{width: 2}, EncoderParams{Tags: []string{"a", "b"}}, testRef, "run")
	require.NoError(t, err)
	assert.Nil(t, m.ConfigProtoBytes())

	blob := []byte{1, 2}
	m.SetConfigProtoBytes(blob)
	blob[0] = 7
	assert.Equal(t, []byte{1, 2}, m.ConfigProtoBytes())

	params := m.EncoderParams()
	params.Tags[0] = "changed"
	assert.Equal(t, []string{"a", "b"}, m.Labels())
}

func TestModelClassify(t *testing.T) {
	m, err := NewModel(&fakeRuntime{class: 1, width: 2}, EncoderParams{Tags: []string{"a", "b"}}, testRef, "run")
	require.NoError(t, err)

	preds, err := m.Classify([][]float32{{0}, {1}})
	require.NoError(t, err)
	require.Len(t, preds, 2)
	assert.Equal(t, "b", preds[0].Label)
	assert.Equal(t, float32(1), preds[1].Score)
}

func TestModelSaveLoad(t *testing.T) {
	dir, err := ioutil.TempDir("", "classifierdl")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	rt := &savingRuntime{fakeRuntime: fakeRuntime{width: 2}}
	m, err := NewModel(rt, EncoderParams{Tags: []string{"sports", "politics"}}, testRef, "run-1")
	require.NoError(t, err)
	m.SetConfigProtoBytes([]byte{4, 2})

	out := filepath.Join(dir, "model")
	require.NoError(t, m.Save(out))
	assert.Equal(t, filepath.Join(out, "variables", "variables"), rt.prefix)
	_, err = os.Stat(filepath.Join(out, "variables", "variables.index"))
	assert.NoError(t, err)

	md, err := LoadMetadata(out)
	require.NoError(t, err)
	assert.Equal(t, m.Metadata(), md)

	enc, err := NewEncoderFromParams(md.Encoder)
	require.NoError(t, err)
	label, err := enc.Decode(1)
	require.NoError(t, err)
	assert.Equal(t, "politics", label)
}

func TestLoadMetadataMissing(t *testing.T) {
	_, err := LoadMetadata(filepath.Join(os.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestTrainingSetSplit(t *testing.T) {
	set := &TrainingSet{NumClasses: 2}
	for i := 0; i < 10; i++ {
		set.Embeddings = append(set.Embeddings, []float32{float32(i)})
		set.Labels = append(set.Labels, i%2)
	}

	train, valid := set.Split(0, nil)
	assert.Equal(t, set, train)
	assert.Nil(t, valid)

	train, valid = set.Split(0.3, newRand(defaultParams(t, WithRandomSeed(1))))
	require.NotNil(t, valid)
	assert.Equal(t, 7, train.Len())
	assert.Equal(t, 3, valid.Len())
	assert.Equal(t, 2, valid.NumClasses)

	seen := make(map[float32]bool)
	for _, s := range []*TrainingSet{train, valid} {
		for i, e := range s.Embeddings {
			seen[e[0]] = true
			assert.Equal(t, int(e[0])%2, s.Labels[i])
		}
	}
	assert.Len(t, seen, 10)
}

func TestErrorMessages(t *testing.T) {
	err := &ResourceLoadError{Err: errors.New("missing")}
	assert.Equal(t, "unable to load base model: missing", err.Error())
	assert.Contains(t, (&MissingProvenanceError{Columns: []string{"a"}}).Error(), "unable to resolve")
	assert.Equal(t, "the total unique number of classes must be less than 50, currently is 51",
		(&TooManyClassesError{Count: 51}).Error())
}

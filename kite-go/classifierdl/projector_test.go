package classifierdl

import (
	"math"
	"testing"

	"github.com/kiteco/docclassifier/kite-golib/errors"
	"github.com/kiteco/docclassifier/kite-golib/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRef = "tfhub_use"

func embeddingsField(name, ref string) frame.Field {
	meta := map[string]string{frame.AnnotatorTypeKey: frame.SentenceEmbeddings}
	if ref != "" {
		meta[frame.RefKey] = ref
	}
	return frame.Field{Name: name, Type: frame.Annotations, Metadata: meta}
}

func emb(v ...float32) []frame.Annotation {
	return []frame.Annotation{{AnnotatorType: frame.SentenceEmbeddings, Embeddings: v}}
}

func newTable(t *testing.T, labelType frame.Type, rows ...[]interface{}) *frame.Table {
	table, err := frame.NewTable(frame.Schema{
		{Name: "label", Type: labelType},
		embeddingsField("sentence_embeddings", testRef),
	})
	require.NoError(t, err)
	for _, row := range rows {
		require.NoError(t, table.Append(row...))
	}
	return table
}

func TestCheckLabelType(t *testing.T) {
	for _, typ := range []frame.Type{frame.String, frame.Long, frame.Int, frame.Double, frame.Float} {
		assert.NoError(t, CheckLabelType(frame.Schema{{Name: "label", Type: typ}}, "label"), typ.String())
	}

	for _, typ := range []frame.Type{frame.Boolean, frame.Annotations} {
		err := CheckLabelType(frame.Schema{{Name: "label", Type: typ}}, "label")
		var schemaErr *SchemaError
		require.True(t, errors.As(err, &schemaErr), typ.String())
		assert.Equal(t, typ, schemaErr.Type)
	}

	var schemaErr *SchemaError
	require.True(t, errors.As(CheckLabelType(frame.Schema{}, "label"), &schemaErr))
	assert.Equal(t, "label", schemaErr.Column)
}

func TestProject(t *testing.T) {
	table := newTable(t, frame.String,
		[]interface{}{"sports", emb(1, 2)},
		[]interface{}{"politics", emb(3, 4)},
		[]interface{}{"sports", emb(5, 6)},
	)

	p, err := Project(table, "label", "sentence_embeddings")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 2, p.Dim())
	assert.Equal(t, []string{"sports", "politics", "sports"}, p.Labels)
	assert.Equal(t, [][]float32{{1, 2}, {3, 4}, {5, 6}}, p.Embeddings)
}

func TestProjectNumericLabels(t *testing.T) {
	table := newTable(t, frame.Double,
		[]interface{}{1.0, emb(1)},
		[]interface{}{2.5, emb(2)},
	)
	p, err := Project(table, "label", "sentence_embeddings")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0", "2.5"}, p.Labels)
}

func TestProjectErrors(t *testing.T) {
	_, err := Project(newTable(t, frame.String, []interface{}{nil, emb(1)}), "label", "sentence_embeddings")
	assert.Error(t, err)

	_, err = Project(newTable(t, frame.String, []interface{}{"a", nil}), "label", "sentence_embeddings")
	assert.Error(t, err)

	_, err = Project(newTable(t, frame.String,
		[]interface{}{"a", emb(1, 2)},
		[]interface{}{"b", emb(1)},
	), "label", "sentence_embeddings")
	assert.Error(t, err)

	var schemaErr *SchemaError
	_, err = Project(newTable(t, frame.String), "label", "missing")
	assert.True(t, errors.As(err, &schemaErr))
	_, err = Project(newTable(t, frame.String), "label", "label")
	assert.True(t, errors.As(err, &schemaErr))
}

func TestCastLabel(t *testing.T) {
	cases := []struct {
		in  interface{}
		out string
	}{
		{"news", "news"},
		{int64(-42), "-42"},
		{int32(7), "7"},
		{1.0, "1.0"},
		{0.25, "0.25"},
		{float32(0.1), "0.1"},
		{1e7, "1.0E7"},
		{2.5e-4, "2.5E-4"},
		{0.0, "0.0"},
		{math.NaN(), "NaN"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, c := range cases {
		out, err := CastLabel(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.out, out)
	}

	_, err := CastLabel(nil)
	assert.Error(t, err)
	_, err = CastLabel([]int{1})
	assert.Error(t, err)
}

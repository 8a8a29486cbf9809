package classifierdl

import (
	"testing"

	"github.com/kiteco/docclassifier/kite-golib/errors"
	"github.com/kiteco/docclassifier/kite-golib/frame"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEmbeddingsRef(t *testing.T) {
	schema := frame.Schema{
		{Name: "label", Type: frame.String},
		{Name: "document", Type: frame.Annotations, Metadata: map[string]string{frame.AnnotatorTypeKey: "document"}},
		embeddingsField("use", testRef),
	}

	col, ref, err := ResolveEmbeddingsRef(schema, nil)
	require.NoError(t, err)
	assert.Equal(t, "use", col)
	assert.Equal(t, testRef, ref)

	col, ref, err = ResolveEmbeddingsRef(schema, []string{"use"})
	require.NoError(t, err)
	assert.Equal(t, "use", col)
	assert.Equal(t, testRef, ref)
}

func TestResolveEmbeddingsRefSameRefTwice(t *testing.T) {
	schema := frame.Schema{embeddingsField("a", testRef), embeddingsField("b", testRef)}
	col, ref, err := ResolveEmbeddingsRef(schema, nil)
	require.NoError(t, err)
	assert.Equal(t, "a", col)
	assert.Equal(t, testRef, ref)
}

func TestResolveEmbeddingsRefMissing(t *testing.T) {
	var missing *MissingProvenanceError

	// no embeddings column among the inputs
	schema := frame.Schema{{Name: "label", Type: frame.String}, embeddingsField("use", testRef)}
	_, _, err := ResolveEmbeddingsRef(schema, []string{"label"})
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"label"}, missing.Columns)

	// embeddings column without a ref
	_, _, err = ResolveEmbeddingsRef(frame.Schema{embeddingsField("use", "")}, nil)
	assert.True(t, errors.As(err, &missing))

	// conflicting refs
	_, _, err = ResolveEmbeddingsRef(frame.Schema{embeddingsField("a", "x"), embeddingsField("b", "y")}, nil)
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{"x", "y"}, missing.Refs)
	assert.Contains(t, err.Error(), "conflicting")
}

func TestResolveEmbeddingsRefUnknownColumn(t *testing.T) {
	var schemaErr *SchemaError
	_, _, err := ResolveEmbeddingsRef(frame.Schema{embeddingsField("use", testRef)}, []string{"nope"})
	assert.True(t, errors.As(err, &schemaErr))
}

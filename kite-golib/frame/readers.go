package frame

import (
	"encoding/json"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/kiteco/docclassifier/kite-golib/errors"
	"github.com/kiteco/docclassifier/kite-golib/fileutil"
	"github.com/kiteco/docclassifier/kite-golib/serialization"
)

// SentenceEmbeddings is the annotator type of document level embedding annotations
const SentenceEmbeddings = "sentence_embeddings"

// EmbeddingsOptions describes how flat label/embedding records are turned into
// a two column table: a label column and a sentence embeddings column.
type EmbeddingsOptions struct {
	LabelColumn      string
	LabelType        Type
	EmbeddingsColumn string
	// EmbeddingsRef identifies the component that produced the vectors; it is
	// stored as the ref metadata of the embeddings column
	EmbeddingsRef string
}

func (o EmbeddingsOptions) schema() Schema {
	meta := map[string]string{AnnotatorTypeKey: SentenceEmbeddings}
	if o.EmbeddingsRef != "" {
		meta[RefKey] = o.EmbeddingsRef
	}
	return Schema{
		{Name: o.LabelColumn, Type: o.LabelType},
		{Name: o.EmbeddingsColumn, Type: Annotations, Metadata: meta},
	}
}

func embeddingsAnnotation(vec []float32) []Annotation {
	return []Annotation{{
		AnnotatorType: SentenceEmbeddings,
		Embeddings:    vec,
	}}
}

type csvRecord struct {
	Label      string `csv:"label"`
	Embeddings Vector `csv:"embeddings"`
}

// ReadCSV builds a table from CSV with a header containing "label" and
// "embeddings" columns, the latter holding space separated numbers.
func ReadCSV(r io.Reader, opts EmbeddingsOptions) (*Table, error) {
	var records []*csvRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, errors.Wrapf(err, "unable to parse csv")
	}

	t, err := NewTable(opts.schema())
	if err != nil {
		return nil, err
	}
	for i, rec := range records {
		label, err := ParseValue(opts.LabelType, rec.Label)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d: invalid label %q", i, rec.Label)
		}
		if err := t.Append(label, embeddingsAnnotation(rec.Embeddings)); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadCSVFile is ReadCSV on a local or remote path
func ReadCSVFile(path string, opts EmbeddingsOptions) (*Table, error) {
	r, err := fileutil.NewReader(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", path)
	}
	defer r.Close()
	return ReadCSV(r, opts)
}

type jsonRecord struct {
	Label      json.RawMessage `json:"label"`
	Embeddings []float32       `json:"embeddings"`
}

// ReadJSON builds a table from a stream of {"label": ..., "embeddings": [...]}
// objects stored at a local or remote .json or .json.gz path.
func ReadJSON(path string, opts EmbeddingsOptions) (*Table, error) {
	t, err := NewTable(opts.schema())
	if err != nil {
		return nil, err
	}

	err = serialization.Decode(path, func(rec *jsonRecord) error {
		label, err := jsonLabel(opts.LabelType, rec.Label)
		if err != nil {
			return errors.Wrapf(err, "record %d", t.Len())
		}
		return t.Append(label, embeddingsAnnotation(rec.Embeddings))
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func jsonLabel(t Type, raw json.RawMessage) (interface{}, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseValue(t, s)
	}
	// numbers and booleans keep their literal text
	return ParseValue(t, string(raw))
}

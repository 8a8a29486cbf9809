package classifierdl

import (
	"github.com/kiteco/docclassifier/kite-golib/frame"
)

// ResolveEmbeddingsRef finds the sentence embeddings column among inputCols
// (all columns if inputCols is empty) and returns it with its embeddings ref.
// Exactly one distinct, non-empty ref must be found.
func ResolveEmbeddingsRef(schema frame.Schema, inputCols []string) (column string, ref string, err error) {
	fields := schema
	if len(inputCols) > 0 {
		fields = make(frame.Schema, 0, len(inputCols))
		for _, name := range inputCols {
			f, ok := schema.Field(name)
			if !ok {
				return "", "", &SchemaError{Column: name, Reason: "input column not found"}
			}
			fields = append(fields, f)
		}
	}

	var names, refs []string
	refColumn := make(map[string]string)
	for _, f := range fields {
		names = append(names, f.Name)
		if f.Type != frame.Annotations || f.Metadata[frame.AnnotatorTypeKey] != frame.SentenceEmbeddings {
			continue
		}
		r := f.Metadata[frame.RefKey]
		if r == "" {
			continue
		}
		if _, seen := refColumn[r]; !seen {
			refColumn[r] = f.Name
			refs = append(refs, r)
		}
	}

	if len(refs) != 1 {
		return "", "", &MissingProvenanceError{Columns: names, Refs: refs}
	}
	return refColumn[refs[0]], refs[0], nil
}

package classifierdl

import (
	"math"
	"strconv"
	"strings"

	"github.com/kiteco/docclassifier/kite-golib/errors"
	"github.com/kiteco/docclassifier/kite-golib/frame"
)

// labelTypes are the label column types CheckLabelType accepts
var labelTypes = map[frame.Type]bool{
	frame.String: true,
	frame.Long:   true,
	frame.Int:    true,
	frame.Double: true,
	frame.Float:  true,
}

// CheckLabelType returns a SchemaError unless labelCol exists and is a string,
// integer, double or float column.
//
// This is a real membership test. Earlier versions of this estimator combined
// inequality comparisons in a way that accepted every type, so boolean and
// annotation label columns that used to be cast to text are now rejected.
func CheckLabelType(schema frame.Schema, labelCol string) error {
	f, ok := schema.Field(labelCol)
	if !ok {
		return &SchemaError{Column: labelCol, Reason: "label column not found"}
	}
	if !labelTypes[f.Type] {
		return &SchemaError{
			Column: labelCol,
			Type:   f.Type,
			Reason: "label column must be of type string, long, int, double or float",
		}
	}
	return nil
}

// Projection is the two column view of a dataset used for training
type Projection struct {
	Labels     []string
	Embeddings [][]float32
}

// Len returns the number of instances
func (p *Projection) Len() int {
	return len(p.Labels)
}

// Dim returns the embedding width, or 0 for an empty projection
func (p *Projection) Dim() int {
	if len(p.Embeddings) == 0 {
		return 0
	}
	return len(p.Embeddings[0])
}

// Project selects the label column, cast to text, and the vectors of the first
// annotation of the embeddings column. Every row must have a label and an
// embedding, and all embeddings must share one width.
func Project(ds frame.Dataset, labelCol, embeddingsCol string) (*Projection, error) {
	schema := ds.Schema()
	li, ok := schema.Index(labelCol)
	if !ok {
		return nil, &SchemaError{Column: labelCol, Reason: "label column not found"}
	}
	ei, ok := schema.Index(embeddingsCol)
	if !ok {
		return nil, &SchemaError{Column: embeddingsCol, Reason: "embeddings column not found"}
	}
	if schema[ei].Type != frame.Annotations {
		return nil, &SchemaError{Column: embeddingsCol, Type: schema[ei].Type, Reason: "embeddings column must hold annotations"}
	}

	p := &Projection{}
	err := ds.ForEach(func(i int, row frame.Row) error {
		label, err := CastLabel(row[li])
		if err != nil {
			return errors.Wrapf(err, "row %d", i)
		}

		anns, _ := row[ei].([]frame.Annotation)
		if len(anns) == 0 || len(anns[0].Embeddings) == 0 {
			return errors.Errorf("row %d: no embeddings in column %s", i, embeddingsCol)
		}
		vec := anns[0].Embeddings
		if dim := p.Dim(); dim > 0 && len(vec) != dim {
			return errors.Errorf("row %d: embedding width %d differs from %d", i, len(vec), dim)
		}

		p.Labels = append(p.Labels, label)
		p.Embeddings = append(p.Embeddings, vec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CastLabel renders a label value in its canonical text form. Integers are
// written in base 10; floating point values in their shortest form, always
// with a fractional part or an exponent ("1.0", "2.5E-4", "1.0E7").
func CastLabel(v interface{}) (string, error) {
	switch v := v.(type) {
	case nil:
		return "", errors.New("null label")
	case string:
		return v, nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		return formatFloat(v, 64), nil
	case float32:
		return formatFloat(float64(v), 32), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", errors.Errorf("unsupported label value %T", v)
	}
}

func formatFloat(v float64, bits int) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		if math.Signbit(v) {
			return "-0.0"
		}
		return "0.0"
	}

	if abs := math.Abs(v); abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(v, 'f', -1, bits)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}

	s := strconv.FormatFloat(v, 'E', -1, bits)
	parts := strings.SplitN(s, "E", 2)
	mantissa, exp := parts[0], parts[1]
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	neg := strings.HasPrefix(exp, "-")
	exp = strings.TrimLeft(exp, "+-0")
	if neg {
		exp = "-" + exp
	}
	return mantissa + "E" + exp
}

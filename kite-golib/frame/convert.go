package frame

import (
	"strconv"
	"strings"

	"github.com/kiteco/docclassifier/kite-golib/errors"
)

// ParseValue converts a raw text value into the Go value for a column of type t.
// Empty strings are nulls for every type but String.
func ParseValue(t Type, raw string) (interface{}, error) {
	if raw == "" && t != String {
		return nil, nil
	}
	switch t {
	case String:
		return raw, nil
	case Long:
		return strconv.ParseInt(raw, 10, 64)
	case Int:
		v, err := strconv.ParseInt(raw, 10, 32)
		return int32(v), err
	case Double:
		return strconv.ParseFloat(raw, 64)
	case Float:
		v, err := strconv.ParseFloat(raw, 32)
		return float32(v), err
	case Boolean:
		return strconv.ParseBool(raw)
	default:
		return nil, errors.Errorf("cannot parse %s values from text", t)
	}
}

// Vector is a float32 embedding that reads and writes as space separated numbers
type Vector []float32

// UnmarshalCSV implements gocsv.TypeUnmarshaller
func (v *Vector) UnmarshalCSV(s string) error {
	fields := strings.Fields(s)
	vec := make(Vector, 0, len(fields))
	for _, f := range fields {
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return errors.Wrapf(err, "invalid vector component %q", f)
		}
		vec = append(vec, float32(x))
	}
	*v = vec
	return nil
}

// MarshalCSV implements gocsv.TypeMarshaller
func (v Vector) MarshalCSV() (string, error) {
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = strconv.FormatFloat(float64(x), 'g', -1, 32)
	}
	return strings.Join(parts, " "), nil
}

// Package frame is a minimal tabular dataset abstraction: a schema of typed,
// annotated columns and a way to iterate rows. Engines that hold data
// elsewhere implement Dataset; Table is the in-memory implementation.
package frame

import (
	"fmt"

	"github.com/kiteco/docclassifier/kite-golib/errors"
)

// Type is the declared type of a column
type Type int

const (
	// String columns hold string values
	String Type = iota
	// Long columns hold int64 values
	Long
	// Int columns hold int32 values
	Int
	// Double columns hold float64 values
	Double
	// Float columns hold float32 values
	Float
	// Boolean columns hold bool values
	Boolean
	// Annotations columns hold []Annotation values
	Annotations
)

var typeNames = map[Type]string{
	String:      "string",
	Long:        "long",
	Int:         "int",
	Double:      "double",
	Float:       "float",
	Boolean:     "boolean",
	Annotations: "annotations",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType parses a type name as printed by Type.String
func ParseType(name string) (Type, error) {
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, errors.Errorf("unknown column type %q", name)
}

// Metadata keys set on annotation columns
const (
	AnnotatorTypeKey = "annotatorType"
	RefKey           = "ref"
)

// Annotation is one annotation produced by an upstream component for a row
type Annotation struct {
	AnnotatorType string            `json:"annotatorType"`
	Begin         int               `json:"begin"`
	End           int               `json:"end"`
	Result        string            `json:"result"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	Embeddings    []float32         `json:"embeddings,omitempty"`
}

// Field describes a column
type Field struct {
	Name     string
	Type     Type
	Metadata map[string]string
}

// Schema is an ordered list of fields
type Schema []Field

// Index returns the position of the named column
func (s Schema) Index(name string) (int, bool) {
	for i, f := range s {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Field returns the named column
func (s Schema) Field(name string) (Field, bool) {
	i, ok := s.Index(name)
	if !ok {
		return Field{}, false
	}
	return s[i], true
}

// Row is one record, with values in schema order. Nil values are nulls.
type Row []interface{}

// Dataset is a source of rows sharing a schema
type Dataset interface {
	Schema() Schema
	// ForEach calls fn on every row in order, stopping at the first error
	ForEach(fn func(i int, row Row) error) error
}

// Table is an in-memory Dataset
type Table struct {
	schema Schema
	rows   []Row
}

// NewTable returns an empty table with the given schema
func NewTable(schema Schema) (*Table, error) {
	seen := make(map[string]bool, len(schema))
	for _, f := range schema {
		if seen[f.Name] {
			return nil, errors.Errorf("duplicate column %s", f.Name)
		}
		seen[f.Name] = true
	}
	return &Table{schema: schema}, nil
}

// Schema implements Dataset
func (t *Table) Schema() Schema {
	return t.schema
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// ForEach implements Dataset
func (t *Table) ForEach(fn func(i int, row Row) error) error {
	for i, row := range t.rows {
		if err := fn(i, row); err != nil {
			return err
		}
	}
	return nil
}

// Append adds a row after checking each value against the column type
func (t *Table) Append(values ...interface{}) error {
	if len(values) != len(t.schema) {
		return errors.Errorf("expected %d values, got %d", len(t.schema), len(values))
	}
	for i, v := range values {
		if err := checkValue(t.schema[i], v); err != nil {
			return errors.Wrapf(err, "row %d", len(t.rows))
		}
	}
	t.rows = append(t.rows, Row(values))
	return nil
}

func checkValue(f Field, v interface{}) error {
	if v == nil {
		return nil
	}
	var ok bool
	switch f.Type {
	case String:
		_, ok = v.(string)
	case Long:
		_, ok = v.(int64)
	case Int:
		_, ok = v.(int32)
	case Double:
		_, ok = v.(float64)
	case Float:
		_, ok = v.(float32)
	case Boolean:
		_, ok = v.(bool)
	case Annotations:
		_, ok = v.([]Annotation)
	}
	if !ok {
		return errors.Errorf("column %s: %T is not a %s value", f.Name, v, f.Type)
	}
	return nil
}

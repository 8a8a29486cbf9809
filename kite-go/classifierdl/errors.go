package classifierdl

import (
	"fmt"
	"strings"

	"github.com/kiteco/docclassifier/kite-golib/frame"
)

// SchemaError reports a dataset column that is missing or has the wrong type
type SchemaError struct {
	Column string
	Type   frame.Type
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("column %s (%s): %s", e.Column, e.Type, e.Reason)
}

// MissingProvenanceError reports that no single embeddings ref could be
// resolved from the input columns
type MissingProvenanceError struct {
	Columns []string
	// Refs holds the conflicting refs when more than one was found
	Refs []string
}

func (e *MissingProvenanceError) Error() string {
	if len(e.Refs) > 1 {
		return fmt.Sprintf("input columns [%s] carry conflicting embeddings refs [%s]",
			strings.Join(e.Columns, ", "), strings.Join(e.Refs, ", "))
	}
	return fmt.Sprintf("unable to resolve an embeddings ref from input columns [%s]: "+
		"expected a %s column with %s metadata", strings.Join(e.Columns, ", "), frame.SentenceEmbeddings, frame.RefKey)
}

// TooManyClassesError reports a label vocabulary at or above MaxClasses
type TooManyClassesError struct {
	Count int
}

func (e *TooManyClassesError) Error() string {
	return fmt.Sprintf("the total unique number of classes must be less than %d, currently is %d", MaxClasses, e.Count)
}

// ResourceLoadError reports a base model that is missing or malformed
type ResourceLoadError struct {
	Err error
}

func (e *ResourceLoadError) Error() string {
	return fmt.Sprintf("unable to load base model: %v", e.Err)
}

// Unwrap returns the loader error
func (e *ResourceLoadError) Unwrap() error {
	return e.Err
}

// TrainerFailure wraps an error returned by a Trainer, unchanged
type TrainerFailure struct {
	RunID string
	Err   error
}

func (e *TrainerFailure) Error() string {
	return fmt.Sprintf("training run %s failed: %v", e.RunID, e.Err)
}

// Unwrap returns the trainer error
func (e *TrainerFailure) Unwrap() error {
	return e.Err
}

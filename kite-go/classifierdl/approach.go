// Package classifierdl trains document classifiers on top of sentence
// embeddings: it validates the dataset, encodes labels, hands the encoded
// instances to a Trainer and packages the result as a Model.
package classifierdl

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/kiteco/docclassifier/kite-golib/errors"
	"github.com/kiteco/docclassifier/kite-golib/frame"
	"github.com/kiteco/docclassifier/kite-golib/kitelog"
	uuid "github.com/satori/go.uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Approach trains classifiers. Loader and Trainer are required.
type Approach struct {
	// InputCols restricts where the sentence embeddings column is looked
	// up; empty means every column
	InputCols []string

	Loader  BaseLoader
	Trainer Trainer

	// Logger defaults to a no-op logger
	Logger *zap.Logger
}

// Train fits a classifier predicting labelCol from the sentence embeddings of
// ds. It fails fast, in order, on invalid params, a bad label column, an
// unresolvable embeddings ref, too many classes, an unloadable base model and
// finally a trainer error; no model is produced on failure.
func (a *Approach) Train(ctx context.Context, ds frame.Dataset, labelCol string, params Params) (*Model, error) {
	if a.Loader == nil || a.Trainer == nil {
		return nil, errors.New("approach requires a loader and a trainer")
	}
	if err := params.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid params")
	}

	var durations kitelog.Durations
	start := time.Now()

	schema := ds.Schema()
	if err := CheckLabelType(schema, labelCol); err != nil {
		return nil, err
	}
	embeddingsCol, embeddingsRef, err := ResolveEmbeddingsRef(schema, a.InputCols)
	if err != nil {
		return nil, err
	}

	projection, err := Project(ds, labelCol, embeddingsCol)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to project dataset")
	}
	encoder, err := NewEncoder(projection.Labels)
	if err != nil {
		return nil, err
	}
	durations.Since("project", start)

	runID, err := newRunID()
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := a.runLogger(runID, params)
	if err != nil {
		return nil, err
	}
	defer closeLog()

	logger.Info("training classifier",
		zap.String("label_column", labelCol),
		zap.String("embeddings_column", embeddingsCol),
		zap.String("embeddings_ref", embeddingsRef),
		zap.Int("instances", projection.Len()),
		zap.Int("classes", encoder.NumClasses()),
		zap.Int("embeddings_dim", projection.Dim()))

	start = time.Now()
	base, err := a.Loader.LoadBase(params.ConfigProtoBytes())
	if err != nil {
		return nil, &ResourceLoadError{Err: err}
	}
	durations.Since("load_base", start)

	labels, err := encoder.EncodeAll(projection.Labels)
	if err != nil {
		base.Close()
		return nil, err
	}
	set := &TrainingSet{
		Embeddings: projection.Embeddings,
		Labels:     labels,
		NumClasses: encoder.NumClasses(),
	}

	start = time.Now()
	trained, err := a.Trainer.Fit(ctx, base, set, FitConfig{
		Params: params,
		Rand:   newRand(params),
		RunID:  runID,
		Log:    logger,
	})
	if err != nil {
		base.Close()
		return nil, &TrainerFailure{RunID: runID, Err: err}
	}
	if trained == nil {
		base.Close()
		return nil, &TrainerFailure{RunID: runID, Err: errors.New("trainer returned no runtime")}
	}
	if trained != base {
		base.Close()
	}
	durations.Since("fit", start)

	model, err := NewModel(trained, encoder.Params(), embeddingsRef, runID)
	if err != nil {
		if trained != nil {
			trained.Close()
		}
		return nil, err
	}
	if blob := params.ConfigProtoBytes(); blob != nil {
		model.SetConfigProtoBytes(blob)
	}

	durations.Flush(logger, "training finished")
	return model, nil
}

// runLogger returns the logger for one run, teed into a log file when output
// logs are enabled
func (a *Approach) runLogger(runID string, params Params) (*zap.Logger, func() error, error) {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", runID))
	if !params.EnableOutputLogs() {
		return logger, func() error { return nil }, nil
	}

	path := filepath.Join(params.OutputLogsPath(), fmt.Sprintf("ClassifierDLApproach_%s.log", runID))
	return kitelog.TeeFile(logger, path, zapcore.DebugLevel)
}

// newRand returns the generator for one run. It never touches the process
// wide generator, so concurrent runs with the same seed do not interfere.
func newRand(params Params) *rand.Rand {
	seed, ok := params.RandomSeed()
	if !ok {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

func newRunID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", errors.Wrapf(err, "unable to generate run id")
	}
	return id.String(), nil
}

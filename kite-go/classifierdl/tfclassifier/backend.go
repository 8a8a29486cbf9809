// Package tfclassifier trains classifierdl models with a Tensorflow graph
// loaded from a bundled SavedModel.
package tfclassifier

import (
	"context"
	"time"

	"github.com/kiteco/docclassifier/kite-go/classifierdl"
	"github.com/kiteco/docclassifier/kite-golib/errors"
	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
)

var (
	_ classifierdl.BaseLoader    = (*Backend)(nil)
	_ classifierdl.Trainer       = (*Backend)(nil)
	_ classifierdl.VariableSaver = (*Model)(nil)
)

// Backend loads the base graph and trains it. It implements
// classifierdl.BaseLoader and classifierdl.Trainer.
type Backend struct {
	// BaseModelPath is a SavedModel directory or zip, local or remote
	BaseModelPath string
	Graph         GraphSpec

	load func(path string, config []byte) (session, error)
}

// NewBackend returns a backend for the base model at path, or at
// DefaultBaseModelPath if path is empty
func NewBackend(path string) *Backend {
	if path == "" {
		path = DefaultBaseModelPath()
	}
	return &Backend{
		BaseModelPath: path,
		Graph:         DefaultGraphSpec(),
		load:          loadSavedModel,
	}
}

// LoadBase implements classifierdl.BaseLoader
func (b *Backend) LoadBase(config []byte) (classifierdl.Runtime, error) {
	load := b.load
	if load == nil {
		load = loadSavedModel
	}
	sess, err := load(b.BaseModelPath, config)
	if err != nil {
		return nil, err
	}

	for _, op := range b.Graph.trainingOps() {
		if !sess.OpExists(op) {
			sess.Close()
			return nil, errors.Errorf("base model %s has no op %s", b.BaseModelPath, op)
		}
	}

	return &Model{
		sess:  sess,
		graph: b.Graph,
		width: int(sess.OutputDim(b.Graph.Labels, 1)),
	}, nil
}

// Fit implements classifierdl.Trainer. It trains base in place for up to
// MaxEpochs epochs of shuffled batches and returns it.
func (b *Backend) Fit(ctx context.Context, base classifierdl.Runtime, set *classifierdl.TrainingSet, cfg classifierdl.FitConfig) (classifierdl.Runtime, error) {
	m, ok := base.(*Model)
	if !ok {
		return nil, errors.Errorf("tfclassifier cannot train a %T", base)
	}
	if set.Len() == 0 {
		return nil, errors.New("empty training set")
	}

	width := set.NumClasses
	if m.width > 0 {
		if set.NumClasses > m.width {
			return nil, errors.Errorf("graph supports %d classes, got %d", m.width, set.NumClasses)
		}
		width = m.width
	}

	params := cfg.Params
	verbose := params.Verbose()
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	train, valid := set.Split(params.ValidationSplit(), cfg.Rand)
	if verbose.Includes(classifierdl.TrainingStat) {
		log.Info("training set",
			zap.Int("train_instances", train.Len()),
			zap.Int("validation_instances", validLen(valid)),
			zap.Int("classes", set.NumClasses),
			zap.Int("label_width", width),
			zap.Int("batch_size", params.BatchSize()),
			zap.Int("max_epochs", params.MaxEpochs()))
	}
	if verbose.Includes(classifierdl.Debug) {
		log.Info("graph", zap.Any("ops", m.graph))
	}

	for epoch := 1; epoch <= params.MaxEpochs(); epoch++ {
		start := time.Now()
		order := cfg.Rand.Perm(train.Len())

		var losses, accs []float64
		for step, batch := range batches(order, params.BatchSize()) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			sub := train.Subset(batch)
			loss, acc, err := m.step(sub, width, params)
			if err != nil {
				return nil, errors.Wrapf(err, "epoch %d step %d", epoch, step)
			}
			losses = append(losses, loss)
			accs = append(accs, acc)

			if verbose.Includes(classifierdl.PerStep) {
				log.Info("step", zap.Int("epoch", epoch), zap.Int("step", step),
					zap.Float64("loss", loss), zap.Float64("accuracy", acc))
			}
		}

		summary := epochSummary(epoch, losses, accs, time.Since(start))
		if valid != nil {
			validAcc, err := m.accuracy(valid)
			if err != nil {
				return nil, errors.Wrapf(err, "epoch %d validation", epoch)
			}
			summary = append(summary, zap.Float64("validation_accuracy", validAcc))
		}
		if verbose.Includes(classifierdl.Epochs) {
			log.Info("epoch finished", summary...)
		}
	}

	return m, nil
}

func (m *Model) step(sub *classifierdl.TrainingSet, width int, params classifierdl.Params) (float64, float64, error) {
	feeds := map[string]interface{}{
		m.graph.Inputs:       sub.Embeddings,
		m.graph.Labels:       classifierdl.OneHot(sub.Labels, width),
		m.graph.LearningRate: float32(params.LearningRate()),
	}
	if m.graph.Dropout != "" && m.sess.OpExists(m.graph.Dropout) {
		feeds[m.graph.Dropout] = float32(params.Dropout())
	}

	res, err := m.sess.Run(feeds, []string{m.graph.Loss, m.graph.Accuracy}, []string{m.graph.Optimizer})
	if err != nil {
		return 0, 0, err
	}
	loss, err := scalar(res[m.graph.Loss])
	if err != nil {
		return 0, 0, err
	}
	acc, err := scalar(res[m.graph.Accuracy])
	if err != nil {
		return 0, 0, err
	}
	return loss, acc, nil
}

func (m *Model) accuracy(set *classifierdl.TrainingSet) (float64, error) {
	scores, err := m.Predict(set.Embeddings)
	if err != nil {
		return 0, err
	}
	return accuracy(scores, set.Labels), nil
}

func epochSummary(epoch int, losses, accs []float64, took time.Duration) []zap.Field {
	fields := []zap.Field{zap.Int("epoch", epoch), zap.Duration("took", took)}
	if mean, err := stats.Mean(losses); err == nil {
		fields = append(fields, zap.Float64("loss", mean))
	}
	if sd, err := stats.StandardDeviation(losses); err == nil {
		fields = append(fields, zap.Float64("loss_stddev", sd))
	}
	if mean, err := stats.Mean(accs); err == nil {
		fields = append(fields, zap.Float64("accuracy", mean))
	}
	return fields
}

func validLen(s *classifierdl.TrainingSet) int {
	if s == nil {
		return 0
	}
	return s.Len()
}

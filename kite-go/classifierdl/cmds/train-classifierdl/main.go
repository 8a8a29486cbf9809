package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path"
	"strings"

	arg "github.com/alexflint/go-arg"
	"github.com/kiteco/docclassifier/kite-go/classifierdl"
	"github.com/kiteco/docclassifier/kite-go/classifierdl/tfclassifier"
	"github.com/kiteco/docclassifier/kite-golib/errors"
	"github.com/kiteco/docclassifier/kite-golib/frame"
	"github.com/kiteco/docclassifier/kite-golib/kitelog"
	"github.com/kiteco/docclassifier/kite-golib/tensorflow"
	"go.uber.org/zap"
)

func fail(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

type options struct {
	Dataset   string `arg:"positional,required,help:csv or json(.gz) dataset with label and embeddings, local or s3://"`
	Out       string `arg:"positional,required,help:directory to write the trained model to"`
	Format    string `arg:"help:dataset format, csv or json (default: from the file extension)"`
	LabelType string `arg:"--label-type,help:type of the label column"`
	Ref       string `arg:"help:ref of the component that produced the embeddings"`
	Params    string `arg:"help:yaml file with training params"`
	BaseModel string `arg:"--base-model,help:zipped SavedModel to start from (default: under $KITE_RESOURCES)"`
	Threads   int    `arg:"help:tensorflow intra/inter op threads, 0 for the tensorflow default"`

	LearningRate    *float64                `arg:"--lr"`
	BatchSize       *int                    `arg:"--batch-size"`
	Dropout         *float64                `arg:"--dropout"`
	MaxEpochs       *int                    `arg:"--max-epochs"`
	ValidationSplit *float64                `arg:"--validation-split"`
	Verbose         *classifierdl.Verbosity `arg:"--verbose"`
	Seed            *int64                  `arg:"--seed"`
	Logs            string                  `arg:"--logs,help:write the training log of the run to this directory"`
}

func (o options) overrides() []classifierdl.Option {
	var opts []classifierdl.Option
	if o.LearningRate != nil {
		opts = append(opts, classifierdl.WithLearningRate(*o.LearningRate))
	}
	if o.BatchSize != nil {
		opts = append(opts, classifierdl.WithBatchSize(*o.BatchSize))
	}
	if o.Dropout != nil {
		opts = append(opts, classifierdl.WithDropout(*o.Dropout))
	}
	if o.MaxEpochs != nil {
		opts = append(opts, classifierdl.WithMaxEpochs(*o.MaxEpochs))
	}
	if o.ValidationSplit != nil {
		opts = append(opts, classifierdl.WithValidationSplit(*o.ValidationSplit))
	}
	if o.Verbose != nil {
		opts = append(opts, classifierdl.WithVerbose(*o.Verbose))
	}
	if o.Seed != nil {
		opts = append(opts, classifierdl.WithRandomSeed(*o.Seed))
	}
	if o.Logs != "" {
		opts = append(opts, classifierdl.WithOutputLogs(o.Logs))
	}
	if o.Threads > 0 {
		opts = append(opts, classifierdl.WithConfigProtoBytes(tensorflow.ThreadpoolConfig(o.Threads)))
	}
	return opts
}

func (o options) params() (classifierdl.Params, error) {
	if o.Params != "" {
		return classifierdl.LoadParams(o.Params, o.overrides()...)
	}
	return classifierdl.NewParams(o.overrides()...)
}

const (
	labelColumn      = "label"
	embeddingsColumn = "sentence_embeddings"
)

func (o options) read() (*frame.Table, error) {
	labelType := frame.String
	if o.LabelType != "" {
		t, err := frame.ParseType(o.LabelType)
		if err != nil {
			return nil, err
		}
		labelType = t
	}
	ref := o.Ref
	if ref == "" {
		ref = path.Base(o.Dataset)
	}
	opts := frame.EmbeddingsOptions{
		LabelColumn:      labelColumn,
		LabelType:        labelType,
		EmbeddingsColumn: embeddingsColumn,
		EmbeddingsRef:    ref,
	}

	format := o.Format
	if format == "" {
		format = "csv"
		if strings.Contains(path.Base(o.Dataset), ".json") {
			format = "json"
		}
	}
	switch format {
	case "csv":
		return frame.ReadCSVFile(o.Dataset, opts)
	case "json":
		return frame.ReadJSON(o.Dataset, opts)
	default:
		return nil, errors.Errorf("unknown dataset format %s", format)
	}
}

func main() {
	var args options
	arg.MustParse(&args)

	logger := kitelog.New(zap.InfoLevel)
	defer logger.Sync()

	params, err := args.params()
	fail(err)

	table, err := args.read()
	fail(err)
	logger.Info("read dataset", zap.String("path", args.Dataset), zap.Int("rows", table.Len()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		logger.Warn("interrupted, stopping training")
		cancel()
	}()

	backend := tfclassifier.NewBackend(args.BaseModel)
	approach := &classifierdl.Approach{
		InputCols: []string{embeddingsColumn},
		Loader:    backend,
		Trainer:   backend,
		Logger:    logger,
	}

	model, err := approach.Train(ctx, table, labelColumn, params)
	fail(err)
	defer model.Close()

	fail(model.Save(args.Out))
	logger.Info("saved model",
		zap.String("out", args.Out),
		zap.String("run_id", model.RunID()),
		zap.Strings("labels", model.Labels()))
}

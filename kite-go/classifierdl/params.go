package classifierdl

import (
	"encoding/base64"
	"os"
	"path/filepath"

	"github.com/kiteco/docclassifier/kite-golib/errors"
	"github.com/kiteco/docclassifier/kite-golib/fileutil"
	yaml "gopkg.in/yaml.v2"
)

// Defaults for Params
const (
	DefaultLearningRate    = 0.005
	DefaultBatchSize       = 64
	DefaultDropout         = 0.5
	DefaultMaxEpochs       = 30
	DefaultValidationSplit = 0.0
)

// Params is the immutable hyperparameter set of a training run. Build it with
// NewParams or LoadParams; the zero value is not valid.
type Params struct {
	learningRate     float64
	batchSize        int
	dropout          float64
	maxEpochs        int
	validationSplit  float64
	verbose          Verbosity
	randomSeed       *int64
	enableOutputLogs bool
	outputLogsPath   string
	configProto      []byte
}

// Option sets one hyperparameter
type Option func(p *Params)

// WithLearningRate sets the optimizer learning rate, > 0
func WithLearningRate(lr float64) Option {
	return func(p *Params) { p.learningRate = lr }
}

// WithBatchSize sets the number of instances per batch, > 0
func WithBatchSize(n int) Option {
	return func(p *Params) { p.batchSize = n }
}

// WithDropout sets the dropout probability, in [0, 1)
func WithDropout(d float64) Option {
	return func(p *Params) { p.dropout = d }
}

// WithMaxEpochs sets the maximum number of epochs, > 0
func WithMaxEpochs(n int) Option {
	return func(p *Params) { p.maxEpochs = n }
}

// WithValidationSplit sets the fraction of instances held out for validation, in [0, 1)
func WithValidationSplit(f float64) Option {
	return func(p *Params) { p.validationSplit = f }
}

// WithVerbose sets the reporting level
func WithVerbose(v Verbosity) Option {
	return func(p *Params) { p.verbose = v }
}

// WithRandomSeed seeds the generator handed to the trainer
func WithRandomSeed(seed int64) Option {
	return func(p *Params) { p.randomSeed = &seed }
}

// WithOutputLogs enables the per-run log file, written under dir. An empty
// dir means $HOME/annotator_logs.
func WithOutputLogs(dir string) Option {
	return func(p *Params) {
		p.enableOutputLogs = true
		p.outputLogsPath = dir
	}
}

// WithConfigProtoBytes sets the opaque runtime configuration forwarded to the
// trainer and attached to the trained model
func WithConfigProtoBytes(b []byte) Option {
	return func(p *Params) { p.configProto = copyBytes(b) }
}

// DefaultParams returns the default hyperparameter set
func DefaultParams() Params {
	return Params{
		learningRate:    DefaultLearningRate,
		batchSize:       DefaultBatchSize,
		dropout:         DefaultDropout,
		maxEpochs:       DefaultMaxEpochs,
		validationSplit: DefaultValidationSplit,
		verbose:         Silent,
	}
}

// NewParams applies opts over the defaults and validates the result
func NewParams(opts ...Option) (Params, error) {
	p := DefaultParams()
	for _, opt := range opts {
		opt(&p)
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate returns every constraint violation of p as an errors.Errors list
func (p Params) Validate() error {
	var errs errors.Errors
	if !(p.learningRate > 0) {
		errs = errors.Append(errs, errors.Errorf("learning rate must be > 0, got %v", p.learningRate))
	}
	if p.batchSize <= 0 {
		errs = errors.Append(errs, errors.Errorf("batch size must be > 0, got %d", p.batchSize))
	}
	if !(p.dropout >= 0 && p.dropout < 1) {
		errs = errors.Append(errs, errors.Errorf("dropout must be in [0, 1), got %v", p.dropout))
	}
	if p.maxEpochs <= 0 {
		errs = errors.Append(errs, errors.Errorf("max epochs must be > 0, got %d", p.maxEpochs))
	}
	if !(p.validationSplit >= 0 && p.validationSplit < 1) {
		errs = errors.Append(errs, errors.Errorf("validation split must be in [0, 1), got %v", p.validationSplit))
	}
	if p.verbose < Silent || p.verbose > Debug {
		errs = errors.Append(errs, errors.Errorf("unknown verbosity %d", int(p.verbose)))
	}
	return errs.Err()
}

// LearningRate ...
func (p Params) LearningRate() float64 { return p.learningRate }

// BatchSize ...
func (p Params) BatchSize() int { return p.batchSize }

// Dropout ...
func (p Params) Dropout() float64 { return p.dropout }

// MaxEpochs ...
func (p Params) MaxEpochs() int { return p.maxEpochs }

// ValidationSplit ...
func (p Params) ValidationSplit() float64 { return p.validationSplit }

// Verbose ...
func (p Params) Verbose() Verbosity { return p.verbose }

// RandomSeed returns the configured seed, if any
func (p Params) RandomSeed() (int64, bool) {
	if p.randomSeed == nil {
		return 0, false
	}
	return *p.randomSeed, true
}

// EnableOutputLogs ...
func (p Params) EnableOutputLogs() bool { return p.enableOutputLogs }

// OutputLogsPath returns the directory for per-run log files
func (p Params) OutputLogsPath() string {
	if p.outputLogsPath != "" {
		return p.outputLogsPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, "annotator_logs")
}

// ConfigProtoBytes returns a copy of the runtime configuration blob, or nil
func (p Params) ConfigProtoBytes() []byte {
	return copyBytes(p.configProto)
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// paramsFile is the YAML form of Params; absent keys keep their defaults
type paramsFile struct {
	LearningRate    *float64   `yaml:"learning_rate"`
	BatchSize       *int       `yaml:"batch_size"`
	Dropout         *float64   `yaml:"dropout"`
	MaxEpochs       *int       `yaml:"max_epochs"`
	ValidationSplit *float64   `yaml:"validation_split"`
	Verbose         *Verbosity `yaml:"verbose"`
	RandomSeed      *int64     `yaml:"random_seed"`
	OutputLogs      *bool      `yaml:"enable_output_logs"`
	OutputLogsPath  string     `yaml:"output_logs_path"`
	// ConfigProto is base64 encoded
	ConfigProto string `yaml:"config_proto"`
}

// ParseParams parses YAML hyperparameters, applying extra options after the file
func ParseParams(buf []byte, extra ...Option) (Params, error) {
	var f paramsFile
	if err := yaml.UnmarshalStrict(buf, &f); err != nil {
		return Params{}, errors.Wrapf(err, "invalid params")
	}

	var opts []Option
	if f.LearningRate != nil {
		opts = append(opts, WithLearningRate(*f.LearningRate))
	}
	if f.BatchSize != nil {
		opts = append(opts, WithBatchSize(*f.BatchSize))
	}
	if f.Dropout != nil {
		opts = append(opts, WithDropout(*f.Dropout))
	}
	if f.MaxEpochs != nil {
		opts = append(opts, WithMaxEpochs(*f.MaxEpochs))
	}
	if f.ValidationSplit != nil {
		opts = append(opts, WithValidationSplit(*f.ValidationSplit))
	}
	if f.Verbose != nil {
		opts = append(opts, WithVerbose(*f.Verbose))
	}
	if f.RandomSeed != nil {
		opts = append(opts, WithRandomSeed(*f.RandomSeed))
	}
	if f.OutputLogs != nil && *f.OutputLogs {
		opts = append(opts, WithOutputLogs(f.OutputLogsPath))
	}
	if f.ConfigProto != "" {
		blob, err := base64.StdEncoding.DecodeString(f.ConfigProto)
		if err != nil {
			return Params{}, errors.Wrapf(err, "invalid config_proto")
		}
		opts = append(opts, WithConfigProtoBytes(blob))
	}

	return NewParams(append(opts, extra...)...)
}

// LoadParams reads YAML hyperparameters from a local or remote path
func LoadParams(path string, extra ...Option) (Params, error) {
	buf, err := fileutil.ReadFile(path)
	if err != nil {
		return Params{}, errors.Wrapf(err, "unable to read params from %s", path)
	}
	return ParseParams(buf, extra...)
}

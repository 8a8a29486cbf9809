package classifierdl

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/kiteco/docclassifier/kite-golib/errors"
	"github.com/kiteco/docclassifier/kite-golib/serialization"
)

const (
	metadataFile    = "metadata.json"
	variablesPrefix = "variables/variables"
	variablesDir    = "variables"
)

// Model is a trained classifier: the trained runtime together with the label
// encoder and the embeddings ref it was trained against. Everything but the
// runtime configuration blob is fixed at construction.
type Model struct {
	runtime       Runtime
	encoder       *Encoder
	embeddingsRef string
	runID         string

	mu          sync.RWMutex
	configProto []byte
}

// NewModel assembles a trained model
func NewModel(runtime Runtime, params EncoderParams, embeddingsRef, runID string) (*Model, error) {
	if runtime == nil {
		return nil, errors.New("trained model requires a runtime")
	}
	enc, err := NewEncoderFromParams(params)
	if err != nil {
		return nil, err
	}
	return &Model{
		runtime:       runtime,
		encoder:       enc,
		embeddingsRef: embeddingsRef,
		runID:         runID,
	}, nil
}

// Runtime returns the trained numeric state
func (m *Model) Runtime() Runtime {
	return m.runtime
}

// EncoderParams returns a copy of the label encoder state
func (m *Model) EncoderParams() EncoderParams {
	return m.encoder.Params()
}

// Labels returns the label vocabulary in class index order
func (m *Model) Labels() []string {
	return m.encoder.Params().Tags
}

// EmbeddingsRef returns the ref of the embeddings the model was trained on
func (m *Model) EmbeddingsRef() string {
	return m.embeddingsRef
}

// RunID returns the id of the training run that produced the model
func (m *Model) RunID() string {
	return m.runID
}

// SetConfigProtoBytes attaches a runtime configuration blob
func (m *Model) SetConfigProtoBytes(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configProto = copyBytes(b)
}

// ConfigProtoBytes returns a copy of the attached configuration blob, or nil
func (m *Model) ConfigProtoBytes() []byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyBytes(m.configProto)
}

// Classify predicts a label for each embedding vector
func (m *Model) Classify(embeddings [][]float32) ([]Prediction, error) {
	scores, err := m.runtime.Predict(embeddings)
	if err != nil {
		return nil, errors.Wrapf(err, "error running classifier")
	}
	if len(scores) != len(embeddings) {
		return nil, errors.Errorf("got %d score rows for %d inputs", len(scores), len(embeddings))
	}
	return m.encoder.Predictions(scores)
}

// Close releases the runtime
func (m *Model) Close() error {
	return m.runtime.Close()
}

// Metadata is the non-numeric part of a saved model
type Metadata struct {
	RunID         string        `json:"run_id"`
	EmbeddingsRef string        `json:"embeddings_ref"`
	Encoder       EncoderParams `json:"encoder"`
	ConfigProto   []byte        `json:"config_proto,omitempty"`
}

// Metadata returns a snapshot of the model's non-numeric state
func (m *Model) Metadata() Metadata {
	return Metadata{
		RunID:         m.runID,
		EmbeddingsRef: m.embeddingsRef,
		Encoder:       m.EncoderParams(),
		ConfigProto:   m.ConfigProtoBytes(),
	}
}

// Save writes metadata.json into dir and, if the runtime supports it, a
// checkpoint of its variables under dir/variables.
func (m *Model) Save(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "unable to create %s", dir)
	}
	if err := serialization.Encode(filepath.Join(dir, metadataFile), m.Metadata()); err != nil {
		return errors.Wrapf(err, "unable to write model metadata")
	}

	saver, ok := m.runtime.(VariableSaver)
	if !ok {
		return nil
	}
	if err := os.MkdirAll(filepath.Join(dir, variablesDir), 0755); err != nil {
		return errors.Wrapf(err, "unable to create variables directory")
	}
	return errors.WrapfOrNil(saver.SaveVariables(filepath.Join(dir, variablesPrefix)), "unable to save variables")
}

// LoadMetadata reads the metadata written by Save from a local or remote directory
func LoadMetadata(dir string) (Metadata, error) {
	var md Metadata
	if err := serialization.Decode(dir+"/"+metadataFile, &md); err != nil {
		return Metadata{}, err
	}
	if _, err := NewEncoderFromParams(md.Encoder); err != nil {
		return Metadata{}, errors.Wrapf(err, "invalid encoder in %s", dir)
	}
	return md, nil
}

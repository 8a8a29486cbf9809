package tfclassifier

import (
	"github.com/kiteco/docclassifier/kite-golib/errors"
	"github.com/kiteco/docclassifier/kite-golib/tensorflow"
)

// session is the part of a loaded graph the classifier runs against
type session interface {
	Run(feeds map[string]interface{}, fetches []string, targets []string) (map[string]interface{}, error)
	OpExists(name string) bool
	OutputDim(name string, dim int) int64
	Close() error
}

var _ session = (*tensorflow.SavedModel)(nil)

func loadSavedModel(path string, config []byte) (session, error) {
	saved, err := tensorflow.LoadSavedModel(path, config)
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Model is a classifier runtime backed by a Tensorflow session. It implements
// classifierdl.Runtime and classifierdl.VariableSaver.
type Model struct {
	sess  session
	graph GraphSpec
	// width of the label placeholder, or -1 if the graph does not fix it
	width int
}

// Width returns the number of classes the graph supports, or -1 if unbounded
func (m *Model) Width() int {
	return m.width
}

// Predict runs the graph in inference mode and returns class scores
func (m *Model) Predict(embeddings [][]float32) ([][]float32, error) {
	if len(embeddings) == 0 {
		return nil, nil
	}
	feeds := map[string]interface{}{m.graph.Inputs: embeddings}
	if m.graph.Dropout != "" && m.sess.OpExists(m.graph.Dropout) {
		feeds[m.graph.Dropout] = float32(0)
	}

	res, err := m.sess.Run(feeds, []string{m.graph.Outputs}, nil)
	if err != nil {
		return nil, err
	}
	scores, ok := res[m.graph.Outputs].([][]float32)
	if !ok {
		return nil, errors.Errorf("unexpected output type %T from %s", res[m.graph.Outputs], m.graph.Outputs)
	}
	return scores, nil
}

// SaveVariables checkpoints the graph variables to the given path prefix
func (m *Model) SaveVariables(prefix string) error {
	if !m.sess.OpExists(m.graph.SaveFilename) || !m.sess.OpExists(m.graph.Save) {
		return errors.Errorf("graph has no save ops %s, %s", m.graph.SaveFilename, m.graph.Save)
	}
	_, err := m.sess.Run(map[string]interface{}{m.graph.SaveFilename: prefix}, nil, []string{m.graph.Save})
	return err
}

// Close releases the session
func (m *Model) Close() error {
	return m.sess.Close()
}

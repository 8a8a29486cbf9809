package tensorflow

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/kiteco/docclassifier/kite-golib/errors"
	"github.com/kiteco/docclassifier/kite-golib/fileutil"
	tf "github.com/kiteco/tensorflow/tensorflow/go"
	"github.com/mholt/archiver"
)

// ServeTag is the tag of the exported graph variant loaded for training and inference
const ServeTag = "serve"

const savedModelFile = "saved_model.pb"

// SavedModel wraps a Tensorflow SavedModel bundle loaded into a session
type SavedModel struct {
	session *tf.Session
	graph   *tf.Graph

	// scratch directory holding the unpacked bundle, removed on Close
	scratch string
}

// LoadSavedModel loads the SavedModel at path with the serve tag. The path may
// be a local directory containing saved_model.pb, or a local or remote (s3,
// http) zip archive of such a directory. config is an optional serialized
// ConfigProto used as the session options; it is passed through verbatim.
// Tensorflow runs the bundle's main op on load, which initializes its tables.
func LoadSavedModel(path string, config []byte) (*SavedModel, error) {
	if fileutil.IsDir(path) {
		return loadDir(path, config, "")
	}
	if !strings.HasSuffix(path, ".zip") {
		return nil, errors.Errorf("%s is neither a directory nor a zip archive", path)
	}

	scratch, err := ioutil.TempDir("", "savedmodel")
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create scratch directory")
	}

	m, err := unpackAndLoad(path, scratch, config)
	if err != nil {
		os.RemoveAll(scratch)
		return nil, err
	}
	return m, nil
}

func unpackAndLoad(path, scratch string, config []byte) (*SavedModel, error) {
	archive := path
	if fileutil.IsRemote(path) {
		local, err := fileutil.DownloadToTemp(path, scratch)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to download %s", path)
		}
		archive = local
	}

	unpacked := filepath.Join(scratch, "bundle")
	if err := archiver.NewZip().Unarchive(archive, unpacked); err != nil {
		return nil, errors.Wrapf(err, "unable to unzip %s", path)
	}

	dir, err := FindSavedModelDir(unpacked)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid archive %s", path)
	}
	return loadDir(dir, config, scratch)
}

func loadDir(dir string, config []byte, scratch string) (*SavedModel, error) {
	opts := &tf.SessionOptions{Config: config}
	bundle, err := tf.LoadSavedModel(dir, []string{ServeTag}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to load saved model from %s", dir)
	}
	return &SavedModel{
		session: bundle.Session,
		graph:   bundle.Graph,
		scratch: scratch,
	}, nil
}

// FindSavedModelDir returns the shallowest directory under root that contains
// a saved_model.pb file.
func FindSavedModelDir(root string) (string, error) {
	queue := []string{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		infos, err := ioutil.ReadDir(dir)
		if err != nil {
			return "", err
		}
		for _, fi := range infos {
			if !fi.IsDir() && fi.Name() == savedModelFile {
				return dir, nil
			}
		}
		for _, fi := range infos {
			if fi.IsDir() {
				queue = append(queue, filepath.Join(dir, fi.Name()))
			}
		}
	}
	return "", errors.Errorf("no %s found under %s", savedModelFile, root)
}

// Close releases the session and removes any unpacked files
func (m *SavedModel) Close() error {
	var err error
	if m.session != nil {
		err = m.session.Close()
		m.session = nil
	}
	m.graph = nil
	if m.scratch != "" {
		err = errors.Combine(err, os.RemoveAll(m.scratch))
		m.scratch = ""
	}
	return err
}

// OpExists returns true if the graph has an operation with the given name
func (m *SavedModel) OpExists(name string) bool {
	return m.graph != nil && m.graph.Operation(name) != nil
}

// OutputDim returns the size of dimension dim of the first output of op, or -1
// if the op is missing or the dimension is unknown.
func (m *SavedModel) OutputDim(name string, dim int) int64 {
	if m.graph == nil {
		return -1
	}
	op := m.graph.Operation(name)
	if op == nil {
		return -1
	}
	shape := op.Output(0).Shape()
	if shape.NumDimensions() <= dim {
		return -1
	}
	return shape.Size(dim)
}

// Run feeds values keyed by op name, runs the targets, and returns the
// fetched op outputs keyed by op name.
func (m *SavedModel) Run(feeds map[string]interface{}, fetches []string, targets []string) (map[string]interface{}, error) {
	if m.session == nil {
		return nil, errors.New("saved model is closed")
	}

	tfFeeds := make(map[tf.Output]*tf.Tensor, len(feeds))
	defer func() {
		for _, t := range tfFeeds {
			t.Delete()
		}
	}()
	for name, val := range feeds {
		out, err := m.output(name)
		if err != nil {
			return nil, err
		}
		tensor, err := tf.NewTensor(val)
		if err != nil {
			return nil, errors.Wrapf(err, "error creating tensor for %s", name)
		}
		tfFeeds[out] = tensor
	}

	tfFetches := make([]tf.Output, 0, len(fetches))
	for _, name := range fetches {
		out, err := m.output(name)
		if err != nil {
			return nil, err
		}
		tfFetches = append(tfFetches, out)
	}

	tfTargets := make([]*tf.Operation, 0, len(targets))
	for _, name := range targets {
		op := m.graph.Operation(name)
		if op == nil {
			return nil, errors.Errorf("unable to find target op '%s'", name)
		}
		tfTargets = append(tfTargets, op)
	}

	res, err := m.session.Run(tfFeeds, tfFetches, tfTargets)
	if err != nil {
		return nil, errors.Wrapf(err, "error running model")
	}
	defer func() {
		for _, t := range res {
			t.Delete()
		}
	}()

	out := make(map[string]interface{}, len(fetches))
	for i, name := range fetches {
		out[name] = res[i].Value()
	}
	return out, nil
}

func (m *SavedModel) output(name string) (tf.Output, error) {
	op := m.graph.Operation(name)
	if op == nil {
		return tf.Output{}, errors.Errorf("could not find op with name: %s", name)
	}
	return op.Output(0), nil
}

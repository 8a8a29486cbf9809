package serialization

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/kiteco/docclassifier/kite-golib/errors"
	yaml "gopkg.in/yaml.v2"
)

// Encode writes the object to the path, using the format specified by the file
// extension, which can be .json, .yml, or .yaml. The path may additionally have
// a .gz suffix, in which case the stream will be compressed.
func Encode(path string, obj interface{}) (err error) {
	enc, err := NewEncoder(path)
	if err != nil {
		return err
	}
	defer errors.Defer(&err, enc.Close)
	return enc.Encode(obj)
}

// Encoder matches json.Encoder and yaml.Encoder
type Encoder interface {
	// Encode adds an item to the stream
	Encode(interface{}) error
}

// EncodeCloser is an encoder that can also close its underlying stream
type EncodeCloser struct {
	encoder Encoder
	closers []io.Closer
}

// Encode writes an object to the underlying stream
func (e *EncodeCloser) Encode(x interface{}) error {
	return e.encoder.Encode(x)
}

// Close flushes and closes the underlying streams, innermost first
func (e *EncodeCloser) Close() error {
	var closeErr error
	for i := len(e.closers) - 1; i >= 0; i-- {
		closeErr = errors.Combine(closeErr, e.closers[i].Close())
	}
	return closeErr
}

// NewEncoder creates the file at path and returns an encoder for the format
// named by its extension (see Encode).
func NewEncoder(path string) (*EncodeCloser, error) {
	format, compressed, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create %s", path)
	}

	var w io.Writer = f
	closers := []io.Closer{f}
	if compressed {
		gz := gzip.NewWriter(f)
		w = gz
		closers = append(closers, gz)
	}

	var e Encoder
	switch format {
	case ".json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		e = enc
	default:
		enc := yaml.NewEncoder(w)
		closers = append(closers, enc)
		e = enc
	}

	return &EncodeCloser{
		encoder: e,
		closers: closers,
	}, nil
}

// formatOf returns the encoding extension of path and whether it is gzipped
func formatOf(path string) (string, bool, error) {
	compressed := strings.HasSuffix(path, ".gz")
	trimmed := strings.TrimSuffix(path, ".gz")
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		if strings.HasSuffix(trimmed, ext) {
			return ext, compressed, nil
		}
	}
	return "", false, errors.Errorf("could not find encoding for %s", path)
}

package serialization

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"reflect"

	"github.com/kiteco/docclassifier/kite-golib/errors"
	"github.com/kiteco/docclassifier/kite-golib/fileutil"
	yaml "gopkg.in/yaml.v2"
)

// Decoder matches json.Decoder and yaml.Decoder
type Decoder interface {
	// Decode extracts an object from the stream
	Decode(interface{}) error
}

// ErrStop is a special value returned from handlers to cease processing
var ErrStop = errors.New("stop processing requested")

// Decode loads objects from a local or remote file. If the path ends with .gz
// the contents will be decompressed. The encoding is then determined by the
// remaining file extension, which can be .json, .yml or .yaml.
//
// If handler is a pointer, a single object is decoded into it. Otherwise it
// must be a func(*T) or func(*T) error, which is called for each object in
// the stream:
//
//   err := serialization.Decode("/tmp/rows.json.gz", func(r *Row) error {
//     rows = append(rows, *r)
//     return nil
//   })
func Decode(path string, handler interface{}) error {
	r, err := fileutil.NewReader(path)
	if err != nil {
		return errors.Wrapf(err, "error loading %s", path)
	}
	defer r.Close()
	return DecodeAs(r, path, handler)
}

// DecodeAs is like Decode but reads from r, using path only to determine the
// compression and encoding.
func DecodeAs(r io.Reader, path string, handler interface{}) error {
	format, compressed, err := formatOf(path)
	if err != nil {
		return err
	}
	if compressed {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return errors.Wrapf(err, "error loading %s", path)
		}
		defer gz.Close()
		r = gz
	}

	var d Decoder
	switch format {
	case ".json":
		d = json.NewDecoder(r)
	default:
		d = yaml.NewDecoder(r)
	}

	f := reflect.ValueOf(handler)
	if f.Kind() == reflect.Ptr {
		return errors.WrapfOrNil(d.Decode(handler), "error decoding %s", path)
	}

	elemType, err := handlerElem(f)
	if err != nil {
		return err
	}

	for {
		elem := reflect.New(elemType)
		err := d.Decode(elem.Interface())
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrapf(err, "error decoding %s", path)
		}

		ret := f.Call([]reflect.Value{elem})
		if len(ret) == 0 || ret[0].IsNil() {
			continue
		}
		herr := ret[0].Interface().(error)
		if herr == ErrStop {
			return nil
		}
		return herr
	}
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func handlerElem(f reflect.Value) (reflect.Type, error) {
	if f.Kind() != reflect.Func {
		return nil, errors.Errorf("expected a function or a pointer, got %s", f.Kind())
	}
	t := f.Type()
	if t.NumIn() != 1 || t.In(0).Kind() != reflect.Ptr {
		return nil, errors.Errorf("expected a function with one pointer parameter, got %s", t)
	}
	if t.NumOut() > 1 || (t.NumOut() == 1 && t.Out(0) != errorType) {
		return nil, errors.Errorf("expected a function returning nothing or an error, got %s", t)
	}
	return t.In(0).Elem(), nil
}

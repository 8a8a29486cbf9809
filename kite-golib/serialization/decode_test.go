package serialization

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string    `json:"name" yaml:"name"`
	Score []float32 `json:"score" yaml:"score"`
}

func TestEncodeDecode(t *testing.T) {
	dir, err := ioutil.TempDir("", "serialization")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	in := record{Name: "sports", Score: []float32{0.25, 0.75}}
	for _, name := range []string{"r.json", "r.json.gz", "r.yaml", "r.yml.gz"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Encode(path, in), name)

		var out record
		require.NoError(t, Decode(path, &out), name)
		assert.Equal(t, in, out, name)
	}
}

func TestDecodeStream(t *testing.T) {
	stream := `{"name": "a"}
{"name": "b"}
{"name": "c"}`

	var names []string
	err := DecodeAs(strings.NewReader(stream), "rows.json", func(r *record) error {
		names = append(names, r.Name)
		if r.Name == "b" {
			return ErrStop
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestDecodeBadHandler(t *testing.T) {
	err := DecodeAs(strings.NewReader("{}"), "rows.json", func(r record) {})
	assert.Error(t, err)
}

func TestUnknownFormat(t *testing.T) {
	err := DecodeAs(strings.NewReader("{}"), "rows.xml", &record{})
	assert.Error(t, err)
	_, err = NewEncoder(filepath.Join(os.TempDir(), "rows.txt"))
	assert.Error(t, err)
}

package fileutil

import (
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/kiteco/docclassifier/kite-golib/awsutil"
	"github.com/kiteco/docclassifier/kite-golib/errors"
)

// IsRemote returns true for s3 and http(s) paths.
func IsRemote(path string) bool {
	return awsutil.IsS3URI(path) || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// NewReader opens a local or remote path for reading. If the path looks like
// "s3://bucket/path/to/object" then this will read an object from S3, http(s)
// urls are fetched with a GET. Otherwise, this will read a path from the local
// filesystem.
func NewReader(path string) (io.ReadCloser, error) {
	switch {
	case awsutil.IsS3URI(path):
		return awsutil.NewS3Reader(path)
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		resp, err := http.Get(path)
		if err != nil {
			return nil, errors.Wrapf(err, "error getting %s", path)
		}
		if resp.StatusCode != http.StatusOK {
			defer resp.Body.Close()
			io.Copy(ioutil.Discard, resp.Body)
			return nil, errors.Errorf("error getting %s: status code %d", path, resp.StatusCode)
		}
		return resp.Body, nil
	default:
		return os.Open(path)
	}
}

// ReadFile reads the full contents of a local or remote path.
func ReadFile(path string) ([]byte, error) {
	r, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}

// IsDir returns true if path is an existing local directory.
func IsDir(path string) bool {
	if IsRemote(path) {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// DownloadToTemp copies the contents of path into a new file inside dir and
// returns the local file path. The file keeps the base name of path.
func DownloadToTemp(path, dir string) (local string, err error) {
	r, err := NewReader(path)
	if err != nil {
		return "", err
	}
	defer r.Close()

	local = filepath.Join(dir, baseName(path))
	f, err := os.Create(local)
	if err != nil {
		return "", errors.Wrapf(err, "unable to create %s", local)
	}
	defer errors.Defer(&err, f.Close)

	if _, err := io.Copy(f, r); err != nil {
		return "", errors.Wrapf(err, "unable to copy %s", path)
	}
	return local, nil
}

func baseName(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	name := path[strings.LastIndex(path, "/")+1:]
	if name == "" {
		return "download"
	}
	return name
}

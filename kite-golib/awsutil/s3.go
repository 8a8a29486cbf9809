package awsutil

import (
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/kiteco/docclassifier/kite-golib/errors"
)

// region used to discover bucket locations when AWS_REGION is unset
const defaultRegion = "us-west-1"

// IsS3URI returns true if the path is an s3 uri.
func IsS3URI(path string) bool {
	return strings.HasPrefix(path, "s3://")
}

// ValidateURI checks whether the given uri points to S3 and names a bucket and key.
func ValidateURI(uri string) (*url.URL, error) {
	s3url, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid s3 uri %s", uri)
	}
	if s3url.Scheme != "s3" {
		return nil, errors.Errorf("%s is not an s3 path", uri)
	}
	if s3url.Host == "" || strings.Trim(s3url.Path, "/") == "" {
		return nil, errors.Errorf("%s must name a bucket and a key", uri)
	}
	return s3url, nil
}

// NewS3Reader returns a io.ReadCloser that will read the contents
// of the file pointed to by the uri. URI will be of the form
// s3://bucket-name/path/to/file
func NewS3Reader(uri string) (io.ReadCloser, error) {
	s3url, err := ValidateURI(uri)
	if err != nil {
		return nil, err
	}

	sess, err := session.NewSession()
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create aws session")
	}

	region, err := bucketRegion(sess, s3url.Host)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to determine region of %s", s3url.Host)
	}

	s3client := s3.New(sess, aws.NewConfig().WithRegion(region))
	out, err := s3client.GetObject(&s3.GetObjectInput{
		Bucket: aws.String(s3url.Host),
		Key:    aws.String(ObjectKey(s3url)),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to get %s", uri)
	}
	return out.Body, nil
}

// ObjectKey returns the object key of an s3 url, without the leading slash.
func ObjectKey(s3url *url.URL) string {
	return strings.TrimPrefix(s3url.Path, "/")
}

func bucketRegion(sess *session.Session, bucket string) (string, error) {
	lookup := os.Getenv("AWS_REGION")
	if lookup == "" {
		lookup = defaultRegion
	}
	s3client := s3.New(sess, aws.NewConfig().WithRegion(lookup))

	loc, err := s3client.GetBucketLocation(&s3.GetBucketLocationInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		return "", err
	}
	// buckets in us-east-1 report an empty location constraint
	if loc.LocationConstraint == nil || *loc.LocationConstraint == "" {
		return "us-east-1", nil
	}
	return *loc.LocationConstraint, nil
}

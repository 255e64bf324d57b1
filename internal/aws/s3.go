package aws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vietdv277/sshdash/internal/dataset"
)

const s3Scheme = "s3://"

// objectGetter is the subset of the S3 client used to read datasets
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// IsS3URI reports whether s looks like s3://bucket/key
func IsS3URI(s string) bool {
	return strings.HasPrefix(s, s3Scheme)
}

// ParseS3URI splits s3://bucket/key into its bucket and key
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !IsS3URI(uri) {
		return "", "", fmt.Errorf("not an s3 URI: %q", uri)
	}
	bucket, key, ok := strings.Cut(strings.TrimPrefix(uri, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid s3 URI %q, expected s3://bucket/key", uri)
	}
	return bucket, key, nil
}

// S3Source reads a dataset object from S3
type S3Source struct {
	api    objectGetter
	Bucket string
	Key    string
}

// NewS3Source returns a dataset source for the object at uri
func (c *Client) NewS3Source(uri string) (*S3Source, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	return &S3Source{api: c.S3, Bucket: bucket, Key: key}, nil
}

// Open implements dataset.Source
func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		var noKey *s3types.NoSuchKey
		var noBucket *s3types.NoSuchBucket
		var notFound *s3types.NotFound
		if errors.As(err, &noKey) || errors.As(err, &noBucket) || errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", dataset.ErrFileNotFound, s.Name())
		}
		return nil, fmt.Errorf("failed to get S3 object: %w", err)
	}
	return out.Body, nil
}

// Name implements dataset.Source
func (s *S3Source) Name() string {
	return s3Scheme + s.Bucket + "/" + s.Key
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kaitan-stock/distributed/pkg/objstore/s3"
)

// URI parsing errors
var (
	// ErrInvalidURI indicates the URI could not be parsed.
	ErrInvalidURI = errors.New("invalid URI")

	// ErrUnsupportedBackend indicates the URI scheme is not supported.
	ErrUnsupportedBackend = errors.New("unsupported backend")

	// ErrMissingBucket indicates the URI is missing a bucket name.
	ErrMissingBucket = errors.New("missing bucket name")
)

// ObjectURI represents a parsed object-store URI.
//
// Example URIs:
//   - s3://bucket/key/path.txt
//   - s3://bucket/prefix/
//   - s3://bucket
type ObjectURI struct {
	// Backend is the storage backend (e.g., "s3").
	Backend string

	// Bucket is the bucket name.
	Bucket string

	// Key is the object key or prefix.
	// May be empty for bucket root.
	Key string
}

// String returns the URI in canonical form.
func (u *ObjectURI) String() string {
	if u.Key != "" {
		return fmt.Sprintf("%s://%s/%s", u.Backend, u.Bucket, u.Key)
	}
	return fmt.Sprintf("%s://%s/", u.Backend, u.Bucket)
}

// IsPrefix returns true if the URI represents a prefix (ends with / or is
// the bucket root).
func (u *ObjectURI) IsPrefix() bool {
	return strings.HasSuffix(u.Key, "/") || u.Key == ""
}

// ParseURI parses an object-store URI into its components.
//
// Supported formats:
//   - s3://bucket
//   - s3://bucket/
//   - s3://bucket/key
//   - s3://bucket/prefix/
//
// Returns an error if the URI is malformed or uses an unsupported backend.
func ParseURI(uri string) (*ObjectURI, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: empty URI", ErrInvalidURI)
	}

	schemeEnd := strings.Index(uri, "://")
	if schemeEnd == -1 {
		return nil, fmt.Errorf("%w: missing scheme (expected s3://...)", ErrInvalidURI)
	}

	backend := strings.ToLower(uri[:schemeEnd])
	if backend != "s3" {
		return nil, fmt.Errorf("%w: %s (supported: s3)", ErrUnsupportedBackend, backend)
	}

	remainder := uri[schemeEnd+3:]
	if remainder == "" {
		return nil, fmt.Errorf("%w: in %s", ErrMissingBucket, uri)
	}

	var bucket, key string
	slashIdx := strings.Index(remainder, "/")
	if slashIdx == -1 {
		bucket = remainder
	} else {
		bucket = remainder[:slashIdx]
		key = remainder[slashIdx+1:]
	}

	if bucket == "" {
		return nil, fmt.Errorf("%w: in %s", ErrMissingBucket, uri)
	}

	return &ObjectURI{Backend: backend, Bucket: bucket, Key: key}, nil
}

// newStore builds the S3 store from the effective configuration plus any
// per-command overrides.
func newStore(ctx context.Context, region, endpoint, profile string) (*s3.Store, error) {
	s3cfg := s3.Config{
		Region:         cfg.S3.Region,
		Endpoint:       cfg.S3.Endpoint,
		Profile:        cfg.S3.Profile,
		ForcePathStyle: cfg.S3.ForcePathStyle,
		MaxKeys:        cfg.S3.MaxKeys,
	}
	if region != "" {
		s3cfg.Region = region
	}
	if endpoint != "" {
		s3cfg.Endpoint = endpoint
		s3cfg.ForcePathStyle = true
	}
	if profile != "" {
		s3cfg.Profile = profile
	}
	return s3.New(ctx, s3cfg)
}

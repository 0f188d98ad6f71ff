// Package objstore defines the object-store capability consumed by the
// read-orchestration core.
//
// Implementations provide raw listing pages and whole-object reads.
// Authentication uses SDK default credential chains - backends should not
// implement custom auth logic. Retry and backoff policy also belongs to the
// backend; callers see each failure exactly once.
package objstore

import (
	"context"
	"time"
)

// Store abstracts object storage listing and content retrieval.
//
// Implementations should:
//   - Support pagination via continuation tokens
//   - Surface delimiter grouping natively when the backend supports it
//   - Be safe for concurrent use
type Store interface {
	// List returns one page of raw entries for the bucket.
	// Use ContinuationToken from ListResult for subsequent pages.
	// Page contents are not required to be sorted or deduplicated across
	// pages; the listing engine owns those guarantees.
	List(ctx context.Context, bucket string, opts ListOptions) (*ListResult, error)

	// GetObject returns the entire content of one object.
	// Returns ErrObjectNotFound if the key does not exist at call time,
	// even if it appeared in a prior listing.
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)

	// Close releases any resources held by the store.
	Close() error
}

// ListOptions configures a List operation.
type ListOptions struct {
	// Prefix filters results to keys starting with this value.
	// Empty string lists all objects.
	Prefix string

	// Delimiter groups keys sharing a common segment after Prefix.
	// Empty string disables grouping: every concrete key is returned.
	Delimiter string

	// ContinuationToken resumes listing from a previous ListResult.
	// Empty string starts from the beginning.
	ContinuationToken string

	// MaxKeys limits the number of entries returned per page.
	// Zero uses the backend default (typically 1000).
	MaxKeys int
}

// ListResult contains one page of entries from a List operation.
type ListResult struct {
	// Objects contains the object summaries for this page.
	Objects []ObjectSummary

	// CommonPrefixes are collapsed prefix groups for this page.
	// Only populated when a delimiter was supplied. A group may repeat
	// across pages; deduplication is the listing engine's job.
	CommonPrefixes []string

	// ContinuationToken is used to retrieve the next page.
	// Empty string indicates no more pages.
	ContinuationToken string

	// IsTruncated indicates whether more results are available.
	IsTruncated bool
}

// ObjectSummary is an immutable snapshot of one object's existence at
// listing time.
type ObjectSummary struct {
	// Key is the full object key (path) in the bucket.
	Key string

	// Size is the object size in bytes.
	Size int64

	// ETag is the entity tag, typically an MD5 hash of the object.
	ETag string

	// LastModified is when the object was last modified.
	LastModified time.Time
}

// BackendType identifies an object-store backend.
type BackendType string

const (
	// BackendS3 represents AWS S3 or S3-compatible storage.
	BackendS3 BackendType = "s3"

	// BackendMem represents the in-memory store used for tests and
	// local development.
	BackendMem BackendType = "mem"
)

// String returns the string representation of the backend type.
func (b BackendType) String() string {
	return string(b)
}

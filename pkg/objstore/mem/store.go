// Package mem implements an in-memory objstore backend.
//
// The store mirrors S3 listing semantics (lexicographic pages, delimiter
// grouping, continuation tokens) closely enough to exercise the listing
// engine and the read fan-out without a network. It backs package tests and
// local development.
package mem

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kaitan-stock/distributed/pkg/objstore"
)

// Store implements objstore.Store backed by process memory.
//
// Store is safe for concurrent use. Buckets must be created explicitly;
// listing or reading an absent bucket fails with ErrBucketNotFound, matching
// real backends.
type Store struct {
	mu      sync.RWMutex
	buckets map[string]map[string]object
	maxKeys int

	// DenyBuckets simulates permission failures: any operation against a
	// bucket in this set fails with ErrAccessDenied.
	DenyBuckets map[string]bool
}

type object struct {
	data     []byte
	modified time.Time
}

var _ objstore.Store = (*Store)(nil)

// Config configures the in-memory store.
type Config struct {
	// MaxKeys is the page size for List operations. Zero means 1000.
	MaxKeys int
}

// New creates an empty in-memory store.
func New(cfg Config) *Store {
	maxKeys := cfg.MaxKeys
	if maxKeys <= 0 {
		maxKeys = 1000
	}
	return &Store{
		buckets:     make(map[string]map[string]object),
		maxKeys:     maxKeys,
		DenyBuckets: make(map[string]bool),
	}
}

// CreateBucket creates an empty bucket. Creating an existing bucket is a no-op.
func (s *Store) CreateBucket(bucket string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buckets[bucket]; !ok {
		s.buckets[bucket] = make(map[string]object)
	}
}

// Put stores an object, creating the bucket if needed.
func (s *Store) Put(bucket, key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buckets[bucket]
	if !ok {
		b = make(map[string]object)
		s.buckets[bucket] = b
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	b[key] = object{data: cp, modified: time.Now().UTC()}
}

// Delete removes an object. Deleting an absent key is a no-op, as in S3.
func (s *Store) Delete(bucket, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b, ok := s.buckets[bucket]; ok {
		delete(b, key)
	}
}

// List returns one page of entries in lexicographic key order.
func (s *Store) List(ctx context.Context, bucket string, opts objstore.ListOptions) (*objstore.ListResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.DenyBuckets[bucket] {
		return nil, s.wrapError("List", bucket, "", objstore.ErrAccessDenied)
	}
	b, ok := s.buckets[bucket]
	if !ok {
		return nil, s.wrapError("List", bucket, "", objstore.ErrBucketNotFound)
	}

	maxKeys := opts.MaxKeys
	if maxKeys <= 0 || maxKeys > s.maxKeys {
		maxKeys = s.maxKeys
	}

	entries := collectEntries(b, opts.Prefix, opts.Delimiter)

	start := 0
	if opts.ContinuationToken != "" {
		// Resume strictly after the last returned entry.
		start = sort.Search(len(entries), func(i int) bool {
			return entries[i].key > opts.ContinuationToken
		})
	}

	end := start + maxKeys
	if end > len(entries) {
		end = len(entries)
	}

	res := &objstore.ListResult{}
	for _, e := range entries[start:end] {
		if e.group {
			res.CommonPrefixes = append(res.CommonPrefixes, e.key)
			continue
		}
		res.Objects = append(res.Objects, e.summary)
	}

	if end < len(entries) {
		res.IsTruncated = true
		res.ContinuationToken = entries[end-1].key
	}

	return res, nil
}

// GetObject returns a copy of the stored content.
func (s *Store) GetObject(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.DenyBuckets[bucket] {
		return nil, s.wrapError("GetObject", bucket, key, objstore.ErrAccessDenied)
	}
	b, ok := s.buckets[bucket]
	if !ok {
		return nil, s.wrapError("GetObject", bucket, key, objstore.ErrBucketNotFound)
	}
	obj, ok := b[key]
	if !ok {
		return nil, s.wrapError("GetObject", bucket, key, objstore.ErrObjectNotFound)
	}

	cp := make([]byte, len(obj.data))
	copy(cp, obj.data)
	return cp, nil
}

// Close releases nothing; it satisfies the interface.
func (s *Store) Close() error {
	return nil
}

func (s *Store) wrapError(op, bucket, key string, err error) error {
	return &objstore.StoreError{
		Op:      op,
		Backend: objstore.BackendMem,
		Bucket:  bucket,
		Key:     key,
		Err:     err,
	}
}

// entry is one listable item: a concrete object or a collapsed group.
type entry struct {
	key     string
	group   bool
	summary objstore.ObjectSummary
}

// collectEntries applies prefix filtering and delimiter grouping over the
// bucket contents and returns the merged entries in lexicographic order.
func collectEntries(b map[string]object, prefix, delimiter string) []entry {
	var entries []entry
	groups := make(map[string]bool)

	for key, obj := range b {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		if delimiter != "" {
			remainder := key[len(prefix):]
			if idx := strings.Index(remainder, delimiter); idx >= 0 {
				group := prefix + remainder[:idx+len(delimiter)]
				if !groups[group] {
					groups[group] = true
					entries = append(entries, entry{key: group, group: true})
				}
				continue
			}
		}

		entries = append(entries, entry{
			key: key,
			summary: objstore.ObjectSummary{
				Key:          key,
				Size:         int64(len(obj.data)),
				LastModified: obj.modified,
			},
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].key < entries[j].key })
	return entries
}

// Package listing produces ordered, deduplicated views of an object-store
// namespace.
//
// The engine walks every page of a store listing and merges the raw entries
// into a single slice sorted lexicographically by key. That ordering is the
// contract downstream components (and tests) rely on: task fan-out order
// equals listing order.
package listing

import (
	"context"
	"sort"
	"time"

	"github.com/kaitan-stock/distributed/pkg/objstore"
)

// Entry is one listed item: a concrete object summary or, in delimiter
// mode, a synthetic group collapsing every key that shares a common prefix
// segment.
type Entry struct {
	// Key is the object key, or for groups the collapsed prefix including
	// the trailing delimiter.
	Key string

	// Size is the object size in bytes. Zero for groups.
	Size int64

	// ETag is the entity tag from the store. Empty for groups.
	ETag string

	// LastModified is when the object was last modified. Zero for groups.
	LastModified time.Time

	// IsGroup reports whether this entry is a collapsed common prefix
	// rather than a concrete object.
	IsGroup bool
}

// List enumerates the bucket under prefix and returns all matching entries
// sorted lexicographically by key.
//
// With an empty delimiter every concrete key starting with prefix is
// returned, one entry per key. With a delimiter, keys whose remainder after
// prefix contains the delimiter collapse into one group entry per distinct
// segment; keys with no delimiter in the remainder stay concrete entries.
// A concrete key exactly equal to the prefix has an empty remainder and is
// therefore returned as a plain entry, never a group.
//
// Pagination is transparent: every page is fetched before returning, and
// groups repeated across pages are deduplicated. Store failures abort the
// listing and surface unchanged; there is no partial result.
func List(ctx context.Context, st objstore.Store, bucket, prefix, delimiter string) ([]Entry, error) {
	var (
		entries []Entry
		seen    map[string]bool
		token   string
	)
	if delimiter != "" {
		seen = make(map[string]bool)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := st.List(ctx, bucket, objstore.ListOptions{
			Prefix:            prefix,
			Delimiter:         delimiter,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}

		for _, obj := range res.Objects {
			entries = append(entries, Entry{
				Key:          obj.Key,
				Size:         obj.Size,
				ETag:         obj.ETag,
				LastModified: obj.LastModified,
			})
		}

		for _, group := range res.CommonPrefixes {
			if seen[group] {
				continue
			}
			seen[group] = true
			entries = append(entries, Entry{Key: group, IsGroup: true})
		}

		if !res.IsTruncated || res.ContinuationToken == "" {
			break
		}
		token = res.ContinuationToken
	}

	// Backends return each page sorted, but groups and objects interleave
	// across pages. Sorting the merged slice restores the contract.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	return entries, nil
}

// Objects returns only the concrete (non-group) entries, in order.
//
// This is the caller's view when collapsed groups are navigation aids
// rather than results: a root listing of tmp/file1, top-level,
// tmp/test/file1, tmp/test/file2 with delimiter "/" has one concrete
// entry, top-level, with everything under tmp/ folded into a group.
func Objects(entries []Entry) []Entry {
	objects := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.IsGroup {
			objects = append(objects, e)
		}
	}
	return objects
}

// Keys returns the keys of the given entries in order.
func Keys(entries []Entry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

// Package content reads object bytes from a store.
package content

import (
	"context"

	"github.com/kaitan-stock/distributed/pkg/objstore"
)

// ReadKey fetches the entire content of one key.
//
// Behavior:
// - Single remote fetch, no partial reads, no streaming.
// - Listing and reading are not transactionally linked: a key seen in a
//   prior listing may be gone by read time, which fails with
//   ErrObjectNotFound.
// - Store-level errors surface unchanged; no retries at this layer.
func ReadKey(ctx context.Context, st objstore.Store, bucket, key string) ([]byte, error) {
	return st.GetObject(ctx, bucket, key)
}

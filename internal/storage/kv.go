package storage

import "context"

// TransactionsKey is the fixed key under which the whole collection is stored.
const TransactionsKey = "transactions"

// KV is a minimal key-value backend holding opaque blobs.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set overwrites the value for key.
	Set(ctx context.Context, key string, value []byte) error
}

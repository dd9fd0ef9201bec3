// Package repository declares the persistence contract shared by the storage
// backends. The cellar keeps its whole collection under a single key.
package repository

import "context"

// KeyValue is a durable string store.
type KeyValue interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

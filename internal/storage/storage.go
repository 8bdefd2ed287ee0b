// Package storage defines the blob storage interface used for staging
// audio and retrieving recognition results.
package storage

import "context"

// ObjectStore is the durable blob storage the pipeline stages audio to
// and reads result artifacts from. All durable state lives behind this
// interface; the server itself holds nothing between requests.
type ObjectStore interface {
	// Upload writes data under key. Single attempt, no retry.
	Upload(ctx context.Context, key string, data []byte) error

	// List returns the keys of all objects under prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Download returns the content of the object at key.
	Download(ctx context.Context, key string) ([]byte, error)

	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error

	// URI returns the provider URI for key (e.g. gs://bucket/key),
	// usable by the recognition service to read the object by reference.
	URI(key string) string
}

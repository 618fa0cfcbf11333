package filestorage

import (
	"context"
	"errors"
)

// ErrUnsupportedContentType is returned for uploads that are not images.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// StoredObject identifies a stored blob
type StoredObject struct {
	Bucket string
	Key    string
	ETag   string
}

// ObjectStore keeps binary objects such as avatars and post pictures
type ObjectStore interface {
	// Put stores data under a generated key below prefix
	Put(ctx context.Context, prefix string, data []byte, contentType string) (StoredObject, error)

	// URL returns where clients can fetch the object, empty when unknown
	URL(bucket, key string) string

	// Delete removes an object; deleting a missing object is not an error
	Delete(ctx context.Context, bucket, key string) error
}

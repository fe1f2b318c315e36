package adapter

import (
	"context"

	"autos-admin/internal/domain/model"
)

// ObjectStorage is the port for the public media bucket.
type ObjectStorage interface {
	// CreateSignedUpload issues a time-limited upload target for name.
	CreateSignedUpload(ctx context.Context, name string) (*model.SignedUpload, error)
	// Upload puts data at a previously signed target.
	Upload(ctx context.Context, target *model.SignedUpload, contentType string, data []byte) error
	PublicURL(name string) string
	Remove(ctx context.Context, names ...string) error
}

// ImageCompressor re-encodes a still image for the web.
type ImageCompressor interface {
	// Compress returns the encoded bytes and their content type.
	Compress(data []byte) ([]byte, string, error)
}

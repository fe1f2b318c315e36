package storage

import (
	"context"
	"errors"

	"autos-admin/internal/domain/model"
	"autos-admin/internal/domain/ports/adapter"
)

var _ adapter.ObjectStorage = (*NoopStorage)(nil)

var errStorageDisabled = errors.New("storage is not configured")

// NoopStorage is wired in dev mode without storage credentials.
type NoopStorage struct{}

func (NoopStorage) CreateSignedUpload(ctx context.Context, name string) (*model.SignedUpload, error) {
	return nil, errStorageDisabled
}

func (NoopStorage) Upload(ctx context.Context, target *model.SignedUpload, contentType string, data []byte) error {
	return errStorageDisabled
}

func (NoopStorage) PublicURL(name string) string { return "" }

func (NoopStorage) Remove(ctx context.Context, names ...string) error { return errStorageDisabled }

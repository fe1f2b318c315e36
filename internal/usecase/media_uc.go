// File: internal/usecase/media_uc.go
package usecase

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"autos-admin/internal/domain"
	"autos-admin/internal/domain/model"
	"autos-admin/internal/domain/ports/adapter"
	"autos-admin/internal/infra/logging"
	"autos-admin/internal/infra/metrics"
)

// Compile-time check
var _ MediaUseCase = (*mediaUC)(nil)

type MediaUseCase interface {
	// Upload stores files one after another; a failed file does not undo earlier ones.
	Upload(ctx context.Context, files []model.UploadFile) (*model.UploadResult, error)
	// SignedUpload issues a direct-upload target for a browser-side upload.
	SignedUpload(ctx context.Context, filename string) (*model.SignedUpload, error)
	Remove(ctx context.Context, filename string) error
}

type mediaUC struct {
	storage    adapter.ObjectStorage
	compressor adapter.ImageCompressor
	now        func() time.Time
	log        *zerolog.Logger
}

func NewMediaUseCase(storage adapter.ObjectStorage, compressor adapter.ImageCompressor, logger *zerolog.Logger) *mediaUC {
	return &mediaUC{storage: storage, compressor: compressor, now: time.Now, log: logger}
}

func (u *mediaUC) Upload(ctx context.Context, files []model.UploadFile) (*model.UploadResult, error) {
	defer logging.TraceDuration(u.log, "MediaUC.Upload")()

	if len(files) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	res := &model.UploadResult{Uploaded: []model.UploadedMedia{}, Failed: []model.FailedUpload{}}
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			logging.With(ctx, u.log).Warn().Err(err).Int("skipped", len(files)-i).Msg("media batch interrupted")
			for _, rest := range files[i:] {
				res.Failed = append(res.Failed, model.FailedUpload{Name: rest.Name, Error: err.Error()})
			}
			break
		}
		m, err := u.uploadOne(ctx, f)
		if err != nil {
			metrics.ObserveMediaUpload(mediaKind(f.ContentType), "error", 0)
			logging.With(ctx, u.log).Warn().Err(err).Str("file", f.Name).Msg("media upload failed")
			res.Failed = append(res.Failed, model.FailedUpload{Name: f.Name, Error: err.Error()})
			continue
		}
		metrics.ObserveMediaUpload(mediaKind(m.ContentType), "ok", m.Size)
		res.Uploaded = append(res.Uploaded, *m)
	}
	return res, nil
}

func (u *mediaUC) uploadOne(ctx context.Context, f model.UploadFile) (*model.UploadedMedia, error) {
	data, ct, name := f.Data, f.ContentType, f.Name
	if len(data) == 0 {
		return nil, domain.ErrInvalidArgument
	}
	if ct == "" {
		ct = "application/octet-stream"
	}
	if model.IsImageContentType(ct) && u.compressor != nil {
		out, outCT, err := u.compressor.Compress(data)
		if err == nil {
			if outCT != ct {
				name = strings.TrimSuffix(name, path.Ext(name)) + ".jpg"
			}
			data, ct = out, outCT
		} else {
			u.log.Debug().Err(err).Str("file", f.Name).Msg("image kept as is")
		}
	}

	target, err := u.storage.CreateSignedUpload(ctx, model.UploadName(u.now(), name))
	if err != nil {
		return nil, err
	}
	if err := u.storage.Upload(ctx, target, ct, data); err != nil {
		return nil, err
	}
	url := target.PublicURL
	if url == "" {
		url = u.storage.PublicURL(target.Path)
	}
	return &model.UploadedMedia{
		Name:         model.FileNameFromURL(target.Path),
		URL:          url,
		ContentType:  ct,
		Size:         len(data),
		OriginalSize: len(f.Data),
	}, nil
}

func (u *mediaUC) SignedUpload(ctx context.Context, filename string) (*model.SignedUpload, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.storage.CreateSignedUpload(ctx, model.UploadName(u.now(), filename))
}

func (u *mediaUC) Remove(ctx context.Context, filename string) error {
	if filename == "" || filename != path.Base(filename) || strings.HasPrefix(filename, ".") {
		return domain.ErrInvalidArgument
	}
	return u.storage.Remove(ctx, filename)
}

func mediaKind(ct string) string {
	switch {
	case model.IsImageContentType(ct):
		return "image"
	case strings.HasPrefix(strings.ToLower(ct), "video/"):
		return "video"
	}
	return "other"
}

// File: internal/infra/adapters/storage/supabase_storage.go
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"autos-admin/internal/config"
	"autos-admin/internal/domain"
	"autos-admin/internal/domain/model"
	"autos-admin/internal/domain/ports/adapter"
)

var _ adapter.ObjectStorage = (*SupabaseStorage)(nil)

// SupabaseStorage talks to the hosted storage REST API (/storage/v1) of one bucket.
type SupabaseStorage struct {
	baseURL    string // e.g. https://<project>.supabase.co
	serviceKey string
	bucket     string
	client     *http.Client
}

func NewSupabaseStorage(cfg config.StorageConfig) (*SupabaseStorage, error) {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil, errors.New("storage url and service key are required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, fmt.Errorf("invalid storage url: %w", err)
	}
	return &SupabaseStorage{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		bucket:     cfg.Bucket,
		client:     &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (s *SupabaseStorage) endpoint(path string) string {
	return s.baseURL + "/storage/v1" + path
}

func (s *SupabaseStorage) objectPath(name string) string {
	return url.PathEscape(s.bucket) + "/" + url.PathEscape(name)
}

func (s *SupabaseStorage) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("apikey", s.serviceKey)
}

// CreateSignedUpload calls POST /object/upload/sign/{bucket}/{name}.
func (s *SupabaseStorage) CreateSignedUpload(ctx context.Context, name string) (*model.SignedUpload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("/object/upload/sign/"+s.objectPath(name)), bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)

	var out struct {
		URL string `json:"url"`
	}
	if err := s.do(req, &out); err != nil {
		return nil, fmt.Errorf("sign upload: %w", err)
	}
	if out.URL == "" {
		return nil, fmt.Errorf("sign upload: %w: empty url", domain.ErrOperationFailed)
	}
	signed := out.URL
	if !strings.HasPrefix(signed, "http") {
		signed = s.endpoint(signed)
	}
	return &model.SignedUpload{SignedURL: signed, Path: name, PublicURL: s.PublicURL(name)}, nil
}

// Upload PUTs the object body to the signed target.
func (s *SupabaseStorage) Upload(ctx context.Context, target *model.SignedUpload, contentType string, data []byte) error {
	if target == nil || target.SignedURL == "" {
		return domain.ErrInvalidArgument
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target.SignedURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")
	req.Header.Set("cache-control", "max-age=3600")
	if err := s.do(req, nil); err != nil {
		return fmt.Errorf("upload %s: %w", target.Path, err)
	}
	return nil
}

func (s *SupabaseStorage) PublicURL(name string) string {
	return s.endpoint("/object/public/" + s.objectPath(name))
}

// Remove calls DELETE /object/{bucket} with the object names as prefixes.
func (s *SupabaseStorage) Remove(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	body, _ := json.Marshal(map[string][]string{"prefixes": names})
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.endpoint("/object/"+url.PathEscape(s.bucket)), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	s.authorize(req)
	if err := s.do(req, nil); err != nil {
		return fmt.Errorf("remove %s: %w", strings.Join(names, ","), err)
	}
	return nil
}

func (s *SupabaseStorage) do(req *http.Request, out any) error {
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, strings.TrimSpace(string(msg)))
		}
		return fmt.Errorf("%w: status %d: %s", domain.ErrOperationFailed, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

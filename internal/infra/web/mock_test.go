//go:build !integration

package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"autos-admin/internal/config"
	"autos-admin/internal/domain"
	"autos-admin/internal/domain/model"
	"autos-admin/internal/domain/ports/adapter"
	"autos-admin/internal/infra/i18n"
	"autos-admin/internal/usecase"
)

type mockCouponUC struct {
	LookupFunc     func(ctx context.Context, code string) (*model.CouponLookup, error)
	ListFunc       func(ctx context.Context, q model.CouponQuery) ([]*model.CouponWithLead, error)
	RedeemFunc     func(ctx context.Context, code string) (*model.Coupon, error)
	ValidateFunc   func(ctx context.Context, code string, notes *string) (*model.Coupon, error)
	UnvalidateFunc func(ctx context.Context, code string) (*model.Coupon, error)
}

var _ usecase.CouponUseCase = (*mockCouponUC)(nil)

func (m *mockCouponUC) Lookup(ctx context.Context, code string) (*model.CouponLookup, error) {
	return m.LookupFunc(ctx, code)
}
func (m *mockCouponUC) List(ctx context.Context, q model.CouponQuery) ([]*model.CouponWithLead, error) {
	return m.ListFunc(ctx, q)
}
func (m *mockCouponUC) Redeem(ctx context.Context, code string) (*model.Coupon, error) {
	return m.RedeemFunc(ctx, code)
}
func (m *mockCouponUC) Validate(ctx context.Context, code string, notes *string) (*model.Coupon, error) {
	return m.ValidateFunc(ctx, code, notes)
}
func (m *mockCouponUC) Unvalidate(ctx context.Context, code string) (*model.Coupon, error) {
	return m.UnvalidateFunc(ctx, code)
}

type mockDrawUC struct {
	ParticipantsFunc func(ctx context.Context, month string) ([]*model.Participant, error)
	PickFunc         func(ctx context.Context, month string) (*model.Participant, error)
	ConfirmFunc      func(ctx context.Context, month, code string) (*model.Coupon, error)
	WinnerFunc       func(ctx context.Context, month string) (*model.CouponWithLead, error)
}

var _ usecase.DrawUseCase = (*mockDrawUC)(nil)

func (m *mockDrawUC) Participants(ctx context.Context, month string) ([]*model.Participant, error) {
	return m.ParticipantsFunc(ctx, month)
}
func (m *mockDrawUC) Pick(ctx context.Context, month string) (*model.Participant, error) {
	return m.PickFunc(ctx, month)
}
func (m *mockDrawUC) Confirm(ctx context.Context, month, code string) (*model.Coupon, error) {
	return m.ConfirmFunc(ctx, month, code)
}
func (m *mockDrawUC) Winner(ctx context.Context, month string) (*model.CouponWithLead, error) {
	return m.WinnerFunc(ctx, month)
}

type mockInventoryUC struct {
	autos    map[int64]*model.Auto
	nextID   int64
	orphaned []string
}

var _ usecase.InventoryUseCase = (*mockInventoryUC)(nil)

func newMockInventoryUC() *mockInventoryUC {
	return &mockInventoryUC{autos: map[int64]*model.Auto{}, nextID: 1}
}

func (m *mockInventoryUC) List(ctx context.Context) ([]*model.Auto, error) {
	out := []*model.Auto{}
	for _, a := range m.autos {
		out = append(out, a)
	}
	return out, nil
}
func (m *mockInventoryUC) Get(ctx context.Context, id int64) (*model.Auto, error) {
	a, ok := m.autos[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}
func (m *mockInventoryUC) Create(ctx context.Context, a *model.Auto) (*model.Auto, error) {
	a.Normalize()
	if err := a.Validate(); err != nil {
		return nil, err
	}
	a.ID = m.nextID
	m.nextID++
	m.autos[a.ID] = a
	return a, nil
}
func (m *mockInventoryUC) Update(ctx context.Context, id int64, patch model.AutoPatch) (*model.Auto, []string, error) {
	a, ok := m.autos[id]
	if !ok {
		return nil, nil, domain.ErrNotFound
	}
	cp := *a
	dropped := patch.Apply(&cp)
	cp.Normalize()
	if err := cp.Validate(); err != nil {
		return nil, nil, err
	}
	m.autos[id] = &cp
	return &cp, dropped, nil
}
func (m *mockInventoryUC) Delete(ctx context.Context, id int64) ([]string, error) {
	if _, ok := m.autos[id]; !ok {
		return nil, domain.ErrNotFound
	}
	delete(m.autos, id)
	return m.orphaned, nil
}

type mockMediaUC struct {
	files   []model.UploadFile
	removed []string
}

var _ usecase.MediaUseCase = (*mockMediaUC)(nil)

func (m *mockMediaUC) Upload(ctx context.Context, files []model.UploadFile) (*model.UploadResult, error) {
	m.files = append(m.files, files...)
	res := &model.UploadResult{Uploaded: []model.UploadedMedia{}, Failed: []model.FailedUpload{}}
	for _, f := range files {
		res.Uploaded = append(res.Uploaded, model.UploadedMedia{Name: f.Name, URL: "https://cdn.test/" + f.Name, ContentType: f.ContentType, Size: len(f.Data)})
	}
	return res, nil
}
func (m *mockMediaUC) SignedUpload(ctx context.Context, filename string) (*model.SignedUpload, error) {
	return &model.SignedUpload{SignedURL: "https://cdn.test/sign/" + filename, Path: filename, PublicURL: "https://cdn.test/" + filename}, nil
}
func (m *mockMediaUC) Remove(ctx context.Context, filename string) error {
	if filename == "" {
		return domain.ErrInvalidArgument
	}
	m.removed = append(m.removed, filename)
	return nil
}

type mockAuthUC struct {
	operators map[string]string // email -> password
}

var _ usecase.AuthUseCase = (*mockAuthUC)(nil)

func (m *mockAuthUC) Login(ctx context.Context, email, password, clientKey string) (*adapter.Identity, error) {
	if email == "" {
		return nil, domain.ErrInvalidArgument
	}
	if pw, ok := m.operators[email]; !ok || pw != password {
		return nil, domain.ErrUnauthenticated
	}
	return &adapter.Identity{UserID: "u-" + email, Email: email}, nil
}

type testEnv struct {
	coupons   *mockCouponUC
	draws     *mockDrawUC
	inventory *mockInventoryUC
	media     *mockMediaUC
	sessions  *AuthManager
	handler   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "es")
	if err != nil {
		t.Fatalf("translator: %v", err)
	}
	logger := zerolog.Nop()
	env := &testEnv{
		coupons:   &mockCouponUC{},
		draws:     &mockDrawUC{},
		inventory: newMockInventoryUC(),
		media:     &mockMediaUC{},
		sessions:  NewAuthManager(config.SessionConfig{Secret: "test-secret", TTL: time.Hour}, "machine-key"),
	}
	srv := NewServer(Deps{
		Coupons:   env.coupons,
		Draws:     env.draws,
		Inventory: env.inventory,
		Media:     env.media,
		Auth:      &mockAuthUC{operators: map[string]string{"ops@example.com": "secret"}},
		Sessions:  env.sessions,
		Messages:  tr,
	}, Options{MaxUploadBytes: 1 << 20}, &logger)
	env.handler = srv.Routes()
	return env
}

// token mints a session for ops@example.com.
func (e *testEnv) token(t *testing.T) string {
	t.Helper()
	tok, err := e.sessions.Mint(httptest.NewRecorder(), &adapter.Identity{UserID: "u-1", Email: "ops@example.com"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return tok
}

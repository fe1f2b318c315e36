//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"autos-admin/internal/domain"
	"autos-admin/internal/domain/model"
	"autos-admin/internal/domain/ports/adapter"
	"autos-admin/internal/domain/ports/repository"
)

// -----------------------------
// Utilities: tiny helpers
// -----------------------------

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

// =============================
// Repositories
// =============================

// ---- In-memory CouponRepository ----

// MockCouponRepo applies the same guards the SQL repository encodes in its WHERE clauses.
type MockCouponRepo struct {
	mu      sync.Mutex
	coupons map[string]*model.Coupon
	leads   map[string]*model.Lead
	writes  int

	ListFunc func(ctx context.Context, tx repository.Tx, q model.CouponQuery) ([]*model.CouponWithLead, error)
	FindErr  error
}

var _ repository.CouponRepository = (*MockCouponRepo)(nil)

func NewMockCouponRepo() *MockCouponRepo {
	return &MockCouponRepo{coupons: map[string]*model.Coupon{}, leads: map[string]*model.Lead{}}
}

// Put seeds a coupon with an owning lead.
func (m *MockCouponRepo) Put(c model.Coupon) *model.Coupon {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.LeadID == "" {
		c.LeadID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = model.CouponIssued
	}
	if _, ok := m.leads[c.LeadID]; !ok {
		m.leads[c.LeadID] = &model.Lead{ID: c.LeadID, FullName: "Lead " + c.CouponCode, Email: strings.ToLower(c.CouponCode) + "@example.com"}
	}
	cc := c
	m.coupons[c.CouponCode] = &cc
	return &cc
}

func (m *MockCouponRepo) Get(code string) model.Coupon {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.coupons[code]
}

func (m *MockCouponRepo) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *MockCouponRepo) withLead(c *model.Coupon) *model.CouponWithLead {
	cc := *c
	var l *model.Lead
	if lead, ok := m.leads[c.LeadID]; ok {
		lc := *lead
		l = &lc
	}
	return &model.CouponWithLead{Coupon: cc, Lead: l}
}

func (m *MockCouponRepo) Issue(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.coupons[c.CouponCode]; ok {
		return domain.ErrAlreadyExists
	}
	cc := *c
	m.coupons[c.CouponCode] = &cc
	return nil
}

func (m *MockCouponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.CouponWithLead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	c, ok := m.coupons[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return m.withLead(c), nil
}

func (m *MockCouponRepo) List(ctx context.Context, tx repository.Tx, q model.CouponQuery) ([]*model.CouponWithLead, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tx, q)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.CouponWithLead{}
	for _, c := range m.coupons {
		out = append(out, m.withLead(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *MockCouponRepo) Redeem(ctx context.Context, tx repository.Tx, code, operator string, at time.Time) (*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[code]
	if !ok || c.Status != model.CouponIssued || c.Validated {
		return nil, domain.ErrNotFound
	}
	m.writes++
	c.Status = model.CouponRedeemed
	c.RedeemedAt = timePtr(at)
	c.Validated = true
	c.ValidatedAt = timePtr(at)
	c.ValidatedBy = strPtr(operator)
	cc := *c
	return &cc, nil
}

func (m *MockCouponRepo) Validate(ctx context.Context, tx repository.Tx, code, operator string, notes *string, at time.Time) (*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[code]
	if !ok || c.Status == model.CouponVoid {
		return nil, domain.ErrNotFound
	}
	m.writes++
	c.Status = model.CouponRedeemed
	if c.RedeemedAt == nil {
		c.RedeemedAt = timePtr(at)
	}
	c.Validated = true
	c.ValidatedAt = timePtr(at)
	c.ValidatedBy = strPtr(operator)
	if notes != nil {
		c.Notes = strPtr(*notes)
	}
	cc := *c
	return &cc, nil
}

func (m *MockCouponRepo) Unvalidate(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[code]
	if !ok || c.Status == model.CouponVoid || c.Won {
		return nil, domain.ErrNotFound
	}
	m.writes++
	c.Status = model.CouponIssued
	c.RedeemedAt = nil
	c.Validated = false
	c.ValidatedAt = nil
	c.ValidatedBy = nil
	cc := *c
	return &cc, nil
}

func (m *MockCouponRepo) Participants(ctx context.Context, tx repository.Tx, from, to time.Time) ([]*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*model.Participant{}
	for _, c := range m.coupons {
		if !c.Validated || c.ValidatedAt == nil {
			continue
		}
		if c.ValidatedAt.Before(from) || !c.ValidatedAt.Before(to) {
			continue
		}
		out = append(out, &model.Participant{CouponCode: c.CouponCode, ValidatedAt: *c.ValidatedAt, Lead: m.withLead(c).Lead})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CouponCode < out[j].CouponCode })
	return out, nil
}

func (m *MockCouponRepo) ConfirmWinner(ctx context.Context, tx repository.Tx, code, month string, from, to, at time.Time) (*model.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.coupons {
		if c.WonMonth != nil && *c.WonMonth == month {
			return nil, domain.ErrNotFound
		}
	}
	c, ok := m.coupons[code]
	if !ok || !c.Validated || c.ValidatedAt == nil || c.WonMonth != nil ||
		c.ValidatedAt.Before(from) || !c.ValidatedAt.Before(to) {
		return nil, domain.ErrNotFound
	}
	m.writes++
	c.Won = true
	c.WonAt = timePtr(at)
	c.WonMonth = strPtr(month)
	cc := *c
	return &cc, nil
}

func (m *MockCouponRepo) FindWinner(ctx context.Context, tx repository.Tx, month string) (*model.CouponWithLead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.coupons {
		if c.WonMonth != nil && *c.WonMonth == month {
			return m.withLead(c), nil
		}
	}
	return nil, domain.ErrNotFound
}

// ---- In-memory AutoRepository ----

type MockAutoRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*model.Auto
	calls  []string

	UpdateErr error
	DeleteErr error
}

var _ repository.AutoRepository = (*MockAutoRepo)(nil)

func NewMockAutoRepo() *MockAutoRepo {
	return &MockAutoRepo{rows: map[int64]*model.Auto{}}
}

func (m *MockAutoRepo) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func cloneAuto(a *model.Auto) *model.Auto {
	c := *a
	c.Imagenes = append([]string{}, a.Imagenes...)
	return &c
}

func (m *MockAutoRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Auto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "list")
	out := make([]*model.Auto, 0, len(m.rows))
	for _, a := range m.rows {
		out = append(out, cloneAuto(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *MockAutoRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Auto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "find")
	a, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneAuto(a), nil
}

func (m *MockAutoRepo) Create(ctx context.Context, tx repository.Tx, a *model.Auto) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "create")
	m.nextID++
	a.ID = m.nextID
	m.rows[a.ID] = cloneAuto(a)
	return nil
}

func (m *MockAutoRepo) Update(ctx context.Context, tx repository.Tx, a *model.Auto) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "update")
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	if _, ok := m.rows[a.ID]; !ok {
		return domain.ErrNotFound
	}
	m.rows[a.ID] = cloneAuto(a)
	return nil
}

func (m *MockAutoRepo) Delete(ctx context.Context, tx repository.Tx, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "delete")
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

// ---- Mock TxManager ----

type MockTxManager struct {
	WithTxFunc func(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error
}

func NewMockTxManager() *MockTxManager {
	return &MockTxManager{}
}

var _ repository.TransactionManager = (*MockTxManager)(nil)

// WithTx runs fn immediately with NoTX unless WithTxFunc is set.
func (m *MockTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	if m.WithTxFunc != nil {
		return m.WithTxFunc(ctx, txOpt, fn)
	}
	return fn(ctx, repository.NoTX)
}

// =============================
// Adapters
// =============================

// ---- Mock ObjectStorage ----

type MockStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	removed []string
	signed  []string
	FailOn  map[string]error // object name -> error on Remove/Upload
	SignErr error
	BaseURL string
	OnPut   func(name string) // called after each stored upload
}

var _ adapter.ObjectStorage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		objects: map[string][]byte{},
		types:   map[string]string{},
		FailOn:  map[string]error{},
		BaseURL: "https://cdn.test/autos-fotos/",
	}
}

func (s *MockStorage) CreateSignedUpload(ctx context.Context, name string) (*model.SignedUpload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SignErr != nil {
		return nil, s.SignErr
	}
	s.signed = append(s.signed, name)
	return &model.SignedUpload{SignedURL: "https://sign.test/" + name + "?token=t", Path: name, PublicURL: s.BaseURL + name}, nil
}

func (s *MockStorage) Upload(ctx context.Context, target *model.SignedUpload, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for frag, err := range s.FailOn {
		if strings.Contains(target.Path, frag) {
			return err
		}
	}
	s.objects[target.Path] = append([]byte(nil), data...)
	s.types[target.Path] = contentType
	if s.OnPut != nil {
		s.OnPut(target.Path)
	}
	return nil
}

func (s *MockStorage) PublicURL(name string) string { return s.BaseURL + name }

func (s *MockStorage) Remove(ctx context.Context, names ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, n := range names {
		s.removed = append(s.removed, n)
		if err, ok := s.FailOn[n]; ok {
			errs = append(errs, err)
			continue
		}
		delete(s.objects, n)
	}
	return errors.Join(errs...)
}

func (s *MockStorage) Removed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.removed...)
}

// ---- Mock ImageCompressor ----

type MockCompressor struct {
	Err   error
	calls int
}

func (c *MockCompressor) Compress(data []byte) ([]byte, string, error) {
	c.calls++
	if c.Err != nil {
		return nil, "", c.Err
	}
	half := len(data) / 2
	if half == 0 {
		half = 1
	}
	return data[:half], "image/jpeg", nil
}

// ---- Mock IdentityProvider ----

type MockIdentity struct {
	Users map[string]string // email -> password
	Err   error
}

func (m *MockIdentity) SignInWithPassword(ctx context.Context, email, password string) (*adapter.Identity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if pw, ok := m.Users[email]; ok && pw == password {
		return &adapter.Identity{UserID: "uid-" + email, Email: email}, nil
	}
	return nil, domain.ErrUnauthenticated
}

// ---- Mock RateLimiter ----

type MockLimiter struct {
	mu     sync.Mutex
	counts map[string]int
	Err    error
}

func NewMockLimiter() *MockLimiter { return &MockLimiter{counts: map[string]int{}} }

func (l *MockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return false, l.Err
	}
	l.counts[key]++
	return l.counts[key] <= limit, nil
}

// ---- In-memory Locker ----

type MockLocker struct {
	mu    sync.Mutex
	held  map[string]string
	ErrOn map[string]error
}

var _ adapter.Locker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker {
	return &MockLocker{held: map[string]string{}, ErrOn: map[string]error{}}
}

func (l *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err, bad := l.ErrOn[key]; bad {
		return "", err
	}
	if tok, ok := l.held[key]; ok && tok != "" {
		return "", domain.ErrDrawInProgress
	}
	tok := uuid.NewString()
	l.held[key] = tok
	return tok, nil
}

func (l *MockLocker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
		return nil
	}
	return errors.New("unlock token mismatch")
}

func (l *MockLocker) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

//go:build !integration

package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"autos-admin/internal/domain"
	"autos-admin/internal/domain/model"
	"autos-admin/internal/usecase"
)

func (e *testEnv) do(t *testing.T, method, path string, body any, tok string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	if rr := env.do(t, http.MethodGet, "/health", nil, ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/health/db", nil, ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without db, got %d", rr.Code)
	}
}

func TestAdminRoutes_RequireSession(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/api/admin/coupons", nil, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if got := decode(t, rr)["error"]; got != "No autorizado" {
		t.Errorf("unexpected message %v", got)
	}
	if rr := env.do(t, http.MethodGet, "/api/admin/me", nil, "garbage"); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rr.Code)
	}
}

func TestLogin_SetsCookieAndAuthenticates(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/admin/login", map[string]string{"email": "ops@example.com", "password": "secret"}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var session *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionCookie {
			session = c
		}
	}
	if session == nil || !session.HttpOnly || session.Value == "" {
		t.Fatalf("expected http-only session cookie, got %+v", session)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.AddCookie(session)
	me := httptest.NewRecorder()
	env.handler.ServeHTTP(me, req)
	if me.Code != http.StatusOK || decode(t, me)["operator"] != "ops@example.com" {
		t.Fatalf("unexpected /me response %d %s", me.Code, me.Body.String())
	}
}

func TestLogin_Rejections(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/api/admin/login", map[string]string{"email": "ops@example.com", "password": "nope"}, "")
	if rr.Code != http.StatusUnauthorized || decode(t, rr)["error"] != "Credenciales inválidas" {
		t.Fatalf("unexpected response %d %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodPost, "/api/admin/login", map[string]string{"email": "not-an-email", "password": "x"}, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if fields, _ := decode(t, rr)["fields"].(map[string]any); fields["Email"] != "email" {
		t.Errorf("expected email field error, got %v", fields)
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/api/admin/logout", nil, "")
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expired cookie, got %+v", cookies)
	}
}

func TestAPIKey_Authenticates(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/api/admin/me", nil, "machine-key")
	if rr.Code != http.StatusOK || decode(t, rr)["operator"] != "api" {
		t.Fatalf("unexpected response %d %s", rr.Code, rr.Body.String())
	}
}

func TestCouponLookup(t *testing.T) {
	env := newTestEnv(t)
	env.coupons.LookupFunc = func(ctx context.Context, code string) (*model.CouponLookup, error) {
		if code == " gp-abc123 " {
			return &model.CouponLookup{Found: true, Coupon: &model.Coupon{CouponCode: "GP-ABC123"}, Lead: &model.Lead{FullName: "Ana"}}, nil
		}
		return &model.CouponLookup{Found: false}, nil
	}
	tok := env.token(t)

	rr := env.do(t, http.MethodGet, "/api/admin/coupon?code=+gp-abc123+", nil, tok)
	body := decode(t, rr)
	if rr.Code != http.StatusOK || body["found"] != true {
		t.Fatalf("unexpected response %d %v", rr.Code, body)
	}

	rr = env.do(t, http.MethodGet, "/api/admin/coupon?code=GP-NOPE00", nil, tok)
	body = decode(t, rr)
	if rr.Code != http.StatusOK || body["found"] != false {
		t.Fatalf("expected found=false, got %d %v", rr.Code, body)
	}
	if _, ok := body["coupon"]; ok {
		t.Errorf("miss must not carry a coupon")
	}
}

func TestCouponList_Params(t *testing.T) {
	env := newTestEnv(t)
	var got model.CouponQuery
	env.coupons.ListFunc = func(ctx context.Context, q model.CouponQuery) ([]*model.CouponWithLead, error) {
		got = q
		return nil, nil
	}
	tok := env.token(t)

	rr := env.do(t, http.MethodGet, "/api/admin/coupons?filter=validated&query=maria&limit=20", nil, tok)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got.Filter != model.FilterValidated || got.Query != "maria" || got.Limit != 20 {
		t.Errorf("unexpected query %+v", got)
	}
	if coupons, ok := decode(t, rr)["coupons"].([]any); !ok || len(coupons) != 0 {
		t.Errorf("expected empty coupons array")
	}

	if rr := env.do(t, http.MethodGet, "/api/admin/coupons?filter=bogus", nil, tok); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown filter, got %d", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/api/admin/coupons?limit=abc", nil, tok); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", rr.Code)
	}
}

func TestCouponRedeem_ThreadsOperator(t *testing.T) {
	env := newTestEnv(t)
	var operator string
	env.coupons.RedeemFunc = func(ctx context.Context, code string) (*model.Coupon, error) {
		operator, _ = usecase.OperatorFrom(ctx)
		return &model.Coupon{CouponCode: model.NormalizeCode(code), Status: model.CouponRedeemed}, nil
	}
	rr := env.do(t, http.MethodPost, "/api/admin/coupon/redeem", map[string]string{"code": "gp-abc123"}, env.token(t))
	if rr.Code != http.StatusOK || decode(t, rr)["ok"] != true {
		t.Fatalf("unexpected response %d %s", rr.Code, rr.Body.String())
	}
	if operator != "ops@example.com" {
		t.Errorf("expected operator from session, got %q", operator)
	}
}

func TestCouponRedeem_ErrorMapping(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, "Cupón no encontrado"},
		{"already redeemed", &domain.RedeemConflict{RedeemedAt: &at}, http.StatusConflict, "Este cupón ya fue canjeado"},
		{"void", domain.ErrCouponInactive, http.StatusConflict, "El cupón no está activo"},
		{"internal", domain.ErrOperationFailed, http.StatusInternalServerError, "Error interno del servidor"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.coupons.RedeemFunc = func(ctx context.Context, code string) (*model.Coupon, error) { return nil, tc.err }
			rr := env.do(t, http.MethodPost, "/api/admin/coupon/redeem", map[string]string{"code": "GP-ABC123"}, env.token(t))
			body := decode(t, rr)
			if rr.Code != tc.status || body["error"] != tc.msg {
				t.Fatalf("got %d %v, want %d %q", rr.Code, body, tc.status, tc.msg)
			}
			if tc.name == "already redeemed" && body["redeemed_at"] != "2024-05-01T10:00:00Z" {
				t.Errorf("expected redeemed_at in body, got %v", body["redeemed_at"])
			}
		})
	}
}

func TestCouponValidate_PassesNotes(t *testing.T) {
	env := newTestEnv(t)
	var notes *string
	env.coupons.ValidateFunc = func(ctx context.Context, code string, n *string) (*model.Coupon, error) {
		notes = n
		return &model.Coupon{CouponCode: code, Validated: true}, nil
	}
	rr := env.do(t, http.MethodPost, "/api/admin/coupon/validate", map[string]string{"code": "GP-ABC123", "notes": "vino con su hija"}, env.token(t))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if notes == nil || *notes != "vino con su hija" {
		t.Errorf("notes not forwarded: %v", notes)
	}

	if rr := env.do(t, http.MethodPost, "/api/admin/coupon/validate", map[string]string{}, env.token(t)); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without code, got %d", rr.Code)
	}
}

func TestCouponUnvalidate_Won(t *testing.T) {
	env := newTestEnv(t)
	env.coupons.UnvalidateFunc = func(ctx context.Context, code string) (*model.Coupon, error) { return nil, domain.ErrCouponWon }
	rr := env.do(t, http.MethodPost, "/api/admin/coupon/unvalidate", map[string]string{"code": "GP-ABC123"}, env.token(t))
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestDrawEndpoints(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t)
	env.draws.ParticipantsFunc = func(ctx context.Context, month string) ([]*model.Participant, error) {
		if month != "2024-12" {
			return nil, domain.ErrInvalidMonth
		}
		return nil, nil
	}
	env.draws.PickFunc = func(ctx context.Context, month string) (*model.Participant, error) {
		return nil, domain.ErrNoParticipants
	}
	env.draws.ConfirmFunc = func(ctx context.Context, month, code string) (*model.Coupon, error) {
		return nil, domain.ErrMonthHasWinner
	}
	env.draws.WinnerFunc = func(ctx context.Context, month string) (*model.CouponWithLead, error) {
		return nil, domain.ErrNotFound
	}

	rr := env.do(t, http.MethodGet, "/api/admin/draw/participants?month=2024-12", nil, tok)
	if ps, ok := decode(t, rr)["participants"].([]any); rr.Code != http.StatusOK || !ok || len(ps) != 0 {
		t.Fatalf("unexpected participants response %d %s", rr.Code, rr.Body.String())
	}
	if rr := env.do(t, http.MethodGet, "/api/admin/draw/participants?month=2024-13", nil, tok); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad month, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/api/admin/draw/pick", map[string]string{"month": "2024-12"}, tok)
	if rr.Code != http.StatusBadRequest || decode(t, rr)["error"] != "No hay participantes validados para este mes" {
		t.Errorf("unexpected pick response %d %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodPost, "/api/admin/draw/confirm", map[string]string{"month": "2024-12", "coupon_code": "GP-ABC123"}, tok)
	if rr.Code != http.StatusConflict || decode(t, rr)["error"] != "Ya existe un ganador confirmado para este mes" {
		t.Errorf("unexpected confirm response %d %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/api/admin/draw/winner?month=2024-12", nil, tok)
	if rr.Code != http.StatusOK || decode(t, rr)["found"] != false {
		t.Errorf("unexpected winner response %d %s", rr.Code, rr.Body.String())
	}
}

func TestAutosCRUD(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t)

	rr := env.do(t, http.MethodPost, "/api/admin/autos", map[string]any{
		"marca": "Fiat", "modelo": "Cronos", "año": 2022, "precio": 100,
		"en_oferta": true, "precio_oferta": 120,
	}, tok)
	if rr.Code != http.StatusBadRequest || decode(t, rr)["error"] != "El precio de oferta debe ser mayor a 0 y menor al precio" {
		t.Fatalf("expected offer rejection, got %d %s", rr.Code, rr.Body.String())
	}
	if len(env.inventory.autos) != 0 {
		t.Fatalf("rejected auto must not be stored")
	}

	rr = env.do(t, http.MethodPost, "/api/admin/autos", map[string]any{"marca": "Fiat", "modelo": "Cronos", "año": 1800, "precio": 100}, tok)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for year, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodPost, "/api/admin/autos", map[string]any{
		"marca": "Fiat", "modelo": "Cronos", "año": 2022, "precio": "15000.50",
		"imagenes": []string{"https://cdn.test/a.jpg", "https://cdn.test/b.mp4"},
	}, tok)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rr.Code, rr.Body.String())
	}
	created := decode(t, rr)
	if created["id"] != float64(1) || created["año"] != float64(2022) {
		t.Errorf("unexpected created auto %v", created)
	}

	if rr := env.do(t, http.MethodGet, "/api/admin/autos/1", nil, tok); rr.Code != http.StatusOK {
		t.Errorf("expected 200 on get, got %d", rr.Code)
	}
	rr = env.do(t, http.MethodGet, "/api/admin/autos/99", nil, tok)
	if rr.Code != http.StatusNotFound || decode(t, rr)["error"] != "Auto no encontrado" {
		t.Errorf("unexpected 404 response %d %s", rr.Code, rr.Body.String())
	}
	if rr := env.do(t, http.MethodGet, "/api/admin/autos/abc", nil, tok); rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-numeric id, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodPatch, "/api/admin/autos/1", map[string]any{"vendido": true, "imagenes": []string{"https://cdn.test/a.jpg"}}, tok)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on patch, got %d %s", rr.Code, rr.Body.String())
	}
	patched := decode(t, rr)
	if auto := patched["auto"].(map[string]any); auto["vendido"] != true {
		t.Errorf("patch not applied: %v", auto)
	}
	if dropped := patched["orphaned_media"].([]any); len(dropped) != 1 || dropped[0] != "https://cdn.test/b.mp4" {
		t.Errorf("unexpected dropped media %v", dropped)
	}

	env.inventory.orphaned = []string{"a.jpg"}
	rr = env.do(t, http.MethodDelete, "/api/admin/autos/1", nil, tok)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", rr.Code)
	}
	if orphaned := decode(t, rr)["orphaned_media"].([]any); len(orphaned) != 1 {
		t.Errorf("expected orphaned media to be reported, got %v", orphaned)
	}

	rr = env.do(t, http.MethodGet, "/api/admin/autos", nil, tok)
	if autos := decode(t, rr)["autos"].([]any); len(autos) != 0 {
		t.Errorf("expected empty list after delete, got %v", autos)
	}
}

func TestMediaUpload_Multipart(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range []string{"a.jpg", "b.mp4"} {
		fw, err := mw.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		_, _ = fw.Write([]byte("data-" + name))
	}
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token(t))
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rr.Code, rr.Body.String())
	}
	if len(env.media.files) != 2 || env.media.files[1].Name != "b.mp4" || string(env.media.files[0].Data) != "data-a.jpg" {
		t.Errorf("unexpected files %+v", env.media.files)
	}
	if uploaded := decode(t, rr)["uploaded"].([]any); len(uploaded) != 2 {
		t.Errorf("expected 2 uploaded, got %v", uploaded)
	}
}

func TestMediaUpload_RequiresFiles(t *testing.T) {
	env := newTestEnv(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("other", "x")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/media", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token(t))
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestMediaUploadURLAndRemove(t *testing.T) {
	env := newTestEnv(t)
	tok := env.token(t)

	rr := env.do(t, http.MethodPost, "/api/admin/media/upload-url", map[string]string{"filename": "1-a.jpg"}, tok)
	if rr.Code != http.StatusOK || !strings.HasSuffix(decode(t, rr)["signedUrl"].(string), "1-a.jpg") {
		t.Fatalf("unexpected upload-url response %d %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodDelete, "/api/admin/media/1-a.jpg", nil, tok)
	if rr.Code != http.StatusOK || len(env.media.removed) != 1 || env.media.removed[0] != "1-a.jpg" {
		t.Fatalf("unexpected remove %d %v", rr.Code, env.media.removed)
	}
}

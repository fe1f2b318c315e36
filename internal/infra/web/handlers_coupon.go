package web

import (
	"net/http"
	"strconv"

	"autos-admin/internal/domain"
	"autos-admin/internal/domain/model"
	"autos-admin/internal/infra/logging"
)

type codeRequest struct {
	Code string `json:"code" validate:"required,max=64"`
}

type validateRequest struct {
	Code  string  `json:"code" validate:"required,max=64"`
	Notes *string `json:"notes" validate:"omitempty,max=2000"`
}

func (s *Server) couponLookup(w http.ResponseWriter, r *http.Request) {
	res, err := s.couponUC.Lookup(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		s.fail(w, r, err, "error.coupon_not_found")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) couponList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter, ok := model.ParseCouponFilter(q.Get("filter"))
	if !ok {
		s.fail(w, r, domain.ErrInvalidArgument, "")
		return
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.fail(w, r, domain.ErrInvalidArgument, "")
			return
		}
		limit = n
	}

	rows, err := s.couponUC.List(r.Context(), model.CouponQuery{Filter: filter, Query: q.Get("query"), Limit: limit})
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if rows == nil {
		rows = []*model.CouponWithLead{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"coupons": rows})
}

func (s *Server) couponRedeem(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !s.bindAndValidate(w, r, &req) {
		return
	}
	ctx := logging.WithCouponCode(r.Context(), model.NormalizeCode(req.Code))
	c, err := s.couponUC.Redeem(ctx, req.Code)
	if err != nil {
		s.fail(w, r.WithContext(ctx), err, "error.coupon_not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "coupon": c})
}

func (s *Server) couponValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !s.bindAndValidate(w, r, &req) {
		return
	}
	ctx := logging.WithCouponCode(r.Context(), model.NormalizeCode(req.Code))
	c, err := s.couponUC.Validate(ctx, req.Code, req.Notes)
	if err != nil {
		s.fail(w, r.WithContext(ctx), err, "error.coupon_not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "coupon": c})
}

func (s *Server) couponUnvalidate(w http.ResponseWriter, r *http.Request) {
	var req codeRequest
	if !s.bindAndValidate(w, r, &req) {
		return
	}
	ctx := logging.WithCouponCode(r.Context(), model.NormalizeCode(req.Code))
	c, err := s.couponUC.Unvalidate(ctx, req.Code)
	if err != nil {
		s.fail(w, r.WithContext(ctx), err, "error.coupon_not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "coupon": c})
}

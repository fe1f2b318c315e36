package web

import (
	"errors"
	"net/http"

	"autos-admin/internal/domain"
	"autos-admin/internal/domain/model"
)

type monthRequest struct {
	Month string `json:"month" validate:"required"`
}

type confirmRequest struct {
	Month      string `json:"month" validate:"required"`
	CouponCode string `json:"coupon_code" validate:"required,max=64"`
}

func (s *Server) drawParticipants(w http.ResponseWriter, r *http.Request) {
	ps, err := s.drawUC.Participants(r.Context(), r.URL.Query().Get("month"))
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if ps == nil {
		ps = []*model.Participant{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"participants": ps})
}

func (s *Server) drawPick(w http.ResponseWriter, r *http.Request) {
	var req monthRequest
	if !s.bindAndValidate(w, r, &req) {
		return
	}
	winner, err := s.drawUC.Pick(r.Context(), req.Month)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "winner": winner})
}

func (s *Server) drawConfirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if !s.bindAndValidate(w, r, &req) {
		return
	}
	c, err := s.drawUC.Confirm(r.Context(), req.Month, req.CouponCode)
	if err != nil {
		s.fail(w, r, err, "error.coupon_not_found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "coupon": c})
}

func (s *Server) drawWinner(w http.ResponseWriter, r *http.Request) {
	c, err := s.drawUC.Winner(r.Context(), r.URL.Query().Get("month"))
	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{"found": false})
		return
	}
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"found": true, "winner": c})
}

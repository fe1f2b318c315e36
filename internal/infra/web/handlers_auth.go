package web

import (
	"errors"
	"net"
	"net/http"

	"autos-admin/internal/domain"
	"autos-admin/internal/infra/logging"
	"autos-admin/internal/usecase"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=256"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.bindAndValidate(w, r, &req) {
		return
	}
	id, err := s.authUC.Login(r.Context(), req.Email, req.Password, clientIP(r))
	if errors.Is(err, domain.ErrUnauthenticated) {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: s.tr.T("error.invalid_credentials")})
		return
	}
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	if _, err := s.auth.Mint(w, id); err != nil {
		s.fail(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "operator": id.Email})
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	s.auth.Clear(w)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	op, _ := usecase.OperatorFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"operator": op})
}

// requireOperator authenticates the request and threads the operator into the context.
func (s *Server) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: s.tr.T("error.unauthenticated")})
			return
		}
		ctx := usecase.WithOperator(r.Context(), claims.Operator())
		ctx = logging.WithUserID(ctx, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

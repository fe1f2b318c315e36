package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"autos-admin/internal/domain"
	"autos-admin/internal/infra/logging"
)

var validate = validator.New()

func init() {
	// let numeric tags (min, gt, ...) see decimals as floats
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

type errorBody struct {
	Error      string            `json:"error"`
	Fields     map[string]string `json:"fields,omitempty"`
	RedeemedAt *time.Time        `json:"redeemed_at,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// bindAndValidate decodes the JSON body and runs validator tags.
// It writes the 400 response itself and returns false on failure.
func (s *Server) bindAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: s.tr.T("error.invalid_argument")})
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			for _, fe := range ve {
				fields[fe.Field()] = fe.Tag()
			}
		}
		writeJSON(w, http.StatusBadRequest, errorBody{Error: s.tr.T("error.invalid_argument"), Fields: fields})
		return false
	}
	return true
}

// fail maps a use case error onto a status and a localized message.
// notFoundKey picks the message for domain.ErrNotFound.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, notFoundKey string) {
	status, key := http.StatusInternalServerError, "error.internal"
	body := errorBody{}

	var rc *domain.RedeemConflict
	switch {
	case errors.As(err, &rc):
		status, key = http.StatusConflict, "error.already_redeemed"
		body.RedeemedAt = rc.RedeemedAt
	case errors.Is(err, domain.ErrInvalidOffer):
		status, key = http.StatusBadRequest, "error.invalid_offer"
	case errors.Is(err, domain.ErrInvalidMonth):
		status, key = http.StatusBadRequest, "error.invalid_month"
	case errors.Is(err, domain.ErrInvalidArgument):
		status, key = http.StatusBadRequest, "error.invalid_argument"
	case errors.Is(err, domain.ErrNoParticipants):
		status, key = http.StatusBadRequest, "error.no_participants"
	case errors.Is(err, domain.ErrUnauthenticated):
		status, key = http.StatusUnauthorized, "error.unauthenticated"
	case errors.Is(err, domain.ErrNotFound):
		status, key = http.StatusNotFound, notFoundKey
		if key == "" {
			key = "error.not_found"
		}
	case errors.Is(err, domain.ErrAlreadyRedeemed):
		status, key = http.StatusConflict, "error.already_redeemed"
	case errors.Is(err, domain.ErrCouponInactive):
		status, key = http.StatusConflict, "error.coupon_inactive"
	case errors.Is(err, domain.ErrCouponWon):
		status, key = http.StatusConflict, "error.coupon_won"
	case errors.Is(err, domain.ErrMonthHasWinner):
		status, key = http.StatusConflict, "error.month_has_winner"
	case errors.Is(err, domain.ErrNotEligible):
		status, key = http.StatusConflict, "error.not_eligible"
	case errors.Is(err, domain.ErrDrawInProgress):
		status, key = http.StatusConflict, "error.draw_in_progress"
	case errors.Is(err, domain.ErrRateLimited):
		status, key = http.StatusTooManyRequests, "error.rate_limited"
	}

	l := logging.With(r.Context(), s.log)
	if status >= 500 {
		l.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	} else {
		l.Debug().Err(err).Int("status", status).Msg("request rejected")
	}
	body.Error = s.tr.T(key)
	writeJSON(w, status, body)
}

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"thriftmart/internal/service"
)

// PromoHandler handles promo code preview requests.
type PromoHandler struct {
	service service.PromoService
	logger  zerolog.Logger
}

// NewPromoHandler creates a new promo handler.
func NewPromoHandler(service service.PromoService, logger zerolog.Logger) *PromoHandler {
	return &PromoHandler{
		service: service,
		logger:  logger.With().Str("handler", "promo").Logger(),
	}
}

type promoValidateRequest struct {
	Code      string          `json:"code"`
	CartTotal decimal.Decimal `json:"cart_total"`
}

type promoValidateResponse struct {
	Valid         bool             `json:"valid"`
	Discount      *decimal.Decimal `json:"discount,omitempty"`
	DiscountType  string           `json:"discount_type,omitempty"`
	DiscountValue *decimal.Decimal `json:"discount_value,omitempty"`
	Detail        string           `json:"detail,omitempty"`
}

// Validate handles POST /api/promo-codes/validate. Rule failures are a 200
// with valid=false; only a missing code or an internal failure is non-200.
func (h *PromoHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	var req promoValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "promo code is required", h.logger)
		return
	}

	preview, err := h.service.Preview(r.Context(), req.Code, req.CartTotal)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to validate promo code", h.logger)
		return
	}

	resp := promoValidateResponse{Valid: preview.Valid, Detail: preview.Detail}
	if preview.Valid {
		discount := preview.Discount
		value := preview.DiscountValue
		resp.Discount = &discount
		resp.DiscountType = preview.DiscountType
		resp.DiscountValue = &value
	}

	writeJSON(w, http.StatusOK, resp)
}

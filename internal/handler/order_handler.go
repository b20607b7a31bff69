package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"thriftmart/internal/model"
	"thriftmart/internal/service"
)

// OrderHandler handles checkout and order retrieval HTTP requests.
type OrderHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.CheckoutService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/orders requests: the checkout transaction.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	uid, ok := userID(w, r, h.logger)
	if !ok {
		return
	}

	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", h.logger)
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")

	order, err := h.service.Checkout(r.Context(), uid, &req, idempotencyKey)
	if err != nil {
		status := http.StatusInternalServerError
		message := "failed to create order"

		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			switch domainErr.Code {
			case model.ErrCodeEmptyCart, model.ErrCodeInvalidPromoCode,
				model.ErrCodeValidation, model.ErrCodeMissingField:
				status = http.StatusBadRequest
				message = domainErr.Message
			case model.ErrCodeOrderConflict:
				message = domainErr.Message
			}
		}

		writeError(w, status, message, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order)
}

// GetByNumber handles GET /api/orders/{orderNumber} requests.
func (h *OrderHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	uid, ok := userID(w, r, h.logger)
	if !ok {
		return
	}

	orderNumber := strings.TrimPrefix(r.URL.Path, "/api/orders/")
	if orderNumber == "" {
		writeError(w, http.StatusBadRequest, "order number is required", h.logger)
		return
	}

	order, err := h.service.GetByNumber(r.Context(), uid, orderNumber)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to retrieve order", h.logger)
		return
	}
	if order == nil {
		writeError(w, http.StatusNotFound, "order not found", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

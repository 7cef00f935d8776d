package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	apperrors "github.com/quickbill/checkout-server-go/internal/errors"
	"github.com/quickbill/checkout-server-go/internal/service"
	"github.com/quickbill/checkout-server-go/internal/validation"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	validate       *validatorv10.Validate
}

func NewPaymentHandler(paymentService *service.PaymentService, validate *validatorv10.Validate) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		validate:       validate,
	}
}

func (h *PaymentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/verify", h.VerifyPayment)

	return r
}

// POST /v1/payment/verify
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req validation.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidRequest("Invalid JSON body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperrors.InvalidRequest("Validation failed").WithDetails(validation.Describe(err)))
		return
	}

	bill, err := h.paymentService.Verify(r.Context(), service.VerifyParams{
		SessionID:        req.SessionID,
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		log.Error().Err(err).Str("sessionId", req.SessionID).Msg("payment verification failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"billId": bill.ID})
}

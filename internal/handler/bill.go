package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/quickbill/checkout-server-go/internal/errors"
	"github.com/quickbill/checkout-server-go/internal/service"
)

type BillHandler struct {
	paymentService *service.PaymentService
}

func NewBillHandler(paymentService *service.PaymentService) *BillHandler {
	return &BillHandler{paymentService: paymentService}
}

func (h *BillHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListBills)
	r.Get("/{billID}", h.GetBill)

	return r
}

// GET /v1/bills
func (h *BillHandler) ListBills(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.paymentService.ListBills(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list bills")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summaries)
}

// GET /v1/bills/{billID}
func (h *BillHandler) GetBill(w http.ResponseWriter, r *http.Request) {
	billID := chi.URLParam(r, "billID")

	bill, err := h.paymentService.GetBill(r.Context(), billID)
	if err != nil {
		log.Error().Err(err).Str("billId", billID).Msg("failed to get bill")
		writeError(w, err)
		return
	}
	if bill == nil {
		writeError(w, apperrors.NotFound("Bill"))
		return
	}

	writeJSON(w, http.StatusOK, bill)
}

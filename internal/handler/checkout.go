package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	apperrors "github.com/quickbill/checkout-server-go/internal/errors"
	"github.com/quickbill/checkout-server-go/internal/model"
	"github.com/quickbill/checkout-server-go/internal/service"
	"github.com/quickbill/checkout-server-go/internal/validation"
)

type CheckoutHandler struct {
	sessionService *service.SessionService
	gatewayService *service.GatewayService
	validate       *validatorv10.Validate
}

func NewCheckoutHandler(
	sessionService *service.SessionService,
	gatewayService *service.GatewayService,
	validate *validatorv10.Validate,
) *CheckoutHandler {
	return &CheckoutHandler{
		sessionService: sessionService,
		gatewayService: gatewayService,
		validate:       validate,
	}
}

// Routes wires the checkout endpoints. createLimiter guards only
// session creation, the one public unauthenticated write; status
// polling stays unthrottled.
func (h *CheckoutHandler) Routes(createLimiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	if createLimiter != nil {
		r.With(createLimiter).Post("/", h.CreateCheckout)
	} else {
		r.Post("/", h.CreateCheckout)
	}
	r.Get("/{sessionID}", h.GetStatus)
	r.Post("/{sessionID}/order", h.IssueOrder)

	return r
}

// POST /v1/checkout
func (h *CheckoutHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var req validation.CreateCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidRequest("Invalid JSON body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, apperrors.InvalidRequest("Validation failed").WithDetails(validation.Describe(err)))
		return
	}

	items := make([]model.LineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = model.LineItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	session, err := h.sessionService.Create(r.Context(), model.CreateSessionParams{
		Items:         items,
		Total:         *req.Total,
		DeviceAddress: req.DeviceAddress,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create checkout session")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"sessionId": session.ID})
}

// GET /v1/checkout/{sessionID}
func (h *CheckoutHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		writeError(w, apperrors.MissingRequired("sessionId"))
		return
	}

	view, err := h.sessionService.GetStatus(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("sessionId", sessionID).Msg("failed to get session status")
		writeError(w, err)
		return
	}
	if view == nil {
		writeError(w, apperrors.NotFound("Session"))
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// POST /v1/checkout/{sessionID}/order
func (h *CheckoutHandler) IssueOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req validation.IssueOrderRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apperrors.InvalidRequest("Invalid JSON body"))
			return
		}
		if err := h.validate.Struct(req); err != nil {
			writeError(w, apperrors.InvalidRequest("Validation failed").WithDetails(validation.Describe(err)))
			return
		}
	}

	session, err := h.sessionService.FindByID(r.Context(), sessionID)
	if err != nil {
		log.Error().Err(err).Str("sessionId", sessionID).Msg("failed to load session")
		writeError(w, err)
		return
	}
	if session == nil {
		writeError(w, apperrors.NotFound("Session"))
		return
	}

	amount := req.Amount
	if amount == 0 {
		amount = session.Total
	}

	order, err := h.gatewayService.CreateOrder(r.Context(), session.ID, amount)
	if err != nil {
		log.Error().Err(err).Str("sessionId", sessionID).Msg("gateway order issuance failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, order)
}

package validation

// Item is a single cart line in a checkout request.
type Item struct {
	Name      string `json:"name" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"gte=0"`
	UnitPrice int64  `json:"unitPrice" validate:"gte=0"`
}

// CreateCheckoutRequest is the payload for POST /v1/checkout.
// Total is a pointer so a missing field is distinguishable from zero;
// the declared total is trusted (client-side discounts are allowed).
type CreateCheckoutRequest struct {
	Items         []Item `json:"items" validate:"required,min=1,dive"`
	Total         *int64 `json:"total" validate:"required,gte=0"`
	DeviceAddress string `json:"deviceAddress,omitempty"`
}

// VerifyPaymentRequest is the payload for POST /v1/payment/verify.
type VerifyPaymentRequest struct {
	SessionID        string `json:"sessionId" validate:"required"`
	GatewayOrderID   string `json:"gatewayOrderId" validate:"required"`
	GatewayPaymentID string `json:"gatewayPaymentId" validate:"required"`
	Signature        string `json:"signature" validate:"required"`
}

// IssueOrderRequest is the payload for POST /v1/checkout/{sessionId}/order.
// Amount falls back to the session total when omitted.
type IssueOrderRequest struct {
	Amount int64 `json:"amount" validate:"gte=0"`
}

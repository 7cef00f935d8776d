package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quickbill/checkout-server-go/internal/config"
	apperrors "github.com/quickbill/checkout-server-go/internal/errors"
)

const gatewayCurrency = "INR"

// GatewayOrder is the slice of the gateway's order response this system
// consumes: the order id the callback will reference and the amount the
// gateway registered.
type GatewayOrder struct {
	GatewayOrderID string `json:"gatewayOrderId"`
	GatewayAmount  int64  `json:"gatewayAmount"`
}

// GatewayService creates payment orders against the external gateway.
// Key exchange and the payment UI belong to the gateway; only the
// order-id/amount contract is consumed here.
type GatewayService struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

func NewGatewayService(baseURL, keyID, keySecret string) *GatewayService {
	return &GatewayService{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		client: &http.Client{
			Timeout: config.GatewayRequestTimeout,
		},
	}
}

type gatewayOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type gatewayOrderResponse struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

// CreateOrder registers an order for the given amount with the gateway.
func (s *GatewayService) CreateOrder(ctx context.Context, sessionID string, amount int64) (*GatewayOrder, error) {
	receipt := uuid.NewString()

	body, err := json.Marshal(gatewayOrderRequest{
		Amount:   amount,
		Currency: gatewayCurrency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, apperrors.GatewayFailure(fmt.Errorf("marshal order request: %w", err))
	}

	url := s.baseURL + "/v1/orders"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.GatewayFailure(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.keyID, s.keySecret)

	start := time.Now()
	resp, err := s.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Error().
			Err(err).
			Str("sessionId", sessionID).
			Dur("elapsed", elapsed).
			Msg("gateway order creation failed")
		return nil, apperrors.GatewayFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Error().
			Str("sessionId", sessionID).
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("gateway rejected order creation")
		return nil, apperrors.GatewayFailure(fmt.Errorf("gateway returned status %d", resp.StatusCode))
	}

	var parsed gatewayOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.GatewayFailure(fmt.Errorf("parse order response: %w", err))
	}

	log.Info().
		Str("sessionId", sessionID).
		Str("orderId", parsed.ID).
		Int64("amount", parsed.Amount).
		Str("receipt", receipt).
		Dur("elapsed", elapsed).
		Msg("gateway order created")

	return &GatewayOrder{
		GatewayOrderID: parsed.ID,
		GatewayAmount:  parsed.Amount,
	}, nil
}

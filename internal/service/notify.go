package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quickbill/checkout-server-go/internal/model"
)

const defaultNotifyTimeout = 5 * time.Second

// NotifyService pushes a completion notice to the device that started
// the checkout. Delivery is best-effort: every failure is logged and
// swallowed, and nothing here is ever retried.
type NotifyService struct {
	client *http.Client
}

func NewNotifyService(timeout time.Duration) *NotifyService {
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	return &NotifyService{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

type notifyPayload struct {
	BillID string `json:"billId"`
	Total  int64  `json:"total"`
	Status string `json:"status"`
}

func (s *NotifyService) Notify(ctx context.Context, address string, bill *model.Bill) {
	url := fmt.Sprintf("http://%s/notify", address)

	body, err := json.Marshal(notifyPayload{
		BillID: bill.ID,
		Total:  bill.Total,
		Status: string(bill.Status),
	})
	if err != nil {
		log.Error().Err(err).Str("billId", bill.ID).Msg("device notification: marshal payload")
		return
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Str("address", address).Str("billId", bill.ID).Msg("device notification: bad address")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	elapsed := time.Since(start)

	if err != nil {
		log.Warn().
			Err(err).
			Str("address", address).
			Str("billId", bill.ID).
			Dur("elapsed", elapsed).
			Msg("device notification failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().
			Str("address", address).
			Str("billId", bill.ID).
			Int("status", resp.StatusCode).
			Dur("elapsed", elapsed).
			Msg("device notification rejected")
		return
	}

	log.Info().
		Str("address", address).
		Str("billId", bill.ID).
		Int("status", resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("device notified")
}

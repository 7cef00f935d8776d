package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/quickbill/checkout-server-go/internal/errors"
	"github.com/quickbill/checkout-server-go/internal/model"
	"github.com/quickbill/checkout-server-go/internal/store"
	"github.com/quickbill/checkout-server-go/internal/util"
)

// Notifier reports a committed bill to the originating device.
// Implementations are best-effort and must never block the caller's
// response path.
type Notifier interface {
	Notify(ctx context.Context, address string, bill *model.Bill)
}

type VerifyParams struct {
	SessionID        string
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
}

// PaymentService validates gateway callbacks and drives the
// session-to-bill transition.
type PaymentService struct {
	store    store.Store
	secret   string
	notifier Notifier

	// mu serializes the allocate-id / write-bill / update-session
	// sequence across all sessions. Two concurrent callbacks must never
	// derive the next bill id from the same tail.
	mu sync.Mutex
}

func NewPaymentService(st store.Store, secret string, notifier Notifier) *PaymentService {
	return &PaymentService{
		store:    st,
		secret:   secret,
		notifier: notifier,
	}
}

// Verify checks the callback signature and, on success, commits the
// bill. Re-verifying an already-paid session with a valid signature is
// an idempotent success: the existing bill id is returned and nothing
// new is minted.
func (s *PaymentService) Verify(ctx context.Context, params VerifyParams) (*model.Bill, error) {
	session, err := s.store.GetSession(ctx, params.SessionID)
	if err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}

	expected := util.HmacSHA256(s.secret, params.GatewayOrderID+"|"+params.GatewayPaymentID)
	if !util.ConstantTimeEqual(expected, params.Signature) {
		log.Warn().
			Str("sessionId", params.SessionID).
			Str("orderId", params.GatewayOrderID).
			Str("signature", util.MaskSignature(params.Signature)).
			Msg("payment callback signature mismatch")
		return nil, apperrors.InvalidSignature()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-read under the lock: a concurrent callback for the same
	// session may have committed while we waited.
	session, err = s.store.GetSession(ctx, params.SessionID)
	if err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	if session == nil {
		return nil, apperrors.NotFound("Session")
	}

	if session.Status == model.SessionStatusPaid && session.BillID != nil {
		bill, err := s.store.GetBill(ctx, *session.BillID)
		if err != nil {
			return nil, apperrors.PersistenceFailure(err)
		}
		log.Info().
			Str("sessionId", session.ID).
			Str("billId", *session.BillID).
			Msg("payment already verified, returning existing bill")
		return bill, nil
	}

	last, err := s.store.LastBill(ctx)
	if err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	lastID := ""
	if last != nil {
		lastID = last.ID
	}
	billID, seq := NextBillID(lastID)

	bill := &model.Bill{
		ID:               billID,
		Seq:              seq,
		SessionID:        session.ID,
		Items:            session.Items,
		Total:            session.Total,
		GatewayOrderID:   params.GatewayOrderID,
		GatewayPaymentID: params.GatewayPaymentID,
		Status:           model.BillStatusPaid,
		Timestamp:        time.Now().UTC(),
	}

	if err := s.store.PutBill(ctx, bill); err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}

	session.Status = model.SessionStatusPaid
	session.BillID = &bill.ID
	if err := s.store.PutSession(ctx, session); err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}

	log.Info().
		Str("sessionId", session.ID).
		Str("billId", bill.ID).
		Str("orderId", bill.GatewayOrderID).
		Str("paymentId", bill.GatewayPaymentID).
		Int64("total", bill.Total).
		Msg("payment verified, bill committed")

	if s.notifier != nil && session.DeviceAddress != "" {
		// Fire-and-forget: the notifier owns its own timeout and the
		// verification response never waits on it.
		go s.notifier.Notify(context.WithoutCancel(ctx), session.DeviceAddress, bill)
	}

	return bill, nil
}

func (s *PaymentService) GetBill(ctx context.Context, id string) (*model.Bill, error) {
	bill, err := s.store.GetBill(ctx, id)
	if err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	return bill, nil
}

func (s *PaymentService) ListBills(ctx context.Context) ([]model.BillSummary, error) {
	summaries, err := s.store.ListBills(ctx)
	if err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	return summaries, nil
}

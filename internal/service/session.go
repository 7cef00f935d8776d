package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/quickbill/checkout-server-go/internal/errors"
	"github.com/quickbill/checkout-server-go/internal/model"
	"github.com/quickbill/checkout-server-go/internal/store"
	"github.com/quickbill/checkout-server-go/internal/util"
)

// SessionView is the read-only projection served to polling clients.
type SessionView struct {
	Status model.SessionStatus `json:"status"`
	BillID *string             `json:"billId,omitempty"`
	Total  int64               `json:"total"`
	Items  []model.LineItem    `json:"items"`
}

type SessionService struct {
	store store.Store
}

func NewSessionService(st store.Store) *SessionService {
	return &SessionService{store: st}
}

// Create mints a pending checkout session. The declared total is
// trusted input; a disagreement with the line-item sum is logged but
// not rejected, since client-side discounts and taxes are legitimate.
func (s *SessionService) Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error) {
	if len(params.Items) == 0 {
		return nil, apperrors.InvalidRequest("items must not be empty")
	}

	id, err := util.GenerateToken()
	if err != nil {
		return nil, apperrors.Internal("failed to generate session id").WithCause(err)
	}

	var lineSum int64
	for _, item := range params.Items {
		lineSum += item.Quantity * item.UnitPrice
	}
	if lineSum != params.Total {
		log.Warn().
			Str("sessionId", id).
			Int64("declaredTotal", params.Total).
			Int64("lineSum", lineSum).
			Msg("declared total differs from line-item sum")
	}

	session := &model.Session{
		ID:            id,
		Items:         params.Items,
		Total:         params.Total,
		Status:        model.SessionStatusPending,
		DeviceAddress: params.DeviceAddress,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.PutSession(ctx, session); err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}

	log.Info().
		Str("sessionId", session.ID).
		Int64("total", session.Total).
		Int("items", len(session.Items)).
		Msg("checkout session created")

	return session, nil
}

// GetStatus returns the session view, or nil when the session is
// unknown.
func (s *SessionService) GetStatus(ctx context.Context, id string) (*SessionView, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	if session == nil {
		return nil, nil
	}

	return &SessionView{
		Status: session.Status,
		BillID: session.BillID,
		Total:  session.Total,
		Items:  session.Items,
	}, nil
}

func (s *SessionService) FindByID(ctx context.Context, id string) (*model.Session, error) {
	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, apperrors.PersistenceFailure(err)
	}
	return session, nil
}

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/quickbill/checkout-server-go/internal/model"
)

// MemStore implements Store entirely in memory. It exists for tests and
// shares the FileStore's copy-on-read/copy-on-write discipline so test
// behavior matches the durable implementations.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	bills    []*model.Bill
	billByID map[string]*model.Bill

	// FailWrites makes every Put fail, for exercising persistence
	// failure paths.
	FailWrites bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		sessions: make(map[string]*model.Session),
		billByID: make(map[string]*model.Bill),
	}
}

var errWriteFailure = errors.New("simulated write failure")

func (s *MemStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return copySession(session), nil
}

func (s *MemStore) PutSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return errWriteFailure
	}
	s.sessions[session.ID] = copySession(session)
	return nil
}

func (s *MemStore) GetBill(ctx context.Context, id string) (*model.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bill, ok := s.billByID[id]
	if !ok {
		return nil, nil
	}
	return copyBill(bill), nil
}

func (s *MemStore) PutBill(ctx context.Context, bill *model.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWrites {
		return errWriteFailure
	}
	if _, exists := s.billByID[bill.ID]; exists {
		return errors.New("bill already exists: " + bill.ID)
	}

	dup := copyBill(bill)
	s.bills = append(s.bills, dup)
	s.billByID[dup.ID] = dup
	return nil
}

func (s *MemStore) LastBill(ctx context.Context) (*model.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.bills) == 0 {
		return nil, nil
	}
	return copyBill(s.bills[len(s.bills)-1]), nil
}

func (s *MemStore) ListBills(ctx context.Context) ([]model.BillSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]model.BillSummary, 0, len(s.bills))
	for _, b := range s.bills {
		summaries = append(summaries, b.Summary())
	}
	return summaries, nil
}

func (s *MemStore) Close() error { return nil }

package store

import (
	"context"

	"github.com/quickbill/checkout-server-go/internal/model"
)

// Store is the durable home of the two ledger collections. Sessions are
// keyed by session id; bills form an append-ordered sequence keyed by
// bill id. Implementations return (nil, nil) for a missing record and
// must persist the full collection before a Put returns.
//
// Implementations are internally synchronized: readers always observe a
// complete snapshot, never a partially applied write. Multi-step
// invariants (bill-id allocation followed by the bill/session writes)
// are serialized one level up, in the payment service.
type Store interface {
	GetSession(ctx context.Context, id string) (*model.Session, error)
	PutSession(ctx context.Context, session *model.Session) error

	GetBill(ctx context.Context, id string) (*model.Bill, error)
	PutBill(ctx context.Context, bill *model.Bill) error

	// LastBill returns the most recently appended bill, or nil when the
	// collection is empty. Bill-id allocation derives from it.
	LastBill(ctx context.Context) (*model.Bill, error)
	ListBills(ctx context.Context) ([]model.BillSummary, error)

	Close() error
}

func copySession(s *model.Session) *model.Session {
	dup := *s
	dup.Items = append([]model.LineItem(nil), s.Items...)
	if s.BillID != nil {
		id := *s.BillID
		dup.BillID = &id
	}
	return &dup
}

func copyBill(b *model.Bill) *model.Bill {
	dup := *b
	dup.Items = append([]model.LineItem(nil), b.Items...)
	return &dup
}

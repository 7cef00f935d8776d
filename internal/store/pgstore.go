package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/quickbill/checkout-server-go/internal/model"
)

// PGStore implements Store on Postgres, for deployments that outgrow
// the snapshot files. bill_seq preserves the append order the id
// allocator depends on.
type PGStore struct {
	db *sqlx.DB
}

const pgSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id     TEXT PRIMARY KEY,
	items          JSONB NOT NULL,
	total          BIGINT NOT NULL,
	status         TEXT NOT NULL,
	device_address TEXT NOT NULL DEFAULT '',
	bill_id        TEXT,
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS bills (
	bill_id            TEXT PRIMARY KEY,
	bill_seq           BIGINT NOT NULL UNIQUE,
	session_id         TEXT NOT NULL,
	items              JSONB NOT NULL,
	total              BIGINT NOT NULL,
	gateway_order_id   TEXT NOT NULL,
	gateway_payment_id TEXT NOT NULL,
	status             TEXT NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL
);
`

func NewPGStore(db *sqlx.DB) (*PGStore, error) {
	if _, err := db.Exec(pgSchema); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PGStore{db: db}, nil
}

type sessionRow struct {
	SessionID     string          `db:"session_id"`
	Items         json.RawMessage `db:"items"`
	Total         int64           `db:"total"`
	Status        string          `db:"status"`
	DeviceAddress string          `db:"device_address"`
	BillID        *string         `db:"bill_id"`
	CreatedAt     time.Time       `db:"created_at"`
}

type billRow struct {
	BillID           string          `db:"bill_id"`
	BillSeq          int64           `db:"bill_seq"`
	SessionID        string          `db:"session_id"`
	Items            json.RawMessage `db:"items"`
	Total            int64           `db:"total"`
	GatewayOrderID   string          `db:"gateway_order_id"`
	GatewayPaymentID string          `db:"gateway_payment_id"`
	Status           string          `db:"status"`
	CreatedAt        time.Time       `db:"created_at"`
}

func (r *sessionRow) toModel() (*model.Session, error) {
	var items []model.LineItem
	if err := json.Unmarshal(r.Items, &items); err != nil {
		return nil, fmt.Errorf("parse session items: %w", err)
	}
	return &model.Session{
		ID:            r.SessionID,
		Items:         items,
		Total:         r.Total,
		Status:        model.SessionStatus(r.Status),
		DeviceAddress: r.DeviceAddress,
		BillID:        r.BillID,
		CreatedAt:     r.CreatedAt,
	}, nil
}

func (r *billRow) toModel() (*model.Bill, error) {
	var items []model.LineItem
	if err := json.Unmarshal(r.Items, &items); err != nil {
		return nil, fmt.Errorf("parse bill items: %w", err)
	}
	return &model.Bill{
		ID:               r.BillID,
		Seq:              r.BillSeq,
		SessionID:        r.SessionID,
		Items:            items,
		Total:            r.Total,
		GatewayOrderID:   r.GatewayOrderID,
		GatewayPaymentID: r.GatewayPaymentID,
		Status:           model.BillStatus(r.Status),
		Timestamp:        r.CreatedAt,
	}, nil
}

func (s *PGStore) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var row sessionRow
	err := s.db.GetContext(ctx, &row, `
		SELECT * FROM sessions WHERE session_id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

func (s *PGStore) PutSession(ctx context.Context, session *model.Session) error {
	items, err := json.Marshal(session.Items)
	if err != nil {
		return fmt.Errorf("marshal session items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (session_id, items, total, status, device_address, bill_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO UPDATE SET
			items = EXCLUDED.items,
			total = EXCLUDED.total,
			status = EXCLUDED.status,
			device_address = EXCLUDED.device_address,
			bill_id = EXCLUDED.bill_id
	`, session.ID, items, session.Total, session.Status, session.DeviceAddress, session.BillID, session.CreatedAt)
	return err
}

func (s *PGStore) GetBill(ctx context.Context, id string) (*model.Bill, error) {
	var row billRow
	err := s.db.GetContext(ctx, &row, `
		SELECT * FROM bills WHERE bill_id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

func (s *PGStore) PutBill(ctx context.Context, bill *model.Bill) error {
	items, err := json.Marshal(bill.Items)
	if err != nil {
		return fmt.Errorf("marshal bill items: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bills (bill_id, bill_seq, session_id, items, total, gateway_order_id, gateway_payment_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, bill.ID, bill.Seq, bill.SessionID, items, bill.Total, bill.GatewayOrderID, bill.GatewayPaymentID, bill.Status, bill.Timestamp)
	return err
}

func (s *PGStore) LastBill(ctx context.Context) (*model.Bill, error) {
	var row billRow
	err := s.db.GetContext(ctx, &row, `
		SELECT * FROM bills ORDER BY bill_seq DESC LIMIT 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toModel()
}

func (s *PGStore) ListBills(ctx context.Context) ([]model.BillSummary, error) {
	var rows []billRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT * FROM bills ORDER BY bill_seq ASC
	`)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.BillSummary, 0, len(rows))
	for i := range rows {
		bill, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, bill.Summary())
	}
	return summaries, nil
}

func (s *PGStore) Close() error {
	return s.db.Close()
}

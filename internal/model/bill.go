package model

import "time"

// Bill is the immutable record of one completed, verified payment.
// Items and Total are copied from the Session at commit time so later
// lookups are immune to any session mutation.
type Bill struct {
	ID               string     `db:"bill_id" json:"billId"`
	Seq              int64      `db:"bill_seq" json:"seq"`
	SessionID        string     `db:"session_id" json:"sessionId"`
	Items            []LineItem `db:"-" json:"items"`
	Total            int64      `db:"total" json:"total"`
	GatewayOrderID   string     `db:"gateway_order_id" json:"gatewayOrderId"`
	GatewayPaymentID string     `db:"gateway_payment_id" json:"gatewayPaymentId"`
	Status           BillStatus `db:"status" json:"status"`
	Timestamp        time.Time  `db:"created_at" json:"timestamp"`
}

// BillSummary is the projection returned by bill listings.
type BillSummary struct {
	BillID    string    `json:"billId"`
	Total     int64     `json:"total"`
	Timestamp time.Time `json:"timestamp"`
	ItemCount int       `json:"itemCount"`
}

func (b *Bill) Summary() BillSummary {
	return BillSummary{
		BillID:    b.ID,
		Total:     b.Total,
		Timestamp: b.Timestamp,
		ItemCount: len(b.Items),
	}
}

package model

import "time"

// LineItem is one cart line, snapshotted into the Bill at commit time.
type LineItem struct {
	Name      string `db:"name" json:"name"`
	Quantity  int64  `db:"quantity" json:"quantity"`
	UnitPrice int64  `db:"unit_price" json:"unitPrice"`
}

// Session represents one in-flight checkout attempt. Sessions are never
// deleted; a paid session is retained for audit and receipt lookup.
type Session struct {
	ID            string        `db:"session_id" json:"sessionId"`
	Items         []LineItem    `db:"-" json:"items"`
	Total         int64         `db:"total" json:"total"`
	Status        SessionStatus `db:"status" json:"status"`
	DeviceAddress string        `db:"device_address" json:"deviceAddress,omitempty"`
	BillID        *string       `db:"bill_id" json:"billId,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
}

type CreateSessionParams struct {
	Items         []LineItem
	Total         int64
	DeviceAddress string
}

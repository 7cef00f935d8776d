package model

type SessionStatus string

const (
	SessionStatusPending SessionStatus = "pending"
	SessionStatusPaid    SessionStatus = "paid"
)

type BillStatus string

const (
	// Bills only ever exist in the paid state; the record itself is the
	// proof that a verified payment completed.
	BillStatusPaid BillStatus = "paid"
)

package service

import (
	"strconv"
	"strings"
)

const (
	billIDPrefix = "A"
	billSeqBase  = 99
)

// NextBillID derives the next bill identifier from the last-appended
// bill id: a fixed one-character prefix followed by a decimal counter
// starting at 100. Callers must hold the payment commit lock; deriving
// from an unserialized read of the tail can mint duplicates.
func NextBillID(lastID string) (string, int64) {
	seq := int64(billSeqBase)
	if lastID != "" {
		n, err := strconv.ParseInt(strings.TrimPrefix(lastID, billIDPrefix), 10, 64)
		if err == nil && n > seq {
			seq = n
		}
	}
	seq++
	return billIDPrefix + strconv.FormatInt(seq, 10), seq
}

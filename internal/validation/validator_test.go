package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func total(v int64) *int64 { return &v }

func TestCreateCheckoutRequest(t *testing.T) {
	v := New()

	t.Run("accepts a valid request", func(t *testing.T) {
		req := CreateCheckoutRequest{
			Items: []Item{{Name: "Milk", Quantity: 2, UnitPrice: 50}},
			Total: total(100),
		}
		assert.NoError(t, v.Struct(req))
	})

	t.Run("rejects empty items", func(t *testing.T) {
		req := CreateCheckoutRequest{Items: []Item{}, Total: total(100)}
		assert.Error(t, v.Struct(req))
	})

	t.Run("rejects missing total", func(t *testing.T) {
		req := CreateCheckoutRequest{
			Items: []Item{{Name: "Milk", Quantity: 1, UnitPrice: 50}},
		}
		assert.Error(t, v.Struct(req))
	})

	t.Run("accepts zero total when explicitly sent", func(t *testing.T) {
		req := CreateCheckoutRequest{
			Items: []Item{{Name: "Voucher", Quantity: 1, UnitPrice: 0}},
			Total: total(0),
		}
		assert.NoError(t, v.Struct(req))
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		req := CreateCheckoutRequest{
			Items: []Item{{Name: "Milk", Quantity: -1, UnitPrice: 50}},
			Total: total(100),
		}
		assert.Error(t, v.Struct(req))
	})

	t.Run("rejects unnamed item", func(t *testing.T) {
		req := CreateCheckoutRequest{
			Items: []Item{{Quantity: 1, UnitPrice: 50}},
			Total: total(50),
		}
		assert.Error(t, v.Struct(req))
	})
}

func TestVerifyPaymentRequest(t *testing.T) {
	v := New()

	t.Run("requires every field", func(t *testing.T) {
		err := v.Struct(VerifyPaymentRequest{})
		require.Error(t, err)

		details := Describe(err)
		assert.Contains(t, details, "sessionID")
		assert.Contains(t, details, "signature")
	})

	t.Run("accepts a complete request", func(t *testing.T) {
		req := VerifyPaymentRequest{
			SessionID:        "abc",
			GatewayOrderID:   "order_1",
			GatewayPaymentID: "pay_1",
			Signature:        "deadbeef",
		}
		assert.NoError(t, v.Struct(req))
	})
}

func TestDescribe(t *testing.T) {
	v := New()

	t.Run("maps tags to readable reasons", func(t *testing.T) {
		err := v.Struct(CreateCheckoutRequest{
			Items: []Item{{Name: "Milk", Quantity: -2, UnitPrice: 50}},
			Total: total(100),
		})
		require.Error(t, err)

		details := Describe(err)
		assert.Equal(t, "must be >= 0", details["quantity"])
	})
}

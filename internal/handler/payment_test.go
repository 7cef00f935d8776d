package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickbill/checkout-server-go/internal/store"
	"github.com/quickbill/checkout-server-go/internal/util"
)

func verifyBody(sessionID, orderID, paymentID, signature string) map[string]any {
	return map[string]any{
		"sessionId":        sessionID,
		"gatewayOrderId":   orderID,
		"gatewayPaymentId": paymentID,
		"signature":        signature,
	}
}

func TestVerifyPayment(t *testing.T) {
	t.Run("full checkout flow mints A100 and flips status to paid", func(t *testing.T) {
		gw := fakeGateway(t)
		defer gw.Close()

		st := store.NewMemStore()
		router := newTestRouter(t, st, gw.URL)

		created := decodeBody(t, doJSON(t, router, http.MethodPost, "/v1/checkout", validCheckoutBody()))
		sessionID := created["sessionId"].(string)

		order := decodeBody(t, doJSON(t, router, http.MethodPost, "/v1/checkout/"+sessionID+"/order", nil))
		orderID := order["gatewayOrderId"].(string)

		signature := util.HmacSHA256(testGatewaySecret, orderID+"|"+"pay_1")
		rec := doJSON(t, router, http.MethodPost, "/v1/payment/verify",
			verifyBody(sessionID, orderID, "pay_1", signature))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "A100", decodeBody(t, rec)["billId"])

		status := decodeBody(t, doJSON(t, router, http.MethodGet, "/v1/checkout/"+sessionID, nil))
		assert.Equal(t, "paid", status["status"])
		assert.Equal(t, "A100", status["billId"])
	})

	t.Run("second verified session mints A101", func(t *testing.T) {
		gw := fakeGateway(t)
		defer gw.Close()
		router := newTestRouter(t, store.NewMemStore(), gw.URL)

		for i, want := range []string{"A100", "A101"} {
			created := decodeBody(t, doJSON(t, router, http.MethodPost, "/v1/checkout", validCheckoutBody()))
			sessionID := created["sessionId"].(string)

			paymentID := "pay_" + string(rune('1'+i))
			signature := util.HmacSHA256(testGatewaySecret, "order_test|"+paymentID)
			rec := doJSON(t, router, http.MethodPost, "/v1/payment/verify",
				verifyBody(sessionID, "order_test", paymentID, signature))
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, want, decodeBody(t, rec)["billId"])
		}
	})

	t.Run("bad signature is 400 and leaves the session pending", func(t *testing.T) {
		gw := fakeGateway(t)
		defer gw.Close()
		router := newTestRouter(t, store.NewMemStore(), gw.URL)

		created := decodeBody(t, doJSON(t, router, http.MethodPost, "/v1/checkout", validCheckoutBody()))
		sessionID := created["sessionId"].(string)

		rec := doJSON(t, router, http.MethodPost, "/v1/payment/verify",
			verifyBody(sessionID, "order_test", "pay_1", "deadbeef"))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_SIGNATURE", decodeBody(t, rec)["code"])

		status := decodeBody(t, doJSON(t, router, http.MethodGet, "/v1/checkout/"+sessionID, nil))
		assert.Equal(t, "pending", status["status"])

		bills := doJSON(t, router, http.MethodGet, "/v1/bills", nil)
		assert.Equal(t, "[]\n", bills.Body.String())
	})

	t.Run("unknown session is 404", func(t *testing.T) {
		router := newTestRouter(t, store.NewMemStore(), "http://unused")

		signature := util.HmacSHA256(testGatewaySecret, "order_1|pay_1")
		rec := doJSON(t, router, http.MethodPost, "/v1/payment/verify",
			verifyBody("missing", "order_1", "pay_1", signature))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing fields are 400 with details", func(t *testing.T) {
		router := newTestRouter(t, store.NewMemStore(), "http://unused")

		rec := doJSON(t, router, http.MethodPost, "/v1/payment/verify", map[string]any{})
		require.Equal(t, http.StatusBadRequest, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "INVALID_REQUEST", body["code"])
		assert.NotEmpty(t, body["details"])
	})
}

func TestBills(t *testing.T) {
	t.Run("unknown bill is 404", func(t *testing.T) {
		router := newTestRouter(t, store.NewMemStore(), "http://unused")

		rec := doJSON(t, router, http.MethodGet, "/v1/bills/A999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("committed bill is served with its snapshot", func(t *testing.T) {
		gw := fakeGateway(t)
		defer gw.Close()
		router := newTestRouter(t, store.NewMemStore(), gw.URL)

		created := decodeBody(t, doJSON(t, router, http.MethodPost, "/v1/checkout", validCheckoutBody()))
		sessionID := created["sessionId"].(string)

		signature := util.HmacSHA256(testGatewaySecret, "order_test|pay_1")
		rec := doJSON(t, router, http.MethodPost, "/v1/payment/verify",
			verifyBody(sessionID, "order_test", "pay_1", signature))
		require.Equal(t, http.StatusOK, rec.Code)

		bill := decodeBody(t, doJSON(t, router, http.MethodGet, "/v1/bills/A100", nil))
		assert.Equal(t, "A100", bill["billId"])
		assert.Equal(t, sessionID, bill["sessionId"])
		assert.Equal(t, float64(100), bill["total"])
		assert.Equal(t, "paid", bill["status"])
		assert.Equal(t, "order_test", bill["gatewayOrderId"])

		list := doJSON(t, router, http.MethodGet, "/v1/bills", nil)
		require.Equal(t, http.StatusOK, list.Code)

		var summaries []map[string]any
		require.NoError(t, json.Unmarshal(list.Body.Bytes(), &summaries))
		require.Len(t, summaries, 1)
		assert.Equal(t, "A100", summaries[0]["billId"])
		assert.Equal(t, float64(1), summaries[0]["itemCount"])
	})
}

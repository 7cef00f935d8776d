package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickbill/checkout-server-go/internal/model"
)

func notifyBill() *model.Bill {
	return &model.Bill{
		ID:     "A100",
		Total:  100,
		Status: model.BillStatusPaid,
	}
}

func TestNotify(t *testing.T) {
	ctx := context.Background()

	t.Run("posts the bill payload to the device", func(t *testing.T) {
		var got notifyPayload
		var path string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		address := strings.TrimPrefix(srv.URL, "http://")
		NewNotifyService(0).Notify(ctx, address, notifyBill())

		assert.Equal(t, "/notify", path)
		assert.Equal(t, "A100", got.BillID)
		assert.Equal(t, int64(100), got.Total)
		assert.Equal(t, "paid", got.Status)
	})

	t.Run("unreachable device is swallowed", func(t *testing.T) {
		// Port 1 is never listening; Notify must return without panic
		// or error surface.
		NewNotifyService(200 * time.Millisecond).Notify(ctx, "127.0.0.1:1", notifyBill())
	})

	t.Run("device error response is swallowed", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		NewNotifyService(0).Notify(ctx, strings.TrimPrefix(srv.URL, "http://"), notifyBill())
	})

	t.Run("slow device is cut off by the timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
		}))
		defer srv.Close()

		start := time.Now()
		NewNotifyService(100 * time.Millisecond).Notify(ctx, strings.TrimPrefix(srv.URL, "http://"), notifyBill())
		assert.Less(t, time.Since(start), 450*time.Millisecond)
	})

	t.Run("malformed address is swallowed", func(t *testing.T) {
		NewNotifyService(0).Notify(ctx, "not a host", notifyBill())
	})
}

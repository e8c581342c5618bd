package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"hajjumrahflow/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPostsPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := NewWebhook(map[domain.EventKind]string{domain.EventBookingCreated: srv.URL})
	w.Notify(context.Background(), "req-1", []domain.Event{domain.NewBookingCreated(7, 2, 3, time.Now())})

	assert.Equal(t, float64(7), got["booking_id"])
	assert.Equal(t, float64(2), got["customer_id"])
	assert.Equal(t, float64(3), got["trip_id"])
}

func TestWebhookSkipsUnconfiguredKinds(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	w := NewWebhook(map[domain.EventKind]string{domain.EventBookingCreated: srv.URL})
	assert.False(t, w.Enabled(domain.EventPaymentReceived))
	w.Notify(context.Background(), "", []domain.Event{domain.NewPaymentReceived(1, 2, 3, time.Now())})
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestWebhookFailureDoesNotRetry(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	w := NewWebhook(map[domain.EventKind]string{domain.EventPaymentReceived: srv.URL})
	w.Notify(context.Background(), "", []domain.Event{domain.NewPaymentReceived(1, 2, 3, time.Now())})
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestWebhookTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	w := Webhook{
		URLs:   map[domain.EventKind]string{domain.EventBookingCreated: srv.URL},
		Client: &http.Client{Timeout: 50 * time.Millisecond},
	}
	start := time.Now()
	w.Notify(context.Background(), "", []domain.Event{domain.NewBookingCreated(1, 1, 1, time.Now())})
	assert.Less(t, time.Since(start), time.Second)
}

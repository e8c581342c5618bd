package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hajjumrahflow/internal/domain"
	"hajjumrahflow/internal/utils"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds one webhook delivery.
const DefaultTimeout = 5 * time.Second

// Notifier delivers domain events to the outside world. Delivery never fails
// the operation that produced the events.
type Notifier interface {
	Notify(ctx context.Context, requestID string, events []domain.Event)
}

// Webhook POSTs each event's payload as JSON to the URL configured for its kind.
// Failures are logged and dropped; there is no retry.
type Webhook struct {
	URLs   map[domain.EventKind]string
	Client *http.Client
}

func NewWebhook(urls map[domain.EventKind]string) Webhook {
	return Webhook{URLs: urls, Client: &http.Client{Timeout: DefaultTimeout}}
}

func (w Webhook) client() *http.Client {
	if w.Client != nil {
		return w.Client
	}
	return &http.Client{Timeout: DefaultTimeout}
}

// Enabled reports whether a URL is configured for kind.
func (w Webhook) Enabled(kind domain.EventKind) bool {
	return strings.TrimSpace(w.URLs[kind]) != ""
}

func (w Webhook) Notify(ctx context.Context, requestID string, events []domain.Event) {
	for _, ev := range events {
		if err := w.deliver(ctx, ev); err != nil {
			utils.LogFailure(requestID, "webhook", string(ev.Kind), err)
		}
	}
}

func (w Webhook) deliver(ctx context.Context, ev domain.Event) error {
	url := strings.TrimSpace(w.URLs[ev.Kind])
	if url == "" {
		utils.Log.WithField("event", ev.Kind).Warn("webhook URL not configured, skipping notification")
		return nil
	}

	body, err := json.Marshal(ev.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %s", resp.Status)
	}
	utils.Log.WithFields(logrus.Fields{"event": ev.Kind, "status": resp.StatusCode}).Info("webhook delivered")
	return nil
}

// Discard drops every event.
type Discard struct{}

func (Discard) Notify(context.Context, string, []domain.Event) {}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// WebhookNotifier posts finalization events to an external webhook.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

type finalizedPayload struct {
	Event     string  `json:"event"`
	CompanyID int64   `json:"companyId"`
	RecordIDs []int64 `json:"recordIds"`
	At        string  `json:"at"`
}

// NewWebhookNotifier constructs a notifier.
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// NotifyFinalized posts a reports.finalized event.
func (n *WebhookNotifier) NotifyFinalized(ctx context.Context, companyID int64, recordIDs []int64) error {
	if n == nil || n.url == "" {
		return errors.New("webhook notifier: empty url")
	}
	body, err := json.Marshal(finalizedPayload{
		Event:     "reports.finalized",
		CompanyID: companyID,
		RecordIDs: recordIDs,
		At:        time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("webhook notifier: non-2xx")
	}
	return nil
}

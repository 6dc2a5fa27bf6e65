package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dreamevents/marketplace/logger"
)

// PushClient delivers push notifications through an FCM-style HTTP endpoint.
// Delivery is fire-and-forget from the workflow's perspective; callers decide
// whether a failure matters.
type PushClient struct {
	endpoint  string
	serverKey string
	client    *http.Client
}

// NewPushClient builds a client from PUSH_API_URL and PUSH_SERVER_KEY. Without
// a configured endpoint the client is disabled: Send drops messages and
// reports success.
func NewPushClient() *PushClient {
	endpoint := os.Getenv("PUSH_API_URL")
	if endpoint == "" {
		logger.WarnLogger.Warn("PUSH_API_URL not set, push delivery disabled")
		return &PushClient{}
	}
	return &PushClient{
		endpoint:  endpoint,
		serverKey: os.Getenv("PUSH_SERVER_KEY"),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type pushPayload struct {
	Token        string            `json:"token"`
	Notification pushNotification  `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type pushNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Send posts one notification to the delivery endpoint. A nil or disabled
// client drops the message and returns nil.
func (p *PushClient) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if p == nil || p.endpoint == "" {
		logger.InfoLogger.Info("Push channel disabled, dropping push notification")
		return nil
	}

	payload, err := json.Marshal(pushPayload{
		Token:        token,
		Notification: pushNotification{Title: title, Body: body},
		Data:         data,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to construct push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.serverKey != "" {
		req.Header.Set("Authorization", "key="+p.serverKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return fmt.Errorf("push endpoint returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

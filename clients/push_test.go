package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamevents/marketplace/logger"
)

func TestMain(m *testing.M) {
	logger.InitLoggers()
	m.Run()
}

func TestNewPushClientWithoutEndpoint(t *testing.T) {
	t.Setenv("PUSH_API_URL", "")

	client := NewPushClient()
	require.NotNil(t, client)

	err := client.Send(context.Background(), "device-token-1", "New Booking", "You have a new request", nil)
	assert.NoError(t, err)
}

func TestPushClientNilReceiverSend(t *testing.T) {
	var client *PushClient

	err := client.Send(context.Background(), "device-token-1", "New Booking", "You have a new request", nil)
	assert.NoError(t, err)
}

func TestPushClientSend(t *testing.T) {
	var got pushPayload
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Setenv("PUSH_API_URL", srv.URL)
	t.Setenv("PUSH_SERVER_KEY", "test-key")
	client := NewPushClient()

	err := client.Send(context.Background(), "device-token-1", "New Booking", "You have a new request", map[string]string{"type": "booking_request"})
	require.NoError(t, err)

	assert.Equal(t, "key=test-key", auth)
	assert.Equal(t, "device-token-1", got.Token)
	assert.Equal(t, "New Booking", got.Notification.Title)
	assert.Equal(t, "You have a new request", got.Notification.Body)
	assert.Equal(t, "booking_request", got.Data["type"])
}

func TestPushClientSendEndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid registration token", http.StatusBadRequest)
	}))
	defer srv.Close()

	t.Setenv("PUSH_API_URL", srv.URL)
	client := NewPushClient()

	err := client.Send(context.Background(), "device-token-1", "New Booking", "You have a new request", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

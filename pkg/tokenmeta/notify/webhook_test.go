package notify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juke/dril-dao/pkg/tokenmeta"
	"github.com/juke/dril-dao/pkg/tokenmeta/notify"
)

// captureServer records every envelope it receives
type captureServer struct {
	*httptest.Server
	events  []notify.Event
	headers []http.Header
	status  int
}

func newCaptureServer(t *testing.T, status int) *captureServer {
	cs := &captureServer{status: status}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event notify.Event
		err := json.NewDecoder(r.Body).Decode(&event)
		require.NoError(t, err)

		cs.events = append(cs.events, event)
		cs.headers = append(cs.headers, r.Header.Clone())
		w.WriteHeader(cs.status)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func TestWebhookSink_RequiresURL(t *testing.T) {
	_, err := notify.NewWebhookSink(notify.Config{})
	assert.Error(t, err)
}

func TestWebhookSink_BaseURIConfigured(t *testing.T) {
	server := newCaptureServer(t, http.StatusOK)
	sink, err := notify.NewWebhookSink(notify.Config{URL: server.URL})
	require.NoError(t, err)

	err = sink.BaseURIConfigured(context.Background(), tokenmeta.TokenID(7), "https://cdn.example.com", true)
	require.NoError(t, err)

	require.Len(t, server.events, 1)
	event := server.events[0]

	assert.Equal(t, notify.ActionBaseURIConfigured, event.Action)
	assert.Equal(t, "7", event.TokenID)
	assert.Equal(t, "https://cdn.example.com", event.Metadata["base_uri"])
	assert.Equal(t, true, event.Metadata["use_id_in_path"])
	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.False(t, event.CreatedAt.IsZero())

	assert.Equal(t, "application/json", server.headers[0].Get("Content-Type"))
}

func TestWebhookSink_TokenURIChanged(t *testing.T) {
	server := newCaptureServer(t, http.StatusOK)
	sink, err := notify.NewWebhookSink(notify.Config{URL: server.URL})
	require.NoError(t, err)

	err = sink.TokenURIChanged(context.Background(), tokenmeta.TokenID(7), "ipfs://QmPinned")
	require.NoError(t, err)

	// Clearing the override posts the same action with an empty uri.
	err = sink.TokenURIChanged(context.Background(), tokenmeta.TokenID(7), "")
	require.NoError(t, err)

	require.Len(t, server.events, 2)
	assert.Equal(t, notify.ActionTokenURIChanged, server.events[0].Action)
	assert.Equal(t, "ipfs://QmPinned", server.events[0].Metadata["uri"])
	assert.Equal(t, "", server.events[1].Metadata["uri"])

	// Event ids are unique per delivery.
	assert.NotEqual(t, server.events[0].ID, server.events[1].ID)
}

func TestWebhookSink_SendsBearerSecret(t *testing.T) {
	server := newCaptureServer(t, http.StatusOK)
	sink, err := notify.NewWebhookSink(notify.Config{URL: server.URL, Secret: "hunter2"})
	require.NoError(t, err)

	err = sink.TokenURIChanged(context.Background(), tokenmeta.TokenID(7), "ipfs://QmPinned")
	require.NoError(t, err)

	require.Len(t, server.headers, 1)
	assert.Equal(t, "Bearer hunter2", server.headers[0].Get("Authorization"))
}

func TestWebhookSink_NoAuthHeaderWithoutSecret(t *testing.T) {
	server := newCaptureServer(t, http.StatusOK)
	sink, err := notify.NewWebhookSink(notify.Config{URL: server.URL})
	require.NoError(t, err)

	err = sink.TokenURIChanged(context.Background(), tokenmeta.TokenID(7), "ipfs://QmPinned")
	require.NoError(t, err)

	require.Len(t, server.headers, 1)
	assert.Empty(t, server.headers[0].Get("Authorization"))
}

func TestWebhookSink_NonSuccessStatusIsError(t *testing.T) {
	server := newCaptureServer(t, http.StatusBadGateway)
	sink, err := notify.NewWebhookSink(notify.Config{URL: server.URL})
	require.NoError(t, err)

	err = sink.TokenURIChanged(context.Background(), tokenmeta.TokenID(7), "ipfs://QmPinned")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestWebhookSink_UnreachableEndpoint(t *testing.T) {
	server := newCaptureServer(t, http.StatusOK)
	url := server.URL
	server.Close()

	sink, err := notify.NewWebhookSink(notify.Config{URL: url})
	require.NoError(t, err)

	err = sink.TokenURIChanged(context.Background(), tokenmeta.TokenID(7), "ipfs://QmPinned")
	assert.Error(t, err)
}

package broadcast

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_BroadcastReachesSubscriber(t *testing.T) {
	bus := New()
	server := httptest.NewServer(http.HandlerFunc(bus.ServeWS))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return bus.Count() == 1 }, time.Second, time.Millisecond)

	bus.Broadcast("ProcessedIndividual", map[string]string{"id": "abc123"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame envelope
	require.NoError(t, json.Unmarshal(data, &frame))
	assert.Equal(t, "ProcessedIndividual", frame.ParseType)
	assert.Contains(t, frame.Message, "abc123")
}

func TestBus_UnregisterIsIdempotent(t *testing.T) {
	bus := New()
	bus.unregister("does-not-exist")
	assert.Equal(t, 0, bus.Count())
}

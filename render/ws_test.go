package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketSink_PublishesJSON(t *testing.T) {
	received := make(chan Snapshot, 4)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for {
			var snap Snapshot
			if err := conn.ReadJSON(&snap); err != nil {
				return
			}
			received <- snap
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	sink, err := DialWebSocket(url)
	require.NoError(t, err)

	want := Snapshot{"raw/C1": {1, 2, 3}, "Alpha/C1": {0.5, 0.25, 0.125}}
	require.NoError(t, sink.Publish(want))

	got := <-received
	assert.Equal(t, want, got)

	require.NoError(t, sink.Close())
}

func TestDialWebSocket_BadURL(t *testing.T) {
	_, err := DialWebSocket("ws://127.0.0.1:1/nope")
	require.Error(t, err)
}

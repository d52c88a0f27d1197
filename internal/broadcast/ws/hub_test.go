// internal/broadcast/ws/hub_test.go
package ws

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()

	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return h, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(msg)
}

func TestHub_DeliversToAllObservers(t *testing.T) {
	h, url := startHub(t)

	a := dial(t, url)
	b := dial(t, url)
	require.Eventually(t, func() bool { return h.Count() == 2 }, 2*time.Second, 10*time.Millisecond)

	h.Emit("health-update", []byte(`{"event":"health-update"}`))

	assert.Equal(t, `{"event":"health-update"}`, read(t, a))
	assert.Equal(t, `{"event":"health-update"}`, read(t, b))
}

func TestHub_LateJoinerGetsLatestFrame(t *testing.T) {
	h, url := startHub(t)

	first := dial(t, url)
	require.Eventually(t, func() bool { return h.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	h.Emit("health-update", []byte("one"))
	assert.Equal(t, "one", read(t, first))

	late := dial(t, url)
	assert.Equal(t, "one", read(t, late))
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	h, url := startHub(t)

	conn := dial(t, url)
	require.Eventually(t, func() bool { return h.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_EmitNeverBlocks(t *testing.T) {
	// Hub not running: nothing drains the queue.
	h := NewHub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Emit("health-update", []byte{byte(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit blocked without a running hub")
	}

	assert.Equal(t, []byte{99}, <-h.broadcast, "most recent frame wins")
}

// internal/app/app_test.go
package app

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/tulsbot-supervisor/internal/broadcast"
	"github.com/tamzrod/tulsbot-supervisor/internal/config"
	"github.com/tamzrod/tulsbot-supervisor/internal/poller"
	"github.com/tamzrod/tulsbot-supervisor/internal/popover"
	"github.com/tamzrod/tulsbot-supervisor/internal/shell"
	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// qdrantDown reports every endpoint reachable except Qdrant.
var qdrantDown = poller.ProberFunc(func(address string, port uint16, timeout time.Duration) bool {
	return port != 6333
})

func fastPoller() Option {
	return WithPoller(poller.Config{
		Endpoints:    poller.Endpoints(),
		Interval:     20 * time.Millisecond,
		SettleDelay:  0,
		ProbeTimeout: 10 * time.Millisecond,
	}, qdrantDown)
}

func TestNew_InitialState(t *testing.T) {
	a, err := New(config.Default(), quietLogger(), fastPoller())
	require.NoError(t, err)

	snap := a.Commands.GetHealth()
	assert.Equal(t, status.Down, snap.Overall)
	assert.Len(t, snap.Services, 4)

	_, ok := a.Shell.Lookup(shell.MainLabel)
	assert.True(t, ok)
	assert.Equal(t, popover.Absent, a.Popover.State())
	assert.Equal(t, shell.TrayBootTooltip, a.Shell.Tray().Tooltip())
}

func TestNew_NilConfig(t *testing.T) {
	_, err := New(nil, quietLogger())
	assert.Error(t, err)
}

func TestStartup_ShowsMainWindow(t *testing.T) {
	a, err := New(config.Default(), quietLogger(), fastPoller())
	require.NoError(t, err)

	a.Startup()

	w, ok := a.Shell.Lookup(shell.MainLabel)
	require.True(t, ok)
	visible, _ := w.IsVisible()
	assert.True(t, visible)
	assert.Equal(t, shell.MainLabel, a.Shell.Focused())
}

func TestTrayClick_TogglesPopover(t *testing.T) {
	a, err := New(config.Default(), quietLogger(), fastPoller())
	require.NoError(t, err)
	a.Startup()

	a.Shell.Tray().Click()
	assert.Equal(t, popover.Visible, a.Popover.State())

	// focusing the main window hides the popover
	require.NoError(t, a.Commands.ShowMainWindow())
	assert.Eventually(t, func() bool {
		return a.Popover.State() == popover.Hidden
	}, time.Second, 5*time.Millisecond)
}

func TestServe_EndToEnd(t *testing.T) {
	a, err := New(config.Default(), quietLogger(), fastPoller())
	require.NoError(t, err)

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + l.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, l) }()

	// poll loop reaches the store and the tray
	require.Eventually(t, func() bool {
		return a.Commands.GetHealth().Overall == status.Degraded
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool {
		return a.Shell.Tray().Icon() == broadcast.AssetDegraded
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "Tulsbot — degraded", a.Shell.Tray().Tooltip())
	assert.False(t, a.Shell.Tray().IsTemplate())

	// shell windows receive the event
	mw, _ := a.Shell.Lookup(shell.MainLabel)
	assert.Eventually(t, func() bool { return mw.Last(status.EventHealthUpdate) != nil }, time.Second, 10*time.Millisecond)

	// HTTP binding
	resp, err := http.Get(base + "/api/health")
	require.NoError(t, err)
	var snap status.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.Equal(t, status.Degraded, snap.Overall)

	// websocket observer
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+l.Addr().String()+"/ws", nil)
	require.NoError(t, err)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)
	conn.Close()

	var ev status.Event
	require.NoError(t, json.Unmarshal(frame, &ev))
	assert.Equal(t, status.EventHealthUpdate, ev.Event)

	// metrics
	resp, err = http.Get(base + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), `supervisor_service_up{service="Qdrant"} 0`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestRun_ListenFailureStopsEverything(t *testing.T) {
	cfg := config.Default()
	cfg.Server.Address = "256.0.0.1:bad"
	a, err := New(cfg, quietLogger(), fastPoller())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background()) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "listen 256.0.0.1:bad")
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the listener failed")
	}
}

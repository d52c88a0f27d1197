// internal/store/store_test.go
package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

func endpoints() []status.Endpoint {
	return []status.Endpoint{
		{Name: "PostgreSQL", Address: "127.0.0.1", Port: 5432},
		{Name: "Qdrant", Address: "127.0.0.1", Port: 6333},
		{Name: "Context Manager", Address: "127.0.0.1", Port: 3001},
		{Name: "Web UI", Address: "127.0.0.1", Port: 3100},
	}
}

func snapshot(bits ...bool) status.Snapshot {
	eps := endpoints()
	services := make([]status.ServiceHealth, len(bits))
	for i, b := range bits {
		services[i] = status.ServiceHealth{Name: eps[i].Name, Address: eps[i].Address, Port: eps[i].Port, Healthy: b}
	}
	return status.New(services)
}

func TestStore_InitialIsDown(t *testing.T) {
	s := New(status.Initial(endpoints()))

	snap := s.Read()
	assert.Equal(t, status.Down, snap.Overall)
	require.Len(t, snap.Services, 4)
	for _, svc := range snap.Services {
		assert.False(t, svc.Healthy)
	}
}

func TestStore_WriteReplaces(t *testing.T) {
	s := New(status.Initial(endpoints()))

	s.Write(snapshot(true, true, true, true))
	assert.Equal(t, status.Healthy, s.Read().Overall)

	s.Write(snapshot(true, false, true, true))
	assert.Equal(t, status.Degraded, s.Read().Overall)
}

func TestStore_ReadReturnsCopy(t *testing.T) {
	s := New(snapshot(true, true, true, true))

	got := s.Read()
	got.Services[0].Healthy = false

	assert.True(t, s.Read().Services[0].Healthy)
}

func TestStore_WriteCopiesInput(t *testing.T) {
	s := New(status.Initial(endpoints()))

	in := snapshot(true, true, true, true)
	s.Write(in)
	in.Services[0].Healthy = false

	assert.True(t, s.Read().Consistent())
	assert.True(t, s.Read().Services[0].Healthy)
}

func TestStore_WriteRederivesMismatchedOverall(t *testing.T) {
	s := New(status.Initial(endpoints()))

	in := snapshot(true, false, true, true)
	in.Overall = status.Healthy
	s.Write(in)

	got := s.Read()
	assert.Equal(t, status.Degraded, got.Overall)
	assert.True(t, got.Consistent())
}

func TestStore_ConcurrentReadersNeverSeeTornSnapshot(t *testing.T) {
	s := New(status.Initial(endpoints()))

	patterns := []status.Snapshot{
		snapshot(true, true, true, true),
		snapshot(false, false, false, false),
		snapshot(true, false, true, false),
	}

	const writes = 2000
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < writes; i++ {
			s.Write(patterns[i%len(patterns)])
		}
	}()

	torn := make(chan status.Snapshot, 1)
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				snap := s.Read()
				if !snap.Consistent() || len(snap.Services) != 4 {
					select {
					case torn <- snap:
					default:
					}
					return
				}
			}
		}()
	}

	wg.Wait()
	close(torn)

	for snap := range torn {
		t.Fatalf("observed inconsistent snapshot: %+v", snap)
	}
}

// internal/broadcast/broadcast_test.go
package broadcast

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/tulsbot-supervisor/internal/status"
)

// ---- fake indicator ----

type fakeIndicator struct {
	icons    []Asset
	tooltips []string
	template []bool

	failIcon bool
}

func (f *fakeIndicator) SetIcon(a Asset) error {
	if f.failIcon {
		return errors.New("icon decode failed")
	}
	f.icons = append(f.icons, a)
	return nil
}

func (f *fakeIndicator) SetIconAsTemplate(tpl bool) error {
	f.template = append(f.template, tpl)
	return nil
}

func (f *fakeIndicator) SetTooltip(text string) error {
	f.tooltips = append(f.tooltips, text)
	return nil
}

// ---- fake emitter ----

type fakeEmitter struct {
	events []string
	frames [][]byte
}

func (f *fakeEmitter) Emit(event string, frame []byte) {
	f.events = append(f.events, event)
	f.frames = append(f.frames, frame)
}

func snap(bits ...bool) status.Snapshot {
	services := make([]status.ServiceHealth, len(bits))
	for i, b := range bits {
		services[i] = status.ServiceHealth{Name: string(rune('a' + i)), Port: uint16(i + 1), Healthy: b}
	}
	return status.New(services)
}

// ---- tests ----

func TestAssetAndTooltip(t *testing.T) {
	assert.Equal(t, AssetHealthy, AssetFor(status.Healthy))
	assert.Equal(t, AssetDegraded, AssetFor(status.Degraded))
	assert.Equal(t, AssetDown, AssetFor(status.Down))
	assert.Equal(t, AssetDown, AssetFor(status.Overall("")))

	assert.Equal(t, "Tulsbot — degraded", Tooltip(status.Degraded))
}

func TestPublish_UpdatesIndicatorAndEmits(t *testing.T) {
	ind := &fakeIndicator{}
	em := &fakeEmitter{}
	b := New(ind, WithEmitters(em))

	b.Publish(snap(true, false))

	assert.Equal(t, []Asset{AssetDegraded}, ind.icons)
	assert.Equal(t, []string{"Tulsbot — degraded"}, ind.tooltips)
	assert.Equal(t, []bool{false}, ind.template)

	require.Len(t, em.frames, 1)
	assert.Equal(t, status.EventHealthUpdate, em.events[0])

	var ev status.Event
	require.NoError(t, json.Unmarshal(em.frames[0], &ev))
	assert.Equal(t, status.Degraded, ev.Payload.Overall)
}

func TestPublish_IndicatorOnlyOnChange(t *testing.T) {
	ind := &fakeIndicator{}
	em := &fakeEmitter{}
	b := New(ind, WithEmitters(em))

	b.Publish(snap(true, true))
	b.Publish(snap(true, true))
	b.Publish(snap(false, false))

	assert.Equal(t, []Asset{AssetHealthy, AssetDown}, ind.icons)
	assert.Len(t, em.frames, 3, "observers get every tick")
}

func TestPublish_IndicatorFailureForcesFullReapply(t *testing.T) {
	ind := &fakeIndicator{failIcon: true}
	b := New(ind)

	b.Publish(snap(true, true))
	assert.Empty(t, ind.icons)

	ind.failIcon = false
	b.Publish(snap(true, true))

	assert.Equal(t, []Asset{AssetHealthy}, ind.icons, "same overall re-applied after failure")
	assert.Equal(t, []bool{false, false}, ind.template)
}

func TestPublish_NoIndicatorNoEmitters(t *testing.T) {
	b := New(nil)
	assert.NotPanics(t, func() { b.Publish(snap(true)) })
}

func TestPublish_FanOutToAllEmitters(t *testing.T) {
	e1, e2 := &fakeEmitter{}, &fakeEmitter{}
	b := New(nil, WithEmitters(e1, nil, e2))

	b.Publish(snap(false))

	assert.Len(t, e1.frames, 1)
	assert.Len(t, e2.frames, 1)
}

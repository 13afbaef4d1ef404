package webhook

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hmnpros/gateway/core"
)

func TestDispatchRoutesByKind(t *testing.T) {
	d := NewDispatcher()
	var handled core.NormalizedEvent
	d.Register(core.EventContactCreate, func(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
		handled = event
		return core.HandlerResult{Success: true, SubjectID: event.SubjectID, Action: "created"}
	})

	result := d.Dispatch(context.Background(), core.NormalizedEvent{
		Kind:      core.EventContactCreate,
		SubjectID: "abc123",
	})

	assert.True(t, result.Success)
	assert.Equal(t, "created", result.Action)
	assert.Equal(t, "abc123", handled.SubjectID)
}

func TestDispatchFallsBackToDefault(t *testing.T) {
	d := NewDispatcher()
	var sawKind core.EventKind
	d.RegisterDefault(func(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
		sawKind = event.Kind
		return core.HandlerResult{Success: true, Action: "defaulted"}
	})

	result := d.Dispatch(context.Background(), core.NormalizedEvent{Kind: core.EventKind("SomethingNew")})

	assert.True(t, result.Success)
	assert.Equal(t, "defaulted", result.Action)
	assert.Equal(t, core.EventKind("SomethingNew"), sawKind)
}

func TestDispatchUnregisteredWithoutDefaultIsIgnored(t *testing.T) {
	d := NewDispatcher()

	result := d.Dispatch(context.Background(), core.NormalizedEvent{Kind: core.EventTaskCreate, SubjectID: "t1"})

	assert.True(t, result.Success)
	assert.Equal(t, "ignored", result.Action)
}

func TestDispatchContainsPanics(t *testing.T) {
	d := NewDispatcher()
	d.Register(core.EventContactDelete, func(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
		panic(errors.New("boom"))
	})

	assert.NotPanics(t, func() {
		result := d.Dispatch(context.Background(), core.NormalizedEvent{Kind: core.EventContactDelete})
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "boom")
	})
}

func TestDispatchReportsHandlerFailure(t *testing.T) {
	d := NewDispatcher()
	d.Register(core.EventAppointmentCreate, func(ctx context.Context, event core.NormalizedEvent) core.HandlerResult {
		return core.HandlerResult{Success: false, Error: "calendar unavailable"}
	})

	result := d.Dispatch(context.Background(), core.NormalizedEvent{Kind: core.EventAppointmentCreate})
	assert.False(t, result.Success)
	assert.Equal(t, "calendar unavailable", result.Error)
}

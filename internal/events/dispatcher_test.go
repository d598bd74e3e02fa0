package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRoutesByType(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []EventType
	d.Subscribe(EventLockerStatusChanged, func(_ context.Context, e Event) error {
		got = append(got, e.Type)
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventLockerStatusChanged}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventLockerRemoved}))

	assert.Equal(t, []EventType{EventLockerStatusChanged}, got)
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()

	secondCalled := false
	d.Subscribe(EventLockerStatusChanged, func(context.Context, Event) error {
		return errors.New("announce failed")
	})
	d.Subscribe(EventLockerStatusChanged, func(context.Context, Event) error {
		secondCalled = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventLockerStatusChanged})
	assert.NoError(t, err)
	assert.True(t, secondCalled)
}

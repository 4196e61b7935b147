package state

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestEventBus(t *testing.T) {
	t.Run("subscribing to the bus results in published events being received", func(t *testing.T) {
		listenCh := make(chan any, 1)
		expectedEvent := GatewayStatusUpdate{Online: true}

		eb := NewEventBus()
		eb.Subscribe(listenCh)
		eb.Publish(expectedEvent)

		select {
		case actualEvent := <-listenCh:
			assert.Equal(t, expectedEvent, actualEvent)
		default:
			assert.Fail(t, "no event received")
		}
	})

	t.Run("unsubscribed channels receive nothing further", func(t *testing.T) {
		listenCh := make(chan any, 1)

		eb := NewEventBus()
		eb.Subscribe(listenCh)
		eb.Unsubscribe(listenCh)
		eb.Publish(TransportConnected{})

		assert.Len(t, listenCh, 0)
	})

	t.Run("full subscribers are skipped and counted as dropped", func(t *testing.T) {
		slowCh := make(chan any)
		fastCh := make(chan any, 1)

		eb := NewEventBus()
		eb.Subscribe(slowCh)
		eb.Subscribe(fastCh)
		eb.Publish(TransportConnected{})

		assert.Len(t, fastCh, 1)
		assert.Equal(t, uint64(1), eb.Dropped())
	})
}

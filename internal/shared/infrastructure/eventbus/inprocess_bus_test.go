package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInProcessBus_RecordsAndDispatches(t *testing.T) {
	bus := NewInProcessBus(nil)

	var received []PublishedEvent
	bus.Subscribe(func(ctx context.Context, event PublishedEvent) {
		received = append(received, event)
	})

	require.NoError(t, bus.Publish(context.Background(), "billing.order.completed", []byte(`{"plan":"Pro"}`)))
	require.NoError(t, bus.Publish(context.Background(), "billing.order.completed", []byte(`{"plan":"Premium"}`)))

	require.Len(t, received, 2)
	events := bus.Events()
	require.Len(t, events, 2)
	require.Equal(t, "billing.order.completed", events[0].RoutingKey)
	require.Equal(t, []byte(`{"plan":"Pro"}`), events[0].Payload)
}

func TestInProcessBus_CloseIsNoOp(t *testing.T) {
	bus := NewInProcessBus(nil)
	require.NoError(t, bus.Close())
}

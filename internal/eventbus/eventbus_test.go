package eventbus

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type pingEvent struct{ N int }
type otherEvent struct{}

func TestPublishReachesSubscribers(t *testing.T) {
	Use(New())
	defer Use(nil)

	var got []int
	unsub := Subscribe(func(ctx context.Context, e pingEvent) {
		got = append(got, e.N)
	})

	Publish(context.Background(), pingEvent{N: 1})
	Publish(context.Background(), otherEvent{}) // different type, not delivered
	Publish(context.Background(), pingEvent{N: 2})
	require.Equal(t, []int{1, 2}, got)

	unsub()
	Publish(context.Background(), pingEvent{N: 3})
	require.Equal(t, []int{1, 2}, got)
}

func TestUnsubscribeRemovesOnlyOwnHandler(t *testing.T) {
	Use(New())
	defer Use(nil)

	var a, b int
	unsubA := Subscribe(func(ctx context.Context, e pingEvent) { a++ })
	Subscribe(func(ctx context.Context, e pingEvent) { b++ })

	unsubA()
	Publish(context.Background(), pingEvent{})
	require.Equal(t, 0, a)
	require.Equal(t, 1, b)
}

func TestPublishWithoutBusIsNoop(t *testing.T) {
	Use(nil)
	Publish(context.Background(), pingEvent{}) // must not panic
	unsub := Subscribe(func(ctx context.Context, e pingEvent) {})
	unsub()
}

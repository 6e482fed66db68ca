package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	bus := New()
	ch1, unsub1 := bus.Subscribe(4)
	defer unsub1()
	ch2, unsub2 := bus.Subscribe(4)
	defer unsub2()

	bus.Publish(Notification{Kind: FileStorageLimitExceeded, Files: NewIdentity("ws", "/docs", "f1")})

	for _, ch := range []<-chan Notification{ch1, ch2} {
		select {
		case n := <-ch:
			assert.Equal(t, FileStorageLimitExceeded, n.Kind)
		case <-time.After(time.Second):
			t.Fatal("expected notification")
		}
	}
}

func TestPublishNeverBlocksOnFullSubscriber(t *testing.T) {
	bus := New()
	ch, unsub := bus.Subscribe(1)
	defer unsub()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(Notification{Kind: SingleFileLimitExceeded})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}

	require.NotEmpty(t, ch)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := New()
	ch, unsub := bus.Subscribe(4)
	unsub()

	bus.Publish(Notification{Kind: FileStorageLimitExceeded})

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed after unsubscribe")
}

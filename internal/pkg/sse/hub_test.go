package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyTargetUser(t *testing.T) {
	h := NewHub()
	a, cleanA := h.Subscribe("u-1")
	b, cleanB := h.Subscribe("u-2")
	defer cleanA()
	defer cleanB()

	h.Publish("u-1", Event{UserID: "u-1", Event: "notification", Data: "hello"})

	select {
	case ev := <-a:
		assert.Equal(t, "hello", ev.Data)
	default:
		t.Fatal("expected event for u-1")
	}
	assert.Empty(t, b)
}

func TestHub_FullBufferDropsEvents(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("u-1")
	defer cleanup()

	for i := 0; i < DefaultBuffer+5; i++ {
		h.Publish("u-1", Event{Event: "notification", Data: i})
	}
	assert.Len(t, ch, DefaultBuffer)
}

func TestHub_CleanupIsIdempotent(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("u-1")
	require.Equal(t, 1, h.SubscriberCount("u-1"))

	cleanup()
	cleanup()

	assert.Zero(t, h.SubscriberCount("u-1"))
	_, open := <-ch
	assert.False(t, open)
}

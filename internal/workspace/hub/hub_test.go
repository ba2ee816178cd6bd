package hub

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codefoundry/foundry-backend/internal/workspace/domain"
)

func msg(id int, content string) domain.Message {
	return domain.Message{ID: id, TaskRunID: 1, Role: "assistant", Content: content}
}

func TestSnapshotThenAppendsInOrder(t *testing.T) {
	h := New()
	sub := h.Register(1)
	defer sub.Close()

	h.SendSnapshot(1, []domain.Message{msg(1, "hi")}, sub)
	for i := 2; i <= 5; i++ {
		h.SendAppend(1, msg(i, fmt.Sprintf("m%d", i)))
	}

	ev := <-sub.Events()
	assert.Equal(t, EventSnapshot, ev.Type)
	require.Len(t, ev.Messages, 1)
	assert.Equal(t, "hi", ev.Messages[0].Content)

	for i := 2; i <= 5; i++ {
		ev := <-sub.Events()
		assert.Equal(t, EventAppend, ev.Type)
		require.NotNil(t, ev.Message)
		assert.Equal(t, i, ev.Message.ID)
	}
}

func TestAppendScopedToRun(t *testing.T) {
	h := New()
	one := h.Register(1)
	defer one.Close()
	two := h.Register(2)
	defer two.Close()

	h.SendAppend(1, msg(10, "only run one"))

	ev := <-one.Events()
	require.NotNil(t, ev.Message)
	assert.Equal(t, 10, ev.Message.ID)
	assert.Empty(t, two.Events())
}

func TestSnapshotBroadcastReachesAllSubscribers(t *testing.T) {
	h := New()
	one := h.Register(1)
	defer one.Close()
	two := h.Register(1)
	defer two.Close()

	h.SendSnapshot(1, []domain.Message{msg(1, "hi")}, nil)

	for _, sub := range []*Subscriber{one, two} {
		ev := <-sub.Events()
		assert.Equal(t, EventSnapshot, ev.Type)
	}
}

func TestNoDeliveryAfterClose(t *testing.T) {
	h := New()
	sub := h.Register(1)

	sub.Close()
	h.SendAppend(1, msg(1, "late"))

	assert.Empty(t, sub.Events())
	assert.Equal(t, 0, h.SubscriberCount(1))
}

func TestCloseIsIdempotentAndPrunesBucket(t *testing.T) {
	h := New()
	one := h.Register(7)
	two := h.Register(7)
	assert.Equal(t, 2, h.SubscriberCount(7))

	one.Close()
	one.Close()
	assert.Equal(t, 1, h.SubscriberCount(7))

	two.Close()
	assert.Equal(t, 0, h.SubscriberCount(7))
	// The run bucket is gone; re-registering starts fresh.
	again := h.Register(7)
	defer again.Close()
	assert.Equal(t, 1, h.SubscriberCount(7))
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := New()
	sub := h.Register(1)
	defer sub.Close()

	// Overfill the buffer without draining; the hub must not block.
	for i := 0; i < subscriberBuffer+10; i++ {
		h.SendAppend(1, msg(i, "flood"))
	}
	assert.Len(t, sub.Events(), subscriberBuffer)
}

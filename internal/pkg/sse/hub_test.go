package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishByTopic(t *testing.T) {
	h := NewHub()
	qa, cleanupQA := h.Subscribe("QA")
	all, cleanupAll := h.Subscribe(TopicAll)
	defer cleanupAll()

	assert.Equal(t, 2, h.TotalSubscribers())

	h.PublishToMany([]string{"QA", TopicAll}, Event{Event: "sync_completed", Data: 1})

	got := <-qa
	assert.Equal(t, "QA", got.Topic)
	assert.Equal(t, "sync_completed", got.Event)
	got = <-all
	assert.Equal(t, TopicAll, got.Topic)

	cleanupQA()
	cleanupQA()
	assert.Equal(t, 0, h.SubscriberCount("QA"))
	_, open := <-qa
	assert.False(t, open)
}

func TestHub_PublishDoesNotBlockOnFullChannel(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("DEV")
	defer cleanup()

	for i := 0; i < 50; i++ {
		h.Publish("DEV", Event{Event: "sync_completed"})
	}
	require.Len(t, ch, cap(ch))
	h.Publish("nobody", Event{Event: "ignored"})
}

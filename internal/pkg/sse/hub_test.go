package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesTopicSubscribers(t *testing.T) {
	hub := NewHub(4)

	a, cleanupA := hub.Subscribe("report-1")
	defer cleanupA()
	b, cleanupB := hub.Subscribe("report-2")
	defer cleanupB()

	hub.Publish("report-1", Event{Event: "progress", Data: "Reading COSEC attendance file..."})

	select {
	case ev := <-a:
		assert.Equal(t, "report-1", ev.Topic)
		assert.Equal(t, "progress", ev.Event)
		assert.Equal(t, "Reading COSEC attendance file...", ev.Data)
	default:
		t.Fatal("expected an event for report-1")
	}

	select {
	case ev := <-b:
		t.Fatalf("unexpected event for report-2: %+v", ev)
	default:
	}
}

func TestHub_FullBufferDropsEvents(t *testing.T) {
	hub := NewHub(1)

	ch, cleanup := hub.Subscribe("report-1")
	defer cleanup()

	hub.Publish("report-1", Event{Event: "first"})
	hub.Publish("report-1", Event{Event: "second"})

	ev := <-ch
	assert.Equal(t, "first", ev.Event)
	assert.Empty(t, ch)
}

func TestHub_CleanupClosesChannel(t *testing.T) {
	hub := NewHub(0)

	ch, cleanup := hub.Subscribe("report-1")
	require.Equal(t, 1, hub.SubscriberCount("report-1"))
	require.Equal(t, 1, hub.TotalSubscribers())

	cleanup()
	cleanup()

	_, open := <-ch
	assert.False(t, open)
	assert.Zero(t, hub.SubscriberCount("report-1"))
	assert.Zero(t, hub.TotalSubscribers())

	hub.Publish("report-1", Event{Event: "late"})
}

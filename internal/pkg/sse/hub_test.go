package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyRecipient(t *testing.T) {
	hub := NewHub(2)

	alice, cleanupAlice := hub.Subscribe("alice")
	defer cleanupAlice()
	bob, cleanupBob := hub.Subscribe("bob")
	defer cleanupBob()

	sent := hub.Publish("alice", Event{Event: "notification", Data: "hello"})
	assert.Equal(t, 1, sent)

	got := <-alice
	assert.Equal(t, "alice", got.EmployeeID)
	assert.Equal(t, "hello", got.Data)

	select {
	case ev := <-bob:
		t.Fatalf("bob received unexpected event %+v", ev)
	default:
	}
}

func TestHub_FullChannelIsSkipped(t *testing.T) {
	hub := NewHub(1)
	_, cleanup := hub.Subscribe("alice")
	defer cleanup()

	assert.Equal(t, 1, hub.Publish("alice", Event{Event: "a"}))
	assert.Equal(t, 0, hub.Publish("alice", Event{Event: "b"}))
}

func TestHub_CleanupAndCounts(t *testing.T) {
	hub := NewHub(0)

	_, c1 := hub.Subscribe("alice")
	_, c2 := hub.Subscribe("alice")
	_, c3 := hub.Subscribe("bob")

	assert.Equal(t, 2, hub.SubscriberCount("alice"))
	assert.Equal(t, 3, hub.TotalSubscribers())

	c1()
	c1()
	assert.Equal(t, 1, hub.SubscriberCount("alice"))

	c2()
	c3()
	assert.Equal(t, 0, hub.TotalSubscribers())
}

func TestHub_Close(t *testing.T) {
	hub := NewHub(0)
	ch, cleanup := hub.Subscribe("alice")

	hub.Close()
	_, ok := <-ch
	assert.False(t, ok)
	cleanup()

	late, _ := hub.Subscribe("alice")
	_, ok = <-late
	require.False(t, ok)
	assert.Equal(t, 0, hub.Publish("alice", Event{}))
}

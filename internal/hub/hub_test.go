package hub

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesOnlyWatchers(t *testing.T) {
	h := NewHub()
	jlopez := make(Client, 1)
	rluna := make(Client, 1)
	h.Subscribe("jlopez", jlopez)
	h.Subscribe("rluna", rluna)

	assert.Equal(t, 1, h.Broadcast("jlopez", Event{Type: ListCreated, Payload: map[string]string{"name": "Favorites"}}))

	require.Len(t, jlopez, 1)
	var got struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(<-jlopez, &got))
	assert.Equal(t, ListCreated, got.Type)
	assert.Equal(t, "Favorites", got.Payload["name"])
	assert.Empty(t, rluna)
}

func TestBroadcastDropsWhenClientIsFull(t *testing.T) {
	h := NewHub()
	c := make(Client, 1)
	h.Subscribe("jlopez", c)

	assert.Equal(t, 1, h.Broadcast("jlopez", Event{Type: GameAdded}))
	assert.Zero(t, h.Broadcast("jlopez", Event{Type: GameRemoved}))
	assert.Len(t, c, 1)
	assert.Zero(t, h.Broadcast("nobody", Event{Type: GameAdded}))
}

func TestUnsubscribeClosesClient(t *testing.T) {
	h := NewHub()
	c := make(Client, 1)
	h.Subscribe("jlopez", c)
	assert.Equal(t, 1, h.Subscribers("jlopez"))

	h.Unsubscribe("jlopez", c)
	_, open := <-c
	assert.False(t, open)
	assert.Zero(t, h.Subscribers("jlopez"))

	// second unsubscribe must not close twice
	h.Unsubscribe("jlopez", c)
}

func TestWatchStopUnsubscribes(t *testing.T) {
	h := NewHub()
	c, stop := h.Watch("mgarcia", 2)
	assert.Equal(t, 1, h.Subscribers("mgarcia"))

	h.Broadcast("mgarcia", Event{Type: AccountUpdated})
	assert.Len(t, c, 1)

	stop()
	assert.Zero(t, h.Subscribers("mgarcia"))
	<-c
	_, open := <-c
	assert.False(t, open)
}

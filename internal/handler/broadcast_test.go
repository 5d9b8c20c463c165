package handler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telllate/snipcast/internal/domain"
	"github.com/telllate/snipcast/internal/registry"
)

func messageEvent(body string) MessageEvent {
	return MessageEvent{
		RequestContext: RequestContext{ConnectionID: "sender", DomainName: "example.test", Stage: "production"},
		Body:           body,
	}
}

func TestBroadcast_DeliversToSingleConnection(t *testing.T) {
	store := registry.NewMemory()
	sink := newRecordingSink()
	h := NewHandlers(store, staticSink(sink), nil, clockwork.NewFakeClock())

	h.Connect(context.Background(), connectEvent("abc123"))

	resp := h.Broadcast(context.Background(), messageEvent(`{"title":"Hi","content":"World","snippetScore":7}`))
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"delivered":1,"failed":0}`, resp.Body)

	require.Len(t, sink.posts, 1)
	assert.Equal(t, "abc123", sink.posts[0].connectionID)
	assert.JSONEq(t, `{"title":"Hi","content":"World","snippetScore":7}`, sink.posts[0].data)

	h.Disconnect(context.Background(), disconnectEvent("abc123"))
	records, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestBroadcast_StringScorePassesThrough(t *testing.T) {
	store := registry.NewMemory()
	sink := newRecordingSink()
	h := NewHandlers(store, staticSink(sink), nil, clockwork.NewFakeClock())

	h.Connect(context.Background(), connectEvent("abc123"))

	resp := h.Broadcast(context.Background(), messageEvent(`{"title":"Hi","content":"World","snippetScore":"7.5"}`))
	assert.Equal(t, 200, resp.StatusCode)
	require.Len(t, sink.posts, 1)
	assert.JSONEq(t, `{"title":"Hi","content":"World","snippetScore":"7.5"}`, sink.posts[0].data)
}

func TestBroadcast_MalformedBody(t *testing.T) {
	sink := newRecordingSink()
	h := NewHandlers(registry.NewMemory(), staticSink(sink), nil, clockwork.NewFakeClock())

	resp := h.Broadcast(context.Background(), messageEvent(`{"title":`))
	assert.Equal(t, 400, resp.StatusCode)
	assert.Empty(t, sink.posts)
}

func TestBroadcast_EmptyRegistry(t *testing.T) {
	sink := newRecordingSink()
	h := NewHandlers(registry.NewMemory(), staticSink(sink), nil, clockwork.NewFakeClock())

	resp := h.Broadcast(context.Background(), messageEvent(`{"title":"Hi","content":"World"}`))
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"delivered":0,"failed":0}`, resp.Body)
	assert.Empty(t, sink.posts)
}

func TestBroadcast_RecipientFailureIsIsolated(t *testing.T) {
	store := registry.NewMemory()
	sink := newRecordingSink()
	sink.failWith["bad"] = errors.New("delivery refused")
	h := NewHandlers(store, staticSink(sink), nil, clockwork.NewFakeClock())

	for _, id := range []string{"good-1", "bad", "good-2"} {
		h.Connect(context.Background(), connectEvent(id))
	}

	resp := h.Broadcast(context.Background(), messageEvent(`{"title":"Hi","content":"World"}`))
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"delivered":2,"failed":1}`, resp.Body)

	delivered := make([]string, 0, len(sink.posts))
	for _, p := range sink.posts {
		delivered = append(delivered, p.connectionID)
	}
	assert.ElementsMatch(t, []string{"good-1", "good-2"}, delivered)

	// A plain delivery failure is not a gone connection; the record stays.
	records, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestBroadcast_PrunesGoneConnections(t *testing.T) {
	store := registry.NewMemory()
	sink := newRecordingSink()
	sink.failWith["stale"] = domain.ErrConnectionGone
	h := NewHandlers(store, staticSink(sink), nil, clockwork.NewFakeClock())

	h.Connect(context.Background(), connectEvent("alive"))
	h.Connect(context.Background(), connectEvent("stale"))

	resp := h.Broadcast(context.Background(), messageEvent(`{"title":"Hi","content":"World"}`))
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"delivered":1,"failed":1}`, resp.Body)

	records, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "alive", records[0].ConnectionID)
}

func TestBroadcast_RegistryListFailure(t *testing.T) {
	store := &failingRegistry{Memory: registry.NewMemory(), listErr: errors.New("unavailable")}
	h := NewHandlers(store, staticSink(newRecordingSink()), nil, clockwork.NewFakeClock())

	resp := h.Broadcast(context.Background(), messageEvent(`{"title":"Hi","content":"World"}`))
	assert.Equal(t, 500, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Contains(t, body, "error")
}

package domain

import (
	"context"
	"encoding/json"
	"time"
)

// ConnectionRecord represents one currently-open client connection. Its
// presence in the registry is the sole source of truth for deliverability;
// there is no liveness checking beyond it.
type ConnectionRecord struct {
	ConnectionID string    `json:"connectionId"`
	ConnectedAt  time.Time `json:"connectedAt"`
}

// BroadcastMessage is the transient payload fanned out to every connection.
// SnippetScore is opaque and passes through unmodified, so it keeps whatever
// JSON type (number or string) the publisher sent.
type BroadcastMessage struct {
	Title        string          `json:"title"`
	Content      string          `json:"content"`
	SnippetScore json.RawMessage `json:"snippetScore,omitempty"`
}

// ConnectionRegistry is the durable mapping from connection id to connect
// time. Put overwrites, Delete tolerates absent keys, ListAll returns every
// record in no particular order. Implementations never retry failed backend
// calls; retry policy belongs to the caller.
type ConnectionRegistry interface {
	Put(ctx context.Context, connectionID string, connectedAt time.Time) error
	Delete(ctx context.Context, connectionID string) error
	ListAll(ctx context.Context) ([]ConnectionRecord, error)
}

// DeliverySink pushes a payload to a single connection. Sinks report
// ErrConnectionGone when the target connection no longer exists at the
// transport; callers treat that as a non-fatal, per-recipient condition.
type DeliverySink interface {
	Post(ctx context.Context, connectionID string, data []byte) error
}

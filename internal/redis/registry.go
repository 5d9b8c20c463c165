package redis

import (
	"context"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/telllate/snipcast/internal/domain"
	"github.com/telllate/snipcast/internal/errors"
)

// Registry is a ConnectionRegistry over a single Redis hash: field =
// connection id, value = RFC 3339 connect timestamp. Hash field uniqueness
// gives the at-most-one-record invariant for free, and HSET/HDEL are the
// idempotent put/delete the contract asks for.
type Registry struct {
	rdb *goredis.Client
	key string
}

var _ domain.ConnectionRegistry = (*Registry)(nil)

// NewRegistry creates a registry storing records under the given hash key.
func NewRegistry(rdb *goredis.Client, key string) *Registry {
	return &Registry{rdb: rdb, key: key}
}

func (r *Registry) Put(ctx context.Context, connectionID string, connectedAt time.Time) error {
	value := connectedAt.UTC().Format(time.RFC3339Nano)
	if err := r.rdb.HSet(ctx, r.key, connectionID, value).Err(); err != nil {
		return errors.BackendError("failed to store connection record", err).
			WithContext("connection_id", connectionID)
	}
	return nil
}

func (r *Registry) Delete(ctx context.Context, connectionID string) error {
	// HDEL of an absent field is a no-op, matching delete idempotency.
	if err := r.rdb.HDel(ctx, r.key, connectionID).Err(); err != nil {
		return errors.BackendError("failed to delete connection record", err).
			WithContext("connection_id", connectionID)
	}
	return nil
}

func (r *Registry) ListAll(ctx context.Context) ([]domain.ConnectionRecord, error) {
	fields, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, errors.BackendError("failed to scan connection records", err)
	}

	records := make([]domain.ConnectionRecord, 0, len(fields))
	for connectionID, value := range fields {
		connectedAt, err := time.Parse(time.RFC3339Nano, value)
		if err != nil {
			// A corrupt entry must not block delivery to everyone else.
			slog.Warn("Skipping connection record with unparseable timestamp",
				"connection_id", connectionID, "value", value, "error", err)
			continue
		}
		records = append(records, domain.ConnectionRecord{
			ConnectionID: connectionID,
			ConnectedAt:  connectedAt,
		})
	}
	return records, nil
}

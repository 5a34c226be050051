package audit

import (
	"context"
	"encoding/json"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisMaxEntries is the list length kept by the redis sink when not configured
const DefaultRedisMaxEntries = 10000

// RedisSink stores records in a Redis list, most recent at the head.
// The key is `<prefix>/audit/records`.
type RedisSink struct {
	client     *redis.Client
	key        string
	maxEntries int64
}

// NewRedisSink returns a sink using the client
func NewRedisSink(client *redis.Client, prefix string, maxEntries int) *RedisSink {
	if maxEntries <= 0 {
		maxEntries = DefaultRedisMaxEntries
	}
	return &RedisSink{
		client:     client,
		key:        path.Join(prefix, "audit", "records"),
		maxEntries: int64(maxEntries),
	}
}

// Name returns the sink name
func (m *RedisSink) Name() string {
	return "redis"
}

// Key returns the Redis key of the list
func (m *RedisSink) Key() string {
	return m.key
}

// Append stores the record
func (m *RedisSink) Append(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "failed to marshal audit record")
	}

	pipe := m.client.Pipeline()
	pipe.LPush(ctx, m.key, data)
	pipe.LTrim(ctx, m.key, 0, m.maxEntries-1)
	if _, err = pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "failed to store audit record in Redis")
	}
	return nil
}

// QueryRecent returns up to limit records, most recent first
func (m *RedisSink) QueryRecent(ctx context.Context, limit int) ([]*Record, error) {
	limit = NormalizeLimit(limit)
	data, err := m.client.LRange(ctx, m.key, 0, int64(limit-1)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read audit records from Redis")
	}

	list := make([]*Record, 0, len(data))
	for _, item := range data {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			logger.ContextKV(ctx, xlog.ERROR, "reason", "unmarshal_record", "err", err.Error())
			continue
		}
		list = append(list, &rec)
	}
	return list, nil
}

// Close closes the client
func (m *RedisSink) Close() error {
	return m.client.Close()
}

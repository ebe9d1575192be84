package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/serroba/link-ledger/internal/shortener"
)

const defaultEventsKey = "link_events"

// appendScript pushes ARGV[2] only when the list length equals the record seq.
// It returns 1 when pushed, 0 when the same event id already sits at that
// seq, and -1 otherwise.
var appendScript = redis.NewScript(`
local seq = tonumber(ARGV[1])
local len = redis.call("LLEN", KEYS[1])
if len == seq then
	redis.call("RPUSH", KEYS[1], ARGV[2])
	return 1
end
if seq < len then
	local stored = cjson.decode(redis.call("LINDEX", KEYS[1], seq))
	if stored.id == ARGV[3] then
		return 0
	end
end
return -1
`)

// RedisEventStore keeps the event log in a single Redis list, one JSON
// record per element, oldest first. The list index of a record is its seq.
type RedisEventStore struct {
	client *redis.Client
	key    string
}

// NewRedisEventStore creates a Redis-backed event store using the default list key.
func NewRedisEventStore(client *redis.Client) *RedisEventStore {
	return NewRedisEventStoreWithKey(client, defaultEventsKey)
}

// NewRedisEventStoreWithKey creates a Redis-backed event store on the given list key.
func NewRedisEventStoreWithKey(client *redis.Client, key string) *RedisEventStore {
	return &RedisEventStore{
		client: client,
		key:    key,
	}
}

func (r *RedisEventStore) Append(ctx context.Context, record shortener.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record %d: %w", record.Seq, err)
	}

	status, err := appendScript.Run(ctx, r.client, []string{r.key}, record.Seq, payload, record.ID.String()).Int()
	if err != nil {
		return err
	}

	return appendOutcome(status >= 0, record)
}

func (r *RedisEventStore) Load(ctx context.Context) ([]shortener.Record, error) {
	raw, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]shortener.Record, 0, len(raw))

	for i, item := range raw {
		var record shortener.Record
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, fmt.Errorf("unmarshal record at index %d: %w", i, err)
		}

		records = append(records, record)
	}

	return records, nil
}

func (r *RedisEventStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSource reads cell records stored as JSON documents in a redis list
type RedisSource struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

var _ Source = &RedisSource{}

func NewRedisSource(addr, key string) *RedisSource {
	return NewRedisSourceWithClient(redis.NewClient(&redis.Options{
		Addr: addr,
	}), key)
}

func NewRedisSourceWithClient(client *redis.Client, key string) *RedisSource {
	return &RedisSource{
		client:  client,
		key:     key,
		timeout: 5 * time.Second,
	}
}

func (r *RedisSource) Sample(n int, seed uint64) ([]CellRecord, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	raw, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s from redis: %w", r.key, err)
	}
	records, err := DecodeRecords(raw)
	if err != nil {
		return nil, err
	}
	return sample(records, n, seed)
}

// Push appends records to the list, used by collectors feeding the source
func (r *RedisSource) Push(ctx context.Context, records ...CellRecord) error {
	values := make([]interface{}, len(records))
	for i, rec := range records {
		bs, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		values[i] = string(bs)
	}
	return r.client.RPush(ctx, r.key, values...).Err()
}

func (r *RedisSource) Close() error {
	return r.client.Close()
}

// DecodeRecords parses the JSON documents of a redis list
func DecodeRecords(raw []string) ([]CellRecord, error) {
	records := make([]CellRecord, 0, len(raw))
	for i, s := range raw {
		rec := CellRecord{}
		if err := json.Unmarshal([]byte(s), &rec); err != nil {
			return nil, fmt.Errorf("decoding record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	return records, nil
}

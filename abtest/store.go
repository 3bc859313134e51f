package abtest

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/zeu5/ran-rl-opt/util"
)

// Store persists test results outside the harness
type Store interface {
	Append(ctx context.Context, result *TestResult) error
	List(ctx context.Context) ([]*TestResult, error)
}

// FileStore keeps one JSON document per line
type FileStore struct {
	path string
}

var _ Store = &FileStore{}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Append(_ context.Context, result *TestResult) error {
	bs, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return util.AppendToFile(f.path, string(bs))
}

func (f *FileStore) List(_ context.Context) ([]*TestResult, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return make([]*TestResult, 0), nil
	} else if err != nil {
		return nil, err
	}
	defer file.Close()

	results := make([]*TestResult, 0)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		r := &TestResult{}
		if err := json.Unmarshal(scanner.Bytes(), r); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", f.path, err)
		}
		results = append(results, r)
	}
	return results, scanner.Err()
}

// RedisStore keeps results as JSON documents in a redis list
type RedisStore struct {
	client *redis.Client
	key    string
}

var _ Store = &RedisStore{}

func NewRedisStore(addr, key string) *RedisStore {
	return NewRedisStoreWithClient(redis.NewClient(&redis.Options{
		Addr: addr,
	}), key)
}

func NewRedisStoreWithClient(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Append(ctx context.Context, result *TestResult) error {
	bs, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.client.RPush(ctx, r.key, string(bs)).Err()
}

func (r *RedisStore) List(ctx context.Context) ([]*TestResult, error) {
	raw, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("reading %s from redis: %w", r.key, err)
	}
	return DecodeResults(raw)
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// DecodeResults parses the JSON documents of a redis list
func DecodeResults(raw []string) ([]*TestResult, error) {
	results := make([]*TestResult, 0, len(raw))
	for i, s := range raw {
		r := &TestResult{}
		if err := json.Unmarshal([]byte(s), r); err != nil {
			return nil, fmt.Errorf("decoding result %d: %w", i, err)
		}
		results = append(results, r)
	}
	return results, nil
}

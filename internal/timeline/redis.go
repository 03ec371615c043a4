package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const archiveKeyPrefix = "timeline:"

// RedisArchive persists archived timelines in redis so completed turns
// survive process restarts.
type RedisArchive struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisArchive connects to redis and verifies the connection.
func NewRedisArchive(ctx context.Context, addr, password string, db int) (*RedisArchive, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisArchive{client: client, ttl: 30 * 24 * time.Hour}, nil
}

// NewRedisArchiveFromClient wraps an existing client, mainly for tests.
func NewRedisArchiveFromClient(client *redis.Client) *RedisArchive {
	return &RedisArchive{client: client, ttl: 30 * 24 * time.Hour}
}

// Save stores a snapshot. SETNX keeps the first write authoritative on
// duplicate finalization delivery.
func (a *RedisArchive) Save(ctx context.Context, messageID string, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling timeline: %w", err)
	}
	if err := a.client.SetNX(ctx, archiveKeyPrefix+messageID, data, a.ttl).Err(); err != nil {
		return fmt.Errorf("saving timeline: %w", err)
	}
	return nil
}

// Get returns the archived timeline for a completed assistant message.
func (a *RedisArchive) Get(ctx context.Context, messageID string) ([]Entry, bool, error) {
	data, err := a.client.Get(ctx, archiveKeyPrefix+messageID).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading timeline: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false, fmt.Errorf("unmarshaling timeline: %w", err)
	}
	return entries, true, nil
}

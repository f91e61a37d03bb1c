package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "mastermind:game:"

// RedisSessionStore keeps one JSON snapshot per game. The TTL slides: it is
// reset on every save and every load, so only untouched games expire.
type RedisSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func redisKey(gameID string) string { return redisKeyPrefix + gameID }

func (s *RedisSessionStore) Save(ctx context.Context, gameID string, snap SessionSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", gameID, err)
	}
	if err := s.rdb.Set(ctx, redisKey(gameID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot %s: %w", gameID, err)
	}
	return nil
}

// Load reads the snapshot and pushes its expiry out by another TTL. A
// snapshot that no longer decodes is dropped and reported as missing.
func (s *RedisSessionStore) Load(ctx context.Context, gameID string) (SessionSnapshot, bool, error) {
	key := redisKey(gameID)
	val, err := s.rdb.GetEx(ctx, key, s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return SessionSnapshot{}, false, nil
	}
	if err != nil {
		return SessionSnapshot{}, false, fmt.Errorf("load snapshot %s: %w", gameID, err)
	}

	var snap SessionSnapshot
	if err := json.Unmarshal(val, &snap); err != nil {
		_ = s.rdb.Del(ctx, key).Err()
		return SessionSnapshot{}, false, nil
	}
	return snap, true, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, gameID string) error {
	if err := s.rdb.Del(ctx, redisKey(gameID)).Err(); err != nil {
		return fmt.Errorf("delete snapshot %s: %w", gameID, err)
	}
	return nil
}

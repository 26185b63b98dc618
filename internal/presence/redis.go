package presence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(redisURL string) (*RedisStore, error) {
	url := strings.TrimSpace(redisURL)
	if url == "" {
		return nil, errors.New("redis url is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Upsert(ctx context.Context, status BotStatus, ttlSeconds int) error {
	if s == nil || s.client == nil {
		return nil
	}
	id := strings.TrimSpace(status.BotID)
	if id == "" {
		return errors.New("bot_id is required")
	}
	if ttlSeconds <= 0 {
		ttlSeconds = 15
	}
	ttl := time.Duration(ttlSeconds) * time.Second

	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("botkeeper:bot:%s", id)
	return s.client.Set(ctx, key, data, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, botID string) error {
	if s == nil || s.client == nil {
		return nil
	}
	id := strings.TrimSpace(botID)
	if id == "" {
		return nil
	}
	key := fmt.Sprintf("botkeeper:bot:%s", id)
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

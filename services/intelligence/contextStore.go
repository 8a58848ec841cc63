// File: services/intelligence/contextStore.go
package intelligence

import (
	"context"
	"encoding/json"
	"time"

	"concierge/models"

	"github.com/go-redis/redis/v8"
)

const contextPrefix = "chat:ctx:"

// RedisContextStore keeps conversation context in Redis with a sliding TTL
// so idle sessions expire on their own.
type RedisContextStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisContextStore(client *redis.Client, ttl time.Duration) *RedisContextStore {
	return &RedisContextStore{client: client, ttl: ttl}
}

func (s *RedisContextStore) Get(ctx context.Context, sessionID string) (*models.ConversationContext, error) {
	key := contextPrefix + sessionID
	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return &models.ConversationContext{SessionID: sessionID}, nil
	}
	if err != nil {
		return nil, err
	}
	var convCtx models.ConversationContext
	if err := json.Unmarshal([]byte(data), &convCtx); err != nil {
		return nil, err
	}
	return &convCtx, nil
}

func (s *RedisContextStore) Set(ctx context.Context, sessionID string, convCtx *models.ConversationContext) error {
	key := contextPrefix + sessionID
	b, err := json.Marshal(convCtx)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, b, s.ttl).Err()
}

func (s *RedisContextStore) Clear(ctx context.Context, sessionID string) error {
	key := contextPrefix + sessionID
	return s.client.Del(ctx, key).Err()
}

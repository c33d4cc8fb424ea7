package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/league-ledger-validator/pkg/contracts/events"
	"github.com/radieske/league-ledger-validator/pkg/contracts/topics"
)

// RedisCache guarda o último veredito por tx id.
// Serve também de marca de idempotência para o consumer.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(c *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: c, TTL: ttl}
}

func key(txID string) string { return topics.VerdictCachePrefix + txID }

func (r *RedisCache) Set(ctx context.Context, v events.TransitionVerdict) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, key(v.TxID), b, r.TTL).Err()
}

// Get devolve nil, nil quando não há veredito em cache.
func (r *RedisCache) Get(ctx context.Context, txID string) (*events.TransitionVerdict, error) {
	b, err := r.Client.Get(ctx, key(txID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var v events.TransitionVerdict
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

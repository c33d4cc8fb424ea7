package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/league-ledger-validator/pkg/contracts/events"
	"github.com/radieske/league-ledger-validator/pkg/contracts/topics"
)

// Cache lê (e reaquece) os vereditos gravados pelo verdict-worker
type Cache struct {
	R   *redis.Client
	TTL time.Duration
}

func New(r *redis.Client, ttl time.Duration) *Cache { return &Cache{R: r, TTL: ttl} }

func keyVerdict(txID string) string { return topics.VerdictCachePrefix + txID }

func (c *Cache) GetVerdict(ctx context.Context, txID string) (*events.TransitionVerdict, bool, error) {
	b, err := c.R.Get(ctx, keyVerdict(txID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var v events.TransitionVerdict
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, false, err
	}
	return &v, true, nil
}

func (c *Cache) SetVerdict(ctx context.Context, v events.TransitionVerdict) error {
	b, _ := json.Marshal(v)
	return c.R.Set(ctx, keyVerdict(v.TxID), b, c.TTL).Err()
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ginona/tucalerta/internal/domain"
)

// AlertCache caches the default listing (fresh, visible alerts, no
// filters). Any write to any alert invalidates it.
type AlertCache struct {
	client *goredis.Client
	key    string
}

func NewAlertCache(r *Redis) *AlertCache {
	return &AlertCache{
		client: r.Client,
		key:    "alerts:visible",
	}
}

// GetVisible returns the cached default listing, or (nil, false, nil) on
// a cache miss.
func (c *AlertCache) GetVisible(ctx context.Context) ([]*domain.Alert, bool, error) {
	data, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var alerts []*domain.Alert
	if err := json.Unmarshal(data, &alerts); err != nil {
		return nil, false, err
	}

	return alerts, true, nil
}

func (c *AlertCache) SetVisible(ctx context.Context, alerts []*domain.Alert, ttl time.Duration) error {
	b, err := json.Marshal(alerts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, b, ttl).Err()
}

func (c *AlertCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

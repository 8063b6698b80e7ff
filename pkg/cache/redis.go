package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const eventTTL = 5 * time.Minute

// EventCache caches event reads under event:{id} keys. Every mutation of an
// event's sold-ticket counter must invalidate the entry; correctness of the
// workflow does not depend on the cache being populated.
type EventCache struct {
	client *redis.Client
}

func NewEventCache(client *redis.Client) *EventCache {
	return &EventCache{client: client}
}

func NewRedisClient(url string) *redis.Client {
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("failed to parse redis url: %v", err)
	}
	return redis.NewClient(opts)
}

func (c *EventCache) Get(ctx context.Context, eventID string, dest any) (bool, error) {
	raw, err := c.client.Get(ctx, eventKey(eventID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("cache unmarshal: %w", err)
	}
	return true, nil
}

func (c *EventCache) Set(ctx context.Context, eventID string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, eventKey(eventID), raw, eventTTL).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *EventCache) Invalidate(ctx context.Context, eventID string) error {
	if err := c.client.Del(ctx, eventKey(eventID)).Err(); err != nil {
		return fmt.Errorf("cache del: %w", err)
	}
	return nil
}

func eventKey(eventID string) string {
	return fmt.Sprintf("event:%s", eventID)
}

package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/social-feed/internal/model"
)

// FeedCache caches the assembled home feed per viewer. Entries are
// short-lived and dropped eagerly by the Invalidator after any mutation,
// so a stale read window is bounded by the invalidation queue depth.
type FeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewFeedCache(client *redis.Client, ttl time.Duration) *FeedCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &FeedCache{client: client, ttl: ttl}
}

func feedKey(viewerID string) string { return fmt.Sprintf("feed:%s", viewerID) }

// Get returns (nil, false) on miss or any decode problem.
func (c *FeedCache) Get(ctx context.Context, viewerID string) ([]model.FeedPost, bool) {
	data, err := c.client.Get(ctx, feedKey(viewerID)).Bytes()
	if err != nil {
		return nil, false
	}
	var out []model.FeedPost
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (c *FeedCache) Set(ctx context.Context, viewerID string, posts []model.FeedPost) {
	payload, err := json.Marshal(posts)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, feedKey(viewerID), payload, c.ttl).Err()
}

// DropAll removes every cached feed. Mutations change what an unknown set
// of viewers should see (a new post lands in every follower's feed), so
// invalidation is global rather than per-viewer.
func (c *FeedCache) DropAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "feed:*", 0).Iterator()
	keys := make([]string, 0, 64)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

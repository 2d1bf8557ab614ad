package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-feed/internal/model"
)

func setupCache(t *testing.T) (*FeedCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewFeedCache(client, 30*time.Second), mr
}

func TestFeedCacheRoundTrip(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	_, ok := c.Get(ctx, "viewer1")
	assert.False(t, ok)

	feed := []model.FeedPost{{
		Post:     model.Post{ID: "p1", AuthorID: "a1", Content: "hello"},
		Author:   model.UserSummary{ID: "a1", Username: "alice"},
		Comments: []model.CommentView{},
		LikerIDs: []string{"u2"},
	}}
	c.Set(ctx, "viewer1", feed)

	got, ok := c.Get(ctx, "viewer1")
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, "alice", got[0].Author.Username)
}

func TestFeedCacheExpiry(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	c.Set(ctx, "viewer1", []model.FeedPost{})
	mr.FastForward(time.Minute)

	_, ok := c.Get(ctx, "viewer1")
	assert.False(t, ok)
}

func TestDropAllRemovesOnlyFeedKeys(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	c.Set(ctx, "viewer1", []model.FeedPost{})
	c.Set(ctx, "viewer2", []model.FeedPost{})
	require.NoError(t, mr.Set("other:key", "keep"))

	require.NoError(t, c.DropAll(ctx))

	_, ok := c.Get(ctx, "viewer1")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "viewer2")
	assert.False(t, ok)
	assert.True(t, mr.Exists("other:key"))
}

func TestInvalidatorDropsFeeds(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	iv := NewInvalidator(c, 16)
	stop := iv.Start(1)
	defer stop(context.Background())

	c.Set(ctx, "viewer1", []model.FeedPost{})
	iv.Notify("test mutation")

	// worker 异步清理
	assert.Eventually(t, func() bool {
		_, ok := c.Get(ctx, "viewer1")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/social-feed/internal/model"
)

func TestSyncUserIdempotent(t *testing.T) {
	f := setup(t)

	p := ExternalProfile{ExternalID: "ext-1", FirstName: "Ada", LastName: "L", Email: "ada@example.com"}
	first, err := f.users.SyncUser(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Ada L", first.Name)
	assert.Equal(t, "ada", first.Username, "username falls back to email local part")

	second, err := f.users.SyncUser(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var cnt int64
	require.NoError(t, f.db.Model(&model.User{}).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)
}

func TestResolveViewerUnknownIsEmpty(t *testing.T) {
	f := setup(t)

	id, err := f.users.ResolveViewer(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = f.users.ResolveViewer(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestToggleFollowRoundTrip(t *testing.T) {
	f := setup(t)
	a := f.mustUser(t, "alice")
	b := f.mustUser(t, "bob")

	msg, err := f.users.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "You are now following @bob", msg)

	var edges int64
	require.NoError(t, f.db.Model(&model.Follow{}).Count(&edges).Error)
	assert.EqualValues(t, 1, edges)

	ns := f.notificationsFor(t, b.ID)
	require.Len(t, ns, 1)
	assert.Equal(t, model.NotificationFollow, ns[0].Type)
	assert.Equal(t, a.ID, ns[0].CreatorID)

	msg, err = f.users.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unfollowed @bob", msg)

	require.NoError(t, f.db.Model(&model.Follow{}).Count(&edges).Error)
	assert.EqualValues(t, 0, edges)
	// 历史通知不随取关清理
	assert.Len(t, f.notificationsFor(t, b.ID), 1)
}

func TestToggleFollowSelfRejected(t *testing.T) {
	f := setup(t)
	a := f.mustUser(t, "alice")

	_, err := f.users.ToggleFollow(ctx, a.ID, a.ID)
	assert.ErrorIs(t, err, ErrFollowSelf)

	var edges int64
	require.NoError(t, f.db.Model(&model.Follow{}).Count(&edges).Error)
	assert.EqualValues(t, 0, edges)
}

func TestToggleFollowTargetMissing(t *testing.T) {
	f := setup(t)
	a := f.mustUser(t, "alice")

	_, err := f.users.ToggleFollow(ctx, a.ID, "no-such-user")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleFollowUnauthenticated(t *testing.T) {
	f := setup(t)
	b := f.mustUser(t, "bob")

	_, err := f.users.ToggleFollow(ctx, "", b.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSuggestFollowOfFollows(t *testing.T) {
	f := setup(t)
	viewer := f.mustUser(t, "viewer")
	b := f.mustUser(t, "b")
	c := f.mustUser(t, "c")
	d := f.mustUser(t, "d")
	e := f.mustUser(t, "e")

	// viewer follows {b, c}; b follows {d}; c follows {d, e}
	for _, pair := range [][2]string{
		{viewer.ID, b.ID}, {viewer.ID, c.ID},
		{b.ID, d.ID},
		{c.ID, d.ID}, {c.ID, e.ID},
	} {
		_, err := f.users.ToggleFollow(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	res, err := f.users.SuggestFollowOfFollows(ctx, viewer.ID)
	require.NoError(t, err)

	ids := make([]string, len(res))
	for i, s := range res {
		ids[i] = s.ID
	}
	assert.ElementsMatch(t, []string{d.ID, e.ID}, ids)
	assert.NotContains(t, ids, viewer.ID)
	assert.NotContains(t, ids, b.ID)
	assert.NotContains(t, ids, c.ID)
}

func TestSuggestFollowOfFollowsLimitAndRecency(t *testing.T) {
	f := setup(t)
	viewer := f.mustUser(t, "viewer")
	hub := f.mustUser(t, "hub")

	_, err := f.users.ToggleFollow(ctx, viewer.ID, hub.ID)
	require.NoError(t, err)

	// hub 关注 8 个账号，注册时间依次递增
	now := time.Now()
	for i, name := range []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"} {
		u := f.mustUser(t, name)
		_, err := f.users.ToggleFollow(ctx, hub.ID, u.ID)
		require.NoError(t, err)
		require.NoError(t, f.db.Model(&model.User{}).Where("id = ?", u.ID).
			Update("created_at", now.Add(time.Duration(i)*time.Second)).Error)
	}

	res, err := f.users.SuggestFollowOfFollows(ctx, viewer.ID)
	require.NoError(t, err)

	// 候选截到 6 个，最新注册在前
	require.Len(t, res, 6)
	for i, want := range []string{"c8", "c7", "c6", "c5", "c4", "c3"} {
		assert.Equal(t, want, res[i].Username)
	}
	for _, s := range res {
		assert.NotEqual(t, viewer.ID, s.ID)
		assert.NotEqual(t, hub.ID, s.ID)
	}
}

func TestSuggestFollowOfFollowsExcludesAlreadyFollowed(t *testing.T) {
	f := setup(t)
	viewer := f.mustUser(t, "viewer")
	b := f.mustUser(t, "b")
	d := f.mustUser(t, "d")

	// viewer follows {b, d}; b follows {d} → d 已关注，不再推荐
	for _, pair := range [][2]string{
		{viewer.ID, b.ID}, {viewer.ID, d.ID}, {b.ID, d.ID},
	} {
		_, err := f.users.ToggleFollow(ctx, pair[0], pair[1])
		require.NoError(t, err)
	}

	res, err := f.users.SuggestFollowOfFollows(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSuggestFollowOfFollowsEmptyGraph(t *testing.T) {
	f := setup(t)
	viewer := f.mustUser(t, "viewer")
	f.mustUser(t, "other")

	// 无关注 → 空结果，不回退到随机推荐
	res, err := f.users.SuggestFollowOfFollows(ctx, viewer.ID)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestSuggestRecent(t *testing.T) {
	f := setup(t)
	viewer := f.mustUser(t, "viewer")

	now := time.Now()
	for i, name := range []string{"u1", "u2", "u3", "u4"} {
		u := f.mustUser(t, name)
		// 保证创建时间可区分
		require.NoError(t, f.db.Model(&model.User{}).Where("id = ?", u.ID).
			Update("created_at", now.Add(time.Duration(i)*time.Second)).Error)
	}

	res, err := f.users.SuggestRecent(ctx, viewer.ID)
	require.NoError(t, err)
	require.Len(t, res, 3)
	// 最新注册在前，排除自己
	assert.Equal(t, "u4", res[0].Username)
	assert.Equal(t, "u3", res[1].Username)
	assert.Equal(t, "u2", res[2].Username)
	for _, s := range res {
		assert.NotEqual(t, viewer.ID, s.ID)
	}
}

func TestProfileCounts(t *testing.T) {
	f := setup(t)
	a := f.mustUser(t, "alice")
	b := f.mustUser(t, "bob")
	c := f.mustUser(t, "carol")

	_, err := f.users.ToggleFollow(ctx, b.ID, a.ID)
	require.NoError(t, err)
	_, err = f.users.ToggleFollow(ctx, c.ID, a.ID)
	require.NoError(t, err)
	_, err = f.users.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)
	_, err = f.posts.CreatePost(ctx, a.ID, "hello", "")
	require.NoError(t, err)

	p, err := f.users.GetProfileByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 2, p.Followers)
	assert.EqualValues(t, 1, p.Following)
	assert.EqualValues(t, 1, p.Posts)

	_, err = f.users.GetProfileByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsFollowing(t *testing.T) {
	f := setup(t)
	a := f.mustUser(t, "alice")
	b := f.mustUser(t, "bob")

	ok, err := f.users.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.users.ToggleFollow(ctx, a.ID, b.ID)
	require.NoError(t, err)

	ok, err = f.users.IsFollowing(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// 匿名 viewer 恒为 false
	ok, err = f.users.IsFollowing(ctx, "", b.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

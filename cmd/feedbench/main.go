package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/social-feed/config"
	"github.com/d60-Lab/social-feed/internal/model"
	"github.com/d60-Lab/social-feed/internal/repository"
	"github.com/d60-Lab/social-feed/internal/service"
	"github.com/d60-Lab/social-feed/pkg/database"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 { return 0 }
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 { k = 0 }
	if k >= len(xs) { k = len(xs)-1 }
	return xs[k]
}

type noopInvalidator struct{}

func (noopInvalidator) Notify(string) {}

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	postSvc := service.NewPostService(db, postRepo, followRepo, likeRepo, commentRepo, nil, noopInvalidator{})
	userSvc := service.NewUserService(db, userRepo, followRepo, postRepo, noopInvalidator{})

	ctx := context.Background()

	// params
	N := 2000      // users
	FOLLOWS := 30  // follows per user
	POSTS := 10    // posts per user
	READS := 200   // feed reads to sample
	if s := os.Getenv("N"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { N = v } }
	if s := os.Getenv("FOLLOWS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { FOLLOWS = v } }
	if s := os.Getenv("POSTS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { POSTS = v } }
	if s := os.Getenv("READS"); s != "" { if v, e := strconv.Atoi(s); e == nil && v > 0 { READS = v } }

	// seed users
	users := make([]model.User, N)
	for i := 0; i < N; i++ {
		id := uuid.New().String()
		users[i] = model.User{ID: id, ExternalID: "ext-" + id, Username: "u" + id[:8], Name: "u" + id[:8], Email: id[:8] + "@example.com"}
	}
	_ = db.CreateInBatches(&users, 1000).Error

	// seed random follow graph
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 0; i < N; i++ {
		for j := 0; j < FOLLOWS; j++ {
			to := users[rng.Intn(N)].ID
			if to == users[i].ID { continue }
			_ = followRepo.Create(ctx, users[i].ID, to)
		}
	}

	// seed posts
	for i := 0; i < N; i++ {
		for j := 0; j < POSTS; j++ {
			_, _ = postSvc.CreatePost(ctx, users[i].ID, fmt.Sprintf("post %d from %s", j, users[i].Username), "")
		}
	}

	// feed reads
	feedRecs := make([]time.Duration, 0, READS)
	for i := 0; i < READS; i++ {
		viewer := users[rng.Intn(N)].ID
		st := time.Now()
		feed, err := postSvc.GetFeed(ctx, viewer)
		if err != nil { panic(err) }
		_ = feed
		feedRecs = append(feedRecs, time.Since(st))
	}

	// two-hop recommendation reads
	recRecs := make([]time.Duration, 0, READS)
	for i := 0; i < READS; i++ {
		viewer := users[rng.Intn(N)].ID
		st := time.Now()
		if _, err := userSvc.SuggestFollowOfFollows(ctx, viewer); err != nil { panic(err) }
		recRecs = append(recRecs, time.Since(st))
	}

	fmt.Printf("N=%d FOLLOWS=%d POSTS=%d READS=%d\n", N, FOLLOWS, POSTS, READS)
	fmt.Printf("Feed build: p50=%v p95=%v p99=%v\n", pct(feedRecs, 0.50), pct(feedRecs, 0.95), pct(feedRecs, 0.99))
	fmt.Printf("Two-hop recommend: p50=%v p95=%v p99=%v\n", pct(recRecs, 0.50), pct(recRecs, 0.95), pct(recRecs, 0.99))
}

// Command feedbench seeds a follower graph and measures follow and feed latency.
//
// Tunables come from the environment: AUTHORS, POSTS (per author), READERS,
// CONC (follow workers) and PAGE (feed page size).
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/lablinker/config"
	"github.com/d60-Lab/lablinker/internal/cache"
	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/internal/service"
	"github.com/d60-Lab/lablinker/pkg/database"
	"github.com/d60-Lab/lablinker/pkg/media"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	if err := database.Migrate(db); err != nil {
		panic(err)
	}

	authors := envInt("AUTHORS", 200)
	posts := envInt("POSTS", 20)
	readers := envInt("READERS", 50)
	conc := envInt("CONC", 8)
	pageSize := envInt("PAGE", 20)

	accountRepo := repository.NewAccountRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	bookmarkRepo := repository.NewBookmarkRepository(db)

	rdb := must(database.InitRedis(ctx, cfg.Redis))
	profiles := cache.NewProfileCache(rdb, accountRepo, cfg.Redis.TTL)
	resolver := media.NewStaticResolver(cfg.Media.BaseURL)
	relSvc := service.NewRelationshipService(followRepo, accountRepo, profiles, resolver)
	feedSvc := service.NewFeedService(postRepo, likeRepo, commentRepo, bookmarkRepo, profiles, resolver)

	// seed accounts
	run := uuid.NewString()[:8]
	newAccounts := func(prefix string, n int) []model.Account {
		out := make([]model.Account, n)
		for i := range out {
			id := uuid.NewString()
			out[i] = model.Account{
				ID:       id,
				Username: fmt.Sprintf("%s-%s-%d", prefix, run, i),
				Email:    fmt.Sprintf("%s-%s-%d@bench.local", prefix, run, i),
			}
		}
		return out
	}
	authorRows := newAccounts("author", authors)
	readerRows := newAccounts("reader", readers)
	if err := db.CreateInBatches(&authorRows, 1000).Error; err != nil {
		panic(err)
	}
	if err := db.CreateInBatches(&readerRows, 1000).Error; err != nil {
		panic(err)
	}

	// seed posts, spread over the last day
	base := time.Now().Add(-24 * time.Hour)
	postRows := make([]model.Post, 0, authors*posts)
	for i, a := range authorRows {
		for j := 0; j < posts; j++ {
			at := base.Add(time.Duration(i*posts+j) * time.Second)
			postRows = append(postRows, model.Post{
				ID:        uuid.NewString(),
				AuthorID:  a.ID,
				Content:   fmt.Sprintf("post %d by %s", j, a.Username),
				CreatedAt: at,
				UpdatedAt: at,
			})
		}
	}
	if err := db.Omit("Author", "Category", "Tags", "Files").CreateInBatches(&postRows, 1000).Error; err != nil {
		panic(err)
	}

	// every reader follows every author, CONC workers
	type edge struct{ follower, followee string }
	feed := make(chan edge, readers*authors)
	for _, r := range readerRows {
		for _, a := range authorRows {
			feed <- edge{r.ID, a.ID}
		}
	}
	close(feed)

	var (
		mu         sync.Mutex
		followRecs = make([]time.Duration, 0, readers*authors)
		wg         sync.WaitGroup
	)
	t0 := time.Now()
	for w := 0; w < conc; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]time.Duration, 0, 1024)
			for e := range feed {
				st := time.Now()
				if _, err := relSvc.Follow(ctx, e.follower, e.followee); err != nil {
					panic(err)
				}
				local = append(local, time.Since(st))
			}
			mu.Lock()
			followRecs = append(followRecs, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()
	followDur := time.Since(t0)

	// feed reads: first page and a deep page for each reader
	first := make([]time.Duration, 0, readers)
	deep := make([]time.Duration, 0, readers)
	deepPage := authors * posts / pageSize / 2
	if deepPage < 2 {
		deepPage = 2
	}
	for _, r := range readerRows {
		st := time.Now()
		page1, err := feedSvc.Compose(ctx, r.ID, 1, pageSize)
		if err != nil {
			panic(err)
		}
		first = append(first, time.Since(st))
		if len(page1) == 0 {
			panic("empty feed for " + r.ID)
		}

		st = time.Now()
		if _, err := feedSvc.Compose(ctx, r.ID, deepPage, pageSize); err != nil {
			panic(err)
		}
		deep = append(deep, time.Since(st))
	}

	fmt.Printf("AUTHORS=%d POSTS=%d READERS=%d CONC=%d PAGE=%d redis=%v\n",
		authors, posts, readers, conc, pageSize, rdb != nil)
	fmt.Printf("Follow: total=%v per op=%v p50=%v p95=%v p99=%v\n",
		followDur, followDur/time.Duration(len(followRecs)), pct(followRecs, 0.50), pct(followRecs, 0.95), pct(followRecs, 0.99))
	fmt.Printf("Feed page 1: p50=%v p95=%v p99=%v\n", pct(first, 0.50), pct(first, 0.95), pct(first, 0.99))
	fmt.Printf("Feed page %d: p50=%v p95=%v p99=%v\n", deepPage, pct(deep, 0.50), pct(deep, 0.95), pct(deep, 0.99))
	fmt.Printf("Profile bulk loads from DB: %d\n", profiles.BulkLoads())
}

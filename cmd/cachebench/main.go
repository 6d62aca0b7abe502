// Command cachebench compares follower-list latency with and without the
// redis-backed account snapshot cache.
package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/lablinker/config"
	"github.com/d60-Lab/lablinker/internal/cache"
	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/internal/service"
	"github.com/d60-Lab/lablinker/pkg/database"
	"github.com/d60-Lab/lablinker/pkg/media"
)

type request struct {
	celeb string
	page  int
	size  int
}

type scenarioResult struct {
	durations   []time.Duration
	bulkLoads   int64
	cacheKeys   int64
	memoryBytes int64
}

func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	mustDo(database.Migrate(db))

	userCount := 20000
	if s := os.Getenv("USERS"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			userCount = v
		}
	}
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = cfg.Redis.Addr
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("connect redis at %s: %v", redisAddr, err))
	}

	fmt.Println("Setting up test data...")
	run := uuid.NewString()[:8]
	accounts := make([]model.Account, userCount)
	for i := range accounts {
		accounts[i] = model.Account{
			ID:        uuid.NewString(),
			Username:  fmt.Sprintf("cb-%s-%d", run, i),
			Email:     fmt.Sprintf("cb-%s-%d@bench.local", run, i),
			FirstName: fmt.Sprintf("First%d", i),
			LastName:  fmt.Sprintf("Last%d", i),
		}
	}
	mustDo(db.CreateInBatches(&accounts, 1000).Error)

	// 三个被关注者，粉丝两两重叠一半
	celebs := accounts[:3]
	half := userCount / 2
	base := time.Now()
	var follows []model.Follow
	for c, offset := range []int{0, userCount / 4, userCount * 3 / 8} {
		for i := 0; i < half; i++ {
			fan := accounts[(i+offset)%userCount]
			if fan.ID == celebs[c].ID {
				continue
			}
			follows = append(follows, model.Follow{
				ID:         uuid.NewString(),
				FollowerID: fan.ID,
				FolloweeID: celebs[c].ID,
				CreatedAt:  base.Add(-time.Duration(i) * time.Second),
			})
		}
	}
	mustDo(db.Omit("Follower", "Followee").CreateInBatches(&follows, 1000).Error)
	fmt.Println("Test data ready: 3 accounts with overlapping followers")

	accountRepo := repository.NewAccountRepository(db)
	followRepo := repository.NewFollowRepository(db)
	resolver := media.NewStaticResolver(cfg.Media.BaseURL)

	reqs := makeRequests(celebs, 9000)

	newRel := func(p *cache.ProfileCache) service.RelationshipService {
		return service.NewRelationshipService(followRepo, accountRepo, p, resolver)
	}
	noCache := runScenario(ctx, client, nil, reqs, false, newRel, accountRepo)
	cold := runScenario(ctx, client, client, reqs, false, newRel, accountRepo)
	warm := runScenario(ctx, client, client, reqs, true, newRel, accountRepo)

	fmt.Printf("\nFollower list latency (%d req, %d accounts)\n", len(reqs), userCount)
	for _, row := range []struct {
		name string
		res  scenarioResult
	}{{"No cache", noCache}, {"Snapshot cold", cold}, {"Snapshot warm", warm}} {
		fmt.Printf("%-14s avg=%v p95=%v p99=%v db_bulk=%d cache_keys=%d mem=%s\n",
			row.name, avg(row.res.durations), pct(row.res.durations, 0.95), pct(row.res.durations, 0.99),
			row.res.bulkLoads, row.res.cacheKeys, formatBytes(row.res.memoryBytes))
	}
}

func runScenario(
	ctx context.Context,
	admin *redis.Client,
	cacheClient *redis.Client,
	reqs []request,
	warm bool,
	build func(*cache.ProfileCache) service.RelationshipService,
	loader cache.AccountLoader,
) scenarioResult {
	admin.FlushDB(ctx)
	profiles := cache.NewProfileCache(cacheClient, loader, 10*time.Minute)
	svc := build(profiles)
	call := func(r request) {
		if _, err := svc.ListFollowers(ctx, r.celeb, r.page, r.size); err != nil {
			panic(err)
		}
	}

	if warm {
		fmt.Print("  Warming cache...")
		for _, r := range reqs {
			call(r)
		}
		fmt.Println(" done")
	}
	before := profiles.BulkLoads()

	fmt.Print("  Running benchmark...")
	out := make([]time.Duration, 0, len(reqs))
	for _, r := range reqs {
		start := time.Now()
		call(r)
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")

	keys, _ := admin.DBSize(ctx).Result()
	var mem int64
	if info, err := admin.Info(ctx, "memory").Result(); err == nil {
		mem = parseRedisMemory(info)
	}
	return scenarioResult{
		durations:   out,
		bulkLoads:   profiles.BulkLoads() - before,
		cacheKeys:   keys,
		memoryBytes: mem,
	}
}

// parseRedisMemory extracts used_memory from Redis INFO
func parseRedisMemory(info string) int64 {
	for _, line := range strings.Split(info, "\n") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(line), "used_memory:"); ok {
			n, _ := strconv.ParseInt(v, 10, 64)
			return n
		}
	}
	return 0
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func makeRequests(celebs []model.Account, n int) []request {
	sizes := []int{20, 40, 60}
	out := make([]request, n)
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < n; i++ {
		page := 1
		if rnd.Float64() > 0.72 {
			// 深翻页
			page = 2 + rnd.Intn(120)
		}
		out[i] = request{
			celeb: celebs[i%len(celebs)].ID,
			page:  page,
			size:  sizes[rnd.Intn(len(sizes))],
		}
	}
	return out
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

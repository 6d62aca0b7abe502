package repository

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/internal/testutil"
)

func TestFollowRepository_CreateIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()
	a, b := testutil.CreateAccount(t, db), testutil.CreateAccount(t, db)

	created, err := repo.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, created)

	n, err := repo.CountFollowers(ctx, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestFollowRepository_ConcurrentCreateStoresOneEdge(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()
	a, b := testutil.CreateAccount(t, db), testutil.CreateAccount(t, db)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, a.ID, b.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	var cnt int64
	require.NoError(t, db.Model(&model.Follow{}).Count(&cnt).Error)
	assert.EqualValues(t, 1, cnt)
}

func TestFollowRepository_DeleteAndCounts(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()
	a, b := testutil.CreateAccount(t, db), testutil.CreateAccount(t, db)

	removed, err := repo.Delete(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.Create(ctx, a.ID, b.ID)
	require.NoError(t, err)
	ok, err := repo.Exists(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err = repo.Delete(ctx, a.ID, b.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	followers, err := repo.CountFollowers(ctx, b.ID)
	require.NoError(t, err)
	following, err := repo.CountFollowings(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, followers)
	assert.Zero(t, following)
}

func TestFollowRepository_ListMostRecentFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewFollowRepository(db)
	ctx := context.Background()
	target := testutil.CreateAccount(t, db)

	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 3; i++ {
		f := testutil.CreateAccount(t, db)
		ids = append(ids, f.ID)
		require.NoError(t, db.Create(&model.Follow{
			ID: fmt.Sprintf("f%d", i), FollowerID: f.ID, FolloweeID: target.ID,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}

	res, err := repo.ListFollowers(ctx, target.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, res, 3)
	for i, f := range res {
		assert.Equal(t, ids[2-i], f.FollowerID)
	}

	res, err = repo.ListFollowings(ctx, ids[0], 0, 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, target.ID, res[0].FolloweeID)

	res, err = repo.ListFollowers(ctx, target.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, ids[1], res[0].FollowerID)
}

func setupRelBenchDB(b *testing.B, n int) ([]*model.Account, FollowRepository) {
	db := testutil.NewTestDB(b)
	accounts := make([]*model.Account, n)
	for i := range accounts {
		accounts[i] = testutil.CreateAccount(b, db)
	}
	return accounts, NewFollowRepository(db)
}

func BenchmarkFollowWrite(b *testing.B) {
	accounts, repo := setupRelBenchDB(b, 1000)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := accounts[rng.Intn(len(accounts))].ID
		to := accounts[rng.Intn(len(accounts))].ID
		if from == to {
			continue
		}
		_, _ = repo.Create(ctx, from, to)
	}
}

func BenchmarkQueryFollowers(b *testing.B) {
	// 构造：u0 有 N 个粉丝，同时 u0 也关注这 N 个账号
	const N = 2000
	accounts, repo := setupRelBenchDB(b, N+1)
	ctx := context.Background()
	u0 := accounts[0]
	for _, a := range accounts[1:] {
		_, _ = repo.Create(ctx, a.ID, u0.ID)
		_, _ = repo.Create(ctx, u0.ID, a.ID)
	}

	b.ResetTimer()
	b.Run("ListFollowers", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = repo.ListFollowers(ctx, u0.ID, 0, 50)
		}
	})
	b.Run("ListFollowings", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = repo.ListFollowings(ctx, u0.ID, 0, 50)
		}
	})
	b.Run("CountFollowers", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = repo.CountFollowers(ctx, u0.ID)
		}
	})
}

// Package cache keeps read-mostly account snapshots in redis.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/pkg/logger"
)

// AccountSnapshot contains the public account fields rendered in lists and profiles.
type AccountSnapshot struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Profession string    `json:"profession"`
	Country    string    `json:"country"`
	Avatar     string    `json:"avatar"`
	IsStaff    bool      `json:"is_staff"`
	CreatedAt  time.Time `json:"created_at"`
}

func SnapshotOf(a *model.Account) AccountSnapshot {
	return AccountSnapshot{
		ID:         a.ID,
		Email:      a.Email,
		Username:   a.Username,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Profession: a.Profession,
		Country:    a.Country,
		Avatar:     a.Avatar,
		IsStaff:    a.IsStaff,
		CreatedAt:  a.CreatedAt,
	}
}

// AccountLoader is the primary store; repository.AccountRepository satisfies it.
type AccountLoader interface {
	ListByIDs(ctx context.Context, ids []string) ([]*model.Account, error)
}

// ProfileCache resolves account ids to snapshots, reading through redis when a
// client is configured. Counts are never cached here.
type ProfileCache struct {
	client *redis.Client
	loader AccountLoader
	ttl    time.Duration

	bulkLoads atomic.Int64
}

// NewProfileCache builds a cache; a nil client sends every lookup to loader.
func NewProfileCache(client *redis.Client, loader AccountLoader, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ProfileCache{client: client, loader: loader, ttl: ttl}
}

func key(id string) string { return fmt.Sprintf("account:%s", id) }

// Get returns snapshots in the order of ids; unknown ids are skipped.
func (c *ProfileCache) Get(ctx context.Context, ids []string) ([]AccountSnapshot, error) {
	if len(ids) == 0 {
		return []AccountSnapshot{}, nil
	}

	found := make(map[string]AccountSnapshot, len(ids))
	if c.client != nil {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = key(id)
		}
		vals, err := c.client.MGet(ctx, keys...).Result()
		if err != nil {
			logger.Warn("profile cache mget failed", zap.Error(err))
		}
		for i, v := range vals {
			str, ok := v.(string)
			if !ok {
				continue
			}
			var snap AccountSnapshot
			if uErr := json.Unmarshal([]byte(str), &snap); uErr == nil {
				found[ids[i]] = snap
			}
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		c.bulkLoads.Add(1)
		accounts, err := c.loader.ListByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		var pipe redis.Pipeliner
		if c.client != nil {
			pipe = c.client.Pipeline()
		}
		for _, a := range accounts {
			snap := SnapshotOf(a)
			found[a.ID] = snap
			if pipe == nil {
				continue
			}
			if payload, err := json.Marshal(snap); err == nil {
				pipe.Set(ctx, key(a.ID), payload, c.ttl)
			}
		}
		if pipe != nil && pipe.Len() > 0 {
			if _, err := pipe.Exec(ctx); err != nil {
				logger.Warn("profile cache fill failed", zap.Error(err))
			}
		}
	}

	result := make([]AccountSnapshot, 0, len(ids))
	for _, id := range ids {
		if snap, ok := found[id]; ok {
			result = append(result, snap)
		}
	}
	return result, nil
}

// GetOne returns false when the account does not exist.
func (c *ProfileCache) GetOne(ctx context.Context, id string) (AccountSnapshot, bool, error) {
	res, err := c.Get(ctx, []string{id})
	if err != nil || len(res) == 0 {
		return AccountSnapshot{}, false, err
	}
	return res[0], true, nil
}

// Invalidate drops cached snapshots after a profile change or deletion.
func (c *ProfileCache) Invalidate(ctx context.Context, ids ...string) error {
	if c.client == nil || len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	return c.client.Del(ctx, keys...).Err()
}

// BulkLoads reports how many times the loader was hit.
func (c *ProfileCache) BulkLoads() int64 { return c.bulkLoads.Load() }

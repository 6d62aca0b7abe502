package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/lablinker/internal/cache"
	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/pkg/logger"
	"github.com/d60-Lab/lablinker/pkg/media"
)

// AccountSummary 列表中展示的账号信息
type AccountSummary struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Profession string `json:"profession"`
	Country    string `json:"country"`
	AvatarURL  string `json:"avatar_url"`
}

// Profile 账号详情，计数为查询时的实时值
type Profile struct {
	AccountSummary
	Email          string    `json:"email"`
	IsStaff        bool      `json:"is_staff"`
	FollowersCount int64     `json:"followers_count"`
	FollowingCount int64     `json:"following_count"`
	IsFollowing    bool      `json:"is_following"`
	CreatedAt      time.Time `json:"created_at"`
}

// directory resolves account ids to summaries through the profile cache.
type directory struct {
	profiles *cache.ProfileCache
	media    media.Resolver
}

func newDirectory(profiles *cache.ProfileCache, resolver media.Resolver) *directory {
	return &directory{profiles: profiles, media: resolver}
}

func (d *directory) url(ctx context.Context, ref string) string {
	if ref == "" || d.media == nil {
		return ""
	}
	u, err := d.media.URL(ctx, ref)
	if err != nil {
		logger.Warn("resolve media url failed", zap.String("ref", ref), zap.Error(err))
		return ""
	}
	return u
}

func (d *directory) summaryOf(ctx context.Context, s cache.AccountSnapshot) AccountSummary {
	return AccountSummary{
		ID:         s.ID,
		Username:   s.Username,
		FirstName:  s.FirstName,
		LastName:   s.LastName,
		Profession: s.Profession,
		Country:    s.Country,
		AvatarURL:  d.url(ctx, s.Avatar),
	}
}

func (d *directory) summaryOfModel(ctx context.Context, a *model.Account) AccountSummary {
	if a == nil {
		return AccountSummary{}
	}
	return d.summaryOf(ctx, cache.SnapshotOf(a))
}

// summaries keeps the order of ids and skips unknown accounts.
func (d *directory) summaries(ctx context.Context, ids []string) ([]AccountSummary, error) {
	snaps, err := d.profiles.Get(ctx, ids)
	if err != nil {
		return nil, internal("load accounts", err)
	}
	out := make([]AccountSummary, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, d.summaryOf(ctx, s))
	}
	return out, nil
}

package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/d60-Lab/lablinker/internal/cache"
	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/pkg/logger"
	"github.com/d60-Lab/lablinker/pkg/media"
)

// ProfilePatch 部分更新；nil 字段保持不变
type ProfilePatch struct {
	Username   *string `json:"username" binding:"omitempty,min=1,max=150"`
	FirstName  *string `json:"first_name" binding:"omitempty,max=150"`
	LastName   *string `json:"last_name" binding:"omitempty,max=150"`
	Profession *string `json:"profession" binding:"omitempty,max=100"`
	Country    *string `json:"country" binding:"omitempty,max=100"`
	Avatar     *string `json:"avatar" binding:"omitempty,max=255"`
}

func (p ProfilePatch) fields() (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if p.Username != nil {
		u := strings.TrimSpace(*p.Username)
		if u == "" || len(u) > 150 {
			return nil, invalid("username must be 1-150 characters")
		}
		out["username"] = u
	}
	set := func(col string, v *string, max int) error {
		if v == nil {
			return nil
		}
		if len(*v) > max {
			return invalid("%s must be at most %d characters", col, max)
		}
		out[col] = *v
		return nil
	}
	for _, f := range []struct {
		col string
		v   *string
		max int
	}{
		{"first_name", p.FirstName, 150},
		{"last_name", p.LastName, 150},
		{"profession", p.Profession, 100},
		{"country", p.Country, 100},
		{"avatar", p.Avatar, 255},
	} {
		if err := set(f.col, f.v, f.max); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AccountService 账号资料
type AccountService interface {
	List(ctx context.Context, page, pageSize int) ([]AccountSummary, error)
	GetProfile(ctx context.Context, viewerID, id string) (*Profile, error)
	UpdateProfile(ctx context.Context, actor Actor, id string, patch ProfilePatch) (*Profile, error)
	Delete(ctx context.Context, actor Actor, id string) error
	// Resolve 把 token 中的账号 ID 还原为 Actor；账号已删除时返回 NotFound
	Resolve(ctx context.Context, id string) (Actor, error)
}

type accountService struct {
	accounts repository.AccountRepository
	follows  repository.FollowRepository
	profiles *cache.ProfileCache
	dir      *directory
}

func NewAccountService(
	accounts repository.AccountRepository,
	follows repository.FollowRepository,
	profiles *cache.ProfileCache,
	resolver media.Resolver,
) AccountService {
	return &accountService{
		accounts: accounts,
		follows:  follows,
		profiles: profiles,
		dir:      newDirectory(profiles, resolver),
	}
}

func (s *accountService) List(ctx context.Context, page, pageSize int) ([]AccountSummary, error) {
	_, size, offset := normalizePage(page, pageSize)
	items, err := s.accounts.List(ctx, offset, size)
	if err != nil {
		return nil, internal("list accounts", err)
	}
	res := make([]AccountSummary, len(items))
	for i, a := range items {
		res[i] = s.dir.summaryOfModel(ctx, a)
	}
	return res, nil
}

func (s *accountService) GetProfile(ctx context.Context, viewerID, id string) (*Profile, error) {
	snap, ok, err := s.profiles.GetOne(ctx, id)
	if err != nil {
		return nil, internal("load account", err)
	}
	if !ok {
		return nil, ErrAccountNotFound
	}

	// 计数直接查关系表，不走缓存
	followers, err := s.follows.CountFollowers(ctx, id)
	if err != nil {
		return nil, internal("count followers", err)
	}
	following, err := s.follows.CountFollowings(ctx, id)
	if err != nil {
		return nil, internal("count following", err)
	}
	var isFollowing bool
	if viewerID != "" && viewerID != id {
		if isFollowing, err = s.follows.Exists(ctx, viewerID, id); err != nil {
			return nil, internal("check follow", err)
		}
	}

	return &Profile{
		AccountSummary: s.dir.summaryOf(ctx, snap),
		Email:          snap.Email,
		IsStaff:        snap.IsStaff,
		FollowersCount: followers,
		FollowingCount: following,
		IsFollowing:    isFollowing,
		CreatedAt:      snap.CreatedAt,
	}, nil
}

func (s *accountService) UpdateProfile(ctx context.Context, actor Actor, id string, patch ProfilePatch) (*Profile, error) {
	if !actor.CanModify(id) {
		return nil, ErrForbidden
	}
	fields, err := patch.fields()
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := s.accounts.Update(ctx, id, fields); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, ErrUsernameTaken
			}
			return nil, notFoundOr(err, ErrAccountNotFound, "update account")
		}
		s.invalidate(ctx, id)
	}
	return s.GetProfile(ctx, actor.ID, id)
}

func (s *accountService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.CanModify(id) {
		return ErrForbidden
	}
	if err := s.accounts.Delete(ctx, id); err != nil {
		return notFoundOr(err, ErrAccountNotFound, "delete account")
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *accountService) Resolve(ctx context.Context, id string) (Actor, error) {
	snap, ok, err := s.profiles.GetOne(ctx, id)
	if err != nil {
		return Actor{}, internal("load account", err)
	}
	if !ok {
		return Actor{}, ErrAccountNotFound
	}
	return Actor{ID: snap.ID, IsStaff: snap.IsStaff}, nil
}

func (s *accountService) invalidate(ctx context.Context, id string) {
	if err := s.profiles.Invalidate(ctx, id); err != nil {
		logger.Warn("invalidate profile cache failed", zap.String("account_id", id), zap.Error(err))
	}
}

package service

import (
	"context"

	"github.com/d60-Lab/lablinker/internal/cache"
	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/pkg/media"
)

// RelationshipService 关系链服务
type RelationshipService interface {
	// Follow 返回 false 表示关系已存在（幂等）
	Follow(ctx context.Context, followerID, followeeID string) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID string) error
	ListFollowers(ctx context.Context, accountID string, page, pageSize int) ([]AccountSummary, error)
	ListFollowing(ctx context.Context, accountID string, page, pageSize int) ([]AccountSummary, error)
	Counts(ctx context.Context, accountID string) (followers, following int64, err error)
}

type relationshipService struct {
	followRepo  repository.FollowRepository
	accountRepo repository.AccountRepository
	dir         *directory
}

func NewRelationshipService(
	followRepo repository.FollowRepository,
	accountRepo repository.AccountRepository,
	profiles *cache.ProfileCache,
	resolver media.Resolver,
) RelationshipService {
	return &relationshipService{followRepo: followRepo, accountRepo: accountRepo, dir: newDirectory(profiles, resolver)}
}

func (s *relationshipService) ensureAccount(ctx context.Context, id string) error {
	_, err := s.accountRepo.GetByID(ctx, id)
	return notFoundOr(err, ErrAccountNotFound, "load account")
}

func (s *relationshipService) Follow(ctx context.Context, followerID, followeeID string) (bool, error) {
	if followerID == followeeID {
		return false, ErrFollowSelf
	}
	if err := s.ensureAccount(ctx, followeeID); err != nil {
		return false, err
	}
	created, err := s.followRepo.Create(ctx, followerID, followeeID)
	if err != nil {
		return false, internal("create follow", err)
	}
	return created, nil
}

func (s *relationshipService) Unfollow(ctx context.Context, followerID, followeeID string) error {
	if err := s.ensureAccount(ctx, followeeID); err != nil {
		return err
	}
	removed, err := s.followRepo.Delete(ctx, followerID, followeeID)
	if err != nil {
		return internal("delete follow", err)
	}
	if !removed {
		return ErrNotFollowing
	}
	return nil
}

func (s *relationshipService) ListFollowing(ctx context.Context, accountID string, page, pageSize int) ([]AccountSummary, error) {
	if err := s.ensureAccount(ctx, accountID); err != nil {
		return nil, err
	}
	_, size, offset := normalizePage(page, pageSize)
	items, err := s.followRepo.ListFollowings(ctx, accountID, offset, size)
	if err != nil {
		return nil, internal("list following", err)
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.FolloweeID
	}
	return s.dir.summaries(ctx, ids)
}

func (s *relationshipService) ListFollowers(ctx context.Context, accountID string, page, pageSize int) ([]AccountSummary, error) {
	if err := s.ensureAccount(ctx, accountID); err != nil {
		return nil, err
	}
	_, size, offset := normalizePage(page, pageSize)
	items, err := s.followRepo.ListFollowers(ctx, accountID, offset, size)
	if err != nil {
		return nil, internal("list followers", err)
	}
	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.FollowerID
	}
	return s.dir.summaries(ctx, ids)
}

func (s *relationshipService) Counts(ctx context.Context, accountID string) (int64, int64, error) {
	followers, err := s.followRepo.CountFollowers(ctx, accountID)
	if err != nil {
		return 0, 0, internal("count followers", err)
	}
	following, err := s.followRepo.CountFollowings(ctx, accountID)
	if err != nil {
		return 0, 0, internal("count following", err)
	}
	return followers, following, nil
}

package service

import (
	"context"

	"github.com/d60-Lab/lablinker/internal/cache"
	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/pkg/media"
)

// LikeService 点赞开关
type LikeService interface {
	// Toggle 返回 true 表示本次为点赞，false 表示取消点赞
	Toggle(ctx context.Context, accountID, postID string) (bool, error)
	ListLikers(ctx context.Context, postID string) ([]AccountSummary, error)
}

type likeService struct {
	likes repository.LikeRepository
	posts repository.PostRepository
	dir   *directory
}

func NewLikeService(
	likes repository.LikeRepository,
	posts repository.PostRepository,
	profiles *cache.ProfileCache,
	resolver media.Resolver,
) LikeService {
	return &likeService{likes: likes, posts: posts, dir: newDirectory(profiles, resolver)}
}

func (s *likeService) ensurePost(ctx context.Context, postID string) error {
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return internal("load post", err)
	}
	if !ok {
		return ErrPostNotFound
	}
	return nil
}

func (s *likeService) Toggle(ctx context.Context, accountID, postID string) (bool, error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return false, err
	}
	liked, err := s.likes.Toggle(ctx, accountID, postID)
	if err != nil {
		return false, internal("toggle like", err)
	}
	return liked, nil
}

func (s *likeService) ListLikers(ctx context.Context, postID string) ([]AccountSummary, error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	likes, err := s.likes.ListByPost(ctx, postID)
	if err != nil {
		return nil, internal("list likes", err)
	}
	ids := make([]string, len(likes))
	for i, l := range likes {
		ids[i] = l.AccountID
	}
	return s.dir.summaries(ctx, ids)
}

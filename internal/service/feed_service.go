package service

import (
	"context"

	"github.com/d60-Lab/lablinker/internal/cache"
	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/pkg/media"
)

// FeedService 个人时间线：关注对象的帖子，严格按时间倒序（id 作为次序键）
type FeedService interface {
	Compose(ctx context.Context, accountID string, page, pageSize int) ([]*PostView, error)
}

type feedService struct {
	posts  repository.PostRepository
	viewer *postViewer
}

func NewFeedService(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	comments repository.CommentRepository,
	bookmarks repository.BookmarkRepository,
	profiles *cache.ProfileCache,
	resolver media.Resolver,
) FeedService {
	return &feedService{
		posts:  posts,
		viewer: &postViewer{likes: likes, comments: comments, bookmarks: bookmarks, dir: newDirectory(profiles, resolver)},
	}
}

// Compose 拉模式实时查询；未关注任何人时返回空列表
func (s *feedService) Compose(ctx context.Context, accountID string, page, pageSize int) ([]*PostView, error) {
	_, size, offset := normalizePage(page, pageSize)
	posts, err := s.posts.ListFeed(ctx, accountID, offset, size)
	if err != nil {
		return nil, internal("compose feed", err)
	}
	return s.viewer.views(ctx, accountID, posts)
}

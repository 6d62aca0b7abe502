package service

import (
	"context"
	"errors"

	"github.com/d60-Lab/lablinker/internal/cache"
	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/pkg/media"
)

// BookmarkService 收藏
type BookmarkService interface {
	Bookmark(ctx context.Context, accountID, postID string) error
	Unbookmark(ctx context.Context, accountID, postID string) error
	List(ctx context.Context, accountID string, page, pageSize int) ([]*PostView, error)
}

type bookmarkService struct {
	bookmarks repository.BookmarkRepository
	posts     repository.PostRepository
	viewer    *postViewer
}

func NewBookmarkService(
	bookmarks repository.BookmarkRepository,
	posts repository.PostRepository,
	likes repository.LikeRepository,
	comments repository.CommentRepository,
	profiles *cache.ProfileCache,
	resolver media.Resolver,
) BookmarkService {
	return &bookmarkService{
		bookmarks: bookmarks,
		posts:     posts,
		viewer:    &postViewer{likes: likes, comments: comments, bookmarks: bookmarks, dir: newDirectory(profiles, resolver)},
	}
}

func (s *bookmarkService) Bookmark(ctx context.Context, accountID, postID string) error {
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return internal("load post", err)
	}
	if !ok {
		return ErrPostNotFound
	}
	if err := s.bookmarks.Create(ctx, accountID, postID); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrAlreadyBookmarked
		}
		return internal("create bookmark", err)
	}
	return nil
}

func (s *bookmarkService) Unbookmark(ctx context.Context, accountID, postID string) error {
	removed, err := s.bookmarks.Delete(ctx, accountID, postID)
	if err != nil {
		return internal("delete bookmark", err)
	}
	if !removed {
		return ErrBookmarkNotFound
	}
	return nil
}

// List 按收藏时间倒序
func (s *bookmarkService) List(ctx context.Context, accountID string, page, pageSize int) ([]*PostView, error) {
	_, size, offset := normalizePage(page, pageSize)
	marks, err := s.bookmarks.ListByAccount(ctx, accountID, offset, size)
	if err != nil {
		return nil, internal("list bookmarks", err)
	}
	ids := make([]string, len(marks))
	for i, b := range marks {
		ids[i] = b.PostID
	}
	posts, err := s.posts.ListByIDs(ctx, ids)
	if err != nil {
		return nil, internal("load posts", err)
	}
	byID := make(map[string]*model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]*model.Post, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return s.viewer.views(ctx, accountID, ordered)
}

package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/d60-Lab/lablinker/internal/cache"
	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/pkg/media"
)

const maxTagLen = 50

// PostInput 创建帖子
type PostInput struct {
	Content    string   `json:"content"`
	CategoryID *string  `json:"category_id"`
	Tags       []string `json:"tags"`
	Files      []string `json:"files"`
}

// PostUpdate 部分更新；CategoryID 为空字符串表示清除分类，Files 追加到已有附件之后
type PostUpdate struct {
	Content    *string   `json:"content"`
	CategoryID *string   `json:"category_id"`
	Tags       *[]string `json:"tags"`
	Files      []string  `json:"files"`
}

// PostService 帖子
type PostService interface {
	Create(ctx context.Context, actor Actor, in PostInput) (*PostView, error)
	Get(ctx context.Context, viewerID, id string) (*PostView, error)
	List(ctx context.Context, viewerID string, page, pageSize int) ([]*PostView, error)
	ListByCategory(ctx context.Context, viewerID, categoryID string, page, pageSize int) ([]*PostView, error)
	Update(ctx context.Context, actor Actor, id string, in PostUpdate) (*PostView, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type postService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	viewer     *postViewer
}

func NewPostService(
	posts repository.PostRepository,
	categories repository.CategoryRepository,
	likes repository.LikeRepository,
	comments repository.CommentRepository,
	bookmarks repository.BookmarkRepository,
	profiles *cache.ProfileCache,
	resolver media.Resolver,
) PostService {
	return &postService{
		posts:      posts,
		categories: categories,
		viewer:     &postViewer{likes: likes, comments: comments, bookmarks: bookmarks, dir: newDirectory(profiles, resolver)},
	}
}

func checkTags(tags []string) error {
	for _, t := range tags {
		if len(strings.TrimSpace(t)) > maxTagLen {
			return invalid("tag %q exceeds %d characters", t, maxTagLen)
		}
	}
	return nil
}

func checkFiles(files []string) error {
	for _, f := range files {
		if strings.TrimSpace(f) == "" || len(f) > 255 {
			return invalid("file reference must be 1-255 characters")
		}
	}
	return nil
}

func (s *postService) ensureCategory(ctx context.Context, id string) error {
	_, err := s.categories.GetByID(ctx, id)
	return notFoundOr(err, ErrCategoryNotFound, "load category")
}

func (s *postService) Create(ctx context.Context, actor Actor, in PostInput) (*PostView, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, invalid("content is required")
	}
	if err := checkTags(in.Tags); err != nil {
		return nil, err
	}
	if err := checkFiles(in.Files); err != nil {
		return nil, err
	}
	var categoryID *string
	if in.CategoryID != nil && *in.CategoryID != "" {
		if err := s.ensureCategory(ctx, *in.CategoryID); err != nil {
			return nil, err
		}
		categoryID = in.CategoryID
	}

	p := &model.Post{ID: uuid.New().String(), AuthorID: actor.ID, CategoryID: categoryID, Content: in.Content}
	if err := s.posts.Create(ctx, p, in.Tags, in.Files); err != nil {
		return nil, internal("create post", err)
	}
	return s.Get(ctx, actor.ID, p.ID)
}

func (s *postService) Get(ctx context.Context, viewerID, id string) (*PostView, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrPostNotFound, "load post")
	}
	return s.viewer.view(ctx, viewerID, p)
}

func (s *postService) List(ctx context.Context, viewerID string, page, pageSize int) ([]*PostView, error) {
	_, size, offset := normalizePage(page, pageSize)
	posts, err := s.posts.List(ctx, offset, size)
	if err != nil {
		return nil, internal("list posts", err)
	}
	return s.viewer.views(ctx, viewerID, posts)
}

func (s *postService) ListByCategory(ctx context.Context, viewerID, categoryID string, page, pageSize int) ([]*PostView, error) {
	if err := s.ensureCategory(ctx, categoryID); err != nil {
		return nil, err
	}
	_, size, offset := normalizePage(page, pageSize)
	posts, err := s.posts.ListByCategory(ctx, categoryID, offset, size)
	if err != nil {
		return nil, internal("list posts", err)
	}
	return s.viewer.views(ctx, viewerID, posts)
}

func (s *postService) Update(ctx context.Context, actor Actor, id string, in PostUpdate) (*PostView, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrPostNotFound, "load post")
	}
	// 只有作者本人可以编辑
	if p.AuthorID != actor.ID {
		return nil, ErrForbidden
	}

	var patch repository.PostPatch
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, invalid("content cannot be empty")
		}
		patch.Content = in.Content
	}
	if in.CategoryID != nil {
		var cid *string
		if *in.CategoryID != "" {
			if err := s.ensureCategory(ctx, *in.CategoryID); err != nil {
				return nil, err
			}
			cid = in.CategoryID
		}
		patch.CategoryID = &cid
	}
	if in.Tags != nil {
		if err := checkTags(*in.Tags); err != nil {
			return nil, err
		}
		patch.Tags = in.Tags
	}
	if err := checkFiles(in.Files); err != nil {
		return nil, err
	}
	patch.NewFiles = in.Files

	if err := s.posts.Update(ctx, id, patch); err != nil {
		return nil, notFoundOr(err, ErrPostNotFound, "update post")
	}
	return s.Get(ctx, actor.ID, id)
}

func (s *postService) Delete(ctx context.Context, actor Actor, id string) error {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, ErrPostNotFound, "load post")
	}
	if !actor.CanModify(p.AuthorID) {
		return ErrForbidden
	}
	return notFoundOr(s.posts.Delete(ctx, id), ErrPostNotFound, "delete post")
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/lablinker/internal/cache"
	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/pkg/markup"
	"github.com/d60-Lab/lablinker/pkg/media"
)

// CommentNode 评论及其全部回复
type CommentNode struct {
	ID          string         `json:"id"`
	PostID      string         `json:"post_id"`
	ParentID    *string        `json:"parent_id"`
	Author      AccountSummary `json:"author"`
	Content     string         `json:"content"`
	ContentHTML string         `json:"content_html"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Replies     []*CommentNode `json:"replies"`
}

// CommentService 楼中楼评论
type CommentService interface {
	Add(ctx context.Context, authorID, postID, content string, parentID *string) (*CommentNode, error)
	ListTopLevel(ctx context.Context, postID string) ([]*CommentNode, error)
	Get(ctx context.Context, id string) (*CommentNode, error)
	Edit(ctx context.Context, actor Actor, id, content string) (*CommentNode, error)
	// Delete 连同全部回复一起删除
	Delete(ctx context.Context, actor Actor, id string) error
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	dir      *directory
}

func NewCommentService(
	comments repository.CommentRepository,
	posts repository.PostRepository,
	profiles *cache.ProfileCache,
	resolver media.Resolver,
) CommentService {
	return &commentService{comments: comments, posts: posts, dir: newDirectory(profiles, resolver)}
}

func (s *commentService) node(ctx context.Context) func(*model.Comment) *CommentNode {
	return func(c *model.Comment) *CommentNode {
		return &CommentNode{
			ID:          c.ID,
			PostID:      c.PostID,
			ParentID:    c.ParentID,
			Author:      s.dir.summaryOfModel(ctx, c.Author),
			Content:     c.Content,
			ContentHTML: markup.Render(c.Content),
			CreatedAt:   c.CreatedAt,
			UpdatedAt:   c.UpdatedAt,
			Replies:     []*CommentNode{},
		}
	}
}

func (s *commentService) ensurePost(ctx context.Context, postID string) error {
	ok, err := s.posts.Exists(ctx, postID)
	if err != nil {
		return internal("load post", err)
	}
	if !ok {
		return ErrPostNotFound
	}
	return nil
}

func (s *commentService) Add(ctx context.Context, authorID, postID, content string, parentID *string) (*CommentNode, error) {
	if strings.TrimSpace(content) == "" {
		return nil, invalid("content is required")
	}
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	if parentID != nil {
		parent, err := s.comments.GetByID(ctx, *parentID)
		if err != nil {
			return nil, notFoundOr(err, ErrCommentNotFound, "load parent comment")
		}
		if parent.PostID != postID {
			return nil, ErrParentMismatch
		}
	}

	c := &model.Comment{ID: uuid.New().String(), PostID: postID, AuthorID: authorID, ParentID: parentID, Content: content}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, internal("create comment", err)
	}
	return s.Get(ctx, c.ID)
}

func (s *commentService) ListTopLevel(ctx context.Context, postID string) ([]*CommentNode, error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}
	all, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, internal("list comments", err)
	}
	roots, _ := buildForest(all, s.node(ctx))
	return roots, nil
}

func (s *commentService) Get(ctx context.Context, id string) (*CommentNode, error) {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrCommentNotFound, "load comment")
	}
	all, err := s.comments.ListByPost(ctx, c.PostID)
	if err != nil {
		return nil, internal("list comments", err)
	}
	_, nodes := buildForest(all, s.node(ctx))
	n, ok := nodes[id]
	if !ok {
		return nil, ErrCommentNotFound
	}
	return n, nil
}

func (s *commentService) Edit(ctx context.Context, actor Actor, id, content string) (*CommentNode, error) {
	if strings.TrimSpace(content) == "" {
		return nil, invalid("content is required")
	}
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrCommentNotFound, "load comment")
	}
	if c.AuthorID != actor.ID {
		return nil, ErrForbidden
	}
	if err := s.comments.UpdateContent(ctx, id, content); err != nil {
		return nil, notFoundOr(err, ErrCommentNotFound, "update comment")
	}
	return s.Get(ctx, id)
}

func (s *commentService) Delete(ctx context.Context, actor Actor, id string) error {
	c, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, ErrCommentNotFound, "load comment")
	}
	if !actor.CanModify(c.AuthorID) {
		return ErrForbidden
	}
	return notFoundOr(s.comments.DeleteSubtree(ctx, id), ErrCommentNotFound, "delete comment")
}

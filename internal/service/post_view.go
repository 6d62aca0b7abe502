package service

import (
	"context"
	"time"

	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/pkg/markup"
)

type CategoryView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func categoryView(c *model.Category) *CategoryView {
	if c == nil {
		return nil
	}
	return &CategoryView{ID: c.ID, Name: c.Name, Description: c.Description, Color: c.Color}
}

type FileView struct {
	Reference string `json:"reference"`
	URL       string `json:"url"`
}

type PostView struct {
	ID           string         `json:"id"`
	Author       AccountSummary `json:"author"`
	Category     *CategoryView  `json:"category"`
	Content      string         `json:"content"`
	ContentHTML  string         `json:"content_html"`
	Tags         []string       `json:"tags"`
	Files        []FileView     `json:"files"`
	LikesCount   int64          `json:"likes_count"`
	CommentCount int64          `json:"comment_count"`
	LikedBy      []string       `json:"liked_by"`
	IsBookmarked bool           `json:"is_bookmarked"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// postViewer 批量组装帖子视图，计数与点赞列表按帖子一次查询
type postViewer struct {
	likes     repository.LikeRepository
	comments  repository.CommentRepository
	bookmarks repository.BookmarkRepository
	dir       *directory
}

func (v *postViewer) views(ctx context.Context, viewerID string, posts []*model.Post) ([]*PostView, error) {
	out := make([]*PostView, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	likeCounts, err := v.likes.CountByPosts(ctx, ids)
	if err != nil {
		return nil, internal("count likes", err)
	}
	likers, err := v.likes.LikerIDsByPosts(ctx, ids)
	if err != nil {
		return nil, internal("load likers", err)
	}
	commentCounts, err := v.comments.CountByPosts(ctx, ids)
	if err != nil {
		return nil, internal("count comments", err)
	}
	marked, err := v.bookmarks.BookmarkedPostIDs(ctx, viewerID, ids)
	if err != nil {
		return nil, internal("load bookmarks", err)
	}

	for _, p := range posts {
		pv := &PostView{
			ID:           p.ID,
			Author:       v.dir.summaryOfModel(ctx, p.Author),
			Category:     categoryView(p.Category),
			Content:      p.Content,
			ContentHTML:  markup.Render(p.Content),
			Tags:         make([]string, 0, len(p.Tags)),
			Files:        make([]FileView, 0, len(p.Files)),
			LikesCount:   likeCounts[p.ID],
			CommentCount: commentCounts[p.ID],
			LikedBy:      likers[p.ID],
			IsBookmarked: marked[p.ID],
			CreatedAt:    p.CreatedAt,
			UpdatedAt:    p.UpdatedAt,
		}
		if pv.LikedBy == nil {
			pv.LikedBy = []string{}
		}
		for _, t := range p.Tags {
			pv.Tags = append(pv.Tags, t.Name)
		}
		for _, f := range p.Files {
			pv.Files = append(pv.Files, FileView{Reference: f.Reference, URL: v.dir.url(ctx, f.Reference)})
		}
		out = append(out, pv)
	}
	return out, nil
}

func (v *postViewer) view(ctx context.Context, viewerID string, p *model.Post) (*PostView, error) {
	res, err := v.views(ctx, viewerID, []*model.Post{p})
	if err != nil {
		return nil, err
	}
	return res[0], nil
}

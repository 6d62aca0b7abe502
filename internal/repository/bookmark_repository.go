package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/lablinker/internal/model"
)

type BookmarkRepository interface {
	// Create 重复收藏返回 ErrDuplicate
	Create(ctx context.Context, accountID, postID string) error
	Delete(ctx context.Context, accountID, postID string) (bool, error)
	// ListByAccount 最新收藏在前
	ListByAccount(ctx context.Context, accountID string, offset, limit int) ([]*model.Bookmark, error)
	// BookmarkedPostIDs 返回 postIDs 中已被 accountID 收藏的集合
	BookmarkedPostIDs(ctx context.Context, accountID string, postIDs []string) (map[string]bool, error)
}

type bookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) BookmarkRepository { return &bookmarkRepository{db: db} }

func (r *bookmarkRepository) Create(ctx context.Context, accountID, postID string) error {
	b := &model.Bookmark{ID: uuid.New().String(), AccountID: accountID, PostID: postID}
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

func (r *bookmarkRepository) Delete(ctx context.Context, accountID, postID string) (bool, error) {
	res := r.db.WithContext(ctx).Where("account_id = ? AND post_id = ?", accountID, postID).Delete(&model.Bookmark{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *bookmarkRepository) ListByAccount(ctx context.Context, accountID string, offset, limit int) ([]*model.Bookmark, error) {
	var res []*model.Bookmark
	q := r.db.WithContext(ctx).Where("account_id = ?", accountID).Order("created_at DESC, id DESC")
	err := page(q, offset, limit).Find(&res).Error
	return res, err
}

func (r *bookmarkRepository) BookmarkedPostIDs(ctx context.Context, accountID string, postIDs []string) (map[string]bool, error) {
	out := make(map[string]bool, len(postIDs))
	if accountID == "" || len(postIDs) == 0 {
		return out, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.Bookmark{}).
		Where("account_id = ? AND post_id IN ?", accountID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

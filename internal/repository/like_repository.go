package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/lablinker/internal/model"
)

type LikeRepository interface {
	// Toggle 有则删除（返回 false），无则创建（返回 true）
	Toggle(ctx context.Context, accountID, postID string) (bool, error)
	// ListByPost 最早点赞在前
	ListByPost(ctx context.Context, postID string) ([]*model.Like, error)
	CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error)
	LikerIDsByPosts(ctx context.Context, postIDs []string) (map[string][]string, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Toggle(ctx context.Context, accountID, postID string) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("account_id = ? AND post_id = ?", accountID, postID).Delete(&model.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		liked = true
		return tx.Create(&model.Like{ID: uuid.New().String(), AccountID: accountID, PostID: postID}).Error
	})
	return liked, translate(err)
}

func (r *likeRepository) ListByPost(ctx context.Context, postID string) ([]*model.Like, error) {
	var res []*model.Like
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).
		Order("created_at ASC, id ASC").Find(&res).Error
	return res, err
}

type postCount struct {
	PostID string
	Cnt    int64
}

func (r *likeRepository) CountByPosts(ctx context.Context, postIDs []string) (map[string]int64, error) {
	return countByPosts(r.db.WithContext(ctx).Model(&model.Like{}), postIDs)
}

func (r *likeRepository) LikerIDsByPosts(ctx context.Context, postIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []model.Like
	err := r.db.WithContext(ctx).Select("post_id", "account_id").
		Where("post_id IN ?", postIDs).Order("created_at ASC, id ASC").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, l := range rows {
		out[l.PostID] = append(out[l.PostID], l.AccountID)
	}
	return out, nil
}

// countByPosts 按 post_id 分组计数，q 需已指定 Model
func countByPosts(q *gorm.DB, postIDs []string) (map[string]int64, error) {
	out := make(map[string]int64, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	var rows []postCount
	err := q.Select("post_id, COUNT(*) AS cnt").Where("post_id IN ?", postIDs).Group("post_id").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.PostID] = row.Cnt
	}
	return out, nil
}

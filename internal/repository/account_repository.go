package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/lablinker/internal/model"
)

type AccountRepository interface {
	Create(ctx context.Context, a *model.Account) error
	// FindOrCreateByEmail 原子地按 email 查找或插入；username 冲突时返回 ErrDuplicate
	FindOrCreateByEmail(ctx context.Context, a *model.Account) (*model.Account, bool, error)
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Account, error)
	List(ctx context.Context, offset, limit int) ([]*model.Account, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

type accountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(db *gorm.DB) AccountRepository { return &accountRepository{db: db} }

func (r *accountRepository) Create(ctx context.Context, a *model.Account) error {
	return translate(r.db.WithContext(ctx).Create(a).Error)
}

func (r *accountRepository) FindOrCreateByEmail(ctx context.Context, a *model.Account) (*model.Account, bool, error) {
	var (
		out     model.Account
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(a)
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected == 1
		return tx.Where("email = ?", a.Email).First(&out).Error
	})
	if err != nil {
		// 插入被 username 唯一键吞掉且 email 不存在
		if translate(err) == ErrNotFound {
			return nil, false, ErrDuplicate
		}
		return nil, false, translate(err)
	}
	return &out, created, nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	var a model.Account
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	var a model.Account
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&a).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *accountRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

func (r *accountRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, "username = ?", username)
}

func (r *accountRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Account{}).Where(query, arg).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *accountRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Account, error) {
	if len(ids) == 0 {
		return []*model.Account{}, nil
	}
	var res []*model.Account
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&res).Error
	return res, err
}

func (r *accountRepository) List(ctx context.Context, offset, limit int) ([]*model.Account, error) {
	var res []*model.Account
	err := page(r.db.WithContext(ctx).Order("created_at ASC, id ASC"), offset, limit).Find(&res).Error
	return res, err
}

func (r *accountRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Account{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *accountRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.Update(ctx, id, map[string]interface{}{"password_hash": hash})
}

// Delete 删除账号及其全部从属数据（同一事务内，不依赖数据库级联）
func (r *accountRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postIDs []string
		if err := tx.Model(&model.Post{}).Where("author_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if err := deletePostsTx(tx, postIDs); err != nil {
			return err
		}

		// 该账号在他人帖子下的评论及其回复
		var commentIDs []string
		if err := tx.Model(&model.Comment{}).Where("author_id = ?", id).Pluck("id", &commentIDs).Error; err != nil {
			return err
		}
		if err := deleteCommentSubtreesTx(tx, commentIDs); err != nil {
			return err
		}

		for _, m := range []interface{}{&model.Like{}, &model.Bookmark{}, &model.OTP{}} {
			if err := tx.Where("account_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("created_by_id = ?", id).Delete(&model.Resource{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followee_id = ?", id, id).Delete(&model.Follow{}).Error; err != nil {
			return err
		}

		res := tx.Where("id = ?", id).Delete(&model.Account{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// deletePostsTx 删除帖子及点赞、收藏、评论、附件、标签关联
func deletePostsTx(tx *gorm.DB, postIDs []string) error {
	if len(postIDs) == 0 {
		return nil
	}
	for _, m := range []interface{}{&model.Like{}, &model.Bookmark{}, &model.Comment{}, &model.PostFile{}} {
		if err := tx.Where("post_id IN ?", postIDs).Delete(m).Error; err != nil {
			return err
		}
	}
	if err := tx.Table("post_tags").Where("post_id IN ?", postIDs).Delete(nil).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", postIDs).Delete(&model.Post{}).Error
}

// deleteCommentSubtreesTx 逐层收集回复后一次删除，避免递归
func deleteCommentSubtreesTx(tx *gorm.DB, rootIDs []string) error {
	if len(rootIDs) == 0 {
		return nil
	}
	all := append([]string(nil), rootIDs...)
	seen := make(map[string]struct{}, len(rootIDs))
	for _, id := range rootIDs {
		seen[id] = struct{}{}
	}
	frontier := rootIDs
	for len(frontier) > 0 {
		var children []string
		if err := tx.Model(&model.Comment{}).Where("parent_id IN ?", frontier).Pluck("id", &children).Error; err != nil {
			return err
		}
		next := children[:0]
		for _, c := range children {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			next = append(next, c)
		}
		all = append(all, next...)
		frontier = next
	}
	return tx.Where("id IN ?", all).Delete(&model.Comment{}).Error
}

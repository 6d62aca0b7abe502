package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/lablinker/internal/model"
)

// PostPatch 部分更新；nil 字段保持不变
type PostPatch struct {
	Content    *string
	CategoryID **string
	Tags       *[]string
	NewFiles   []string
}

type PostRepository interface {
	// Create 写入帖子、附件并关联标签（标签不存在时创建）
	Create(ctx context.Context, p *model.Post, tagNames []string, files []string) error
	Update(ctx context.Context, id string, patch PostPatch) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	Exists(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, offset, limit int) ([]*model.Post, error)
	ListByCategory(ctx context.Context, categoryID string, offset, limit int) ([]*model.Post, error)
	// ListFeed 返回 followerID 关注的作者的帖子，严格倒序
	ListFeed(ctx context.Context, followerID string, offset, limit int) ([]*model.Post, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.Post, error)
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) preload(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Category").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Preload("Files", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func (r *postRepository) Create(ctx context.Context, p *model.Post, tagNames []string, files []string) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		tags, err := getOrCreateTags(tx, tagNames)
		if err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := tx.Model(p).Association("Tags").Append(tags); err != nil {
				return err
			}
		}
		p.Tags = tags
		p.Files, err = appendFiles(tx, p.ID, 0, files)
		return err
	}))
}

func (r *postRepository) Update(ctx context.Context, id string, patch PostPatch) error {
	return translate(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Post
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			return err
		}
		fields := map[string]interface{}{}
		if patch.Content != nil {
			fields["content"] = *patch.Content
		}
		if patch.CategoryID != nil {
			fields["category_id"] = *patch.CategoryID
		}
		if len(fields) > 0 {
			if err := tx.Model(&p).Updates(fields).Error; err != nil {
				return err
			}
		}
		if patch.Tags != nil {
			tags, err := getOrCreateTags(tx, *patch.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(&p).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		if len(patch.NewFiles) > 0 {
			var next int
			if err := tx.Model(&model.PostFile{}).Where("post_id = ?", id).
				Select("COALESCE(MAX(position) + 1, 0)").Scan(&next).Error; err != nil {
				return err
			}
			if _, err := appendFiles(tx, id, next, patch.NewFiles); err != nil {
				return err
			}
		}
		return nil
	}))
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.preload(r.db.WithContext(ctx)).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *postRepository) Exists(ctx context.Context, id string) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Count(&cnt).Error
	return cnt > 0, err
}

func (r *postRepository) List(ctx context.Context, offset, limit int) ([]*model.Post, error) {
	return r.find(r.db.WithContext(ctx), offset, limit)
}

func (r *postRepository) ListByCategory(ctx context.Context, categoryID string, offset, limit int) ([]*model.Post, error) {
	return r.find(r.db.WithContext(ctx).Where("category_id = ?", categoryID), offset, limit)
}

func (r *postRepository) ListFeed(ctx context.Context, followerID string, offset, limit int) ([]*model.Post, error) {
	followees := r.db.WithContext(ctx).Model(&model.Follow{}).Select("followee_id").Where("follower_id = ?", followerID)
	return r.find(r.db.WithContext(ctx).Where("author_id IN (?)", followees), offset, limit)
}

func (r *postRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Post, error) {
	if len(ids) == 0 {
		return []*model.Post{}, nil
	}
	var res []*model.Post
	err := r.preload(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&res).Error
	return res, err
}

func (r *postRepository) find(q *gorm.DB, offset, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := page(r.preload(q).Order("created_at DESC, id DESC"), offset, limit).Find(&res).Error
	return res, err
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		if err := tx.Model(&model.Post{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
			return err
		}
		if cnt == 0 {
			return ErrNotFound
		}
		return deletePostsTx(tx, []string{id})
	})
}

// getOrCreateTags 按名称查找或插入标签，忽略空白与重复名称
func getOrCreateTags(tx *gorm.DB, names []string) ([]model.Tag, error) {
	seen := make(map[string]struct{}, len(names))
	uniq := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		uniq = append(uniq, n)
	}
	if len(uniq) == 0 {
		return []model.Tag{}, nil
	}

	rows := make([]model.Tag, 0, len(uniq))
	for _, n := range uniq {
		rows = append(rows, model.Tag{ID: uuid.New().String(), Name: n})
	}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
		return nil, err
	}

	var tags []model.Tag
	if err := tx.Where("name IN ?", uniq).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func appendFiles(tx *gorm.DB, postID string, start int, refs []string) ([]model.PostFile, error) {
	files := make([]model.PostFile, 0, len(refs))
	for i, ref := range refs {
		files = append(files, model.PostFile{
			ID:        uuid.New().String(),
			PostID:    postID,
			Reference: ref,
			Position:  start + i,
		})
	}
	if len(files) == 0 {
		return files, nil
	}
	if err := tx.Create(&files).Error; err != nil {
		return nil, err
	}
	return files, nil
}

package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/lablinker/internal/model"
)

// ResourceFilter 列表过滤条件；零值表示不过滤
type ResourceFilter struct {
	Category    model.ResourceCategory
	Search      string
	CreatedByID string
	// Ordering: created_at, -created_at, title, -title
	Ordering string
}

var resourceOrderings = map[string]string{
	"created_at":  "created_at ASC, id ASC",
	"-created_at": "created_at DESC, id DESC",
	"title":       "title ASC, id ASC",
	"-title":      "title DESC, id DESC",
}

// ValidResourceOrdering reports whether o is an accepted ordering key.
func ValidResourceOrdering(o string) bool {
	_, ok := resourceOrderings[o]
	return o == "" || ok
}

type ResourceRepository interface {
	Create(ctx context.Context, res *model.Resource) error
	GetByID(ctx context.Context, id string) (*model.Resource, error)
	List(ctx context.Context, f ResourceFilter, offset, limit int) ([]*model.Resource, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type resourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) ResourceRepository { return &resourceRepository{db: db} }

func (r *resourceRepository) Create(ctx context.Context, res *model.Resource) error {
	return translate(r.db.WithContext(ctx).Omit("CreatedBy").Create(res).Error)
}

func (r *resourceRepository) GetByID(ctx context.Context, id string) (*model.Resource, error) {
	var res model.Resource
	if err := r.db.WithContext(ctx).Preload("CreatedBy").Where("id = ?", id).First(&res).Error; err != nil {
		return nil, translate(err)
	}
	return &res, nil
}

func (r *resourceRepository) List(ctx context.Context, f ResourceFilter, offset, limit int) ([]*model.Resource, error) {
	q := r.db.WithContext(ctx).Preload("CreatedBy")
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.CreatedByID != "" {
		q = q.Where("created_by_id = ?", f.CreatedByID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	order, ok := resourceOrderings[f.Ordering]
	if !ok {
		order = resourceOrderings["-created_at"]
	}
	var res []*model.Resource
	err := page(q.Order(order), offset, limit).Find(&res).Error
	return res, err
}

func (r *resourceRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Resource{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *resourceRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Resource{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/lablinker/internal/cache"
	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/internal/repository"
	"github.com/d60-Lab/lablinker/pkg/media"
)

type ResourceInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required"`
	Category    string `json:"category" validate:"required"`
	ImageURL    string `json:"image_url" validate:"omitempty,url,max=500"`
	Link        string `json:"link" validate:"omitempty,url,max=500"`
}

type ResourcePatch struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url,max=500"`
	Link        *string `json:"link" validate:"omitempty,url,max=500"`
}

// ResourceQuery 列表过滤；Ordering 取 created_at、-created_at、title、-title
type ResourceQuery struct {
	Category string
	Search   string
	Ordering string
}

type ResourceView struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	CategoryLabel string         `json:"category_display"`
	ImageURL      string         `json:"image_url"`
	Link          string         `json:"link"`
	CreatedBy     AccountSummary `json:"created_by"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type ResourceCategoryView struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ResourceService 资源库
type ResourceService interface {
	Create(ctx context.Context, actor Actor, in ResourceInput) (*ResourceView, error)
	Get(ctx context.Context, id string) (*ResourceView, error)
	List(ctx context.Context, q ResourceQuery, page, pageSize int) ([]*ResourceView, error)
	Mine(ctx context.Context, actor Actor, page, pageSize int) ([]*ResourceView, error)
	Update(ctx context.Context, actor Actor, id string, patch ResourcePatch) (*ResourceView, error)
	Delete(ctx context.Context, actor Actor, id string) error
	Categories() []ResourceCategoryView
}

type resourceService struct {
	repo repository.ResourceRepository
	dir  *directory
}

func NewResourceService(repo repository.ResourceRepository, profiles *cache.ProfileCache, resolver media.Resolver) ResourceService {
	return &resourceService{repo: repo, dir: newDirectory(profiles, resolver)}
}

func (s *resourceService) view(ctx context.Context, r *model.Resource) *ResourceView {
	return &ResourceView{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Category:      string(r.Category),
		CategoryLabel: r.Category.Label(),
		ImageURL:      r.ImageURL,
		Link:          r.Link,
		CreatedBy:     s.dir.summaryOfModel(ctx, r.CreatedBy),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func checkResourceCategory(c string) error {
	if !model.ResourceCategory(c).Valid() {
		return invalid("category must be one of protocols, templates, articles, tools, links")
	}
	return nil
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	return invalid("invalid resource: %s", err.Error())
}

func (s *resourceService) Create(ctx context.Context, actor Actor, in ResourceInput) (*ResourceView, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validationError(validate.Struct(in)); err != nil {
		return nil, err
	}
	if err := checkResourceCategory(in.Category); err != nil {
		return nil, err
	}
	r := &model.Resource{
		ID:          uuid.New().String(),
		Title:       in.Title,
		Description: in.Description,
		Category:    model.ResourceCategory(in.Category),
		ImageURL:    in.ImageURL,
		Link:        in.Link,
		CreatedByID: actor.ID,
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, internal("create resource", err)
	}
	return s.Get(ctx, r.ID)
}

func (s *resourceService) Get(ctx context.Context, id string) (*ResourceView, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrResourceNotFound, "load resource")
	}
	return s.view(ctx, r), nil
}

func (s *resourceService) List(ctx context.Context, q ResourceQuery, page, pageSize int) ([]*ResourceView, error) {
	if q.Category != "" {
		if err := checkResourceCategory(q.Category); err != nil {
			return nil, err
		}
	}
	if !repository.ValidResourceOrdering(q.Ordering) {
		return nil, invalid("ordering must be one of created_at, -created_at, title, -title")
	}
	return s.list(ctx, repository.ResourceFilter{
		Category: model.ResourceCategory(q.Category),
		Search:   q.Search,
		Ordering: q.Ordering,
	}, page, pageSize)
}

func (s *resourceService) Mine(ctx context.Context, actor Actor, page, pageSize int) ([]*ResourceView, error) {
	return s.list(ctx, repository.ResourceFilter{CreatedByID: actor.ID}, page, pageSize)
}

func (s *resourceService) list(ctx context.Context, f repository.ResourceFilter, page, pageSize int) ([]*ResourceView, error) {
	_, size, offset := normalizePage(page, pageSize)
	items, err := s.repo.List(ctx, f, offset, size)
	if err != nil {
		return nil, internal("list resources", err)
	}
	res := make([]*ResourceView, len(items))
	for i, r := range items {
		res[i] = s.view(ctx, r)
	}
	return res, nil
}

func (s *resourceService) Update(ctx context.Context, actor Actor, id string, patch ResourcePatch) (*ResourceView, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrResourceNotFound, "load resource")
	}
	if !actor.CanModify(r.CreatedByID) {
		return nil, ErrForbidden
	}
	if err := validationError(validate.Struct(patch)); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.Title != nil {
		t := strings.TrimSpace(*patch.Title)
		if t == "" {
			return nil, invalid("title cannot be empty")
		}
		fields["title"] = t
	}
	if patch.Description != nil {
		if strings.TrimSpace(*patch.Description) == "" {
			return nil, invalid("description cannot be empty")
		}
		fields["description"] = *patch.Description
	}
	if patch.Category != nil {
		if err := checkResourceCategory(*patch.Category); err != nil {
			return nil, err
		}
		fields["category"] = *patch.Category
	}
	if patch.ImageURL != nil {
		fields["image_url"] = *patch.ImageURL
	}
	if patch.Link != nil {
		fields["link"] = *patch.Link
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		return nil, notFoundOr(err, ErrResourceNotFound, "update resource")
	}
	return s.Get(ctx, id)
}

func (s *resourceService) Delete(ctx context.Context, actor Actor, id string) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return notFoundOr(err, ErrResourceNotFound, "load resource")
	}
	if !actor.CanModify(r.CreatedByID) {
		return ErrForbidden
	}
	return notFoundOr(s.repo.Delete(ctx, id), ErrResourceNotFound, "delete resource")
}

func (s *resourceService) Categories() []ResourceCategoryView {
	res := make([]ResourceCategoryView, len(model.ResourceCategories))
	for i, c := range model.ResourceCategories {
		res[i] = ResourceCategoryView{Value: string(c), Label: c.Label()}
	}
	return res
}

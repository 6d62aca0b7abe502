package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/d60-Lab/lablinker/internal/model"
	"github.com/d60-Lab/lablinker/internal/repository"
)

type CategoryInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description"`
	Color       string `json:"color" binding:"omitempty,hexcolor"`
}

type CategoryPatch struct {
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	Color       *string `json:"color" binding:"omitempty,hexcolor"`
}

// CategoryService 帖子分类；写操作仅限管理员
type CategoryService interface {
	List(ctx context.Context) ([]*CategoryView, error)
	Get(ctx context.Context, id string) (*CategoryView, error)
	Create(ctx context.Context, actor Actor, in CategoryInput) (*CategoryView, error)
	Update(ctx context.Context, actor Actor, id string, patch CategoryPatch) (*CategoryView, error)
	Delete(ctx context.Context, actor Actor, id string) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func checkColor(color string) error {
	if err := validate.Var(color, "hexcolor,max=7"); err != nil {
		return invalid("color must be a hex color such as #007bff")
	}
	return nil
}

func (s *categoryService) List(ctx context.Context) ([]*CategoryView, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, internal("list categories", err)
	}
	res := make([]*CategoryView, len(items))
	for i, c := range items {
		res[i] = categoryView(c)
	}
	return res, nil
}

func (s *categoryService) Get(ctx context.Context, id string) (*CategoryView, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrCategoryNotFound, "load category")
	}
	return categoryView(c), nil
}

func (s *categoryService) Create(ctx context.Context, actor Actor, in CategoryInput) (*CategoryView, error) {
	if !actor.IsStaff {
		return nil, ErrForbidden
	}
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 100 {
		return nil, invalid("name must be 1-100 characters")
	}
	color := in.Color
	if color == "" {
		color = model.DefaultCategoryColor
	}
	if err := checkColor(color); err != nil {
		return nil, err
	}
	c := &model.Category{ID: uuid.New().String(), Name: name, Description: in.Description, Color: color}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, internal("create category", err)
	}
	return categoryView(c), nil
}

func (s *categoryService) Update(ctx context.Context, actor Actor, id string, patch CategoryPatch) (*CategoryView, error) {
	if !actor.IsStaff {
		return nil, ErrForbidden
	}
	fields := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" || len(name) > 100 {
			return nil, invalid("name must be 1-100 characters")
		}
		fields["name"] = name
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Color != nil {
		if err := checkColor(*patch.Color); err != nil {
			return nil, err
		}
		fields["color"] = *patch.Color
	}
	if err := s.repo.Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrCategoryExists
		}
		return nil, notFoundOr(err, ErrCategoryNotFound, "update category")
	}
	return s.Get(ctx, id)
}

func (s *categoryService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.IsStaff {
		return ErrForbidden
	}
	return notFoundOr(s.repo.Delete(ctx, id), ErrCategoryNotFound, "delete category")
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/lablinker/internal/service"
	"github.com/d60-Lab/lablinker/pkg/response"
)

// ListCategories 帖子分类
// @Summary 分类列表
// @Tags 分类
// @Produce json
// @Success 200 {object} response.Response{data=[]service.CategoryView}
// @Router /api/v1/posts/categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	list, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// GetCategory 分类详情
// @Summary 分类详情
// @Tags 分类
// @Param id path string true "分类ID"
// @Success 200 {object} response.Response{data=service.CategoryView}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/categories/{id} [get]
func (h *Handler) GetCategory(c *gin.Context) {
	cat, err := h.categoryService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cat)
}

// CreateCategory 新建分类，仅管理员
// @Summary 新建分类
// @Tags 分类
// @Security BearerAuth
// @Accept json
// @Param request body service.CategoryInput true "分类"
// @Success 201 {object} response.Response{data=service.CategoryView}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts/categories [post]
func (h *Handler) CreateCategory(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in service.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BindError(c, err)
		return
	}
	cat, err := h.categoryService.Create(c.Request.Context(), a, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, cat)
}

// UpdateCategory 修改分类，仅管理员
// @Summary 修改分类
// @Tags 分类
// @Security BearerAuth
// @Accept json
// @Param id path string true "分类ID"
// @Param request body service.CategoryPatch true "待修改字段"
// @Success 200 {object} response.Response{data=service.CategoryView}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/categories/{id} [patch]
func (h *Handler) UpdateCategory(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var patch service.CategoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BindError(c, err)
		return
	}
	cat, err := h.categoryService.Update(c.Request.Context(), a, c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, cat)
}

// DeleteCategory 删除分类，帖子的分类置空
// @Summary 删除分类
// @Tags 分类
// @Security BearerAuth
// @Param id path string true "分类ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/categories/{id} [delete]
func (h *Handler) DeleteCategory(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.categoryService.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListCategoryPosts 某分类下的帖子
// @Summary 分类下的帖子
// @Tags 分类
// @Param id path string true "分类ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page{list=[]service.PostView}}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/categories/{id}/posts [get]
func (h *Handler) ListCategoryPosts(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.postService.ListByCategory(c.Request.Context(), viewerID(c), c.Param("id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	pageOf(c, page, pageSize, list)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/lablinker/internal/service"
	"github.com/d60-Lab/lablinker/pkg/response"
)

// ListResources 资源库，支持分类过滤、搜索与排序
// @Summary 资源列表
// @Tags 资源
// @Security BearerAuth
// @Param category query string false "分类"
// @Param search query string false "标题或描述关键字"
// @Param ordering query string false "created_at | -created_at | title | -title"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page{list=[]service.ResourceView}}
// @Failure 400 {object} response.Response
// @Router /api/v1/resources [get]
func (h *Handler) ListResources(c *gin.Context) {
	page, pageSize := pageParams(c)
	q := service.ResourceQuery{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	}
	list, err := h.resourceService.List(c.Request.Context(), q, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	pageOf(c, page, pageSize, list)
}

// MyResources 我创建的资源
// @Summary 我的资源
// @Tags 资源
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page{list=[]service.ResourceView}}
// @Router /api/v1/resources/my_resources [get]
func (h *Handler) MyResources(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	list, err := h.resourceService.Mine(c.Request.Context(), a, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	pageOf(c, page, pageSize, list)
}

// ResourceCategories 资源分类枚举
// @Summary 资源分类
// @Tags 资源
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]service.ResourceCategoryView}
// @Router /api/v1/resources/categories [get]
func (h *Handler) ResourceCategories(c *gin.Context) {
	response.Success(c, h.resourceService.Categories())
}

// CreateResource 新建资源
// @Summary 新建资源
// @Tags 资源
// @Security BearerAuth
// @Accept json
// @Param request body service.ResourceInput true "资源"
// @Success 201 {object} response.Response{data=service.ResourceView}
// @Failure 400 {object} response.Response
// @Router /api/v1/resources [post]
func (h *Handler) CreateResource(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in service.ResourceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BindError(c, err)
		return
	}
	r, err := h.resourceService.Create(c.Request.Context(), a, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, r)
}

// GetResource 资源详情
// @Summary 资源详情
// @Tags 资源
// @Security BearerAuth
// @Param id path string true "资源ID"
// @Success 200 {object} response.Response{data=service.ResourceView}
// @Failure 404 {object} response.Response
// @Router /api/v1/resources/{id} [get]
func (h *Handler) GetResource(c *gin.Context) {
	r, err := h.resourceService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, r)
}

// UpdateResource 修改资源，创建者或管理员
// @Summary 修改资源
// @Tags 资源
// @Security BearerAuth
// @Accept json
// @Param id path string true "资源ID"
// @Param request body service.ResourcePatch true "待修改字段"
// @Success 200 {object} response.Response{data=service.ResourceView}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/resources/{id} [patch]
func (h *Handler) UpdateResource(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var patch service.ResourcePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BindError(c, err)
		return
	}
	r, err := h.resourceService.Update(c.Request.Context(), a, c.Param("id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, r)
}

// DeleteResource 删除资源，创建者或管理员
// @Summary 删除资源
// @Tags 资源
// @Security BearerAuth
// @Param id path string true "资源ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/resources/{id} [delete]
func (h *Handler) DeleteResource(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.resourceService.Delete(c.Request.Context(), a, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

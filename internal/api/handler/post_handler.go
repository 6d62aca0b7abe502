package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/lablinker/internal/service"
	"github.com/d60-Lab/lablinker/pkg/response"
)

// ListPosts 全站帖子，最新在前
// @Summary 帖子列表
// @Tags 帖子
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page{list=[]service.PostView}}
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.postService.List(c.Request.Context(), viewerID(c), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	pageOf(c, page, pageSize, list)
}

// CreatePost 发帖
// @Summary 发帖
// @Tags 帖子
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.PostInput true "帖子内容"
// @Success 201 {object} response.Response{data=service.PostView}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in service.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BindError(c, err)
		return
	}
	p, err := h.postService.Create(c.Request.Context(), a, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}

// GetPost 帖子详情
// @Summary 帖子详情
// @Tags 帖子
// @Produce json
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response{data=service.PostView}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	p, err := h.postService.Get(c.Request.Context(), viewerID(c), c.Param("post_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// UpdatePost 修改帖子，仅作者；PUT 与 PATCH 均为部分更新
// @Summary 修改帖子
// @Tags 帖子
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param post_id path string true "帖子ID"
// @Param request body service.PostUpdate true "待修改字段"
// @Success 200 {object} response.Response{data=service.PostView}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id} [patch]
func (h *Handler) UpdatePost(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in service.PostUpdate
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BindError(c, err)
		return
	}
	p, err := h.postService.Update(c.Request.Context(), a, c.Param("post_id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// DeletePost 删除帖子，作者或管理员
// @Summary 删除帖子
// @Tags 帖子
// @Security BearerAuth
// @Param post_id path string true "帖子ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{post_id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.postService.Delete(c.Request.Context(), a, c.Param("post_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Feed 关注的人发布的帖子，严格倒序
// @Summary 关注流
// @Tags 帖子
// @Security BearerAuth
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page{list=[]service.PostView}}
// @Failure 401 {object} response.Response
// @Router /api/v1/posts/feed [get]
func (h *Handler) Feed(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	list, err := h.feedService.Compose(c.Request.Context(), a.ID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	pageOf(c, page, pageSize, list)
}

// Bookmark 收藏帖子
// @Summary 收藏
// @Tags 收藏
// @Security BearerAuth
// @Param post_id path string true "帖子ID"
// @Success 201 {object} response.Response{data=detail}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/bookmark/{post_id} [post]
func (h *Handler) Bookmark(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.bookmarkService.Bookmark(c.Request.Context(), a.ID, c.Param("post_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail{Detail: "Post bookmarked."})
}

// Unbookmark 取消收藏
// @Summary 取消收藏
// @Tags 收藏
// @Security BearerAuth
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response{data=detail}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/unbookmark/{post_id} [delete]
func (h *Handler) Unbookmark(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.bookmarkService.Unbookmark(c.Request.Context(), a.ID, c.Param("post_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail{Detail: "Bookmark removed."})
}

// ListBookmarks 我的收藏
// @Summary 收藏列表
// @Tags 收藏
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page{list=[]service.PostView}}
// @Router /api/v1/posts/bookmarks [get]
func (h *Handler) ListBookmarks(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	list, err := h.bookmarkService.List(c.Request.Context(), a.ID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	pageOf(c, page, pageSize, list)
}

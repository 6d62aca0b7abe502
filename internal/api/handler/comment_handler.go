package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/lablinker/pkg/response"
)

type commentRequest struct {
	PostID   string  `json:"post_id" binding:"required"`
	Content  string  `json:"content" binding:"required"`
	ParentID *string `json:"parent_id"`
}

type commentEditRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListComments 帖子的顶层评论，回复以树形嵌套
// @Summary 评论树
// @Tags 评论
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response{data=[]service.CommentNode}
// @Failure 404 {object} response.Response
// @Router /api/v1/comments/posts/{post_id} [get]
func (h *Handler) ListComments(c *gin.Context) {
	list, err := h.commentService.ListTopLevel(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

// CreateComment 评论或回复
// @Summary 发表评论
// @Tags 评论
// @Security BearerAuth
// @Accept json
// @Param request body commentRequest true "评论"
// @Success 201 {object} response.Response{data=service.CommentNode}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	node, err := h.commentService.Add(c.Request.Context(), a.ID, req.PostID, req.Content, req.ParentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, node)
}

// GetComment 评论及其回复
// @Summary 评论详情
// @Tags 评论
// @Param comment_id path string true "评论ID"
// @Success 200 {object} response.Response{data=service.CommentNode}
// @Failure 404 {object} response.Response
// @Router /api/v1/comments/{comment_id} [get]
func (h *Handler) GetComment(c *gin.Context) {
	node, err := h.commentService.Get(c.Request.Context(), c.Param("comment_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, node)
}

// EditComment 修改评论，仅作者
// @Summary 修改评论
// @Tags 评论
// @Security BearerAuth
// @Accept json
// @Param comment_id path string true "评论ID"
// @Param request body commentEditRequest true "新内容"
// @Success 200 {object} response.Response{data=service.CommentNode}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/comments/{comment_id} [patch]
func (h *Handler) EditComment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req commentEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	node, err := h.commentService.Edit(c.Request.Context(), a, c.Param("comment_id"), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, node)
}

// DeleteComment 删除评论及全部回复
// @Summary 删除评论
// @Tags 评论
// @Security BearerAuth
// @Param comment_id path string true "评论ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/comments/{comment_id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.commentService.Delete(c.Request.Context(), a, c.Param("comment_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/lablinker/pkg/response"
)

type likeResult struct {
	Liked bool `json:"liked"`
}

// ToggleLike 点赞/取消点赞
// @Summary 切换点赞
// @Tags 点赞
// @Security BearerAuth
// @Param post_id path string true "帖子ID"
// @Success 201 {object} response.Response{data=likeResult} "已点赞"
// @Success 200 {object} response.Response{data=likeResult} "已取消"
// @Failure 404 {object} response.Response
// @Router /api/v1/likes/posts/{post_id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	liked, err := h.likeService.Toggle(c.Request.Context(), a.ID, c.Param("post_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if liked {
		response.Created(c, likeResult{Liked: true})
		return
	}
	response.Success(c, likeResult{Liked: false})
}

// ListLikers 点赞的人
// @Summary 点赞列表
// @Tags 点赞
// @Param post_id path string true "帖子ID"
// @Success 200 {object} response.Response{data=[]service.AccountSummary}
// @Failure 404 {object} response.Response
// @Router /api/v1/likes/posts/{post_id} [get]
func (h *Handler) ListLikers(c *gin.Context) {
	list, err := h.likeService.ListLikers(c.Request.Context(), c.Param("post_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}

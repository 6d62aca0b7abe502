package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/lablinker/pkg/response"
)

// Follow 关注 user_id；重复关注返回 200
// @Summary 关注用户
// @Tags 关系链
// @Security BearerAuth
// @Produce json
// @Param user_id path string true "被关注用户ID"
// @Success 201 {object} response.Response{data=detail}
// @Success 200 {object} response.Response{data=detail}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/auth/follow/{user_id} [post]
func (h *Handler) Follow(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	created, err := h.relService.Follow(c.Request.Context(), a.ID, c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if created {
		response.Created(c, detail{Detail: "Followed successfully."})
		return
	}
	response.Success(c, detail{Detail: "Already following."})
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 关系链
// @Security BearerAuth
// @Produce json
// @Param user_id path string true "被关注用户ID"
// @Success 200 {object} response.Response{data=detail}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/auth/unfollow/{user_id} [post]
func (h *Handler) Unfollow(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.relService.Unfollow(c.Request.Context(), a.ID, c.Param("user_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail{Detail: "Unfollowed successfully."})
}

// ListFollowing 查询某用户关注的人
// @Summary 查询关注列表
// @Tags 关系链
// @Param user_id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page{list=[]service.AccountSummary}}
// @Failure 404 {object} response.Response
// @Router /api/v1/auth/users/{user_id}/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.relService.ListFollowing(c.Request.Context(), c.Param("user_id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	pageOf(c, page, pageSize, list)
}

// ListFollowers 查询某用户的粉丝
// @Summary 查询粉丝列表
// @Tags 关系链
// @Param user_id path string true "用户ID"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page{list=[]service.AccountSummary}}
// @Failure 404 {object} response.Response
// @Router /api/v1/auth/users/{user_id}/followers [get]
func (h *Handler) ListFollowers(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.relService.ListFollowers(c.Request.Context(), c.Param("user_id"), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	pageOf(c, page, pageSize, list)
}

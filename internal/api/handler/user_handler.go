package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/lablinker/internal/service"
	"github.com/d60-Lab/lablinker/pkg/response"
)

// ListUsers 用户目录
// @Summary 用户列表
// @Tags 用户
// @Produce json
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} response.Response{data=response.Page{list=[]service.AccountSummary}}
// @Router /api/v1/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := pageParams(c)
	list, err := h.accountService.List(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	pageOf(c, page, pageSize, list)
}

// GetUser 用户主页，含关注计数
// @Summary 用户详情
// @Tags 用户
// @Security BearerAuth
// @Produce json
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response{data=service.Profile}
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{user_id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	p, err := h.accountService.GetProfile(c.Request.Context(), a.ID, c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// UpdateUser 修改资料，仅本人或管理员
// @Summary 修改用户资料
// @Tags 用户
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param user_id path string true "用户ID"
// @Param request body service.ProfilePatch true "待修改字段"
// @Success 200 {object} response.Response{data=service.Profile}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/users/{user_id} [patch]
func (h *Handler) UpdateUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var patch service.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.BindError(c, err)
		return
	}
	p, err := h.accountService.UpdateProfile(c.Request.Context(), a, c.Param("user_id"), patch)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, p)
}

// DeleteUser 注销账号
// @Summary 删除用户
// @Tags 用户
// @Security BearerAuth
// @Param user_id path string true "用户ID"
// @Success 204
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/users/{user_id} [delete]
func (h *Handler) DeleteUser(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	if err := h.accountService.Delete(c.Request.Context(), a, c.Param("user_id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

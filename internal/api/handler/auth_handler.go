package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/lablinker/pkg/response"
)

type otpRequest struct {
	Email string `json:"email" binding:"required"`
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

type credentialRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type passwordResetRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

type detail struct {
	Detail string `json:"detail"`
}

// RequestOTP 发送邮箱验证码，邮箱未注册时自动开户
// @Summary 请求 OTP
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body otpRequest true "邮箱"
// @Success 200 {object} response.Response{data=detail}
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/auth/otp-auth [post]
func (h *Handler) RequestOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	if err := h.authService.RequestOTP(c.Request.Context(), req.Email); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail{Detail: "OTP sent to email."})
}

// VerifyOTP 校验验证码并签发 token
// @Summary 校验 OTP
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body verifyOTPRequest true "邮箱与验证码"
// @Success 200 {object} response.Response{data=service.Session}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/auth/verify-otp [post]
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	sess, err := h.authService.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, sess)
}

// Signup 邮箱密码注册
// @Summary 注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body credentialRequest true "邮箱与密码"
// @Success 201 {object} response.Response{data=service.Session}
// @Failure 400 {object} response.Response
// @Router /api/v1/auth/signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	sess, err := h.authService.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sess)
}

// Login 邮箱密码登录
// @Summary 登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body credentialRequest true "邮箱与密码"
// @Success 200 {object} response.Response{data=service.Session}
// @Failure 400 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req credentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	sess, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, sess)
}

// ResetPassword 修改密码
// @Summary 修改密码
// @Tags 认证
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body passwordResetRequest true "旧密码与新密码"
// @Success 200 {object} response.Response{data=detail}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /api/v1/auth/password-reset [post]
func (h *Handler) ResetPassword(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var req passwordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	if err := h.authService.ResetPassword(c.Request.Context(), a.ID, req.CurrentPassword, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail{Detail: "Password updated successfully."})
}

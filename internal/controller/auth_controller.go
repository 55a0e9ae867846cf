package controller

import (
	"errors"

	"interview_backend/internal/service"
	"interview_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// LoginRequest defines model for interviewer login
// swagger:model LoginRequest
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary 面试官登录
// @Description 校验面试官密码并返回 JWT
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录信息"
// @Success 200 {object} util.Response{data=object} "登录成功"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "密码错误"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, err := c.AuthService.Login(req.Password)
	if err != nil {
		if errors.Is(err, util.ErrInvalidPassword) {
			util.Error(ctx, 401, "密码错误")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"token": token, "role": util.RoleInterviewer})
}

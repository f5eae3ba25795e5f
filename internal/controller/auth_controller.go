package controller

import (
	"scorm_host_backend/internal/service"
	"scorm_host_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	IsRelease   bool // 是否为生产环境
}

func NewAuthController(authService *service.AuthService, isRelease bool) *AuthController {
	return &AuthController{
		AuthService: authService,
		IsRelease:   isRelease,
	}
}

// TokenRequest swagger:model TokenRequest
type TokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RegisterUser godoc
// @Summary 登记学习者
// @Tags 用户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.RegisterUserRequest true "学习者信息"
// @Success 201 {object} util.Response{data=model.User}
// @Failure 400 {object} util.ErrorResponse
// @Failure 409 {object} util.ErrorResponse "邮箱已被登记"
// @Router /api/users [post]
func (c *AuthController) RegisterUser(ctx *gin.Context) {
	var req service.RegisterUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, user)
}

// IssueToken godoc
// @Summary 开发环境签发令牌
// @Description 仅在非 release 模式可用，生产环境的令牌由外部身份系统签发
// @Tags 认证
// @Accept json
// @Produce json
// @Param body body TokenRequest true "邮箱"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.ErrorResponse
// @Router /api/auth/token [post]
func (c *AuthController) IssueToken(ctx *gin.Context) {
	if c.IsRelease {
		util.NotFound(ctx, "")
		return
	}

	var req TokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.IssueToken(ctx.Request.Context(), req.Email)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"token": token, "user": user})
}

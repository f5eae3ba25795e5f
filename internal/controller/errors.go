package controller

import (
	"errors"
	"net/http"

	"scorm_host_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// respondError 业务错误到 HTTP 状态码的映射，未知错误只记录日志不外泄
func respondError(ctx *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		util.Error(ctx, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, util.ErrInvalidID),
		errors.Is(err, util.ErrMalformedPayload),
		errors.Is(err, util.ErrAttemptCompleted),
		errors.Is(err, util.ErrManifestMissing),
		errors.Is(err, util.ErrUnsupportedScorm):
		util.BadRequest(ctx, err.Error())
	case errors.Is(err, util.ErrAttemptNotFound),
		errors.Is(err, util.ErrCourseNotFound),
		errors.Is(err, util.ErrUserNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrCourseHasAttempts),
		errors.Is(err, util.ErrEmailRegistered):
		util.Conflict(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

// paramID 读取并校验 uuid 路径参数，失败时已写出 400
func paramID(ctx *gin.Context, name string) (string, bool) {
	id, err := util.ParseID(ctx.Param(name))
	if err != nil {
		util.BadRequest(ctx, "invalid "+name)
		return "", false
	}
	return id, true
}

// canActFor 学习者只能操作自己的记录，管理员不受限
func canActFor(ctx *gin.Context, userID string) bool {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return false
	}
	if claims.IsAdmin() || claims.UserID == userID {
		return true
	}
	util.Forbidden(ctx)
	return false
}

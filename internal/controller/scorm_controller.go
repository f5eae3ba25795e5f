package controller

import (
	"bytes"
	"io"
	"net/http"

	"scorm_host_backend/internal/service"
	"scorm_host_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// 2004 的 suspend_data 上限 64000 字符，留足余量
const maxCMIBodyBytes = 4 << 20

type ScormController struct {
	Runtime *service.RuntimeService
}

func NewScormController(runtime *service.RuntimeService) *ScormController {
	return &ScormController{Runtime: runtime}
}

// LaunchRequest 启动请求，userId 为空时使用当前登录用户
// swagger:model LaunchRequest
type LaunchRequest struct {
	UserID   string `json:"userId"`
	CourseID string `json:"courseId" binding:"required"`
	ForceNew bool   `json:"forceNew"`
}

// CommitResponse swagger:model CommitResponse
type CommitResponse struct {
	AttemptID string `json:"attemptId"`
	Saved     bool   `json:"saved"`
}

// FinishResponse swagger:model FinishResponse
type FinishResponse struct {
	AttemptID string `json:"attemptId"`
	Status    string `json:"status"`
}

func readBody(ctx *gin.Context) ([]byte, error) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxCMIBodyBytes)
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		return nil, err
	}
	return bytes.TrimSpace(body), nil
}

// ownedAttempt 加载 attempt 并校验归属，失败时已写出响应
func (c *ScormController) ownedAttempt(ctx *gin.Context) (string, bool) {
	id, ok := paramID(ctx, "attemptId")
	if !ok {
		return "", false
	}
	attempt, err := c.Runtime.GetAttempt(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return "", false
	}
	if !canActFor(ctx, attempt.UserID) {
		return "", false
	}
	return id, true
}

// @Summary 启动课程
// @Description 续学最近一次未完成的 attempt，没有或 forceNew 为 true 时新建
// @Tags SCORM运行时
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body LaunchRequest true "启动参数"
// @Success 200 {object} service.LaunchInfo
// @Failure 400 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Router /api/scorm/launch [post]
func (c *ScormController) Launch(ctx *gin.Context) {
	var req LaunchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	courseID, err := util.ParseID(req.CourseID)
	if err != nil {
		util.BadRequest(ctx, "invalid courseId")
		return
	}

	userID := ""
	if req.UserID == "" {
		if claims := util.GetUserFromContext(ctx); claims != nil {
			userID = claims.UserID
		}
	} else if userID, err = util.ParseID(req.UserID); err != nil {
		util.BadRequest(ctx, "invalid userId")
		return
	}
	if !canActFor(ctx, userID) {
		return
	}

	info, err := c.Runtime.Launch(ctx.Request.Context(), userID, courseID, req.ForceNew)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.JSON(ctx, info)
}

// @Summary 提交 CMI 数据
// @Description 标准格式为 {"payload": {...}}，不带 payload 的裸对象按旧格式兼容
// @Tags SCORM运行时
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path string true "Attempt ID"
// @Param body body object true "CMI 数据"
// @Success 200 {object} CommitResponse
// @Failure 400 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Failure 500 {object} util.ErrorResponse
// @Router /api/scorm/attempts/{attemptId}/commit [post]
func (c *ScormController) Commit(ctx *gin.Context) {
	id, ok := c.ownedAttempt(ctx)
	if !ok {
		return
	}

	body, err := readBody(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if len(body) == 0 {
		util.BadRequest(ctx, util.ErrMalformedPayload.Error())
		return
	}

	saved, err := c.Runtime.Commit(ctx.Request.Context(), id, body)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if !saved {
		util.NotFound(ctx, util.ErrAttemptNotFound.Error())
		return
	}
	util.JSON(ctx, CommitResponse{AttemptID: id, Saved: true})
}

// @Summary 结束 attempt
// @Description 可选地先提交一次 CMI 数据，然后标记为已完成
// @Tags SCORM运行时
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param attemptId path string true "Attempt ID"
// @Param body body object false "CMI 数据"
// @Success 200 {object} FinishResponse
// @Failure 400 {object} util.ErrorResponse
// @Failure 404 {object} util.ErrorResponse
// @Router /api/scorm/attempts/{attemptId}/finish [post]
func (c *ScormController) Finish(ctx *gin.Context) {
	id, ok := c.ownedAttempt(ctx)
	if !ok {
		return
	}

	body, err := readBody(ctx)
	if err != nil {
		respondError(ctx, err)
		return
	}

	finished, err := c.Runtime.Finish(ctx.Request.Context(), id, body)
	if err != nil {
		respondError(ctx, err)
		return
	}
	if !finished {
		util.NotFound(ctx, util.ErrAttemptNotFound.Error())
		return
	}
	util.JSON(ctx, FinishResponse{AttemptID: id, Status: "finished"})
}

// @Summary 续学
// @Tags SCORM运行时
// @Produce json
// @Security BearerAuth
// @Param attemptId path string true "Attempt ID"
// @Success 200 {object} service.LaunchInfo
// @Failure 400 {object} util.ErrorResponse "attempt 已完成"
// @Failure 404 {object} util.ErrorResponse
// @Router /api/scorm/attempts/{attemptId}/resume [post]
func (c *ScormController) Resume(ctx *gin.Context) {
	id, ok := c.ownedAttempt(ctx)
	if !ok {
		return
	}
	info, err := c.Runtime.Resume(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.JSON(ctx, info)
}

// @Summary attempt 详情
// @Tags SCORM运行时
// @Produce json
// @Security BearerAuth
// @Param attemptId path string true "Attempt ID"
// @Success 200 {object} model.Attempt
// @Failure 404 {object} util.ErrorResponse
// @Router /api/scorm/attempts/{attemptId} [get]
func (c *ScormController) GetAttempt(ctx *gin.Context) {
	id, ok := c.ownedAttempt(ctx)
	if !ok {
		return
	}
	attempt, err := c.Runtime.GetAttempt(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.JSON(ctx, attempt)
}

// @Summary attempt 所属课程的学习进度
// @Tags SCORM运行时
// @Produce json
// @Security BearerAuth
// @Param attemptId path string true "Attempt ID"
// @Success 200 {object} service.ProgressInfo
// @Failure 404 {object} util.ErrorResponse
// @Router /api/scorm/attempts/{attemptId}/progress [get]
func (c *ScormController) AttemptProgress(ctx *gin.Context) {
	id, ok := c.ownedAttempt(ctx)
	if !ok {
		return
	}
	progress, err := c.Runtime.ProgressForAttempt(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.JSON(ctx, progress)
}

func userCourseParams(ctx *gin.Context) (string, string, bool) {
	userID, ok := paramID(ctx, "userId")
	if !ok {
		return "", "", false
	}
	courseID, ok := paramID(ctx, "courseId")
	if !ok {
		return "", "", false
	}
	if !canActFor(ctx, userID) {
		return "", "", false
	}
	return userID, courseID, true
}

// @Summary 学习者课程进度
// @Description 没有任何 attempt 时返回 not_attempted
// @Tags SCORM运行时
// @Produce json
// @Security BearerAuth
// @Param userId path string true "用户ID"
// @Param courseId path string true "课程ID"
// @Success 200 {object} service.ProgressInfo
// @Failure 404 {object} util.ErrorResponse
// @Router /api/scorm/users/{userId}/courses/{courseId}/progress [get]
func (c *ScormController) UserProgress(ctx *gin.Context) {
	userID, courseID, ok := userCourseParams(ctx)
	if !ok {
		return
	}
	progress, err := c.Runtime.GetProgress(ctx.Request.Context(), userID, courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.JSON(ctx, progress)
}

// @Summary 学习者课程的全部 attempt
// @Tags SCORM运行时
// @Produce json
// @Security BearerAuth
// @Param userId path string true "用户ID"
// @Param courseId path string true "课程ID"
// @Success 200 {array} model.Attempt
// @Failure 404 {object} util.ErrorResponse
// @Router /api/scorm/users/{userId}/courses/{courseId}/attempts [get]
func (c *ScormController) ListAttempts(ctx *gin.Context) {
	userID, courseID, ok := userCourseParams(ctx)
	if !ok {
		return
	}
	attempts, err := c.Runtime.ListAttempts(ctx.Request.Context(), userID, courseID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.JSON(ctx, attempts)
}

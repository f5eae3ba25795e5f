package controller

import (
	"scorm_host_backend/internal/service"
	"scorm_host_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type CourseController struct {
	PackageService *service.PackageService
}

func NewCourseController(packageService *service.PackageService) *CourseController {
	return &CourseController{PackageService: packageService}
}

// @Summary 课程列表
// @Tags 课程管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]model.Course}
// @Router /api/courses [get]
func (c *CourseController) ListCourses(ctx *gin.Context) {
	courses, err := c.PackageService.ListCourses(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

// @Summary 课程详情
// @Tags 课程管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response{data=model.Course}
// @Failure 404 {object} util.ErrorResponse
// @Router /api/courses/{id} [get]
func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	course, err := c.PackageService.GetCourse(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

// @Summary 登记课程包
// @Description 课程包需已解压到存储中，且根目录包含 imsmanifest.xml
// @Tags 课程管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.RegisterCourseRequest true "课程信息"
// @Success 201 {object} util.Response{data=model.Course}
// @Failure 400 {object} util.ErrorResponse
// @Router /api/courses [post]
func (c *CourseController) RegisterCourse(ctx *gin.Context) {
	var req service.RegisterCourseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	course, err := c.PackageService.RegisterCourse(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

// @Summary 删除课程
// @Description 存在学习记录的课程不能删除
// @Tags 课程管理
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.ErrorResponse
// @Failure 409 {object} util.ErrorResponse
// @Router /api/courses/{id} [delete]
func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	if err := c.PackageService.DeleteCourse(ctx.Request.Context(), id); err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"id": id})
}

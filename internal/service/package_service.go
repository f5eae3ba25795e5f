package service

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"scorm_host_backend/internal/model"
	"scorm_host_backend/internal/repository"
	"scorm_host_backend/internal/util"
	"scorm_host_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const manifestFile = "imsmanifest.xml"

// PackageService 课程包注册与启动文件解析
type PackageService struct {
	CourseRepo        *repository.CourseRepository
	AttemptRepo       *repository.AttemptRepository
	Storage           *StorageService
	DefaultLaunchFile string
}

func NewPackageService(
	courseRepo *repository.CourseRepository,
	attemptRepo *repository.AttemptRepository,
	storage *StorageService,
	defaultLaunchFile string,
) *PackageService {
	if defaultLaunchFile == "" {
		defaultLaunchFile = "index_lms.html"
	}
	return &PackageService{
		CourseRepo:        courseRepo,
		AttemptRepo:       attemptRepo,
		Storage:           storage,
		DefaultLaunchFile: defaultLaunchFile,
	}
}

type RegisterScoRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Title      string `json:"title"`
	LaunchFile string `json:"launchFile" binding:"required"`
}

type RegisterCourseRequest struct {
	ID          string               `json:"id"`
	Title       string               `json:"title" binding:"required"`
	Version     string               `json:"version"`
	PackagePath string               `json:"packagePath" binding:"required"`
	LaunchScoID string               `json:"launchScoId"`
	Scos        []RegisterScoRequest `json:"scos"`
}

func (s *PackageService) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.CourseRepo.FindByIDWithScos(ctx, id)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, util.ErrCourseNotFound
	}
	return course, nil
}

func (s *PackageService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return s.CourseRepo.List(ctx)
}

func isHTMLFile(name string) bool {
	p := name
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".html", ".htm":
		return true
	}
	return false
}

// ResolveLaunchFile 依次尝试：launch_sco_id 对应的 SCO、launch_sco_id 本身是 html 文件、
// 第一个注册的 SCO、默认启动文件
func (s *PackageService) ResolveLaunchFile(ctx context.Context, course *model.Course) (string, error) {
	if id := strings.TrimSpace(course.LaunchScoID); id != "" {
		sco, err := s.CourseRepo.FindSco(ctx, course.ID, id)
		if err != nil {
			return "", err
		}
		if sco != nil && sco.LaunchFile != "" {
			return sco.LaunchFile, nil
		}
		if isHTMLFile(id) {
			return id, nil
		}
	}

	first, err := s.CourseRepo.FirstSco(ctx, course.ID)
	if err != nil {
		return "", err
	}
	if first != nil && first.LaunchFile != "" {
		return first.LaunchFile, nil
	}
	return s.DefaultLaunchFile, nil
}

// LaunchURL 内容入口地址，附带 attemptId/courseId/userId 供浏览器端适配层回传
func (s *PackageService) LaunchURL(ctx context.Context, course *model.Course, attempt *model.Attempt) (string, error) {
	launchFile, err := s.ResolveLaunchFile(ctx, course)
	if err != nil {
		return "", err
	}

	file, rawQuery, _ := strings.Cut(launchFile, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		query = url.Values{}
	}
	query.Set("attemptId", attempt.ID)
	query.Set("courseId", course.ID)
	query.Set("userId", attempt.UserID)

	base := s.Storage.PublicURL(path.Join(course.PackagePath, file))
	return base + "?" + query.Encode(), nil
}

func normalizeVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	switch {
	case v == "":
		return model.ScormVersion12, nil
	case strings.HasPrefix(v, model.ScormVersion2004), strings.HasPrefix(v, model.ScormVersion12):
		return v, nil
	}
	return "", util.ErrUnsupportedScorm
}

// RegisterCourse 登记已解压到存储中的课程包
func (s *PackageService) RegisterCourse(ctx context.Context, req RegisterCourseRequest) (*model.Course, error) {
	version, err := normalizeVersion(req.Version)
	if err != nil {
		return nil, err
	}

	id := strings.TrimSpace(req.ID)
	if id != "" {
		if id, err = util.ParseID(id); err != nil {
			return nil, err
		}
	}

	ok, err := s.Storage.Exists(ctx, path.Join(req.PackagePath, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("check manifest: %w", err)
	}
	if !ok {
		return nil, util.ErrManifestMissing
	}

	course := &model.Course{
		Title:       strings.TrimSpace(req.Title),
		Version:     version,
		PackagePath: cleanKey(req.PackagePath),
		LaunchScoID: strings.TrimSpace(req.LaunchScoID),
	}
	course.ID = id
	for i, sco := range req.Scos {
		title := sco.Title
		if title == "" {
			title = sco.Identifier
		}
		course.Scos = append(course.Scos, model.Sco{
			Identifier: sco.Identifier,
			Title:      title,
			LaunchFile: sco.LaunchFile,
			Position:   i,
		})
	}

	if err := s.CourseRepo.Create(ctx, course); err != nil {
		return nil, err
	}

	logger.Log.Info("Course registered",
		zap.String("courseId", course.ID),
		zap.String("version", course.Version),
		zap.Int("scos", len(course.Scos)))
	return course, nil
}

// DeleteCourse 有学习记录的课程不允许删除
func (s *PackageService) DeleteCourse(ctx context.Context, id string) error {
	var course *model.Course
	err := s.CourseRepo.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses := s.CourseRepo.WithTx(tx)
		var err error
		course, err = courses.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if course == nil {
			return util.ErrCourseNotFound
		}

		// 计数和删除在同一事务内，新建 attempt 会等待课程行锁
		count, err := s.AttemptRepo.WithTx(tx).CountByCourse(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return util.ErrCourseHasAttempts
		}
		return courses.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	// 数据库记录已删除，文件清理失败只记录日志
	if err := s.Storage.DeletePrefix(ctx, course.PackagePath); err != nil {
		logger.Log.Warn("Failed to remove package files",
			zap.String("courseId", id),
			zap.String("packagePath", course.PackagePath),
			zap.Error(err))
	}
	return nil
}

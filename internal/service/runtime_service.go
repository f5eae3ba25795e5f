package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"scorm_host_backend/internal/model"
	"scorm_host_backend/internal/repository"
	"scorm_host_backend/internal/scorm"
	"scorm_host_backend/internal/util"
	"scorm_host_backend/pkg/logger"
	"scorm_host_backend/pkg/monitoring"
	"scorm_host_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EntryResume   = "resume"
	EntryAbInitio = "ab-initio"
)

// ResumeData 适配层用于预置 cmi.* 初值
type ResumeData struct {
	Entry          string `json:"entry"`
	LessonLocation string `json:"lessonLocation"`
	SuspendData    string `json:"suspendData"`
	LaunchData     string `json:"launchData"`
	LessonMode     string `json:"lessonMode"`
	TotalTimeMs    int64  `json:"totalTimeMs"`
}

// LaunchInfo 启动结果
type LaunchInfo struct {
	AttemptID        string       `json:"attemptId"`
	UserID           string       `json:"userId"`
	CourseID         string       `json:"courseId"`
	CourseTitle      string       `json:"courseTitle"`
	CourseVersion    string       `json:"courseVersion"`
	AttemptNumber    int          `json:"attemptNumber"`
	LaunchURL        string       `json:"launchUrl"`
	IsResume         bool         `json:"isResume"`
	CompletionStatus string       `json:"completionStatus"`
	SuccessStatus    string       `json:"successStatus"`
	ScoreRaw         *model.Score `json:"scoreRaw,omitempty"`
	LastAccessedOn   *time.Time   `json:"lastAccessedOn,omitempty"`
	ResumeData       ResumeData   `json:"resumeData"`
}

// ProgressInfo 学习者在某课程上的进度快照
type ProgressInfo struct {
	UserID           string       `json:"userId"`
	CourseID         string       `json:"courseId"`
	AttemptID        string       `json:"attemptId,omitempty"`
	AttemptNumber    int          `json:"attemptNumber"`
	Status           string       `json:"status"`
	CompletionStatus string       `json:"completionStatus"`
	SuccessStatus    string       `json:"successStatus"`
	Score            *model.Score `json:"score,omitempty"`
	ScoreMin         *model.Score `json:"scoreMin,omitempty"`
	ScoreMax         *model.Score `json:"scoreMax,omitempty"`
	ScoreScaled      *float64     `json:"scoreScaled,omitempty"`
	StartedOn        *time.Time   `json:"startedOn,omitempty"`
	CompletedOn      *time.Time   `json:"completedOn,omitempty"`
	LastAccessedOn   *time.Time   `json:"lastAccessedOn,omitempty"`
	TotalTimeMs      int64        `json:"totalTimeMs"`
	LessonLocation   string       `json:"lessonLocation"`
	SuspendData      string       `json:"suspendData"`
}

// RuntimeService attempt 状态机：启动、提交、结束、进度查询
type RuntimeService struct {
	DB          *gorm.DB
	AttemptRepo *repository.AttemptRepository
	CourseRepo  *repository.CourseRepository
	UserRepo    *repository.UserRepository
	Packages    *PackageService
	Locker      LaunchLocker

	clampSuccess atomic.Bool
	now          func() time.Time
}

func NewRuntimeService(
	db *gorm.DB,
	attemptRepo *repository.AttemptRepository,
	courseRepo *repository.CourseRepository,
	userRepo *repository.UserRepository,
	packages *PackageService,
	locker LaunchLocker,
	clampSuccessStatus bool,
) *RuntimeService {
	s := &RuntimeService{
		DB:          db,
		AttemptRepo: attemptRepo,
		CourseRepo:  courseRepo,
		UserRepo:    userRepo,
		Packages:    packages,
		Locker:      locker,
		now:         func() time.Time { return time.Now().UTC() },
	}
	s.clampSuccess.Store(clampSuccessStatus)
	return s
}

// SetClampSuccessStatus 配置热更新时调用
func (s *RuntimeService) SetClampSuccessStatus(v bool) {
	s.clampSuccess.Store(v)
}

func (s *RuntimeService) options() scorm.Options {
	return scorm.Options{ClampSuccessStatus: s.clampSuccess.Load()}
}

func (s *RuntimeService) lockLaunch(ctx context.Context, userID, courseID string) func() {
	if s.Locker == nil {
		return func() {}
	}
	unlock, err := s.Locker.Lock(ctx, userID, courseID)
	if err != nil {
		// 锁不可用时退化为无锁，唯一索引兜底
		logger.Log.Warn("Launch lock unavailable, continuing without it",
			zap.String("userId", userID),
			zap.String("courseId", courseID),
			zap.Error(err))
		return func() {}
	}
	return unlock
}

// Launch 续学最近一次未完成的 attempt，没有或 forceNew 时新建
func (s *RuntimeService) Launch(ctx context.Context, userID, courseID string, forceNew bool) (_ *LaunchInfo, err error) {
	ctx, span := tracing.StartSpan(ctx, "RuntimeService.Launch",
		attribute.String("scorm.user_id", userID),
		attribute.String("scorm.course_id", courseID),
		attribute.Bool("scorm.force_new", forceNew))
	defer func() { tracing.EndSpan(span, err) }()

	course, err := s.CourseRepo.FindByID(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, util.ErrCourseNotFound
	}
	ok, err := s.UserRepo.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrUserNotFound
	}

	unlock := s.lockLaunch(ctx, userID, courseID)
	defer unlock()

	attempt, prevAccess, resumed, err := s.findOrCreate(ctx, userID, courseID, forceNew)
	if err != nil {
		return nil, err
	}

	return s.launchInfo(ctx, course, attempt, prevAccess, resumed)
}

func (s *RuntimeService) launchInfo(ctx context.Context, course *model.Course, attempt *model.Attempt, prevAccess *time.Time, resumed bool) (*LaunchInfo, error) {
	launchURL, err := s.Packages.LaunchURL(ctx, course, attempt)
	if err != nil {
		return nil, err
	}

	info := &LaunchInfo{
		AttemptID:        attempt.ID,
		UserID:           attempt.UserID,
		CourseID:         course.ID,
		CourseTitle:      course.Title,
		CourseVersion:    course.Version,
		AttemptNumber:    attempt.AttemptNumber,
		LaunchURL:        launchURL,
		IsResume:         resumed,
		CompletionStatus: attempt.CompletionStatus,
		SuccessStatus:    attempt.SuccessStatus,
		ScoreRaw:         attempt.ScoreRaw,
		LastAccessedOn:   prevAccess,
		ResumeData: ResumeData{
			Entry:          EntryAbInitio,
			LessonLocation: attempt.LessonLocation,
			SuspendData:    attempt.SuspendData,
			LaunchData:     attempt.LaunchData,
			LessonMode:     attempt.LessonMode,
			TotalTimeMs:    attempt.TotalTimeMs,
		},
	}
	if resumed {
		info.ResumeData.Entry = EntryResume
		monitoring.ScormLaunches.WithLabelValues(monitoring.LaunchResume).Inc()
	} else {
		monitoring.ScormLaunches.WithLabelValues(monitoring.LaunchNew).Inc()
	}

	logger.Log.Info("Attempt launched",
		zap.String("attemptId", attempt.ID),
		zap.String("userId", attempt.UserID),
		zap.String("courseId", course.ID),
		zap.Int("attemptNumber", attempt.AttemptNumber),
		zap.Bool("resume", resumed))
	return info, nil
}

// findOrCreate 返回 attempt、续学前的最后访问时间、是否续学
func (s *RuntimeService) findOrCreate(ctx context.Context, userID, courseID string, forceNew bool) (*model.Attempt, *time.Time, bool, error) {
	if !forceNew {
		attempt, prev, err := s.resumeOpen(ctx, userID, courseID)
		if err != nil || attempt != nil {
			return attempt, prev, attempt != nil, err
		}
	}

	attempt, err := s.createAttempt(ctx, userID, courseID)
	if err == nil {
		return attempt, nil, false, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, nil, false, err
	}

	// 并发 launch 抢先写入了同一序号
	logger.Log.Warn("Concurrent launch detected",
		zap.String("userId", userID),
		zap.String("courseId", courseID),
		zap.Bool("forceNew", forceNew))
	if !forceNew {
		attempt, prev, err := s.resumeOpen(ctx, userID, courseID)
		if err != nil || attempt != nil {
			return attempt, prev, attempt != nil, err
		}
	}
	attempt, err = s.createAttempt(ctx, userID, courseID)
	if err != nil {
		return nil, nil, false, err
	}
	return attempt, nil, false, nil
}

func (s *RuntimeService) resumeOpen(ctx context.Context, userID, courseID string) (*model.Attempt, *time.Time, error) {
	open, err := s.AttemptRepo.FindLatestOpen(ctx, userID, courseID)
	if err != nil || open == nil {
		return nil, nil, err
	}
	prev := open.LastAccessedAt
	now := s.now()
	if err := s.AttemptRepo.TouchLastAccessed(ctx, open.ID, now); err != nil {
		return nil, nil, err
	}
	open.LastAccessedAt = now
	return open, &prev, nil
}

func (s *RuntimeService) createAttempt(ctx context.Context, userID, courseID string) (*model.Attempt, error) {
	var attempt *model.Attempt
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		course, err := s.CourseRepo.WithTx(tx).FindByIDForShare(ctx, courseID)
		if err != nil {
			return err
		}
		if course == nil {
			return util.ErrCourseNotFound
		}

		repo := s.AttemptRepo.WithTx(tx)
		max, err := repo.MaxAttemptNumber(ctx, userID, courseID)
		if err != nil {
			return err
		}
		attempt = model.NewAttempt(userID, courseID, max+1, s.now())
		return repo.Create(ctx, attempt)
	})
	if err != nil {
		return nil, err
	}
	return attempt, nil
}

// Commit 合并一次 CMI 提交。attempt 不存在时返回 false
func (s *RuntimeService) Commit(ctx context.Context, attemptID string, body []byte) (bool, error) {
	return s.save(ctx, "RuntimeService.Commit", attemptID, body, false)
}

// Finish 先合并可选的 CMI 数据，再强制标记完成，二者在同一事务内
func (s *RuntimeService) Finish(ctx context.Context, attemptID string, body []byte) (bool, error) {
	return s.save(ctx, "RuntimeService.Finish", attemptID, body, true)
}

func (s *RuntimeService) save(ctx context.Context, op, attemptID string, body []byte, finish bool) (saved bool, err error) {
	ctx, span := tracing.StartSpan(ctx, op, attribute.String("scorm.attempt_id", attemptID))
	defer func() { tracing.EndSpan(span, err) }()

	source := monitoring.SourceCommit
	if finish {
		source = monitoring.SourceFinish
	}

	var data []byte
	if len(body) > 0 {
		raw, wrapped, err := scorm.Unwrap(body)
		if err != nil {
			monitoring.ScormCommits.WithLabelValues("", monitoring.ResultMalformed).Inc()
			return false, err
		}
		if !wrapped {
			logger.Log.Debug("Bare cmi payload accepted", zap.String("attemptId", attemptID))
		}
		data = raw
	}

	var (
		version   string
		completed bool
		notFound  bool
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.AttemptRepo.WithTx(tx)
		attempt, err := repo.FindByIDForUpdate(ctx, attemptID)
		if err != nil {
			return err
		}
		if attempt == nil {
			notFound = true
			return nil
		}

		course, err := s.CourseRepo.WithTx(tx).FindByID(ctx, attempt.CourseID)
		if err != nil {
			return err
		}
		version = model.ScormVersion12
		if course != nil {
			version = course.Version
		}

		now := s.now()
		attempt.LastAccessedAt = now

		if data != nil {
			update, err := scorm.ParserFor(version, s.options()).Parse(data)
			if err != nil {
				return err
			}
			attempt.AttemptState = datatypes.JSON(body)
			completed = update.ApplyTo(attempt, now)
		}

		if finish {
			attempt.CompletionStatus = model.CompletionCompleted
			if attempt.CompletedAt == nil {
				t := now
				attempt.CompletedAt = &t
				completed = true
			}
		}

		return repo.Update(ctx, attempt)
	})

	switch {
	case errors.Is(err, scorm.ErrMalformedPayload):
		monitoring.ScormCommits.WithLabelValues(version, monitoring.ResultMalformed).Inc()
		return false, err
	case err != nil:
		monitoring.ScormCommits.WithLabelValues(version, monitoring.ResultError).Inc()
		return false, fmt.Errorf("save attempt %s: %w", attemptID, err)
	case notFound:
		monitoring.ScormCommits.WithLabelValues(version, monitoring.ResultNotFound).Inc()
		return false, nil
	}

	monitoring.ScormCommits.WithLabelValues(version, monitoring.ResultSaved).Inc()
	if completed {
		monitoring.ScormCompletions.WithLabelValues(source).Inc()
		logger.Log.Info("Attempt completed",
			zap.String("attemptId", attemptID),
			zap.String("source", source))
	}
	logger.Log.Debug("Attempt saved",
		zap.String("attemptId", attemptID),
		zap.String("version", version),
		zap.Bool("finish", finish))
	return true, nil
}

// GetProgress 取最近开始的 attempt；没有任何记录时返回 not_attempted
func (s *RuntimeService) GetProgress(ctx context.Context, userID, courseID string) (*ProgressInfo, error) {
	ok, err := s.CourseRepo.Exists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrCourseNotFound
	}

	latest, err := s.AttemptRepo.FindLatest(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return &ProgressInfo{
			UserID:           userID,
			CourseID:         courseID,
			Status:           util.ProgressNotAttempted,
			CompletionStatus: model.CompletionNotAttempted,
			SuccessStatus:    model.SuccessUnknown,
		}, nil
	}
	return progressFromAttempt(latest), nil
}

func progressFromAttempt(a *model.Attempt) *ProgressInfo {
	status := util.ProgressIncomplete
	if a.CompletedAt != nil {
		status = util.ProgressCompleted
	}
	started := a.StartedAt
	accessed := a.LastAccessedAt
	return &ProgressInfo{
		UserID:           a.UserID,
		CourseID:         a.CourseID,
		AttemptID:        a.ID,
		AttemptNumber:    a.AttemptNumber,
		Status:           status,
		CompletionStatus: a.CompletionStatus,
		SuccessStatus:    a.SuccessStatus,
		Score:            a.ScoreRaw,
		ScoreMin:         a.ScoreMin,
		ScoreMax:         a.ScoreMax,
		ScoreScaled:      a.ScoreScaled,
		StartedOn:        &started,
		CompletedOn:      a.CompletedAt,
		LastAccessedOn:   &accessed,
		TotalTimeMs:      a.TotalTimeMs,
		LessonLocation:   a.LessonLocation,
		SuspendData:      a.SuspendData,
	}
}

func (s *RuntimeService) GetAttempt(ctx context.Context, attemptID string) (*model.Attempt, error) {
	attempt, err := s.AttemptRepo.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, util.ErrAttemptNotFound
	}
	return attempt, nil
}

// ProgressForAttempt 按 attempt 反查 (user, course) 的进度
func (s *RuntimeService) ProgressForAttempt(ctx context.Context, attemptID string) (*ProgressInfo, error) {
	attempt, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return s.GetProgress(ctx, attempt.UserID, attempt.CourseID)
}

// Resume 重新进入指定的未完成 attempt
func (s *RuntimeService) Resume(ctx context.Context, attemptID string) (*LaunchInfo, error) {
	attempt, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if !attempt.IsOpen() {
		return nil, util.ErrAttemptCompleted
	}
	course, err := s.CourseRepo.FindByID(ctx, attempt.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, util.ErrCourseNotFound
	}

	prev := attempt.LastAccessedAt
	now := s.now()
	if err := s.AttemptRepo.TouchLastAccessed(ctx, attempt.ID, now); err != nil {
		return nil, err
	}
	attempt.LastAccessedAt = now
	return s.launchInfo(ctx, course, attempt, &prev, true)
}

func (s *RuntimeService) ListAttempts(ctx context.Context, userID, courseID string) ([]model.Attempt, error) {
	ok, err := s.CourseRepo.Exists(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, util.ErrCourseNotFound
	}
	return s.AttemptRepo.ListByUserAndCourse(ctx, userID, courseID)
}

package database

import (
	"time"

	"scorm_host_backend/internal/model"
	"scorm_host_backend/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func demoScore(v int64) *model.Score {
	return model.NewScore(decimal.NewFromInt(v))
}

func demoAttempt(id string, user *model.User, course *model.Course, started time.Time, completion, success string, raw int64, location string, took time.Duration) model.Attempt {
	a := model.NewAttempt(user.ID, course.ID, 1, started)
	a.ID = id
	a.CompletionStatus = completion
	a.SuccessStatus = success
	a.ScoreRaw = demoScore(raw)
	a.ScoreMin = demoScore(0)
	a.ScoreMax = demoScore(100)
	scaled := float64(raw) / 100
	a.ScoreScaled = &scaled
	a.LessonLocation = location
	a.LessonMode = model.LessonModeNormal
	if took > 0 {
		completed := started.Add(took)
		a.CompletedAt = &completed
		a.LastAccessedAt = completed
		a.TotalTimeMs = took.Milliseconds()
	}
	return *a
}

// SeedDemoData 开发环境演示数据，库中已有用户或课程时跳过
func SeedDemoData(db *gorm.DB) error {
	var users, courses int64
	if err := db.Model(&model.User{}).Count(&users).Error; err != nil {
		return err
	}
	if err := db.Model(&model.Course{}).Count(&courses).Error; err != nil {
		return err
	}
	if users > 0 || courses > 0 {
		return nil
	}

	demoUsers := []model.User{
		{UUIDBase: model.UUIDBase{ID: "11111111-1111-1111-1111-111111111111"}, Name: "John Doe", Email: "john.doe@example.com", Role: model.RoleLearner},
		{UUIDBase: model.UUIDBase{ID: "22222222-2222-2222-2222-222222222222"}, Name: "Jane Smith", Email: "jane.smith@example.com", Role: model.RoleLearner},
		{UUIDBase: model.UUIDBase{ID: "33333333-3333-3333-3333-333333333333"}, Name: "Bob Johnson", Email: "bob.johnson@example.com", Role: model.RoleLearner},
		{UUIDBase: model.UUIDBase{ID: "c09fe532-00d4-4af4-a50d-b5ce8a6f5894"}, Name: "Test User", Email: "test.user@example.com", Role: model.RoleAdmin},
	}

	demoCourses := []model.Course{
		{
			UUIDBase:    model.UUIDBase{ID: "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"},
			Title:       "Introduction to SCORM",
			Version:     model.ScormVersion12,
			PackagePath: "courses/intro-scorm",
			LaunchScoID: "intro_sco_001",
			Scos: []model.Sco{
				{UUIDBase: model.UUIDBase{ID: "1a1a1a1a-1a1a-1a1a-1a1a-1a1a1a1a1a1a"}, Identifier: "intro_sco_001", Title: "SCORM Overview", LaunchFile: "content/lesson1/index.html", Position: 0},
				{UUIDBase: model.UUIDBase{ID: "2b2b2b2b-2b2b-2b2b-2b2b-2b2b2b2b2b2b"}, Identifier: "intro_sco_002", Title: "SCORM Implementation", LaunchFile: "content/lesson2/index.html", Position: 1},
			},
		},
		{
			UUIDBase:    model.UUIDBase{ID: "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"},
			Title:       "Advanced Web Development",
			Version:     model.ScormVersion2004,
			PackagePath: "courses/advanced-web-dev",
			LaunchScoID: "web_dev_sco_001",
			Scos: []model.Sco{
				{UUIDBase: model.UUIDBase{ID: "3c3c3c3c-3c3c-3c3c-3c3c-3c3c3c3c3c3c"}, Identifier: "web_dev_sco_001", Title: "Modern Frameworks", LaunchFile: "content/frameworks/index.html"},
			},
		},
		{
			UUIDBase:    model.UUIDBase{ID: "cccccccc-cccc-cccc-cccc-cccccccccccc"},
			Title:       "Database Management Fundamentals",
			Version:     model.ScormVersion12,
			PackagePath: "courses/database-fundamentals",
			LaunchScoID: "db_sco_001",
			Scos: []model.Sco{
				{UUIDBase: model.UUIDBase{ID: "4d4d4d4d-4d4d-4d4d-4d4d-4d4d4d4d4d4d"}, Identifier: "db_sco_001", Title: "Database Design Principles", LaunchFile: "content/db-design/index.html"},
			},
		},
		{
			UUIDBase:    model.UUIDBase{ID: "3a4900bf-a18d-4372-9158-47710f5e1bdc"},
			Title:       "Development Test Course",
			Version:     model.ScormVersion12,
			PackagePath: "SHP",
			LaunchScoID: "index_lms.html",
			Scos: []model.Sco{
				{UUIDBase: model.UUIDBase{ID: "5e5e5e5e-5e5e-5e5e-5e5e-5e5e5e5e5e5e"}, Identifier: "index_lms.html", Title: "Development Test Content", LaunchFile: "index_lms.html"},
			},
		},
	}

	now := time.Now().UTC()
	attempts := []model.Attempt{
		demoAttempt("a1a1a1a1-a1a1-a1a1-a1a1-a1a1a1a1a1a1", &demoUsers[0], &demoCourses[0],
			now.AddDate(0, 0, -7), model.CompletionCompleted, model.SuccessPassed, 85, "lesson2", 45*time.Minute),
		demoAttempt("b2b2b2b2-b2b2-b2b2-b2b2-b2b2b2b2b2b2", &demoUsers[1], &demoCourses[1],
			now.AddDate(0, 0, -3), model.CompletionIncomplete, model.SuccessUnknown, 0, "intro", 0),
		demoAttempt("c3c3c3c3-c3c3-c3c3-c3c3-c3c3c3c3c3c3", &demoUsers[2], &demoCourses[2],
			now.AddDate(0, 0, -1), model.CompletionCompleted, model.SuccessPassed, 92, "conclusion", 75*time.Minute),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&demoUsers).Error; err != nil {
			return err
		}
		if err := tx.Create(&demoCourses).Error; err != nil {
			return err
		}
		return tx.Create(&attempts).Error
	})
	if err != nil {
		return err
	}

	logger.Log.Info("Demo data seeded",
		zap.Int("users", len(demoUsers)),
		zap.Int("courses", len(demoCourses)),
		zap.Int("attempts", len(attempts)))
	return nil
}

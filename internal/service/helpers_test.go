package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"scorm_host_backend/internal/config"
	"scorm_host_backend/internal/model"
	"scorm_host_backend/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	DB       *gorm.DB
	Root     string
	Runtime  *RuntimeService
	Packages *PackageService
	Clock    time.Time
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库每个连接独立，固定单连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	root := t.TempDir()

	storage := &StorageService{Provider: &LocalStorageProvider{Config: &config.StorageConfig{
		LocalPath:    root,
		PublicPrefix: "/scorm-packages",
	}}}

	attempts := repository.NewAttemptRepository(db)
	courses := repository.NewCourseRepository(db)
	users := repository.NewUserRepository(db)
	packages := NewPackageService(courses, attempts, storage, "index_lms.html")
	runtime := NewRuntimeService(db, attempts, courses, users, packages, nil, false)

	env := &testEnv{
		DB:       db,
		Root:     root,
		Runtime:  runtime,
		Packages: packages,
		Clock:    time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	runtime.now = func() time.Time { return env.Clock }
	return env
}

// advance 推进测试时钟
func (e *testEnv) advance(d time.Duration) {
	e.Clock = e.Clock.Add(d)
}

func (e *testEnv) seedUser(t *testing.T, name string) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, e.DB.Create(u).Error)
	return u
}

func (e *testEnv) seedCourse(t *testing.T, title, version string, scos ...model.Sco) *model.Course {
	t.Helper()
	for i := range scos {
		scos[i].Position = i
	}
	c := &model.Course{
		Title:       title,
		Version:     version,
		PackagePath: "courses/" + title,
		Scos:        scos,
	}
	require.NoError(t, e.DB.Create(c).Error)
	return c
}

// writePackageFile 在本地存储根下创建课程包文件
func (e *testEnv) writePackageFile(t *testing.T, key string) {
	t.Helper()
	full := filepath.Join(e.Root, filepath.FromSlash(key))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, []byte("<html></html>"), 0644))
}

func (e *testEnv) reload(t *testing.T, attemptID string) *model.Attempt {
	t.Helper()
	a, err := e.Runtime.GetAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	return a
}

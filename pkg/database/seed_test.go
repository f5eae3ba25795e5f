package database

import (
	"testing"

	"scorm_host_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, Migrate(db))
	return db
}

func TestSeedDemoData(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, SeedDemoData(db))

	var users, courses, scos, attempts int64
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&model.Course{}).Count(&courses).Error)
	require.NoError(t, db.Model(&model.Sco{}).Count(&scos).Error)
	require.NoError(t, db.Model(&model.Attempt{}).Count(&attempts).Error)
	assert.Equal(t, int64(4), users)
	assert.Equal(t, int64(4), courses)
	assert.Equal(t, int64(5), scos)
	assert.Equal(t, int64(3), attempts)

	var a model.Attempt
	require.NoError(t, db.Where("id = ?", "a1a1a1a1-a1a1-a1a1-a1a1-a1a1a1a1a1a1").First(&a).Error)
	assert.Equal(t, model.CompletionCompleted, a.CompletionStatus)
	require.NotNil(t, a.ScoreRaw)
	assert.Equal(t, "85", a.ScoreRaw.String())
	assert.NotNil(t, a.CompletedAt)
	assert.Equal(t, int64(45*60*1000), a.TotalTimeMs)

	// 再次执行不会重复写入
	require.NoError(t, SeedDemoData(db))
	require.NoError(t, db.Model(&model.User{}).Count(&users).Error)
	assert.Equal(t, int64(4), users)
}

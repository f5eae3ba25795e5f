package database

import (
	"fmt"

	"scorm_host_backend/internal/config"
	"scorm_host_backend/internal/model"
	"scorm_host_backend/internal/util"
	"scorm_host_backend/pkg/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", util.DriverMySQL:
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case util.DriverSQLite:
		return sqlite.Open(cfg.SQLitePath), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	d, err := dialector(&cfg.Database)
	if err != nil {
		return nil, err
	}

	level := gormlogger.Warn
	if logger.Level() == zapcore.DebugLevel {
		level = gormlogger.Info
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.NewGormLogger(level),
		// 唯一索引冲突统一转换为 gorm.ErrDuplicatedKey，launch 并发时依赖它重读
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == util.DriverSQLite {
		// sqlite 单写者，避免 database is locked
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	logger.Log.Info("Database connection established", zap.String("driver", cfg.Database.Driver))

	// release 模式默认不迁移，需要显式 -migrate
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		logger.Log.Info("Database migration completed")
	}

	if cfg.Database.SeedDemoData {
		if err := SeedDemoData(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(model.AllModels()...)
}

package repository

import (
	"context"
	"errors"
	"time"

	"scorm_host_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// WithTx 返回绑定到事务的仓库
func (r *AttemptRepository) WithTx(tx *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: tx}
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *model.Attempt) error {
	return r.DB.WithContext(ctx).Create(attempt).Error
}

func (r *AttemptRepository) Update(ctx context.Context, attempt *model.Attempt) error {
	return r.DB.WithContext(ctx).Save(attempt).Error
}

// FindByID 不存在时返回 (nil, nil)
func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&a).Error
	return found(&a, err)
}

// FindByIDForUpdate 在事务中加行锁读取，同一 attempt 的并发提交串行执行
func (r *AttemptRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&a).Error
	return found(&a, err)
}

// FindLatestOpen 最近开始且未完成的 attempt
func (r *AttemptRepository) FindLatestOpen(ctx context.Context, userID, courseID string) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND course_id = ? AND completed_at IS NULL", userID, courseID).
		Order("started_at DESC").
		Order("attempt_number DESC").
		First(&a).Error
	return found(&a, err)
}

// FindLatest 最近开始的 attempt，不论是否完成
func (r *AttemptRepository) FindLatest(ctx context.Context, userID, courseID string) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("started_at DESC").
		Order("attempt_number DESC").
		First(&a).Error
	return found(&a, err)
}

func (r *AttemptRepository) MaxAttemptNumber(ctx context.Context, userID, courseID string) (int, error) {
	var max int
	err := r.DB.WithContext(ctx).Model(&model.Attempt{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Select("COALESCE(MAX(attempt_number), 0)").
		Scan(&max).Error
	return max, err
}

func (r *AttemptRepository) ListByUserAndCourse(ctx context.Context, userID, courseID string) ([]model.Attempt, error) {
	attempts := make([]model.Attempt, 0)
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("attempt_number ASC").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) CountByCourse(ctx context.Context, courseID string) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Attempt{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

func (r *AttemptRepository) TouchLastAccessed(ctx context.Context, id string, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&model.Attempt{}).
		Where("id = ?", id).
		Update("last_accessed_at", at).Error
}

// found 把 gorm.ErrRecordNotFound 转为 (nil, nil)
func found[T any](v *T, err error) (*T, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

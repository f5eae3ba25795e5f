package repository

import (
	"context"

	"scorm_host_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Create(course).Error
}

func (r *CourseRepository) FindByID(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&c).Error
	return found(&c, err)
}

// FindByIDForUpdate 删除课程前加排他锁，与新建 attempt 互斥
func (r *CourseRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Course, error) {
	return r.findLocked(ctx, id, "UPDATE")
}

// FindByIDForShare 新建 attempt 时加共享锁，课程在事务结束前不会被删除
func (r *CourseRepository) FindByIDForShare(ctx context.Context, id string) (*model.Course, error) {
	return r.findLocked(ctx, id, "SHARE")
}

func (r *CourseRepository) findLocked(ctx context.Context, id, strength string) (*model.Course, error) {
	var c model.Course
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: strength}).
		Where("id = ?", id).
		First(&c).Error
	return found(&c, err)
}

func (r *CourseRepository) FindByIDWithScos(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course
	err := r.DB.WithContext(ctx).
		Preload("Scos", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC").Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&c).Error
	return found(&c, err)
}

func (r *CourseRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Course{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	courses := make([]model.Course, 0)
	err := r.DB.WithContext(ctx).Order("title ASC").Find(&courses).Error
	return courses, err
}

// FindSco 按 identifier 查找课程下的内容入口
func (r *CourseRepository) FindSco(ctx context.Context, courseID, identifier string) (*model.Sco, error) {
	var s model.Sco
	err := r.DB.WithContext(ctx).
		Where("course_id = ? AND identifier = ?", courseID, identifier).
		First(&s).Error
	return found(&s, err)
}

// FirstSco 清单中的第一个内容入口
func (r *CourseRepository) FirstSco(ctx context.Context, courseID string) (*model.Sco, error) {
	var s model.Sco
	err := r.DB.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("position ASC").
		Order("created_at ASC").
		First(&s).Error
	return found(&s, err)
}

// Delete 删除课程及其内容入口
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&model.Sco{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Course{}).Error
	})
}

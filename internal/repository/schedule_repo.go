package repository

import (
	"context"

	"gorm.io/gorm"

	"staff-attendance/internal/model"
)

// ScheduleRepository 课表数据访问接口
type ScheduleRepository interface {
	Create(ctx context.Context, s *model.Schedule) error
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	// List 按星期、教师筛选，空串表示不过滤
	List(ctx context.Context, day, teacherID string) ([]model.Schedule, error)
	Update(ctx context.Context, s *model.Schedule) error
	Delete(ctx context.Context, id string) error
}

// scheduleRepo ScheduleRepository 的 GORM 实现
type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, s *model.Schedule) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var s model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Where("schedule_id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *scheduleRepo) List(ctx context.Context, day, teacherID string) ([]model.Schedule, error) {
	var list []model.Schedule
	db := r.db.WithContext(ctx).Preload("Teacher")
	if day != "" {
		db = db.Where("day = ?", day)
	}
	if teacherID != "" {
		db = db.Where("teacher_id = ?", teacherID)
	}
	err := db.Order("day ASC, start_time ASC").Find(&list).Error
	return list, err
}

func (r *scheduleRepo) Update(ctx context.Context, s *model.Schedule) error {
	return r.db.WithContext(ctx).Omit("Teacher").Save(s).Error
}

func (r *scheduleRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("schedule_id = ?", id).
		Delete(&model.Schedule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

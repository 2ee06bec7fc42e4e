package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"staff-attendance/internal/model"
)

// AttendanceFilter 考勤历史筛选条件，零值字段不参与过滤
type AttendanceFilter struct {
	UserID     string
	Department string
	Status     string
	From       *time.Time
	To         *time.Time
}

// AttendanceRepository 考勤数据访问接口
type AttendanceRepository interface {
	// Upsert 按 (user_id, date) 写入或覆盖，record 回填为最终落库的行
	Upsert(ctx context.Context, record *model.AttendanceRecord) error
	GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.AttendanceRecord, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.AttendanceRecord, error)
	List(ctx context.Context, filter AttendanceFilter, offset, limit int) ([]model.AttendanceRecord, int64, error)
	ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]model.AttendanceRecord, error)
	// ListForExport 不分页，按日期、姓名排序
	ListForExport(ctx context.Context, filter AttendanceFilter) ([]model.AttendanceRecord, error)
}

// attendanceRepo AttendanceRepository 的 GORM 实现
type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Upsert(ctx context.Context, record *model.AttendanceRecord) error {
	return r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"status", "marked_at", "marked_by", "marked_by_role", "updated_at",
				}),
			},
			clause.Returning{},
		).
		Create(record).Error
}

func (r *attendanceRepo) GetByUserAndDate(ctx context.Context, userID string, date time.Time) (*model.AttendanceRecord, error) {
	var rec model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *attendanceRepo) ListByDate(ctx context.Context, date time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("date = ?", date).
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) List(ctx context.Context, filter AttendanceFilter, offset, limit int) ([]model.AttendanceRecord, int64, error) {
	var records []model.AttendanceRecord
	var total int64

	db := r.filtered(ctx, filter)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("attendance_records.date DESC, attendance_records.marked_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *attendanceRepo) ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date BETWEEN ? AND ?", userID, from, to).
		Order("date ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListForExport(ctx context.Context, filter AttendanceFilter) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	err := r.filtered(ctx, filter).
		Preload("User").
		Order("attendance_records.date ASC, users.name ASC").
		Find(&records).Error
	return records, err
}

// filtered 构造带筛选条件的查询；部门条件需要关联 users
func (r *attendanceRepo) filtered(ctx context.Context, filter AttendanceFilter) *gorm.DB {
	db := r.db.WithContext(ctx).
		Model(&model.AttendanceRecord{}).
		Joins("JOIN users ON users.user_id = attendance_records.user_id")

	if filter.UserID != "" {
		db = db.Where("attendance_records.user_id = ?", filter.UserID)
	}
	if filter.Department != "" {
		db = db.Where("users.department = ?", filter.Department)
	}
	if filter.Status != "" {
		db = db.Where("attendance_records.status = ?", filter.Status)
	}
	if filter.From != nil {
		db = db.Where("attendance_records.date >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("attendance_records.date <= ?", *filter.To)
	}
	return db
}

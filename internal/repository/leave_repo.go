package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"staff-attendance/internal/model"
	pkgerrors "staff-attendance/pkg/errors"
)

// LeaveFilter 请假列表筛选条件
type LeaveFilter struct {
	Status     string
	Department string
}

// LeaveRepository 请假申请数据访问接口
type LeaveRepository interface {
	Create(ctx context.Context, req *model.LeaveRequest) error
	GetByID(ctx context.Context, id string) (*model.LeaveRequest, error)
	ListByUser(ctx context.Context, userID, status string) ([]model.LeaveRequest, error)
	List(ctx context.Context, filter LeaveFilter, offset, limit int) ([]model.LeaveRequest, int64, error)
	// Resolve 仅当申请仍为 pending 时写入终态；未命中返回 pkgerrors.ErrOptimisticLock
	Resolve(ctx context.Context, id, status, responderID string, rejectionReason *string, at time.Time) error
}

// leaveRepo LeaveRepository 的 GORM 实现
type leaveRepo struct {
	db *gorm.DB
}

// NewLeaveRepo 创建 LeaveRepository 实例
func NewLeaveRepo(db *gorm.DB) LeaveRepository {
	return &leaveRepo{db: db}
}

func (r *leaveRepo) Create(ctx context.Context, req *model.LeaveRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *leaveRepo) GetByID(ctx context.Context, id string) (*model.LeaveRequest, error) {
	var req model.LeaveRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("leave_request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *leaveRepo) ListByUser(ctx context.Context, userID, status string) ([]model.LeaveRequest, error) {
	var reqs []model.LeaveRequest
	db := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}

func (r *leaveRepo) List(ctx context.Context, filter LeaveFilter, offset, limit int) ([]model.LeaveRequest, int64, error) {
	var reqs []model.LeaveRequest
	var total int64

	db := r.db.WithContext(ctx).
		Model(&model.LeaveRequest{}).
		Joins("JOIN users ON users.user_id = leave_requests.user_id")
	if filter.Status != "" {
		db = db.Where("leave_requests.status = ?", filter.Status)
	}
	if filter.Department != "" {
		db = db.Where("users.department = ?", filter.Department)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("User").
		Offset(offset).Limit(limit).
		Order("leave_requests.created_at DESC").
		Find(&reqs).Error; err != nil {
		return nil, 0, err
	}
	return reqs, total, nil
}

func (r *leaveRepo) Resolve(ctx context.Context, id, status, responderID string, rejectionReason *string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&model.LeaveRequest{}).
		Where("leave_request_id = ? AND status = ?", id, model.LeaveStatusPending).
		Updates(map[string]interface{}{
			"status":           status,
			"responded_by":     responderID,
			"responded_at":     at,
			"rejection_reason": rejectionReason,
			"updated_at":       at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

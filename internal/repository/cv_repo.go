package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"staff-attendance/internal/model"
)

// CvFileRepository 简历文件元数据访问接口
type CvFileRepository interface {
	GetByID(ctx context.Context, id string) (*model.CvFile, error)
	GetByUserID(ctx context.Context, userID string) (*model.CvFile, error)
	// GetByUserIDForUpdate 在事务中加行锁读取，供替换流程拿到旧的存储键
	GetByUserIDForUpdate(ctx context.Context, userID string) (*model.CvFile, error)
	// Upsert 按 user_id 写入或替换；替换时 cv_file_id 一并更新，旧下载链接随之失效
	Upsert(ctx context.Context, cv *model.CvFile) error
	Delete(ctx context.Context, id string) error
}

// cvFileRepo CvFileRepository 的 GORM 实现
type cvFileRepo struct {
	db *gorm.DB
}

// NewCvFileRepo 创建 CvFileRepository 实例
func NewCvFileRepo(db *gorm.DB) CvFileRepository {
	return &cvFileRepo{db: db}
}

func (r *cvFileRepo) GetByID(ctx context.Context, id string) (*model.CvFile, error) {
	var cv model.CvFile
	err := r.db.WithContext(ctx).
		Where("cv_file_id = ?", id).
		First(&cv).Error
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *cvFileRepo) GetByUserID(ctx context.Context, userID string) (*model.CvFile, error) {
	var cv model.CvFile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&cv).Error
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *cvFileRepo) GetByUserIDForUpdate(ctx context.Context, userID string) (*model.CvFile, error) {
	var cv model.CvFile
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&cv).Error
	if err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *cvFileRepo) Upsert(ctx context.Context, cv *model.CvFile) error {
	return r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"cv_file_id", "original_name", "storage_key", "content_type", "size", "uploaded_at", "updated_at",
				}),
			},
			clause.Returning{},
		).
		Create(cv).Error
}

func (r *cvFileRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("cv_file_id = ?", id).
		Delete(&model.CvFile{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"staff-attendance/internal/dto"
	"staff-attendance/internal/model"
	"staff-attendance/internal/permission"
	"staff-attendance/internal/repository"
	"staff-attendance/internal/storage"
	"staff-attendance/pkg/metrics"
)

// ── 简历模块业务错误 ──

var (
	ErrCvNotFound = errors.New("简历不存在")
	ErrCvEmpty    = errors.New("上传文件为空")
	ErrCvTooLarge = errors.New("简历文件超过大小上限")
)

// CvUpload 上传文件信息
type CvUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CvService 简历业务接口
//
// 每位用户至多一份简历：再次上传替换元数据行，并在提交后删除旧文件。
type CvService interface {
	Upload(ctx context.Context, userID string, file *CvUpload) (*dto.CvResponse, error)
	GetByUser(ctx context.Context, callerID, callerRole, userID string) (*dto.CvResponse, error)
	// Open 返回简历元信息与文件流，调用方负责关闭
	Open(ctx context.Context, callerID, callerRole, id string) (*dto.CvResponse, io.ReadCloser, error)
	Delete(ctx context.Context, callerID, id string) error
}

type cvService struct {
	repo    *repository.Repository
	blobs   storage.BlobStore
	maxSize int64
	logger  *zap.Logger
	now     func() time.Time
}

// NewCvService 创建 CvService 实例
func NewCvService(repo *repository.Repository, blobs storage.BlobStore, maxSize int64, logger *zap.Logger) CvService {
	return &cvService{repo: repo, blobs: blobs, maxSize: maxSize, logger: logger, now: time.Now}
}

// ────────────────────── Upload ──────────────────────

func (s *cvService) Upload(ctx context.Context, userID string, file *CvUpload) (*dto.CvResponse, error) {
	// 1. 大小校验先于任何写入
	if file.Size <= 0 {
		return nil, ErrCvEmpty
	}
	if file.Size > s.maxSize {
		return nil, ErrCvTooLarge
	}

	// 2. 以新键写入文件；声明大小不可信，按上限截断后复核
	key := uuid.NewString() + safeExt(file.FileName)
	n, err := s.blobs.Save(ctx, key, io.LimitReader(file.Body, s.maxSize+1))
	if err != nil {
		s.logger.Error("保存简历文件失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	if n == 0 || n > s.maxSize {
		s.removeBlob(ctx, key)
		if n == 0 {
			return nil, ErrCvEmpty
		}
		return nil, ErrCvTooLarge
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	cv := &model.CvFile{
		CvFileID:     uuid.NewString(),
		UserID:       userID,
		OriginalName: filepath.Base(file.FileName),
		StorageKey:   key,
		ContentType:  contentType,
		Size:         n,
		UploadedAt:   s.now(),
	}

	// 3. 事务内读取旧键并替换元数据
	oldKey, err := s.replace(ctx, cv)
	if err != nil {
		s.removeBlob(ctx, key)
		return nil, err
	}

	// 4. 提交后清理旧文件；失败只记录日志
	if oldKey != "" && oldKey != key {
		s.removeBlob(ctx, oldKey)
	}

	metrics.CvUploads.Inc()
	s.logger.Info("简历已上传",
		zap.String("user_id", userID),
		zap.String("cv_file_id", cv.CvFileID),
		zap.Int64("size", n),
	)
	resp := toCvResponse(cv)
	return &resp, nil
}

// replace 在事务中锁定旧行、upsert 新行，返回旧存储键
func (s *cvService) replace(ctx context.Context, cv *model.CvFile) (string, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return "", err
	}
	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}
	defer func() {
		if r := recover(); r != nil {
			rollback()
			panic(r)
		}
	}()
	txRepo := s.repo.WithTx(tx)

	var oldKey string
	existing, err := txRepo.CvFile.GetByUserIDForUpdate(ctx, cv.UserID)
	switch {
	case err == nil:
		oldKey = existing.StorageKey
	case !errors.Is(err, gorm.ErrRecordNotFound):
		rollback()
		s.logger.Error("查询旧简历失败", zap.String("user_id", cv.UserID), zap.Error(err))
		return "", err
	}

	if err := txRepo.CvFile.Upsert(ctx, cv); err != nil {
		rollback()
		s.logger.Error("写入简历记录失败", zap.String("user_id", cv.UserID), zap.Error(err))
		return "", err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return "", err
		}
	}
	return oldKey, nil
}

// ────────────────────── GetByUser / Open ──────────────────────

func (s *cvService) GetByUser(ctx context.Context, callerID, callerRole, userID string) (*dto.CvResponse, error) {
	if err := canRead(callerID, callerRole, userID); err != nil {
		return nil, err
	}
	cv, err := s.repo.CvFile.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCvNotFound
		}
		s.logger.Error("查询简历失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	resp := toCvResponse(cv)
	return &resp, nil
}

func (s *cvService) Open(ctx context.Context, callerID, callerRole, id string) (*dto.CvResponse, io.ReadCloser, error) {
	cv, err := s.repo.CvFile.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCvNotFound
		}
		s.logger.Error("查询简历失败", zap.String("id", id), zap.Error(err))
		return nil, nil, err
	}
	if err := canRead(callerID, callerRole, cv.UserID); err != nil {
		return nil, nil, err
	}

	rc, err := s.blobs.Open(ctx, cv.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("简历记录存在但文件缺失", zap.String("id", id), zap.String("key", cv.StorageKey))
			return nil, nil, ErrCvNotFound
		}
		s.logger.Error("读取简历文件失败", zap.String("id", id), zap.Error(err))
		return nil, nil, err
	}
	resp := toCvResponse(cv)
	return &resp, rc, nil
}

// ────────────────────── Delete ──────────────────────

func (s *cvService) Delete(ctx context.Context, callerID, id string) error {
	cv, err := s.repo.CvFile.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCvNotFound
		}
		s.logger.Error("查询简历失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if cv.UserID != callerID {
		return permission.ErrForbidden
	}

	if err := s.repo.CvFile.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCvNotFound
		}
		s.logger.Error("删除简历记录失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.removeBlob(ctx, cv.StorageKey)
	return nil
}

// ── 内部辅助方法 ──

// canRead 本人或拥有 cv:read_any 的角色可读
func canRead(callerID, callerRole, ownerID string) error {
	if callerID == ownerID && permission.Allowed(callerRole, permission.CvManageOwn) {
		return nil
	}
	return permission.Check(callerRole, permission.CvReadAny)
}

func (s *cvService) removeBlob(ctx context.Context, key string) {
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.logger.Warn("删除简历文件失败", zap.String("key", key), zap.Error(err))
	}
}

// safeExt 取原文件扩展名，仅保留字母数字
func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) < 2 || len(ext) > 10 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func toCvResponse(cv *model.CvFile) dto.CvResponse {
	return dto.CvResponse{
		ID:           cv.CvFileID,
		UserID:       cv.UserID,
		OriginalName: cv.OriginalName,
		ContentType:  cv.ContentType,
		Size:         cv.Size,
		UploadedAt:   formatTime(&cv.UploadedAt),
	}
}

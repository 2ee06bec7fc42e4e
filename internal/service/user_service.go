package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"staff-attendance/internal/dto"
	"staff-attendance/internal/model"
	"staff-attendance/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserNotFound       = errors.New("用户不存在")
	ErrUniqueIDExists     = errors.New("工号已被使用")
	ErrEmailExists        = errors.New("邮箱已被使用")
	ErrInvalidRole        = errors.New("角色不合法")
	ErrCannotDeleteSelf   = errors.New("不能删除自己的账号")
	ErrImportNoData       = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportBadHeader    = errors.New("Excel表头缺少必要列（姓名/工号/邮箱/角色）")
	ErrImportTooManyRows  = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportInvalidExcel = errors.New("无法解析Excel文件")
)

const maxImportRows = 1000

// UserService 用户管理业务接口
type UserService interface {
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// ParseImportFile 解析导入 Excel，返回数据行
	ParseImportFile(reader io.Reader) ([]dto.ImportUserRow, error)
	// ImportUsers 逐行校验后在同一事务中写入；任一写入失败全部回滚
	ImportUsers(ctx context.Context, rows []dto.ImportUserRow, callerID string) (*dto.ImportUserResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	filter := repository.UserFilter{
		Role:       req.Role,
		Department: req.Department,
		Status:     req.Status,
		Keyword:    strings.TrimSpace(req.Keyword),
	}
	users, total, err := s.repo.User.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		list = append(list, *toUserResponse(&users[i]))
	}
	return list, total, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── Create ──────────────────────

func (s *userService) Create(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.UserResponse, error) {
	if !model.IsValidRole(req.Role) {
		return nil, ErrInvalidRole
	}
	if err := s.checkUnique(ctx, "", req.UniqueID, req.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = model.UserStatusActive
	}
	user := &model.User{
		UniqueID:     strings.TrimSpace(req.UniqueID),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: string(hash),
		Role:         req.Role,
		Department:   optionalString(req.Department),
		Status:       status,
	}
	user.CreatedBy = optionalString(callerID)
	user.UpdatedBy = optionalString(callerID)

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("用户已创建",
		zap.String("user_id", user.UserID),
		zap.String("role", user.Role),
		zap.String("operator", callerID),
	)
	return toUserResponse(user), nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.Email != nil && !strings.EqualFold(*req.Email, user.Email) {
		if err := s.checkUnique(ctx, user.UserID, "", *req.Email); err != nil {
			return nil, err
		}
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		if !model.IsValidRole(*req.Role) {
			return nil, ErrInvalidRole
		}
		user.Role = *req.Role
	}
	if req.Department != nil {
		user.Department = optionalString(*req.Department)
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrCannotDeleteSelf
	}
	if _, err := s.repo.User.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.logger.Info("用户已删除", zap.String("user_id", id), zap.String("operator", callerID))
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

func (s *userService) ParseImportFile(reader io.Reader) ([]dto.ImportUserRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportInvalidExcel, err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	// 解析表头（支持灵活列序）
	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["name"] < 0 || colIndex["unique_id"] < 0 || colIndex["email"] < 0 || colIndex["role"] < 0 {
		return nil, ErrImportBadHeader
	}

	cellAt := func(row []string, key string) string {
		idx := colIndex[key]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []dto.ImportUserRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := dto.ImportUserRow{
			Row:        i + 1,
			Name:       cellAt(row, "name"),
			UniqueID:   cellAt(row, "unique_id"),
			Email:      cellAt(row, "email"),
			Role:       strings.ToLower(cellAt(row, "role")),
			Department: cellAt(row, "department"),
		}
		// 跳过全空行
		if item.Name == "" && item.UniqueID == "" && item.Email == "" && item.Role == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"name":       -1,
		"unique_id":  -1,
		"email":      -1,
		"role":       -1,
		"department": -1,
	}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "姓名", "name":
			idx["name"] = i
		case "工号", "unique_id", "uniqueid":
			idx["unique_id"] = i
		case "邮箱", "email":
			idx["email"] = i
		case "角色", "role":
			idx["role"] = i
		case "部门", "department":
			idx["department"] = i
		}
	}
	return idx
}

// ────────────────────── ImportUsers ──────────────────────

func (s *userService) ImportUsers(ctx context.Context, rows []dto.ImportUserRow, callerID string) (*dto.ImportUserResponse, error) {
	resp := &dto.ImportUserResponse{Total: len(rows)}

	type validatedRow struct {
		row  dto.ImportUserRow
		hash []byte
	}

	// 第一阶段：逐行校验（含文件内重复）
	seenID := make(map[string]bool)
	seenEmail := make(map[string]bool)
	var validRows []validatedRow

	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportUserError{Row: row, Reason: reason})
	}

	for _, row := range rows {
		if row.Name == "" || row.UniqueID == "" || row.Email == "" {
			fail(row.Row, "姓名、工号、邮箱均不能为空")
			continue
		}
		if _, err := mail.ParseAddress(row.Email); err != nil {
			fail(row.Row, "邮箱格式不正确")
			continue
		}
		if !model.IsValidRole(row.Role) {
			fail(row.Row, fmt.Sprintf("角色 %q 不合法", row.Role))
			continue
		}
		emailKey := strings.ToLower(row.Email)
		if seenID[row.UniqueID] || seenEmail[emailKey] {
			fail(row.Row, "文件内工号或邮箱重复")
			continue
		}
		if err := s.checkUnique(ctx, "", row.UniqueID, row.Email); err != nil {
			if errors.Is(err, ErrUniqueIDExists) || errors.Is(err, ErrEmailExists) {
				fail(row.Row, err.Error())
				continue
			}
			return nil, err
		}

		// 初始密码为工号，用户首次登录后自行修改
		hash, err := bcrypt.GenerateFromPassword([]byte(row.UniqueID), bcrypt.DefaultCost)
		if err != nil {
			fail(row.Row, "密码哈希失败")
			continue
		}

		seenID[row.UniqueID] = true
		seenEmail[emailKey] = true
		validRows = append(validRows, validatedRow{row: row, hash: hash})
	}

	if len(validRows) == 0 {
		return resp, nil
	}

	// 第二阶段：在事务中批量创建所有通过校验的用户
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)
	for _, vr := range validRows {
		user := &model.User{
			UniqueID:     vr.row.UniqueID,
			Name:         vr.row.Name,
			Email:        vr.row.Email,
			PasswordHash: string(vr.hash),
			Role:         vr.row.Role,
			Department:   optionalString(vr.row.Department),
			Status:       model.UserStatusActive,
		}
		user.CreatedBy = optionalString(callerID)
		user.UpdatedBy = optionalString(callerID)

		if err := txRepo.User.Create(ctx, user); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("导入用户写入失败，事务回滚",
				zap.Int("row", vr.row.Row), zap.Error(err))
			return nil, fmt.Errorf("第 %d 行写入数据库失败，已回滚全部导入: %w", vr.row.Row, err)
		}
		resp.Success++
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("批量导入用户完成",
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}

// ── 内部辅助方法 ──

// checkUnique 检查工号、邮箱是否被其他在册用户占用；空串参数跳过
func (s *userService) checkUnique(ctx context.Context, selfID, uniqueID, email string) error {
	if uniqueID != "" {
		existing, err := s.repo.User.GetByUniqueID(ctx, uniqueID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询工号失败", zap.Error(err))
			return err
		}
		if existing != nil && existing.UserID != selfID {
			return ErrUniqueIDExists
		}
	}
	if email != "" {
		existing, err := s.repo.User.GetByEmail(ctx, email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询邮箱失败", zap.Error(err))
			return err
		}
		if existing != nil && existing.UserID != selfID {
			return ErrEmailExists
		}
	}
	return nil
}

// toUserResponse 将 model.User 转换为 dto.UserResponse
func toUserResponse(user *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:         user.UserID,
		UniqueID:   user.UniqueID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Department: user.DepartmentName(),
		Status:     user.Status,
		CreatedAt:  formatTime(&user.CreatedAt),
	}
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

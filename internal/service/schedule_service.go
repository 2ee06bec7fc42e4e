package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staff-attendance/internal/dto"
	"staff-attendance/internal/model"
	"staff-attendance/internal/repository"
)

// ── 课表模块业务错误 ──

var (
	ErrScheduleNotFound       = errors.New("课表不存在")
	ErrScheduleTeacherInvalid = errors.New("授课教师不存在或角色不是 teacher")
	ErrInvalidWeekday         = errors.New("星期应为 Monday … Sunday")
	ErrInvalidClock           = errors.New("时间格式应为 HH:MM")
	ErrScheduleTimeRange      = errors.New("结束时间必须晚于开始时间")
)

const clockLayout = "15:04"

// ScheduleService 课表业务接口
type ScheduleService interface {
	List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error)
	Create(ctx context.Context, req *dto.CreateScheduleRequest, callerID string) (*dto.ScheduleResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest, callerID string) (*dto.ScheduleResponse, error)
	Delete(ctx context.Context, id string) error
	// ExportICS 以 iCalendar 格式导出每周重复的课表
	ExportICS(ctx context.Context, teacherID string) ([]byte, error)
}

type scheduleService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, logger *zap.Logger) ScheduleService {
	return &scheduleService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── List / GetByID ──────────────────────

func (s *scheduleService) List(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, error) {
	list, err := s.repo.Schedule.List(ctx, req.Day, req.TeacherID)
	if err != nil {
		s.logger.Error("查询课表失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ScheduleResponse, 0, len(list))
	for i := range list {
		result = append(result, toScheduleResponse(&list[i]))
	}
	return result, nil
}

func (s *scheduleService) GetByID(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	sch, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询课表失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toScheduleResponse(sch)
	return &resp, nil
}

// ────────────────────── Create ──────────────────────

func (s *scheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest, callerID string) (*dto.ScheduleResponse, error) {
	if err := validateSlot(req.Day, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	teacher, err := s.requireTeacher(ctx, req.TeacherID)
	if err != nil {
		return nil, err
	}

	sch := &model.Schedule{
		CourseID:   req.CourseID,
		CourseName: req.CourseName,
		TeacherID:  teacher.UserID,
		Day:        req.Day,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Room:       req.Room,
		Major:      req.Major,
	}
	sch.CreatedBy = &callerID
	sch.UpdatedBy = &callerID

	if err := s.repo.Schedule.Create(ctx, sch); err != nil {
		s.logger.Error("创建课表失败", zap.Error(err))
		return nil, err
	}
	sch.Teacher = teacher
	resp := toScheduleResponse(sch)
	return &resp, nil
}

// ────────────────────── Update ──────────────────────

func (s *scheduleService) Update(ctx context.Context, id string, req *dto.UpdateScheduleRequest, callerID string) (*dto.ScheduleResponse, error) {
	sch, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询课表失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.CourseID != nil {
		sch.CourseID = *req.CourseID
	}
	if req.CourseName != nil {
		sch.CourseName = *req.CourseName
	}
	if req.Day != nil {
		sch.Day = *req.Day
	}
	if req.StartTime != nil {
		sch.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		sch.EndTime = *req.EndTime
	}
	if req.Room != nil {
		sch.Room = *req.Room
	}
	if req.Major != nil {
		sch.Major = *req.Major
	}
	if err := validateSlot(sch.Day, sch.StartTime, sch.EndTime); err != nil {
		return nil, err
	}
	if req.TeacherID != nil && *req.TeacherID != sch.TeacherID {
		teacher, err := s.requireTeacher(ctx, *req.TeacherID)
		if err != nil {
			return nil, err
		}
		sch.TeacherID = teacher.UserID
		sch.Teacher = teacher
	}
	sch.UpdatedBy = &callerID

	if err := s.repo.Schedule.Update(ctx, sch); err != nil {
		s.logger.Error("更新课表失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	resp := toScheduleResponse(sch)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *scheduleService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Schedule.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		s.logger.Error("删除课表失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

// requireTeacher 授课人必须是在册的 teacher
func (s *scheduleService) requireTeacher(ctx context.Context, id string) (*model.User, error) {
	u, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleTeacherInvalid
		}
		s.logger.Error("查询教师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if u.Role != model.RoleTeacher {
		return nil, ErrScheduleTeacherInvalid
	}
	return u, nil
}

// validateSlot 校验星期与起止时间
func validateSlot(day, start, end string) error {
	if !model.IsValidWeekday(day) {
		return ErrInvalidWeekday
	}
	st, err := time.Parse(clockLayout, start)
	if err != nil {
		return ErrInvalidClock
	}
	et, err := time.Parse(clockLayout, end)
	if err != nil {
		return ErrInvalidClock
	}
	if !et.After(st) {
		return ErrScheduleTimeRange
	}
	return nil
}

func toScheduleResponse(s *model.Schedule) dto.ScheduleResponse {
	resp := dto.ScheduleResponse{
		ID:         s.ScheduleID,
		CourseID:   s.CourseID,
		CourseName: s.CourseName,
		TeacherID:  s.TeacherID,
		Day:        s.Day,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		Room:       s.Room,
		Major:      s.Major,
	}
	if s.Teacher != nil {
		resp.TeacherName = s.Teacher.Name
	}
	return resp
}

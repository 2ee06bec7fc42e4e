package dto

// ── 课表模块 DTO ──

// CreateScheduleRequest 新增课表请求
type CreateScheduleRequest struct {
	CourseID   string `json:"course_id"   binding:"required,max=32"`
	CourseName string `json:"course_name" binding:"omitempty,max=200"`
	TeacherID  string `json:"teacher_id"  binding:"required,uuid"`
	Day        string `json:"day"         binding:"required,weekday"`
	StartTime  string `json:"start_time"  binding:"required,hhmm"`
	EndTime    string `json:"end_time"    binding:"required,hhmm"`
	Room       string `json:"room"        binding:"omitempty,max=50"`
	Major      string `json:"major"       binding:"omitempty,max=100"`
}

// UpdateScheduleRequest 更新课表请求
type UpdateScheduleRequest struct {
	CourseID   *string `json:"course_id"   binding:"omitempty,max=32"`
	CourseName *string `json:"course_name" binding:"omitempty,max=200"`
	TeacherID  *string `json:"teacher_id"  binding:"omitempty,uuid"`
	Day        *string `json:"day"         binding:"omitempty,weekday"`
	StartTime  *string `json:"start_time"  binding:"omitempty,hhmm"`
	EndTime    *string `json:"end_time"    binding:"omitempty,hhmm"`
	Room       *string `json:"room"        binding:"omitempty,max=50"`
	Major      *string `json:"major"       binding:"omitempty,max=100"`
}

// ScheduleListRequest 课表列表查询参数
type ScheduleListRequest struct {
	Day       string `form:"day"        binding:"omitempty,weekday"`
	TeacherID string `form:"teacher_id" binding:"omitempty,uuid"`
}

// ScheduleICSRequest 课表 iCalendar 导出参数
type ScheduleICSRequest struct {
	TeacherID string `form:"teacher_id" binding:"omitempty,uuid"`
}

// ScheduleResponse 课表响应
type ScheduleResponse struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	CourseName  string `json:"course_name"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name,omitempty"`
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Room        string `json:"room"`
	Major       string `json:"major"`
}

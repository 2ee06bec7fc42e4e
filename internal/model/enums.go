package model

// ── 角色 ──

const (
	RoleAdmin     = "admin"
	RoleHead      = "head"
	RoleMazer     = "mazer"
	RoleAssistant = "assistant"
	RoleTeacher   = "teacher"
	RoleStaff     = "staff"
)

// Roles 全部角色
var Roles = []string{RoleAdmin, RoleHead, RoleMazer, RoleAssistant, RoleTeacher, RoleStaff}

// IsValidRole 判断角色是否合法
func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ── 用户状态 ──

const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// ── 考勤状态 ──

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceLeave   = "leave"
)

// ── 请假 ──

const (
	LeaveTypeSick     = "sick"
	LeaveTypeVacation = "vacation"
	LeaveTypePersonal = "personal"

	LeaveStatusPending  = "pending"
	LeaveStatusApproved = "approved"
	LeaveStatusRejected = "rejected"
)

// ── 星期 ──

// Weekdays 课表使用的星期名称，顺序与 time.Weekday 一致
var Weekdays = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// IsValidWeekday 判断星期名称是否合法
func IsValidWeekday(day string) bool {
	for _, d := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// Package permission 定义角色 → 可执行动作的固定权限表。
//
// 每个角色的能力集合逐项列出，不存在角色继承；表中未出现的组合一律拒绝。
package permission

import (
	"errors"

	"staff-attendance/internal/model"
)

// ErrForbidden 当前角色无权执行该动作
var ErrForbidden = errors.New("无权执行该操作")

// Action 受控动作
type Action string

const (
	UserRead   Action = "user:read"
	UserCreate Action = "user:create"
	UserUpdate Action = "user:update"
	UserDelete Action = "user:delete"
	UserImport Action = "user:import"

	ScheduleRead   Action = "schedule:read"
	ScheduleManage Action = "schedule:manage"

	AttendanceMark    Action = "attendance:mark"
	AttendanceReadAll Action = "attendance:read_all"
	AttendanceReadOwn Action = "attendance:read_own"

	LeaveSubmit  Action = "leave:submit"
	LeaveReadOwn Action = "leave:read_own"
	LeaveReview  Action = "leave:review"

	CvManageOwn Action = "cv:manage_own"
	CvReadAny   Action = "cv:read_any"

	StatsRead Action = "stats:read"
)

func set(actions ...Action) map[Action]struct{} {
	m := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		m[a] = struct{}{}
	}
	return m
}

var table = map[string]map[Action]struct{}{
	model.RoleAdmin: set(
		UserRead, UserCreate, UserUpdate, UserDelete, UserImport,
		ScheduleRead, ScheduleManage,
		CvReadAny,
		StatsRead,
	),
	model.RoleHead: set(
		ScheduleRead,
		AttendanceReadAll,
		LeaveReview,
		CvReadAny,
		StatsRead,
	),
	model.RoleMazer: set(
		ScheduleRead,
		AttendanceMark, AttendanceReadAll,
	),
	model.RoleAssistant: set(
		ScheduleRead,
		AttendanceMark, AttendanceReadAll,
	),
	model.RoleTeacher: set(
		ScheduleRead,
		AttendanceReadOwn,
		LeaveSubmit, LeaveReadOwn,
		CvManageOwn,
	),
	model.RoleStaff: set(
		ScheduleRead,
		AttendanceReadOwn,
		LeaveSubmit, LeaveReadOwn,
		CvManageOwn,
	),
}

// markTargets 标记考勤时，标记人角色 → 可被标记的目标角色
var markTargets = map[string]string{
	model.RoleMazer:     model.RoleTeacher,
	model.RoleAssistant: model.RoleStaff,
}

// Allowed 判断角色是否拥有指定动作
func Allowed(role string, action Action) bool {
	actions, ok := table[role]
	if !ok {
		return false
	}
	_, ok = actions[action]
	return ok
}

// Check 与 Allowed 相同，拒绝时返回 ErrForbidden
func Check(role string, action Action) error {
	if !Allowed(role, action) {
		return ErrForbidden
	}
	return nil
}

// CanMark 判断标记人角色能否为目标角色标记考勤
func CanMark(markerRole, targetRole string) bool {
	if !Allowed(markerRole, AttendanceMark) {
		return false
	}
	return markTargets[markerRole] == targetRole
}

// MarkableRole 返回标记人可标记的目标角色；不可标记时返回空串
func MarkableRole(markerRole string) string {
	if !Allowed(markerRole, AttendanceMark) {
		return ""
	}
	return markTargets[markerRole]
}

// Actions 返回角色拥有的全部动作（用于 /auth/me 下发给前端）
func Actions(role string) []Action {
	actions := table[role]
	out := make([]Action, 0, len(actions))
	for _, a := range allActions {
		if _, ok := actions[a]; ok {
			out = append(out, a)
		}
	}
	return out
}

var allActions = []Action{
	UserRead, UserCreate, UserUpdate, UserDelete, UserImport,
	ScheduleRead, ScheduleManage,
	AttendanceMark, AttendanceReadAll, AttendanceReadOwn,
	LeaveSubmit, LeaveReadOwn, LeaveReview,
	CvManageOwn, CvReadAny,
	StatsRead,
}

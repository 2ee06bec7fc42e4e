package model

import "time"

// LeaveRequest 请假申请表 — 对应 leave_requests
// 状态流转：pending → approved | rejected，两者均为终态
type LeaveRequest struct {
	LeaveRequestID  string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"leave_request_id"`
	UserID          string     `gorm:"type:uuid;not null"                             json:"user_id"`
	LeaveType       string     `gorm:"type:varchar(20);not null"                      json:"leave_type"` // sick | vacation | personal
	StartDate       time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate         time.Time  `gorm:"type:date;not null"                             json:"end_date"`
	Reason          string     `gorm:"type:text;not null"                             json:"reason"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	RespondedBy     *string    `gorm:"type:uuid"                                      json:"responded_by,omitempty"`
	RespondedAt     *time.Time `json:"responded_at,omitempty"`
	RejectionReason *string    `gorm:"type:text"                                      json:"rejection_reason,omitempty"`
	TimestampModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (LeaveRequest) TableName() string { return "leave_requests" }

// IsPending 是否仍待审批
func (l *LeaveRequest) IsPending() bool { return l.Status == LeaveStatusPending }

// Covers 判断请假区间是否覆盖给定日期
func (l *LeaveRequest) Covers(day time.Time) bool {
	d := day.Format("2006-01-02")
	return d >= l.StartDate.Format("2006-01-02") && d <= l.EndDate.Format("2006-01-02")
}

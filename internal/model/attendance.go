package model

import "time"

// AttendanceRecord 考勤记录表 — 对应 attendance_records
// (user_id, date) 唯一：同一天重复标记为覆盖而非追加
type AttendanceRecord struct {
	AttendanceID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_id"`
	UserID       string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Date         time.Time `gorm:"type:date;not null"                             json:"date"`
	Status       string    `gorm:"type:varchar(20);not null"                      json:"status"` // present | absent | late | leave
	MarkedAt     time.Time `gorm:"not null"                                       json:"marked_at"`
	MarkedBy     *string   `gorm:"type:uuid"                                      json:"marked_by,omitempty"`
	MarkedByRole string    `gorm:"type:varchar(20)"                               json:"marked_by_role,omitempty"`
	TimestampModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

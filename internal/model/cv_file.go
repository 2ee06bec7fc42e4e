package model

import "time"

// CvFile 简历文件表 — 对应 cv_files
// user_id 唯一：新上传替换旧文件
type CvFile struct {
	CvFileID     string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"            json:"cv_file_id"`
	UserID       string    `gorm:"type:uuid;not null"                                        json:"user_id"`
	OriginalName string    `gorm:"type:varchar(255);not null"                                json:"original_name"`
	StorageKey   string    `gorm:"type:varchar(255);not null"                                json:"-"`
	ContentType  string    `gorm:"type:varchar(100);not null;default:'application/octet-stream'" json:"content_type"`
	Size         int64     `gorm:"not null"                                                  json:"size"`
	UploadedAt   time.Time `gorm:"not null"                                                  json:"uploaded_at"`
	TimestampModel
}

// TableName 指定表名
func (CvFile) TableName() string { return "cv_files" }

package model

// User 用户表 — 对应 users
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	UniqueID     string  `gorm:"type:varchar(32);not null"                      json:"unique_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null"                      json:"role"`
	Department   *string `gorm:"type:varchar(100)"                              json:"department,omitempty"` // mazer 无部门
	Status       string  `gorm:"type:varchar(20);not null;default:'active'"     json:"status"`               // active | inactive
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// DepartmentName 返回部门名称，无部门时为空串
func (u *User) DepartmentName() string {
	if u.Department == nil {
		return ""
	}
	return *u.Department
}

// IsActive 用户是否处于启用状态
func (u *User) IsActive() bool { return u.Status == UserStatusActive }

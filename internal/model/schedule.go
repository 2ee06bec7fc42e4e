package model

// Schedule 课表表 — 对应 schedules
type Schedule struct {
	ScheduleID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	CourseID   string `gorm:"type:varchar(32);not null"                      json:"course_id"`
	CourseName string `gorm:"type:varchar(200);not null;default:''"          json:"course_name"`
	TeacherID  string `gorm:"type:uuid;not null"                             json:"teacher_id"`
	Day        string `gorm:"type:varchar(10);not null"                      json:"day"`        // Monday … Sunday
	StartTime  string `gorm:"type:varchar(5);not null"                       json:"start_time"` // HH:MM
	EndTime    string `gorm:"type:varchar(5);not null"                       json:"end_time"`
	Room       string `gorm:"type:varchar(50);not null;default:''"           json:"room"`
	Major      string `gorm:"type:varchar(100);not null;default:''"          json:"major"`
	BaseModel

	// 关联
	Teacher *User `gorm:"foreignKey:TeacherID;references:UserID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }

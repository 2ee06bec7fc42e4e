package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role       string `form:"role"       binding:"omitempty,oneof=admin head mazer assistant teacher staff"`
	Department string `form:"department" binding:"omitempty,max=100"`
	Status     string `form:"status"     binding:"omitempty,oneof=active inactive"`
	Keyword    string `form:"keyword"    binding:"omitempty,max=50"`
}

// CreateUserRequest 新增用户请求
type CreateUserRequest struct {
	Name       string `json:"name"       binding:"required,min=2,max=100"`
	UniqueID   string `json:"unique_id"  binding:"required,max=32"`
	Email      string `json:"email"      binding:"required,email"`
	Password   string `json:"password"   binding:"required,min=8,max=64"`
	Role       string `json:"role"       binding:"required,oneof=admin head mazer assistant teacher staff"`
	Department string `json:"department" binding:"omitempty,max=100"`
	Status     string `json:"status"     binding:"omitempty,oneof=active inactive"`
}

// UpdateUserRequest 更新用户信息请求
type UpdateUserRequest struct {
	Name       *string `json:"name"       binding:"omitempty,min=2,max=100"`
	Email      *string `json:"email"      binding:"omitempty,email"`
	Role       *string `json:"role"       binding:"omitempty,oneof=admin head mazer assistant teacher staff"`
	Department *string `json:"department" binding:"omitempty,max=100"`
	Status     *string `json:"status"     binding:"omitempty,oneof=active inactive"`
}

// ImportUserRow Excel 中解析出的一行
type ImportUserRow struct {
	Row        int
	Name       string
	UniqueID   string
	Email      string
	Role       string
	Department string
}

// ImportUserResponse 批量导入用户响应
type ImportUserResponse struct {
	Total   int               `json:"total"`
	Success int               `json:"success"`
	Failed  int               `json:"failed"`
	Errors  []ImportUserError `json:"errors,omitempty"`
}

// ImportUserError 导入错误详情
type ImportUserError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

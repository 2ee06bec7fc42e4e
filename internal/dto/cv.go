package dto

// CvResponse 简历文件元信息
type CvResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	OriginalName string `json:"original_name"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	UploadedAt   string `json:"uploaded_at"`
}

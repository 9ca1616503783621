package types

// ErrorResponse 统一错误响应.
type ErrorResponse struct {
	Error string `json:"error" example:"Unauthorized"`
}

// HealthResponse 健康检查响应.
type HealthResponse struct {
	Component string `json:"component"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

package dto

// ErrorResponse is the uniform failure body: { "error": "..." }.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse is the uniform success body: { "success": true, "message": "..." }.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

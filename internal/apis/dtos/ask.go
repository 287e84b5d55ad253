package dtos

// AskRequest is the body of POST /api/insights/ask.
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// Response is the generic envelope for non-streaming endpoints.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *string     `json:"error,omitempty"`
}

package handler

// Swagger type definitions for API documentation.
// These types are used by swag to generate OpenAPI documentation.

// --- Request Types ---

// ExtractFileRequest is one base64-encoded upload.
type ExtractFileRequest struct {
	Data string `json:"data" binding:"required" example:"JVBERi0xLjQKJ..."`
	Type string `json:"type" example:"application/pdf"`
	Name string `json:"name" example:"resume.pdf"`
}

// ExtractTextRequest represents the extract-text request body.
type ExtractTextRequest struct {
	Files    []ExtractFileRequest `json:"files" binding:"required"`
	FileType string               `json:"fileType" example:"cv" enums:"cv,jd"`
}

// ProcessPaymentRequest represents the process-payment request body.
type ProcessPaymentRequest struct {
	UserID         string `json:"userId" binding:"required" example:"0911223344"`
	ScreenshotData string `json:"screenshotData" binding:"required" example:"iVBORw0KGgoAAAANSUhEUg..."`
	ScreenshotType string `json:"screenshotType" example:"image/png"`
}

// CreateUserRequest represents the create user request body.
type CreateUserRequest struct {
	UserID  string  `json:"userId" binding:"required" example:"0911223344"`
	Balance float64 `json:"balance" example:"0"`
}

// LookupUserRequest represents the user lookup request body.
type LookupUserRequest struct {
	UserID string `json:"userId" binding:"required" example:"0911223344"`
}

// --- Response Types ---

// UserBalanceResponse is the public view of a user's balance.
type UserBalanceResponse struct {
	UserID  string  `json:"userId" example:"0911223344"`
	Balance float64 `json:"balance" example:"80"`
}

// Response wraps a successful response.
type Response struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *PagMeta    `json:"meta,omitempty"`
}

// ErrorResponseBody wraps an error response.
type ErrorResponseBody struct {
	Success bool      `json:"success" example:"false"`
	Error   *APIError `json:"error"`
}

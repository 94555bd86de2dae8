package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓 errors.Is 能辨識帶有原始錯誤的副本
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithError 複製並附加原始錯誤
func (e *CustomError) WithError(err error) *CustomError {
	cp := *e
	cp.Err = err
	return &cp
}

// WithMessage 複製並覆寫錯誤信息
func (e *CustomError) WithMessage(msg string) *CustomError {
	cp := *e
	cp.Message = msg
	return &cp
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// AsCustomError 取出錯誤鏈中的 CustomError
func AsCustomError(err error) (*CustomError, bool) {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// ValidationError 表示驗證錯誤
type ValidationError struct {
	Field   string
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.message
	}
	return e.Field + ": " + e.message
}

// NewFieldError 創建針對特定欄位的驗證錯誤
func NewFieldError(field, message string) error {
	return &ValidationError{
		Field:   field,
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest     = "INVALID_REQUEST"      // 400
	ErrCodeUnauthorized       = "UNAUTHORIZED"         // 401
	ErrCodeNotFound           = "NOT_FOUND"            // 404
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"   // 405
	ErrCodeRequestTooLarge    = "REQUEST_TOO_LARGE"    // 413
	ErrCodeNoRecognitionInput = "NO_RECOGNITION_INPUT" // 400
	ErrCodeUsernameTaken      = "USERNAME_TAKEN"       // 400
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"  // 401
	ErrCodeInvalidToken       = "INVALID_TOKEN"        // 401
	ErrCodeUserNotFound       = "USER_NOT_FOUND"       // 404
	ErrCodeRecipeNotFound     = "RECIPE_NOT_FOUND"     // 404

	// 服務器錯誤 (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"       // 500
	ErrCodeAIServiceError     = "AI_SERVICE_ERROR"     // 500
	ErrCodeInvalidModelOutput = "INVALID_MODEL_OUTPUT" // 500
)

// 預定義錯誤
var (
	// 客戶端錯誤
	ErrInvalidRequest     = NewError(ErrCodeInvalidRequest, "Invalid request", http.StatusBadRequest, nil)
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "Not authenticated", http.StatusUnauthorized, nil)
	ErrNotFound           = NewError(ErrCodeNotFound, "Resource not found", http.StatusNotFound, nil)
	ErrMethodNotAllowed   = NewError(ErrCodeMethodNotAllowed, "Method not allowed", http.StatusMethodNotAllowed, nil)
	ErrRequestTooLarge    = NewError(ErrCodeRequestTooLarge, "Request body too large", http.StatusRequestEntityTooLarge, nil)
	ErrNoRecognitionInput = NewError(ErrCodeNoRecognitionInput, "No input provided. Please upload an image or send ingredients.", http.StatusBadRequest, nil)
	ErrUsernameTaken      = NewError(ErrCodeUsernameTaken, "Username already taken", http.StatusBadRequest, nil)
	ErrInvalidCredentials = NewError(ErrCodeInvalidCredentials, "Invalid credentials", http.StatusUnauthorized, nil)
	ErrInvalidToken       = NewError(ErrCodeInvalidToken, "Invalid token", http.StatusUnauthorized, nil)
	ErrUserNotFound       = NewError(ErrCodeUserNotFound, "User not found", http.StatusNotFound, nil)
	ErrRecipeNotFound     = NewError(ErrCodeRecipeNotFound, "Recipe not found", http.StatusNotFound, nil)

	// 服務器錯誤
	ErrInternalError      = NewError(ErrCodeInternalError, "Internal server error", http.StatusInternalServerError, nil)
	ErrAIServiceError     = NewError(ErrCodeAIServiceError, "Vision model request failed", http.StatusInternalServerError, nil)
	ErrInvalidModelOutput = NewError(ErrCodeInvalidModelOutput, "Invalid JSON format from vision model", http.StatusInternalServerError, nil)

	// 業務錯誤
	ErrInvalidImageSize = NewError("INVALID_IMAGE_SIZE", "Image exceeds the size limit", http.StatusBadRequest, nil)
	ErrInvalidImageType = NewError("INVALID_IMAGE_TYPE", "Unsupported image type", http.StatusBadRequest, nil)
	ErrCacheMiss        = NewError("CACHE_MISS", "Cache miss", http.StatusNotFound, nil)
	ErrCacheFull        = NewError("CACHE_FULL", "Cache full", http.StatusServiceUnavailable, nil)
)

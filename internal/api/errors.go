package api

import (
	"fmt"
	"net/http"

	"github.com/anggol23/Be-Resonansi/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// 错误码定义
const (
	// 通用错误码
	ErrCodeInvalidRequest     = service.CodeInvalidRequest
	ErrCodeUnauthorized       = service.CodeUnauthorized
	ErrCodeForbidden          = service.CodeForbidden
	ErrCodeNotFound           = service.CodeNotFound
	ErrCodeInternalError      = service.CodeInternalError
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
	ErrCodeTooManyRequests    = "ERR_TOO_MANY_REQUESTS"

	// 认证错误码
	ErrCodeTokenExpired  = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid  = "ERR_TOKEN_INVALID"
	ErrCodeInvalidState  = "ERR_INVALID_OAUTH_STATE"
	ErrCodeGoogleAuth    = "ERR_GOOGLE_AUTH"
	ErrCodeMissingField  = "ERR_MISSING_FIELD"
	ErrCodeInvalidID     = "ERR_INVALID_ID"
	ErrCodeFileTooLarge  = service.CodeFileTooLarge
	ErrCodeInvalidUpload = "ERR_INVALID_UPLOAD"
)

// APIError 统一的 API 错误响应结构
type APIError struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	Stack      string `json:"stack,omitempty"`
}

func newAPIError(status int, code, message string, details any) APIError {
	return APIError{
		Success:    false,
		StatusCode: status,
		Code:       code,
		Message:    message,
		Details:    details,
	}
}

// ErrorResponse 返回统一格式的错误响应
func ErrorResponse(c *gin.Context, status int, code string, message string) {
	c.AbortWithStatusJSON(status, newAPIError(status, code, message, nil))
}

// ErrorResponseWithDetails 返回带详情的错误响应
func ErrorResponseWithDetails(c *gin.Context, status int, code string, message string, details any) {
	c.AbortWithStatusJSON(status, newAPIError(status, code, message, details))
}

// 常用错误响应快捷函数

// BadRequest 400 错误请求
func BadRequest(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401 未授权
func Unauthorized(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// Forbidden 403 禁止访问
func Forbidden(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusForbidden, ErrCodeForbidden, message)
}

// NotFound 404 资源不存在
func NotFound(c *gin.Context, code string, message string) {
	ErrorResponse(c, http.StatusNotFound, code, message)
}

// InternalError 500 服务器内部错误
func InternalError(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// ServiceUnavailable 503 服务不可用
func ServiceUnavailable(c *gin.Context, message string) {
	ErrorResponse(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message)
}

// MissingField 缺少必填字段
func MissingField(c *gin.Context, field string) {
	ErrorResponseWithDetails(c, http.StatusBadRequest, ErrCodeMissingField, field+" is required", gin.H{"field": field})
}

// InvalidPayload 无效的请求体
func InvalidPayload(c *gin.Context) {
	ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request payload")
}

// StatusForKind maps a service error kind to its HTTP status.
func StatusForKind(kind service.Kind) int {
	switch kind {
	case service.KindValidation, service.KindConflict:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError renders err as the error envelope. Errors that are not
// service errors are treated as internal. The wrapped cause and its stack
// are only rendered outside production.
func (h *HTTPHandler) respondError(c *gin.Context, err error) {
	svcErr, ok := service.AsError(err)
	if !ok {
		svcErr = service.Internal(err)
	}
	status := StatusForKind(svcErr.Kind)
	body := newAPIError(status, svcErr.Code, svcErr.Message, svcErr.Details)
	if body.Code == "" {
		body.Code = ErrCodeInternalError
	}
	if svcErr.Err != nil && !h.cfg.IsProduction() {
		body.Stack = fmt.Sprintf("%+v", svcErr.Err)
	}

	if status >= http.StatusInternalServerError {
		logrus.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Error("request failed")
	}
	c.AbortWithStatusJSON(status, body)
}

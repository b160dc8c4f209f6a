package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorCode 错误分类
type ErrorCode string

const (
	CodeTransport    ErrorCode = "TRANSPORT_ERROR"      // 网络/传输失败
	CodeStatus       ErrorCode = "STATUS_ERROR"         // 后端返回非成功状态码
	CodeMalformed    ErrorCode = "MALFORMED_DATA"       // 响应或存储数据无法解析
	CodePrecondition ErrorCode = "MISSING_PRECONDITION" // 未选择用户、缺少 VOD ID 等
	CodeValidation   ErrorCode = "VALIDATION_ERROR"     // 客户端校验失败，未发送请求
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeCancelled    ErrorCode = "CANCELLED" // 发起方已离开，结果被丢弃
	CodeTimeout      ErrorCode = "TIMEOUT"   // 等待超过配置的上限
	CodeUnknown      ErrorCode = "UNKNOWN_ERROR"
)

// AppError 结构化应用错误
type AppError struct {
	Code       ErrorCode
	Message    string
	StatusCode int // 仅 CodeStatus 使用
	Err        error
	Context    map[string]interface{}
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 支持 errors.Is / errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithContext 附加上下文字段
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New 创建错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap 包装已有错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// TransportError 请求未到达或连接中断
// 客户端超时归类为 CodeTimeout；发起方取消由调用方通过 ctx 判断
func TransportError(endpoint string, err error) *AppError {
	if isTimeout(err) {
		return Wrap(err, CodeTimeout, "请求超时").WithContext("endpoint", endpoint)
	}
	return Wrap(err, CodeTransport, "请求失败").WithContext("endpoint", endpoint)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// StatusError 后端返回非 200 状态码
func StatusError(endpoint string, status int) *AppError {
	e := New(CodeStatus, fmt.Sprintf("请求返回状态码: %d", status)).WithContext("endpoint", endpoint)
	e.StatusCode = status
	return e
}

// MalformedError 数据无法解析
func MalformedError(message string, err error) *AppError {
	return Wrap(err, CodeMalformed, message)
}

// ValidationError 校验失败
func ValidationError(message string) *AppError {
	return New(CodeValidation, message)
}

// PreconditionError 缺少前置条件
func PreconditionError(message string) *AppError {
	return New(CodePrecondition, message)
}

// NotFoundError 资源不存在
func NotFoundError(resource, identifier string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found: %s", resource, identifier))
}

// Cancelled 结果已过期（发起方离开或被新的请求取代）
func Cancelled(err error) *AppError {
	return Wrap(err, CodeCancelled, "请求已取消")
}

// TimeoutError 等待超时
func TimeoutError(message string) *AppError {
	return Wrap(context.DeadlineExceeded, CodeTimeout, message)
}

// GetErrorCode 提取错误码
func GetErrorCode(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	if errors.Is(err, context.Canceled) {
		return CodeCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	return CodeUnknown
}

// IsValidation 是否为校验错误
func IsValidation(err error) bool {
	return GetErrorCode(err) == CodeValidation
}

// IsCancelled 是否为取消（不应作为错误展示给用户）
func IsCancelled(err error) bool {
	return GetErrorCode(err) == CodeCancelled
}

// IsTimeout 是否等待超时
func IsTimeout(err error) bool {
	return GetErrorCode(err) == CodeTimeout
}

// IsPrecondition 是否缺少前置条件
func IsPrecondition(err error) bool {
	return GetErrorCode(err) == CodePrecondition
}

// HTTPStatus 返回后端状态码，非状态错误返回 0
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code == CodeStatus {
		return appErr.StatusCode
	}
	return 0
}

// Is 透传标准库 errors.Is，便于调用方只引入本包
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As 透传标准库 errors.As
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

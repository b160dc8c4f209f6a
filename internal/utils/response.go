package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/hellod/internal/errors"
)

// Response 统一API响应结构
type Response struct {
	Code    int         `json:"code"`    // 状态码
	Message string      `json:"message"` // 消息
	Data    interface{} `json:"data"`    // 数据
	Success bool        `json:"success"` // 是否成功
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
		Success: true,
	})
}

// Error 返回错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Data:    nil,
		Success: false,
	})
}

// FromError 按错误码选择状态码
func FromError(c *gin.Context, err error, message string) {
	Error(c, StatusFor(err), message)
}

// StatusFor 错误码到 HTTP 状态码的映射
func StatusFor(err error) int {
	switch errors.GetErrorCode(err) {
	case errors.CodeValidation:
		return http.StatusBadRequest
	case errors.CodePrecondition, errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeTransport, errors.CodeStatus, errors.CodeMalformed:
		return http.StatusBadGateway
	case errors.CodeTimeout:
		return http.StatusGatewayTimeout
	case errors.CodeCancelled:
		// nginx 约定：客户端已关闭连接
		return 499
	default:
		return http.StatusInternalServerError
	}
}

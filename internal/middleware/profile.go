package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/user/hellod/internal/model"
)

// ContextProfileKey gin 上下文中当前用户的键
const ContextProfileKey = "active_profile"

// ProfileLookup 从会话中读取当前用户
type ProfileLookup func(c *gin.Context) (model.ActiveProfile, bool)

// RequireProfile 必须已选择用户
// 页面请求交给 onMissing 渲染"找不到用户"页面，API 请求返回 404
func RequireProfile(lookup ProfileLookup, onMissing gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, ok := lookup(c)
		if !ok {
			if isAPIRequest(c) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"code":    http.StatusNotFound,
					"message": "사용자를 찾을 수 없습니다.",
					"success": false,
				})
				return
			}
			onMissing(c)
			c.Abort()
			return
		}

		c.Set(ContextProfileKey, profile)
		c.Next()
	}
}

// CurrentProfile 读取 RequireProfile 写入的当前用户
func CurrentProfile(c *gin.Context) (model.ActiveProfile, bool) {
	v, ok := c.Get(ContextProfileKey)
	if !ok {
		return model.ActiveProfile{}, false
	}
	p, ok := v.(model.ActiveProfile)
	return p, ok
}

func isAPIRequest(c *gin.Context) bool {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json") &&
		!strings.Contains(c.GetHeader("Accept"), "text/html")
}

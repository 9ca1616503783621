// Package middleware 提供 Gin 中间件：会话认证、日志、指标、追踪、限流、熔断、压缩与响应缓存.
package middleware

import (
	"github.com/gin-gonic/gin"
)

// OwnerKey gin.Context 中保存已认证用户 ID 的键.
const OwnerKey = "owner_id"

// OwnerID 返回已认证的用户 ID，匿名请求返回空串.
func OwnerID(c *gin.Context) string {
	return c.GetString(OwnerKey)
}

func abortJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

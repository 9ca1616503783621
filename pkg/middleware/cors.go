package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/configs"
)

// CORSMiddleware CORS中间件，放行令牌请求头并暴露 ETag.
func CORSMiddleware(cfg configs.ServerConfig, auth configs.AuthConfig) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AddAllowHeaders(headerName(auth))
	config.AddExposeHeaders("ETag", HeaderCache, HeaderTraceID, "Retry-After")

	if cfg.Debug {
		config.AllowWebSockets = true
	}

	return cors.New(config)
}

// CompressionMiddleware gzip 压缩 JSON 响应；文件内容原样返回.
func CompressionMiddleware() gin.HandlerFunc {
	return gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPathsRegexs([]string{`/files/[^/]+/data$`}),
	)
}

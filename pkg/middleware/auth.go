package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/log"
)

const (
	msgUnauthorized = "Unauthorized"
	msgInternal     = "Internal server error"
)

// TokenVerifier 把令牌解析为用户 ID.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (ownerID string, ok bool, err error)
}

// AuthMiddleware 要求请求头携带有效令牌，否则返回 401；会话存储故障返回 500.
func AuthMiddleware(verifier TokenVerifier, conf configs.AuthConfig) gin.HandlerFunc {
	header := headerName(conf)

	return func(c *gin.Context) {
		if isSkippedPath(c.Request.URL.Path, conf.SkipPaths) {
			c.Next()
			return
		}

		ownerID, ok, err := verifier.Verify(c.Request.Context(), c.GetHeader(header))
		if err != nil {
			log.Ctx(c.Request.Context()).Error().Err(err).Msg("verify session")
			abortJSON(c, http.StatusInternalServerError, msgInternal)

			return
		}

		if !ok {
			abortJSON(c, http.StatusUnauthorized, msgUnauthorized)
			return
		}

		c.Set(OwnerKey, ownerID)
		c.Next()
	}
}

// OptionalAuthMiddleware 有有效令牌时记录用户，否则按匿名继续.
func OptionalAuthMiddleware(verifier TokenVerifier, conf configs.AuthConfig) gin.HandlerFunc {
	header := headerName(conf)

	return func(c *gin.Context) {
		ownerID, ok, err := verifier.Verify(c.Request.Context(), c.GetHeader(header))
		if err != nil {
			log.Ctx(c.Request.Context()).Warn().Err(err).Msg("verify session, continue as anonymous")
		}

		if ok {
			c.Set(OwnerKey, ownerID)
		}

		c.Next()
	}
}

func headerName(conf configs.AuthConfig) string {
	if h := strings.TrimSpace(conf.Header); h != "" {
		return h
	}

	return configs.DefaultAuthHeader
}

func isSkippedPath(path string, skips []string) bool {
	if path == "" || len(skips) == 0 {
		return false
	}

	for _, p := range skips {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if strings.HasPrefix(path, p) {
			return true
		}
	}

	return false
}

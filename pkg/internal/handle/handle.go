// Package handle 提供 HTTP 请求处理器，负责参数绑定、调用服务层与错误到状态码的映射.
package handle

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/middleware"
)

// FileService 处理器依赖的文件服务.
type FileService interface {
	Upload(ctx context.Context, ownerID string, req *types.UploadFileRequest) (*model.File, error)
	Get(ctx context.Context, ownerID, fileID string) (*model.File, error)
	List(ctx context.Context, ownerID string, parent model.ParentID, page int) ([]model.File, error)
	Publish(ctx context.Context, ownerID, fileID string) (*model.File, error)
	Unpublish(ctx context.Context, ownerID, fileID string) (*model.File, error)
	GetContent(ctx context.Context, callerID, fileID string, size int) (*types.FileContent, error)
	Stats(ctx context.Context, ownerID string) (*types.FilesStats, error)
}

var _ FileService = (*service.FileService)(nil)

// statusOf 服务层错误分类到 HTTP 状态码.
func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindValidation, service.KindBadRequest:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError 以 {"error": msg} 输出错误，内部错误不暴露细节.
func writeError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	if kind == service.KindInternal {
		_ = c.Error(err)
	}

	c.JSON(statusOf(kind), types.ErrorResponse{Error: service.PublicMessage(err)})
}

// requireOwner 返回认证中间件写入的用户，缺失时输出 401.
func requireOwner(c *gin.Context) (string, bool) {
	owner := middleware.OwnerID(c)
	if owner == "" {
		writeError(c, service.Unauthorized())

		return "", false
	}

	return owner, true
}

// bindError 请求体解析失败的响应.
func bindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, types.ErrorResponse{Error: "Request entity too large"})

		return
	}

	log.Ctx(c.Request.Context()).Debug().Err(err).Msg("bind request body")
	c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Invalid request body"})
}

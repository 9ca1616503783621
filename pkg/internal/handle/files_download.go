package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/middleware"
)

// Data 返回文件内容；公开文件无需令牌，size 指定时返回对应宽度的缩略图。
//
//	@Summary		获取文件内容
//	@Description	私有文件仅所有者可读；目录没有内容
//	@Tags			文件
//	@Produce		octet-stream
//	@Param			X-Token	header		string	false	"会话令牌"
//	@Param			id		path		string	true	"文件 ID"
//	@Param			size	query		int		false	"缩略图宽度"	Enums(500, 250, 100)
//	@Success		200		{file}		binary
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		404		{object}	types.ErrorResponse
//	@Router			/api/v1/files/{id}/data [get]
func (h *FileHandlers) Data(c *gin.Context) {
	size, err := service.ParseSize(c.Query("size"))
	if err != nil {
		writeError(c, err)
		return
	}

	content, err := h.svc.GetContent(c.Request.Context(), middleware.OwnerID(c), c.Param("id"), size)
	if err != nil {
		writeError(c, err)
		return
	}

	if content.ETag != "" {
		c.Header("ETag", content.ETag)

		if c.GetHeader("If-None-Match") == content.ETag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	c.Data(http.StatusOK, content.ContentType, content.Data)
}

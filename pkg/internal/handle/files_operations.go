package handle

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// Publish 将文件设为公开。
//
//	@Summary	公开文件
//	@Tags		文件
//	@Produce	json
//	@Param		X-Token	header		string	true	"会话令牌"
//	@Param		id		path		string	true	"文件 ID"
//	@Success	200		{object}	model.File
//	@Failure	401		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/api/v1/files/{id}/publish [put]
func (h *FileHandlers) Publish(c *gin.Context) {
	h.toggle(c, h.svc.Publish)
}

// Unpublish 取消公开。
//
//	@Summary	取消公开
//	@Tags		文件
//	@Produce	json
//	@Param		X-Token	header		string	true	"会话令牌"
//	@Param		id		path		string	true	"文件 ID"
//	@Success	200		{object}	model.File
//	@Failure	401		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/api/v1/files/{id}/unpublish [put]
func (h *FileHandlers) Unpublish(c *gin.Context) {
	h.toggle(c, h.svc.Unpublish)
}

func (h *FileHandlers) toggle(c *gin.Context, op func(ctx context.Context, ownerID, fileID string) (*model.File, error)) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	file, err := op(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, file)
}

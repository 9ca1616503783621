package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stats 当前用户按类型统计的记录数。
//
//	@Summary	文件统计
//	@Tags		统计
//	@Produce	json
//	@Param		X-Token	header		string	true	"会话令牌"
//	@Success	200		{object}	types.FilesStats
//	@Failure	401		{object}	types.ErrorResponse
//	@Router		/api/v1/stats [get]
func (h *FileHandlers) Stats(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), owner)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

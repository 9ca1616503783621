package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/types"
)

// Get 获取当前用户的文件记录。
//
//	@Summary	获取文件
//	@Tags		文件
//	@Produce	json
//	@Param		X-Token	header		string	true	"会话令牌"
//	@Param		id		path		string	true	"文件 ID"
//	@Success	200		{object}	model.File
//	@Failure	401		{object}	types.ErrorResponse
//	@Failure	404		{object}	types.ErrorResponse
//	@Router		/api/v1/files/{id} [get]
func (h *FileHandlers) Get(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	file, err := h.svc.Get(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, file)
}

// List 分页列出某个目录下的记录，每页 20 条。
//
//	@Summary	列出文件
//	@Tags		文件
//	@Produce	json
//	@Param		X-Token		header	string	true	"会话令牌"
//	@Param		parentId	query	string	false	"父目录 ID，缺省为根目录"
//	@Param		page		query	int		false	"页码，从 0 开始"
//	@Success	200			{array}	model.File
//	@Failure	401			{object}	types.ErrorResponse
//	@Router		/api/v1/files [get]
func (h *FileHandlers) List(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	var q types.ListFilesQuery
	_ = c.ShouldBindQuery(&q)

	files, err := h.svc.List(c.Request.Context(), owner, model.ParseParentID(q.ParentID), service.ParsePage(q.Page))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, files)
}

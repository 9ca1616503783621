package handle

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/log"
)

// StatsCacheName /stats 响应缓存的键名前缀.
const StatsCacheName = "stats"

// FileHandlers 文件相关的请求处理器.
type FileHandlers struct {
	svc          FileService
	cache        *cache.Cache
	maxBodyBytes int64
}

// NewFileHandlers 创建处理器；c 为 nil 时不做缓存失效，maxBodyBytes<=0 时不限制请求体.
func NewFileHandlers(svc FileService, c *cache.Cache, maxBodyBytes int64) *FileHandlers {
	return &FileHandlers{svc: svc, cache: c, maxBodyBytes: maxBodyBytes}
}

// Upload 创建目录或上传文件、图片。
//
//	@Summary		上传文件
//	@Description	type 为 folder/file/image；file 与 image 需提供 base64 编码的 data，图片上传后异步生成缩略图
//	@Tags			文件
//	@Accept			json
//	@Produce		json
//	@Param			X-Token	header		string					true	"会话令牌"
//	@Param			req		body		types.UploadFileRequest	true	"上传内容"
//	@Success		201		{object}	model.File
//	@Failure		400		{object}	types.ErrorResponse
//	@Failure		401		{object}	types.ErrorResponse
//	@Router			/api/v1/files [post]
func (h *FileHandlers) Upload(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}

	var req types.UploadFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	file, err := h.svc.Upload(c.Request.Context(), owner, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	h.invalidateStats(c, owner)

	c.JSON(http.StatusCreated, file)
}

func (h *FileHandlers) invalidateStats(c *gin.Context, owner string) {
	if h.cache == nil {
		return
	}

	if err := h.cache.Delete(c.Request.Context(), StatsCacheName+":"+owner); err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Msg("invalidate stats cache")
	}
}

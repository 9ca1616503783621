package handle

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/filevault/pkg/context"
	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/internal/types"
)

const timeout = 2 * time.Second

// HealthDB 元数据存储健康检查.
//
//	@Summary	元数据存储健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	types.HealthResponse
//	@Failure	503	{object}	types.HealthResponse
//	@Router		/api/v1/health/db [get]
func HealthDB(c *gin.Context) { health(c, storage.ComponentDB) }

// HealthKV 会话存储健康检查.
//
//	@Summary	会话存储健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	types.HealthResponse
//	@Failure	503	{object}	types.HealthResponse
//	@Router		/api/v1/health/kv [get]
func HealthKV(c *gin.Context) { health(c, storage.ComponentKV) }

// HealthMQ 消息队列健康检查.
//
//	@Summary	消息队列健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	types.HealthResponse
//	@Failure	503	{object}	types.HealthResponse
//	@Router		/api/v1/health/mq [get]
func HealthMQ(c *gin.Context) { health(c, storage.ComponentMQ) }

// HealthBlob 文件内容存储健康检查.
//
//	@Summary	文件内容存储健康检查
//	@Tags		健康检查
//	@Produce	json
//	@Success	200	{object}	types.HealthResponse
//	@Failure	503	{object}	types.HealthResponse
//	@Router		/api/v1/health/blob [get]
func HealthBlob(c *gin.Context) { health(c, storage.ComponentBlob) }

func health(c *gin.Context, component string) {
	mgr := ctxPkg.GetManager(c.Request.Context())
	if mgr == nil {
		c.JSON(http.StatusServiceUnavailable, types.HealthResponse{
			Component: component, Status: "unhealthy", Error: "storage manager not initialized",
		})

		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	if err := mgr.Check(ctx, component); err != nil {
		c.JSON(http.StatusServiceUnavailable, types.HealthResponse{
			Component: component, Status: "unhealthy", Error: err.Error(),
		})

		return
	}

	c.JSON(http.StatusOK, types.HealthResponse{Component: component, Status: "ok"})
}

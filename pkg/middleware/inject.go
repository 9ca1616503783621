package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	ctxPkg "github.com/yeisme/filevault/pkg/context"
	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/scheduler"
)

// inject 用 fn 包装请求 context.
func inject(fn func(ctx context.Context) context.Context) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request = c.Request.WithContext(fn(c.Request.Context()))
		c.Next()
	}
}

// StorageMiddleware 将存储管理器注入请求上下文，供健康检查使用.
func StorageMiddleware(manager *storage.Manager) gin.HandlerFunc {
	return inject(func(ctx context.Context) context.Context {
		return ctxPkg.WithStorageManager(ctx, manager)
	})
}

// SchedulerMiddleware 将调度器注入请求上下文，sched 为 nil 时管理接口返回 503.
func SchedulerMiddleware(sched *scheduler.Scheduler) gin.HandlerFunc {
	return inject(func(ctx context.Context) context.Context {
		return ctxPkg.WithScheduler(ctx, sched)
	})
}

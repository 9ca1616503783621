// Package context 在 context.Context 中携带运维资源（存储管理器、调度器）与追踪字段.
//
// 业务代码通过构造函数注入依赖，不从 context 读取；这里的值只服务于健康检查、
// 调度器管理接口与日志.
package context

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/scheduler"
)

type (
	managerKey   struct{}
	schedulerKey struct{}
)

// WithStorageManager 将 Manager 存入 context.
func WithStorageManager(ctx context.Context, mgr *storage.Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, mgr)
}

// GetManager 从 context 中获取 Manager，不存在时返回 nil.
func GetManager(ctx context.Context) *storage.Manager {
	mgr, _ := ctx.Value(managerKey{}).(*storage.Manager)

	return mgr
}

// WithScheduler 将调度器存入 context.
func WithScheduler(ctx context.Context, sched *scheduler.Scheduler) context.Context {
	return context.WithValue(ctx, schedulerKey{}, sched)
}

// GetScheduler 从 context 中获取调度器，未启用调度时返回 nil.
func GetScheduler(ctx context.Context) *scheduler.Scheduler {
	sched, _ := ctx.Value(schedulerKey{}).(*scheduler.Scheduler)

	return sched
}

// WithTraceContext 当 ctx 带有效 span 时为 logger 加上 trace_id 与 span_id.
func WithTraceContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return logger
	}

	return logger.With().
		Str("trace_id", sc.TraceID().String()).
		Str("span_id", sc.SpanID().String()).
		Logger()
}

// Package router 管理路由配置，把处理器与中间件绑定到 gin 引擎.
package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/handle"
	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/middleware"
	"github.com/yeisme/filevault/pkg/scheduler"
)

// StatsCacheTTL /stats 响应的缓存时间.
const StatsCacheTTL = 30 * time.Second

// Deps 路由依赖，由应用层注入. Cache、Manager、Scheduler 可为空.
type Deps struct {
	Config    *configs.AppConfig
	Files     handle.FileService
	Verifier  middleware.TokenVerifier
	Cache     *cache.Cache
	Manager   *storage.Manager
	Scheduler *scheduler.Scheduler
}

// New 构建完整的 HTTP 引擎.
func New(d Deps) *gin.Engine {
	cfg := d.Config
	engine := gin.New()

	engine.Use(
		gin.Recovery(),
		middleware.TracingMiddleware(),
		middleware.GinLoggerMiddleware(),
		middleware.PrometheusMiddleware(),
		middleware.CORSMiddleware(cfg.Server, cfg.Auth),
		middleware.RateLimitMiddleware(cfg.RateLimit),
		middleware.CircuitBreakerMiddleware(cfg.CircuitBreaker),
		middleware.CompressionMiddleware(),
	)

	api := engine.Group("/api/v1")

	RegisterHealthCheckRoute(api, d.Manager)
	RegisterFileRoutes(api, d)

	if cfg.Server.Debug {
		RegisterSchedulerRoutes(api, d.Scheduler)
		RegisterSwaggerRoute(engine, cfg.Server)
	}

	return engine
}

// RegisterFileRoutes 注册文件与统计路由：
//
//	POST /files                 -> Upload
//	GET  /files                 -> List
//	GET  /files/:id             -> Get
//	PUT  /files/:id/publish     -> Publish
//	PUT  /files/:id/unpublish   -> Unpublish
//	GET  /files/:id/data        -> Data（令牌可选）
//	GET  /stats                 -> Stats（按用户缓存）
func RegisterFileRoutes(g *gin.RouterGroup, d Deps) {
	h := handle.NewFileHandlers(d.Files, d.Cache, d.Config.Server.MaxBodyBytes())
	auth := middleware.AuthMiddleware(d.Verifier, d.Config.Auth)

	files := g.Group("/files")
	{
		files.GET("/:id/data", middleware.OptionalAuthMiddleware(d.Verifier, d.Config.Auth), h.Data)

		owned := files.Group("", auth)
		owned.POST("", h.Upload)
		owned.GET("", h.List)
		owned.GET("/:id", h.Get)
		owned.PUT("/:id/publish", h.Publish)
		owned.PUT("/:id/unpublish", h.Unpublish)
	}

	stats := []gin.HandlerFunc{auth}

	if d.Cache != nil {
		cc := middleware.DefaultCacheConfig(d.Cache)
		cc.TTL = StatsCacheTTL
		cc.KeyFunc = middleware.OwnerCacheKey(handle.StatsCacheName)
		cc.Skipper = middleware.SkipAnonymous
		stats = append(stats, middleware.CacheMiddleware(cc))
	}

	g.GET("/stats", append(stats, h.Stats)...)
}

// RegisterHealthCheckRoute 注册健康检查路由，无需认证.
func RegisterHealthCheckRoute(g *gin.RouterGroup, mgr *storage.Manager) {
	healthRoutes := g.Group("/health", middleware.StorageMiddleware(mgr))
	{
		healthRoutes.GET("/db", handle.HealthDB)
		healthRoutes.GET("/kv", handle.HealthKV)
		healthRoutes.GET("/mq", handle.HealthMQ)
		healthRoutes.GET("/blob", handle.HealthBlob)
	}
}

// RegisterSchedulerRoutes 注册调度器相关路由，仅调试模式开放.
func RegisterSchedulerRoutes(g *gin.RouterGroup, sched *scheduler.Scheduler) {
	routes := g.Group("/scheduler", middleware.SchedulerMiddleware(sched))
	{
		routes.GET("/jobs", handle.SchedulerJobs)
		routes.POST("/jobs/:name/run", handle.SchedulerRunJob)
	}
}

// Package app 提供应用程序的初始化和配置功能.
//
// 一个进程可以同时承担 HTTP 服务与缩略图 worker 两种角色，
// 二者共享同一份配置与存储资源，由 errgroup 统一管理生命周期.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yeisme/filevault/pkg/cache"
	"github.com/yeisme/filevault/pkg/configs"
	ctxPkg "github.com/yeisme/filevault/pkg/context"
	"github.com/yeisme/filevault/pkg/internal/jobs"
	"github.com/yeisme/filevault/pkg/internal/router"
	"github.com/yeisme/filevault/pkg/internal/service"
	"github.com/yeisme/filevault/pkg/internal/session"
	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/internal/worker"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/metrics"
	"github.com/yeisme/filevault/pkg/scheduler"
	"github.com/yeisme/filevault/pkg/tracing"
)

// CachePrefix 响应缓存在 KV 中的键前缀.
const CachePrefix = "fv:cache:"

// shutdownTimeout 优雅退出的最长等待时间.
const shutdownTimeout = 10 * time.Second

// Options 进程角色.
type Options struct {
	Serve  bool // 启动 HTTP 服务与定时任务
	Worker bool // 启动缩略图 worker
}

// App 持有已初始化的配置与存储资源.
type App struct {
	config  *configs.AppConfig
	manager *storage.Manager
	opts    Options
	logger  zerolog.Logger
}

// New 加载配置并初始化日志、追踪、指标与存储.
func New(ctx context.Context, configPath string, opts Options) (*App, error) {
	if err := configs.InitConfig(configPath); err != nil {
		return nil, fmt.Errorf("init config: %w", err)
	}

	log.Init()

	config := configs.GetConfig()

	if err := tracing.InitTracer(config.Tracing); err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	if err := metrics.InitMetrics(config.Metrics); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	storageOpts := storage.Options{Debug: config.Server.Debug}
	if config.Metrics.Enabled {
		storageOpts.Registerer = metrics.GetRegistry()
	}

	manager, err := storage.New(ctx, config, storageOpts)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	l := log.Logger()
	gin.DefaultWriter = log.NewGinWriter(l, zerolog.InfoLevel)
	gin.DefaultErrorWriter = log.NewGinWriter(l, zerolog.ErrorLevel)

	return &App{
		config:  config,
		manager: manager,
		opts:    opts,
		logger:  log.Component("app"),
	}, nil
}

// Manager 返回存储资源.
func (a *App) Manager() *storage.Manager {
	return a.manager
}

// Run 启动所选角色并阻塞到 ctx 取消或任一角色出错，返回前释放全部资源.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	ctx, cancel := context.WithCancel(ctxPkg.WithStorageManager(ctx, a.manager))
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	if err := a.start(ctx, g); err != nil {
		cancel()
		_ = g.Wait()

		return err
	}

	return g.Wait()
}

func (a *App) start(ctx context.Context, g *errgroup.Group) error {
	if a.opts.Serve {
		if err := a.serve(ctx, g); err != nil {
			return err
		}
	}

	if a.opts.Worker {
		w := worker.New(a.manager.Files, a.manager.Blobs, a.manager.MQ.Subscriber(), worker.Options{
			Concurrency: a.config.Worker.Concurrency,
			Failures:    a.manager.MQ.Publisher(),
		})

		g.Go(func() error { return w.Run(ctx) })
	}

	if a.config.Metrics.Enabled {
		debug := gin.New()
		if err := metrics.StartMetricsServer(a.config.Metrics, debug); err != nil {
			return err
		}

		a.listen(ctx, g, "metrics", a.config.Metrics.Endpoint, debug)
	}

	return nil
}

func (a *App) serve(ctx context.Context, g *errgroup.Group) error {
	cfg := a.config

	var sched *scheduler.Scheduler

	if cfg.Scheduler.Enabled {
		s, err := scheduler.NewScheduler()
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}

		err = jobs.RegisterCronJobs(ctx, s, &cfg.Scheduler, jobs.Deps{
			Files:     a.manager.Files,
			Blobs:     a.manager.Blobs,
			Publisher: a.manager.MQ.Publisher(),
		})
		if err != nil {
			_ = s.Stop()

			return fmt.Errorf("register cron jobs: %w", err)
		}

		s.Start()

		g.Go(func() error {
			<-ctx.Done()

			return s.Stop()
		})

		sched = s
	}

	engine := router.New(router.Deps{
		Config:    cfg,
		Files:     service.NewFileService(a.manager.Files, a.manager.Blobs, a.manager.MQ.Publisher()),
		Verifier:  session.NewVerifier(a.manager.KV),
		Cache:     cache.NewCache(a.manager.KV, CachePrefix),
		Manager:   a.manager,
		Scheduler: sched,
	})

	a.listen(ctx, g, "http", cfg.Server.Addr(), engine)

	return nil
}

// listen 在 errgroup 中运行 HTTP 服务，ctx 取消时优雅关闭.
func (a *App) listen(ctx context.Context, g *errgroup.Group, name, addr string, h http.Handler) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: a.config.Server.GetTimeoutDuration(),
		IdleTimeout:       a.config.Server.GetTimeoutDuration() * 4,
	}

	g.Go(func() error {
		a.logger.Info().Str("server", name).Str("addr", addr).Msg("Listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server: %w", name, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})
}

func (a *App) close() {
	if err := a.manager.Close(); err != nil {
		a.logger.Error().Err(err).Msg("close storage")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := tracing.ShutdownTracer(ctx); err != nil {
		a.logger.Error().Err(err).Msg("shutdown tracer")
	}

	a.logger.Info().Msg("Stopped")
}

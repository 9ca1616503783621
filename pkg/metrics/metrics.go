// Package metrics 提供监控指标功能.
// 支持Prometheus标准，收集 HTTP、缩略图 worker 与文件统计指标.
//
// Example:
//
//	import "github.com/yeisme/filevault/pkg/metrics"
//
//	err := metrics.InitMetrics(config.Metrics)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// 记录指标
//	metrics.RequestCounter.WithLabelValues("GET", "/api/v1/files", "200").Inc()
//	metrics.ThumbnailJobs.WithLabelValues(metrics.ResultOK).Inc()
package metrics

import (
	"net/http"
	_ "net/http/pprof" // 自动注册pprof端点
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yeisme/filevault/pkg/configs"
)

const namespace = "filevault"

// 缩略图任务结果标签.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

// 全局指标变量.
var (
	// RequestCounter HTTP请求计数器.
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration HTTP请求持续时间.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// ActiveConnections 正在处理的请求数.
	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of in-flight HTTP requests",
		},
	)

	// ThumbnailJobs 缩略图任务计数，按结果区分.
	ThumbnailJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnail_jobs_total",
			Help:      "Thumbnail jobs processed by result",
		},
		[]string{"result"},
	)

	// ThumbnailDuration 单个缩略图任务耗时.
	ThumbnailDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "thumbnail_job_duration_seconds",
			Help:      "Thumbnail job duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// FilesTotal 按类型统计的文件记录数，由 stats.refresh 定时刷新.
	FilesTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Number of file records by type",
		},
		[]string{"type"},
	)

	// registry Prometheus注册表.
	registry = prometheus.NewRegistry()

	registerOnce sync.Once
)

// InitMetrics 初始化Metrics，重复调用只注册一次.
func InitMetrics(config configs.MetricsConfig) error {
	if !config.Enabled {
		return nil
	}

	var err error

	registerOnce.Do(func() {
		var reg prometheus.Registerer = registry
		if len(config.Labels) > 0 {
			reg = prometheus.WrapRegistererWith(config.Labels, registry)
		}

		collectorsToRegister := []prometheus.Collector{
			RequestCounter, RequestDuration, ActiveConnections,
			ThumbnailJobs, ThumbnailDuration, FilesTotal,
		}

		if config.RuntimeMetrics {
			collectorsToRegister = append(collectorsToRegister,
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}

		for _, c := range collectorsToRegister {
			if err = reg.Register(c); err != nil {
				return
			}
		}
	})

	return err
}

// StartMetricsServer 在调试引擎上注册 /metrics 与可选的 pprof.
func StartMetricsServer(config configs.MetricsConfig, debugEngine *gin.Engine) error {
	if !config.Enabled {
		return nil
	}

	debugEngine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	if config.Pprof {
		debugEngine.GET("/debug/pprof/*any", gin.WrapH(http.DefaultServeMux))
	}

	return nil
}

// GetRegistry 获取Prometheus注册表.
func GetRegistry() *prometheus.Registry {
	return registry
}

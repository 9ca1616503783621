package configs

import (
	"github.com/spf13/viper"
)

// MetricsConfig Prometheus 指标配置.
// 启用后 /metrics（以及可选的 pprof）在独立的 Endpoint 上提供，不经过业务中间件.
type MetricsConfig struct {
	Enabled        bool              `mapstructure:"enabled"`
	Endpoint       string            `mapstructure:"endpoint"`        // 指标服务监听地址，如 ":9090"
	RuntimeMetrics bool              `mapstructure:"runtime_metrics"` // 是否采集 Go 运行时与进程指标
	Pprof          bool              `mapstructure:"pprof"`           // 是否同时暴露 /debug/pprof
	Labels         map[string]string `mapstructure:"labels"`          // 附加到所有指标的常量标签
}

func (c *MetricsConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.endpoint", ":9090")
	v.SetDefault("metrics.runtime_metrics", true)
	v.SetDefault("metrics.pprof", false)
	v.SetDefault("metrics.labels", map[string]string{})
}

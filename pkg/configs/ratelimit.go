package configs

import (
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultRateLimitEnabled = false
	DefaultRateLimitRPS     = 50.0
	DefaultRateLimitBurst   = 100
	DefaultRateLimitKey     = "ip"
	DefaultRateLimitIdleTTL = 10 * time.Minute
)

// RateLimitConfig 令牌桶限流配置.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"   rule:"gte=0"` // 每秒补充的令牌数
	Burst   int     `mapstructure:"burst" rule:"gte=0"` // 桶容量
	// Key 限流维度：global、ip 或 header:<Name>（例如 header:X-Token，按会话限流）
	Key string `mapstructure:"key"`
	// IdleTTL 按键 limiter 闲置多久后回收
	IdleTTL time.Duration `mapstructure:"idle_ttl"`
}

func (c *RateLimitConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("rate_limit.enabled", DefaultRateLimitEnabled)
	v.SetDefault("rate_limit.rps", DefaultRateLimitRPS)
	v.SetDefault("rate_limit.burst", DefaultRateLimitBurst)
	v.SetDefault("rate_limit.key", DefaultRateLimitKey)
	v.SetDefault("rate_limit.idle_ttl", DefaultRateLimitIdleTTL)
}

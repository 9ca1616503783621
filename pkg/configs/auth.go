package configs

import "github.com/spf13/viper"

const DefaultAuthHeader = "X-Token"

// AuthConfig 会话令牌认证配置，令牌由 KV 中的 auth_<token> 解析为用户 ID.
type AuthConfig struct {
	Header    string   `mapstructure:"header"     rule:"required"` // 携带令牌的请求头
	SkipPaths []string `mapstructure:"skip_paths"`                 // 跳过认证的路径前缀（如 /metrics、/api/v1/health）
}

func (c *AuthConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("auth.header", DefaultAuthHeader)
	v.SetDefault("auth.skip_paths", []string{
		"/metrics",
		"/debug/pprof",
		"/api/v1/health",
		"/swagger",
	})
}

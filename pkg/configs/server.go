package configs

import (
	"net"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultHost      = "0.0.0.0"
	DefaultPort      = 8080
	DefaultTimeout   = 30 // 秒
	DefaultMaxBodyMB = 64
)

// ServerConfig HTTP 服务配置.
type ServerConfig struct {
	Host string `mapstructure:"host" rule:"ip"`
	Port int    `mapstructure:"port" rule:"min=1,max=65535"`
	// Debug 开启 gin 调试模式、Swagger 与调度器管理接口.
	Debug bool `mapstructure:"debug"`
	// ReloadConfig 监听配置文件变更并热加载.
	ReloadConfig bool `mapstructure:"reload_config"`
	// Timeout 读取请求头与空闲连接的超时，单位秒. 上传与下载不受其限制.
	Timeout int `mapstructure:"timeout" rule:"min=1,max=300"`
	// MaxBodyMB 上传请求体上限，按 base64 编码后的大小计算.
	MaxBodyMB int `mapstructure:"max_body_mb" rule:"min=1,max=1024"`
}

// Addr 返回 host:port.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// MaxBodyBytes 请求体上限，单位字节.
func (s *ServerConfig) MaxBodyBytes() int64 {
	return int64(s.MaxBodyMB) << 20
}

// GetTimeoutDuration 返回 Timeout 对应的 time.Duration.
func (s *ServerConfig) GetTimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

func (s *ServerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.reload_config", false)
	v.SetDefault("server.timeout", DefaultTimeout)
	v.SetDefault("server.max_body_mb", DefaultMaxBodyMB)
}

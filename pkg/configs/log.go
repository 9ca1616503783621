package configs

import (
	"github.com/spf13/viper"
)

const (
	DefaultLogEnableFile = false                // 是否启用文件日志
	DefaultLogFilePath   = "logs/filevault.log" // 日志文件路径
	DefaultLogMaxSize    = 100                  // 日志文件最大尺寸（MB）
	DefaultLogMaxBackups = 7                    // 日志文件最大备份数量
	DefaultLogMaxAge     = 28                   // 日志文件最大保存天数
	DefaultLogCompress   = true                 // 是否启用日志文件压缩
	DefaultLogLevel      = "info"               // 日志级别
	DefaultLogFormat     = LogFormatConsole     // 终端输出格式
)

// 终端输出格式.
const (
	LogFormatConsole = "console" // 彩色可读格式，适合本地开发
	LogFormatJSON    = "json"    // 每行一个 JSON 对象，适合容器日志采集
)

type (
	// LogConfig 日志配置；文件输出始终为 JSON，由 lumberjack 轮转.
	LogConfig struct {
		Level      string `mapstructure:"level"        rule:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
		Format     string `mapstructure:"format"       rule:"omitempty,oneof=console json"`
		EnableFile bool   `mapstructure:"enable_file"`
		FilePath   string `mapstructure:"file_path"`
		MaxSize    int    `mapstructure:"max_size_mb"  rule:"gte=0"`
		MaxBackups int    `mapstructure:"max_backups"  rule:"gte=0"`
		MaxAge     int    `mapstructure:"max_age_days" rule:"gte=0"`
		Compress   bool   `mapstructure:"compress"`
	}
)

func (l *LogConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("log.enable_file", DefaultLogEnableFile)
	v.SetDefault("log.file_path", DefaultLogFilePath)
	v.SetDefault("log.max_size_mb", DefaultLogMaxSize)
	v.SetDefault("log.max_backups", DefaultLogMaxBackups)
	v.SetDefault("log.max_age_days", DefaultLogMaxAge)
	v.SetDefault("log.compress", DefaultLogCompress)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)
}

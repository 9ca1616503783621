// Package configs 管理应用程序配置，包括数据库、KV、消息队列、Blob 存储与缩略图 worker 的配置信息.
// configs 包支持多种配置格式（YAML、JSON、TOML、dotenv）并启用热重载.
//
// Example:
//
//	if err := configs.InitConfig("./"); err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := configs.GetConfig()
//	fmt.Println(cfg.Server.Port, cfg.Blob.Local.Root)
//
// 环境变量使用 FILEVAULT_ 前缀，层级分隔符 "." 替换为 "_"，例如 FILEVAULT_DB_TYPE.
// 兼容旧部署的 FOLDER_PATH、DB_HOST、DB_PORT、DB_DATABASE 也会被读取.
package configs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/yeisme/filevault/pkg/rule"
)

// EnvPrefix 环境变量前缀.
const EnvPrefix = "FILEVAULT"

type (
	// AppConfig 全局应用程序配置.
	AppConfig struct {
		Server         ServerConfig         `mapstructure:"server"`
		Log            LogConfig            `mapstructure:"log"`
		DB             DBConfig             `mapstructure:"db"`
		KV             KVConfig             `mapstructure:"kv"`
		MQ             MQConfig             `mapstructure:"mq"`
		Blob           BlobConfig           `mapstructure:"blob"`
		Worker         WorkerConfig         `mapstructure:"worker"`
		Auth           AuthConfig           `mapstructure:"auth"`
		RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
		CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
		Metrics        MetricsConfig        `mapstructure:"metrics"`
		Tracing        TracingConfig        `mapstructure:"tracing"`
		Scheduler      SchedulerConfig      `mapstructure:"scheduler"`
	}
)

var (
	// globalConfig 全局配置实例.
	globalConfig AppConfig
	// appViper 全局 Viper 实例.
	appViper *viper.Viper
)

// legacyEnv 旧版部署使用的无前缀环境变量.
var legacyEnv = map[string]string{
	"blob.local.root": "FOLDER_PATH",
	"db.host":         "DB_HOST",
	"db.port":         "DB_PORT",
	"db.database":     "DB_DATABASE",
}

// InitConfig 加载应用程序配置，支持多种格式(yaml、json、toml、dotenv)并启用热重载.
// 找不到配置文件时仅使用默认值与环境变量.
func InitConfig(path string) error {
	appViper = viper.New()
	setAllDefaults(appViper)

	// 检查path是否是文件
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		appViper.SetConfigFile(path)
	} else {
		appViper.SetConfigName("config")
		appViper.AddConfigPath(path)
		appViper.AddConfigPath(filepath.Join(path, "configs"))

		for _, ext := range []string{"yaml", "yml", "json", "toml", "env", "dotenv"} {
			cfg := filepath.Join(path, "config."+ext)
			if _, err := os.Stat(cfg); err == nil {
				appViper.SetConfigFile(cfg)

				break
			}
		}
	}

	appViper.SetEnvPrefix(EnvPrefix)
	appViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	appViper.AutomaticEnv()

	for key, env := range legacyEnv {
		if err := appViper.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	fileLoaded := true

	if err := appViper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fileLoaded = false
	}

	var cfg AppConfig
	if err := appViper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	globalConfig = cfg

	if fileLoaded {
		reloadConfigs(appViper, globalConfig.Server.ReloadConfig)
	}

	return nil
}

// setAllDefaults 设置所有配置的默认值.
func setAllDefaults(v *viper.Viper) {
	var (
		serverConfig    ServerConfig
		logConfig       LogConfig
		dbConfig        DBConfig
		kvConfig        KVConfig
		mqConfig        MQConfig
		blobConfig      BlobConfig
		workerConfig    WorkerConfig
		authConfig      AuthConfig
		rateLimitConfig RateLimitConfig
		cbConfig        CircuitBreakerConfig
		metricsConfig   MetricsConfig
		tracingConfig   TracingConfig
		schedulerConfig SchedulerConfig
	)

	serverConfig.setDefaults(v)
	logConfig.setDefaults(v)
	dbConfig.setDefaults(v)
	kvConfig.setDefaults(v)
	mqConfig.setDefaults(v)
	blobConfig.setDefaults(v)
	workerConfig.setDefaults(v)
	authConfig.setDefaults(v)
	rateLimitConfig.setDefaults(v)
	cbConfig.setDefaults(v)
	metricsConfig.setDefaults(v)
	tracingConfig.setDefaults(v)
	schedulerConfig.setDefaults(v)
}

func reloadConfigs(v *viper.Viper, isHotReload bool) {
	if !isHotReload {
		return
	}
	// 启用配置热重载
	v.OnConfigChange(func(e fsnotify.Event) {
		fmt.Println("Config file changed:", e.Name)

		var cfg AppConfig
		if err := v.Unmarshal(&cfg); err != nil {
			fmt.Printf("Error reloading config: %v\n", err)

			return
		}

		if err := cfg.Validate(); err != nil {
			fmt.Printf("Invalid config ignored: %v\n", err)

			return
		}

		globalConfig = cfg
	})
	v.WatchConfig()
}

// Validate 使用 rule 标签校验配置.
func (c *AppConfig) Validate() error {
	if err := rule.ValidateStruct(c); err != nil {
		if errs := rule.Errors(err); errs != nil {
			return fmt.Errorf("invalid config: %w", errs)
		}

		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// GetConfig 返回全局配置实例.
func GetConfig() *AppConfig {
	return &globalConfig
}

// GetViper 返回全局 Viper 实例，未初始化时为 nil.
func GetViper() *viper.Viper {
	return appViper
}

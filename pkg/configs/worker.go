package configs

import "github.com/spf13/viper"

const (
	DefaultWorkerConcurrency = 1 // 单实例同时处理的缩略图任务数
)

// WorkerConfig 缩略图 worker 配置.
type WorkerConfig struct {
	Concurrency int `mapstructure:"concurrency" rule:"min=1,max=64"`
}

func (c *WorkerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("worker.concurrency", DefaultWorkerConcurrency)
}

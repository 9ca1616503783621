package configs

import "github.com/spf13/viper"

// SchedulerConfig 定时任务配置，表达式为标准 5 段 cron.
type SchedulerConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	StatsRefreshCron  string `mapstructure:"stats_refresh_cron"`
	ThumbnailBackfill string `mapstructure:"thumbnail_backfill_cron"`
}

func (c *SchedulerConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.stats_refresh_cron", "* * * * *")
	v.SetDefault("scheduler.thumbnail_backfill_cron", "0 * * * *")
}

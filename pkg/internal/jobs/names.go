package jobs

// 任务名称常量，便于统一管理与引用.
const (
	JobStatsRefresh      = "stats.refresh"
	JobThumbnailBackfill = "thumbnail.backfill"
)

// backfillPageSize 补偿扫描每页读取的图片记录数.
const backfillPageSize = 100

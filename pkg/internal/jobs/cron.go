// Package jobs 负责注册与实现业务定时任务（基于 scheduler）.
package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/blob"
	"github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/metrics"
	"github.com/yeisme/filevault/pkg/queue"
	"github.com/yeisme/filevault/pkg/scheduler"
)

// Producer 补偿任务发布消息时的生产者标识.
const Producer = "filevault-scheduler"

// FileIndex 定时任务需要的元数据查询能力.
type FileIndex interface {
	CountByType(ctx context.Context, ownerID string) (map[model.FileType]int64, error)
	ListByType(ctx context.Context, t model.FileType, afterID string, limit int) ([]model.File, error)
}

// Deps 定时任务依赖.
type Deps struct {
	Files     FileIndex
	Blobs     blob.Store
	Publisher message.Publisher
}

// RegisterCronJobs 配置业务定时任务：
//   - stats.refresh 刷新 files_total 指标
//   - thumbnail.backfill 为缺少缩略图的图片重新入队
//
// 表达式为空的任务不注册.
func RegisterCronJobs(ctx context.Context, sched *scheduler.Scheduler, cfg *configs.SchedulerConfig, deps Deps) error {
	if sched == nil {
		return errors.New("scheduler is nil")
	}

	if deps.Files == nil {
		return errors.New("file index is nil")
	}

	if cfg.StatsRefreshCron != "" {
		err := sched.AddCron(ctx, JobStatsRefresh, cfg.StatsRefreshCron, func(ctx context.Context) error {
			return RefreshStats(ctx, deps.Files)
		})
		if err != nil {
			return err
		}
	}

	if cfg.ThumbnailBackfill != "" && deps.Blobs != nil && deps.Publisher != nil {
		err := sched.AddCron(ctx, JobThumbnailBackfill, cfg.ThumbnailBackfill, func(ctx context.Context) error {
			_, err := BackfillThumbnails(ctx, deps)

			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// RefreshStats 统计全部记录并写入 files_total 指标.
func RefreshStats(ctx context.Context, files FileIndex) error {
	counts, err := files.CountByType(ctx, "")
	if err != nil {
		return fmt.Errorf("count files: %w", err)
	}

	for _, t := range model.FileTypes {
		metrics.FilesTotal.WithLabelValues(string(t)).Set(float64(counts[t]))
	}

	return nil
}

// BackfillThumbnails 遍历全部图片，最小宽度缩略图不存在时重新发布任务，返回入队数量.
func BackfillThumbnails(ctx context.Context, deps Deps) (int, error) {
	l := log.Logger().With().Str("job", JobThumbnailBackfill).Logger()
	smallest := model.ThumbnailWidths[len(model.ThumbnailWidths)-1]

	var (
		after    string
		enqueued int
	)

	for {
		page, err := deps.Files.ListByType(ctx, model.TypeImage, after, backfillPageSize)
		if err != nil {
			return enqueued, fmt.Errorf("list images: %w", err)
		}

		for _, f := range page {
			if f.LocalPath == "" {
				continue
			}

			ok, err := deps.Blobs.Exists(ctx, blob.DerivedKey(f.LocalPath, smallest))
			if err != nil {
				l.Warn().Err(err).Str("file_id", f.ID).Msg("check thumbnail failed")

				continue
			}

			if ok {
				continue
			}

			job := queue.ThumbnailJob{OwnerID: f.OwnerID, FileID: f.ID}
			if err := queue.PublishThumbnailRequested(deps.Publisher, job, queue.WithProducer(Producer)); err != nil {
				return enqueued, fmt.Errorf("enqueue %s: %w", f.ID, err)
			}

			enqueued++
		}

		if len(page) < backfillPageSize {
			break
		}

		after = page[len(page)-1].ID
	}

	if enqueued > 0 {
		l.Info().Int("enqueued", enqueued).Msg("thumbnail jobs re-enqueued")
	}

	return enqueued, nil
}

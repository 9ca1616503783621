// Package worker 消费 fv.thumbnail.requested 任务，为图片生成 500/250/100 宽度的缩略图.
//
// 每个任务独立处理：成功时缩略图以 <localPath>_<width> 写入 blob 存储；
// 失败时向 fv.thumbnail.failed 发布报告。两种情况下消息都会被确认，不做重投.
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/blob"
	nlog "github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/metrics"
	"github.com/yeisme/filevault/pkg/queue"
	"github.com/yeisme/filevault/pkg/tracing"
)

// Producer 失败报告中的生产者标识.
const Producer = "filevault-worker"

var (
	// ErrMissingField 任务缺少 fileId 或 ownerId.
	ErrMissingField = errors.New("missing field")
	// ErrFileNotFound 所有者名下不存在该文件.
	ErrFileNotFound = errors.New("file not found")
	// ErrThumbnailGenerationFailed 读取、解码、缩放或写入缩略图失败.
	ErrThumbnailGenerationFailed = errors.New("failed to generate thumbnails")
)

// FileFinder 按 ID 与所有者查找文件记录.
type FileFinder interface {
	FindOwned(ctx context.Context, id, ownerID string) (*model.File, error)
}

// Options worker 选项.
type Options struct {
	// Concurrency 同时处理的任务数，<=0 时为 1
	Concurrency int
	// Failures 失败报告的发布者，为 nil 时只记录日志
	Failures message.Publisher
}

// Worker 缩略图 worker.
type Worker struct {
	files      FileFinder
	blobs      blob.Store
	subscriber message.Subscriber
	failures   message.Publisher
	sem        *semaphore.Weighted
	size       int64
	tracer     trace.Tracer
	log        zerolog.Logger
}

// New 创建 worker.
func New(files FileFinder, blobs blob.Store, sub message.Subscriber, opts Options) *Worker {
	size := int64(opts.Concurrency)
	if size <= 0 {
		size = 1
	}

	return &Worker{
		files:      files,
		blobs:      blobs,
		subscriber: sub,
		failures:   opts.Failures,
		sem:        semaphore.NewWeighted(size),
		size:       size,
		tracer:     tracing.GetTracer("filevault/worker"),
		log:        nlog.Component("worker"),
	}
}

// Run 订阅任务主题并处理，直到 ctx 取消；返回前等待进行中的任务完成.
func (w *Worker) Run(ctx context.Context) error {
	messages, err := w.subscriber.Subscribe(ctx, queue.TopicThumbnailRequested)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", queue.TopicThumbnailRequested, err)
	}

	w.log.Info().
		Str("topic", queue.TopicThumbnailRequested).
		Int64("concurrency", w.size).
		Msg("thumbnail worker started")

	defer w.wait()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("thumbnail worker stopping")

			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}

			if err := w.sem.Acquire(ctx, 1); err != nil {
				msg.Nack()

				return nil
			}

			go func() {
				defer w.sem.Release(1)

				w.handle(msg)
			}()
		}
	}
}

// wait 占满信号量，即等待全部任务结束.
func (w *Worker) wait() {
	_ = w.sem.Acquire(context.Background(), w.size)
	w.sem.Release(w.size)
}

// handle 处理一条消息，结束时总是 Ack.
func (w *Worker) handle(msg *message.Message) {
	defer msg.Ack()

	start := time.Now()
	ctx := context.WithoutCancel(msg.Context())

	env, err := queue.ParseThumbnailRequested(msg)
	if err != nil {
		w.observe(start, err)
		w.report(ctx, queue.ThumbnailFailed{
			Reason: queue.ReasonDecodeFailed,
			Error:  err.Error(),
		}, "")

		return
	}

	job := env.Payload

	ctx, span := w.tracer.Start(ctx, "worker.thumbnail",
		trace.WithAttributes(
			attribute.String("file.id", job.FileID),
			attribute.String("owner.id", job.OwnerID),
		))
	defer span.End()

	err = w.Process(ctx, job)
	w.observe(start, err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		w.report(ctx, queue.ThumbnailFailed{
			OwnerID: job.OwnerID,
			FileID:  job.FileID,
			Reason:  reasonOf(err),
			Error:   err.Error(),
		}, env.Header.TraceID)

		return
	}

	nlog.Ctx(ctx).Debug().
		Str("file_id", job.FileID).
		Dur("took", time.Since(start)).
		Msg("thumbnails generated")
}

func (w *Worker) observe(start time.Time, err error) {
	result := metrics.ResultOK
	if err != nil {
		result = metrics.ResultFailed
	}

	metrics.ThumbnailJobs.WithLabelValues(result).Inc()
	metrics.ThumbnailDuration.Observe(time.Since(start).Seconds())
}

func (w *Worker) report(ctx context.Context, r queue.ThumbnailFailed, traceID string) {
	nlog.Ctx(ctx).Warn().
		Str("file_id", r.FileID).
		Str("owner_id", r.OwnerID).
		Str("reason", r.Reason).
		Str("error", r.Error).
		Msg("thumbnail job failed")

	if w.failures == nil {
		return
	}

	opts := []func(*queue.EventHeader){queue.WithProducer(Producer)}
	if traceID != "" {
		opts = append(opts, queue.WithTraceID(traceID))
	}

	if err := queue.PublishThumbnailFailed(w.failures, r, opts...); err != nil {
		w.log.Error().Err(err).Str("file_id", r.FileID).Msg("publish failure report")
	}
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, ErrMissingField):
		return queue.ReasonMissingField
	case errors.Is(err, ErrFileNotFound):
		return queue.ReasonFileNotFound
	default:
		return queue.ReasonGenerationFailed
	}
}

// Process 为单个任务生成全部宽度的缩略图.
// 同一来源重复执行得到字节相同的结果，已存在的缩略图会被覆盖.
func (w *Worker) Process(ctx context.Context, job queue.ThumbnailJob) error {
	if job.FileID == "" {
		return fmt.Errorf("%w: fileId", ErrMissingField)
	}

	if job.OwnerID == "" {
		return fmt.Errorf("%w: ownerId", ErrMissingField)
	}

	f, err := w.files.FindOwned(ctx, job.FileID, job.OwnerID)
	if errors.Is(err, model.ErrRecordNotFound) {
		return ErrFileNotFound
	}

	if err != nil {
		return fmt.Errorf("%w: load file: %w", ErrThumbnailGenerationFailed, err)
	}

	if f.LocalPath == "" {
		return fmt.Errorf("%w: %s has no content", ErrThumbnailGenerationFailed, f.Type)
	}

	src, err := w.blobs.Get(ctx, f.LocalPath)
	if err != nil {
		return fmt.Errorf("%w: read source: %w", ErrThumbnailGenerationFailed, err)
	}

	img, format, err := decodeSource(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrThumbnailGenerationFailed, err)
	}

	// 逐个宽度生成并写入，失败时保留已写入的尺寸
	for _, width := range model.ThumbnailWidths {
		thumb, err := resize(img, format, width)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrThumbnailGenerationFailed, err)
		}

		if err := w.blobs.Put(ctx, blob.DerivedKey(f.LocalPath, width), thumb); err != nil {
			return fmt.Errorf("%w: write %d: %w", ErrThumbnailGenerationFailed, width, err)
		}
	}

	return nil
}

// Generate 把图片按给定宽度等比缩放，输出与来源相同的格式（无法识别时为 PNG）.
func Generate(src []byte, widths []int) (map[int][]byte, error) {
	img, format, err := decodeSource(src)
	if err != nil {
		return nil, err
	}

	out := make(map[int][]byte, len(widths))

	for _, width := range widths {
		thumb, err := resize(img, format, width)
		if err != nil {
			return nil, err
		}

		out[width] = thumb
	}

	return out, nil
}

// encodeImage 替换后可模拟编码失败.
var encodeImage = imaging.Encode

func decodeSource(src []byte) (image.Image, imaging.Format, error) {
	img, name, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, imaging.PNG, fmt.Errorf("decode image: %w", err)
	}

	return img, outputFormat(name), nil
}

func resize(img image.Image, format imaging.Format, width int) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeImage(&buf, imaging.Resize(img, width, 0, imaging.Lanczos), format); err != nil {
		return nil, fmt.Errorf("encode %d: %w", width, err)
	}

	return buf.Bytes(), nil
}

func outputFormat(name string) imaging.Format {
	switch name {
	case "jpeg":
		return imaging.JPEG
	case "gif":
		return imaging.GIF
	default:
		return imaging.PNG
	}
}

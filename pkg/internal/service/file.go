// Package service 实现文件记录的上传、查询、可见性切换与内容读取.
package service

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/filevault/pkg/internal/storage"
	"github.com/yeisme/filevault/pkg/internal/storage/blob"
	nlog "github.com/yeisme/filevault/pkg/log"
	"github.com/yeisme/filevault/pkg/tracing"
)

// PageSize 列表固定分页大小.
const PageSize = 20

// Producer 发布消息时写入的生产者标识.
const Producer = "filevault"

// FileService 文件记录服务.
type FileService struct {
	files     storage.FileStore
	blobs     blob.Store
	publisher message.Publisher
	tracer    trace.Tracer
}

// NewFileService 创建服务；publisher 为 nil 时图片上传不投递缩略图任务.
func NewFileService(files storage.FileStore, blobs blob.Store, publisher message.Publisher) *FileService {
	return &FileService{
		files:     files,
		blobs:     blobs,
		publisher: publisher,
		tracer:    tracing.GetTracer("filevault/service"),
	}
}

func (fs *FileService) logger(ctx context.Context) *zerolog.Logger {
	l := nlog.Ctx(ctx).With().Str("component", "service").Logger()

	return &l
}

package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/blob"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/queue"
)

// Upload 校验请求、写入 blob、插入记录，图片记录插入成功后投递缩略图任务.
// 校验按 name、type、data、parentId 的顺序进行，失败时不产生任何副作用.
func (fs *FileService) Upload(ctx context.Context, ownerID string, req *types.UploadFileRequest) (*model.File, error) {
	ctx, span := fs.tracer.Start(ctx, "FileService.Upload",
		trace.WithAttributes(attribute.String("file.type", req.Type)))
	defer span.End()

	content, err := fs.validateUpload(ctx, req)
	if err != nil {
		if KindOf(err) == KindInternal {
			span.SetStatus(codes.Error, err.Error())
		}

		return nil, err
	}

	f := &model.File{
		OwnerID:  ownerID,
		Name:     req.Name,
		Type:     model.FileType(req.Type),
		IsPublic: req.IsPublic,
		ParentID: req.ParentID,
	}

	if f.Type.HasContent() {
		key := blob.NewKey()
		if err := fs.blobs.Put(ctx, key, content); err != nil {
			span.SetStatus(codes.Error, err.Error())
			fs.logger(ctx).Error().Err(err).Str("key", key).Msg("write blob failed")

			return nil, Internal("write blob", err)
		}

		f.LocalPath = key
	}

	if err := fs.files.Create(ctx, f); err != nil {
		span.SetStatus(codes.Error, err.Error())
		// 已写入的 blob 成为孤儿，不做回收
		fs.logger(ctx).Error().Err(err).Str("key", f.LocalPath).Msg("insert file record failed")

		return nil, Internal("insert file record", err)
	}

	span.SetAttributes(attribute.String("file.id", f.ID))

	if f.Type == model.TypeImage {
		fs.enqueueThumbnail(ctx, f)
	}

	return f, nil
}

// validateUpload 返回解码后的内容（folder 为 nil）.
func (fs *FileService) validateUpload(ctx context.Context, req *types.UploadFileRequest) ([]byte, error) {
	if req.Name == "" {
		return nil, MissingField("name", MsgMissingName)
	}

	t := model.FileType(req.Type)
	if !t.Valid() {
		return nil, InvalidField("type", MsgMissingType)
	}

	if t.HasContent() && req.Data == "" {
		return nil, MissingField("data", MsgMissingData)
	}

	if !req.ParentID.IsRoot() {
		parent, err := fs.files.Get(ctx, req.ParentID.ID())
		if errors.Is(err, model.ErrRecordNotFound) {
			return nil, InvalidReference("parentId", MsgParentNotFound)
		}

		if err != nil {
			return nil, Internal("load parent", err)
		}

		if !parent.IsFolder() {
			return nil, InvalidReference("parentId", MsgParentNotFolder)
		}
	}

	if !t.HasContent() {
		return nil, nil
	}

	content, err := decodeBase64(req.Data)
	if err != nil {
		return nil, InvalidField("data", MsgInvalidData)
	}

	return content, nil
}

// decodeBase64 接受标准与无填充两种写法.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)

	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}

	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

// enqueueThumbnail 投递失败只记录日志，由 thumbnail.backfill 定时任务补偿.
func (fs *FileService) enqueueThumbnail(ctx context.Context, f *model.File) {
	if fs.publisher == nil {
		return
	}

	opts := []func(*queue.EventHeader){queue.WithProducer(Producer)}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		opts = append(opts, queue.WithTraceID(sc.TraceID().String()))
	}

	job := queue.ThumbnailJob{OwnerID: f.OwnerID, FileID: f.ID}
	if err := queue.PublishThumbnailRequested(fs.publisher, job, opts...); err != nil {
		fs.logger(ctx).Warn().Err(err).Str("file_id", f.ID).Msg("enqueue thumbnail job failed")
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/blob"
	"github.com/yeisme/filevault/pkg/internal/types"
	"github.com/yeisme/filevault/pkg/rule"
)

// DefaultContentType 无法推断时的内容类型.
const DefaultContentType = "application/octet-stream"

// ParseSize 解析缩略图尺寸参数；空字符串表示原图.
func ParseSize(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	size, err := strconv.Atoi(s)
	if err != nil {
		return 0, BadRequest(MsgInvalidSize)
	}

	if err := rule.ValidateVar(size, "oneof=500 250 100"); err != nil || !model.IsThumbnailWidth(size) {
		return 0, BadRequest(MsgInvalidSize)
	}

	return size, nil
}

// GetContent 读取记录内容；callerID 为空表示匿名调用. 私有记录只对所有者可见，
// size>0 时读取对应宽度的缩略图.
func (fs *FileService) GetContent(ctx context.Context, callerID, fileID string, size int) (*types.FileContent, error) {
	ctx, span := fs.tracer.Start(ctx, "FileService.GetContent", trace.WithAttributes(
		attribute.String("file.id", fileID),
		attribute.Int("size", size),
	))
	defer span.End()

	f, err := fs.files.Get(ctx, fileID)
	if err != nil {
		return nil, fs.lookupErr(ctx, "get file", err)
	}

	if !f.IsPublic && (callerID == "" || callerID != f.OwnerID) {
		return nil, NotFound()
	}

	if f.IsFolder() {
		return nil, BadRequest(MsgFolderHasNoContent)
	}

	if size != 0 && !model.IsThumbnailWidth(size) {
		return nil, BadRequest(MsgInvalidSize)
	}

	key := f.LocalPath
	if size > 0 {
		key = blob.DerivedKey(key, size)
	}

	data, err := fs.blobs.Get(ctx, key)
	if errors.Is(err, blob.ErrNotFound) {
		// 元数据与 blob 不一致按不存在处理
		fs.logger(ctx).Warn().Str("file_id", f.ID).Str("key", key).Msg("blob missing")

		return nil, NotFound()
	}

	if err != nil {
		fs.logger(ctx).Error().Err(err).Str("key", key).Msg("read blob failed")

		return nil, Internal("read blob", err)
	}

	return &types.FileContent{
		Name:        f.Name,
		ContentType: ContentType(f.Name, data),
		ETag:        fmt.Sprintf(`"%x"`, xxhash.Sum64(data)),
		Data:        data,
	}, nil
}

// ContentType 优先按扩展名推断，其次嗅探内容.
func ContentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}

	if len(data) == 0 {
		return DefaultContentType
	}

	return mimetype.Detect(data).String()
}

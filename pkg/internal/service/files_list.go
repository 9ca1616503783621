package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// Get 返回调用者拥有的记录.
func (fs *FileService) Get(ctx context.Context, ownerID, fileID string) (*model.File, error) {
	ctx, span := fs.tracer.Start(ctx, "FileService.Get", trace.WithAttributes(attribute.String("file.id", fileID)))
	defer span.End()

	f, err := fs.files.FindOwned(ctx, fileID, ownerID)
	if err != nil {
		return nil, fs.lookupErr(ctx, "get file", err)
	}

	return f, nil
}

// maxPage page*PageSize 不溢出的最大页码.
const maxPage = (math.MaxInt - PageSize) / PageSize

// List 返回调用者在 parent 下的第 page 页记录（每页 PageSize 条），超出范围时返回空切片.
func (fs *FileService) List(ctx context.Context, ownerID string, parent model.ParentID, page int) ([]model.File, error) {
	if page < 0 {
		page = 0
	}

	ctx, span := fs.tracer.Start(ctx, "FileService.List", trace.WithAttributes(
		attribute.String("file.parent_id", parent.String()),
		attribute.Int("page", page),
	))
	defer span.End()

	// offset 会溢出的页码必然超出范围
	if page > maxPage {
		return []model.File{}, nil
	}

	files, err := fs.files.List(ctx, ownerID, parent, page*PageSize, PageSize)
	if err != nil {
		fs.logger(ctx).Error().Err(err).Msg("list files failed")

		return nil, Internal("list files", err)
	}

	if files == nil {
		files = []model.File{}
	}

	return files, nil
}

// ParsePage 解析页码，负数与非数字一律为 0.
func ParsePage(s string) int {
	page, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || page < 0 {
		return 0
	}

	return page
}

// lookupErr 记录不存在映射为 NotFound，其余为 Internal.
func (fs *FileService) lookupErr(ctx context.Context, op string, err error) error {
	if errors.Is(err, model.ErrRecordNotFound) {
		return NotFound()
	}

	fs.logger(ctx).Error().Err(err).Msg(op + " failed")

	return Internal(op, err)
}

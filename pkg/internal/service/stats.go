package service

import (
	"context"

	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/types"
)

// Stats 统计调用者各类型记录数.
func (fs *FileService) Stats(ctx context.Context, ownerID string) (*types.FilesStats, error) {
	ctx, span := fs.tracer.Start(ctx, "FileService.Stats")
	defer span.End()

	counts, err := fs.files.CountByType(ctx, ownerID)
	if err != nil {
		fs.logger(ctx).Error().Err(err).Msg("count files failed")

		return nil, Internal("count files", err)
	}

	s := &types.FilesStats{
		Folders: counts[model.TypeFolder],
		Files:   counts[model.TypeFile],
		Images:  counts[model.TypeImage],
	}
	s.Total = s.Folders + s.Files + s.Images

	return s, nil
}

package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// Publish 将记录设为公开，重复调用结果相同.
func (fs *FileService) Publish(ctx context.Context, ownerID, fileID string) (*model.File, error) {
	return fs.setPublic(ctx, ownerID, fileID, true)
}

// Unpublish 将记录设为私有.
func (fs *FileService) Unpublish(ctx context.Context, ownerID, fileID string) (*model.File, error) {
	return fs.setPublic(ctx, ownerID, fileID, false)
}

func (fs *FileService) setPublic(ctx context.Context, ownerID, fileID string, public bool) (*model.File, error) {
	ctx, span := fs.tracer.Start(ctx, "FileService.SetPublic", trace.WithAttributes(
		attribute.String("file.id", fileID),
		attribute.Bool("file.public", public),
	))
	defer span.End()

	f, err := fs.files.SetPublic(ctx, fileID, ownerID, public)
	if err != nil {
		return nil, fs.lookupErr(ctx, "set visibility", err)
	}

	return f, nil
}

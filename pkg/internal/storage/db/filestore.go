package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// FileStore 使用关系型数据库保存文件记录.
type FileStore struct {
	client *Client
}

// NewFileStore 迁移 files 表并返回存储实现.
func NewFileStore(ctx context.Context, client *Client) (*FileStore, error) {
	if err := client.WithContext(ctx).AutoMigrate(&model.File{}); err != nil {
		return nil, fmt.Errorf("migrate files table: %w", err)
	}

	return &FileStore{client: client}, nil
}

func (s *FileStore) db(ctx context.Context) *gorm.DB {
	return s.client.WithContext(ctx)
}

// Create 插入记录，ID 由 BeforeCreate 分配.
func (s *FileStore) Create(ctx context.Context, f *model.File) error {
	if err := s.db(ctx).Create(f).Error; err != nil {
		return fmt.Errorf("insert file: %w", err)
	}

	return nil
}

// Get 按 ID 查询，不校验所有者.
func (s *FileStore) Get(ctx context.Context, id string) (*model.File, error) {
	var f model.File
	if err := s.db(ctx).Where("id = ?", id).Take(&f).Error; err != nil {
		return nil, mapErr(err)
	}

	return &f, nil
}

// FindOwned 按 ID 与所有者查询.
func (s *FileStore) FindOwned(ctx context.Context, id, ownerID string) (*model.File, error) {
	var f model.File
	if err := s.db(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Take(&f).Error; err != nil {
		return nil, mapErr(err)
	}

	return &f, nil
}

// List 返回某所有者在指定父级下的记录，按插入顺序分页.
func (s *FileStore) List(ctx context.Context, ownerID string, parent model.ParentID, offset, limit int) ([]model.File, error) {
	files := make([]model.File, 0, limit)

	err := s.db(ctx).
		Where("owner_id = ? AND parent_id = ?", ownerID, parent.Key()).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	return files, nil
}

// SetPublic 设置可见性并返回更新后的记录；值未变化时同样成功.
func (s *FileStore) SetPublic(ctx context.Context, id, ownerID string, public bool) (*model.File, error) {
	f, err := s.FindOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	err = s.db(ctx).Model(&model.File{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("is_public", public).Error
	if err != nil {
		return nil, fmt.Errorf("update visibility: %w", err)
	}

	f.IsPublic = public

	return f, nil
}

// CountByType 按类型统计记录数，ownerID 为空时统计全部.
func (s *FileStore) CountByType(ctx context.Context, ownerID string) (map[model.FileType]int64, error) {
	var rows []struct {
		Type  model.FileType
		Total int64
	}

	q := s.db(ctx).Model(&model.File{}).Select("type, count(*) AS total")
	if ownerID != "" {
		q = q.Where("owner_id = ?", ownerID)
	}

	if err := q.Group("type").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}

	out := make(map[model.FileType]int64, len(model.FileTypes))
	for _, t := range model.FileTypes {
		out[t] = 0
	}

	for _, r := range rows {
		out[r.Type] = r.Total
	}

	return out, nil
}

// ListByType 以 ID 游标遍历某类型的全部记录，用于后台任务.
func (s *FileStore) ListByType(ctx context.Context, t model.FileType, afterID string, limit int) ([]model.File, error) {
	files := make([]model.File, 0, limit)

	err := s.db(ctx).
		Where("type = ? AND id > ?", t, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("scan files by type: %w", err)
	}

	return files, nil
}

// Ping 检查数据库连通性.
func (s *FileStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close 关闭连接.
func (s *FileStore) Close() error {
	return s.client.Close()
}

func mapErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ErrRecordNotFound
	}

	return fmt.Errorf("query file: %w", err)
}

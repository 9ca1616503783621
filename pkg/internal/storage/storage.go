// Package storage 聚合文件服务依赖的全部存储资源：元数据、Blob、KV 与消息队列.
//
// Example:
//
//	mgr, err := storage.New(ctx, configs.GetConfig(), storage.Options{})
//	if err != nil {
//	    // 处理错误
//	}
//	defer mgr.Close()
//
//	svc := service.NewFileService(mgr.Files, mgr.Blobs, mgr.MQ.Publisher())
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/model"
	"github.com/yeisme/filevault/pkg/internal/storage/blob"
	dbc "github.com/yeisme/filevault/pkg/internal/storage/db"
	"github.com/yeisme/filevault/pkg/internal/storage/docdb"
	kvc "github.com/yeisme/filevault/pkg/internal/storage/kv"
	mqc "github.com/yeisme/filevault/pkg/internal/storage/mq"
	nlog "github.com/yeisme/filevault/pkg/log"
)

// FileStore 文件记录存储.
type FileStore interface {
	// Create 插入记录并回填 ID.
	Create(ctx context.Context, f *model.File) error
	// Get 按 ID 查询，不存在返回 model.ErrRecordNotFound.
	Get(ctx context.Context, id string) (*model.File, error)
	// FindOwned 按 ID 与所有者查询.
	FindOwned(ctx context.Context, id, ownerID string) (*model.File, error)
	// List 按插入顺序分页列出某所有者在 parent 下的记录.
	List(ctx context.Context, ownerID string, parent model.ParentID, offset, limit int) ([]model.File, error)
	// SetPublic 设置可见性并返回更新后的记录.
	SetPublic(ctx context.Context, id, ownerID string, public bool) (*model.File, error)
	// CountByType 按类型统计，ownerID 为空时统计全部.
	CountByType(ctx context.Context, ownerID string) (map[model.FileType]int64, error)
	// ListByType 以 ID 游标遍历某类型记录.
	ListByType(ctx context.Context, t model.FileType, afterID string, limit int) ([]model.File, error)
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ FileStore = (*dbc.FileStore)(nil)
	_ FileStore = (*docdb.FileStore)(nil)
)

// 健康检查组件名.
const (
	ComponentDB   = "db"
	ComponentKV   = "kv"
	ComponentMQ   = "mq"
	ComponentBlob = "blob"
)

// Components 全部可检查的组件.
var Components = []string{ComponentDB, ComponentKV, ComponentMQ, ComponentBlob}

// ErrUnknownComponent 未知的健康检查组件.
var ErrUnknownComponent = errors.New("unknown storage component")

// Manager 聚合所有存储资源.
type Manager struct {
	Files FileStore
	Blobs blob.Store
	KV    kvc.KVStore
	MQ    *mqc.Client
}

// Options 构建选项.
type Options struct {
	// Registerer 非空时为 MQ 与 GORM 注册指标
	Registerer prometheus.Registerer
	// Debug 打印 SQL
	Debug bool
}

// New 按配置依次连接元数据库、Blob、KV 与 MQ；任一步失败时关闭已打开的资源.
func New(ctx context.Context, cfg *configs.AppConfig, opts Options) (*Manager, error) {
	m := &Manager{}

	if err := m.open(ctx, cfg, opts); err != nil {
		_ = m.Close()

		return nil, err
	}

	nlog.Logger().Info().
		Str("db", string(cfg.DB.Type)).
		Str("blob", string(cfg.Blob.Type)).
		Str("kv", string(cfg.KV.Type)).
		Str("mq", string(cfg.MQ.Type)).
		Msg("storage manager initialized")

	return m, nil
}

func (m *Manager) open(ctx context.Context, cfg *configs.AppConfig, opts Options) error {
	var err error

	if m.Files, err = openFileStore(ctx, &cfg.DB, opts); err != nil {
		return err
	}

	if m.Blobs, err = blob.New(ctx, &cfg.Blob); err != nil {
		return fmt.Errorf("init blob store: %w", err)
	}

	if m.KV, err = kvc.New(ctx, &cfg.KV); err != nil {
		return fmt.Errorf("init kv store: %w", err)
	}

	m.MQ, err = mqc.New(ctx, &cfg.MQ, mqc.Options{Registerer: opts.Registerer})

	return err
}

func openFileStore(ctx context.Context, cfg *configs.DBConfig, opts Options) (FileStore, error) {
	if cfg.IsDocument() {
		store, err := docdb.New(ctx, cfg)
		if err != nil {
			return nil, err
		}

		return store, nil
	}

	client, err := dbc.New(ctx, cfg, dbc.Options{Metrics: opts.Registerer != nil, Debug: opts.Debug})
	if err != nil {
		return nil, err
	}

	store, err := dbc.NewFileStore(ctx, client)
	if err != nil {
		_ = client.Close()

		return nil, err
	}

	return store, nil
}

// Check 检查单个组件的连通性.
func (m *Manager) Check(ctx context.Context, component string) error {
	switch component {
	case ComponentDB:
		if m.Files == nil {
			return errors.New("file store not initialized")
		}

		return m.Files.Ping(ctx)
	case ComponentKV:
		if m.KV == nil {
			return errors.New("kv store not initialized")
		}

		return m.KV.Ping(ctx)
	case ComponentMQ:
		return m.MQ.Ping(ctx)
	case ComponentBlob:
		if m.Blobs == nil {
			return errors.New("blob store not initialized")
		}

		return m.Blobs.Ping(ctx)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownComponent, component)
	}
}

// Close 按与打开相反的顺序释放资源.
func (m *Manager) Close() error {
	var errs []error

	if m.MQ != nil {
		errs = append(errs, m.MQ.Close())
	}

	if m.KV != nil {
		errs = append(errs, m.KV.Close())
	}

	if m.Files != nil {
		errs = append(errs, m.Files.Close())
	}

	return errors.Join(errs...)
}

// Package docdb 基于 MongoDB 的文件记录存储，文档结构与早期 files_manager 部署兼容：
// 根目录的 parentId 存为数字 0，其余为父记录的 ObjectID.
package docdb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/yeisme/filevault/pkg/configs"
	"github.com/yeisme/filevault/pkg/internal/model"
	nlog "github.com/yeisme/filevault/pkg/log"
)

const filesCollection = "files"

// FileStore 使用 MongoDB files 集合保存文件记录.
type FileStore struct {
	client *mongo.Client
	files  *mongo.Collection
}

// New 连接 MongoDB 并确保索引存在.
func New(ctx context.Context, cfg *configs.DBConfig) (*FileStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.GetDSN()))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)

		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	s := &FileStore{
		client: client,
		files:  client.Database(cfg.Database).Collection(filesCollection),
	}

	_, err = s.files.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "parentId", Value: 1}}},
		{Keys: bson.D{{Key: "type", Value: 1}}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)

		return nil, fmt.Errorf("create indexes: %w", err)
	}

	nlog.Logger().Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("MongoDB 连接成功")

	return s, nil
}

// fileDoc files 集合中的文档.
type fileDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"userId"`
	Name      string             `bson:"name"`
	Type      string             `bson:"type"`
	IsPublic  bool               `bson:"isPublic"`
	ParentID  any                `bson:"parentId"`
	LocalPath string             `bson:"localPath,omitempty"`
}

func toDoc(f *model.File) (fileDoc, error) {
	parent, ok := parentValue(f.ParentID)
	if !ok {
		return fileDoc{}, fmt.Errorf("invalid parent id %q", f.ParentID.ID())
	}

	return fileDoc{
		UserID:    f.OwnerID,
		Name:      f.Name,
		Type:      string(f.Type),
		IsPublic:  f.IsPublic,
		ParentID:  parent,
		LocalPath: f.LocalPath,
	}, nil
}

func fromDoc(d *fileDoc) *model.File {
	f := &model.File{
		ID:        d.ID.Hex(),
		OwnerID:   d.UserID,
		Name:      d.Name,
		Type:      model.FileType(d.Type),
		IsPublic:  d.IsPublic,
		LocalPath: d.LocalPath,
	}

	switch p := d.ParentID.(type) {
	case primitive.ObjectID:
		f.ParentID = model.Ref(p.Hex())
	case string:
		f.ParentID = model.Ref(p)
	default:
		f.ParentID = model.Root()
	}

	return f
}

// parentValue 把父级引用转换为存储值；非法 ObjectID 返回 false.
func parentValue(p model.ParentID) (any, bool) {
	if p.IsRoot() {
		return int32(0), true
	}

	oid, err := primitive.ObjectIDFromHex(p.ID())
	if err != nil {
		return nil, false
	}

	return oid, true
}

// Create 插入记录并回填 ID.
func (s *FileStore) Create(ctx context.Context, f *model.File) error {
	doc, err := toDoc(f)
	if err != nil {
		return err
	}

	res, err := s.files.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	f.ID = oid.Hex()

	return nil
}

// Get 按 ID 查询.
func (s *FileStore) Get(ctx context.Context, id string) (*model.File, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.ErrRecordNotFound
	}

	return s.findOne(ctx, bson.M{"_id": oid})
}

// FindOwned 按 ID 与所有者查询.
func (s *FileStore) FindOwned(ctx context.Context, id, ownerID string) (*model.File, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.ErrRecordNotFound
	}

	return s.findOne(ctx, bson.M{"_id": oid, "userId": ownerID})
}

func (s *FileStore) findOne(ctx context.Context, filter bson.M) (*model.File, error) {
	var doc fileDoc
	if err := s.files.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrRecordNotFound
		}

		return nil, fmt.Errorf("find file: %w", err)
	}

	return fromDoc(&doc), nil
}

// List 按 _id 升序（即插入顺序）分页.
func (s *FileStore) List(ctx context.Context, ownerID string, parent model.ParentID, offset, limit int) ([]model.File, error) {
	pv, ok := parentValue(parent)
	if !ok {
		return []model.File{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	return s.find(ctx, bson.M{"userId": ownerID, "parentId": pv}, opts)
}

func (s *FileStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.File, error) {
	cur, err := s.files.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find files: %w", err)
	}
	defer cur.Close(ctx)

	files := make([]model.File, 0)

	for cur.Next(ctx) {
		var doc fileDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode file: %w", err)
		}

		files = append(files, *fromDoc(&doc))
	}

	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}

	return files, nil
}

// SetPublic 原子地设置可见性并返回更新后的文档.
func (s *FileStore) SetPublic(ctx context.Context, id, ownerID string, public bool) (*model.File, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, model.ErrRecordNotFound
	}

	var doc fileDoc

	err = s.files.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "userId": ownerID},
		bson.M{"$set": bson.M{"isPublic": public}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrRecordNotFound
		}

		return nil, fmt.Errorf("update visibility: %w", err)
	}

	return fromDoc(&doc), nil
}

// CountByType 按类型统计，ownerID 为空时统计全部.
func (s *FileStore) CountByType(ctx context.Context, ownerID string) (map[model.FileType]int64, error) {
	match := bson.M{}
	if ownerID != "" {
		match["userId"] = ownerID
	}

	cur, err := s.files.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$type", "total": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("count files: %w", err)
	}
	defer cur.Close(ctx)

	out := make(map[model.FileType]int64, len(model.FileTypes))
	for _, t := range model.FileTypes {
		out[t] = 0
	}

	for cur.Next(ctx) {
		var row struct {
			Type  string `bson:"_id"`
			Total int64  `bson:"total"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode count: %w", err)
		}

		out[model.FileType(row.Type)] = row.Total
	}

	return out, cur.Err()
}

// ListByType 以 _id 游标遍历某类型的记录.
func (s *FileStore) ListByType(ctx context.Context, t model.FileType, afterID string, limit int) ([]model.File, error) {
	filter := bson.M{"type": string(t)}

	if afterID != "" {
		oid, err := primitive.ObjectIDFromHex(afterID)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor %q: %w", afterID, err)
		}

		filter["_id"] = bson.M{"$gt": oid}
	}

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetLimit(int64(limit))

	return s.find(ctx, filter, opts)
}

// Ping 检查连通性.
func (s *FileStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close 断开连接.
func (s *FileStore) Close() error {
	return s.client.Disconnect(context.Background())
}

// Package model 定义文件记录及其父级引用等领域模型.
package model

import (
	crand "crypto/rand"
	"errors"
	"sync"
	"time"

	"github.com/oklog/ulid"
	"gorm.io/gorm"
)

// FileType 文件记录类型.
type FileType string

const (
	TypeFolder FileType = "folder"
	TypeFile   FileType = "file"
	TypeImage  FileType = "image"
)

// Valid 判断类型是否为 folder/file/image 之一.
func (t FileType) Valid() bool {
	switch t {
	case TypeFolder, TypeFile, TypeImage:
		return true
	default:
		return false
	}
}

// HasContent 非 folder 类型的记录都拥有 blob 内容.
func (t FileType) HasContent() bool {
	return t == TypeFile || t == TypeImage
}

// FileTypes 全部合法类型，按固定顺序.
var FileTypes = []FileType{TypeFolder, TypeFile, TypeImage}

// ThumbnailWidths 图片缩略图宽度，按生成顺序.
var ThumbnailWidths = []int{500, 250, 100}

// IsThumbnailWidth 判断是否为支持的缩略图宽度.
func IsThumbnailWidth(w int) bool {
	for _, v := range ThumbnailWidths {
		if v == w {
			return true
		}
	}

	return false
}

// ErrRecordNotFound 元数据存储中不存在对应记录.
var ErrRecordNotFound = errors.New("record not found")

// File 文件记录. ID 由存储层在创建时分配，之后除 IsPublic 外所有字段不可变.
type File struct {
	ID       string   `gorm:"primaryKey;size:64"                json:"id"`
	OwnerID  string   `gorm:"size:64;index:idx_owner_parent"    json:"userId"`
	Name     string   `gorm:"size:512"                          json:"name"`
	Type     FileType `gorm:"size:16;index"                     json:"type"`
	IsPublic bool     `gorm:"not null;default:false"            json:"isPublic"`
	ParentID ParentID `gorm:"type:varchar(64);index:idx_owner_parent" json:"parentId"`
	// LocalPath blob 存储中的键，folder 为空
	LocalPath string `gorm:"size:255" json:"-"`
}

// TableName 固定表名.
func (File) TableName() string {
	return "files"
}

// BeforeCreate 未指定 ID 时分配单调递增的 ULID，按 ID 排序即为插入顺序.
func (f *File) BeforeCreate(_ *gorm.DB) error {
	if f.ID == "" {
		f.ID = NewID()
	}

	return nil
}

// IsFolder 是否为目录.
func (f *File) IsFolder() bool {
	return f.Type == TypeFolder
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(crand.Reader, 0)
)

// NewID 生成一个新的记录 ID.
func NewID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

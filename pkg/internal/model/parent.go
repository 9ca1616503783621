package model

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
)

// ParentID 父级引用：要么是根（无父级），要么引用某个 folder 记录的 ID.
// 零值即为根.
type ParentID struct {
	id string
}

// Root 返回根引用.
func Root() ParentID {
	return ParentID{}
}

// Ref 返回指向 id 的引用，空串或 "0" 视为根.
func Ref(id string) ParentID {
	if id == "0" {
		return ParentID{}
	}

	return ParentID{id: id}
}

// IsRoot 是否为根.
func (p ParentID) IsRoot() bool {
	return p.id == ""
}

// ID 返回被引用记录的 ID，根返回空串.
func (p ParentID) ID() string {
	return p.id
}

// Key 存储层使用的比较值，根为空串.
func (p ParentID) Key() string {
	return p.id
}

func (p ParentID) String() string {
	if p.IsRoot() {
		return "0"
	}

	return p.id
}

// ParseParentID 解析查询参数形式的父级，"", "0" 为根.
func ParseParentID(s string) ParentID {
	return Ref(s)
}

// MarshalJSON 根编码为数字 0，其余编码为字符串 ID.
func (p ParentID) MarshalJSON() ([]byte, error) {
	if p.IsRoot() {
		return []byte("0"), nil
	}

	return sonic.Marshal(p.id)
}

// UnmarshalJSON 接受 0、"0"、""、null 作为根；其它字符串或数字作为引用.
func (p *ParentID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*p = Root()

		return nil
	}

	if data[0] == '"' {
		var s string
		if err := sonic.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("parentId: %w", err)
		}

		*p = Ref(s)

		return nil
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("parentId: unsupported value %s", data)
	}

	if n == 0 {
		*p = Root()
	} else {
		*p = Ref(strconv.FormatInt(n, 10))
	}

	return nil
}

// Value 实现 driver.Valuer.
func (p ParentID) Value() (driver.Value, error) {
	return p.id, nil
}

// Scan 实现 sql.Scanner.
func (p *ParentID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = Root()
	case string:
		*p = Ref(v)
	case []byte:
		*p = Ref(string(v))
	default:
		return fmt.Errorf("parentId: cannot scan %T", src)
	}

	return nil
}

// Package types 定义 HTTP 接口的请求与响应结构.
package types

import (
	"bytes"
	"encoding/json"

	"github.com/bytedance/sonic"

	"github.com/yeisme/filevault/pkg/internal/model"
)

// UploadFileRequest 上传请求；type 保留为字符串，非法取值由服务层给出统一的校验错误.
type UploadFileRequest struct {
	Name     string         `json:"name"     example:"photo.png"`
	Type     string         `json:"type"     example:"image"     enums:"folder,file,image"`
	ParentID model.ParentID `json:"parentId" swaggertype:"string" example:"0"`
	IsPublic bool           `json:"isPublic"`
	// Data base64 编码的内容，folder 不需要
	Data string `json:"data,omitempty"`
}

// uploadWire 逐字段保留原始 JSON，字段类型不符时交给服务层按校验顺序报错.
type uploadWire struct {
	Name     json.RawMessage `json:"name"`
	Type     json.RawMessage `json:"type"`
	ParentID json.RawMessage `json:"parentId"`
	IsPublic json.RawMessage `json:"isPublic"`
	Data     json.RawMessage `json:"data"`
}

// UnmarshalJSON 宽松解码：只有请求体不是 JSON 对象时才返回错误.
// 非字符串的 name、type、data 取其 JSON 文本，例如 "type": 5 得到 "5"；
// 无法识别的 parentId 作为引用保留，随后按父级不存在处理；isPublic 只认 true.
func (r *UploadFileRequest) UnmarshalJSON(data []byte) error {
	var w uploadWire
	if err := sonic.Unmarshal(data, &w); err != nil {
		return err
	}

	*r = UploadFileRequest{
		Name:     looseString(w.Name),
		Type:     looseString(w.Type),
		Data:     looseString(w.Data),
		IsPublic: bytes.Equal(bytes.TrimSpace(w.IsPublic), []byte("true")),
	}

	if err := r.ParentID.UnmarshalJSON(w.ParentID); err != nil {
		r.ParentID = model.Ref(string(bytes.TrimSpace(w.ParentID)))
	}

	return nil
}

// looseString 字符串取其值，null 或缺省为空串，其它取 JSON 文本.
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if raw[0] == '"' && sonic.Unmarshal(raw, &s) == nil {
		return s
	}

	return string(raw)
}

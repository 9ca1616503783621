package types

// ListFilesQuery 列表查询参数；均为字符串，非法 page 按 0 处理.
type ListFilesQuery struct {
	ParentID string `form:"parentId"`
	Page     string `form:"page"`
}

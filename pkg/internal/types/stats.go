package types

// FilesStats 当前用户按类型统计的记录数.
type FilesStats struct {
	Folders int64 `json:"folders"`
	Files   int64 `json:"files"`
	Images  int64 `json:"images"`
	Total   int64 `json:"total"`
}

package queue

// ThumbnailJob 缩略图任务；字段名沿用早期队列的 userId/fileId 语义.
type ThumbnailJob struct {
	OwnerID string `json:"ownerId"`
	FileID  string `json:"fileId"`
}

// 失败原因.
const (
	ReasonMissingField     = "missing_field"
	ReasonFileNotFound     = "file_not_found"
	ReasonGenerationFailed = "generation_failed"
	ReasonDecodeFailed     = "decode_failed"
)

// ThumbnailFailed 缩略图任务失败报告.
type ThumbnailFailed struct {
	OwnerID string `json:"ownerId,omitempty"`
	FileID  string `json:"fileId,omitempty"`
	Reason  string `json:"reason"`
	Error   string `json:"error"`
}

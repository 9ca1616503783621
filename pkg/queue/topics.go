package queue

// 主题命名：fv.<域>.<状态>.
const (
	TopicThumbnailRequested = "fv.thumbnail.requested" // 图片上传后请求生成缩略图
	TopicThumbnailFailed    = "fv.thumbnail.failed"    // 缩略图任务失败（含参数缺失、记录不存在、生成失败）
)

// ThumbnailTopics 缩略图相关主题.
var ThumbnailTopics = []string{TopicThumbnailRequested, TopicThumbnailFailed}

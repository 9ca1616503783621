package queue

import "github.com/ThreeDotsLabs/watermill/message"

// PublishThumbnailRequested 发布 fv.thumbnail.requested.
func PublishThumbnailRequested(pub message.Publisher, job ThumbnailJob, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicThumbnailRequested, job, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicThumbnailRequested, msg)
}

// ParseThumbnailRequested 解析缩略图任务.
func ParseThumbnailRequested(msg *message.Message) (Message[ThumbnailJob], error) {
	return ParseWatermillMessage[ThumbnailJob](msg)
}

// PublishThumbnailFailed 发布 fv.thumbnail.failed.
func PublishThumbnailFailed(pub message.Publisher, report ThumbnailFailed, opts ...func(*EventHeader)) error {
	msg, err := NewWatermillMessage(TopicThumbnailFailed, report, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(TopicThumbnailFailed, msg)
}

// ParseThumbnailFailed 解析失败报告.
func ParseThumbnailFailed(msg *message.Message) (Message[ThumbnailFailed], error) {
	return ParseWatermillMessage[ThumbnailFailed](msg)
}

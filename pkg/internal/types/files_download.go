package types

// FileContent 文件内容.
type FileContent struct {
	Name        string
	ContentType string
	ETag        string
	Data        []byte
}

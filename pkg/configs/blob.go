package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// BlobType Blob 存储后端类型.
type BlobType string

const (
	BlobTypeLocal BlobType = "local"
	BlobTypeS3    BlobType = "s3"

	DefaultBlobRoot = "/tmp/files_manager" // 默认本地根目录

	DefaultS3Endpoint        = "localhost:9000" // 默认S3端点
	DefaultS3AccessKeyID     = "minioadmin"     // 默认访问密钥ID
	DefaultS3SecretAccessKey = "minioadmin"     // 默认秘密访问密钥
	DefaultS3UseSSL          = false            // 默认是否使用SSL
	DefaultS3BucketName      = "filevault"      // 默认存储桶名称
	DefaultS3Region          = "us-east-1"      // 默认区域
)

// BlobConfig 文件内容与缩略图的存储配置.
type BlobConfig struct {
	Type  BlobType        `mapstructure:"type"  rule:"oneof=local s3"`
	Local LocalBlobConfig `mapstructure:"local"`
	S3    S3Config        `mapstructure:"s3"`
}

// LocalBlobConfig 本地磁盘存储.
type LocalBlobConfig struct {
	Root string `mapstructure:"root" rule:"required"`
}

// S3Config MinIO S3存储配置.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
	Region          string `mapstructure:"region"`
}

// GetEndpointURL 获取完整的端点URL.
func (c *S3Config) GetEndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

// setDefaults 设置 Blob 配置的默认值.
func (c *BlobConfig) setDefaults(v *viper.Viper) {
	v.SetDefault("blob.type", BlobTypeLocal)
	v.SetDefault("blob.local.root", DefaultBlobRoot)

	v.SetDefault("blob.s3.endpoint", DefaultS3Endpoint)
	v.SetDefault("blob.s3.access_key_id", DefaultS3AccessKeyID)
	v.SetDefault("blob.s3.secret_access_key", DefaultS3SecretAccessKey)
	v.SetDefault("blob.s3.use_ssl", DefaultS3UseSSL)
	v.SetDefault("blob.s3.bucket_name", DefaultS3BucketName)
	v.SetDefault("blob.s3.region", DefaultS3Region)
}

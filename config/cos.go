package config

// COSConfig 包含腾讯云 COS (帖子图片存储) 的配置。
// BaseURL 可选: 配置了 CDN 或自定义域名时，对象的公开访问 URL 以其为基础拼接；
// 否则使用标准存储桶 URL。
type COSConfig struct {
	SecretID   string `mapstructure:"secretId" json:"secretId" yaml:"secretId"`
	SecretKey  string `mapstructure:"secretKey" json:"secretKey" yaml:"secretKey"`
	BucketName string `mapstructure:"bucketName" json:"bucketName" yaml:"bucketName"`
	AppID      string `mapstructure:"appId" json:"appId" yaml:"appId"`
	Region     string `mapstructure:"region" json:"region" yaml:"region"`
	BaseURL    string `mapstructure:"baseUrl" json:"baseUrl" yaml:"baseUrl"`
}

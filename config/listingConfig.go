package config

import "github.com/Xushengqwer/go-common/config"

// ListingConfig 是服务的根配置结构，由 core.LoadConfig 从 YAML + 环境变量加载。
type ListingConfig struct {
	ZapConfig      config.ZapConfig     `mapstructure:"zapConfig" json:"zapConfig" yaml:"zapConfig"`
	GormLogConfig  config.GormLogConfig `mapstructure:"gormLogConfig" json:"gormLogConfig" yaml:"gormLogConfig"`
	ServerConfig   config.ServerConfig  `mapstructure:"serverConfig" json:"serverConfig" yaml:"serverConfig"`
	TracerConfig   config.TracerConfig  `mapstructure:"tracerConfig" json:"tracerConfig" yaml:"tracerConfig"`
	ListingConfig  ListingRules         `mapstructure:"listingConfig" json:"listingConfig" yaml:"listingConfig"`
	FeedConfig     FeedConfig           `mapstructure:"feedConfig" json:"feedConfig" yaml:"feedConfig"`
	ViewSyncConfig ViewSyncConfig       `mapstructure:"viewSyncConfig" json:"viewSyncConfig" yaml:"viewSyncConfig"`
	MySQLConfig    MySQLConfig          `mapstructure:"mysqlConfig" json:"mysqlConfig" yaml:"mysqlConfig"`
	RedisConfig    RedisConfig          `mapstructure:"redisConfig" json:"redisConfig" yaml:"redisConfig"`
	KafkaConfig    KafkaConfig          `mapstructure:"kafkaConfig" json:"kafkaConfig" yaml:"kafkaConfig"`
	COSConfig      COSConfig            `mapstructure:"listingImagesCosConfig" json:"listingImagesCosConfig" yaml:"listingImagesCosConfig"`
}

// ListingRules 汇总帖子业务规则相关的可配置项。
type ListingRules struct {
	// MaxListingsPerUser 是单个用户可同时持有的帖子数量上限。
	// 创建帖子前服务层会先通过 CountByUserID 校验配额，超限直接拒绝，
	// 不会发起任何远程写入。<= 0 时回退到 constant.DefaultMaxListingsPerUser。
	MaxListingsPerUser int `mapstructure:"maxListingsPerUser" json:"maxListingsPerUser" yaml:"maxListingsPerUser"`

	// DefaultPageSize 是分页接口未显式传入每页数量时的默认值。
	DefaultPageSize int `mapstructure:"defaultPageSize" json:"defaultPageSize" yaml:"defaultPageSize"`

	// CacheTTLSeconds 是帖子内存缓存条目的存活秒数。
	// <= 0 时回退到 constant.ListingCacheTTL (5 分钟)。
	CacheTTLSeconds int `mapstructure:"cacheTTLSeconds" json:"cacheTTLSeconds" yaml:"cacheTTLSeconds"`
}

// FeedConfig 汇总信息流 (无限滚动) 会话相关的可配置项。
type FeedConfig struct {
	// SessionTTLSeconds 是信息流会话在无任何操作后被清理任务回收的秒数。
	SessionTTLSeconds int `mapstructure:"sessionTTLSeconds" json:"sessionTTLSeconds" yaml:"sessionTTLSeconds"`

	// SearchDebounceMillis 是搜索关键词防抖的毫秒数。
	// 会话在该时长内收到的连续关键词更新会被合并，仅最后一次真正触发查询。
	SearchDebounceMillis int `mapstructure:"searchDebounceMillis" json:"searchDebounceMillis" yaml:"searchDebounceMillis"`
}

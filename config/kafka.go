package config

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers" json:"brokers" yaml:"brokers"`
	Topics  Topics   `mapstructure:"topics" json:"topics" yaml:"topics"`
}

type Topics struct {
	ListingCreated string `mapstructure:"listingCreated" yaml:"listingCreated"` // 帖子创建事件主题
	ListingDeleted string `mapstructure:"listingDeleted" yaml:"listingDeleted"` // 帖子删除事件主题
}

package config

// RedisConfig 包含 Redis 连接相关的配置。
// 浏览量计数、防刷 Bloom Filter 与热度榜单都依赖该实例。
type RedisConfig struct {
	Address  string `mapstructure:"address" json:"address" yaml:"address"`    // host:port
	Password string `mapstructure:"password" json:"password" yaml:"password"` // 无密码时留空
	DB       int    `mapstructure:"db" json:"db" yaml:"db"`                   // 逻辑库编号
	PoolSize int    `mapstructure:"poolSize" json:"poolSize" yaml:"poolSize"` // 连接池大小，<=0 使用客户端默认值
}

package config

import "time"

// Deletion definition deletion_service YAML structure
type Deletion struct {
	Port string `mapstructure:"port"`
	// AccountID 本機帳號 (05...), DeviceID 用來區分同帳號的其他裝置
	AccountID string `mapstructure:"account_id"`
	DeviceID  string `mapstructure:"device_id"`

	MongoSQL   DatabaseConfig  `mapstructure:"mongo"`
	PostgreSQL DatabaseConfig  `mapstructure:"pg"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Queue      QueueConfig     `mapstructure:"queue"`
	MinIO      MinIOConfig     `mapstructure:"minio"`
	Community  CommunityConfig `mapstructure:"community"`
	JWT        JWTConfig       `mapstructure:"jwt"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	// Addr 有設定時直連, 否則走 .env 的 sentinel
	Addr    string `mapstructure:"addr"`
	RedisDB int    `mapstructure:"redis_db"`
	// SwarmTTL 訊息在 swarm 的保存時間
	SwarmTTL time.Duration `mapstructure:"swarm_ttl"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// QueueConfig outbound control message transport, driver is kafka or rabbitmq
type QueueConfig struct {
	Driver        string   `mapstructure:"driver"`
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	RabbitURL     string   `mapstructure:"rabbit_url"`
	Exchange      string   `mapstructure:"exchange"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`

	// MaxConcurrency 同時送出的 unsend (對方 + 自己其他裝置) 上限
	MaxConcurrency int `mapstructure:"max_concurrency"`
}

// MinIOConfig attachment bucket
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// CommunityConfig community moderation api client
type CommunityConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	RatePerSecond  float64       `mapstructure:"rate_per_second"`
	Burst          int           `mapstructure:"burst"`
	MaxConcurrency int           `mapstructure:"max_concurrency"`
}

// JWTConfig token secret
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

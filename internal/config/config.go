package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 CONSOLE_API_BASE_URL
const EnvPrefix = "CONSOLE"

// Config 应用配置结构
type Config struct {
	API     APIConfig     `mapstructure:"api" json:"api"`
	Token   TokenConfig   `mapstructure:"token" json:"token"`
	Log     LogConfig     `mapstructure:"log" json:"log"`
	Console ConsoleConfig `mapstructure:"console" json:"console"`
	Mock    MockConfig    `mapstructure:"mock" json:"mock"`
}

// APIConfig 后端接口配置
type APIConfig struct {
	BaseURL string `mapstructure:"base_url" json:"base_url"`
	Timeout int    `mapstructure:"timeout" json:"timeout"` // 秒
}

// RequestTimeout 单次请求超时时间
func (c APIConfig) RequestTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// TokenConfig 令牌持久化配置
type TokenConfig struct {
	Store     string `mapstructure:"store" json:"store"` // file, redis 或 memory
	File      string `mapstructure:"file" json:"file"`
	RedisAddr string `mapstructure:"redis_addr" json:"redis_addr"`
	RedisDB   int    `mapstructure:"redis_db" json:"redis_db"`
	RedisKey  string `mapstructure:"redis_key" json:"redis_key"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Format string `mapstructure:"format" json:"format"` // json 或 console
	File   string `mapstructure:"file" json:"file"`
}

// ConsoleConfig 控制台配置
type ConsoleConfig struct {
	ProductName string `mapstructure:"product_name" json:"product_name"`
}

// MockConfig 开发用模拟后端配置
type MockConfig struct {
	Port          string `mapstructure:"port" json:"port"`
	JWTSecret     string `mapstructure:"jwt_secret" json:"jwt_secret"`
	JWTExpiration int    `mapstructure:"jwt_expiration" json:"jwt_expiration"` // 秒
	RateLimit     int    `mapstructure:"rate_limit" json:"rate_limit"`         // 每分钟请求数，0表示不限流
}

// Load 加载配置文件
// 参数: file 指定的配置文件，为空时在 ./config 和 . 下查找 config.yaml
// 返回值: *Config 配置对象, error 错误信息
func Load(file string) (*Config, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 设置默认值
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", 10)
	v.SetDefault("token.store", "file")
	v.SetDefault("token.file", "")
	v.SetDefault("token.redis_addr", "localhost:6379")
	v.SetDefault("token.redis_db", 0)
	v.SetDefault("token.redis_key", "drone-console:storage")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("console.product_name", "无人机配送平台")
	v.SetDefault("mock.port", "8080")
	v.SetDefault("mock.jwt_secret", "droneDeliveryPlatformSecretKey2024-droneDeliveryPlatformSecretKey2024")
	v.SetDefault("mock.jwt_expiration", 86400)
	v.SetDefault("mock.rate_limit", 0)

	// 读取环境变量
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 如果配置文件不存在，使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT配置（事件源）
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
	Topic    string // 事件主题，如 "surgemind/events/#"
}

// Config 调度服务配置
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	MQTT     MQTTConfig

	// 调度服务特定配置
	Dispatch struct {
		// 去重配置
		Dedupe struct {
			Window    time.Duration // 去重时间窗口，默认 15秒（对齐最高频事件源节奏）
			KeyPrefix string        // Redis 去重键前缀，如 "dispatch:dedupe:"
		}

		// 文案增强配置（外部文本生成，仅影响文案不影响决策）
		Enrichment struct {
			Enabled bool
			BaseURL string        // OpenRouter API 地址
			APIKey  string        // 为空时自动禁用
			Model   string        // 模型ID
			Timeout time.Duration // 单次调用超时，默认 3秒
		}

		// 任务落库重试配置
		Sink struct {
			MaxAttempts  int           // 最大尝试次数，默认 3
			InitialDelay time.Duration // 首次重试延迟，默认 500ms（指数退避）
			WriteTimeout time.Duration // 单次写入超时，默认 5秒
		}

		// 紧急事件频率监控（回看窗口内超过阈值时生成巡查任务）
		EmergencyWatch struct {
			Lookback  time.Duration // 回看窗口，默认 10分钟
			Threshold int           // 触发阈值，默认 2（严格大于）
		}
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	// 从环境变量加载（默认值）
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = getEnvInt("DB_PORT", 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "surgemind")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = 0

	cfg.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "surgemind-dispatch")
	cfg.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.MQTT.QoS = 1
	cfg.MQTT.Topic = getEnv("MQTT_EVENT_TOPIC", "surgemind/events/#")

	// 去重窗口（秒），对齐最高频事件源（IoT 每 10秒 一轮）
	cfg.Dispatch.Dedupe.Window = time.Duration(getEnvInt("DEDUPE_WINDOW_SECONDS", 15)) * time.Second
	cfg.Dispatch.Dedupe.KeyPrefix = getEnv("DEDUPE_KEY_PREFIX", "dispatch:dedupe:")

	cfg.Dispatch.Enrichment.BaseURL = getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	cfg.Dispatch.Enrichment.APIKey = getEnv("OPENROUTER_API_KEY", "")
	cfg.Dispatch.Enrichment.Model = getEnv("OPENROUTER_MODEL", "google/gemini-2.0-pro-exp-02-05:free")
	cfg.Dispatch.Enrichment.Timeout = time.Duration(getEnvInt("ENRICHMENT_TIMEOUT_SECONDS", 3)) * time.Second
	cfg.Dispatch.Enrichment.Enabled = cfg.Dispatch.Enrichment.APIKey != ""

	cfg.Dispatch.Sink.MaxAttempts = getEnvInt("SINK_MAX_ATTEMPTS", 3)
	cfg.Dispatch.Sink.InitialDelay = 500 * time.Millisecond
	cfg.Dispatch.Sink.WriteTimeout = 5 * time.Second

	cfg.Dispatch.EmergencyWatch.Lookback = 10 * time.Minute
	cfg.Dispatch.EmergencyWatch.Threshold = 2

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if cfg.Dispatch.Dedupe.Window <= 0 {
		return nil, fmt.Errorf("dedupe window must be positive, got %s", cfg.Dispatch.Dedupe.Window)
	}
	if cfg.Dispatch.Sink.MaxAttempts <= 0 {
		return nil, fmt.Errorf("sink max attempts must be positive, got %d", cfg.Dispatch.Sink.MaxAttempts)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

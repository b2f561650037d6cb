package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Commerce ServiceConfig
	Intent   ServiceConfig
	Payment  PaymentConfig
	Session  SessionConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PublicURL    string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

func (d DatabaseConfig) ConnectionString() string {
	return "host=" + d.Host +
		" port=" + strconv.Itoa(d.Port) +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" sslmode=" + d.SSLMode
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers       []string
	OrdersTopic   string
	CartTopic     string
	ConsumerGroup string
}

type ServiceConfig struct {
	BaseURL string
	Timeout time.Duration
	APIKey  string
}

// PaymentConfig holds the widget provider settings. SuccessPath and
// FailPath are appended to the server's public URL to build the redirect
// URLs handed to the widget.
type PaymentConfig struct {
	BaseURL     string
	Timeout     time.Duration
	SecretKey   string
	ClientKey   string
	SuccessPath string
	FailPath    string
}

type SessionConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT", 30)) * time.Second,
			PublicURL:    getEnvString("SERVER_PUBLIC_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:         getEnvString("DB_HOST", "localhost"),
			Port:         getEnvInt("DB_PORT", 5432),
			User:         getEnvString("DB_USER", "podo"),
			Password:     getEnvString("DB_PASSWORD", "podo"),
			Name:         getEnvString("DB_NAME", "podo_storefront"),
			SSLMode:      getEnvString("DB_SSLMODE", "disable"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  time.Duration(getEnvInt("DB_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Redis: RedisConfig{
			Host:     getEnvString("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnvString("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvInt("REDIS_TTL", 1800)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:       []string{getEnvString("KAFKA_BROKER", "localhost:9092")},
			OrdersTopic:   getEnvString("KAFKA_ORDERS_TOPIC", "storefront.orders"),
			CartTopic:     getEnvString("KAFKA_CART_TOPIC", "commerce.cart"),
			ConsumerGroup: getEnvString("KAFKA_CONSUMER_GROUP", "storefront-service"),
		},
		Commerce: ServiceConfig{
			BaseURL: getEnvString("COMMERCE_API_URL", "http://localhost:8000"),
			Timeout: time.Duration(getEnvInt("COMMERCE_API_TIMEOUT", 15)) * time.Second,
			APIKey:  getEnvString("COMMERCE_API_KEY", ""),
		},
		Intent: ServiceConfig{
			BaseURL: getEnvString("INTENT_API_URL", "http://localhost:8000"),
			Timeout: time.Duration(getEnvInt("INTENT_API_TIMEOUT", 30)) * time.Second,
			APIKey:  getEnvString("INTENT_API_KEY", ""),
		},
		Payment: PaymentConfig{
			BaseURL:     getEnvString("PAYMENT_API_URL", "https://api.tosspayments.com"),
			Timeout:     time.Duration(getEnvInt("PAYMENT_API_TIMEOUT", 30)) * time.Second,
			SecretKey:   getEnvString("PAYMENT_SECRET_KEY", ""),
			ClientKey:   getEnvString("PAYMENT_CLIENT_KEY", ""),
			SuccessPath: getEnvString("PAYMENT_SUCCESS_PATH", "/api/checkout/success"),
			FailPath:    getEnvString("PAYMENT_FAIL_PATH", "/api/checkout/fail"),
		},
		Session: SessionConfig{
			JWTSecret: getEnvString("SESSION_JWT_SECRET", "dev-secret-change-me"),
			TokenTTL:  time.Duration(getEnvInt("SESSION_TOKEN_TTL", 86400)) * time.Second,
		},
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

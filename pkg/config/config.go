package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingJWTSecret    = errors.New("JWT_SECRET must be set")
	ErrMissingPublicAPIKey = errors.New("PUBLIC_API_KEY must be set")
)

type Config struct {
	// Server
	ServerPort string
	SiteURL    string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Auth
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	PublicAPIKey    string

	// Rate limiting for unauthenticated auth endpoints
	RateLimit       int
	RateLimitWindow time.Duration

	SessionCleanupInterval time.Duration

	// AWS S3
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	AWSEndpoint        string
	S3BucketName       string
	S3UseSSL           string

	// RabbitMQ
	RabbitMQUser     string
	RabbitMQPassword string
	RabbitMQHost     string
	RabbitMQPort     string

	// Email
	SendGridAPIKey string
	MailFromName   string
	MailFromEmail  string

	// Error reporting
	RollbarToken string
	Environment  string

	// Services URLs
	AuthServiceURL         string
	ContentServiceURL      string
	NotificationServiceURL string
}

func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &Config{
		ServerPort: v.GetString("SERVER_PORT"),
		SiteURL:    strings.TrimRight(v.GetString("SITE_URL"), "/"),

		DBDriver:   v.GetString("DB_DRIVER"),
		DBHost:     v.GetString("DB_HOST"),
		DBPort:     v.GetString("DB_PORT"),
		DBUser:     v.GetString("DB_USER"),
		DBPassword: v.GetString("DB_PASSWORD"),
		DBName:     v.GetString("DB_NAME"),
		DBSSLMode:  v.GetString("DB_SSLMODE"),
		SQLitePath: v.GetString("SQLITE_PATH"),

		RedisHost:     v.GetString("REDIS_HOST"),
		RedisPort:     v.GetString("REDIS_PORT"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		JWTSecret:       v.GetString("JWT_SECRET"),
		AccessTokenTTL:  v.GetDuration("ACCESS_TOKEN_TTL"),
		RefreshTokenTTL: v.GetDuration("REFRESH_TOKEN_TTL"),
		PublicAPIKey:    v.GetString("PUBLIC_API_KEY"),

		RateLimit:       v.GetInt("RATE_LIMIT"),
		RateLimitWindow: v.GetDuration("RATE_LIMIT_WINDOW"),

		SessionCleanupInterval: v.GetDuration("SESSION_CLEANUP_INTERVAL"),

		AWSRegion:          v.GetString("AWS_REGION"),
		AWSAccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
		AWSEndpoint:        v.GetString("AWS_ENDPOINT"),
		S3BucketName:       v.GetString("S3_BUCKET_NAME"),
		S3UseSSL:           v.GetString("S3_USE_SSL"),

		RabbitMQUser:     v.GetString("RABBITMQ_USER"),
		RabbitMQPassword: v.GetString("RABBITMQ_PASSWORD"),
		RabbitMQHost:     v.GetString("RABBITMQ_HOST"),
		RabbitMQPort:     v.GetString("RABBITMQ_PORT"),

		SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
		MailFromName:   v.GetString("MAIL_FROM_NAME"),
		MailFromEmail:  v.GetString("MAIL_FROM_EMAIL"),

		RollbarToken: v.GetString("ROLLBAR_TOKEN"),
		Environment:  v.GetString("ENVIRONMENT"),

		AuthServiceURL:         v.GetString("AUTH_SERVICE_URL"),
		ContentServiceURL:      v.GetString("CONTENT_SERVICE_URL"),
		NotificationServiceURL: v.GetString("NOTIFICATION_SERVICE_URL"),
	}

	return cfg, nil
}

// Validate reports settings every service needs before it can start.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if c.PublicAPIKey == "" {
		return ErrMissingPublicAPIKey
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SITE_URL", "http://localhost:3000")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "storynest")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "storynest.db")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ACCESS_TOKEN_TTL", time.Hour)
	v.SetDefault("REFRESH_TOKEN_TTL", 30*24*time.Hour)

	v.SetDefault("RATE_LIMIT", 30)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Minute)

	v.SetDefault("SESSION_CLEANUP_INTERVAL", time.Hour)

	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET_NAME", "storynest-media")
	v.SetDefault("S3_USE_SSL", "true")

	v.SetDefault("RABBITMQ_USER", "guest")
	v.SetDefault("RABBITMQ_PASSWORD", "guest")
	v.SetDefault("RABBITMQ_HOST", "localhost")
	v.SetDefault("RABBITMQ_PORT", "5672")

	v.SetDefault("MAIL_FROM_NAME", "StoryNest")
	v.SetDefault("MAIL_FROM_EMAIL", "no-reply@storynest.local")

	v.SetDefault("ENVIRONMENT", "development")

	v.SetDefault("AUTH_SERVICE_URL", "http://localhost:8001")
	v.SetDefault("CONTENT_SERVICE_URL", "http://localhost:8002")
	v.SetDefault("NOTIFICATION_SERVICE_URL", "http://localhost:8003")
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode
}

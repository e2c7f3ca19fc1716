package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config/config.yaml"

type ServerConfig struct {
	Port            int           `yaml:"port" env:"PS_HTTP_PORT"`
	PublicURL       string        `yaml:"public_url" env:"PS_PUBLIC_URL"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	GinMode         string        `yaml:"gin_mode" env:"GIN_MODE"`
}

type DatabaseConfig struct {
	DSN            string `yaml:"url" env:"PS_DATABASE_URL"`
	MaxOpenConns   int    `yaml:"max_open_conns"`
	MigrateOnStart bool   `yaml:"migrate_on_start" env:"PS_MIGRATE_ON_START"`
}

type AuthConfig struct {
	JWTSecret   string        `yaml:"jwt_secret" env:"PS_JWT_SECRET"`
	RealtorTTL  time.Duration `yaml:"realtor_ttl"`
	ClientTTL   time.Duration `yaml:"client_ttl"`
	AdminLogin  string        `yaml:"admin_login" env:"PS_ADMIN_LOGIN"`
	AdminPasswd string        `yaml:"admin_password" env:"PS_ADMIN_PASSWORD"`
}

type RedisConfig struct {
	URL       string        `yaml:"url" env:"PS_REDIS_URL"`
	Namespace string        `yaml:"namespace"`
	TTL       time.Duration `yaml:"ttl"`
}

type NATSConfig struct {
	URL string `yaml:"url" env:"PS_NATS_URL"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket" env:"PS_S3_BUCKET"`
	Region    string `yaml:"region" env:"PS_S3_REGION"`
	Endpoint  string `yaml:"endpoint" env:"PS_S3_ENDPOINT"`
	PublicURL string `yaml:"public_url" env:"PS_S3_PUBLIC_URL"`
}

type FilesConfig struct {
	RootDir     string `yaml:"root_dir" env:"PS_FILES_DIR"`
	MaxUploadMB int64  `yaml:"max_upload_mb"`
	FontPath    string `yaml:"font_path"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" env:"PS_SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" env:"PS_SMTP_PORT"`
	SMTPUser     string `yaml:"smtp_user" env:"PS_SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" env:"PS_SMTP_PASSWORD"`
	FromEmail    string `yaml:"from_email"`
	NotifyEmail  string `yaml:"notify_email" env:"PS_NOTIFY_EMAIL"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token" env:"PS_TELEGRAM_TOKEN"`
	ChatID   int64  `yaml:"chat_id" env:"PS_TELEGRAM_CHAT_ID"`
}

type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`
	Format     string `yaml:"format" env:"LOG_FORMAT"` // text | json
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

type Config struct {
	Server      ServerConfig   `yaml:"server"`
	Database    DatabaseConfig `yaml:"database"`
	Auth        AuthConfig     `yaml:"auth"`
	Redis       RedisConfig    `yaml:"redis"`
	NATS        NATSConfig     `yaml:"nats"`
	S3          S3Config       `yaml:"s3"`
	Files       FilesConfig    `yaml:"files"`
	Email       EmailConfig    `yaml:"email"`
	Telegram    TelegramConfig `yaml:"telegram"`
	Log         LogConfig      `yaml:"log"`
	CORSOrigins []string       `yaml:"cors_origins"`
}

// LoadConfig читает YAML, затем .env и переменные окружения (PS_*),
// которые перекрывают значения из файла. Отсутствующий файл не ошибка.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	_ = godotenv.Load()

	var cfg Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.PublicURL == "" {
		c.Server.PublicURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Auth.RealtorTTL == 0 {
		c.Auth.RealtorTTL = 12 * time.Hour
	}
	if c.Auth.ClientTTL == 0 {
		c.Auth.ClientTTL = 24 * time.Hour
	}
	if c.Redis.Namespace == "" {
		c.Redis.Namespace = "propertystore"
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = 5 * time.Minute
	}
	if c.S3.Region == "" {
		c.S3.Region = "us-east-1"
	}
	if c.Files.RootDir == "" {
		c.Files.RootDir = "./files"
	}
	if c.Files.MaxUploadMB == 0 {
		c.Files.MaxUploadMB = 20
	}
	if c.Files.FontPath == "" {
		c.Files.FontPath = "assets/fonts/DejaVuSans.ttf"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 30
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
}

func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.url is required (or PS_DATABASE_URL)")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth.jwt_secret must be at least 16 characters (or PS_JWT_SECRET)")
	}
	return nil
}

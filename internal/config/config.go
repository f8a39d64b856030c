package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath: путь к файлу конфигурации, если YOURGENCY_CONFIG не задан.
const DefaultPath = "config/config.yaml"

type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres | sqlite
	DSN    string `yaml:"url"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	// первый админ создаётся, если таблица users пуста
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	FromEmail    string `yaml:"from_email"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type AIConfig struct {
	APIKey         string        `yaml:"api_key"`
	FastModel      string        `yaml:"fast_model"`
	DeepModel      string        `yaml:"deep_model"`
	MapsModel      string        `yaml:"maps_model"`
	ThinkingBudget int32         `yaml:"thinking_budget"`
	ScoreCacheTTL  time.Duration `yaml:"score_cache_ttl"`
	MaxRetries     int           `yaml:"max_retries"`
}

type GatewayConfig struct {
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxRetries     int           `yaml:"max_retries"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
}

type ObservabilityConfig struct {
	LogLevel     string `yaml:"log_level"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Auth          AuthConfig          `yaml:"auth"`
	Email         EmailConfig         `yaml:"email"`
	Telegram      TelegramConfig      `yaml:"telegram"`
	AI            AIConfig            `yaml:"ai"`
	Gateway       GatewayConfig       `yaml:"gateway"`
	Observability ObservabilityConfig `yaml:"observability"`
	Reports       struct {
		FontPath string `yaml:"font_path"`
	} `yaml:"reports"`
}

// Load читает YAML (отсутствующий файл допустим), затем переменные
// окружения, затем значения по умолчанию. Пустой path = YOURGENCY_CONFIG
// или DefaultPath.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("YOURGENCY_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}

	var cfg Config
	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// только env + defaults
	case err != nil:
		return nil, fmt.Errorf("open config %s: %w", path, err)
	default:
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("DATABASE_URL", &c.Database.DSN)
	str("DATABASE_DRIVER", &c.Database.Driver)
	str("JWT_SECRET", &c.Auth.JWTSecret)
	str("ADMIN_EMAIL", &c.Auth.AdminEmail)
	str("ADMIN_PASSWORD", &c.Auth.AdminPassword)
	str("API_KEY", &c.AI.APIKey)
	str("GEMINI_API_KEY", &c.AI.APIKey)
	str("SMTP_HOST", &c.Email.SMTPHost)
	str("SMTP_USER", &c.Email.SMTPUser)
	str("SMTP_PASSWORD", &c.Email.SMTPPassword)
	str("SMTP_FROM", &c.Email.FromEmail)
	str("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	str("YOURGENCY_URL", &c.Gateway.BaseURL)
	str("LOG_LEVEL", &c.Observability.LogLevel)
	str("OTEL_EXPORTER_OTLP_ENDPOINT", &c.Observability.OTLPEndpoint)

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("SMTP_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		c.Email.SMTPPort = port
	}
	if v, ok := lookup("TELEGRAM_CHAT_ID"); ok && v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("TELEGRAM_CHAT_ID: %w", err)
		}
		c.Telegram.ChatID = id
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 12 * time.Hour
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.AI.FastModel == "" {
		c.AI.FastModel = "gemini-3-flash-preview"
	}
	if c.AI.DeepModel == "" {
		c.AI.DeepModel = "gemini-3-pro-preview"
	}
	if c.AI.MapsModel == "" {
		c.AI.MapsModel = "gemini-2.5-flash"
	}
	if c.AI.ThinkingBudget == 0 {
		c.AI.ThinkingBudget = 32768
	}
	if c.AI.ScoreCacheTTL <= 0 {
		c.AI.ScoreCacheTTL = 30 * time.Minute
	}
	if c.Gateway.BaseURL == "" {
		c.Gateway.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	c.Gateway.BaseURL = strings.TrimRight(c.Gateway.BaseURL, "/")
	if c.Gateway.Timeout <= 0 {
		c.Gateway.Timeout = 30 * time.Second
	}
	if c.Gateway.InitialBackoff <= 0 {
		c.Gateway.InitialBackoff = 200 * time.Millisecond
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = "yourgency"
	}
}

// SMTPEnabled: письма отправляются только при заданном SMTP-хосте.
func (c *Config) SMTPEnabled() bool {
	return c.Email.SMTPHost != ""
}

// TelegramEnabled: алерты о горячих лидах включены.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != 0
}

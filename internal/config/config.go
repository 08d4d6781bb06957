package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Configuration struct {
	Server   ServerConfig   `json:"server"`
	Security SecurityConfig `json:"security"`
	Logging  LoggingConfig  `json:"logging"`
	Database DatabaseConfig `json:"database"`
	Storage  StorageConfig  `json:"storage"`
}

type ServerConfig struct {
	Port         string        `json:"port"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
}

type SecurityConfig struct {
	SessionTimeout    time.Duration `json:"session_timeout"`
	PasswordMinLength int           `json:"password_min_length"`
	EsignWebhookToken string        `json:"esign_webhook_token"`
}

type LoggingConfig struct {
	Level       string `json:"level"`
	Environment string `json:"environment"`
}

type DatabaseConfig struct {
	Host            string `json:"host"`
	Port            string `json:"port"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	Name            string `json:"name"`
	SSLMode         string `json:"ssl_mode"`
	MaxIdleConns    int    `json:"max_idle_conns"`
	MaxOpenConns    int    `json:"max_open_conns"`
	ConnMaxLifetime int    `json:"conn_max_lifetime"`
}

type StorageConfig struct {
	Bucket         string        `json:"bucket"`
	Region         string        `json:"region"`
	PresignTTL     time.Duration `json:"presign_ttl"`
	ForcePathStyle bool          `json:"force_path_style"`
}

var (
	config     *Configuration
	configOnce sync.Once
	configLock sync.RWMutex
)

// Load reads the JSON config file, fills defaults, and overlays secrets from
// the environment (a .env file is honored when present).
func Load(filePath string) (*Configuration, error) {
	var err error

	configOnce.Do(func() {
		_ = godotenv.Load()

		var file *os.File
		file, err = os.Open(filePath)
		if err != nil {
			err = fmt.Errorf("failed to open config file: %w", err)
			return
		}
		defer file.Close()

		config = &Configuration{}
		if err = json.NewDecoder(file).Decode(config); err != nil {
			err = fmt.Errorf("failed to decode config file: %w", err)
			return
		}

		applyDefaults(config)
		applyEnvOverrides(config)
	})

	return config, err
}

func applyDefaults(cfg *Configuration) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8000"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 120 * time.Second
	}
	if cfg.Security.SessionTimeout == 0 {
		cfg.Security.SessionTimeout = 24 * time.Hour
	}
	if cfg.Security.PasswordMinLength == 0 {
		cfg.Security.PasswordMinLength = 8
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 10
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 100
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Storage.PresignTTL == 0 {
		cfg.Storage.PresignTTL = 15 * time.Minute
	}
}

func applyEnvOverrides(cfg *Configuration) {
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		cfg.Database.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.Username = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("STORAGE_BUCKET"); v != "" {
		cfg.Storage.Bucket = v
	}
	if v := os.Getenv("ESIGN_WEBHOOK_TOKEN"); v != "" {
		cfg.Security.EsignWebhookToken = v
	}
}

func Get() *Configuration {
	configLock.RLock()
	defer configLock.RUnlock()
	return config
}

// InitializeDefault builds a configuration without a config file, for local
// development and tests.
func InitializeDefault() *Configuration {
	configLock.Lock()
	defer configLock.Unlock()

	config = &Configuration{
		Server: ServerConfig{
			Port:         "8000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Security: SecurityConfig{
			SessionTimeout:    24 * time.Hour,
			PasswordMinLength: 8,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Environment: "development",
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            "5432",
			Username:        "postgres",
			Password:        "password",
			Name:            "crestline",
			SSLMode:         "disable",
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: 300,
		},
		Storage: StorageConfig{
			Bucket:     "crestline-documents",
			Region:     "us-east-1",
			PresignTTL: 15 * time.Minute,
		},
	}
	applyEnvOverrides(config)

	return config
}

func LogConfig(logger *zap.Logger) {
	configLock.RLock()
	defer configLock.RUnlock()

	logger.Info("Application configuration",
		zap.String("port", config.Server.Port),
		zap.Duration("read_timeout", config.Server.ReadTimeout),
		zap.Duration("write_timeout", config.Server.WriteTimeout),
		zap.Duration("session_timeout", config.Security.SessionTimeout),
		zap.String("database_host", config.Database.Host),
		zap.String("database_name", config.Database.Name),
		zap.String("storage_bucket", config.Storage.Bucket),
		zap.String("storage_region", config.Storage.Region),
	)
}

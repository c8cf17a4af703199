package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	pkglogger "github.com/campusmarket/campusmarket-backend/pkg/logger"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	OAuth    OAuthConfig    `yaml:"oauth"`
	Storage  StorageConfig  `yaml:"storage"`
	Notify   NotifyConfig   `yaml:"notify"`
	CORS     CORSConfig     `yaml:"cors"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	Env         string `yaml:"env"`
	FrontendURL string `yaml:"frontend_url"`
}

type DatabaseConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	Name            string `yaml:"name"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type JWTConfig struct {
	Secret       string `yaml:"secret"`
	ExpiresHours int    `yaml:"expires_hours"`
}

// ExpiresIn returns the token lifetime as a duration
func (c *JWTConfig) ExpiresIn() time.Duration {
	return time.Duration(c.ExpiresHours) * time.Hour
}

type OAuthConfig struct {
	GoogleClientID     string `yaml:"google_client_id"`
	GoogleClientSecret string `yaml:"google_client_secret"`
	GoogleRedirectURL  string `yaml:"google_redirect_url"`
	// AllowedDomain restricts sign-in to one campus email domain (empty = any)
	AllowedDomain string `yaml:"allowed_domain"`
}

type StorageConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	CDNURL          string `yaml:"cdn_url"`
	BasePath        string `yaml:"base_path"`
	ForcePathStyle  bool   `yaml:"force_path_style"`
	LocalDir        string `yaml:"local_dir"`
}

type NotifyConfig struct {
	AdminEmail string `yaml:"admin_email"`
	Queue      string `yaml:"queue"`
}

type CORSConfig struct {
	AllowOrigins string `yaml:"allow_origins"`
}

// Load reads the yaml config file and applies environment overrides
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server:   ServerConfig{Port: 8080, Env: "local", FrontendURL: "http://localhost:5173"},
		Database: DatabaseConfig{MaxIdleConns: 10, MaxOpenConns: 100, ConnMaxLifetime: 3600},
		Redis:    RedisConfig{Host: "localhost", Port: 6379, PoolSize: 10},
		JWT:      JWTConfig{ExpiresHours: 24},
		Storage:  StorageConfig{LocalDir: "static/images"},
		Notify:   NotifyConfig{Queue: "notifications"},
	}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv lets OS environment variables win over yaml values
func applyEnv(cfg *Config) {
	setStr(&cfg.Server.FrontendURL, "FRONTEND_URL")
	setInt(&cfg.Server.Port, "PORT")

	setStr(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setStr(&cfg.Database.User, "DB_USER")
	setStr(&cfg.Database.Password, "DB_PASSWORD")
	setStr(&cfg.Database.Name, "DB_NAME")

	setStr(&cfg.Redis.Host, "REDIS_HOST")
	setInt(&cfg.Redis.Port, "REDIS_PORT")
	setStr(&cfg.Redis.Password, "REDIS_PASSWORD")

	setStr(&cfg.JWT.Secret, "JWT_SECRET")

	setStr(&cfg.OAuth.GoogleClientID, "GOOGLE_CLIENT_ID")
	setStr(&cfg.OAuth.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")
	setStr(&cfg.OAuth.GoogleRedirectURL, "GOOGLE_REDIRECT_URI")
	setStr(&cfg.OAuth.AllowedDomain, "CAMPUS_EMAIL_DOMAIN")

	setStr(&cfg.Storage.AccessKeyID, "S3_ACCESS_KEY_ID")
	setStr(&cfg.Storage.SecretAccessKey, "S3_SECRET_ACCESS_KEY")
	setStr(&cfg.Storage.Bucket, "S3_BUCKET")

	setStr(&cfg.Notify.AdminEmail, "ADMIN_EMAIL")
	setStr(&cfg.CORS.AllowOrigins, "CORS_ALLOW_ORIGINS")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// DSN builds the MySQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// IsDevelopment reports whether the server runs in a development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "" || c.Server.Env == "local" || c.Server.Env == "development" || c.Server.Env == "dev"
}

// LogResolved logs the effective non-secret configuration at startup
func LogResolved(cfg *Config) {
	pkglogger.Info("config: port=%d env=%s db=%s@%s:%d redis=%s:%d storage_enabled=%v",
		cfg.Server.Port, cfg.Server.Env,
		cfg.Database.User, cfg.Database.Host, cfg.Database.Port,
		cfg.Redis.Host, cfg.Redis.Port, cfg.Storage.Enabled)
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// placeholderJWTSecret ships as the default and must be replaced before start.
const placeholderJWTSecret = "change-me"

// Clone policies accepted by CLONE_POLICY.
const (
	ClonePolicyFlat      = "flat"
	ClonePolicyVersioned = "versioned"
)

// Config holds application level configuration loaded from an optional
// YAML file and environment variables.
type Config struct {
	ServerPort    string `yaml:"server_port"`
	DBDriver      string `yaml:"db_driver"`
	MySQLDSN      string `yaml:"mysql_dsn"`
	PostgresDSN   string `yaml:"postgres_dsn"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPass     string `yaml:"redis_password"`
	JWTSecret     string `yaml:"jwt_secret"`
	SwaggerHost   string `yaml:"swagger_host"`
	PublicBaseURL string `yaml:"public_base_url"`
	ClonePolicy   string `yaml:"clone_policy"`
	LogLevel      string `yaml:"log_level"`
	LogPretty     bool   `yaml:"log_pretty"`
	ResetDB       bool   `yaml:"reset_db"`
	SMTP          SMTP   `yaml:"smtp"`
}

// SMTP configures the invite mailer. An empty Host disables mail.
type SMTP struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ServerPort:  "8080",
		DBDriver:    "mysql",
		MySQLDSN:    "user:password@tcp(localhost:3306)/onboarding?charset=utf8mb4&parseTime=True&loc=UTC",
		PostgresDSN: "host=localhost user=postgres password=postgres dbname=onboarding port=5432 sslmode=disable",
		RedisAddr:   "localhost:6379",
		JWTSecret:   placeholderJWTSecret,
		ClonePolicy: ClonePolicyVersioned,
		LogLevel:    "info",
		SMTP:        SMTP{Port: 587},
	}
}

// Load builds Config from defaults, then the YAML file at path (if any),
// then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.MySQLDSN = getEnv("MYSQL_DSN", c.MySQLDSN)
	c.PostgresDSN = getEnv("POSTGRES_DSN", c.PostgresDSN)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.RedisPass = getEnv("REDIS_PASSWORD", c.RedisPass)
	c.JWTSecret = getEnv("JWT_SECRET", c.JWTSecret)
	c.SwaggerHost = getEnv("SWAGGER_HOST", c.SwaggerHost)
	c.PublicBaseURL = getEnv("PUBLIC_BASE_URL", c.PublicBaseURL)
	c.ClonePolicy = getEnv("CLONE_POLICY", c.ClonePolicy)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogPretty = getEnvBool("LOG_PRETTY", c.LogPretty)
	c.ResetDB = getEnvBool("RESET_DB", c.ResetDB)
	c.SMTP.Host = getEnv("SMTP_HOST", c.SMTP.Host)
	c.SMTP.Port = getEnvInt("SMTP_PORT", c.SMTP.Port)
	c.SMTP.User = getEnv("SMTP_USER", c.SMTP.User)
	c.SMTP.Password = getEnv("SMTP_PASSWORD", c.SMTP.Password)
	c.SMTP.From = getEnv("SMTP_FROM", c.SMTP.From)
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.ClonePolicy {
	case ClonePolicyFlat, ClonePolicyVersioned:
	default:
		return fmt.Errorf("unsupported CLONE_POLICY %q", c.ClonePolicy)
	}
	switch c.JWTSecret {
	case "":
		return fmt.Errorf("JWT_SECRET must not be empty")
	case placeholderJWTSecret:
		return fmt.Errorf("JWT_SECRET must be set, the built-in placeholder is not accepted")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

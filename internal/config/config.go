// Package config loads runtime settings from defaults, an optional YAML file,
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"

	DefaultModeFile = "configType.txt"
)

type Config struct {
	// Mode is read from ModeFile when that file exists.
	Mode     string         `mapstructure:"mode"`
	ModeFile string         `mapstructure:"mode_file"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Security SecurityConfig `mapstructure:"security"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Logs     LogsConfig     `mapstructure:"logs"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	BaseURL        string        `mapstructure:"base_url"`
	ClientURL      string        `mapstructure:"client_url"`
	StaticDir      string        `mapstructure:"static_dir"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	LoginLimit     int64         `mapstructure:"login_limit"`
	LoginWindow    time.Duration `mapstructure:"login_window"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	// Support receives contact inquiries and item reports.
	Support string `mapstructure:"support"`
}

type SecurityConfig struct {
	SecretKey    string `mapstructure:"secret_key"`
	PasswordSalt string `mapstructure:"password_salt"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LogsConfig struct {
	Retention     time.Duration `mapstructure:"retention"`
	PurgeInterval time.Duration `mapstructure:"purge_interval"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// legacyEnv maps keys to the variable names older deployments export.
var legacyEnv = map[string]string{
	"database.dsn":           "DATABASE_URI",
	"smtp.host":              "MAIL_SERVER",
	"smtp.port":              "MAIL_PORT",
	"smtp.username":          "MAIL_USERNAME",
	"smtp.password":          "MAIL_PASSWORD",
	"security.secret_key":    "SECRET_KEY",
	"security.password_salt": "SECURITY_PASSWORD_SALT",
}

// Load reads configPath (optional) and the ITEMIZER_* environment.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ITEMIZER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range legacyEnv {
		envName := "ITEMIZER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envName, name); err != nil {
			return nil, err
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	mode, err := ReadModeFile(cfg.ModeFile)
	if err != nil {
		return nil, err
	}
	if mode != "" {
		cfg.Mode = mode
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ReadModeFile returns the trimmed contents of path, or "" if it is missing.
func ReadModeFile(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read mode file: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

func (c *Config) IsProduction() bool {
	return c.Mode == ModeProduction
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeDevelopment, ModeProduction:
	default:
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("config: database.dsn is required")
	}
	if c.IsProduction() && (c.Security.SecretKey == "" || c.Security.SecretKey == devSecret) {
		return errors.New("config: security.secret_key must be set in production")
	}
	if c.Kafka.Enabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return errors.New("config: kafka.brokers and kafka.topic are required when kafka is enabled")
	}
	if c.Logs.Retention <= 0 || c.Logs.PurgeInterval <= 0 {
		return errors.New("config: logs.retention and logs.purge_interval must be positive")
	}
	return nil
}

const devSecret = "dev-secret-key"

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", ModeDevelopment)
	v.SetDefault("mode_file", DefaultModeFile)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.client_url", "http://localhost:3000")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.login_limit", 5)
	v.SetDefault("server.login_window", time.Minute)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "user:password@tcp(127.0.0.1:3306)/itemizer?charset=utf8mb4&parseTime=True")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "Itemizer <no-reply@itemizer.local>")
	v.SetDefault("smtp.support", "support@itemizer.local")

	v.SetDefault("security.secret_key", devSecret)
	v.SetDefault("security.password_salt", "dev-password-salt")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "itemizer.organization_logs")

	v.SetDefault("logs.retention", 7*24*time.Hour)
	v.SetDefault("logs.purge_interval", 24*time.Hour)

	v.SetDefault("logging.level", "info")
}

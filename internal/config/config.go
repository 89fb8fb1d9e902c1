package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Mode     string         `json:"mode"`    // cli | http
	Backend  string         `json:"backend"` // file | sql | bolt | redis
	LogLevel string         `json:"log_level"`
	File     FileConfig     `json:"file"`
	Database DatabaseConfig `json:"database"`
	Bolt     BoltConfig     `json:"bolt"`
	Redis    RedisConfig    `json:"redis"`
	Server   ServerConfig   `json:"server"`
}

type FileConfig struct {
	Path string `json:"path"`
}

type DatabaseConfig struct {
	Driver   string `json:"driver"` // postgres | pgx | sqlite3
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
	Path     string `json:"path"` // sqlite3 only
}

type BoltConfig struct {
	Path string `json:"path"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Key      string `json:"key"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Default runs the menu against ventas_db.json in the working directory.
func Default() Config {
	return Config{
		Mode:    "cli",
		Backend: "file",
		File:    FileConfig{Path: "ventas_db.json"},
		Database: DatabaseConfig{
			Driver:  "postgres",
			Host:    "localhost",
			Port:    5432,
			DBName:  "ventas",
			SSLMode: "disable",
			Path:    "ventas.db",
		},
		Bolt:   BoltConfig{Path: "ventas.bolt"},
		Redis:  RedisConfig{Host: "localhost", Port: 6379, Key: "ventas"},
		Server: ServerConfig{Host: "", Port: 8081},
	}
}

// Load starts from Default, applies the JSON file at path (if path is not
// empty) and then the environment read through getenv.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		decoder := json.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if err := applyEnv(&cfg, getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	strs := map[string]*string{
		"SALES_MODE":      &cfg.Mode,
		"SALES_BACKEND":   &cfg.Backend,
		"SALES_LOG_LEVEL": &cfg.LogLevel,
		"SALES_FILE":      &cfg.File.Path,
		"DB_DRIVER":       &cfg.Database.Driver,
		"DB_HOST":         &cfg.Database.Host,
		"DB_USER":         &cfg.Database.User,
		"DB_PASSWORD":     &cfg.Database.Password,
		"DB_NAME":         &cfg.Database.DBName,
		"DB_SSLMODE":      &cfg.Database.SSLMode,
		"DB_PATH":         &cfg.Database.Path,
		"BOLT_PATH":       &cfg.Bolt.Path,
		"REDIS_HOST":      &cfg.Redis.Host,
		"REDIS_PASSWORD":  &cfg.Redis.Password,
		"REDIS_KEY":       &cfg.Redis.Key,
		"HTTP_HOST":       &cfg.Server.Host,
	}
	for name, dst := range strs {
		if v := getenv(name); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"DB_PORT":    &cfg.Database.Port,
		"REDIS_PORT": &cfg.Redis.Port,
		"REDIS_DB":   &cfg.Redis.DB,
		"HTTP_PORT":  &cfg.Server.Port,
	}
	for name, dst := range ints {
		v := getenv(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", name, v)
		}
		*dst = n
	}
	return nil
}

// Validate checks the enumerated settings.
func (c *Config) Validate() error {
	switch c.Mode {
	case "cli", "http":
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	switch c.Backend {
	case "file", "sql", "bolt", "redis":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Backend == "sql" {
		switch c.Database.Driver {
		case "postgres", "pgx", "sqlite3":
		default:
			return fmt.Errorf("unknown database driver %q", c.Database.Driver)
		}
	}
	return nil
}

// LevelOrDefault is the configured log level, or warn for the menu and info for the API.
func (c *Config) LevelOrDefault() string {
	if c.LogLevel != "" {
		return c.LogLevel
	}
	if c.Mode == "http" {
		return "info"
	}
	return "warn"
}

func (c *DatabaseConfig) GetDSN() string {
	if c.Driver == "sqlite3" {
		return "file:" + c.Path + "?_foreign_keys=on"
	}
	return "host=" + c.Host +
		" port=" + strconv.Itoa(c.Port) +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

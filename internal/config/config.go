package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config defines hub configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Log    LogConfig    `yaml:"log"`
	Auth   AuthConfig   `yaml:"auth"`
	CORS   CORSConfig   `yaml:"cors"`
	Sync   SyncConfig   `yaml:"sync"`
	Feeds  []FeedConfig `yaml:"feeds"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type AuthConfig struct {
	// APIKey guards non-public HTTP endpoints; empty disables auth (dev mode).
	APIKey string `yaml:"api_key"`
}

type CORSConfig struct {
	Origins []string `yaml:"origins"`
}

type SyncConfig struct {
	// ChunkSize bounds one conditional write against the store.
	ChunkSize int `yaml:"chunk_size"`
	// RunTimeout bounds one collection pass end to end.
	RunTimeout Duration `yaml:"run_timeout"`
}

// FeedConfig describes one pull source paged over HTTP.
type FeedConfig struct {
	Source   string   `yaml:"source"`
	Category string   `yaml:"category"`
	URL      string   `yaml:"url"`
	Token    string   `yaml:"token"`
	Interval Duration `yaml:"interval"`
}

// Duration parses YAML values like "15m" or "90s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Load reads configuration from an optional .env file, an optional YAML file,
// and environment variables, in increasing precedence.
func Load() (Config, error) {
	// Missing .env is normal outside dev.
	_ = godotenv.Load()

	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
		},
		DB: DBConfig{
			Path: "hub.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		CORS: CORSConfig{
			Origins: []string{"http://localhost:3000"},
		},
		Sync: SyncConfig{
			ChunkSize:  2000,
			RunTimeout: Duration(5 * time.Minute),
		},
	}

	if path := os.Getenv("HUB_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("HUB_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("HUB_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid HUB_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("HUB_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("HUB_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if file := os.Getenv("HUB_LOG_FILE"); file != "" {
		cfg.Log.File = file
	}
	if key := os.Getenv("HUB_API_KEY"); key != "" {
		cfg.Auth.APIKey = key
	}
	if origins := os.Getenv("HUB_CORS_ORIGINS"); origins != "" {
		cfg.CORS.Origins = splitOrigins(origins)
	}
	if sizeStr := os.Getenv("HUB_CHUNK_SIZE"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid HUB_CHUNK_SIZE: %w", err)
		}
		cfg.Sync.ChunkSize = size
	}
	if timeoutStr := os.Getenv("HUB_RUN_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid HUB_RUN_TIMEOUT: %w", err)
		}
		cfg.Sync.RunTimeout = Duration(timeout)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

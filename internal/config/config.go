package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageDatabase = "database"
)

const (
	defaultServerAddr        = ":8080"
	defaultStorageDir        = ".prompter/state"
	defaultMaxScripts        = 100
	defaultMaxRecordingBytes = 500 << 20
	defaultMaxStorySlides    = 20
	defaultHistorySize       = 50
	defaultPreviewDevices    = 2
)

const envDatabaseDSN = "PROMPTER_DATABASE_DSN"

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Limits   LimitsConfig   `yaml:"limits"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
	Scripts  ScriptsConfig  `yaml:"scripts"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	MCP  bool   `yaml:"mcp"`
}

type StorageConfig struct {
	Driver     string `yaml:"driver"`
	Dir        string `yaml:"dir"`
	QuotaBytes int64  `yaml:"quota_bytes"`
	Watch      bool   `yaml:"watch"`
}

type LimitsConfig struct {
	MaxScripts        int   `yaml:"max_scripts"`
	MaxRecordingBytes int64 `yaml:"max_recording_bytes"`
	MaxStorySlides    int   `yaml:"max_story_slides"`
	HistorySize       int   `yaml:"history_size"`
	PreviewDevices    int   `yaml:"preview_devices"`
}

type AuthConfig struct {
	Tokens []TokenConfig `yaml:"tokens"`
}

type TokenConfig struct {
	Token string `yaml:"token"`
	User  string `yaml:"user"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// ScriptsConfig lists the markdown directories read by the import command.
type ScriptsConfig struct {
	Owner   string   `yaml:"owner"`
	Paths   []string `yaml:"paths"`
	Exclude []string `yaml:"exclude"`
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if dsn := strings.TrimSpace(os.Getenv(envDatabaseDSN)); dsn != "" {
		cfg.Database.DSN = dsn
	}
	applyDefaults(&cfg)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

// UserForToken resolves a bearer token to the user it was issued for.
func (c *ProjectConfig) UserForToken(token string) (string, bool) {
	if c == nil || token == "" {
		return "", false
	}
	for _, t := range c.Auth.Tokens {
		if t.Token == token {
			return t.User, true
		}
	}
	return "", false
}

func applyDefaults(cfg *ProjectConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultServerAddr
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageFile
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = defaultStorageDir
	}
	if cfg.Limits.MaxScripts == 0 {
		cfg.Limits.MaxScripts = defaultMaxScripts
	}
	if cfg.Limits.MaxRecordingBytes == 0 {
		cfg.Limits.MaxRecordingBytes = defaultMaxRecordingBytes
	}
	if cfg.Limits.MaxStorySlides == 0 {
		cfg.Limits.MaxStorySlides = defaultMaxStorySlides
	}
	if cfg.Limits.HistorySize == 0 {
		cfg.Limits.HistorySize = defaultHistorySize
	}
	if cfg.Limits.PreviewDevices == 0 {
		cfg.Limits.PreviewDevices = defaultPreviewDevices
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}

	dsn := strings.TrimSpace(cfg.Database.DSN)
	if dsn == "" {
		return fmt.Errorf("database dsn is required")
	}
	if !strings.HasPrefix(dsn, "sqlite://") && !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return fmt.Errorf("unsupported database dsn scheme: %s", dsn)
	}

	switch cfg.Storage.Driver {
	case StorageMemory, StorageFile, StorageDatabase:
	default:
		return fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
	if cfg.Storage.QuotaBytes < 0 {
		return fmt.Errorf("storage quota must not be negative")
	}

	if cfg.Limits.MaxScripts < 0 || cfg.Limits.MaxRecordingBytes < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	if cfg.Limits.MaxStorySlides < 1 {
		return fmt.Errorf("max story slides must be at least 1")
	}
	if cfg.Limits.HistorySize < 1 {
		return fmt.Errorf("history size must be at least 1")
	}

	seen := make(map[string]struct{})
	for i, token := range cfg.Auth.Tokens {
		if strings.TrimSpace(token.Token) == "" {
			return fmt.Errorf("auth token %d is empty", i)
		}
		if strings.TrimSpace(token.User) == "" {
			return fmt.Errorf("auth token %d has no user", i)
		}
		// Workspace storage keys are "<user>:<key>".
		if strings.Contains(token.User, ":") {
			return fmt.Errorf("auth token %d: user %q must not contain ':'", i, token.User)
		}
		if _, exists := seen[token.Token]; exists {
			return fmt.Errorf("duplicate auth token for user: %s", token.User)
		}
		seen[token.Token] = struct{}{}
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", cfg.Logging.Level)
	}

	return nil
}

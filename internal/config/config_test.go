package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectConfig(t *testing.T) {
	t.Setenv(envDatabaseDSN, "")

	t.Run("valid config loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Project != "test-project" {
			t.Fatalf("expected project name, got %q", cfg.Project)
		}
		if cfg.Server.Addr != ":9090" {
			t.Fatalf("expected server addr, got %q", cfg.Server.Addr)
		}
		if cfg.Limits.HistorySize != defaultHistorySize {
			t.Fatalf("expected default history size, got %d", cfg.Limits.HistorySize)
		}
		if cfg.Limits.MaxStorySlides != 20 {
			t.Fatalf("expected default max story slides, got %d", cfg.Limits.MaxStorySlides)
		}
	})

	t.Run("defaults applied", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://./test.db\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Storage.Driver != StorageFile {
			t.Fatalf("expected file storage by default, got %q", cfg.Storage.Driver)
		}
		if cfg.Server.Addr != defaultServerAddr {
			t.Fatalf("expected default addr, got %q", cfg.Server.Addr)
		}
		if cfg.Logging.Level != "info" {
			t.Fatalf("expected info level, got %q", cfg.Logging.Level)
		}
	})

	t.Run("dsn from environment", func(t *testing.T) {
		t.Setenv(envDatabaseDSN, "postgres://localhost/prompter")
		path := writeTempConfig(t, "project: test\nversion: 1\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Database.DSN != "postgres://localhost/prompter" {
			t.Fatalf("expected env dsn, got %q", cfg.Database.DSN)
		}
	})

	t.Run("missing project name", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\ndatabase:\n  dsn: sqlite://./test.db\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 2\ndatabase:\n  dsn: sqlite://./test.db\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("missing dsn", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown dsn scheme", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: mysql://localhost\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown storage driver", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://./test.db\nstorage:\n  driver: cookies\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("duplicate tokens", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://./test.db\nauth:\n  tokens:\n    - {token: a, user: x}\n    - {token: a, user: y}\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("token without user", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://./test.db\nauth:\n  tokens:\n    - {token: a}\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("user with colon", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://./test.db\nauth:\n  tokens:\n    - {token: a, user: \"team:a\"}\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown log level", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ndatabase:\n  dsn: sqlite://./test.db\nlogging:\n  level: loud\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "project: [\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestUserForToken(t *testing.T) {
	cfg := &ProjectConfig{Auth: AuthConfig{Tokens: []TokenConfig{{Token: "t1", User: "alice"}}}}

	if user, ok := cfg.UserForToken("t1"); !ok || user != "alice" {
		t.Fatalf("expected alice, got %q (%v)", user, ok)
	}
	if _, ok := cfg.UserForToken("nope"); ok {
		t.Fatalf("expected unknown token to fail")
	}
	if _, ok := cfg.UserForToken(""); ok {
		t.Fatalf("expected empty token to fail")
	}
}

func TestLoadPresets(t *testing.T) {
	t.Run("valid presets load", func(t *testing.T) {
		presets, err := LoadPresets(filepath.Join("testdata", "valid_presets.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		preset, ok := presets.ByName("Broadcast")
		if !ok {
			t.Fatalf("expected broadcast preset")
		}
		if preset.Typography["fontSize"] != 64 {
			t.Fatalf("unexpected font size: %#v", preset.Typography["fontSize"])
		}
		if len(presets.Names()) != 2 {
			t.Fatalf("expected two names, got %v", presets.Names())
		}
	})

	t.Run("duplicate names", func(t *testing.T) {
		if _, err := ParsePresets([]byte("version: 1\npresets:\n  - name: a\n  - name: A\n")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("missing name", func(t *testing.T) {
		if _, err := ParsePresets([]byte("version: 1\npresets:\n  - description: nameless\n")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		if _, err := ParsePresets([]byte("version: 3\npresets: []\n")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("nil catalogue lookup", func(t *testing.T) {
		var presets *Presets
		if _, ok := presets.ByName("broadcast"); ok {
			t.Fatalf("expected lookup on nil catalogue to fail")
		}
	})
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != 8080 {
		t.Errorf("Expected Port to be 8080, got %d", cfg.Port)
	}

	if cfg.PollIntervalMillis != 500 {
		t.Errorf("Expected PollIntervalMillis to be 500, got %d", cfg.PollIntervalMillis)
	}

	if cfg.HistoryLimit != 200 {
		t.Errorf("Expected HistoryLimit to be 200, got %d", cfg.HistoryLimit)
	}

	if cfg.PollInterval() != 500*time.Millisecond {
		t.Errorf("Expected PollInterval 500ms, got %v", cfg.PollInterval())
	}

	if cfg.RequestTimeout() != 0 {
		t.Errorf("Expected no request timeout by default, got %v", cfg.RequestTimeout())
	}
}

func TestConfigValidation(t *testing.T) {
	valid := func() Config { return *DefaultConfig() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid config", func(c *Config) {}, false},
		{"empty backend", func(c *Config) { c.BackendURL = "" }, true},
		{"relative backend", func(c *Config) { c.BackendURL = "/api" }, true},
		{"ftp backend", func(c *Config) { c.BackendURL = "ftp://host" }, true},
		{"empty download path", func(c *Config) { c.DownloadPath = "" }, true},
		{"invalid port", func(c *Config) { c.Port = 0 }, true},
		{"negative history limit", func(c *Config) { c.HistoryLimit = -1 }, true},
		{"unbounded history", func(c *Config) { c.HistoryLimit = 0 }, false},
		{"poll too fast", func(c *Config) { c.PollIntervalMillis = 10 }, true},
		{"poll too slow", func(c *Config) { c.PollIntervalMillis = 6000 }, true},
		{"negative timeout", func(c *Config) { c.RequestTimeoutSeconds = -5 }, true},
		{"zero rate", func(c *Config) { c.MaxRequestsPerSecond = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigSaveLoad(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.json")

	originalConfig := DefaultConfig()
	originalConfig.Port = 9090
	originalConfig.BackendURL = "http://media.local:8000"

	if err := originalConfig.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	loadedConfig, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if loadedConfig.Port != 9090 {
		t.Errorf("Expected Port to be 9090, got %d", loadedConfig.Port)
	}

	if loadedConfig.BackendURL != "http://media.local:8000" {
		t.Errorf("Expected BackendURL to round trip, got %s", loadedConfig.BackendURL)
	}
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(configPath, []byte(`{"port": 3000}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Port != 3000 {
		t.Errorf("Expected Port 3000, got %d", cfg.Port)
	}
	if cfg.PollIntervalMillis != 500 {
		t.Errorf("Expected default poll interval to survive, got %d", cfg.PollIntervalMillis)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nonexistent.json")

	config, err := Load(configPath)
	if err != nil {
		t.Fatalf("Expected Load to create default config, got error: %v", err)
	}

	if config.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", config.Port)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Expected config file to be created")
	}
}

func TestHistoryFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DownloadPath = "/data/videos"

	if got := cfg.HistoryFile(); got != filepath.Join("/data/videos", HistoryFileName) {
		t.Errorf("Expected history file inside download path, got %s", got)
	}

	cfg.HistoryPath = "/state/history.json"
	if got := cfg.HistoryFile(); got != "/state/history.json" {
		t.Errorf("Expected explicit history path, got %s", got)
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DownloadPath = filepath.Join(t.TempDir(), "nested", "downloads")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	if fi, err := os.Stat(cfg.DownloadPath); err != nil || !fi.IsDir() {
		t.Errorf("Expected download directory to exist, err=%v", err)
	}
}

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// HistoryFileName is the fixed name of the history log inside the download directory
const HistoryFileName = ".vidgrab_history.json"

type Config struct {
	BackendURL            string  `json:"backend_url"`
	Port                  int     `json:"port"`
	DownloadPath          string  `json:"download_path"`
	HistoryPath           string  `json:"history_path,omitempty"`
	HistoryLimit          int     `json:"history_limit"`
	PollIntervalMillis    int     `json:"poll_interval_ms"`
	RequestTimeoutSeconds int     `json:"request_timeout_seconds"`
	MaxRequestsPerSecond  float64 `json:"max_requests_per_second"`
	UserAgent             string  `json:"user_agent"`
	VerboseLogging        bool    `json:"verbose_logging"`
}

func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	downloadPath := filepath.Join(homeDir, "Downloads", "vidgrab")

	return &Config{
		BackendURL:            "http://127.0.0.1:5000",
		Port:                  8080,
		DownloadPath:          downloadPath,
		HistoryLimit:          200,
		PollIntervalMillis:    500,
		RequestTimeoutSeconds: 0, // rely on the transport default
		MaxRequestsPerSecond:  10,
		UserAgent:             "vidgrab/1.0",
		VerboseLogging:        false,
	}
}

// HistoryFile returns the history log location, defaulting to the download directory
func (c *Config) HistoryFile() string {
	if c.HistoryPath != "" {
		return c.HistoryPath
	}
	return filepath.Join(c.DownloadPath, HistoryFileName)
}

// PollInterval returns the progress polling interval as a duration
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMillis) * time.Millisecond
}

// RequestTimeout returns the backend request timeout; zero means no client-side limit
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so fields missing in older files keep sane values
	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

func (c *Config) Save(configPath string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("backend_url cannot be empty")
	}

	u, err := url.Parse(c.BackendURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend_url must be an absolute http(s) URL")
	}

	if c.DownloadPath == "" {
		return fmt.Errorf("download_path cannot be empty")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit cannot be negative")
	}

	if c.PollIntervalMillis < 100 || c.PollIntervalMillis > 5000 {
		return fmt.Errorf("poll_interval_ms must be between 100 and 5000")
	}

	if c.RequestTimeoutSeconds < 0 {
		return fmt.Errorf("request_timeout_seconds cannot be negative")
	}

	if c.MaxRequestsPerSecond <= 0 {
		return fmt.Errorf("max_requests_per_second must be positive")
	}

	return nil
}

// EnsureDirectories creates the download directory and the history file's parent
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.DownloadPath, 0755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.HistoryFile()), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	return nil
}

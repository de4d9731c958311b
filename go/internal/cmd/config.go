package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rodrigofprates2015-ctrl/tikjogos.app/go/internal/session"
)

// Config holds the client configuration.
type Config struct {
	Server struct {
		APIBaseURL string `yaml:"api_base_url"`
		WSBaseURL  string `yaml:"ws_base_url"`
	} `yaml:"server"`
	Reconnect session.ReconnectPolicy `yaml:"reconnect"`
	PrefsPath string                  `yaml:"prefs_path"`
	LogLevel  string                  `yaml:"log_level"`
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.APIBaseURL = "https://tikjogos.com.br"
	cfg.Server.WSBaseURL = "wss://tikjogos.com.br"
	cfg.Reconnect = session.DefaultReconnectPolicy()
	cfg.LogLevel = "info"
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.Server.APIBaseURL = getEnv("TIKJOGOS_API_URL", cfg.Server.APIBaseURL)
	cfg.Server.WSBaseURL = getEnv("TIKJOGOS_WS_URL", cfg.Server.WSBaseURL)
	cfg.LogLevel = getEnv("TIKJOGOS_LOG_LEVEL", cfg.LogLevel)

	if cfg.Reconnect.MaxAttempts <= 0 {
		cfg.Reconnect = session.DefaultReconnectPolicy()
	}

	return cfg, nil
}

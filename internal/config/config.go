package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	AppEnv          string
	Port            string
	LogLevel        string
	LogFormat       string
	GraphAPIBaseURL string

	// WebSocket connection limits
	WSMaxConnections   int64
	WSMaxPerIP         int
	WSConnectionsPerIP float64
	WSConnectionBurst  int
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		Port:            getEnv("PORT", "8182"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
		GraphAPIBaseURL: getEnv("GRAPH_API_BASE_URL", ""),
	}

	var err error
	if cfg.WSMaxConnections, err = getEnvInt64("WS_MAX_CONNECTIONS", 1000); err != nil {
		return nil, err
	}
	maxPerIP, err := getEnvInt64("WS_MAX_PER_IP", 20)
	if err != nil {
		return nil, err
	}
	cfg.WSMaxPerIP = int(maxPerIP)
	burst, err := getEnvInt64("WS_CONNECTION_BURST", 10)
	if err != nil {
		return nil, err
	}
	cfg.WSConnectionBurst = int(burst)
	perSec, err := getEnvInt64("WS_CONNECTIONS_PER_SECOND", 10)
	if err != nil {
		return nil, err
	}
	cfg.WSConnectionsPerIP = float64(perSec)

	if cfg.WSMaxConnections <= 0 {
		return nil, fmt.Errorf("WS_MAX_CONNECTIONS must be positive")
	}
	if cfg.WSMaxPerIP <= 0 {
		return nil, fmt.Errorf("WS_MAX_PER_IP must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

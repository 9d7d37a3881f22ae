// Package config provides configuration management for Converse.
// It loads settings from environment variables with the CONVERSE_ prefix
// and provides sensible defaults for all configuration options.
package config

import (
	"os"
	"strconv"
)

// Config holds all configuration settings for the Converse application.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	NLP      NLPConfig
	Context  ContextConfig
	Security SecurityConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port int    // Server port (default: 7272)
	Host string // Server host (default: 127.0.0.1)
}

// StorageConfig contains session archive storage configuration.
type StorageConfig struct {
	StorageEngine string // Storage engine type: sqlite, postgres (default: sqlite)
	DataPath      string // Path to data directory for sqlite (default: ./data)
	PostgresHost  string // Postgres host (default: localhost)
	PostgresPort  int    // Postgres port (default: 5432)
	PostgresDB    string // Postgres database name (default: converse)
	PostgresUser  string // Postgres user (default: converse)
	PostgresPass  string // Postgres password
	PostgresSSL   string // Postgres sslmode (default: disable)
}

// NLPConfig contains annotation backend configuration.
type NLPConfig struct {
	Model        string // Annotation backend: builtin, remote (default: builtin)
	RemoteURL    string // Remote annotation service URL (default: http://localhost:9090)
	LexiconPath  string // Optional YAML lexicon overrides for the builtin backend
	WatchLexicon bool   // Reload the lexicon file when it changes (default: true)
	CacheSize    int    // Annotation LRU cache size (default: 256)
}

// ContextConfig contains context engine tuning.
type ContextConfig struct {
	WindowSize int // Recent-context window in turns (default: 5)
}

// SecurityConfig contains security and authentication settings.
type SecurityConfig struct {
	SecurityMode string // Security mode: development, production (default: development)
	APIToken     string // API authentication token
}

// LoadConfig loads configuration from environment variables with sensible defaults.
// All environment variables use the CONVERSE_ prefix.
func LoadConfig() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("CONVERSE_PORT", 7272),
			Host: getEnv("CONVERSE_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			StorageEngine: getEnv("CONVERSE_STORAGE_ENGINE", "sqlite"),
			DataPath:      getEnv("CONVERSE_DATA_PATH", "./data"),
			PostgresHost:  getEnv("CONVERSE_POSTGRES_HOST", "localhost"),
			PostgresPort:  getEnvInt("CONVERSE_POSTGRES_PORT", 5432),
			PostgresDB:    getEnv("CONVERSE_POSTGRES_DB", "converse"),
			PostgresUser:  getEnv("CONVERSE_POSTGRES_USER", "converse"),
			PostgresPass:  getEnv("CONVERSE_POSTGRES_PASSWORD", ""),
			PostgresSSL:   getEnv("CONVERSE_POSTGRES_SSLMODE", "disable"),
		},
		NLP: NLPConfig{
			Model:        getEnv("CONVERSE_NLP_MODEL", "builtin"),
			RemoteURL:    getEnv("CONVERSE_NLP_REMOTE_URL", "http://localhost:9090"),
			LexiconPath:  getEnv("CONVERSE_LEXICON_PATH", ""),
			WatchLexicon: getEnvBool("CONVERSE_LEXICON_WATCH", true),
			CacheSize:    getEnvInt("CONVERSE_NLP_CACHE_SIZE", 256),
		},
		Context: ContextConfig{
			WindowSize: getEnvInt("CONVERSE_CONTEXT_WINDOW", 5),
		},
		Security: SecurityConfig{
			SecurityMode: getEnv("CONVERSE_SECURITY_MODE", "development"),
			APIToken:     getEnv("CONVERSE_API_TOKEN", ""),
		},
	}, nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value.
// It recognizes "true", "1", "yes" as true and "false", "0", "no" as false.
// If the environment variable exists but cannot be parsed as a boolean,
// it returns the default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		switch value {
		case "true", "1", "yes", "True", "TRUE", "Yes", "YES":
			return true
		case "false", "0", "no", "False", "FALSE", "No", "NO":
			return false
		}
	}
	return defaultValue
}

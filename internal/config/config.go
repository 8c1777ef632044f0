package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Store backends accepted by STORE_BACKEND.
const (
	StoreSQLite     = "sqlite"
	StorePostgres   = "postgres"
	StoreFilesystem = "filesystem"
)

type Config struct {
	ServiceName    string
	HTTPListenAddr string
	MetricsAddr    string
	LogLevel       string

	// ProjectRoot is the directory holding one sub-directory per compose project.
	ProjectRoot  string
	StoreBackend string
	DatabaseURL  string
	SQLitePath   string

	AdminAPIKey string

	DockerBin       string
	CommandTimeout  time.Duration
	CollationLocale string
}

func Load() (*Config, error) {
	timeout, err := time.ParseDuration(getEnv("COMMAND_TIMEOUT", "5m"))
	if err != nil {
		return nil, fmt.Errorf("parse COMMAND_TIMEOUT: %w", err)
	}

	cfg := &Config{
		ServiceName:     getEnv("SERVICE_NAME", "dockpanel"),
		HTTPListenAddr:  getEnv("HTTP_LISTEN_ADDR", ":8080"),
		MetricsAddr:     getEnv("METRICS_ADDR", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ProjectRoot:     getEnv("PROJECT_ROOT", "./data/projects"),
		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", StoreSQLite)),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		SQLitePath:      getEnv("SQLITE_PATH", "./data/dockpanel.db"),
		AdminAPIKey:     getEnv("ADMIN_API_KEY", ""),
		DockerBin:       getEnv("DOCKER_BIN", "docker"),
		CommandTimeout:  timeout,
		CollationLocale: getEnv("COLLATION_LOCALE", "und"),
	}

	return cfg, nil
}

// Validate checks the settings required by the named binary. The API server
// and the MCP server need an admin key; every binary needs a usable store configuration.
func (c *Config) Validate(binary string) error {
	var missing []string

	switch c.StoreBackend {
	case StoreSQLite:
		if c.SQLitePath == "" {
			missing = append(missing, "SQLITE_PATH")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case StoreFilesystem:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want %s, %s or %s)",
			c.StoreBackend, StoreSQLite, StorePostgres, StoreFilesystem)
	}

	if c.ProjectRoot == "" {
		missing = append(missing, "PROJECT_ROOT")
	}
	if c.DockerBin == "" {
		missing = append(missing, "DOCKER_BIN")
	}

	if binary == "panel-api" || binary == "panel-mcp" {
		if c.AdminAPIKey == "" {
			missing = append(missing, "ADMIN_API_KEY")
		} else if len(c.AdminAPIKey) < 16 {
			return fmt.Errorf("ADMIN_API_KEY must be at least 16 bytes")
		}
	}

	if c.CommandTimeout <= 0 {
		return fmt.Errorf("COMMAND_TIMEOUT must be positive")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

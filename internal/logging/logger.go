package logging

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/edvin/dockpanel/internal/config"
)

// NewLogger creates a structured zerolog.Logger tagged with the service name
// and the configured store backend.
func NewLogger(cfg *config.Config) zerolog.Logger {
	ctx := zerolog.New(os.Stdout).With().Timestamp()

	if cfg.ServiceName != "" {
		ctx = ctx.Str("service", cfg.ServiceName)
	}
	if cfg.StoreBackend != "" {
		ctx = ctx.Str("store", cfg.StoreBackend)
	}

	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	return logger.Level(level)
}

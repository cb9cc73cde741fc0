/*package logging builds the zap loggers used by the aurora scripts. Library
packages never log on their own: they take a *zap.SugaredLogger through their
options and default to a no-op logger.*/
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Config selects the kind of logger New builds.
type Config struct {
	Debug bool   // Human-readable development output with caller information.
	Level string // Minimum level: debug, info, warn, or error. Empty means info.
	Quiet bool   // Discard everything.
}

// New builds a logger from cfg. Nothing global is changed.
func New(cfg Config) (*zap.SugaredLogger, error) {
	if cfg.Quiet { return zap.NewNop().Sugar(), nil }

	var zc zap.Config
	if cfg.Debug {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}

	level := strings.TrimSpace(cfg.Level)
	if level == "" && cfg.Debug { level = "debug" }
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(strings.ToLower(level))
		if err != nil { return nil, fmt.Errorf("log level '%s': %w", cfg.Level, err) }
		zc.Level = lvl
	}

	logger, err := zc.Build()
	if err != nil { return nil, fmt.Errorf("can't initialize zap logger: %w", err) }
	return logger.Sugar(), nil
}

// Nop returns a logger which discards everything.
func Nop() *zap.SugaredLogger { return zap.NewNop().Sugar() }

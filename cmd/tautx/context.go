package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"tautx/internal/config"
	"tautx/internal/logging"
	"tautx/internal/tautulli"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger from config, with the --log-level
// flag taking precedence over the file value.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		level := cfg.Logging.Level
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			level = strings.TrimSpace(*c.logLevelFlag)
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  level,
			Format: cfg.Logging.Format,
		})
	})
	return c.logger, c.loggerErr
}

// newClient constructs a Tautulli client from the resolved connection
// settings. Callers must have applied flag overrides and RequireServer first.
func (c *commandContext) newClient(cfg *config.Config) *tautulli.Client {
	timeout := time.Duration(cfg.Tautulli.TimeoutSeconds) * time.Second
	return tautulli.New(cfg.Tautulli.URL, cfg.Tautulli.APIKey, timeout)
}

package setup

import (
	"log"

	"github.com/clanhall/gatekeeper/internal/logging"
	"github.com/clanhall/gatekeeper/internal/setup/config"
	"go.uber.org/zap"
)

// App bundles the dependencies shared by the whole application.
type App struct {
	Config *config.Config // Application configuration
	Logger *zap.Logger    // Main application logger
}

// InitializeApp loads configuration and sets up logging, in that order,
// so that config errors are reported before any log files are created.
// An empty logLevel or configPath falls back to the config file values.
func InitializeApp(logDir, logLevel, configPath string) (*App, error) {
	var extraPaths []string
	if configPath != "" {
		extraPaths = append(extraPaths, configPath)
	}

	cfg, configDir, err := config.LoadConfig(extraPaths...)
	if err != nil {
		return nil, err
	}

	if logLevel == "" {
		logLevel = cfg.Debug.LogLevel
	}

	logger, err := logging.Setup(logDir, logLevel, cfg.Debug.MaxLogsToKeep)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded configuration", zap.String("config_dir", configDir))

	return &App{
		Config: cfg,
		Logger: logger,
	}, nil
}

// Cleanup flushes buffered log entries before shutdown.
func (a *App) Cleanup() {
	if err := a.Logger.Sync(); err != nil {
		log.Printf("Failed to sync logger: %v", err)
	}
}

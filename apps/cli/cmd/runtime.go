package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/abdul-hamid-achik/urlmock/packages/appinfo"
	"github.com/abdul-hamid-achik/urlmock/packages/core/config"
	"github.com/abdul-hamid-achik/urlmock/packages/core/env"
	"github.com/abdul-hamid-achik/urlmock/packages/logging"
	"github.com/abdul-hamid-achik/urlmock/packages/mockstore"
	"github.com/abdul-hamid-achik/urlmock/packages/settings"
	"go.uber.org/zap"
)

// runtime is what every command that touches fixtures needs
type runtime struct {
	cfg      *config.Config
	logger   *zap.Logger
	settings settings.Store
	store    *mockstore.Store
}

func (rt *runtime) Close() {
	_ = rt.logger.Sync()
	if err := rt.settings.Close(); err != nil {
		rt.logger.Warn("failed to close settings store", zap.Error(err))
	}
}

// loadConfig exports the env file, reads the config file and layers the
// global flags over it
func loadConfig() (*config.Config, error) {
	if envFileFlag != "" {
		if _, err := env.LoadAndExport(envFileFlag); err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
	}

	var (
		cfg *config.Config
		err error
	)
	if configFlag != "" {
		cfg, err = config.LoadConfig(configFlag)
	} else {
		var cwd string
		cwd, err = os.Getwd()
		if err == nil {
			cfg, err = config.FindAndLoadConfig(cwd)
		}
	}
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	overrides := &config.Config{
		BaseURL:   baseURLFlag,
		DataDir:   dataDirFlag,
		LogLevel:  logLevelFlag,
		LogFormat: logFormatFlag,
	}
	if noColorFlag {
		overrides.NoColor = config.BoolPtr(true)
	}
	return config.DefaultConfig().Merge(cfg).Merge(overrides), nil
}

// openRuntime loads configuration, builds the logger and opens the fixture
// store. Logs go to logOut.
func openRuntime(logOut io.Writer) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.LogLevel,
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: logOut,
	})
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	kv, err := settings.OpenSQLite(cfg.GetSettingsPath())
	if err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("failed to open settings: %w", err))
	}

	store := mockstore.New(cfg.GetDataDir(), kv,
		mockstore.WithAppInfo(appInfo()),
		mockstore.WithLogger(logger),
	)

	return &runtime{cfg: cfg, logger: logger, settings: kv, store: store}, nil
}

// appInfo prefers the ldflags values and falls back to the embedded build info
func appInfo() appinfo.Provider {
	info := appinfo.FromBuildInfo()
	if version != "dev" && version != "" {
		info.AppVersion = version
	}
	if buildTime != "unknown" && buildTime != "" {
		info.AppBuild = buildTime
	}
	return info
}

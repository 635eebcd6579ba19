package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/memodesk/memodesk/internal/config"
	"github.com/memodesk/memodesk/internal/event"
	"github.com/memodesk/memodesk/internal/memo"
	"github.com/memodesk/memodesk/internal/telemetry"
)

// app is the set of long-lived collaborators one command invocation shares.
type app struct {
	cfg     *config.Config
	logger  *telemetry.Logger
	bus     *event.Bus
	metrics *telemetry.Metrics
	svc     *memo.Service
}

// loadConfig reads memodesk.yaml and layers explicitly set flags and
// MEMODESK_* environment variables over it. Values viper merely read from the
// file are ignored; the file has already been decoded with ${VAR}
// interpolation by config.LoadFile.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}

	overrides := []struct {
		key  string
		flag string
		dst  *string
	}{
		{"storage.driver", "driver", &cfg.Storage.Driver},
		{"storage.data_dir", "data-dir", &cfg.Storage.DataDir},
		{"storage.file", "", &cfg.Storage.File},
		{"logging.level", "", &cfg.Logging.Level},
		{"logging.format", "", &cfg.Logging.Format},
	}
	for _, o := range overrides {
		if v, ok := explicitSetting(o.key, o.flag); ok {
			*o.dst = v
		}
	}
	if verboseRequested() {
		cfg.Logging.Level = "debug"
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// explicitSetting returns the viper value for key when it was set by the
// named persistent flag or by its MEMODESK_* environment variable.
func explicitSetting(key, flag string) (string, bool) {
	if flag != "" {
		if f := rootCmd.PersistentFlags().Lookup(flag); f != nil && f.Changed {
			return viper.GetString(key), true
		}
	}
	if v, ok := os.LookupEnv(envKey(key)); ok && v != "" {
		return v, true
	}
	return "", false
}

func verboseRequested() bool {
	v, ok := explicitSetting("verbose", "verbose")
	if !ok {
		return false
	}
	b, _ := strconv.ParseBool(v)
	return b
}

// envKey maps a config key to its environment variable, storage.data_dir to
// MEMODESK_STORAGE_DATA_DIR.
func envKey(key string) string {
	return "MEMODESK_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// newLogger builds the logger described by cfg, teeing to the log file if set.
func newLogger(cfg *config.Config) (*telemetry.Logger, error) {
	logger := telemetry.NewLoggerWith(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if cfg.Logging.File != "" {
		if err := logger.WithFile(cfg.Logging.File); err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
	}
	return logger, nil
}

// openApp wires config, logging, hooks, metrics and the memo service.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	bus := event.NewBus(logger)
	hooks, err := event.BuildHooks(cfg.Hooks, logger)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to build hooks: %w", err)
	}
	bus.RegisterAll(hooks)
	if len(hooks) > 0 {
		logger.Debug("Hooks registered", "hooks", bus.HookNames())
	}

	metrics := telemetry.NewMetrics()
	if cfg.Metrics.Enabled {
		exp, err := telemetry.NewJSONLExporter(cfg.Metrics.Path, cfg.Metrics.MaxBytes)
		if err != nil {
			logger.Close()
			return nil, err
		}
		metrics.SetExporter(exp)
	}

	svc, err := memo.Open(cfg, memo.Options{Bus: bus, Metrics: metrics, Logger: logger})
	if err != nil {
		metrics.Close()
		logger.Close()
		return nil, err
	}

	return &app{cfg: cfg, logger: logger, bus: bus, metrics: metrics, svc: svc}, nil
}

// Close closes the store, drains hooks and flushes metrics.
func (a *app) Close() error {
	err := a.svc.Close()
	a.bus.Wait()
	a.metrics.Flush("memodesk.exit", nil)
	_ = a.metrics.Close()
	_ = a.logger.Close()
	return err
}

// watchConfig reloads logging settings when the config file changes while a
// long-running command (serve, mcp-server) is up.
func (a *app) watchConfig() {
	path := viper.ConfigFileUsed()
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		if e.Has(fsnotify.Write) || e.Has(fsnotify.Create) {
			a.reloadConfig(e.Name)
		}
	})
	viper.WatchConfig()
	a.logger.Debug("Watching config file", "file", path)
}

// reloadConfig applies the logging level from path. Storage settings need a
// restart; --verbose keeps debug regardless of the file.
func (a *app) reloadConfig(path string) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		a.logger.Warn("Ignoring invalid config change", "file", path, "error", err)
		return
	}
	if verboseRequested() {
		return
	}
	a.cfg.Logging = cfg.Logging
	a.logger.SetLevel(cfg.Logging.Level)
	a.logger.Info("Config reloaded", "file", path, "log_level", cfg.Logging.Level)
}

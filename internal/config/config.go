package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/cleancrew/crewboard/internal/constants"
)

// EnvPrefix prefixes every environment override, e.g. CREWBOARD_SERVICE_LOG_LEVEL
const EnvPrefix = "CREWBOARD_"

// Config holds the application configuration
type Config struct {
	App      AppConfig      `koanf:"app"`
	Service  ServiceConfig  `koanf:"service"`
	Calendar CalendarConfig `koanf:"calendar"`
	Refresh  RefreshConfig  `koanf:"refresh"`
}

// AppConfig holds the HTTP listener settings
type AppConfig struct {
	Port int `koanf:"port"`
}

// ServiceConfig holds the service configuration
type ServiceConfig struct {
	StateFile string `koanf:"state_file"`
	LogLevel  string `koanf:"log_level"`
	LogFile   string `koanf:"log_file"` // optional rotated JSON log
}

// CalendarConfig holds the initial calendar view
type CalendarConfig struct {
	DefaultMode constants.ViewMode `koanf:"default_mode"`
}

// RefreshConfig holds the live refresh tuning
type RefreshConfig struct {
	Debounce time.Duration `koanf:"debounce"`
	Schedule string        `koanf:"schedule"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.port":              8888,
		"service.state_file":    "data/crewboard.db",
		"service.log_level":     "info",
		"service.log_file":      "",
		"calendar.default_mode": string(constants.ViewModeWeek),
		"refresh.debounce":      "250ms",
		"refresh.schedule":      "@every 5m",
	}
}

// Load reads defaults, the TOML file at path (skipped when empty) and environment overrides
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	// PORT is honoured for container platforms that inject it
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT value %q: %w", port, err)
		}
		if err := k.Set("app.port", p); err != nil {
			return nil, fmt.Errorf("failed to apply PORT: %w", err)
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.TextUnmarshallerHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	cfg.Service.LogLevel = strings.ToLower(cfg.Service.LogLevel)
	cfg.Calendar.DefaultMode = constants.ViewMode(strings.ToLower(string(cfg.Calendar.DefaultMode)))

	// Ensure the state file path is absolute
	if !filepath.IsAbs(cfg.Service.StateFile) {
		base := "."
		if path != "" {
			base = filepath.Join(filepath.Dir(path), "..")
		}
		abs, err := filepath.Abs(filepath.Join(base, cfg.Service.StateFile))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve state file path: %w", err)
		}
		cfg.Service.StateFile = abs
	}

	if cfg.Service.LogFile != "" && !filepath.IsAbs(cfg.Service.LogFile) {
		abs, err := filepath.Abs(cfg.Service.LogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve log file path: %w", err)
		}
		cfg.Service.LogFile = abs
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envKey maps CREWBOARD_SECTION_SOME_KEY to section.some_key
func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key, value
	}
	return section + "." + rest, value
}

// validate reports every problem in the configuration at once
func validate(cfg *Config) error {
	var result *multierror.Error

	if cfg.App.Port < 1 || cfg.App.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("app.port must be between 1 and 65535, got %d", cfg.App.Port))
	}
	if cfg.Service.StateFile == "" {
		result = multierror.Append(result, fmt.Errorf("service.state_file is required"))
	}
	if _, err := zerolog.ParseLevel(cfg.Service.LogLevel); err != nil || cfg.Service.LogLevel == "" {
		result = multierror.Append(result, fmt.Errorf("invalid service.log_level: %q", cfg.Service.LogLevel))
	}
	if !cfg.Calendar.DefaultMode.IsValid() {
		result = multierror.Append(result, fmt.Errorf("invalid calendar.default_mode: %q (expected one of %v)",
			cfg.Calendar.DefaultMode, constants.GetAllViewModes()))
	}
	if cfg.Refresh.Debounce <= 0 {
		result = multierror.Append(result, fmt.Errorf("refresh.debounce must be positive, got %s", cfg.Refresh.Debounce))
	}
	if _, err := cron.ParseStandard(cfg.Refresh.Schedule); err != nil {
		result = multierror.Append(result, fmt.Errorf("invalid refresh.schedule %q: %w", cfg.Refresh.Schedule, err))
	}

	return result.ErrorOrNil()
}

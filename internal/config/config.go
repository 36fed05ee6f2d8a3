package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"soundctl.click/internal/endpoint"
	"soundctl.click/internal/fs"
	"soundctl.click/internal/platform"
)

// RoleAuto selects the role search instead of a single role
const RoleAuto = "auto"

// FileLoggingConfig represents file-based logging configuration
type FileLoggingConfig struct {
	Enabled    bool   `json:"enabled"`      // Whether file logging is enabled
	Filename   string `json:"filename"`     // Log file path (empty = XDG cache path)
	MaxSizeMB  int    `json:"max_size_mb"`  // Max file size in MB before rotation
	MaxBackups int    `json:"max_backups"`  // Max number of backup files to keep
	MaxAgeDays int    `json:"max_age_days"` // Max age in days before deletion
	Compress   bool   `json:"compress"`     // Whether to compress rotated files
}

// ChimeConfig controls the confirmation sound played after a render change
type ChimeConfig struct {
	Enabled     bool    `json:"enabled"`
	File        string  `json:"file"`         // Sound file; empty plays a generated tone
	Volume      float64 `json:"volume"`       // Playback gain (0.0 to 1.0)
	FrequencyHz int     `json:"frequency_hz"` // Generated tone frequency
	DurationMs  int     `json:"duration_ms"`  // Generated tone length
}

// Config represents SoundCtl configuration
type Config struct {
	Backend          string             `json:"backend"`            // Audio backend (auto, wasapi, miniaudio, memory)
	DefaultRole      string             `json:"default_role"`       // Role used for default device selectors
	LogLevel         string             `json:"log_level"`          // Log level (debug, info, warn, error)
	ExitDelaySeconds int                `json:"exit_delay_seconds"` // Pause before exiting after an error
	StrictExitCode   bool               `json:"strict_exit_code"`   // Exit 1 instead of 0 on failure
	Notify           bool               `json:"notify"`             // Desktop notification with the result
	Chime            *ChimeConfig       `json:"chime,omitempty"`
	FileLogging      *FileLoggingConfig `json:"file_logging,omitempty"`
}

// XDGInterface defines the interface for XDG directory operations
type XDGInterface interface {
	GetConfigPaths(filename string) []string
	GetCachePath(purpose string) string
	FindDataFile(relativePath string) string
}

// ConfigManager handles loading, saving, and validating configuration
type ConfigManager struct {
	fs  afero.Fs
	xdg XDGInterface
}

// NewConfigManager creates a configuration manager on the OS filesystem
func NewConfigManager() *ConfigManager {
	return NewConfigManagerWithFilesystem(fs.NewDefaultFactory().Production())
}

// NewConfigManagerWithFilesystem creates a configuration manager reading
// through fsys
func NewConfigManagerWithFilesystem(fsys afero.Fs) *ConfigManager {
	return NewConfigManagerWithDependencies(fsys, NewXDGDirsWithFilesystem(fsys))
}

// NewConfigManagerWithDependencies creates a configuration manager with an
// injected filesystem and directory layout
func NewConfigManagerWithDependencies(fsys afero.Fs, xdg XDGInterface) *ConfigManager {
	slog.Debug("creating new config manager")
	return &ConfigManager{fs: fsys, xdg: xdg}
}

// Filesystem returns the filesystem configuration is read from and written to
func (cm *ConfigManager) Filesystem() afero.Fs {
	return cm.fs
}

// GetDefaultConfig returns the default configuration
func (cm *ConfigManager) GetDefaultConfig() *Config {
	defaultConfig := &Config{
		Backend:          platform.Auto,
		DefaultRole:      endpoint.Console.String(),
		LogLevel:         "warn",
		ExitDelaySeconds: 5,
		StrictExitCode:   false,
		Notify:           false,
		Chime: &ChimeConfig{
			Enabled:     false,
			File:        "",
			Volume:      0.5,
			FrequencyHz: 880,
			DurationMs:  120,
		},
		FileLogging: &FileLoggingConfig{
			Enabled:    false,
			Filename:   "",
			MaxSizeMB:  5,
			MaxBackups: 3,
			MaxAgeDays: 14,
			Compress:   true,
		},
	}

	slog.Debug("generated default config",
		"backend", defaultConfig.Backend,
		"default_role", defaultConfig.DefaultRole,
		"log_level", defaultConfig.LogLevel,
		"exit_delay_seconds", defaultConfig.ExitDelaySeconds)

	return defaultConfig
}

// LoadFromFile loads configuration from a specific file. Keys missing from
// the file keep their default values. The result is not validated, so that
// command-line overrides still get a chance to replace bad values; callers
// run ValidateConfig once everything is applied.
func (cm *ConfigManager) LoadFromFile(filePath string) (*Config, error) {
	slog.Debug("loading config from file", "file_path", filePath)

	data, err := afero.ReadFile(cm.fs, filePath)
	if err != nil {
		slog.Error("failed to read config file", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := cm.GetDefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		slog.Error("failed to parse config JSON", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	slog.Debug("config loaded successfully",
		"file_path", filePath,
		"backend", config.Backend,
		"default_role", config.DefaultRole,
		"log_level", config.LogLevel)

	return config, nil
}

// SaveToFile saves configuration to a specific file
func (cm *ConfigManager) SaveToFile(config *Config, filePath string) error {
	slog.Debug("saving config to file", "file_path", filePath)

	if err := cm.ValidateConfig(config); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	dir := filepath.Dir(filePath)
	if err := cm.fs.MkdirAll(dir, 0755); err != nil {
		slog.Error("failed to create config directory", "directory", dir, "error", err)
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(cm.fs, filePath, data, 0644); err != nil {
		slog.Error("failed to write config file", "file_path", filePath, "error", err)
		return fmt.Errorf("failed to write config file: %w", err)
	}

	slog.Info("config saved successfully", "file_path", filePath)
	return nil
}

// LoadConfig loads the first config.json found by XDG path discovery, or
// the defaults when there is none
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	configPaths := cm.xdg.GetConfigPaths("config.json")

	slog.Debug("searching for config file", "paths", configPaths)

	for i, configPath := range configPaths {
		if _, err := cm.fs.Stat(configPath); err == nil {
			slog.Debug("found config file", "path_index", i, "path", configPath)
			return cm.LoadFromFile(configPath)
		}
	}

	slog.Debug("no config file found, using defaults")
	return cm.GetDefaultConfig(), nil
}

// Load reads explicitPath when set, otherwise discovers the config file,
// then applies environment overrides
func (cm *ConfigManager) Load(explicitPath string) (*Config, error) {
	var (
		config *Config
		err    error
	)
	if explicitPath != "" {
		config, err = cm.LoadFromFile(explicitPath)
	} else {
		config, err = cm.LoadConfig()
	}
	if err != nil {
		return nil, err
	}
	return cm.ApplyEnvironmentOverrides(config), nil
}

// ValidateConfig validates configuration values and reports every problem
// found
func (cm *ConfigManager) ValidateConfig(config *Config) error {
	var errs []error

	if !IsValidBackend(config.Backend) {
		errs = append(errs, fmt.Errorf("invalid backend '%s', must be one of: %s",
			config.Backend, strings.Join(SupportedBackends(), ", ")))
	}

	if !IsValidRole(config.DefaultRole) {
		errs = append(errs, fmt.Errorf("invalid default role '%s', must be one of: %s",
			config.DefaultRole, strings.Join(supportedRoles(), ", ")))
	}

	if config.LogLevel != "" {
		if _, err := ParseLogLevel(config.LogLevel); err != nil {
			errs = append(errs, err)
		}
	}

	if config.ExitDelaySeconds < 0 {
		errs = append(errs, fmt.Errorf("exit_delay_seconds must be >= 0, got %d", config.ExitDelaySeconds))
	}

	if chime := config.Chime; chime != nil {
		if chime.Volume < 0.0 || chime.Volume > 1.0 {
			errs = append(errs, fmt.Errorf("chime volume must be between 0.0 and 1.0, got %f", chime.Volume))
		}
		if chime.FrequencyHz < 0 {
			errs = append(errs, fmt.Errorf("chime frequency_hz must be >= 0, got %d", chime.FrequencyHz))
		}
		if chime.DurationMs < 0 {
			errs = append(errs, fmt.Errorf("chime duration_ms must be >= 0, got %d", chime.DurationMs))
		}
	}

	if fileLogging := config.FileLogging; fileLogging != nil {
		if fileLogging.MaxSizeMB < 0 {
			errs = append(errs, fmt.Errorf("file logging max_size_mb must be >= 0, got %d", fileLogging.MaxSizeMB))
		}
		if fileLogging.MaxBackups < 0 {
			errs = append(errs, fmt.Errorf("file logging max_backups must be >= 0, got %d", fileLogging.MaxBackups))
		}
		if fileLogging.MaxAgeDays < 0 {
			errs = append(errs, fmt.Errorf("file logging max_age_days must be >= 0, got %d", fileLogging.MaxAgeDays))
		}
	}

	if err := errors.Join(errs...); err != nil {
		slog.Error("config validation failed", "errors", len(errs), "error", err)
		return fmt.Errorf("config validation failed: %w", err)
	}

	slog.Debug("config validation passed")
	return nil
}

// ApplyEnvironmentOverrides applies environment variable overrides to a copy
// of config. Invalid values are logged and ignored.
func (cm *ConfigManager) ApplyEnvironmentOverrides(config *Config) *Config {
	result := *config
	if config.Chime != nil {
		chime := *config.Chime
		result.Chime = &chime
	}
	if config.FileLogging != nil {
		fileLogging := *config.FileLogging
		result.FileLogging = &fileLogging
	}

	if backend := os.Getenv("SOUNDCTL_BACKEND"); backend != "" {
		if IsValidBackend(backend) {
			result.Backend = backend
			slog.Debug("applied backend override from environment", "value", backend)
		} else {
			slog.Warn("invalid SOUNDCTL_BACKEND environment variable", "value", backend)
		}
	}

	if role := os.Getenv("SOUNDCTL_DEFAULT_ROLE"); role != "" {
		if IsValidRole(role) {
			result.DefaultRole = role
			slog.Debug("applied default role override from environment", "value", role)
		} else {
			slog.Warn("invalid SOUNDCTL_DEFAULT_ROLE environment variable", "value", role)
		}
	}

	if logLevel := os.Getenv("SOUNDCTL_LOG_LEVEL"); logLevel != "" {
		if _, err := ParseLogLevel(logLevel); err == nil {
			result.LogLevel = logLevel
			slog.Debug("applied log level override from environment", "value", logLevel)
		} else {
			slog.Warn("invalid SOUNDCTL_LOG_LEVEL environment variable", "value", logLevel)
		}
	}

	if notifyStr := os.Getenv("SOUNDCTL_NOTIFY"); notifyStr != "" {
		if notify, err := strconv.ParseBool(notifyStr); err == nil {
			result.Notify = notify
			slog.Debug("applied notify override from environment", "value", notify)
		} else {
			slog.Warn("invalid SOUNDCTL_NOTIFY environment variable", "value", notifyStr, "error", err)
		}
	}

	if chimeStr := os.Getenv("SOUNDCTL_CHIME"); chimeStr != "" {
		if enabled, err := strconv.ParseBool(chimeStr); err == nil {
			if result.Chime == nil {
				result.Chime = cm.GetDefaultConfig().Chime
			}
			result.Chime.Enabled = enabled
			slog.Debug("applied chime override from environment", "value", enabled)
		} else {
			slog.Warn("invalid SOUNDCTL_CHIME environment variable", "value", chimeStr, "error", err)
		}
	}

	return &result
}

// ResolveLogFilePath resolves the log file path using the XDG cache
// directory when filename is empty
func (cm *ConfigManager) ResolveLogFilePath(filename string) string {
	if filename != "" {
		return filename
	}
	return filepath.Join(cm.xdg.GetCachePath("logs"), "soundctl.log")
}

// UserConfigPath returns where a new user config file belongs: the first
// path of XDG discovery
func (cm *ConfigManager) UserConfigPath() string {
	paths := cm.xdg.GetConfigPaths("config.json")
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}

// ResolveLockFilePath returns the lock file that serializes device changes
// across processes
func (cm *ConfigManager) ResolveLockFilePath() string {
	return filepath.Join(cm.xdg.GetCachePath(""), "soundctl.lock")
}

// ResolveChimeFile returns file unchanged when absolute, otherwise the first
// match under the XDG data directories. An empty result means not found.
func (cm *ConfigManager) ResolveChimeFile(file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return cm.xdg.FindDataFile(filepath.Join("sounds", file))
}

// ParseLogLevel maps a level name to its slog level
func ParseLogLevel(logLevel string) (slog.Level, error) {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level '%s', must be one of: debug, info, warn, error", logLevel)
	}
}

// ApplyLogLevelWithWriter sets the default slog logger to a text handler
// over writer at logLevel
func ApplyLogLevelWithWriter(logLevel string, writer io.Writer) error {
	level, err := ParseLogLevel(logLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level})))
	return nil
}

// SupportedBackends returns every backend name the configuration accepts
func SupportedBackends() []string {
	return []string{platform.Auto, platform.WASAPI, platform.Miniaudio, platform.Memory}
}

// IsValidBackend checks if a backend name is supported. Empty means auto.
func IsValidBackend(backend string) bool {
	return backend == "" || slices.Contains(SupportedBackends(), backend)
}

func supportedRoles() []string {
	roles := []string{RoleAuto}
	for _, role := range endpoint.Roles {
		roles = append(roles, role.String())
	}
	return roles
}

// IsValidRole checks if role names a device role or auto. Empty means
// console.
func IsValidRole(role string) bool {
	if role == RoleAuto {
		return true
	}
	_, err := endpoint.ParseRole(role)
	return err == nil
}

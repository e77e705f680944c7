// internal/config/config.go
//
// This package handles configuration and the vadmin home directory.
// The home directory holds config.yaml and the logs/ folder.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// HomeEnv overrides the directory vadmin keeps its config and logs in.
	HomeEnv = "VADMIN_HOME"
	// LogLevelEnv overrides logging.level.
	LogLevelEnv = "VADMIN_LOG_LEVEL"

	defaultServiceURL = "http://localhost:9090"
	defaultTimeout    = 10 * time.Second
	defaultLogFile    = "logs/vadmin.log"
	defaultLogLevel   = "info"
)

const defaultConfigYAML = `# vadmin configuration
version: 1

# Version action service. VADMIN_URL and VADMIN_TIMEOUT override these.
service:
  url: http://localhost:9090
  timeout: 10s

# Logbook location (relative paths resolve against the vadmin home directory).
logging:
  file: logs/vadmin.log
  level: info

ui:
  # Enter confirms the schedule/unschedule dialogs.
  confirm_with_enter: true
`

// ServiceConfig describes how to reach the version action service.
type ServiceConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig controls the logbook.
type LoggingConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// UIConfig holds TUI preferences.
type UIConfig struct {
	ConfirmWithEnter *bool `yaml:"confirm_with_enter,omitempty"`
}

// FileConfig models config.yaml.
type FileConfig struct {
	Version int           `yaml:"version"`
	Service ServiceConfig `yaml:"service"`
	Logging LoggingConfig `yaml:"logging"`
	UI      UIConfig      `yaml:"ui"`
}

// Config holds the runtime configuration for vadmin.
type Config struct {
	// HomeDir is where config.yaml and logs live.
	HomeDir string

	// Path is the config file that was loaded (it may not exist).
	Path string

	File FileConfig
}

// DefaultHomeDir resolves the vadmin home directory.
func DefaultHomeDir() (string, error) {
	if home := strings.TrimSpace(os.Getenv(HomeEnv)); home != "" {
		return filepath.Clean(home), nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: resolve user config dir: %w", err)
	}
	return filepath.Join(base, "vadmin"), nil
}

// Load reads the config at path. An empty path means HomeDir/config.yaml.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	home := filepath.Dir(path)
	if path == "" {
		var err error
		home, err = DefaultHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, "config.yaml")
	}
	cfg := &Config{
		HomeDir: home,
		Path:    path,
		File:    defaultFileConfig(),
	}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init writes the default config file if none exists and returns its path.
func Init(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		home, err := DefaultHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("config: ensure home dir: %w", err)
	}
	if err := ensureConfigFile(path); err != nil {
		return "", fmt.Errorf("config: write %s: %w", path, err)
	}
	return path, nil
}

// LogPath returns the absolute path of the logbook file.
func (c *Config) LogPath() string {
	return resolvePath(c.HomeDir, c.File.Logging.File)
}

// LogLevel returns the logbook level, preferring VADMIN_LOG_LEVEL.
func (c *Config) LogLevel() string {
	if level := strings.TrimSpace(os.Getenv(LogLevelEnv)); level != "" {
		return strings.ToLower(level)
	}
	return c.File.Logging.Level
}

// ServiceURL returns the configured base URL of the version action service.
func (c *Config) ServiceURL() string {
	return c.File.Service.URL
}

// ConfirmWithEnter reports whether Enter confirms schedule/unschedule dialogs.
func (c *Config) ConfirmWithEnter() bool {
	if c == nil || c.File.UI.ConfirmWithEnter == nil {
		return true
	}
	return *c.File.UI.ConfirmWithEnter
}

func (c *Config) load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", c.Path, err)
	}

	parsed := defaultFileConfig()
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", c.Path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.File = parsed
	return nil
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Version: 1,
		Service: ServiceConfig{
			URL:     defaultServiceURL,
			Timeout: defaultTimeout,
		},
		Logging: LoggingConfig{
			File:  defaultLogFile,
			Level: defaultLogLevel,
		},
	}
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	if fc.Service.Timeout == 0 {
		fc.Service.Timeout = defaultTimeout
	}
	if strings.TrimSpace(fc.Logging.File) == "" {
		fc.Logging.File = defaultLogFile
	}
	if strings.TrimSpace(fc.Logging.Level) == "" {
		fc.Logging.Level = defaultLogLevel
	}
}

func (fc *FileConfig) normalize() {
	fc.Service.URL = strings.TrimRight(strings.TrimSpace(fc.Service.URL), "/")
	if fc.Service.URL == "" {
		fc.Service.URL = defaultServiceURL
	}
	fc.Logging.File = strings.TrimSpace(fc.Logging.File)
	fc.Logging.Level = strings.ToLower(strings.TrimSpace(fc.Logging.Level))
}

func (fc *FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if !strings.HasPrefix(fc.Service.URL, "http://") && !strings.HasPrefix(fc.Service.URL, "https://") {
		return fmt.Errorf("service.url must start with http:// or https://")
	}
	if fc.Service.Timeout < 0 {
		return fmt.Errorf("service.timeout must not be negative")
	}
	switch fc.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func ensureConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

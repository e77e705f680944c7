package versionapi

import (
	"os"
	"strings"
	"time"

	"github.com/kingrea/vadmin/internal/config"
)

const (
	// DefaultBaseURL is used when neither config nor environment name a service.
	DefaultBaseURL = "http://localhost:9090"
	// DefaultTimeout bounds a single request, including reading the response.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxBodyBytes limits how much of a response body is read.
	DefaultMaxBodyBytes int64 = 1 << 20
)

// Settings captures how the client reaches the version action service.
type Settings struct {
	BaseURL      string
	Timeout      time.Duration
	MaxBodyBytes int64
}

// SettingsFromConfig builds Settings using the config file and environment overrides.
func SettingsFromConfig(cfg *config.Config) Settings {
	settings := Settings{
		BaseURL:      DefaultBaseURL,
		Timeout:      DefaultTimeout,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
	if cfg != nil {
		if url := strings.TrimSpace(cfg.ServiceURL()); url != "" {
			settings.BaseURL = url
		}
		if cfg.File.Service.Timeout > 0 {
			settings.Timeout = cfg.File.Service.Timeout
		}
	}
	settings.applyEnvOverrides()
	settings.normalize()
	return settings
}

func (s *Settings) applyEnvOverrides() {
	if s == nil {
		return
	}
	if url := strings.TrimSpace(os.Getenv("VADMIN_URL")); url != "" {
		s.BaseURL = url
	}
	if value := strings.TrimSpace(os.Getenv("VADMIN_TIMEOUT")); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil && parsed > 0 {
			s.Timeout = parsed
		}
	}
}

func (s *Settings) normalize() {
	if s == nil {
		return
	}
	s.BaseURL = strings.TrimRight(strings.TrimSpace(s.BaseURL), "/")
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.MaxBodyBytes <= 0 {
		s.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// WithBaseURL returns a copy of s pointing at url. Blank url keeps s unchanged.
func (s Settings) WithBaseURL(url string) Settings {
	if strings.TrimSpace(url) == "" {
		return s
	}
	s.BaseURL = url
	s.normalize()
	return s
}

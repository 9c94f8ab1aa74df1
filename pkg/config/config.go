package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

var (
	errInvalidPort        = errors.New("config: invalid port")
	errInvalidServiceURL  = errors.New("config: ESTIMATOR_SERVICE_URL must be an absolute http(s) URL")
	errNegativeTimeout    = errors.New("config: ESTIMATOR_TIMEOUT must not be negative")
	errNonPositiveTimings = errors.New("config: progress intervals must be positive")
	errInvalidSessionTTL  = errors.New("config: session TTL and reap interval must be positive")
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Gateway   GatewayConfig
	Estimator EstimatorConfig
	Progress  ProgressConfig
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
}

type GatewayConfig struct {
	Port            string        `envconfig:"GATEWAY_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"GATEWAY_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"GATEWAY_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `envconfig:"GATEWAY_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"GATEWAY_SHUTDOWN_TIMEOUT" default:"30s"`

	// Sessions untouched for SessionTTL are deleted by a reaper running every
	// SessionReapInterval.
	SessionTTL          time.Duration `envconfig:"GATEWAY_SESSION_TTL" default:"30m"`
	SessionReapInterval time.Duration `envconfig:"GATEWAY_SESSION_REAP_INTERVAL" default:"1m"`
}

// EstimatorConfig points at the external analysis service. A zero Timeout
// leaves the outbound call unbounded.
type EstimatorConfig struct {
	BaseURL string        `envconfig:"ESTIMATOR_SERVICE_URL" default:"http://localhost:8000"`
	Timeout time.Duration `envconfig:"ESTIMATOR_TIMEOUT" default:"0s"`
}

type ProgressConfig struct {
	TickInterval    time.Duration `envconfig:"PROGRESS_TICK_INTERVAL" default:"400ms"`
	MessageInterval time.Duration `envconfig:"PROGRESS_MESSAGE_INTERVAL" default:"1800ms"`
	CompletionHold  time.Duration `envconfig:"PROGRESS_COMPLETION_HOLD" default:"1200ms"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Gateway.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Gateway.Port)
	}

	u, err := url.Parse(c.Estimator.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", errInvalidServiceURL, c.Estimator.BaseURL)
	}

	if c.Estimator.Timeout < 0 {
		return fmt.Errorf("%w: got %s", errNegativeTimeout, c.Estimator.Timeout)
	}

	if c.Gateway.SessionTTL <= 0 || c.Gateway.SessionReapInterval <= 0 {
		return fmt.Errorf("%w: ttl=%s interval=%s",
			errInvalidSessionTTL, c.Gateway.SessionTTL, c.Gateway.SessionReapInterval)
	}

	p := c.Progress
	if p.TickInterval <= 0 || p.MessageInterval <= 0 || p.CompletionHold <= 0 {
		return fmt.Errorf("%w: tick=%s message=%s hold=%s",
			errNonPositiveTimings, p.TickInterval, p.MessageInterval, p.CompletionHold)
	}

	return nil
}

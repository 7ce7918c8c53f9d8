package forceoauth

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/giantswarm/force-oauth/instrumentation"
)

// Config holds the userinfo client configuration
type Config struct {
	// ConnectTimeout bounds establishing the TCP/TLS connection.
	// Default: 10 seconds
	ConnectTimeout time.Duration

	// ReadTimeout bounds waiting for the response headers once the request is sent.
	// Default: 30 seconds
	ReadTimeout time.Duration

	// HTTPClient is a custom HTTP client for userinfo requests.
	// When set, ConnectTimeout and ReadTimeout are not applied; the client's
	// transport is wrapped to add the Authorization header.
	HTTPClient *http.Client

	// RetryPolicy overrides the backoff applied to transient failures.
	// Default: DefaultRetryPolicy()
	RetryPolicy *RetryPolicy

	// Outbound rate limiting configuration
	RateLimit RateLimitConfig

	// Logger for structured logging (optional, uses default if not provided)
	Logger *slog.Logger

	// Instrumentation provides tracing and metrics (optional, no-op if not provided)
	Instrumentation *instrumentation.Instrumentation
}

// RateLimitConfig throttles HTTP attempts made by one Client, retries included.
type RateLimitConfig struct {
	// Rate is attempts per second. Zero disables limiting.
	Rate float64

	// Burst is the maximum burst size. Defaults to 1 when Rate is set.
	Burst int
}

// applyDefaults validates the configuration and fills in defaults.
// Invalid durations are logged and replaced; an invalid retry policy is an error.
func applyDefaults(config *Config) (*Config, error) {
	c := *config

	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Instrumentation == nil {
		c.Instrumentation = instrumentation.NewNoop()
	}

	applyTimeoutDefaults(&c, c.Logger)

	if c.RetryPolicy == nil {
		c.RetryPolicy = DefaultRetryPolicy()
	} else {
		policy := *c.RetryPolicy
		c.RetryPolicy = &policy
	}
	if err := c.RetryPolicy.validate(); err != nil {
		return nil, fmt.Errorf("invalid retry policy: %w", err)
	}

	if err := applyRateLimitDefaults(&c.RateLimit); err != nil {
		return nil, err
	}

	return &c, nil
}

// applyTimeoutDefaults sets default values for the transport timeouts.
func applyTimeoutDefaults(config *Config, logger *slog.Logger) {
	if config.ConnectTimeout < 0 {
		logger.Warn("Negative ConnectTimeout, using default",
			"configured", config.ConnectTimeout,
			"default", DefaultConnectTimeout)
		config.ConnectTimeout = 0
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = DefaultConnectTimeout
	}

	if config.ReadTimeout < 0 {
		logger.Warn("Negative ReadTimeout, using default",
			"configured", config.ReadTimeout,
			"default", DefaultReadTimeout)
		config.ReadTimeout = 0
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = DefaultReadTimeout
	}
}

// applyRateLimitDefaults sets defaults for outbound rate limiting.
func applyRateLimitDefaults(rl *RateLimitConfig) error {
	if rl.Rate < 0 {
		return fmt.Errorf("rate limit must not be negative, got %v", rl.Rate)
	}
	if rl.Burst < 0 {
		return fmt.Errorf("rate limit burst must not be negative, got %d", rl.Burst)
	}
	if rl.Rate > 0 && rl.Burst == 0 {
		rl.Burst = 1
	}
	return nil
}

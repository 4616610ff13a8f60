package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/platinummonkey/apphost/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Plugin loading configuration
	Plugins PluginsConfig

	// Outbound network configuration
	Network NetworkConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// PluginsConfig holds plugin discovery settings
type PluginsConfig struct {
	// Specifiers are path[:name] strings loaded in order
	Specifiers []string
	// SearchDirs are scanned for plugin module directories
	SearchDirs []string

	LoadConcurrency int
	StartupTimeout  time.Duration
}

// NetworkConfig holds settings for the HTTP client handed to plugins. Proxy
// settings are read separately from the standard proxy variables.
type NetworkConfig struct {
	OutboundTimeout time.Duration
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel  string
	LogFormat string

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// OTel returns the tracing settings
func (o ObservabilityConfig) OTel() observability.OTelConfig {
	return observability.OTelConfig{
		Enabled:        o.OTelEnabled,
		Endpoint:       o.OTelEndpoint,
		ServiceName:    o.OTelServiceName,
		ServiceVersion: o.OTelServiceVersion,
		Insecure:       o.OTelInsecure,
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server:        loadServerConfig(),
		Plugins:       loadPluginsConfig(),
		Network:       loadNetworkConfig(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadServerConfig loads server configuration from environment
func loadServerConfig() ServerConfig {
	return ServerConfig{
		Host:            getEnv("APPHOST_HOST", "0.0.0.0"),
		Port:            getEnv("APPHOST_PORT", "8080"),
		ReadTimeout:     getEnvDuration("APPHOST_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getEnvDuration("APPHOST_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:     getEnvDuration("APPHOST_IDLE_TIMEOUT", 60*time.Second),
		ShutdownTimeout: getEnvDuration("APPHOST_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadPluginsConfig() PluginsConfig {
	return PluginsConfig{
		Specifiers:      getEnvList("APPHOST_PLUGINS"),
		SearchDirs:      getEnvList("APPHOST_PLUGIN_PATH"),
		LoadConcurrency: getEnvInt("APPHOST_PLUGIN_LOAD_CONCURRENCY", 4),
		StartupTimeout:  getEnvDuration("APPHOST_PLUGIN_STARTUP_TIMEOUT", 30*time.Second),
	}
}

func loadNetworkConfig() NetworkConfig {
	return NetworkConfig{
		OutboundTimeout: getEnvDuration("APPHOST_OUTBOUND_TIMEOUT", 30*time.Second),
	}
}

// loadObservabilityConfig loads observability configuration from environment
func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:           getEnv("APPHOST_LOG_LEVEL", "info"),
		LogFormat:          getEnv("APPHOST_LOG_FORMAT", observability.FormatJSON),
		MetricsEnabled:     getEnvBool("APPHOST_METRICS_ENABLED", true),
		OTelEnabled:        getEnvBool("APPHOST_OTEL_ENABLED", false),
		OTelEndpoint:       getEnv("APPHOST_OTEL_ENDPOINT", "localhost:4317"),
		OTelServiceName:    getEnv("APPHOST_OTEL_SERVICE_NAME", "apphost"),
		OTelServiceVersion: getEnv("APPHOST_OTEL_SERVICE_VERSION", "1.0.0"),
		OTelInsecure:       getEnvBool("APPHOST_OTEL_INSECURE", true),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port: %s", c.Server.Port)
	}

	if c.Plugins.LoadConcurrency < 1 {
		return fmt.Errorf("plugin load concurrency must be at least 1, got %d", c.Plugins.LoadConcurrency)
	}
	if c.Plugins.StartupTimeout <= 0 {
		return fmt.Errorf("plugin startup timeout must be positive")
	}

	if _, err := observability.ParseLevel(c.Observability.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.Observability.LogFormat) {
	case observability.FormatJSON, observability.FormatText:
	default:
		return fmt.Errorf("invalid log format: %s (must be json or text)", c.Observability.LogFormat)
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty items
func getEnvList(key string) []string {
	return SplitList(os.Getenv(key))
}

// SplitList splits a comma separated list, trimming spaces and dropping
// empty items.
func SplitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Region    RegionConfig    `mapstructure:"region"`
	Upstream  UpstreamConfig  `mapstructure:"upstream"`
	Fallback  FallbackConfig  `mapstructure:"fallback"`
	Cache     CacheConfig     `mapstructure:"cache"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig timeouts are in seconds.
type ServerConfig struct {
	Port           int `mapstructure:"port"`
	ReadTimeout    int `mapstructure:"read_timeout"`
	WriteTimeout   int `mapstructure:"write_timeout"`
	RequestTimeout int `mapstructure:"request_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RegionConfig struct {
	DefaultLat   float64 `mapstructure:"default_lat"`
	DefaultLon   float64 `mapstructure:"default_lon"`
	PointDelta   float64 `mapstructure:"point_delta"`
	DefaultDelta float64 `mapstructure:"default_delta"`
	Strict       bool    `mapstructure:"strict"`
}

type UpstreamConfig struct {
	BaseURL            string  `mapstructure:"base_url"`
	TimeoutMS          int     `mapstructure:"timeout_ms"`
	Username           string  `mapstructure:"username"`
	Password           string  `mapstructure:"password"`
	Extended           bool    `mapstructure:"extended"`
	RatePerSecond      float64 `mapstructure:"rate_per_second"`
	Burst              int     `mapstructure:"burst"`
	BreakerFailures    int     `mapstructure:"breaker_failures"`
	BreakerOpenSeconds int     `mapstructure:"breaker_open_seconds"`
}

// Timeout is the per-call budget.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutMS) * time.Millisecond
}

type FallbackConfig struct {
	Always bool `mapstructure:"always"`
}

// CacheConfig values are in seconds.
type CacheConfig struct {
	SMaxAge              int `mapstructure:"s_maxage"`
	StaleWhileRevalidate int `mapstructure:"stale_while_revalidate"`
}

// NATSConfig with an empty URL disables emergency alerts.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: SKYGLASS_UPSTREAM_TIMEOUT_MS → upstream.timeout_ms
	v.SetEnvPrefix("SKYGLASS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.request_timeout", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("region.default_lat", 48.85)
	v.SetDefault("region.default_lon", 2.35)
	v.SetDefault("region.point_delta", 1.0)
	v.SetDefault("region.default_delta", 2.0)
	v.SetDefault("region.strict", false)
	v.SetDefault("upstream.base_url", "https://opensky-network.org/api")
	v.SetDefault("upstream.timeout_ms", 8000)
	v.SetDefault("upstream.username", "")
	v.SetDefault("upstream.password", "")
	v.SetDefault("upstream.extended", true)
	v.SetDefault("upstream.rate_per_second", 1.0)
	v.SetDefault("upstream.burst", 5)
	v.SetDefault("upstream.breaker_failures", 5)
	v.SetDefault("upstream.breaker_open_seconds", 30)
	v.SetDefault("fallback.always", true)
	v.SetDefault("cache.s_maxage", 10)
	v.SetDefault("cache.stale_while_revalidate", 30)
	v.SetDefault("nats.url", "")
	v.SetDefault("nats.subject_prefix", "skyglass.alerts")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Server.RequestTimeout <= 0 {
		errs = append(errs, "server.request_timeout must be positive")
	}
	if c.Region.DefaultLat < -90 || c.Region.DefaultLat > 90 {
		errs = append(errs, fmt.Sprintf("region.default_lat must be -90..90, got %g", c.Region.DefaultLat))
	}
	if c.Region.DefaultLon < -180 || c.Region.DefaultLon > 180 {
		errs = append(errs, fmt.Sprintf("region.default_lon must be -180..180, got %g", c.Region.DefaultLon))
	}
	if c.Region.PointDelta <= 0 || c.Region.PointDelta > 45 {
		errs = append(errs, fmt.Sprintf("region.point_delta must be in (0, 45], got %g", c.Region.PointDelta))
	}
	if c.Region.DefaultDelta <= 0 || c.Region.DefaultDelta > 45 {
		errs = append(errs, fmt.Sprintf("region.default_delta must be in (0, 45], got %g", c.Region.DefaultDelta))
	}
	if c.Upstream.BaseURL == "" {
		errs = append(errs, "upstream.base_url is required")
	}
	if c.Upstream.TimeoutMS <= 0 {
		errs = append(errs, "upstream.timeout_ms must be positive")
	} else if c.Server.RequestTimeout > 0 && c.Upstream.Timeout() >= time.Duration(c.Server.RequestTimeout)*time.Second {
		errs = append(errs, "upstream.timeout_ms must be shorter than server.request_timeout")
	}
	if c.Upstream.RatePerSecond < 0 {
		errs = append(errs, "upstream.rate_per_second must not be negative")
	}
	if c.Upstream.BreakerFailures <= 0 {
		errs = append(errs, "upstream.breaker_failures must be positive")
	}
	if c.Upstream.BreakerOpenSeconds <= 0 {
		errs = append(errs, "upstream.breaker_open_seconds must be positive")
	}
	if c.Cache.SMaxAge < 0 || c.Cache.StaleWhileRevalidate < 0 {
		errs = append(errs, "cache.s_maxage and cache.stale_while_revalidate must not be negative")
	}
	if c.Telemetry.Enabled && c.Telemetry.TempoAddr == "" {
		errs = append(errs, "telemetry.tempo_addr is required when telemetry is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

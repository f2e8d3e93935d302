package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"funnelworks/internal/scoring"
)

// Config is the full service configuration
type Config struct {
	HTTP      HTTPConfig        `yaml:"http"`
	Redis     RedisConfig       `yaml:"redis"`
	Mongo     MongoConfig       `yaml:"mongo"`
	Auth      AuthConfig        `yaml:"auth"`
	Analytics AnalyticsConfig   `yaml:"analytics"`
	CTA       CTAConfig         `yaml:"cta"`
	ROI       scoring.ROIConfig `yaml:"roi"`
	Urgency   UrgencyConfig     `yaml:"urgency"`
	Tracing   TracingConfig     `yaml:"tracing"`
	RateLimit RateLimitConfig   `yaml:"rate_limit"`
	Logging   LoggingConfig     `yaml:"logging"`
}

type HTTPConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     string        `yaml:"cors_origins"`
	CORSMethods     string        `yaml:"cors_methods"`
	CORSHeaders     string        `yaml:"cors_headers"`
}

// RedisConfig enables the Redis session store when URI is set
type RedisConfig struct {
	URI        string        `yaml:"uri"`
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// MongoConfig enables lead persistence when URI is set
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type AuthConfig struct {
	OperatorUsername string        `yaml:"operator_username"`
	OperatorPassword string        `yaml:"-"`
	JWTSecret        string        `yaml:"-"`
	SessionTokenTTL  time.Duration `yaml:"session_token_ttl"`
}

// AnalyticsConfig configures PostHog; an empty key disables analytics
type AnalyticsConfig struct {
	PostHogKey    string        `yaml:"-"`
	PostHogHost   string        `yaml:"posthog_host"`
	QueueSize     int           `yaml:"queue_size"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

type CTAConfig struct {
	Phone          string `yaml:"phone"`
	DefaultMessage string `yaml:"default_message"`
	ContactName    string `yaml:"contact_name"`
}

type UrgencyConfig struct {
	OfferDays int `yaml:"offer_days"`
}

// TracingConfig enables OTLP export when Endpoint is set
type TracingConfig struct {
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// RateLimitConfig bounds lead and CTA submissions per client IP
type RateLimitConfig struct {
	PerSecond int `yaml:"per_second"`
	Burst     int `yaml:"burst"`
	// TrustedProxies lists proxy addresses or CIDRs allowed to set X-Forwarded-For
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the stock configuration
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:            "8080",
			ShutdownTimeout: 30 * time.Second,
			CORSOrigins:     "*",
			CORSMethods:     "GET, POST, PUT, DELETE, OPTIONS",
			CORSHeaders:     "Content-Type, Authorization",
		},
		Redis: RedisConfig{
			SessionTTL: 2 * time.Hour,
		},
		Mongo: MongoConfig{
			Database: "funnelworks",
		},
		Auth: AuthConfig{
			OperatorUsername: "admin",
			OperatorPassword: "password123",
			JWTSecret:        "super-secret-key-change-in-production",
			SessionTokenTTL:  24 * time.Hour,
		},
		Analytics: AnalyticsConfig{
			PostHogHost:   "https://app.posthog.com",
			QueueSize:     1024,
			BatchSize:     50,
			FlushInterval: 2 * time.Second,
		},
		CTA: CTAConfig{
			Phone:          "+16176428741",
			DefaultMessage: "Hey Sam, got your message—can't wait to talk. I'm in!",
			ContactName:    "Samantha",
		},
		ROI:     scoring.DefaultROIConfig(),
		Urgency: UrgencyConfig{OfferDays: 7},
		Tracing: TracingConfig{
			ServiceName: "funnelworks",
			Insecure:    true,
		},
		RateLimit: RateLimitConfig{
			PerSecond: 5,
			Burst:     10,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults, then applies environment overrides.
// An empty path or a missing file yields defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	c.HTTP.Port = getEnv("PORT", c.HTTP.Port)
	c.HTTP.CORSOrigins = getEnv("CORS_ALLOWED_ORIGINS", c.HTTP.CORSOrigins)
	c.HTTP.CORSMethods = getEnv("CORS_ALLOWED_METHODS", c.HTTP.CORSMethods)
	c.HTTP.CORSHeaders = getEnv("CORS_ALLOWED_HEADERS", c.HTTP.CORSHeaders)

	c.Redis.URI = getEnv("REDIS_URI", c.Redis.URI)
	c.Mongo.URI = getEnv("MONGO_URI", c.Mongo.URI)
	c.Mongo.Database = getEnv("MONGO_DATABASE", c.Mongo.Database)

	c.Auth.OperatorUsername = getEnv("OPERATOR_USERNAME", c.Auth.OperatorUsername)
	c.Auth.OperatorPassword = getEnv("OPERATOR_PASSWORD", c.Auth.OperatorPassword)
	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)

	c.Analytics.PostHogKey = getEnv("POSTHOG_API_KEY", c.Analytics.PostHogKey)
	c.Analytics.PostHogHost = getEnv("POSTHOG_HOST", c.Analytics.PostHogHost)

	c.CTA.Phone = getEnv("SMS_PHONE", c.CTA.Phone)
	c.CTA.ContactName = getEnv("CONTACT_NAME", c.CTA.ContactName)

	c.Tracing.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Tracing.Endpoint)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)

	if v := os.Getenv("TRUSTED_PROXIES"); v != "" {
		c.RateLimit.TrustedProxies = nil
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				c.RateLimit.TrustedProxies = append(c.RateLimit.TrustedProxies, p)
			}
		}
	}

	if v := os.Getenv("ROI_INVESTMENT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.ROI.Investment = f
		}
	}
	if v := os.Getenv("ROI_TARGET_CONVERSION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.ROI.TargetConversion = f
		}
	}
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	var problems []string
	if c.ROI.Investment <= 0 {
		problems = append(problems, "roi.investment must be positive")
	}
	if c.ROI.TargetConversion <= 0 {
		problems = append(problems, "roi.target_conversion must be positive")
	}
	if c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst <= 0 {
		problems = append(problems, "rate_limit values must be positive")
	}
	if c.HTTP.Port == "" {
		problems = append(problems, "http.port is required")
	}
	if c.Auth.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// RedisAddr strips a redis:// scheme from the configured URI
func (c *Config) RedisAddr() string {
	return strings.TrimPrefix(c.Redis.URI, "redis://")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

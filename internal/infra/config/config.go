package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the client.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Gateway GatewayConfig `yaml:"gateway"`
	Session SessionConfig `yaml:"session"`
}

// HTTPConfig controls the local surface that drives the controller.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// GatewayConfig points at the recommendation gateway.
type GatewayConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
	Breaker BreakerConfig `yaml:"breaker"`
}

// BreakerConfig tunes the circuit breaker in front of the gateway.
type BreakerConfig struct {
	ConsecutiveFailures uint32        `yaml:"consecutiveFailures"`
	Cooldown            time.Duration `yaml:"cooldown"`
}

// SessionConfig seeds the controller input at startup.
type SessionConfig struct {
	DefaultCity string `yaml:"defaultCity"`
	DefaultMode string `yaml:"defaultMode"`
}

// Load reads .env, then a YAML file, then environment variables.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func loadDotEnv() error {
	path := os.Getenv("DOTENV_PATH")
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("GATEWAY_BASE_URL"); v != "" {
		cfg.Gateway.BaseURL = v
	}
	if v := os.Getenv("GATEWAY_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Gateway.Timeout = parsed
		}
	}
	if v := os.Getenv("GATEWAY_BREAKER_FAILURES"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 32); err == nil {
			cfg.Gateway.Breaker.ConsecutiveFailures = uint32(parsed)
		}
	}
	if v := os.Getenv("GATEWAY_BREAKER_COOLDOWN"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Gateway.Breaker.Cooldown = parsed
		}
	}
	if v := os.Getenv("DEFAULT_CITY"); v != "" {
		cfg.Session.DefaultCity = v
	}
	if v := os.Getenv("DEFAULT_MODE"); v != "" {
		cfg.Session.DefaultMode = v
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if clean := strings.TrimSpace(p); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 35 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				Burst:             30,
			},
		},
		Gateway: GatewayConfig{
			BaseURL: "http://localhost:8000",
			Timeout: 30 * time.Second,
			Breaker: BreakerConfig{
				ConsecutiveFailures: 5,
				Cooldown:            time.Minute,
			},
		},
		Session: SessionConfig{
			DefaultCity: "amizour",
			DefaultMode: "smart",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.Gateway.BaseURL) == "" {
		return errors.New("gateway.baseUrl cannot be empty")
	}
	if !strings.HasPrefix(c.Gateway.BaseURL, "http://") && !strings.HasPrefix(c.Gateway.BaseURL, "https://") {
		return errors.New("gateway.baseUrl must be an http(s) URL")
	}
	if c.Gateway.Timeout < 0 {
		return errors.New("gateway.timeout cannot be negative")
	}
	if c.Gateway.Breaker.ConsecutiveFailures == 0 {
		return errors.New("gateway.breaker.consecutiveFailures must be positive")
	}
	if c.Gateway.Breaker.Cooldown <= 0 {
		return errors.New("gateway.breaker.cooldown must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(c.Session.DefaultMode)) {
	case "basic", "smart":
	default:
		return errors.New("session.defaultMode must be basic or smart")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultUpstreamURL is the ElevenLabs streaming endpoint for the service voice.
const DefaultUpstreamURL = "https://api.elevenlabs.io/v1/text-to-speech/1k39YpzqXZn52BgyLyGO/stream/with-timestamps?allow_unauthenticated=1"

// DefaultUserAgents is the browser pool the upstream request picks from.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/116.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Safari/605.1.15",
	"Mozilla/5.0 (Linux; Android 11; SM-A207F) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/115.0.0.0 Mobile Safari/537.36",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:116.0) Gecko/20100101 Firefox/116.0",
}

type Config struct {
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Redis     RedisConfig     `envPrefix:"REDIS_"`
	Upstream  UpstreamConfig  `envPrefix:"UPSTREAM_"`
	Speech    SpeechConfig    `envPrefix:"SPEECH_"`
	Debug     DebugConfig     `envPrefix:"DEBUG_RECORDS_"`
	Telemetry TelemetryConfig `envPrefix:"OTEL_"`
	LogLevel  string          `env:"LOG_LEVEL" envDefault:"info"`
}

type ServerConfig struct {
	Host string `env:"HOST" envDefault:"0.0.0.0"`
	Port int    `env:"PORT" envDefault:"8080"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR" envDefault:"localhost:6379"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type UpstreamConfig struct {
	URL        string        `env:"URL"`
	Timeout    time.Duration `env:"TIMEOUT" envDefault:"60s"`
	UserAgents []string      `env:"USER_AGENTS" envSeparator:","`
}

type SpeechConfig struct {
	MaxChars     int     `env:"MAX_CHARS" envDefault:"1000"`
	DefaultModel string  `env:"DEFAULT_MODEL" envDefault:"eleven_v3"`
	DefaultSpeed float64 `env:"DEFAULT_SPEED" envDefault:"1.0"`
	Sanitize     bool    `env:"SANITIZE" envDefault:"false"`
}

type DebugConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Dir     string `env:"DIR" envDefault:"debug_logs"`
	Async   bool   `env:"ASYNC" envDefault:"false"`
}

type TelemetryConfig struct {
	ServiceName  string `env:"SERVICE_NAME" envDefault:"speechgateway"`
	OTLPEndpoint string `env:"EXPORTER_OTLP_ENDPOINT"`
}

// Load reads an optional .env file and then the process environment.
// The returned Config is treated as read-only for the life of the process.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Upstream.URL == "" {
		cfg.Upstream.URL = DefaultUpstreamURL
	}
	if len(cfg.Upstream.UserAgents) == 0 {
		cfg.Upstream.UserAgents = append([]string(nil), DefaultUserAgents...)
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var problems []string
	if c.Speech.MaxChars <= 0 {
		problems = append(problems, "SPEECH_MAX_CHARS must be positive")
	}
	if c.Speech.DefaultSpeed <= 0 {
		problems = append(problems, "SPEECH_DEFAULT_SPEED must be positive")
	}
	if c.Upstream.Timeout <= 0 {
		problems = append(problems, "UPSTREAM_TIMEOUT must be positive")
	}
	if len(c.Upstream.UserAgents) == 0 {
		problems = append(problems, "UPSTREAM_USER_AGENTS must not be empty")
	}
	if u, err := url.Parse(c.Upstream.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		problems = append(problems, "UPSTREAM_URL must be an absolute http(s) URL")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// SlogLevel maps LOG_LEVEL to a slog level, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

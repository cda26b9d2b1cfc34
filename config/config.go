// Package config assembles the server settings: compiled-in defaults,
// overlaid by an optional YAML file (CONFIG_PATH), overlaid by environment
// variables. A local .env file is loaded first as a development convenience.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hupe1980/agora/core"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Settings is the full server configuration.
type Settings struct {
	Server    ServerSettings    `yaml:"server"`
	Database  DatabaseSettings  `yaml:"database"`
	Providers ProviderSettings  `yaml:"providers"`
	Runs      RunSettings       `yaml:"runs"`
	Logging   LoggingSettings   `yaml:"logging"`
	RateLimit RateLimitSettings `yaml:"rate_limit"`
}

// ServerSettings configure the HTTP surface.
type ServerSettings struct {
	Addr           string   `yaml:"addr"`
	Mode           string   `yaml:"mode"` // debug, release
	AllowedOrigins []string `yaml:"allowed_origins"`
	// KeepaliveInterval is the SSE idle comment cadence.
	KeepaliveInterval time.Duration `yaml:"keepalive_interval"`
}

// DatabaseSettings configure the transcript sink. An empty DSN selects the
// in-memory sink.
type DatabaseSettings struct {
	DSN string `yaml:"dsn"`
}

// ProviderSettings carry credentials and endpoints for the model providers.
type ProviderSettings struct {
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	OllamaBaseURL   string `yaml:"ollama_base_url"`
	CatalogPath     string `yaml:"catalog_path"`
}

// RunSettings bound and tune simulation runs.
type RunSettings struct {
	MaxAgents     int           `yaml:"max_agents"`
	MaxRoundLimit int           `yaml:"max_round_limit"`
	Capacity      int           `yaml:"capacity"`
	IdleGrace     time.Duration `yaml:"idle_grace"`
}

// LoggingSettings configure the structured logger.
type LoggingSettings struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// RateLimitSettings configure the fixed-window request limiter.
type RateLimitSettings struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// Default returns the compiled-in settings, mirroring the original
// deployment's bounds.
func Default() Settings {
	return Settings{
		Server: ServerSettings{
			Addr:              ":8080",
			Mode:              "release",
			AllowedOrigins:    []string{"http://localhost:5173"},
			KeepaliveInterval: 15 * time.Second,
		},
		Runs: RunSettings{
			MaxAgents:     4,
			MaxRoundLimit: 40,
			Capacity:      1,
			IdleGrace:     5 * time.Second,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "json",
		},
		RateLimit: RateLimitSettings{
			RequestsPerMinute: 120,
		},
	}
}

// Load builds the effective settings. The optional YAML file is located via
// CONFIG_PATH (default config.yaml); a missing file is not an error.
// Environment variables win over the file.
func Load() Settings {
	// Development convenience only; existing env vars are not overridden.
	_ = godotenv.Load()

	s := Default()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		_ = yaml.Unmarshal(data, &s)
	}

	applyEnv(&s)
	return s
}

func applyEnv(s *Settings) {
	setString(&s.Server.Addr, "ADDR")
	setString(&s.Server.Mode, "SERVER_MODE")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		s.Server.AllowedOrigins = splitCSV(v)
	}
	setSeconds(&s.Server.KeepaliveInterval, "KEEPALIVE_SECONDS")

	setString(&s.Database.DSN, "DATABASE_DSN")

	setString(&s.Providers.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&s.Providers.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&s.Providers.OllamaBaseURL, "OLLAMA_BASE_URL")
	setString(&s.Providers.CatalogPath, "MODEL_CATALOG_PATH")

	setInt(&s.Runs.MaxAgents, "MAX_AGENTS")
	setInt(&s.Runs.MaxRoundLimit, "MAX_ROUND_LIMIT")
	setInt(&s.Runs.Capacity, "RUN_CAPACITY")
	setSeconds(&s.Runs.IdleGrace, "IDLE_GRACE_SECONDS")

	setString(&s.Logging.Level, "LOG_LEVEL")
	setString(&s.Logging.Format, "LOG_FORMAT")

	setInt(&s.RateLimit.RequestsPerMinute, "RATE_LIMIT_PER_MINUTE")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setSeconds(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(n) * time.Second
		}
	}
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Limits converts the run bounds into validation limits.
func (s Settings) Limits() core.Limits {
	limits := core.DefaultLimits()
	if s.Runs.MaxAgents > 0 {
		limits.MaxAgents = s.Runs.MaxAgents
	}
	if s.Runs.MaxRoundLimit > 0 {
		limits.MaxRoundLimit = s.Runs.MaxRoundLimit
	}
	return limits
}

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar permite apuntar a un YAML fuera de los paths por defecto.
const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
}

var ErrInvalidConfig = errors.New("invalid config")

// writeTimeoutMargin: lo que queda para persistir y responder después de los
// dos mensajes de una interacción sobre una mascota recién creada.
const writeTimeoutMargin = 5 * time.Second

// MinWriteTimeout es el mínimo server.write_timeout que deja responder a
// POST /pets/interact aunque las dos llamadas de texto agoten su timeout.
func MinWriteTimeout(messageTimeout time.Duration) time.Duration {
	return 2*messageTimeout + writeTimeoutMargin
}

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Pet       PetConfig       `koanf:"pet"`
	TextGen   TextGenConfig   `koanf:"textgen"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Stats     StatsConfig     `koanf:"stats"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// DatabaseConfig: si DSN está vacío se usan repos in-memory (modo dev).
type DatabaseConfig struct {
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	Migrate         bool          `koanf:"migrate"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	App    string `koanf:"app"`
}

type PetConfig struct {
	Name           string        `koanf:"name"`
	DecayInterval  time.Duration `koanf:"decay_interval"`
	MessageTimeout time.Duration `koanf:"message_timeout"`
	MaxTokens      int           `koanf:"max_tokens"`
	Temperature    float64       `koanf:"temperature"`
}

// TextGenConfig elige el backend de generación de texto: openai | ollama | local.
type TextGenConfig struct {
	Provider         string        `koanf:"provider"`
	APIKey           string        `koanf:"api_key"`
	BaseURL          string        `koanf:"base_url"`
	Model            string        `koanf:"model"`
	Timeout          time.Duration `koanf:"timeout"`
	RequestsPerMin   int           `koanf:"requests_per_minute"`
	BreakerFailures  int           `koanf:"breaker_failures"`
	BreakerOpenAfter time.Duration `koanf:"breaker_open_timeout"`
}

type RateLimitConfig struct {
	InteractRequests int           `koanf:"interact_requests"`
	InteractWindow   time.Duration `koanf:"interact_window"`
}

type StatsConfig struct {
	RefreshInterval time.Duration `koanf:"refresh_interval"`
}

// Default devuelve la config base sin leer archivo ni env (tests, modo dev).
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    45 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"http://localhost:3001"},
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			Migrate:         true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			App:    "pet-companion",
		},
		Pet: PetConfig{
			Name:           "Rabanito",
			DecayInterval:  time.Hour,
			MessageTimeout: 15 * time.Second,
			MaxTokens:      60,
			Temperature:    0.8,
		},
		TextGen: TextGenConfig{
			Provider:         "local",
			Model:            "gpt-4o-mini",
			Timeout:          20 * time.Second,
			RequestsPerMin:   30,
			BreakerFailures:  5,
			BreakerOpenAfter: time.Minute,
		},
		RateLimit: RateLimitConfig{
			InteractRequests: 60,
			InteractWindow:   time.Minute,
		},
		Stats: StatsConfig{
			RefreshInterval: 5 * time.Minute,
		},
	}
}

// Load arma la config por capas: defaults -> YAML (opcional) -> env.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port out of range", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Pet.Name) == "" {
		return fmt.Errorf("%w: pet.name required", ErrInvalidConfig)
	}
	if c.Pet.DecayInterval <= 0 {
		return fmt.Errorf("%w: pet.decay_interval must be > 0", ErrInvalidConfig)
	}
	if c.Pet.MessageTimeout <= 0 {
		return fmt.Errorf("%w: pet.message_timeout must be > 0", ErrInvalidConfig)
	}
	// 0 = sin deadline de escritura
	if c.Server.WriteTimeout < 0 ||
		(c.Server.WriteTimeout > 0 && c.Server.WriteTimeout < MinWriteTimeout(c.Pet.MessageTimeout)) {
		return fmt.Errorf("%w: server.write_timeout must be 0 or >= %s (2 x pet.message_timeout + %s)",
			ErrInvalidConfig, MinWriteTimeout(c.Pet.MessageTimeout), writeTimeoutMargin)
	}
	if c.Pet.MaxTokens <= 0 {
		return fmt.Errorf("%w: pet.max_tokens must be > 0", ErrInvalidConfig)
	}

	switch strings.ToLower(strings.TrimSpace(c.TextGen.Provider)) {
	case "local", "":
	case "openai":
		if strings.TrimSpace(c.TextGen.APIKey) == "" {
			return fmt.Errorf("%w: textgen.api_key required for openai", ErrInvalidConfig)
		}
	case "ollama":
		if strings.TrimSpace(c.TextGen.BaseURL) == "" {
			return fmt.Errorf("%w: textgen.base_url required for ollama", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown textgen.provider %q", ErrInvalidConfig, c.TextGen.Provider)
	}
	return nil
}

// Addr devuelve ":<port>" para http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

func findConfigFile() string {
	if p := strings.TrimSpace(os.Getenv(ConfigPathEnvVar)); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields: las env vars llegan como "a,b,c".
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if err := k.Set(path, out); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings: nombres de env soportados -> paths koanf.
var envMappings = map[string]string{
	"port":                 "server.port",
	"http_write_timeout":   "server.write_timeout",
	"cors_origins":         "server.cors_origins",
	"db_dsn":               "database.dsn",
	"db_max_open_conns":    "database.max_open_conns",
	"db_migrate":           "database.migrate",
	"log_level":            "logging.level",
	"log_format":           "logging.format",
	"app_name":             "logging.app",
	"pet_name":             "pet.name",
	"pet_decay_interval":   "pet.decay_interval",
	"pet_message_timeout":  "pet.message_timeout",
	"pet_max_tokens":       "pet.max_tokens",
	"pet_temperature":      "pet.temperature",
	"textgen_provider":     "textgen.provider",
	"openai_api_key":       "textgen.api_key",
	"textgen_base_url":     "textgen.base_url",
	"textgen_model":        "textgen.model",
	"textgen_timeout":      "textgen.timeout",
	"textgen_rpm":          "textgen.requests_per_minute",
	"interact_rate_limit":  "rate_limit.interact_requests",
	"interact_rate_window": "rate_limit.interact_window",
	"stats_refresh":        "stats.refresh_interval",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	// Env vars no mapeadas se ignoran.
	return ""
}

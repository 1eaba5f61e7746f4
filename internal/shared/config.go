package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// envPrefix namespaces environment overrides, e.g. FRETMASTERY_DATABASE_PATH.
const envPrefix = "FRETMASTERY_"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	App       AppConfig       `toml:"app"`
	Database  DatabaseConfig  `toml:"database"`
	Server    ServerConfig    `toml:"server"`
	Fretboard FretboardConfig `toml:"fretboard"`
	Diagram   DiagramConfig   `toml:"diagram"`
	Cache     CacheConfig     `toml:"cache"`
}

// AppConfig contains process-wide settings.
type AppConfig struct {
	Env      string `toml:"env" validate:"required,oneof=dev test prod"`
	LogLevel string `toml:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" validate:"required"`
	MaxOpenConns int    `toml:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `toml:"max_idle_conns" validate:"gte=0"`
}

// ServerConfig contains HTTP server and token settings.
type ServerConfig struct {
	Host            string  `toml:"host"`
	Port            int     `toml:"port" validate:"gte=1,lte=65535"`
	JWTSecret       string  `toml:"jwt_secret" validate:"required,min=16"`
	TokenTTLMinutes int     `toml:"token_ttl_minutes" validate:"gte=1"`
	BcryptCost      int     `toml:"bcrypt_cost" validate:"gte=4,lte=31"`
	AuthRateLimit   float64 `toml:"auth_rate_limit" validate:"gt=0"`
	AuthRateBurst   int     `toml:"auth_rate_burst" validate:"gte=1"`
}

// FretboardConfig controls the pitch model.
type FretboardConfig struct {
	MaxFret      int  `toml:"max_fret" validate:"gte=1,lte=36"`
	PreferSharps bool `toml:"prefer_sharps"`
}

// DiagramConfig controls SVG output and where artifacts are written.
type DiagramConfig struct {
	Dir        string `toml:"dir" validate:"required"`
	URLPrefix  string `toml:"url_prefix" validate:"required,startswith=/"`
	Width      int    `toml:"width" validate:"gte=200"`
	Height     int    `toml:"height" validate:"gte=100"`
	ShowOctave bool   `toml:"show_octave"`
}

// CacheConfig configures the rendered-diagram cache.
//
// An empty RedisAddr selects the in-process cache.
type CacheConfig struct {
	Enabled       bool   `toml:"enabled"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db" validate:"gte=0"`
	TTL           string `toml:"ttl" validate:"required"`
}

// TTLDuration parses TTL, falling back to ten minutes when it is unparsable.
func (c CacheConfig) TTLDuration() time.Duration {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// Addr returns the host:port the HTTP server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their defaults. Environment overrides are applied afterwards.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigOrDefault loads the config at path when it exists, otherwise returns the defaults with environment
// overrides applied. A .env file in the working directory is loaded first when present.
func LoadConfigOrDefault(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		return LoadConfig(path)
	}

	config := DefaultConfig()
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides config values from FRETMASTERY_* environment variables.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"APP_ENV":              &c.App.Env,
		"LOG_LEVEL":            &c.App.LogLevel,
		"DATABASE_PATH":        &c.Database.Path,
		"SERVER_HOST":          &c.Server.Host,
		"JWT_SECRET":           &c.Server.JWTSecret,
		"DIAGRAM_DIR":          &c.Diagram.Dir,
		"DIAGRAM_URL_PREFIX":   &c.Diagram.URLPrefix,
		"CACHE_REDIS_ADDR":     &c.Cache.RedisAddr,
		"CACHE_REDIS_PASSWORD": &c.Cache.RedisPassword,
		"CACHE_TTL":            &c.Cache.TTL,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SERVER_PORT":        &c.Server.Port,
		"TOKEN_TTL_MINUTES":  &c.Server.TokenTTLMinutes,
		"BCRYPT_COST":        &c.Server.BcryptCost,
		"FRETBOARD_MAX_FRET": &c.Fretboard.MaxFret,
		"CACHE_REDIS_DB":     &c.Cache.RedisDB,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(envPrefix + key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalidConfig, envPrefix, key, v)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv(envPrefix + "CACHE_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sCACHE_ENABLED=%q is not a boolean", ErrInvalidConfig, envPrefix, v)
		}
		c.Cache.Enabled = b
	}

	return nil
}

// Validate checks the config against its struct constraints.
func (c *Config) Validate() error {
	if err := ValidateStruct("config", c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

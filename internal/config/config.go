// Package config defines the data structures related to configuration and
// includes functions for loading and validating it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration holds all configuration for loan-calculator.
type Configuration struct {
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging,omitempty"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output,omitempty"`
	Engine  EngineConfig  `mapstructure:"engine" yaml:"engine,omitempty"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server,omitempty"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv, json
}

// EngineConfig tunes schedule projection.
type EngineConfig struct {
	SafetyFactor int             `mapstructure:"safetyFactor" yaml:"safetyFactor,omitempty"`
	Epsilon      float64         `mapstructure:"epsilon" yaml:"epsilon,omitempty"`
	Optimizer    OptimizerConfig `mapstructure:"optimizer" yaml:"optimizer,omitempty"`
}

// OptimizerConfig bounds the payoff target search.
type OptimizerConfig struct {
	Tolerance     float64 `mapstructure:"tolerance" yaml:"tolerance,omitempty"`
	MaxIterations int     `mapstructure:"maxIterations" yaml:"maxIterations,omitempty"`
}

// ServerConfig defines runtime parameters for the HTTP server.
type ServerConfig struct {
	Address         string          `mapstructure:"address" yaml:"address,omitempty"`
	MaxBodySize     string          `mapstructure:"maxBodySize" yaml:"maxBodySize,omitempty"`
	CORSOrigins     []string        `mapstructure:"corsOrigins" yaml:"corsOrigins,omitempty"`
	RequestTimeout  time.Duration   `mapstructure:"requestTimeout" yaml:"requestTimeout,omitempty"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdownTimeout" yaml:"shutdownTimeout,omitempty"`
	RateLimit       RateLimitConfig `mapstructure:"rateLimit" yaml:"rateLimit,omitempty"`
	// TrustProxyHeaders takes the client address from X-Real-IP or
	// X-Forwarded-For. Enable only behind a proxy that overwrites them.
	TrustProxyHeaders bool `mapstructure:"trustProxyHeaders" yaml:"trustProxyHeaders,omitempty"`
}

// RateLimitConfig bounds requests per client address. Zero requests disables
// limiting.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests" yaml:"requests,omitempty"`
	Window   time.Duration `mapstructure:"window" yaml:"window,omitempty"`
}

// CacheConfig selects the calculation result cache.
type CacheConfig struct {
	Backend   string        `mapstructure:"backend" yaml:"backend,omitempty"` // none, memory, redis
	RedisAddr string        `mapstructure:"redisAddr" yaml:"redisAddr,omitempty"`
	RedisDB   int           `mapstructure:"redisDB" yaml:"redisDB,omitempty"`
	TTL       time.Duration `mapstructure:"ttl" yaml:"ttl,omitempty"`
	// MaxEntries caps the memory backend.
	MaxEntries int `mapstructure:"maxEntries" yaml:"maxEntries,omitempty"`
}

// SetDefaults registers every configuration key with its default value so
// that environment overrides apply even when the file omits a key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("engine.safetyFactor", constants.DefaultSafetyFactor)
	v.SetDefault("engine.epsilon", constants.BalanceEpsilon)
	v.SetDefault("engine.optimizer.tolerance", constants.CurrencyTolerance)
	v.SetDefault("engine.optimizer.maxIterations", constants.DefaultOptimizerIterations)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxBodySize", "256K")
	v.SetDefault("server.corsOrigins", []string{"*"})
	v.SetDefault("server.requestTimeout", "30s")
	v.SetDefault("server.shutdownTimeout", "10s")
	v.SetDefault("server.rateLimit.requests", constants.DefaultRateLimitRequests)
	v.SetDefault("server.rateLimit.window", constants.DefaultRateLimitWindow)
	v.SetDefault("server.trustProxyHeaders", false)
	v.SetDefault("cache.backend", constants.CacheBackendMemory)
	v.SetDefault("cache.redisAddr", "")
	v.SetDefault("cache.redisDB", 0)
	v.SetDefault("cache.ttl", constants.DefaultCacheTTL)
	v.SetDefault("cache.maxEntries", constants.DefaultCacheMaxEntries)
}

func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load takes a file path as input and loads the YAML-formatted configuration
// there into v, so that command line flags bound to v take precedence. An
// empty path falls back to config.yaml in the working directory and to the
// defaults when that file does not exist.
func Load(v *viper.Viper, configPath string) (*Configuration, error) {
	SetDefaults(v)
	configureEnv(v)
	v.SetConfigType("yml")

	optional := configPath == ""
	if optional {
		configPath = constants.DefaultConfigFile
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !optional || !(errors.As(err, &notFound) || isNotExist(err)) {
			return nil, fmt.Errorf("error reading config file, %w", err)
		}
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r into a fresh
// viper instance. Environment overrides still apply.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	SetDefaults(v)
	configureEnv(v)
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %w", err)
	}
	return decode(v)
}

// Default returns the built-in configuration without consulting files or
// the environment.
func Default() *Configuration {
	return &Configuration{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Output:  OutputConfig{Format: constants.OutputFormatPretty},
		Engine: EngineConfig{
			SafetyFactor: constants.DefaultSafetyFactor,
			Epsilon:      constants.BalanceEpsilon,
			Optimizer: OptimizerConfig{
				Tolerance:     constants.CurrencyTolerance,
				MaxIterations: constants.DefaultOptimizerIterations,
			},
		},
		Server: ServerConfig{
			Address:         constants.DefaultServerAddress,
			MaxBodySize:     "256K",
			CORSOrigins:     []string{"*"},
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit: RateLimitConfig{
				Requests: constants.DefaultRateLimitRequests,
				Window:   time.Minute,
			},
		},
		Cache: CacheConfig{
			Backend:    constants.CacheBackendMemory,
			TTL:        10 * time.Minute,
			MaxEntries: constants.DefaultCacheMaxEntries,
		},
	}
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.normalize()
	if err := configuration.Validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

// normalize canonicalizes case-insensitive enumerations so later consumers
// can compare them directly.
func (c *Configuration) normalize() {
	c.Logging.Level = Canonical(c.Logging.Level)
	c.Logging.Format = Canonical(c.Logging.Format)
	c.Output.Format = Canonical(c.Output.Format)
	c.Cache.Backend = Canonical(c.Cache.Backend)
}

// Canonical is the form enumerated option values are compared in. Flags that
// override configured values go through it too.
func Canonical(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// Validate checks option values that would otherwise fail late at runtime.
func (c *Configuration) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "json", "console":
	default:
		return fmt.Errorf("invalid logging format %q", c.Logging.Format)
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return fmt.Errorf("invalid output configuration: %w", err)
		}
	}
	if c.Engine.SafetyFactor < 1 {
		return fmt.Errorf("engine.safetyFactor must be at least 1, got %d", c.Engine.SafetyFactor)
	}
	if c.Engine.Epsilon <= 0 {
		return fmt.Errorf("engine.epsilon must be positive, got %v", c.Engine.Epsilon)
	}
	if c.Engine.Optimizer.Tolerance < 0 {
		return fmt.Errorf("engine.optimizer.tolerance must not be negative, got %v", c.Engine.Optimizer.Tolerance)
	}
	if c.Engine.Optimizer.MaxIterations < 0 {
		return fmt.Errorf("engine.optimizer.maxIterations must not be negative, got %d", c.Engine.Optimizer.MaxIterations)
	}
	if _, err := ParseSize(c.Server.MaxBodySize); err != nil {
		return fmt.Errorf("invalid server.maxBodySize: %w", err)
	}
	if c.Server.RateLimit.Requests < 0 {
		return fmt.Errorf("server.rateLimit.requests must not be negative, got %d", c.Server.RateLimit.Requests)
	}
	if c.Server.RateLimit.Requests > 0 && c.Server.RateLimit.Window <= 0 {
		return fmt.Errorf("server.rateLimit.window must be positive when limiting is enabled")
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache.maxEntries must not be negative, got %d", c.Cache.MaxEntries)
	}
	switch c.Cache.Backend {
	case "", constants.CacheBackendNone, constants.CacheBackendMemory:
	case constants.CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redisAddr is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid cache backend %q", c.Cache.Backend)
	}
	return nil
}

// MaxBodyBytes returns the configured request body limit in bytes.
func (c *Configuration) MaxBodyBytes() int64 {
	size, err := ParseSize(c.Server.MaxBodySize)
	if err != nil || size <= 0 {
		return constants.DefaultMaxBodySizeBytes
	}
	return size
}

// YAML renders the effective configuration.
func (c *Configuration) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return buf.Bytes(), nil
}

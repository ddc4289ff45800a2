package cli

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowcanvas/pkg/cache"
	"github.com/matzehuels/flowcanvas/pkg/errors"
	"github.com/matzehuels/flowcanvas/pkg/pipeline"
	"github.com/matzehuels/flowcanvas/pkg/render"
	"github.com/matzehuels/flowcanvas/pkg/session"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config holds flowcanvas configuration.
type Config struct {
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Serve  ServeConfig  `toml:"serve"`
}

// RenderConfig holds render defaults.
type RenderConfig struct {
	Formats    []string `toml:"formats"`
	Width      float64  `toml:"width"`
	Height     float64  `toml:"height"`
	FlowLabels bool     `toml:"flow_labels"`
	Grid       bool     `toml:"grid"`
	Scale      float64  `toml:"scale"`
}

// CacheConfig selects and configures the artifact cache.
type CacheConfig struct {
	Backend       string `toml:"backend"` // "file", "redis", "none"
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// ServeConfig configures the HTTP editor.
type ServeConfig struct {
	Addr       string   `toml:"addr"`
	SessionTTL duration `toml:"session_ttl"`
}

// duration decodes TOML strings such as "30m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Render: RenderConfig{
			Formats:    []string{render.FormatSVG},
			FlowLabels: true,
			Grid:       true,
			Scale:      pipeline.DefaultScale,
		},
		Cache: CacheConfig{
			Backend:     BackendFile,
			RedisPrefix: appName + ":",
		},
		Serve: ServeConfig{
			Addr:       "127.0.0.1:8080",
			SessionTTL: duration{session.DefaultTTL},
		},
	}
}

// configDir returns the config directory using XDG standard (~/.config/flowcanvas/).
func configDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

func defaultConfigPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// LoadConfig reads the config file at path over the defaults. An empty path
// reads the default location, which may be absent; an explicit path must
// exist. Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultConfigPath()
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
			}
			return DefaultConfig(), nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return cfg, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid cache backend: %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "cache backend redis requires redis_addr")
	}
	return pipeline.ValidateFormats(c.Render.Formats)
}

// pipelineOptions converts render defaults into pipeline options.
func (r RenderConfig) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Formats:      append([]string(nil), r.Formats...),
		Width:        r.Width,
		Height:       r.Height,
		NoFlowLabels: !r.FlowLabels,
		NoGrid:       !r.Grid,
		Scale:        r.Scale,
	}
}

func (c CacheConfig) redisConfig() cache.RedisConfig {
	return cache.RedisConfig{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		Prefix:   c.RedisPrefix,
	}
}

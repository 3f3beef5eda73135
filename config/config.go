// Package config resolves keydesk settings from flags, KEYDESK_* environment
// variables, an optional YAML file and a local .env file, in that order.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/keydesk/keydesk/api"
	"github.com/keydesk/keydesk/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/xhit/go-str2duration/v2"
)

// EnvPrefix prefixes every environment variable, e.g. KEYDESK_API_URL.
const EnvPrefix = "KEYDESK"

// ErrInvalidConfig wraps every validation failure of Load.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	APIURL        string
	Timeout       time.Duration
	LogLevel      string
	PageSize      int
	CollectionTTL time.Duration
	CacheBackend  string
	RedisURL      string
	SessionFile   string
	ConfigFile    string
}

type flagDef struct {
	key, flag, def, usage string
}

var flags = []flagDef{
	{"api_url", "api-url", api.DefaultBaseURL, "base URL of the REST API"},
	{"timeout", "timeout", "30s", "request timeout (e.g. 30s, 2m)"},
	{"log_level", "log-level", "info", "log level (trace, debug, info, warn, error)"},
	{"page_size", "page-size", "10", "records per page"},
	{"collection_ttl", "collection-ttl", "5m", "freshness window of whole-collection lists"},
	{"cache_backend", "cache-backend", BackendMemory, "page cache backend (memory, sqlite, redis)"},
	{"redis_url", "redis-url", "", "redis URL for the redis cache backend"},
	{"session_file", "session-file", "", "path of the session file"},
}

// BindFlags registers the configuration flags as persistent flags of cmd.
func BindFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	for _, f := range flags {
		pf.String(f.flag, f.def, f.usage)
	}
	pf.String("config", "", "path of a YAML config file")
}

// DefaultSessionFile is where the session is kept when session_file is unset.
func DefaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "keydesk", "session.yaml")
}

// Load resolves the configuration for cmd. cmd may be nil in which case only
// the environment, files and defaults are consulted.
func Load(cmd *cobra.Command) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.Wrap(err, "failed to load .env")
		}
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, f := range flags {
		v.SetDefault(f.key, f.def)
		if cmd != nil {
			if pf := cmd.Flags().Lookup(f.flag); pf != nil {
				if err := v.BindPFlag(f.key, pf); err != nil {
					return nil, errors.Wrapf(err, "error binding flag %s", f.flag)
				}
			}
		}
	}

	configFile := os.Getenv(EnvPrefix + "_CONFIG")
	if cmd != nil {
		if s, _ := cmd.Flags().GetString("config"); s != "" {
			configFile = s
		}
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "error reading config file %s", configFile)
		}
	}

	c := &Config{
		APIURL:       strings.TrimSpace(v.GetString("api_url")),
		LogLevel:     strings.ToLower(v.GetString("log_level")),
		PageSize:     v.GetInt("page_size"),
		CacheBackend: strings.ToLower(v.GetString("cache_backend")),
		RedisURL:     v.GetString("redis_url"),
		SessionFile:  v.GetString("session_file"),
		ConfigFile:   configFile,
	}
	var err error
	if c.Timeout, err = parseDuration("timeout", v.GetString("timeout")); err != nil {
		return nil, err
	}
	if c.CollectionTTL, err = parseDuration("collection_ttl", v.GetString("collection_ttl")); err != nil {
		return nil, err
	}
	if c.SessionFile == "" {
		c.SessionFile = DefaultSessionFile()
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func parseDuration(key, s string) (time.Duration, error) {
	d, err := str2duration.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Mark(errors.Wrapf(err, "%s: %q", key, s), ErrInvalidConfig)
	}
	return d, nil
}

func invalid(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidConfig)
}

// Validate checks the resolved values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return invalid("api_url: %q is not an absolute URL", c.APIURL)
	}
	if c.Timeout <= 0 {
		return invalid("timeout must be positive")
	}
	if c.PageSize <= 0 {
		return invalid("page_size must be positive, got %d", c.PageSize)
	}
	if c.CollectionTTL <= 0 {
		return invalid("collection_ttl must be positive")
	}
	switch c.CacheBackend {
	case BackendMemory, BackendSQLite:
	case BackendRedis:
		if c.RedisURL == "" {
			return invalid("redis_url is required for the redis cache backend")
		}
	default:
		return invalid("cache_backend: unknown backend %q", c.CacheBackend)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() logger.LogLevel {
	return logger.ParseLevel(c.LogLevel, logger.LevelInfo)
}

// NewLogger returns a console logger at the configured level.
func (c *Config) NewLogger() logger.Logger {
	return logger.NewConsoleLogger(c.Level())
}

// IsLocalDefault reports whether the API URL is the development default.
func (c *Config) IsLocalDefault() bool {
	return c.APIURL == api.DefaultBaseURL
}

// Warnings lists settings worth telling the user about.
func (c *Config) Warnings() []string {
	var w []string
	if c.IsLocalDefault() {
		w = append(w, fmt.Sprintf("using the local development API at %s; set KEYDESK_API_URL or --api-url", c.APIURL))
	}
	return w
}

func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  APIURL: %s\n", c.APIURL))
	sb.WriteString(fmt.Sprintf("  Timeout: %s\n", c.Timeout))
	sb.WriteString(fmt.Sprintf("  LogLevel: %s\n", c.LogLevel))
	sb.WriteString(fmt.Sprintf("  PageSize: %d\n", c.PageSize))
	sb.WriteString(fmt.Sprintf("  CollectionTTL: %s\n", c.CollectionTTL))
	sb.WriteString(fmt.Sprintf("  CacheBackend: %s\n", c.CacheBackend))
	if c.RedisURL != "" {
		if u, err := url.Parse(c.RedisURL); err == nil {
			sb.WriteString(fmt.Sprintf("  RedisURL: %s\n", u.Redacted()))
		} else {
			sb.WriteString("  RedisURL: ********\n")
		}
	} else {
		sb.WriteString("  RedisURL: (empty)\n")
	}
	sb.WriteString(fmt.Sprintf("  SessionFile: %s\n", c.SessionFile))
	return sb.String()
}

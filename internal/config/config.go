package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sdorra/adguard-rewrite-sync/internal/adguard"
)

const (
	StatePresent = "present"
	StateAbsent  = "absent"
)

const (
	defaultState       = StatePresent
	defaultLogLevel    = "info"
	defaultLogEnv      = "prod"
	defaultMetricsAddr = ":9090"
)

type Config struct {
	SyncInterval time.Duration     `yaml:"syncInterval"`
	State        string            `yaml:"state"`
	DryRun       bool              `yaml:"dryRun"`
	Servers      []Server          `yaml:"servers"`
	Rewrites     []adguard.Rewrite `yaml:"rewrites"`
	Log          Log               `yaml:"log"`
	Metrics      Metrics           `yaml:"metrics"`
}

// Server identifies one AdGuard Home instance and its credential.
type Server struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func (s Server) String() string {
	return fmt.Sprintf("%s (user=%s)", s.URL, s.Username)
}

// LogValue keeps the password out of log output.
func (s Server) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", s.URL),
		slog.String("username", s.Username),
		slog.String("password", "[redacted]"),
	)
}

type Log struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads the config file, applies environment overrides and defaults,
// and validates the result. The returned config is ready for the reconciler.
func Load(path string) (*Config, error) {
	configFile := true
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Default().Warn("fail find config file, proceeding", "path", path)
		configFile = false
	}

	var cfg Config
	if configFile {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}

		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, err
		}
		if err := f.Close(); err != nil {
			slog.Default().Warn("fail close config file", "path", path, "error", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.State == "" {
		c.State = defaultState
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
	if c.Log.Env == "" {
		c.Log.Env = defaultLogEnv
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = defaultMetricsAddr
	}
}

func (c *Config) applyEnv() {
	if state := os.Getenv("ADGUARD_SYNC_STATE"); state != "" {
		c.State = state
	}
	if syncInterval := os.Getenv("ADGUARD_SYNC_INTERVAL"); syncInterval != "" {
		if interval, err := time.ParseDuration(syncInterval); err == nil {
			c.SyncInterval = interval
		} else {
			slog.Default().Warn("fail parse sync interval to duration from string", "interval", syncInterval, "error", err)
		}
	}
	if dryRun := os.Getenv("ADGUARD_SYNC_DRYRUN"); dryRun != "" {
		switch strings.ToLower(dryRun) {
		case "true":
			c.DryRun = true
		case "false":
			c.DryRun = false
		default:
			slog.Default().Warn("fail parse dryrun to bool from string", "dryrun", dryRun)
		}
	}
	if loglevel := os.Getenv("ADGUARD_SYNC_LOG_LEVEL"); loglevel != "" {
		c.Log.Level = loglevel
	}
	if logenv := os.Getenv("ADGUARD_SYNC_LOG_ENV"); logenv != "" {
		c.Log.Env = logenv
	}
	if addr := os.Getenv("ADGUARD_SYNC_METRICS_ADDR"); addr != "" {
		c.Metrics.Addr = addr
	}
}

// Validate enforces the required fields and the state enum.
func (c *Config) Validate() error {
	if c.State != StatePresent && c.State != StateAbsent {
		return fmt.Errorf("state must be %q or %q, got %q", StatePresent, StateAbsent, c.State)
	}
	if len(c.Servers) == 0 {
		return errors.New("at least one server is required")
	}
	for i, s := range c.Servers {
		if s.URL == "" {
			return fmt.Errorf("servers[%d]: url is required", i)
		}
		if s.Username == "" {
			return fmt.Errorf("servers[%d]: username is required", i)
		}
		if s.Password == "" {
			return fmt.Errorf("servers[%d]: password is required", i)
		}
	}
	for i, r := range c.Rewrites {
		if r.Domain == "" {
			return fmt.Errorf("rewrites[%d]: domain is required", i)
		}
		if r.Answer == "" {
			return fmt.Errorf("rewrites[%d]: answer is required", i)
		}
	}
	return nil
}

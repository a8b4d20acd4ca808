package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the Web UI/API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as the display zone for all
	// schedule computation (e.g. "Europe/Warsaw").
	Timezone string `yaml:"timezone" json:"timezone"`

	// BaseURL is the plan service endpoint base, e.g.
	// "https://plan.zut.edu.pl".
	BaseURL string `yaml:"base_url" json:"base_url"`

	// Album is the default student album number used for schedule queries
	// when a request does not carry a search filter. May be empty; an empty
	// identity yields a well-formed empty schedule.
	Album string `yaml:"album" json:"album"`

	// RefreshCron is a cron-style schedule string (e.g. "*/10 * * * *")
	// used to warm the schedule cache for the current week.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// CacheBackend selects the result cache storage. Supported values:
	//   - "memory" (default)
	//   - "sqlite"
	CacheBackend string `yaml:"cache_backend" json:"cache_backend"`

	// CachePath is the SQLite cache file location, used only when
	// CacheBackend is "sqlite".
	CachePath string `yaml:"cache_path" json:"cache_path"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       "127.0.0.1:8080",
		Timezone:     "Europe/Warsaw",
		BaseURL:      "https://plan.zut.edu.pl",
		Album:        "",
		RefreshCron:  "*/10 * * * *",
		CacheBackend: "memory",
		CachePath:    "./cache/schedule.db",
		BasicAuth:    nil,
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs (e.g., older versions) still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Europe/Warsaw"
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://plan.zut.edu.pl"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/10 * * * *"
	}
	switch c.CacheBackend {
	case "memory", "sqlite":
		// ok
	case "":
		c.CacheBackend = "memory"
	default:
		// Unknown value; fall back to memory to avoid surprising I/O.
		c.CacheBackend = "memory"
	}
	if c.CachePath == "" {
		c.CachePath = "./cache/schedule.db"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".mzut-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	// Set permissions to 0600 on temp file before rename.
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	// Rename over the target path.
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the package-level
// Save function:
//
//	cfg, _ := config.Load(path)
//	// ... mutate cfg ...
//	if err := cfg.Save(path); err != nil { ... }
func (c *Config) Save(path string) error {
	return Save(path, c)
}

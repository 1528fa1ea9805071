// Package config manages shopsync tool settings and the .shopsync directory.
// Settings resolve in order: defaults, the TOML file, environment, flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/kilupskalvis/shopsync/internal/apperr"
	"github.com/kilupskalvis/shopsync/internal/models"
	"github.com/kilupskalvis/shopsync/internal/resilience"
)

const (
	Dir               = ".shopsync"
	ConfigFile        = "config"
	DatabaseFile      = "history.db"
	ReportsDir        = "reports"
	DefaultConfigPath = "config.yml"
	DefaultMaxReports = 20
)

// Environment variables read by ApplyEnv
const (
	EnvURL    = "SALEOR_URL"
	EnvToken  = "SALEOR_TOKEN"
	EnvConfig = "SALEOR_CONFIG"
)

// Chunk overrides the batch shape of one section
type Chunk struct {
	Size  int    `toml:"size,omitempty"`
	Delay string `toml:"delay,omitempty"`
}

// Config is the resolved tool configuration
type Config struct {
	URL           string           `toml:"url,omitempty"`
	Token         string           `toml:"token,omitempty"`
	ConfigPath    string           `toml:"config,omitempty"`
	ReportsDir    string           `toml:"reports_dir,omitempty"`
	MaxReports    int              `toml:"max_reports,omitempty"`
	RemoteTimeout string           `toml:"remote_timeout,omitempty"`
	Chunk         map[string]Chunk `toml:"chunk,omitempty"`
	path          string           // path to .shopsync directory
}

// Overrides are command-line values; empty fields leave the setting alone
type Overrides struct {
	URL        string
	Token      string
	ConfigPath string
}

// FindRoot finds the .shopsync directory by walking up from dir
func FindRoot(dir string) (string, error) {
	for {
		root := filepath.Join(dir, Dir)
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			return root, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s directory found (or any parent up to root)", Dir)
		}
		dir = parent
	}
}

// Load reads the configuration of the working directory
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return LoadFrom(cwd)
}

// LoadFrom reads the configuration that applies to dir. Without a .shopsync
// directory the defaults apply, rooted at dir.
func LoadFrom(dir string) (*Config, error) {
	root, err := FindRoot(dir)
	if err != nil {
		return &Config{path: filepath.Join(dir, Dir)}, nil
	}

	cfg := &Config{path: root}
	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays the SALEOR_* environment variables
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvURL); ok && v != "" {
		c.URL = v
	}
	if v, ok := lookup(EnvToken); ok && v != "" {
		c.Token = v
	}
	if v, ok := lookup(EnvConfig); ok && v != "" {
		c.ConfigPath = v
	}
}

// Apply overlays command-line values
func (c *Config) Apply(o Overrides) {
	if o.URL != "" {
		c.URL = o.URL
	}
	if o.Token != "" {
		c.Token = o.Token
	}
	if o.ConfigPath != "" {
		c.ConfigPath = o.ConfigPath
	}
}

// RequireRemote checks that the remote instance can be addressed
func (c *Config) RequireRemote() error {
	var missing []string
	if strings.TrimSpace(c.URL) == "" {
		missing = append(missing, "URL (--url or "+EnvURL+")")
	}
	if strings.TrimSpace(c.Token) == "" {
		missing = append(missing, "token (--token or "+EnvToken+")")
	}
	if len(missing) == 0 {
		return nil
	}
	e := apperr.Validationf("missing remote %s", strings.Join(missing, " and "))
	e.Suggestions = []string{
		"Pass --url and --token, or export " + EnvURL + " and " + EnvToken,
		"Or store them in " + filepath.Join(Dir, ConfigFile),
	}
	return e
}

// Save writes the configuration to disk
func (c *Config) Save() error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(c.path, ConfigFile), data, 0600)
}

// Root returns the path to the .shopsync directory
func (c *Config) Root() string {
	return c.path
}

// LocalConfigPath returns the declarative YAML file to use
func (c *Config) LocalConfigPath() string {
	if c.ConfigPath != "" {
		return c.ConfigPath
	}
	return DefaultConfigPath
}

// DatabasePath returns the path to the history database
func (c *Config) DatabasePath() string {
	return filepath.Join(c.path, DatabaseFile)
}

// ReportsPath returns the directory deployment reports are written to
func (c *Config) ReportsPath() string {
	if c.ReportsDir != "" {
		return c.ReportsDir
	}
	return filepath.Join(c.path, ReportsDir)
}

// ReportsToKeep returns how many reports survive pruning
func (c *Config) ReportsToKeep() int {
	if c.MaxReports > 0 {
		return c.MaxReports
	}
	return DefaultMaxReports
}

// Timeout returns the remote retrieval timeout; zero means the default
func (c *Config) Timeout() (time.Duration, error) {
	if c.RemoteTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.RemoteTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid remote_timeout %q: %w", c.RemoteTimeout, err)
	}
	return d, nil
}

// ChunkOverrides resolves the [chunk.<section>] tables into batch options.
// Unset fields keep the section default.
func (c *Config) ChunkOverrides() (map[models.EntityType]resilience.ChunkOptions, error) {
	if len(c.Chunk) == 0 {
		return nil, nil
	}
	out := make(map[models.EntityType]resilience.ChunkOptions, len(c.Chunk))
	for name, ch := range c.Chunk {
		et, err := models.ParseEntityType(name)
		if err != nil {
			return nil, fmt.Errorf("chunk.%s: %w", name, err)
		}
		opts := resilience.DefaultChunkOptions(et)
		if ch.Size > 0 {
			opts.Size = ch.Size
		}
		if ch.Delay != "" {
			d, err := time.ParseDuration(ch.Delay)
			if err != nil {
				return nil, fmt.Errorf("chunk.%s: invalid delay %q: %w", name, ch.Delay, err)
			}
			opts.Delay = d
		}
		out[et] = opts
	}
	return out, nil
}

// Initialize creates a .shopsync directory in dir with an initial configuration
func Initialize(dir, url string) (*Config, error) {
	root := filepath.Join(dir, Dir)

	// Check if already initialized
	if _, err := os.Stat(root); err == nil {
		return nil, fmt.Errorf("%s already exists in %s", Dir, dir)
	}

	if err := os.MkdirAll(filepath.Join(root, ReportsDir), 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", Dir, err)
	}

	cfg := &Config{
		URL:  url,
		path: root,
	}

	if err := cfg.Save(); err != nil {
		// Cleanup on failure
		os.RemoveAll(root)
		return nil, err
	}

	return cfg, nil
}

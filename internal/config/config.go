package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// S3 describes an S3-compatible bucket holding the assets tree.
// Credentials are not stored here; see S3Credentials.
type S3 struct {
	Endpoint string `yaml:"endpoint"`
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix,omitempty"`
	Region   string `yaml:"region,omitempty"`
	Secure   bool   `yaml:"secure"`
}

// Assets selects where manifest and asset files come from. The first
// configured of S3, BaseURL and Dir wins.
type Assets struct {
	BaseURL   string  `yaml:"base_url,omitempty"`
	Dir       string  `yaml:"dir,omitempty"`
	S3        *S3     `yaml:"s3,omitempty"`
	ProbeRate float64 `yaml:"probe_rate,omitempty"`
}

// Config is the in-memory representation of ~/.primview/primview.yaml.
type Config struct {
	Dataset      string        `yaml:"dataset"`
	Readme       string        `yaml:"readme,omitempty"`
	Assets       Assets        `yaml:"assets"`
	VisibleLimit int           `yaml:"visible_limit,omitempty"`
	Debounce     time.Duration `yaml:"debounce,omitempty"`
}

// Dir returns the absolute path to ~/.primview/.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".primview"), nil
}

// ConfigPath returns the absolute path to ~/.primview/primview.yaml.
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "primview.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(p string) (string, error) {
	if !strings.HasPrefix(p, "~") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot expand ~: %w", err)
	}
	return filepath.Join(home, p[1:]), nil
}

// DefaultConfig returns the configuration used when no file exists: the
// dataset and assets are read from the current directory.
func DefaultConfig() *Config {
	return &Config{
		Dataset:      "data_enriched.json",
		Readme:       "README.md",
		Assets:       Assets{Dir: "."},
		VisibleLimit: 300,
		Debounce:     200 * time.Millisecond,
	}
}

// Load reads ~/.primview/primview.yaml, falling back to defaults when the
// file does not exist.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields DefaultConfig.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("cannot read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if err := cfg.expand(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	return cfg, nil
}

func (c *Config) expand() error {
	var err error
	for _, p := range []*string{&c.Dataset, &c.Readme, &c.Assets.Dir} {
		if *p, err = ExpandPath(*p); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.Dataset == "" {
		c.Dataset = def.Dataset
	}
	if c.VisibleLimit <= 0 {
		c.VisibleLimit = def.VisibleLimit
	}
	if c.Debounce <= 0 {
		c.Debounce = def.Debounce
	}
}

// Save marshals cfg and writes it to path, creating parent directories.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cannot write config %s: %w", path, err)
	}
	return nil
}

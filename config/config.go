// Package config loads the skala.yml service configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/swissinfo-ch/skala/unit"
)

// DefaultPath is used when SKALA_CONFIG is unset.
const DefaultPath = "skala.yml"

type Config struct {
	Listen          string            `yaml:"listen"`
	Store           StoreConfig       `yaml:"store"`
	Workers         int               `yaml:"workers"`
	MinViewInterval Duration          `yaml:"minViewInterval"`
	Compression     CompressionConfig `yaml:"compression"`
	RateLimit       RateLimitConfig   `yaml:"rateLimit"`
	Domains         []DomainConfig    `yaml:"domains"`
	Views           []ViewConfig      `yaml:"views"`
}

type StoreConfig struct {
	File          string   `yaml:"file"`
	BlockSize     int      `yaml:"blockSize"`
	FlushInterval Duration `yaml:"flushInterval"`
}

type CompressionConfig struct {
	Enabled bool `yaml:"enabled"`
	MinSize int  `yaml:"minSize"`
}

type RateLimitConfig struct {
	Post LimitConfig `yaml:"post"`
	Get  LimitConfig `yaml:"get"`
}

type LimitConfig struct {
	Every Duration `yaml:"every"`
	Burst int      `yaml:"burst"`
}

// DomainConfig declares a custom unit domain.
type DomainConfig struct {
	Name  string       `yaml:"name"`
	Units []UnitConfig `yaml:"units"`
}

type UnitConfig struct {
	Name      string  `yaml:"name"`
	Magnitude float64 `yaml:"magnitude"`
	Label     string  `yaml:"label"`
}

// ViewConfig declares one report job.
type ViewConfig struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind"` // units, top or subset
	Domain   string   `yaml:"domain"`
	Strategy string   `yaml:"strategy"`
	Window   Duration `yaml:"window"`
	Label    string   `yaml:"label"`
	Cutoff   int      `yaml:"cutoff"`
	N        int      `yaml:"n"`
	Limit    int      `yaml:"limit"`
}

// Duration wraps time.Duration for yaml, which has no native parsing
// for it.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("failed to parse duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Path returns the config file path from SKALA_CONFIG, or DefaultPath.
func Path() string {
	if path, ok := os.LookupEnv("SKALA_CONFIG"); ok {
		return path
	}
	return DefaultPath
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Listen: ":8080",
		Store: StoreConfig{
			File:          "samples",
			BlockSize:     1000,
			FlushInterval: Duration{2 * time.Second},
		},
		Workers:         4,
		MinViewInterval: Duration{time.Minute},
		Compression: CompressionConfig{
			Enabled: true,
			MinSize: 1024,
		},
		RateLimit: RateLimitConfig{
			Post: LimitConfig{Every: Duration{time.Second}, Burst: 4},
			Get:  LimitConfig{Every: Duration{10 * time.Second}, Burst: 2},
		},
		Views: []ViewConfig{
			{Name: "units-last30d", Kind: "units", Window: Duration{30 * 24 * time.Hour}},
			{Name: "top10-last30d", Kind: "top", N: 10, Window: Duration{30 * 24 * time.Hour}},
			{Name: "subset-last7d-max3", Kind: "subset", Limit: 3, Window: Duration{7 * 24 * time.Hour}},
		},
	}
}

// Load reads and validates the config file. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, cfg.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail deep inside
// the service: custom domains must satisfy the table invariants, views
// must name known kinds, strategies and domains.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen must not be empty")
	}
	if c.Store.File == "" {
		return errors.New("store.file must not be empty")
	}
	if c.Store.BlockSize <= 0 {
		return errors.New("store.blockSize must be positive")
	}
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	set, err := c.DomainSet()
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(c.Views))
	for _, v := range c.Views {
		if v.Name == "" {
			return errors.New("view without a name")
		}
		if seen[v.Name] {
			return fmt.Errorf("duplicate view %q", v.Name)
		}
		seen[v.Name] = true
		switch v.Kind {
		case "units":
			if _, err := unit.ParseStrategy(v.Strategy); err != nil {
				return fmt.Errorf("view %q: %w", v.Name, err)
			}
		case "top":
			if v.N <= 0 {
				return fmt.Errorf("view %q: n must be positive", v.Name)
			}
		case "subset":
			if v.Limit <= 0 {
				return fmt.Errorf("view %q: limit must be positive", v.Name)
			}
		default:
			return fmt.Errorf("view %q: unknown kind %q", v.Name, v.Kind)
		}
		if v.Domain != "" {
			if _, ok := set.Lookup(v.Domain); !ok {
				return fmt.Errorf("view %q: unknown domain %q", v.Name, v.Domain)
			}
		}
	}
	return nil
}

// DomainSet builds the built-in domains plus the configured custom
// ones. Table invariant violations surface here, at load time.
func (c *Config) DomainSet() (*unit.Set, error) {
	set := unit.Default()
	for _, dc := range c.Domains {
		units := make([]unit.Unit, len(dc.Units))
		for i, uc := range dc.Units {
			units[i] = unit.Unit{Name: uc.Name, Magnitude: uc.Magnitude, Label: uc.Label}
		}
		d, err := unit.New(dc.Name, units...)
		if err != nil {
			return nil, fmt.Errorf("invalid domain config: %w", err)
		}
		if err := set.Add(d); err != nil {
			return nil, fmt.Errorf("invalid domain config: %w", err)
		}
	}
	return set, nil
}

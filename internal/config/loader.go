package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPath returns ~/.travian/config.toml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".travian", "config.toml"), nil
}

// Load reads config from path, applying defaults for missing values
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Dir(path)
	}

	return cfg, nil
}

// LoadOrCreate loads config or creates default if missing
func LoadOrCreate(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		cfg.DataDir = filepath.Dir(path)
		return cfg, Save(path, cfg)
	}
	return Load(path)
}

// Save writes config to path
func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Validate rejects option combinations that can never select a target
func (c *Config) Validate() error {
	if c.Account.Timezone != "" {
		if _, err := time.LoadLocation(c.Account.Timezone); err != nil {
			return fmt.Errorf("account: unknown timezone %q", c.Account.Timezone)
		}
	}
	for i, d := range c.Farm.Discovery {
		if d.List == "" {
			return fmt.Errorf("farm.discovery[%d]: list name is required", i)
		}
		if d.Rule.IgnoreNPC && d.Rule.OnlyNPC {
			return fmt.Errorf("farm.discovery[%d]: ignore_npc and only_npc are exclusive", i)
		}
		if p := d.Rule.Inh; p != nil && p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			return fmt.Errorf("farm.discovery[%d]: inh.min %d above inh.max %d", i, *p.Min, *p.Max)
		}
	}
	if c.Hero.TerrorEnabled && c.Hero.TerrorMinStrength > c.Hero.TerrorMaxStrength {
		return fmt.Errorf("hero: terror_min_strength %d above terror_max_strength %d",
			c.Hero.TerrorMinStrength, c.Hero.TerrorMaxStrength)
	}
	return nil
}

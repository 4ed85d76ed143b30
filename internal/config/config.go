// Package config loads the gowinrt TOML configuration.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

const DefaultMetadataPath = `C:\Windows\System32\WinMetadata`

type Config struct {
	MetadataPaths     []string `toml:"metadata_paths"`
	LogLevel          string   `toml:"log_level"`
	CacheDeclarations *bool    `toml:"cache_declarations"`
	MetricsAddr       string   `toml:"metrics_addr"`
	Download          Download `toml:"download"`
	Generate          Generate `toml:"generate"`
}

type Download struct {
	Package string `toml:"package"`
	Version string `toml:"version"` // constraint, empty for the newest stable release
	Output  string `toml:"output"`
}

type Generate struct {
	Package string `toml:"package"`
	Output  string `toml:"output"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.applyDefaults()

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("config %s: unknown log_level %q", path, cfg.LogLevel)
	}
	return &cfg, nil
}

// Cache reports whether resolved declarations are cached by full name
func (cfg *Config) Cache() bool {
	return cfg.CacheDeclarations == nil || *cfg.CacheDeclarations
}

func (cfg *Config) applyDefaults() {
	if len(cfg.MetadataPaths) == 0 {
		cfg.MetadataPaths = []string{DefaultMetadataPath}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Download.Package == "" {
		cfg.Download.Package = "microsoft.windows.sdk.contracts"
	}
	if cfg.Download.Output == "" {
		cfg.Download.Output = "metadata"
	}
	if cfg.Generate.Package == "" {
		cfg.Generate.Package = "winrt"
	}
	if cfg.Generate.Output == "" {
		cfg.Generate.Output = "./output/"
	}
}

// Package config loads CLI and tooling configuration from a YAML file
// with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds everything the CLI and the mock backend need.
type Config struct {
	// BaseURL is the storefront backend root.
	BaseURL string `yaml:"base_url" env:"SHOP_BASE_URL"`
	// ContextHeader overrides the default host-context header name.
	ContextHeader string `yaml:"context_header" env:"SHOP_CONTEXT_HEADER"`
	// InitData is the live host-context value, normally injected by
	// the host shell's launcher.
	InitData string `yaml:"init_data" env:"TG_INIT_DATA"`
	// PageURL is the page address used as the init-data fallback.
	PageURL string `yaml:"page_url" env:"SHOP_PAGE_URL"`
	// Production suppresses the failure reporter's diagnostic dump.
	Production bool `yaml:"production" env:"SHOP_PRODUCTION"`
	// CredentialsFile is the persistent credential store location.
	CredentialsFile string `yaml:"credentials_file" env:"SHOP_CREDENTIALS_FILE"`
	// RedisAddr, when set, switches credential storage to Redis.
	RedisAddr string `yaml:"redis_addr" env:"SHOP_REDIS_ADDR"`
	// Listen is the mock backend's listen address.
	Listen string `yaml:"listen" env:"SHOP_MOCK_LISTEN"`
}

// Default returns the configuration used when no file and no overrides
// are present.
func Default() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		BaseURL:         "http://localhost:8081",
		CredentialsFile: filepath.Join(home, ".tgmarket", "credentials.json"),
		Listen:          ":8081",
	}
}

// Load builds the configuration: defaults, then the YAML file at path
// (skipped when path is empty or absent), then environment variables. A
// .env file in the working directory is honored when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fall through to env-only configuration.
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}

	return cfg, nil
}

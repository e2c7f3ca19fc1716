package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the crmctl client configuration.
type Config struct {
	Server     string        `mapstructure:"server"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Pipeline   string        `mapstructure:"pipeline"`
	KeyringDir string        `mapstructure:"keyring_dir"`
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "crmctl.yaml")
	}
	return filepath.Join(dir, "crmctl", "config.yaml")
}

// LoadConfig reads the YAML file at path. A missing file gives the defaults;
// CRMCTL_* variables override both.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("CRMCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server", "http://localhost:8080")
	v.SetDefault("timeout", "15s")
	v.SetDefault("pipeline", "")
	v.SetDefault("keyring_dir", filepath.Join(filepath.Dir(path), "credentials"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

package config

import (
	"errors"
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/san-kum/lenssim/internal/lens"
)

const (
	EnvPrefix      = "LENSSIM"
	DefaultDataDir = "~/.lenssim"
	DefaultTheme   = "magma"
)

// Settings are the persistent CLI options shared by every command.
type Settings struct {
	DataDir string
	Theme   string
	Sampler string
	Workers int
}

// NewViper returns a viper instance with defaults and LENSSIM_* environment
// lookup. Callers bind their flags before calling [LoadSettings].
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("data", DefaultDataDir)
	v.SetDefault("theme", DefaultTheme)
	v.SetDefault("sampler", DefaultSampler)
	v.SetDefault("workers", DefaultWorkers)
	return v
}

// LoadSettings resolves the data directory, merges an optional settings.yaml
// found there, and returns the effective settings. Precedence is flag, then
// environment, then settings file, then default.
func LoadSettings(v *viper.Viper) (*Settings, error) {
	dir, err := homedir.Expand(v.GetString("data"))
	if err != nil {
		return nil, fmt.Errorf("expand data dir: %w", err)
	}

	v.SetConfigName("settings")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read settings: %w", err)
		}
	}

	s := &Settings{
		DataDir: dir,
		Theme:   v.GetString("theme"),
		Sampler: v.GetString("sampler"),
		Workers: v.GetInt("workers"),
	}
	if _, err := lens.SamplerByName(s.Sampler); err != nil {
		return nil, err
	}
	return s, nil
}

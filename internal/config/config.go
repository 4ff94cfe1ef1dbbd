package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/lenssim/internal/lens"
)

const (
	DefaultSampler = lens.DefaultSampler
	DefaultWorkers = 1
)

// Config is a lens run as stored in YAML files and presets.
type Config struct {
	Name    string       `yaml:"name,omitempty"`
	Lens    LensConfig   `yaml:"lens"`
	Sampler string       `yaml:"sampler"`
	Workers int          `yaml:"workers"`
	Output  OutputConfig `yaml:"output"`
}

type LensConfig struct {
	GridSize       int     `yaml:"grid_size"`
	EinsteinRadius float64 `yaml:"einstein_radius"`
	SourceX        float64 `yaml:"source_x"`
	SourceY        float64 `yaml:"source_y"`
	SourceRadius   float64 `yaml:"source_radius"`
}

type OutputConfig struct {
	Save  bool   `yaml:"save"`
	Image string `yaml:"image,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Lens: LensConfig{
			GridSize:       lens.DefaultGridSize,
			EinsteinRadius: lens.DefaultEinsteinRadius,
			SourceX:        lens.DefaultSourceX,
			SourceY:        lens.DefaultSourceY,
			SourceRadius:   lens.DefaultSourceRadius,
		},
		Sampler: DefaultSampler,
		Workers: DefaultWorkers,
		Output:  OutputConfig{Save: true},
	}
}

func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto reads the config file at path over a copy of base. Keys the
// file leaves out keep the values from base.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params converts the lens section to mapper parameters.
func (c *Config) Params() lens.Params {
	return lens.Params{
		GridSize:       c.Lens.GridSize,
		EinsteinRadius: c.Lens.EinsteinRadius,
		SourceX:        c.Lens.SourceX,
		SourceY:        c.Lens.SourceY,
		SourceRadius:   c.Lens.SourceRadius,
	}
}

// SetParams overwrites the lens section from p.
func (c *Config) SetParams(p lens.Params) {
	c.Lens = LensConfig{
		GridSize:       p.GridSize,
		EinsteinRadius: p.EinsteinRadius,
		SourceX:        p.SourceX,
		SourceY:        p.SourceY,
		SourceRadius:   p.SourceRadius,
	}
}

// Validate applies the user-facing parameter ranges and checks the sampler name.
func (c *Config) Validate() error {
	if err := lens.DefaultLimits.Check(c.Params()); err != nil {
		return err
	}
	if _, err := lens.SamplerByName(c.Sampler); err != nil {
		return err
	}
	if c.Workers < 0 {
		return &lens.ValidationError{Field: "workers", Value: float64(c.Workers), Reason: "must not be negative"}
	}
	return nil
}

// Mapper builds a mapper for the configured sampler and worker count.
func (c *Config) Mapper() (*lens.Mapper, error) {
	s, err := lens.SamplerByName(c.Sampler)
	if err != nil {
		return nil, err
	}
	return lens.NewMapper(lens.WithSampler(s), lens.WithWorkers(c.Workers)), nil
}

package config

import "sort"

func preset(name string, grid int, thetaE, sx, sy, radius float64) *Config {
	return &Config{
		Name:    name,
		Lens:    LensConfig{GridSize: grid, EinsteinRadius: thetaE, SourceX: sx, SourceY: sy, SourceRadius: radius},
		Sampler: DefaultSampler,
		Workers: DefaultWorkers,
		Output:  OutputConfig{Save: true},
	}
}

var Presets = map[string]*Config{
	// The starting values of the interactive page.
	"default": preset("default", 200, 50, 50, 0, 20),
	// Source directly behind the lens: a full Einstein ring.
	"ring": preset("ring", 200, 50, 0, 0, 20),
	// Small offset: two bright arcs hugging the ring.
	"arcs": preset("arcs", 240, 60, 10, 5, 15),
	// Diagonal source.
	"cross": preset("cross", 260, 60, 40, 40, 12),
	// Weak lens, distant source: mostly an undistorted blob.
	"weak": preset("weak", 300, 10, 120, 0, 10),
	// Ring wider than the grid would hold at default size.
	"strong": preset("strong", 400, 150, 30, -20, 25),
	"wide":   preset("wide", 500, 80, -100, 60, 30),
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

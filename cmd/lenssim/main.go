package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/lenssim/internal/config"
	"github.com/san-kum/lenssim/internal/lens"
	"github.com/san-kum/lenssim/internal/storage"
	"github.com/san-kum/lenssim/internal/viz"
)

// cli carries the resolved persistent settings to every command.
type cli struct {
	v        *viper.Viper
	settings *config.Settings
	out      io.Writer
}

// main is the entry point for the lenssim CLI. With no subcommand it opens
// the interactive explorer. It exits with status 1 if a command fails.
func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{v: config.NewViper(), out: out}

	rootCmd := &cobra.Command{
		Use:   "lenssim",
		Short: "point-mass gravitational lens mapper",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.LoadSettings(c.v)
			if err != nil {
				return err
			}
			c.settings = s
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI()
		},
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)

	pf := rootCmd.PersistentFlags()
	pf.String("data", config.DefaultDataDir, "data directory")
	pf.String("theme", config.DefaultTheme, fmt.Sprintf("terminal theme %v", viz.ThemeNames()))
	pf.String("sampler", config.DefaultSampler, fmt.Sprintf("interpolation kernel %v", lens.SamplerNames()))
	pf.Int("workers", config.DefaultWorkers, "goroutines per run (0 = all CPUs)")
	for _, name := range []string{"data", "theme", "sampler", "workers"} {
		_ = c.v.BindPFlag(name, pf.Lookup(name))
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive slider explorer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI()
		},
	}

	rootCmd.AddCommand(
		c.runCmd(),
		c.listCmd(),
		c.showCmd(),
		c.renderCmd(),
		c.exportJSONCmd(),
		c.exportCSVCmd(),
		c.exportSVGCmd(),
		c.deleteCmd(),
		c.presetsCmd(),
		c.sweepCmd(),
		c.scenarioCmd(),
		c.fitCmd(),
		c.monteCarloCmd(),
		c.deflectionCmd(),
		c.imagesCmd(),
		c.benchCmd(),
		tuiCmd,
	)
	return rootCmd
}

func (c *cli) store() (*storage.Store, error) {
	st := storage.New(filepath.Join(c.settings.DataDir, "runs"))
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}

func (c *cli) mapper() (*lens.Mapper, error) {
	s, err := lens.SamplerByName(c.settings.Sampler)
	if err != nil {
		return nil, err
	}
	return lens.NewMapper(lens.WithSampler(s), lens.WithWorkers(c.settings.Workers)), nil
}

func (c *cli) runTUI() error {
	st, err := c.store()
	if err != nil {
		return err
	}
	app := viz.NewApp(
		viz.WithTheme(c.settings.Theme),
		viz.WithKernel(c.settings.Sampler),
		viz.WithWorkers(c.settings.Workers),
		viz.WithSave(func(res *lens.Result, m map[string]float64) (string, error) {
			return st.Save("tui", res, 0, m)
		}),
	)
	return viz.Run(app)
}

// paramFlags are the lens parameter flags shared by run, sweep and
// montecarlo. Explicit flags override a config file, which overrides a
// preset and the user settings.
type paramFlags struct {
	grid       int
	thetaE     float64
	sourceX    float64
	sourceY    float64
	radius     float64
	preset     string
	configFile string
}

func (p *paramFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.IntVar(&p.grid, "grid", lens.DefaultGridSize, "grid size in pixels")
	f.Float64Var(&p.thetaE, "theta-e", lens.DefaultEinsteinRadius, "Einstein radius in pixels")
	f.Float64Var(&p.sourceX, "source-x", lens.DefaultSourceX, "source center x")
	f.Float64Var(&p.sourceY, "source-y", lens.DefaultSourceY, "source center y")
	f.Float64Var(&p.radius, "source-radius", lens.DefaultSourceRadius, "source radius (sigma = radius/3)")
	f.StringVar(&p.preset, "preset", "", "start from a preset")
	f.StringVar(&p.configFile, "config", "", "config file path (yaml)")
}

func (p *paramFlags) resolve(cmd *cobra.Command, s *config.Settings) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Sampler, cfg.Workers = s.Sampler, s.Workers

	if p.preset != "" {
		cfg = config.GetPreset(p.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", p.preset, config.ListPresets())
		}
		cfg.Sampler, cfg.Workers = s.Sampler, s.Workers
	}

	if p.configFile != "" {
		loaded, err := config.LoadOnto(p.configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	params := cfg.Params()
	flags := cmd.Flags()
	if flags.Changed("sampler") {
		cfg.Sampler = s.Sampler
	}
	if flags.Changed("workers") {
		cfg.Workers = s.Workers
	}
	if flags.Changed("grid") {
		params.GridSize = p.grid
	}
	if flags.Changed("theta-e") {
		params.EinsteinRadius = p.thetaE
	}
	if flags.Changed("source-x") {
		params.SourceX = p.sourceX
	}
	if flags.Changed("source-y") {
		params.SourceY = p.sourceY
	}
	if flags.Changed("source-radius") {
		params.SourceRadius = p.radius
	}
	cfg.SetParams(params)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/san-kum/lenssim/internal/automation"
	"github.com/san-kum/lenssim/internal/lens"
	"github.com/san-kum/lenssim/internal/metrics"
	"github.com/san-kum/lenssim/internal/optim"
)

func (c *cli) sweepCmd() *cobra.Command {
	var (
		pf    paramFlags
		param string
		lo    float64
		hi    float64
		steps int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter and report image statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pf.resolve(cmd, c.settings)
			if err != nil {
				return err
			}
			mapper, err := cfg.Mapper()
			if err != nil {
				return err
			}

			sweep := automation.Sweep{Param: param, Min: lo, Max: hi, Steps: steps, Base: cfg.Params()}
			points, err := automation.RunSweep(background(cmd), sweep, mapper, c.out)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.out)
			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tPEAKS\tFLUX_RATIO\tRING_RADIUS\n", strings.ToUpper(param))
			ratios := make([]float64, len(points))
			for i, pt := range points {
				fmt.Fprintf(w, "%.4f\t%.0f\t%.4f\t%.2f\n", pt.Value, pt.PeakCount, pt.FluxRatio, pt.RingRadius)
				ratios[i] = pt.FluxRatio
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if len(ratios) > 1 {
				fmt.Fprintln(c.out, asciigraph.Plot(ratios,
					asciigraph.Height(8),
					asciigraph.Width(60),
					asciigraph.Caption("flux ratio vs "+param),
				))
			}
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&param, "param", "einstein_radius", fmt.Sprintf("parameter to vary %v", lens.ParamNames))
	cmd.Flags().Float64Var(&lo, "min", 10, "first value")
	cmd.Flags().Float64Var(&hi, "max", 100, "last value")
	cmd.Flags().IntVar(&steps, "steps", 10, "number of values")
	return cmd
}

func (c *cli) scenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			mapper, err := c.mapper()
			if err != nil {
				return err
			}
			st, err := c.store()
			if err != nil {
				return err
			}

			if sc.Name != "" {
				fmt.Fprintf(c.out, "scenario: %s\n", sc.Name)
			}
			outcomes, err := automation.RunScenario(background(cmd), sc, mapper, st, c.out)
			if err != nil {
				return err
			}

			fmt.Fprintln(c.out)
			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tRUN ID\tTIME\tPEAKS\tFLUX_RATIO")
			for _, o := range outcomes {
				id := o.RunID
				if id == "" {
					id = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%v\t%.0f\t%.4f\n", o.Name, id, o.Elapsed.Round(time.Microsecond), o.Metrics["peak_count"], o.Metrics["flux_ratio"])
			}
			return w.Flush()
		},
	}
}

func (c *cli) fitCmd() *cobra.Command {
	var (
		params []string
		steps  int
	)

	cmd := &cobra.Command{
		Use:   "fit [run_id]",
		Short: "recover lens parameters from a stored lensed image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, res, err := c.loadRun(args[0])
			if err != nil {
				return err
			}
			mapper, err := c.mapper()
			if err != nil {
				return err
			}

			ranges := make(map[string][]float64, len(params))
			for _, name := range params {
				r, err := lens.DefaultLimits.Range(name)
				if err != nil {
					return err
				}
				ranges[name] = optim.Span(r.Min, r.Max, steps)
			}

			fit, err := optim.FitLens(background(cmd), res.Lensed, meta.Params, ranges, mapper, c.out)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.out, "\nevaluations: %d\n", fit.Evaluations)
			fmt.Fprintf(c.out, "sse: %.6g\n", fit.SSE)
			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PARAM\tFIT\tSTORED")
			for _, name := range params {
				got, _ := fit.Params.Get(name)
				want, _ := meta.Params.Get(name)
				fmt.Fprintf(w, "%s\t%g\t%g\n", name, got, want)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringSliceVar(&params, "params", []string{"einstein_radius", "source_x", "source_y"}, "parameters to fit")
	cmd.Flags().IntVar(&steps, "steps", 7, "candidate values per parameter, spread over its slider range")
	return cmd
}

func (c *cli) monteCarloCmd() *cobra.Command {
	var (
		pf     paramFlags
		jitter float64
		trials int
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "jitter the source position and count multiple images",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pf.resolve(cmd, c.settings)
			if err != nil {
				return err
			}
			mapper, err := cfg.Mapper()
			if err != nil {
				return err
			}

			mc := automation.MonteCarloConfig{Base: cfg.Params(), Jitter: jitter, Trials: trials, Seed: seed}
			results, err := automation.RunMonteCarlo(background(cmd), mc, mapper, c.out)
			if err != nil {
				return err
			}

			multiple, mean, std := automation.MonteCarloStats(results)
			fmt.Fprintf(c.out, "\ntrials: %d\n", len(results))
			fmt.Fprintf(c.out, "multiple images: %.1f%%\n", 100*multiple)
			fmt.Fprintf(c.out, "flux ratio: %.4f ± %.4f\n", mean, std)
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().Float64Var(&jitter, "jitter", 20, "maximum source offset per axis")
	cmd.Flags().IntVar(&trials, "trials", 50, "number of trials")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	return cmd
}

func parseFloats(args []string) ([]float64, error) {
	vals := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		vals[i] = v
	}
	return vals, nil
}

func checkEinsteinRadius(thetaE float64) error {
	if !(thetaE > 0) || math.IsInf(thetaE, 0) {
		return &lens.ValidationError{Field: "einstein_radius", Value: thetaE, Reason: "must be positive and finite"}
	}
	return nil
}

func (c *cli) deflectionCmd() *cobra.Command {
	var thetaE float64

	cmd := &cobra.Command{
		Use:   "deflection [x] [y]",
		Short: "deflection and source-plane position of an image-plane point",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			xy, err := parseFloats(args)
			if err != nil {
				return err
			}
			if err := checkEinsteinRadius(thetaE); err != nil {
				return err
			}
			ax, ay := lens.Deflection(xy[0], xy[1], thetaE)
			xs, ys := lens.LensEquation(xy[0], xy[1], ax, ay)

			fmt.Fprintf(c.out, "image:      (%g, %g)\n", xy[0], xy[1])
			fmt.Fprintf(c.out, "deflection: (%g, %g)  |alpha| = %g\n", ax, ay, math.Hypot(ax, ay))
			fmt.Fprintf(c.out, "source:     (%g, %g)\n", xs, ys)
			return nil
		},
	}
	cmd.Flags().Float64Var(&thetaE, "theta-e", lens.DefaultEinsteinRadius, "Einstein radius in pixels")
	return cmd
}

func (c *cli) imagesCmd() *cobra.Command {
	var thetaE float64

	cmd := &cobra.Command{
		Use:   "images [source_x] [source_y]",
		Short: "analytic image positions and magnification of a point source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			xy, err := parseFloats(args)
			if err != nil {
				return err
			}
			if err := checkEinsteinRadius(thetaE); err != nil {
				return err
			}

			beta := math.Hypot(xy[0], xy[1])
			plus, minus := metrics.ImagePositions(beta, thetaE)
			fmt.Fprintf(c.out, "source distance: %g\n", beta)
			if beta == 0 {
				fmt.Fprintf(c.out, "Einstein ring at radius %g\n", thetaE)
				return nil
			}

			ux, uy := xy[0]/beta, xy[1]/beta
			fmt.Fprintf(c.out, "image +: (%.3f, %.3f)  r = %.3f\n", plus*ux, plus*uy, plus)
			fmt.Fprintf(c.out, "image -: (%.3f, %.3f)  r = %.3f\n", minus*ux, minus*uy, -minus)
			fmt.Fprintf(c.out, "total magnification: %.4f\n", metrics.Magnification(beta, thetaE))
			return nil
		},
	}
	cmd.Flags().Float64Var(&thetaE, "theta-e", lens.DefaultEinsteinRadius, "Einstein radius in pixels")
	return cmd
}

func (c *cli) benchCmd() *cobra.Command {
	var (
		sizes   []int
		repeats int
		prof    string
		profDir string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the mapper across grid sizes",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch prof {
			case "":
			case "cpu":
				defer profile.Start(profile.CPUProfile, profile.ProfilePath(profDir), profile.Quiet).Stop()
			case "mem":
				defer profile.Start(profile.MemProfile, profile.ProfilePath(profDir), profile.Quiet).Stop()
			default:
				return fmt.Errorf("unknown profile %q (cpu, mem)", prof)
			}

			mapper, err := c.mapper()
			if err != nil {
				return err
			}
			repeats = max(repeats, 1)

			fmt.Fprintf(c.out, "benchmarking %s sampler with %d workers\n\n", mapper.Sampler().Name(), mapper.Workers())
			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "GRID\tPIXELS\tTIME\tPIXELS/SEC")

			for _, n := range sizes {
				p := lens.DefaultParams()
				p.GridSize = n

				start := time.Now()
				for i := 0; i < repeats; i++ {
					if _, err := mapper.Map(background(cmd), p); err != nil {
						return err
					}
				}
				elapsed := time.Since(start) / time.Duration(repeats)

				pixels := n * n
				fmt.Fprintf(w, "%d\t%d\t%v\t%.0f\n", n, pixels, elapsed, float64(pixels)/elapsed.Seconds())
			}

			if err := w.Flush(); err != nil {
				return err
			}
			if prof != "" {
				fmt.Fprintf(c.out, "\n%s profile written to %s\n", prof, profDir)
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&sizes, "grid", []int{100, 200, 300, 400, 500}, "grid sizes")
	cmd.Flags().IntVar(&repeats, "repeats", 3, "runs per grid size")
	cmd.Flags().StringVar(&prof, "profile", "", "write a cpu or mem profile")
	cmd.Flags().StringVar(&profDir, "profile-dir", ".", "profile output directory")
	return cmd
}

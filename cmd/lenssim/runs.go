package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/lenssim/internal/config"
	"github.com/san-kum/lenssim/internal/export"
	"github.com/san-kum/lenssim/internal/lens"
	"github.com/san-kum/lenssim/internal/metrics"
	"github.com/san-kum/lenssim/internal/storage"
	"github.com/san-kum/lenssim/internal/viz"
)

func (c *cli) runCmd() *cobra.Command {
	var (
		pf     paramFlags
		name   string
		noSave bool
		image  string
		plot   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "map a source through the lens",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := pf.resolve(cmd, c.settings)
			if err != nil {
				return err
			}
			mapper, err := cfg.Mapper()
			if err != nil {
				return err
			}
			if name == "" {
				name = cfg.Name
			}

			p := cfg.Params()
			fmt.Fprintf(c.out, "running lens map: grid=%d theta_e=%g source=(%g, %g) radius=%g sampler=%s\n",
				p.GridSize, p.EinsteinRadius, p.SourceX, p.SourceY, p.SourceRadius, mapper.Sampler().Name())

			start := time.Now()
			res, err := mapper.Map(background(cmd), p)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)
			m := metrics.Evaluate(res, metrics.Default())

			fmt.Fprintf(c.out, "completed in %v\n", elapsed)
			if cfg.Output.Save && !noSave {
				st, err := c.store()
				if err != nil {
					return err
				}
				runID, err := st.Save(name, res, elapsed, m)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.out, "run id: %s\n", runID)
			}

			c.printMetrics(m)

			if image == "" {
				image = cfg.Output.Image
			}
			if image != "" {
				if err := export.RenderPNG(res, image, export.DefaultOptions()); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "image: %s\n", image)
			}
			if plot {
				c.plotProfile(res)
			}
			return nil
		},
	}
	pf.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "run name")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	cmd.Flags().StringVarP(&image, "image", "o", "", "write a side-by-side PNG")
	cmd.Flags().BoolVar(&plot, "plot", false, "plot the brightness profile along the source axis")
	return cmd
}

func (c *cli) printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(c.out, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(c.out, "  %s: %.6f\n", name, m[name])
	}
}

func (c *cli) plotProfile(res *lens.Result) {
	dx, dy := metrics.SourceAxis(res.Params)
	prof := metrics.Profile(res.Lensed, res.Grid, dx, dy)
	if len(prof.Values) == 0 {
		return
	}
	graph := asciigraph.Plot(prof.Values,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("lensed brightness along the source axis"),
	)
	fmt.Fprintln(c.out, graph)
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store()
			if err != nil {
				return err
			}
			runs, err := st.List()
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Fprintln(c.out, "no runs found")
				return nil
			}

			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTIME\tGRID\tTHETA_E\tSOURCE\tSAMPLER\tPEAKS")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t(%g, %g) r=%g\t%s\t%.0f\n",
					run.ID,
					run.Name,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Params.GridSize,
					run.Params.EinsteinRadius,
					run.Params.SourceX, run.Params.SourceY, run.Params.SourceRadius,
					run.Sampler,
					run.Metrics["peak_count"],
				)
			}
			return w.Flush()
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	var cols int

	cmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "draw a stored run in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store()
			if err != nil {
				return err
			}
			meta, res, err := st.LoadResult(args[0])
			if err != nil {
				return err
			}

			theme := viz.GetTheme(c.settings.Theme)
			fmt.Fprintf(c.out, "run: %s\n", meta.ID)
			fmt.Fprintf(c.out, "time: %s\n", meta.Timestamp.Format(time.RFC3339))
			fmt.Fprintf(c.out, "sampler: %s\n\n", meta.Sampler)

			left := viz.Panel.Render("Original Source\n" + viz.Heatmap(res.Source, cols, theme))
			right := viz.Panel.Render("Lensed Image\n" + viz.Heatmap(res.Lensed, cols, theme))
			fmt.Fprintln(c.out, lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))

			c.printMetrics(meta.Metrics)
			c.plotProfile(res)
			return nil
		},
	}
	cmd.Flags().IntVar(&cols, "cols", 40, "heatmap width in characters")
	return cmd
}

// outputFile opens path for writing, or returns the command output for "" and "-".
func (c *cli) outputFile(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return c.out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func (c *cli) loadRun(runID string) (*storage.RunMetadata, *lens.Result, error) {
	st, err := c.store()
	if err != nil {
		return nil, nil, err
	}
	return st.LoadResult(runID)
}

func (c *cli) renderCmd() *cobra.Command {
	var (
		out   string
		field string
	)

	cmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render a stored run to PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, res, err := c.loadRun(args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = args[0] + ".png"
			}

			opts := export.DefaultOptions()
			switch field {
			case "":
				err = export.RenderPNG(res, out, opts)
			case "source":
				err = export.RenderFieldPNG(res.Source, "Original Source", out, opts)
			case "lensed":
				err = export.RenderFieldPNG(res.Lensed, "Lensed Image", out, opts)
			default:
				return fmt.Errorf("unknown field %q (source, lensed)", field)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default <run_id>.png)")
	cmd.Flags().StringVar(&field, "field", "", "render a single panel: source or lensed")
	return cmd
}

func (c *cli) exportJSONCmd() *cobra.Command {
	var (
		out    string
		fields bool
	)

	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, res, err := c.loadRun(args[0])
			if err != nil {
				return err
			}
			w, closeFn, err := c.outputFile(out)
			if err != nil {
				return err
			}
			if err := export.ExportJSON(w, meta.ID, res, meta.Metrics, fields); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default stdout)")
	cmd.Flags().BoolVar(&fields, "fields", false, "include both fields")
	return cmd
}

func pickField(res *lens.Result, name string) (*lens.Field, error) {
	switch name {
	case "lensed", "":
		return res.Lensed, nil
	case "source":
		return res.Source, nil
	}
	return nil, fmt.Errorf("unknown field %q (source, lensed)", name)
}

func (c *cli) exportCSVCmd() *cobra.Command {
	var (
		out   string
		field string
	)

	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a field to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, res, err := c.loadRun(args[0])
			if err != nil {
				return err
			}
			f, err := pickField(res, field)
			if err != nil {
				return err
			}
			w, closeFn, err := c.outputFile(out)
			if err != nil {
				return err
			}
			if err := storage.WriteFieldCSV(w, f); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default stdout)")
	cmd.Flags().StringVar(&field, "field", "lensed", "source or lensed")
	return cmd
}

func (c *cli) exportSVGCmd() *cobra.Command {
	var (
		out   string
		field string
		kind  string
		scale float64
	)

	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export a field, mask or profile to SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, res, err := c.loadRun(args[0])
			if err != nil {
				return err
			}
			f, err := pickField(res, field)
			if err != nil {
				return err
			}

			var svg string
			switch kind {
			case "field":
				svg = export.FieldToSVG(f, scale)
			case "mask":
				canvas := viz.MaskCanvas(f, 0.1, 0)
				viz.RingOverlay(canvas, res.Grid.N, res.Params.EinsteinRadius)
				dx, dy := metrics.SourceAxis(res.Params)
				viz.AxisOverlay(canvas, res.Grid.N, dx, dy)
				svg = export.CanvasToSVG(canvas, scale)
			case "profile":
				dx, dy := metrics.SourceAxis(res.Params)
				svg = export.ProfileToSVG(metrics.Profile(f, res.Grid, dx, dy), 800, 300, "#fc8961")
			default:
				return fmt.Errorf("unknown kind %q (field, mask, profile)", kind)
			}

			w, closeFn, err := c.outputFile(out)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, svg); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default stdout)")
	cmd.Flags().StringVar(&field, "field", "lensed", "source or lensed")
	cmd.Flags().StringVar(&kind, "kind", "field", "field, mask or profile")
	cmd.Flags().Float64Var(&scale, "scale", 2, "pixel size in SVG units")
	return cmd
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [run_id]",
		Short: "delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.store()
			if err != nil {
				return err
			}
			if err := st.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "deleted %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) presetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGRID\tTHETA_E\tSOURCE_X\tSOURCE_Y\tRADIUS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name).Params()
				fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%g\t%g\n",
					name, p.GridSize, p.EinsteinRadius, p.SourceX, p.SourceY, p.SourceRadius)
			}
			return w.Flush()
		},
	}
}

// background returns the command context, or a background context when the
// command runs outside Execute.
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

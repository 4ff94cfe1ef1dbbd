package export

import (
	"fmt"
	"image/color"
	"io"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/san-kum/lenssim/internal/lens"
)

const paletteSize = 256

type Options struct {
	PanelWidth  vg.Length
	PanelHeight vg.Length
	Markers     bool
	Axes        bool
}

func DefaultOptions() Options {
	return Options{
		PanelWidth:  5 * vg.Inch,
		PanelHeight: 5 * vg.Inch,
		Markers:     true,
		Axes:        true,
	}
}

// fieldGrid adapts a Field to plotter.GridXYZ. Row r is the y coordinate so
// the image is drawn with its origin at the lower left.
type fieldGrid struct {
	f *lens.Field
	g lens.Grid
}

func (fg fieldGrid) Dims() (c, r int)   { return fg.g.N, fg.g.N }
func (fg fieldGrid) Z(c, r int) float64 { return fg.f.At(r, c) }
func (fg fieldGrid) X(c int) float64    { return fg.g.Coord(c) }
func (fg fieldGrid) Y(r int) float64    { return fg.g.Coord(r) }

func colormap() palette.ColorMap {
	cm := moreland.ExtendedBlackBody()
	cm.SetMin(0)
	cm.SetMax(1)
	return cm
}

func fieldPlot(f *lens.Field, g lens.Grid, title string, opts Options) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (pixels)"
	p.Y.Label.Text = "Y (pixels)"

	h := plotter.NewHeatMap(fieldGrid{f: f, g: g}, colormap().Palette(paletteSize))
	if h.Max == h.Min {
		h.Max = h.Min + 1
	}
	p.Add(h)

	if opts.Axes {
		lo, hi := g.Extent()
		addAxes(p, lo, hi)
	}
	return p
}

// frame pins the axes to the grid extent once every plotter is added.
func frame(p *plot.Plot, g lens.Grid) {
	lo, hi := g.Extent()
	p.X.Min, p.X.Max = lo, hi
	p.Y.Min, p.Y.Max = lo, hi
}

func inside(g lens.Grid, x, y float64) bool {
	lo, hi := g.Extent()
	return x >= lo && x < hi && y >= lo && y < hi
}

func addAxes(p *plot.Plot, lo, hi float64) {
	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	for _, pts := range []plotter.XYs{
		{{X: lo, Y: 0}, {X: hi, Y: 0}},
		{{X: 0, Y: lo}, {X: 0, Y: hi}},
	} {
		l, err := plotter.NewLine(pts)
		if err != nil {
			continue
		}
		l.LineStyle.Color = gray
		l.LineStyle.Width = vg.Points(0.5)
		l.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		p.Add(l)
	}
}

func addMarker(p *plot.Plot, x, y float64, shape draw.GlyphDrawer, c color.Color, label string) error {
	s, err := plotter.NewScatter(plotter.XYs{{X: x, Y: y}})
	if err != nil {
		return err
	}
	s.GlyphStyle.Shape = shape
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(5)
	p.Add(s)
	p.Legend.Add(label, s)
	p.Legend.Top = true
	return nil
}

// SourcePlot builds the "Original Source" panel.
func SourcePlot(res *lens.Result, opts Options) (*plot.Plot, error) {
	p := fieldPlot(res.Source, res.Grid, "Original Source", opts)
	if opts.Markers && inside(res.Grid, res.Params.SourceX, res.Params.SourceY) {
		cyan := color.RGBA{G: 255, B: 255, A: 255}
		if err := addMarker(p, res.Params.SourceX, res.Params.SourceY, draw.CrossGlyph{}, cyan, "Source Center"); err != nil {
			return nil, err
		}
	}
	frame(p, res.Grid)
	return p, nil
}

// LensedPlot builds the "Lensed Image" panel.
func LensedPlot(res *lens.Result, opts Options) (*plot.Plot, error) {
	p := fieldPlot(res.Lensed, res.Grid, "Lensed Image", opts)
	if opts.Markers {
		if err := addMarker(p, 0, 0, draw.RingGlyph{}, color.White, "Lens Center"); err != nil {
			return nil, err
		}
	}
	frame(p, res.Grid)
	return p, nil
}

// WritePNG draws the source and lensed panels side by side.
func WritePNG(w io.Writer, res *lens.Result, opts Options) error {
	left, err := SourcePlot(res, opts)
	if err != nil {
		return err
	}
	right, err := LensedPlot(res, opts)
	if err != nil {
		return err
	}

	img := vgimg.New(2*opts.PanelWidth, opts.PanelHeight)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      2,
		PadX:      4 * vg.Millimeter,
		PadY:      2 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}
	canvases := plot.Align([][]*plot.Plot{{left, right}}, tiles, dc)
	left.Draw(canvases[0][0])
	right.Draw(canvases[0][1])

	png := vgimg.PngCanvas{Canvas: img}
	_, err = png.WriteTo(w)
	return err
}

func RenderPNG(res *lens.Result, path string, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, res, opts); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", path, err)
	}
	return f.Close()
}

// RenderFieldPNG saves a single field panel, without markers.
func RenderFieldPNG(f *lens.Field, title, path string, opts Options) error {
	g := lens.NewGrid(f.N())
	opts.Markers = false
	p := fieldPlot(f, g, title, opts)
	frame(p, g)
	return p.Save(opts.PanelWidth, opts.PanelHeight, path)
}

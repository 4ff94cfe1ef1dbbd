package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/lenssim/internal/lens"
	"github.com/san-kum/lenssim/internal/metrics"
	"github.com/san-kum/lenssim/internal/viz"
)

// brightnessFloor is the level below which pixels are left to the background.
const brightnessFloor = 1e-3

func svgHeader(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#000000"/>
`, width, height, width, height)
}

// FieldToSVG draws one square per pixel, scale units wide. Row 0 is at the
// bottom, matching the PNG panels.
func FieldToSVG(f *lens.Field, scale float64) string {
	if f == nil || scale <= 0 {
		return ""
	}

	n := f.N()
	size := float64(n) * scale
	cm := colormap()

	var sb strings.Builder
	svgHeader(&sb, size, size)

	for r := 0; r < n; r++ {
		y := size - float64(r+1)*scale
		for c := 0; c < n; c++ {
			v := f.At(r, c)
			if v < brightnessFloor {
				continue
			}
			col, err := cm.At(min(v, 1))
			if err != nil {
				continue
			}
			cr, cg, cb, _ := col.RGBA()
			fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#%02x%02x%02x"/>
`, float64(c)*scale, y, scale, scale, cr>>8, cg>>8, cb>>8)
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG format
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2
	height := float64(canvas.Height) * scale * 4

	var sb strings.Builder
	svgHeader(&sb, width, height)
	sb.WriteString("<g fill=\"#ffb000\">\n")

	dotRadius := scale * 0.4
	for y := 0; y < canvas.Height*4; y++ {
		for x := 0; x < canvas.Width*2; x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f"/>
`, cx, cy, dotRadius)
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// ProfileToSVG plots a brightness profile as a polyline.
func ProfileToSVG(p metrics.LineProfile, width, height int, strokeColor string) string {
	if len(p.Positions) < 2 {
		return ""
	}

	minX, maxX := p.Positions[0], p.Positions[len(p.Positions)-1]
	minY, maxY := 0.0, 0.0
	for _, v := range p.Values {
		maxY = max(maxY, v)
		minY = min(minY, v)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	svgHeader(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i := range p.Positions {
		x := (p.Positions[i] - minX) / rangeX * float64(width)
		y := float64(height) - (p.Values[i]-minY)/rangeY*float64(height)

		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}

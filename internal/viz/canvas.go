package viz

import (
	"math"
	"strings"

	"github.com/san-kum/lenssim/internal/lens"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
const brailleBase = 0x2800

var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// cell resolves sub-pixel (x, y) to its character and dot bit.
func (c *Canvas) cell(x, y int) (row, col int, bit rune, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, 0, false
	}
	col, row = x/2, y/4
	if col >= c.Width || row >= c.Height {
		return 0, 0, 0, false
	}
	return row, col, rune(pixelMap[y%4][x%2]), true
}

// Set turns on the dot at (x, y) in sub-pixel coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] |= bit
	}
}

func (c *Canvas) Unset(x, y int) {
	if row, col, bit, ok := c.cell(x, y); ok {
		c.Grid[row][col] &^= bit
	}
}

func (c *Canvas) IsSet(x, y int) bool {
	row, col, bit, ok := c.cell(x, y)
	return ok && c.Grid[row][col]&bit != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
		}
	}
}

// DrawLine draws a line between two sub-pixels with Bresenham's algorithm.
// Points outside the canvas are clipped.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawCircle draws a circle outline centered at (cx, cy) with radius r in
// sub-pixels.
func (c *Canvas) DrawCircle(cx, cy, r float64) {
	if r <= 0 {
		return
	}
	steps := max(16, 4*int(math.Ceil(math.Pi*r/2)))
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		c.Set(int(math.Round(cx+r*math.Cos(a))), int(math.Round(cy+r*math.Sin(a))))
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// MaskCanvas marks every field pixel brighter than threshold on a canvas
// w characters wide. The top canvas row shows the highest y.
func MaskCanvas(f *lens.Field, threshold float64, w int) *Canvas {
	n := f.N()
	if w <= 0 {
		w = (n + 1) / 2
	}
	subW := w * 2
	h := (subW + 3) / 4
	c := NewCanvas(w, h)
	subH := h * 4

	for y := 0; y < subH; y++ {
		row := n - 1 - y*n/subH
		for x := 0; x < subW; x++ {
			col := x * n / subW
			if f.At(row, col) > threshold {
				c.Set(x, y)
			}
		}
	}
	return c
}

// RingOverlay draws the Einstein ring of radius einsteinRadius, in grid
// pixels, onto a canvas produced by MaskCanvas for an n-pixel grid.
func RingOverlay(c *Canvas, n int, einsteinRadius float64) {
	scale := float64(c.Width*2) / float64(n)
	center := float64(n) / 2 * scale
	c.DrawCircle(center, float64(c.Height*4)-center, einsteinRadius*scale)
}

// AxisOverlay draws the line through the lens center with direction
// (dx, dy) in grid coordinates, the line [metrics.Profile] samples along.
// A zero direction draws the x axis.
func AxisOverlay(c *Canvas, n int, dx, dy float64) {
	norm := math.Hypot(dx, dy)
	if norm == 0 {
		dx, dy, norm = 1, 0, 1
	}
	ux, uy := dx/norm, dy/norm

	scale := float64(c.Width*2) / float64(n)
	cx := float64(n) / 2 * scale
	cy := float64(c.Height*4) - cx
	reach := float64(c.Width*2 + c.Height*4)
	c.DrawLine(
		int(math.Round(cx-reach*ux)), int(math.Round(cy+reach*uy)),
		int(math.Round(cx+reach*ux)), int(math.Round(cy-reach*uy)),
	)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

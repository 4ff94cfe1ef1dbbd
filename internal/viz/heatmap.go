package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/lenssim/internal/lens"
)

const upperHalf = "▀"

// Heatmap renders f with half-block characters, two field rows per line,
// at most cols characters wide. Each character averages the pixels it
// covers. The top line shows the highest y.
func Heatmap(f *lens.Field, cols int, theme Theme) string {
	n := f.N()
	if cols <= 0 || cols > n {
		cols = n
	}
	step := (n + cols - 1) / cols
	cols = (n + step - 1) / step
	rows := (cols + 1) / 2

	var b strings.Builder
	for line := 0; line < rows; line++ {
		for col := 0; col < cols; col++ {
			top := blockMean(f, n, step, 2*line, col)
			bottom := blockMean(f, n, step, 2*line+1, col)
			style := lipgloss.NewStyle().
				Foreground(theme.Level(top)).
				Background(theme.Level(bottom))
			b.WriteString(style.Render(upperHalf))
		}
		if line < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// blockMean averages the step x step block at half-line hl (counted from the
// top) and character column col. Blocks past the grid edge are dark.
func blockMean(f *lens.Field, n, step, hl, col int) float64 {
	r1 := n - hl*step
	r0 := max(r1-step, 0)
	c0 := col * step
	c1 := min(c0+step, n)
	if r1 <= 0 || c0 >= n {
		return 0
	}

	var sum float64
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			sum += f.At(r, c)
		}
	}
	return sum / float64((r1-r0)*(c1-c0))
}

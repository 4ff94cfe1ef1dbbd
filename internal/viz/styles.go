package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/lenssim/internal/lens"
)

var (
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899"))

	KeyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)

	sliderFill  = "━"
	sliderEmpty = "─"
	sliderKnob  = "●"
)

// GradientText creates a gradient effect on text using color interpolation
func GradientText(text string, startColor, endColor lipgloss.Color) string {
	if len(text) == 0 {
		return ""
	}

	sr, sg, sb := parseHex(string(startColor))
	er, eg, eb := parseHex(string(endColor))

	runes := []rune(text)
	n := len(runes)
	var result strings.Builder
	for i, c := range runes {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		r := int(float64(sr) + t*float64(er-sr))
		g := int(float64(sg) + t*float64(eg-sg))
		b := int(float64(sb) + t*float64(eb-sb))

		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor(r, g, b)))
		result.WriteString(style.Render(string(c)))
	}

	return result.String()
}

// SliderBar draws the position of v inside r on a track width cells wide.
func SliderBar(r lens.Range, v float64, width int, theme Theme) string {
	if width < 2 {
		width = 2
	}
	frac := 0.0
	if r.Max > r.Min {
		frac = (r.Clamp(v) - r.Min) / (r.Max - r.Min)
	}
	pos := int(frac * float64(width-1))

	fill := lipgloss.NewStyle().Foreground(theme.Primary)
	knob := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	return fill.Render(strings.Repeat(sliderFill, pos)) +
		knob.Render(sliderKnob) +
		Subtle.Render(strings.Repeat(sliderEmpty, width-1-pos))
}

// Sparkline renders a mini chart of values, resampled to width cells and
// colored with the theme ramp.
func Sparkline(values []float64, width int, theme Theme) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	var result strings.Builder
	for i := 0; i < width; i++ {
		v := values[i*len(values)/width]
		norm := (v - lo) / rng
		idx := int(norm * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		style := lipgloss.NewStyle().Foreground(theme.Level(0.2 + 0.8*norm))
		result.WriteString(style.Render(string(chars[idx])))
	}

	return result.String()
}

func parseHex(hex string) (r, g, b int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 255, 255, 255
	}
	return parseHexByte(hex[1:3]), parseHexByte(hex[3:5]), parseHexByte(hex[5:7])
}

func parseHexByte(s string) int {
	var val int
	for _, c := range s {
		val *= 16
		switch {
		case c >= '0' && c <= '9':
			val += int(c - '0')
		case c >= 'a' && c <= 'f':
			val += int(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			val += int(c - 'A' + 10)
		}
	}
	return val
}

func hexColor(r, g, b int) string {
	return "#" + hexByte(r) + hexByte(g) + hexByte(b)
}

func hexByte(v int) string {
	v = max(0, min(v, 255))
	const hex = "0123456789abcdef"
	return string(hex[v/16]) + string(hex[v%16])
}

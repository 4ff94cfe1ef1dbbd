package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the TUI chrome colors and the brightness ramp used for
// heatmaps, darkest first.
type Theme struct {
	Name    string
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Error   lipgloss.Color
	Ramp    []lipgloss.Color
}

var (
	ThemeMagma = Theme{
		Name:    "magma",
		Primary: lipgloss.Color("#fc8961"),
		Accent:  lipgloss.Color("#fcfdbf"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#666688"),
		Error:   lipgloss.Color("#ff4444"),
		Ramp: []lipgloss.Color{
			"#000004", "#140e36", "#3b0f70", "#641a80", "#8c2981",
			"#b73779", "#de4968", "#f7705c", "#fe9f6d", "#fecf92", "#fcfdbf",
		},
	}

	ThemeGray = Theme{
		Name:    "gray",
		Primary: lipgloss.Color("#ffffff"),
		Accent:  lipgloss.Color("#0088ff"),
		Text:    lipgloss.Color("#ffffff"),
		Muted:   lipgloss.Color("#888888"),
		Error:   lipgloss.Color("#ff0000"),
		Ramp: []lipgloss.Color{
			"#000000", "#1c1c1c", "#383838", "#555555", "#717171",
			"#8d8d8d", "#aaaaaa", "#c6c6c6", "#e2e2e2", "#ffffff",
		},
	}

	ThemeOcean = Theme{
		Name:    "ocean",
		Primary: lipgloss.Color("#00a8cc"),
		Accent:  lipgloss.Color("#ffd700"),
		Text:    lipgloss.Color("#e0f0ff"),
		Muted:   lipgloss.Color("#4488aa"),
		Error:   lipgloss.Color("#ff4444"),
		Ramp: []lipgloss.Color{
			"#001a33", "#002b4d", "#003d66", "#005580", "#0077be",
			"#00a8cc", "#4fd1e0", "#a0ecf2", "#e0f0ff",
		},
	}

	ThemeRetroGreen = Theme{
		Name:    "retro",
		Primary: lipgloss.Color("#00ff00"),
		Accent:  lipgloss.Color("#88ff88"),
		Text:    lipgloss.Color("#00ff00"),
		Muted:   lipgloss.Color("#005500"),
		Error:   lipgloss.Color("#ff0000"),
		Ramp: []lipgloss.Color{
			"#001100", "#002200", "#004400", "#006600", "#008800",
			"#00aa00", "#00cc00", "#00ee00", "#88ff88",
		},
	}

	Themes = []Theme{
		ThemeMagma,
		ThemeGray,
		ThemeOcean,
		ThemeRetroGreen,
	}
)

// GetTheme returns a theme by name, falling back to magma.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeMagma
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

func themeIndex(name string) int {
	for i, t := range Themes {
		if t.Name == name {
			return i
		}
	}
	return 0
}

// Level maps a brightness in [0, 1] to a ramp color. Values outside the
// range are clamped.
func (t Theme) Level(v float64) lipgloss.Color {
	if len(t.Ramp) == 0 {
		return t.Text
	}
	if !(v > 0) {
		return t.Ramp[0]
	}
	if v >= 1 {
		return t.Ramp[len(t.Ramp)-1]
	}
	return t.Ramp[int(v*float64(len(t.Ramp)))]
}

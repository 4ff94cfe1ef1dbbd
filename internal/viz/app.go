package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/lenssim/internal/lens"
	"github.com/san-kum/lenssim/internal/metrics"
)

// SaveFunc persists a run and returns its id.
type SaveFunc func(res *lens.Result, m map[string]float64) (string, error)

type slider struct {
	name  string
	label string
}

var sliders = []slider{
	{"grid_size", "Grid size"},
	{"einstein_radius", "Einstein radius"},
	{"source_x", "Source X"},
	{"source_y", "Source Y"},
	{"source_radius", "Source radius"},
}

type resultMsg struct {
	seq     int
	res     *lens.Result
	metrics map[string]float64
	err     error
}

type savedMsg struct {
	id  string
	err error
}

// App is the slider-driven lens explorer.
type App struct {
	params   lens.Params
	limits   lens.Limits
	workers  int
	bilinear bool
	cursor   int
	theme    int
	running  bool
	seq      int
	result   *lens.Result
	metrics  map[string]float64
	status   string
	err      error
	save     SaveFunc
	width    int
	height   int
}

type AppOption func(*App)

func WithParams(p lens.Params) AppOption {
	return func(a *App) { a.params = a.limits.Clamp(p) }
}

func WithTheme(name string) AppOption {
	return func(a *App) { a.theme = themeIndex(name) }
}

func WithKernel(name string) AppOption {
	return func(a *App) { a.bilinear = name == (lens.Bilinear{}).Name() }
}

func WithWorkers(n int) AppOption {
	return func(a *App) { a.workers = n }
}

// WithSave enables the s key.
func WithSave(fn SaveFunc) AppOption {
	return func(a *App) { a.save = fn }
}

func NewApp(opts ...AppOption) App {
	a := App{
		limits:  lens.DefaultLimits,
		params:  lens.DefaultParams(),
		workers: 1,
		width:   100,
		height:  40,
	}
	for _, opt := range opts {
		opt(&a)
	}
	// Init maps the starting parameters.
	a.seq, a.running = 1, true
	return a
}

func (a App) Params() lens.Params         { return a.params }
func (a App) Result() *lens.Result        { return a.result }
func (a App) Metrics() map[string]float64 { return a.metrics }
func (a App) Theme() Theme                { return Themes[a.theme] }
func (a App) Status() string              { return a.status }
func (a App) Err() error                  { return a.err }
func (a App) Kernel() string              { return a.sampler().Name() }
func (a App) Running() bool               { return a.running }

func (a App) sampler() lens.Sampler {
	if a.bilinear {
		return lens.Bilinear{}
	}
	return lens.Nearest{}
}

func (a App) Init() tea.Cmd { return a.mapCmd() }

// runCmd starts a new mapping request. Results of earlier requests are
// dropped when they arrive.
func (a *App) runCmd() tea.Cmd {
	a.seq++
	a.running = true
	return a.mapCmd()
}

func (a App) mapCmd() tea.Cmd {
	seq, p := a.seq, a.params
	mapper := lens.NewMapper(lens.WithSampler(a.sampler()), lens.WithWorkers(a.workers))
	return func() tea.Msg {
		res, err := mapper.Map(context.Background(), p)
		if err != nil {
			return resultMsg{seq: seq, err: err}
		}
		return resultMsg{seq: seq, res: res, metrics: metrics.Evaluate(res, metrics.Default())}
	}
}

func (a App) saveCmd() tea.Cmd {
	res, m, save := a.result, a.metrics, a.save
	return func() tea.Msg {
		id, err := save(res, m)
		return savedMsg{id: id, err: err}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
	case resultMsg:
		if msg.seq != a.seq {
			return a, nil
		}
		a.running = false
		a.err = msg.err
		if msg.err == nil {
			a.result, a.metrics = msg.res, msg.metrics
			a.status = fmt.Sprintf("mapped %dx%d with %s", msg.res.Grid.N, msg.res.Grid.N, msg.res.Sampler)
		}
	case savedMsg:
		a.err = msg.err
		if msg.err == nil {
			a.status = "saved " + msg.id
		}
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return a, tea.Quit
	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.cursor < len(sliders)-1 {
			a.cursor++
		}
	case "left", "h":
		a.nudge(-1)
	case "right", "l":
		a.nudge(1)
	case "H":
		a.nudge(-5)
	case "L":
		a.nudge(5)
	case "r":
		a.params = lens.DefaultParams()
		a.status = "reset to defaults"
	case "t":
		a.theme = (a.theme + 1) % len(Themes)
	case "b":
		a.bilinear = !a.bilinear
		a.status = "kernel " + a.sampler().Name()
	case "s":
		if a.save == nil {
			a.status = "saving disabled"
			return a, nil
		}
		if a.result == nil {
			a.status = "nothing to save"
			return a, nil
		}
		return a, a.saveCmd()
	case "enter", " ":
		if a.running {
			return a, nil
		}
		cmd := a.runCmd()
		return a, cmd
	}
	return a, nil
}

// nudge moves the selected slider by steps increments, staying on the
// slider's step grid and inside its range.
func (a *App) nudge(steps int) {
	name := sliders[a.cursor].name
	r, _ := a.limits.Range(name)
	v, _ := a.params.Get(name)
	_ = a.params.Set(name, r.Snap(v+float64(steps)*r.Step))
}

func (a App) View() string {
	theme := a.Theme()
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.Primary)
	text := lipgloss.NewStyle().Foreground(theme.Text)

	var b strings.Builder
	b.WriteString("\n  " + GradientText("GRAVITATIONAL LENS", theme.Primary, theme.Accent) + "\n")
	b.WriteString("  " + Subtle.Render("point-mass lens mapper") + "\n\n")

	for i, s := range sliders {
		r, _ := a.limits.Range(s.name)
		v, _ := a.params.Get(s.name)
		label := fmt.Sprintf("%-16s", s.label)
		value := fmt.Sprintf("%7.1f", v)
		bar := SliderBar(r, v, 30, theme)
		if i == a.cursor {
			b.WriteString("  " + title.Render("▸ "+label) + " " + bar + " " + title.Render(value) + "\n")
		} else {
			b.WriteString("    " + MetricLabel.Render(label) + " " + bar + " " + text.Render(value) + "\n")
		}
	}
	b.WriteString("    " + MetricLabel.Render(fmt.Sprintf("%-16s", "Kernel")) + " " + text.Render(a.sampler().Name()) + "\n\n")

	if a.result != nil {
		b.WriteString(a.viewFields(theme) + "\n")
		b.WriteString("  " + a.viewMetrics(theme) + "\n")
		dx, dy := metrics.SourceAxis(a.result.Params)
		p := metrics.Profile(a.result.Lensed, a.result.Grid, dx, dy)
		b.WriteString("  " + Sparkline(p.Values, a.panelCols()*2, theme) + "\n")
	}

	switch {
	case a.running:
		b.WriteString("  " + Subtle.Render("mapping...") + "\n")
	case a.err != nil:
		b.WriteString("  " + lipgloss.NewStyle().Foreground(theme.Error).Render(a.err.Error()) + "\n")
	case a.status != "":
		b.WriteString("  " + Subtle.Render(a.status) + "\n")
	}

	b.WriteString("\n  " + KeyHint.Render("j/k select  h/l adjust  H/L x5  enter run  b kernel  t theme  r reset  s save  q quit") + "\n")
	return b.String()
}

func (a App) panelCols() int {
	return max(16, min(64, (a.width-12)/2))
}

func (a App) viewFields(theme Theme) string {
	cols := a.panelCols()
	left := Panel.Render(Subtle.Render("Original Source") + "\n" + Heatmap(a.result.Source, cols, theme))
	right := Panel.Render(Subtle.Render("Lensed Image") + "\n" + Heatmap(a.result.Lensed, cols, theme))
	return lipgloss.JoinHorizontal(lipgloss.Top, "  ", left, " ", right)
}

func (a App) viewMetrics(theme Theme) string {
	value := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	names := []string{"peak_count", "flux_ratio", "ring_radius", "magnification"}
	parts := make([]string, 0, len(names))
	for _, name := range names {
		v, ok := a.metrics[name]
		if !ok {
			continue
		}
		parts = append(parts, MetricLabel.Render(name+" ")+value.Render(fmt.Sprintf("%.3g", v)))
	}
	return strings.Join(parts, "  ")
}

// Run starts the app on the alternate screen and blocks until it quits.
func Run(a App) error {
	_, err := tea.NewProgram(a, tea.WithAltScreen()).Run()
	return err
}

package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/rlcsim/internal/analysis"
	"github.com/san-kum/rlcsim/internal/circuit"
	"github.com/san-kum/rlcsim/internal/experiment"
)

type viewMode int

const (
	modeSingle viewMode = iota
	modeOverlay
	modePhase
)

func (m viewMode) String() string {
	switch m {
	case modeOverlay:
		return "overlay"
	case modePhase:
		return "phase"
	default:
		return "single"
	}
}

// SweepView is a Bubble Tea model for browsing a finished sweep.
type SweepView struct {
	top     circuit.Topology
	obs     circuit.Observable
	results []*experiment.Result
	cursor  int
	mode    viewMode
	width   int
	height  int
}

func NewSweepView(top circuit.Topology, obs circuit.Observable, results []*experiment.Result) SweepView {
	return SweepView{
		top:     top,
		obs:     obs,
		results: results,
		width:   DefaultChartWidth,
		height:  24,
	}
}

func (m SweepView) Cursor() int { return m.cursor }

func (m SweepView) Init() tea.Cmd { return nil }

func (m SweepView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			if m.cursor > 0 {
				m.cursor--
			}
		case "right", "l":
			if m.cursor < len(m.results)-1 {
				m.cursor++
			}
		case "tab":
			m.mode = (m.mode + 1) % 3
		case "t":
			CurrentTheme = CurrentTheme.next()
		}
	}
	return m, nil
}

func (m SweepView) View() string {
	th := CurrentTheme
	var b strings.Builder

	b.WriteString("\n  " + titleStyle(th).Render("RLCSIM") + "  ")
	b.WriteString(mutedStyle(th).Render(fmt.Sprintf("%s circuit, %s view, theme %s", m.top, m.mode, th.Name)))
	b.WriteString("\n  " + Separator(max(10, m.width-4)) + "\n\n")

	if len(m.results) == 0 {
		b.WriteString("  " + mutedStyle(th).Render("no results") + "\n")
		return b.String()
	}

	r := m.results[m.cursor]
	b.WriteString(fmt.Sprintf("  [%d/%d] R = %g Ω  %s  α = %.4g 1/s  ω_d = %.4g rad/s  %s\n\n",
		m.cursor+1, len(m.results), r.Resistance, RegimeLabel(r.Regime),
		r.Alpha, r.DampedFrequency, mutedStyle(th).Render(r.Integrator)))

	chartW := max(20, m.width-16)
	chartH := max(5, m.height-14)
	switch {
	case m.mode == modeOverlay:
		b.WriteString(indent(Chart(m.results, m.obs, chartW, chartH)))
	case !r.OK():
		b.WriteString("  " + errorStyle(th).Render(r.Err.Error()) + "\n")
	case m.mode == modePhase:
		portrait := analysis.NewPhasePortrait(m.top, r.States)
		b.WriteString(indent(analysis.PhasePortraitToASCII(portrait, chartW, chartH)))
		b.WriteString("  " + mutedStyle(th).Render(portrait.XLabel+" → , "+portrait.YLabel+" ↑") + "\n")
	default:
		b.WriteString(indent(SeriesChart(r, chartW, chartH)))
	}

	b.WriteString("\n  " + keyHints("h/l", "resistance", "tab", "view", "t", "theme", "q", "quit") + "\n")
	return b.String()
}

func indent(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}

// RunSweepView opens the viewer on the alternate screen.
func RunSweepView(top circuit.Topology, obs circuit.Observable, results []*experiment.Result) error {
	_, err := tea.NewProgram(NewSweepView(top, obs, results), tea.WithAltScreen()).Run()
	return err
}

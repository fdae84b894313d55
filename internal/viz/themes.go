package viz

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rlcsim/internal/circuit"
)

// Theme defines the colors used by tables, charts and the viewer.
type Theme struct {
	Name     string
	Primary  lipgloss.Color
	Muted    lipgloss.Color
	Text     lipgloss.Color
	Under    lipgloss.Color
	Critical lipgloss.Color
	Over     lipgloss.Color
	Error    lipgloss.Color
	Series   []asciigraph.AnsiColor
}

var (
	ThemeDefault = Theme{
		Name:     "default",
		Primary:  lipgloss.Color("#00cccc"),
		Muted:    lipgloss.Color("#666688"),
		Text:     lipgloss.Color("#ffffff"),
		Under:    lipgloss.Color("#ff88ff"),
		Critical: lipgloss.Color("#ffcc00"),
		Over:     lipgloss.Color("#00ff88"),
		Error:    lipgloss.Color("#ff4444"),
		Series: []asciigraph.AnsiColor{
			asciigraph.Cyan, asciigraph.Magenta, asciigraph.Yellow,
			asciigraph.Green, asciigraph.Blue, asciigraph.Red,
		},
	}

	ThemeRetro = Theme{
		Name:     "retro",
		Primary:  lipgloss.Color("#00ff00"),
		Muted:    lipgloss.Color("#005500"),
		Text:     lipgloss.Color("#00ff00"),
		Under:    lipgloss.Color("#88ff88"),
		Critical: lipgloss.Color("#ffff00"),
		Over:     lipgloss.Color("#00cc00"),
		Error:    lipgloss.Color("#ff0000"),
		Series: []asciigraph.AnsiColor{
			asciigraph.Green, asciigraph.Lime, asciigraph.Olive, asciigraph.Yellow,
		},
	}

	ThemeMinimal = Theme{
		Name:     "minimal",
		Primary:  lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#888888"),
		Text:     lipgloss.Color("#ffffff"),
		Under:    lipgloss.Color("#ffffff"),
		Critical: lipgloss.Color("#cccccc"),
		Over:     lipgloss.Color("#aaaaaa"),
		Error:    lipgloss.Color("#ff0000"),
		Series:   []asciigraph.AnsiColor{asciigraph.Default},
	}

	CurrentTheme = ThemeDefault

	Themes = []Theme{ThemeDefault, ThemeRetro, ThemeMinimal}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeDefault
}

func SetTheme(name string) {
	CurrentTheme = GetTheme(name)
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// RegimeColor is the color of a damping regime label.
func (t Theme) RegimeColor(r circuit.Regime) lipgloss.Color {
	switch r {
	case circuit.Underdamped:
		return t.Under
	case circuit.CriticallyDamped:
		return t.Critical
	default:
		return t.Over
	}
}

// SeriesColor cycles through the chart palette.
func (t Theme) SeriesColor(i int) asciigraph.AnsiColor {
	if len(t.Series) == 0 {
		return asciigraph.Default
	}
	return t.Series[i%len(t.Series)]
}

func (t Theme) next() Theme {
	for i, th := range Themes {
		if th.Name == t.Name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeDefault
}

package viz

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/san-kum/rlcsim/internal/experiment"
)

var summaryHeaders = []string{"R (Ω)", "REGIME", "α (1/s)", "ω_d (rad/s)", "INTEG", "STEPS", "SETTLING (µs)", "STATUS"}

// SummaryRows formats one row per result, in sweep order.
func SummaryRows(results []*experiment.Result) [][]string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		status := "ok"
		settling := "-"
		if r.OK() {
			if v, ok := r.Metrics["settling_time"]; ok {
				settling = fmt.Sprintf("%.1f", v*1e6)
			}
		} else {
			status = "failed"
		}
		rows = append(rows, []string{
			strconv.FormatFloat(r.Resistance, 'g', -1, 64),
			r.Regime.String(),
			fmt.Sprintf("%.4g", r.Alpha),
			fmt.Sprintf("%.4g", r.DampedFrequency),
			r.Integrator,
			strconv.Itoa(r.StepsTaken),
			settling,
			status,
		})
	}
	return rows
}

// SummaryTable renders the sweep as a bordered table with regimes colored
// per the current theme.
func SummaryTable(results []*experiment.Result) string {
	th := CurrentTheme
	rows := SummaryRows(results)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle(th)).
		Headers(summaryHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return base.Bold(true).Foreground(th.Primary)
			}
			switch col {
			case 1:
				if row < len(results) {
					return base.Foreground(th.RegimeColor(results[row].Regime))
				}
			case 7:
				if rows[row][7] != "ok" {
					return base.Foreground(th.Error)
				}
			}
			return base.Foreground(th.Text)
		})

	return t.String()
}

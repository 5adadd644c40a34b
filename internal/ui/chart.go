package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/bigincgenesis/bigcli/internal/shares"
)

// ChartTitle heads the ownership chart.
const ChartTitle = "BigInc Genesis Shares"

const defaultBarWidth = 30

// RenderShareChart draws the ownership breakdown as one horizontal bar per
// non-zero slice. barWidth <= 0 uses the default.
func RenderShareChart(f shares.Figures, barWidth int) string {
	if barWidth <= 0 {
		barWidth = defaultBarWidth
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(ChartTitle))
	sb.WriteString("\n")

	slices := f.Slices()
	if len(slices) == 0 {
		sb.WriteString(Meta("  no shares issued yet") + "\n")
	}
	for _, s := range slices {
		filled := int(math.Round(math.Min(s.Value, 1) * float64(barWidth)))
		if filled == 0 {
			filled = 1
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(s.Color)).Render(strings.Repeat("█", filled)) +
			StyleMeta.Render(strings.Repeat("░", barWidth-filled))
		fmt.Fprintf(&sb, "  %-17s %s %s\n", s.Label, bar, Val(shares.Percent4(s.Value)))
	}

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total Shareholders: %d", f.TotalShareholders))
	if err := f.IntegrityWarning(); err != nil {
		sb.WriteString("\n" + Warn(err.Error()))
	}
	return sb.String()
}

// ShareSummary lists every figure with two decimals, including zero ones.
func ShareSummary(f shares.Figures) string {
	return KeyValueBlock("Share Summary", [][2]string{
		{"Available", shares.Percent2(f.AvailableShare)},
		{"Sold", shares.Percent2(f.SoldShare)},
		{"Team", shares.Percent2(f.TeamShare)},
		{"Yours", shares.Percent2(f.UserShare)},
		{"Shareholders", fmt.Sprint(f.TotalShareholders)},
	})
}

package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Dicklesworthstone/pcmonitor/internal/model"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
	valueStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	tabStyle    = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("244"))
	activeTab   = tabStyle.Bold(true).Foreground(lipgloss.Color("16")).Background(lipgloss.Color("45"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	gaugeFill   = "█"
	gaugeEmpty  = "░"
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("60")).
			Padding(0, 1)
)

// sparkRunes are the eight block heights used by sparkline.
var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// gaugeBar draws pct (0-100) as a bar width cells wide.
func gaugeBar(pct float64, width int) string {
	if width <= 0 {
		return ""
	}
	if pct < 0 || math.IsNaN(pct) {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int((pct / 100) * float64(width))
	if filled > width {
		filled = width
	}
	return accentStyle.Render(strings.Repeat(gaugeFill, filled)) + strings.Repeat(gaugeEmpty, width-filled)
}

// sparkline plots vals normalized to their own min..max. A flat series sits
// on the bottom row.
func sparkline(vals []float64) string {
	if len(vals) == 0 {
		return ""
	}
	mn, mx := vals[0], vals[0]
	for _, v := range vals[1:] {
		mn = math.Min(mn, v)
		mx = math.Max(mx, v)
	}
	if mx-mn < 1e-3 {
		mx = mn + 1
	}
	top := len(sparkRunes) - 1
	out := make([]rune, len(vals))
	for i, v := range vals {
		idx := int(math.Round((v - mn) / (mx - mn) * float64(top)))
		if idx < 0 {
			idx = 0
		}
		if idx > top {
			idx = top
		}
		out[i] = sparkRunes[idx]
	}
	return string(out)
}

func card(title, body string) string {
	return cardStyle.Render(labelStyle.Render(title) + "\n" + body)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func fmtPct(v float64) string {
	if v < 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.0f%%", v)
}

func fmtTempF(o model.Optional) string {
	if !o.Valid {
		return "-"
	}
	return fmt.Sprintf("%.0fF", o.Value)
}

func fmtMBps(v float64) string { return fmt.Sprintf("%.1f MB/s", v) }

func fmtGB(o model.Optional) string {
	if !o.Valid {
		return "N/A"
	}
	return fmt.Sprintf("%.0f GB", o.Value)
}

// fmtTemp formats a weather temperature with its unit symbol.
func fmtTemp(o model.Optional, symbol string) string {
	if !o.Valid {
		return "--"
	}
	return fmt.Sprintf("%.0f°%s", o.Value, symbol)
}

// statsTitle is the one-line summary shown above the bar.
func statsTitle(s model.Stats, m model.Metric) string {
	switch m {
	case model.MetricGPU:
		return "GPU " + fmtPct(s.GPU) + " | " + fmtTempF(s.GPUTempF)
	case model.MetricDisk:
		return "DISK " + fmtPct(s.DiskPct) + " | " + fmtMBps(s.DiskMBps) +
			" | C:" + fmtGB(s.FreeC) + " D:" + fmtGB(s.FreeD)
	}
	return "CPU " + fmtPct(s.CPU) + " | MEM " + fmtPct(s.Mem) + " " + fmtTempF(s.CPUTempF)
}

// forecastSlot renders one day; an invalid slot shows placeholders.
func forecastSlot(f model.Forecast, symbol string, width int) string {
	if !f.Valid {
		return card("--", subtleStyle.Render("no data"))
	}
	body := fmt.Sprintf("%s\nH %s  L %s",
		truncate(f.Description, width),
		fmtTemp(f.High, symbol), fmtTemp(f.Low, symbol))
	return card(f.Label, body)
}

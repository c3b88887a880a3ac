// Package render turns result envelopes into terminal output. Charts go
// through the normalizer first; a shape that cannot be repaired surfaces as
// a rendering error while the envelope itself remains valid for the caller.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/deepblue-labs/datachat/internal/chart"
	"github.com/deepblue-labs/datachat/internal/dataset"
	"github.com/deepblue-labs/datachat/internal/envelope"
)

const barWidth = 40

var (
	answerStyle = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
)

// Render writes a human-readable rendition of the envelope.
func Render(w io.Writer, env *envelope.Envelope, style chart.Style) error {
	switch env.Kind {
	case envelope.KindAnswer:
		fmt.Fprintln(w, answerStyle.Render(env.Answer.Text))
		return nil

	case envelope.KindFallback:
		fmt.Fprintln(w, dimStyle.Render("(unstructured response)"))
		fmt.Fprintln(w, env.Fallback.Raw)
		return nil

	case envelope.KindTable:
		renderTable(w, env.Table)
		return nil

	default:
		c, err := chart.Normalize(env)
		if err != nil {
			return fmt.Errorf("render %s chart: %w", env.Kind, err)
		}
		renderChart(w, c, style)
		return nil
	}
}

func renderTable(w io.Writer, t *envelope.Table) {
	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		widths[i] = len(col)
	}
	cells := make([][]string, len(t.Data))
	for r, row := range t.Data {
		cells[r] = make([]string, len(t.Columns))
		for c := range t.Columns {
			if c < len(row) {
				cells[r][c] = dataset.FormatValue(row[c])
			}
			if len(cells[r][c]) > widths[c] {
				widths[c] = len(cells[r][c])
			}
		}
	}

	var header strings.Builder
	for i, col := range t.Columns {
		fmt.Fprintf(&header, "%-*s  ", widths[i], col)
	}
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header.String(), " ")))
	for _, row := range cells {
		var line strings.Builder
		for i, cell := range row {
			fmt.Fprintf(&line, "%-*s  ", widths[i], cell)
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

func renderChart(w io.Writer, c *chart.Chart, style chart.Style) {
	switch c.Kind {
	case envelope.KindBar:
		renderBars(w, c.Categories, c.Values, style)
	case envelope.KindLine:
		renderLine(w, c)
	case envelope.KindScatter:
		renderScatter(w, c)
	case envelope.KindPie:
		renderPie(w, c, style)
	case envelope.KindHeatmap:
		renderHeatmap(w, c, style)
	}
}

func renderBars(w io.Writer, categories []string, values []float64, style chart.Style) {
	max := maxValue(values)
	labelWidth := maxLen(categories)
	palette := style.Palette()

	for i, cat := range categories {
		n := 0
		if max > 0 {
			n = int(values[i] / max * barWidth)
		}
		if n < 1 && values[i] > 0 {
			n = 1
		}
		bar := lipgloss.NewStyle().
			Foreground(lipgloss.Color(palette[i%len(palette)])).
			Render(strings.Repeat("█", n))
		fmt.Fprintf(w, "%-*s %s %s\n", labelWidth, cat, bar, dataset.FormatValue(values[i]))
	}
}

var sparks = []rune("▁▂▃▄▅▆▇█")

func renderLine(w io.Writer, c *chart.Chart) {
	if len(c.Values) == 0 {
		return
	}
	min, max := c.Values[0], c.Values[0]
	for _, v := range c.Values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	var line strings.Builder
	for _, v := range c.Values {
		idx := 0
		if max > min {
			idx = int((v - min) / (max - min) * float64(len(sparks)-1))
		}
		line.WriteRune(sparks[idx])
	}
	fmt.Fprintln(w, labelStyle.Render(line.String()))
	fmt.Fprintln(w, dimStyle.Render(strings.Join(c.Categories, " ")))
}

func renderScatter(w io.Writer, c *chart.Chart) {
	fmt.Fprintln(w, headerStyle.Render("x\ty\tlabel"))
	for i := range c.X {
		label := ""
		if i < len(c.Labels) {
			label = c.Labels[i]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			dataset.FormatValue(c.X[i]), dataset.FormatValue(c.Y[i]), label)
	}
}

func renderPie(w io.Writer, c *chart.Chart, style chart.Style) {
	total := 0.0
	for _, v := range c.Values {
		total += v
	}
	labelWidth := maxLen(c.Categories)
	palette := style.Palette()

	for i, label := range c.Categories {
		pct := 0.0
		if total != 0 {
			pct = c.Values[i] / total * 100
		}
		n := int(pct / 100 * barWidth)
		bar := lipgloss.NewStyle().
			Foreground(lipgloss.Color(palette[i%len(palette)])).
			Render(strings.Repeat("█", n))
		fmt.Fprintf(w, "%-*s %s %.1f%%\n", labelWidth, label, bar, pct)
	}
}

// heatmapRamps approximate the style colormaps with terminal color ramps,
// darkest to brightest.
var heatmapRamps = map[string][]string{
	"coolwarm": {"27", "75", "252", "216", "196"},
	"blues":    {"17", "25", "32", "39", "45"},
	"viridis":  {"54", "31", "35", "112", "220"},
	"plasma":   {"53", "91", "166", "208", "226"},
}

var shades = []string{"░", "▒", "▓", "█", "█"}

func renderHeatmap(w io.Writer, c *chart.Chart, style chart.Style) {
	ramp := heatmapRamps[style.HeatmapColormap()]
	if len(c.Matrix) == 0 || len(c.Matrix[0]) == 0 {
		return
	}

	min, max := c.Matrix[0][0], c.Matrix[0][0]
	for _, row := range c.Matrix {
		for _, v := range row {
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
	}

	yWidth := maxLen(c.YLabels)
	for r, row := range c.Matrix {
		var line strings.Builder
		if len(c.YLabels) > 0 {
			fmt.Fprintf(&line, "%-*s ", yWidth, c.YLabels[r])
		}
		for _, v := range row {
			idx := 0
			if max > min {
				idx = int((v - min) / (max - min) * float64(len(ramp)-1))
			}
			cell := lipgloss.NewStyle().
				Foreground(lipgloss.Color(ramp[idx])).
				Render(strings.Repeat(shades[idx], 2))
			line.WriteString(cell)
		}
		fmt.Fprintln(w, line.String())
	}
	if len(c.XLabels) > 0 {
		pad := ""
		if len(c.YLabels) > 0 {
			pad = strings.Repeat(" ", yWidth+1)
		}
		fmt.Fprintln(w, dimStyle.Render(pad+strings.Join(c.XLabels, " ")))
	}
}

func maxValue(values []float64) float64 {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	return max
}

func maxLen(items []string) int {
	n := 0
	for _, s := range items {
		if len(s) > n {
			n = len(s)
		}
	}
	return n
}

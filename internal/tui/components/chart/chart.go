// Package chart renders visualization records as terminal cards with
// horizontal bar plots of their numeric series.
package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"graphchat/internal/tui/styles"
	"graphchat/internal/viz"
)

const maxLabelWidth = 16

// Card renders v in a bordered box of the given outer width. A positive
// height fixes the outer height; zero sizes the card to its content.
func Card(v viz.Visualization, width, height int, selected bool) string {
	style := styles.Card
	if selected {
		style = styles.CardSelected
	}
	inner := width - style.GetHorizontalFrameSize()
	if inner < 10 {
		inner = 10
	}

	lines := []string{
		styles.CardTitle.Render(truncate(v.DisplayTitle(), inner)),
		styles.CardMeta.Render(truncate(meta(v), inner)),
	}

	maxBody := 0
	if height > 0 {
		maxBody = height - style.GetVerticalFrameSize() - len(lines)
		if maxBody < 1 {
			maxBody = 1
		}
	}
	lines = append(lines, Body(v, inner, maxBody)...)

	style = style.Width(width - style.GetHorizontalBorderSize())
	if height > 0 {
		style = style.Height(height - style.GetVerticalBorderSize()).MaxHeight(height)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func meta(v viz.Visualization) string {
	created := v.GeneratedAt
	if t, err := time.Parse(time.RFC3339, v.GeneratedAt); err == nil {
		created = t.Local().Format("2006-01-02 15:04")
	}
	if v.Type == "" {
		return "Created " + created
	}
	return v.Type + " • Created " + created
}

// Body renders the figure's series as bar rows. A positive maxLines caps
// the output, ending with an ellipsis row when rows were dropped.
func Body(v viz.Visualization, width, maxLines int) []string {
	traces := viz.Traces(v.Figure)
	var lines []string
	for _, tr := range traces {
		if len(traces) > 1 {
			name := tr.Name
			if name == "" {
				name = tr.Type
			}
			lines = append(lines, styles.CardMeta.Render(truncate(name, width)))
		}
		lines = append(lines, bars(tr, width)...)
	}
	if len(lines) == 0 {
		lines = []string{styles.CardMeta.Render("(no plottable data)")}
	}
	if x, y := viz.AxisTitles(v.Figure); x != "" || y != "" {
		lines = append(lines, styles.CardMeta.Render(truncate(axisLine(x, y), width)))
	}

	if maxLines > 0 && len(lines) > maxLines {
		lines = append(lines[:maxLines-1], styles.CardMeta.Render("…"))
	}
	return lines
}

func axisLine(x, y string) string {
	switch {
	case x == "":
		return "y: " + y
	case y == "":
		return "x: " + x
	}
	return "x: " + x + " • y: " + y
}

func bars(tr viz.Trace, width int) []string {
	if len(tr.Values) == 0 {
		return nil
	}

	labelW := 0
	values := make([]string, len(tr.Values))
	valueW := 0
	top := 0.0
	for i, val := range tr.Values {
		if l := lipgloss.Width(tr.Labels[i]); l > labelW {
			labelW = l
		}
		values[i] = strconv.FormatFloat(val, 'g', 6, 64)
		if l := len(values[i]); l > valueW {
			valueW = l
		}
		top = math.Max(top, math.Abs(val))
	}
	if labelW == 0 {
		labelW = len(strconv.Itoa(len(tr.Values)))
	}
	if labelW > maxLabelWidth {
		labelW = maxLabelWidth
	}

	barW := width - labelW - valueW - 2
	if barW < 1 {
		barW = 1
	}

	out := make([]string, 0, len(tr.Values))
	for i, val := range tr.Values {
		label := tr.Labels[i]
		if label == "" {
			label = strconv.Itoa(i + 1)
		}
		n := 0
		if top > 0 {
			n = int(math.Round(math.Abs(val) / top * float64(barW)))
		}
		out = append(out, fmt.Sprintf("%-*s %s%s %*s",
			labelW, truncate(label, labelW),
			styles.Bar.Render(strings.Repeat("█", n)),
			strings.Repeat(" ", barW-n),
			valueW, values[i],
		))
	}
	return out
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if max <= 0 || lipgloss.Width(s) <= max {
		return s
	}
	r := []rune(s)
	if max == 1 || len(r) <= 1 {
		return string(r[:1])
	}
	if len(r) > max-1 {
		r = r[:max-1]
	}
	return string(r) + "…"
}

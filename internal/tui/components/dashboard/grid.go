package dashboard

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"graphchat/internal/state"
	"graphchat/internal/tui/components/chart"
	"graphchat/internal/viz"
)

// Terminal geometry of the grid.
const (
	CellPx   = 10 // pixels represented by one terminal column
	RowLines = 3  // terminal lines per grid row
)

// BreakpointForCells picks the breakpoint for a terminal width.
func BreakpointForCells(cols int) state.Breakpoint {
	return state.BreakpointFor(cols * CellPx)
}

// renderGrid paints each card at its grid position on a canvas of
// cols*colW columns. Rectangles are expected not to overlap; cards are
// clipped to their cell so nothing spills past the canvas edge.
// It returns the rendered grid and each item's first line.
func renderGrid(rects []state.Rect, items map[string]viz.Visualization, cols, width int, selectedID string) (string, map[string]int) {
	cols = max(cols, 1)
	colW := max(width/cols, 1)

	rows := 0
	for _, r := range rects {
		rows = max(rows, r.Y+r.H)
	}
	blank := strings.Repeat(" ", cols*colW)
	canvas := make([]string, rows*RowLines)
	for i := range canvas {
		canvas[i] = blank
	}

	offsets := make(map[string]int, len(rects))
	for _, r := range rects {
		w := min(max(r.W, 1), cols)
		x := min(max(r.X, 0), cols-w)
		top := max(r.Y, 0) * RowLines
		height := r.H * RowLines

		card := chart.Card(items[r.ItemID], w*colW, height, r.ItemID == selectedID)
		for k, line := range strings.Split(card, "\n") {
			if k >= height || top+k >= len(canvas) {
				break
			}
			canvas[top+k] = paint(canvas[top+k], x*colW, w*colW, line)
		}
		offsets[r.ItemID] = top
	}
	return strings.Join(canvas, "\n"), offsets
}

// paint overwrites width columns of dst starting at x with src, padded or
// cut to exactly that width.
func paint(dst string, x, width int, src string) string {
	src = ansi.Truncate(src, width, "")
	if pad := width - ansi.StringWidth(src); pad > 0 {
		src += strings.Repeat(" ", pad)
	}
	return ansi.Truncate(dst, x, "") + src + ansi.TruncateLeft(dst, x+width, "")
}

// moved returns r shifted by dx, dy and kept inside the grid.
func moved(r state.Rect, dx, dy, cols int) state.Rect {
	r.X = clamp(r.X+dx, 0, cols-r.W)
	r.Y = clamp(r.Y+dy, 0, r.Y+dy)
	return r
}

// resized returns r grown by dw, dh within its minimums and the grid.
func resized(r state.Rect, dw, dh, cols int) state.Rect {
	minW := r.MinW
	if minW < 1 {
		minW = 1
	}
	minH := r.MinH
	if minH < 1 {
		minH = 1
	}
	r.W = clamp(r.W+dw, minW, cols-r.X)
	r.H = clamp(r.H+dh, minH, r.H+dh)
	return r
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

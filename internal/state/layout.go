package state

import (
	"math"
	"sort"

	"graphchat/internal/viz"
)

// Breakpoint is a named responsive width tier.
type Breakpoint string

const (
	BreakpointLG  Breakpoint = "lg"
	BreakpointMD  Breakpoint = "md"
	BreakpointSM  Breakpoint = "sm"
	BreakpointXS  Breakpoint = "xs"
	BreakpointXXS Breakpoint = "xxs"
)

// BreakpointGrid pairs a breakpoint with its minimum width and column count.
type BreakpointGrid struct {
	Name     Breakpoint
	MinWidth int
	Columns  int
}

// Breakpoints lists the tiers from widest to narrowest.
var Breakpoints = []BreakpointGrid{
	{BreakpointLG, 1200, 12},
	{BreakpointMD, 996, 10},
	{BreakpointSM, 768, 6},
	{BreakpointXS, 480, 4},
	{BreakpointXXS, 0, 2},
}

// Grid sizing in pixels and grid units.
const (
	ColumnPx  = 100
	RowPx     = 60
	MarginPx  = 16
	PaddingPx = 40

	DefaultW = 6
	DefaultH = 4
	MinW     = 4
	MinH     = 3
)

// Columns returns the column count for bp, or the widest tier's when unknown.
func Columns(bp Breakpoint) int {
	for _, s := range Breakpoints {
		if s.Name == bp {
			return s.Columns
		}
	}
	return Breakpoints[0].Columns
}

// BreakpointFor picks the tier for a container width in pixels.
func BreakpointFor(widthPx int) Breakpoint {
	for _, s := range Breakpoints {
		if widthPx >= s.MinWidth {
			return s.Name
		}
	}
	return BreakpointXXS
}

// Rect is one item's placement in grid units.
type Rect struct {
	ItemID string `json:"i"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	W      int    `json:"w"`
	H      int    `json:"h"`
	MinW   int    `json:"minW"`
	MinH   int    `json:"minH"`
}

// Layouts maps breakpoints to item rectangles.
type Layouts map[Breakpoint][]Rect

// Clone deep-copies the layouts.
func (l Layouts) Clone() Layouts {
	if l == nil {
		return Layouts{}
	}
	out := make(Layouts, len(l))
	for bp, rects := range l {
		out[bp] = append([]Rect(nil), rects...)
	}
	return out
}

// DefaultSize converts a visualization's pixel hint into grid units.
func DefaultSize(v viz.Visualization) (w, h int) {
	pw, ph, ok := v.SizeHint()
	if !ok {
		return DefaultW, DefaultH
	}
	w = int(math.Ceil((pw + PaddingPx) / ColumnPx))
	h = int(math.Ceil((ph + PaddingPx) / (RowPx + MarginPx)))
	if w < MinW {
		w = MinW
	}
	if h < MinH {
		h = MinH
	}
	return w, h
}

// DefaultRect places the index-th item in a flow of two lanes, left to
// right then top to bottom, or one lane on grids under 8 columns. Items
// without a size hint take the lane width; sized items may be wider and are
// kept inside the grid. Overlaps are left to Compact.
func DefaultRect(index int, v viz.Visualization, cols int) Rect {
	perRow := 1
	if cols >= 8 {
		perRow = 2
	}
	lane := cols / perRow

	w, h := DefaultSize(v)
	if _, _, sized := v.SizeHint(); !sized && w > lane {
		w = lane
	}
	if w > cols {
		w = cols
	}
	minW := MinW
	if minW > w {
		minW = w
	}

	x := (index % perRow) * lane
	if x+w > cols {
		x = cols - w
	}
	return Rect{
		ItemID: v.ID,
		X:      x,
		Y:      (index / perRow) * DefaultH,
		W:      w,
		H:      h,
		MinW:   minW,
		MinH:   MinH,
	}
}

// Compact fits rects into a grid of cols columns. Each rectangle is kept
// inside the grid, then rectangles are settled in row order and any that
// overlap an already settled one are pushed down below it. The rectangle
// of the pinned item, if present, settles first and keeps its place.
// The result is in input order.
func Compact(rects []Rect, cols int, pinned string) []Rect {
	out := make([]Rect, len(rects))
	order := make([]int, len(rects))
	for i, r := range rects {
		out[i] = fit(r, cols)
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := out[order[a]], out[order[b]]
		if pa, pb := ra.ItemID == pinned, rb.ItemID == pinned; pa != pb {
			return pa
		}
		if ra.Y != rb.Y {
			return ra.Y < rb.Y
		}
		return ra.X < rb.X
	})

	settled := make([]Rect, 0, len(out))
	for _, i := range order {
		r := out[i]
		for {
			c, hit := collision(r, settled)
			if !hit {
				break
			}
			r.Y = c.Y + c.H
		}
		out[i] = r
		settled = append(settled, r)
	}
	return out
}

func fit(r Rect, cols int) Rect {
	if cols < 1 {
		cols = 1
	}
	r.W = min(max(r.W, 1), cols)
	r.H = max(r.H, 1)
	r.MinW = min(r.MinW, r.W)
	r.X = min(max(r.X, 0), cols-r.W)
	r.Y = max(r.Y, 0)
	return r
}

func collision(r Rect, others []Rect) (Rect, bool) {
	for _, o := range others {
		if r.Overlaps(o) {
			return o, true
		}
	}
	return Rect{}, false
}

// Overlaps reports whether r and o share at least one cell.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

package state

import (
	"encoding/json"

	"graphchat/internal/viz"
)

// Patch is a partial update to a dashboard visualization. Nil fields are
// left unchanged.
type Patch struct {
	Title      *string
	Type       *string
	ConfigUsed map[string]any
	Figure     json.RawMessage
}

// Dashboard is the ordered set of pinned visualizations and their layouts.
type Dashboard struct {
	order   []string
	items   map[string]viz.Visualization
	layouts Layouts
}

// NewDashboard returns an empty dashboard.
func NewDashboard() *Dashboard {
	return &Dashboard{
		items:   make(map[string]viz.Visualization),
		layouts: Layouts{},
	}
}

// Add pins a copy of v. It reports false when v.ID is already present.
func (d *Dashboard) Add(v viz.Visualization) bool {
	if _, ok := d.items[v.ID]; ok {
		return false
	}
	d.items[v.ID] = v.Clone()
	d.order = append(d.order, v.ID)
	return true
}

// Update merges p into the item with the given id. Unknown ids are a no-op.
func (d *Dashboard) Update(id string, p Patch) bool {
	v, ok := d.items[id]
	if !ok {
		return false
	}
	if p.Figure != nil {
		v.Figure = append(json.RawMessage(nil), p.Figure...)
	}
	if p.Type != nil {
		v.Type = *p.Type
	}
	if p.ConfigUsed != nil {
		v.ConfigUsed = viz.CopyMap(p.ConfigUsed)
	}
	if p.Title != nil {
		v.Title = *p.Title
		if p.Figure == nil {
			if fig, err := viz.SetFigureTitle(v.Figure, *p.Title); err == nil {
				v.Figure = fig
			}
		}
	}
	d.items[id] = v
	return true
}

// Remove unpins the item. Layout rectangles that reference it are kept and
// skipped by Resolve.
func (d *Dashboard) Remove(id string) bool {
	if _, ok := d.items[id]; !ok {
		return false
	}
	delete(d.items, id)
	for i, oid := range d.order {
		if oid == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

// SetLayout replaces all layouts wholesale.
func (d *Dashboard) SetLayout(l Layouts) {
	d.layouts = l.Clone()
}

// Layouts returns a copy of the stored layouts.
func (d *Dashboard) Layouts() Layouts {
	return d.layouts.Clone()
}

// Get returns a copy of the item with the given id.
func (d *Dashboard) Get(id string) (viz.Visualization, bool) {
	v, ok := d.items[id]
	if !ok {
		return viz.Visualization{}, false
	}
	return v.Clone(), true
}

// List returns copies of all items in insertion order.
func (d *Dashboard) List() []viz.Visualization {
	out := make([]viz.Visualization, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.items[id].Clone())
	}
	return out
}

// Len returns the number of pinned items.
func (d *Dashboard) Len() int {
	return len(d.order)
}

// Resolve returns the rectangles to render at bp: stored rectangles whose
// items still exist, then default placements for items without one, all
// compacted so that none overlap or leave the grid.
func (d *Dashboard) Resolve(bp Breakpoint) []Rect {
	cols := Columns(bp)
	placed := make(map[string]bool, len(d.order))
	out := make([]Rect, 0, len(d.order))

	for _, r := range d.layouts[bp] {
		if _, ok := d.items[r.ItemID]; !ok || placed[r.ItemID] {
			continue
		}
		placed[r.ItemID] = true
		out = append(out, r)
	}
	for i, id := range d.order {
		if placed[id] {
			continue
		}
		out = append(out, DefaultRect(i, d.items[id], cols))
	}
	return Compact(out, cols, "")
}

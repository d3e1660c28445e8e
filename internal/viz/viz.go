// Package viz defines the normalized visualization record and the few
// reads and writes performed on its otherwise opaque chart figure.
package viz

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ErrInvalidFigure is returned when a figure fails boundary validation.
var ErrInvalidFigure = errors.New("viz: invalid figure")

// Visualization is one generated chart plus its metadata.
type Visualization struct {
	ID          string          `json:"id"`
	Figure      json.RawMessage `json:"figure"`
	Type        string          `json:"type"`
	ConfigUsed  map[string]any  `json:"config_used"`
	GeneratedAt string          `json:"generated_at"`
	Title       string          `json:"title,omitempty"`
}

// Payload is the visualization object as the backend sends it.
type Payload struct {
	Figure      json.RawMessage `json:"figure"`
	Type        string          `json:"type"`
	ConfigUsed  map[string]any  `json:"config_used"`
	GeneratedAt string          `json:"generated_at"`
}

// Placeholder is the display title used when the figure carries none.
func Placeholder(chartType string) string {
	if chartType == "" {
		return "Visualization"
	}
	return chartType + " Visualization"
}

// ValidateFigure checks the figure is a JSON object whose data, if present,
// is an array and whose layout, if present, is an object.
func ValidateFigure(fig json.RawMessage) error {
	if len(bytes.TrimSpace(fig)) == 0 || !gjson.ValidBytes(fig) {
		return fmt.Errorf("%w: not valid JSON", ErrInvalidFigure)
	}
	root := gjson.ParseBytes(fig)
	if !root.IsObject() {
		return fmt.Errorf("%w: figure must be an object", ErrInvalidFigure)
	}
	if data := root.Get("data"); data.Exists() && !data.IsArray() {
		return fmt.Errorf("%w: data must be an array", ErrInvalidFigure)
	}
	if layout := root.Get("layout"); layout.Exists() && !layout.IsObject() {
		return fmt.Errorf("%w: layout must be an object", ErrInvalidFigure)
	}
	return nil
}

// Normalize turns a backend payload into a record with the given id.
func Normalize(p Payload, id string) (Visualization, error) {
	if err := ValidateFigure(p.Figure); err != nil {
		return Visualization{}, err
	}
	v := Visualization{
		ID:          id,
		Figure:      append(json.RawMessage(nil), p.Figure...),
		Type:        p.Type,
		ConfigUsed:  CopyMap(p.ConfigUsed),
		GeneratedAt: p.GeneratedAt,
	}
	if v.ConfigUsed == nil {
		v.ConfigUsed = map[string]any{}
	}
	v.Title = DeriveTitle(v.Figure, v.Type)
	return v, nil
}

// DeriveTitle reads layout.title in either its string or {text} form.
func DeriveTitle(fig json.RawMessage, chartType string) string {
	title := gjson.GetBytes(fig, "layout.title")
	switch {
	case title.Type == gjson.String && title.Str != "":
		return title.Str
	case title.IsObject():
		if text := title.Get("text"); text.Type == gjson.String && text.Str != "" {
			return text.Str
		}
	}
	return Placeholder(chartType)
}

// SetFigureTitle writes title into the figure, keeping the {text} form when
// the figure already uses it.
func SetFigureTitle(fig json.RawMessage, title string) (json.RawMessage, error) {
	if len(bytes.TrimSpace(fig)) == 0 {
		fig = json.RawMessage(`{}`)
	}
	path := "layout.title"
	if gjson.GetBytes(fig, path).IsObject() {
		path = "layout.title.text"
	}
	out, err := sjson.SetBytes(fig, path, title)
	if err != nil {
		return nil, fmt.Errorf("set figure title: %w", err)
	}
	return out, nil
}

// DisplayTitle returns the title shown on cards.
func (v Visualization) DisplayTitle() string {
	if v.Title != "" {
		return v.Title
	}
	return Placeholder(v.Type)
}

// SizeHint returns the declared pixel size, read from
// config_used.visualization first and figure.layout second.
func (v Visualization) SizeHint() (width, height float64, ok bool) {
	if nested, isMap := v.ConfigUsed["visualization"].(map[string]any); isMap {
		w, wok := number(nested["width"])
		h, hok := number(nested["height"])
		if wok && hok && w > 0 && h > 0 {
			return w, h, true
		}
	}
	w := gjson.GetBytes(v.Figure, "layout.width")
	h := gjson.GetBytes(v.Figure, "layout.height")
	if w.Type == gjson.Number && h.Type == gjson.Number && w.Num > 0 && h.Num > 0 {
		return w.Num, h.Num, true
	}
	return 0, 0, false
}

// Clone returns a deep copy; the chat and dashboard copies never share state.
func (v Visualization) Clone() Visualization {
	c := v
	c.Figure = append(json.RawMessage(nil), v.Figure...)
	c.ConfigUsed = CopyMap(v.ConfigUsed)
	return c
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// CopyValue deep-copies a decoded JSON value.
func CopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CopyValue(e)
		}
		return out
	default:
		return t
	}
}

// CopyMap deep-copies a decoded JSON object.
func CopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = CopyValue(v)
	}
	return out
}

package viz

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Trace is the subset of a figure trace the terminal renderer can show.
type Trace struct {
	Name   string
	Type   string
	Labels []string
	Values []float64
}

// Traces extracts x/y series from the figure's data array. Non-numeric y
// values are skipped.
func Traces(fig json.RawMessage) []Trace {
	var traces []Trace
	gjson.GetBytes(fig, "data").ForEach(func(_, t gjson.Result) bool {
		tr := Trace{
			Name: t.Get("name").String(),
			Type: t.Get("type").String(),
		}
		if tr.Type == "" {
			tr.Type = "scatter"
		}

		xs := t.Get("x").Array()
		for i, y := range t.Get("y").Array() {
			if y.Type != gjson.Number {
				continue
			}
			label := ""
			if i < len(xs) {
				label = xs[i].String()
			}
			tr.Labels = append(tr.Labels, label)
			tr.Values = append(tr.Values, y.Num)
		}
		traces = append(traces, tr)
		return true
	})
	return traces
}

// AxisTitles returns the x and y axis titles, in either string or {text} form.
func AxisTitles(fig json.RawMessage) (x, y string) {
	read := func(path string) string {
		r := gjson.GetBytes(fig, path)
		if r.IsObject() {
			return r.Get("text").String()
		}
		return r.String()
	}
	return read("layout.xaxis.title"), read("layout.yaxis.title")
}

// Package editor edits a visualization's configuration through two
// synchronized views: a per-field form and the indented JSON text.
package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"graphchat/internal/viz"
)

// ErrInvalidConfig is returned by Save while the JSON text does not parse.
var ErrInvalidConfig = errors.New("editor: configuration has errors")

// InvalidJSON is the error recorded for unparseable JSON text.
const InvalidJSON = "Invalid JSON format"

// LongString is the length above which a string field is multi-line.
const LongString = 50

// Kind selects how a field is rendered and how form input is parsed.
type Kind int

const (
	KindOther Kind = iota
	KindBool
	KindNumber
	KindString
	KindLongString
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindLongString:
		return "long string"
	case KindObject:
		return "object"
	}
	return "other"
}

// KindOf classifies a decoded JSON value.
func KindOf(v any) Kind {
	switch t := v.(type) {
	case bool:
		return KindBool
	case float64, float32, int, int64, json.Number:
		return KindNumber
	case string:
		if len(t) > LongString {
			return KindLongString
		}
		return KindString
	case map[string]any, []any:
		return KindObject
	}
	return KindOther
}

// Mode is the active view.
type Mode int

const (
	ModeForm Mode = iota
	ModeJSON
)

// Field is one form row.
type Field struct {
	Key   string
	Label string
	Kind  Kind
	Value any
}

// Display renders the value as it appears in a form input.
func (f Field) Display() string {
	return FormatValue(f.Value)
}

// Editor holds the working copy of a configuration.
type Editor struct {
	seed   map[string]any
	fields map[string]any
	text   string
	errors []string
	mode   Mode
}

// New seeds an editor with a deep copy of config.
func New(config map[string]any) *Editor {
	e := &Editor{seed: viz.CopyMap(config)}
	if e.seed == nil {
		e.seed = map[string]any{}
	}
	e.Reset()
	return e
}

// Reset restores the seed configuration and clears errors.
func (e *Editor) Reset() {
	e.fields = viz.CopyMap(e.seed)
	e.text = marshal(e.fields)
	e.errors = nil
}

// Fields returns the form rows ordered by key.
func (e *Editor) Fields() []Field {
	keys := make([]string, 0, len(e.fields))
	for k := range e.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Field, 0, len(keys))
	for _, k := range keys {
		v := e.fields[k]
		out = append(out, Field{Key: k, Label: Humanize(k), Kind: KindOf(v), Value: viz.CopyValue(v)})
	}
	return out
}

// Text returns the JSON view.
func (e *Editor) Text() string { return e.text }

// Errors returns the current validation errors.
func (e *Editor) Errors() []string { return append([]string(nil), e.errors...) }

// Valid reports whether the editor can be saved.
func (e *Editor) Valid() bool { return len(e.errors) == 0 }

// Mode returns the active view.
func (e *Editor) Mode() Mode { return e.mode }

// ToggleMode switches between the form and JSON views.
func (e *Editor) ToggleMode() {
	if e.mode == ModeForm {
		e.mode = ModeJSON
	} else {
		e.mode = ModeForm
	}
}

// SetField sets one value, re-serializes the text and clears errors.
func (e *Editor) SetField(key string, value any) {
	e.fields[key] = viz.CopyValue(value)
	e.text = marshal(e.fields)
	e.errors = nil
}

// SetFieldInput parses raw according to the field's current kind and sets
// it. Input that does not parse leaves the field unchanged.
func (e *Editor) SetFieldInput(key, raw string) error {
	cur, ok := e.fields[key]
	if !ok {
		return fmt.Errorf("unknown field %q", key)
	}

	var value any
	switch KindOf(cur) {
	case KindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s: expected true or false", key)
		}
		value = b
	case KindNumber:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("%s: expected a number", key)
		}
		value = n
	case KindObject:
		if err := json.Unmarshal([]byte(raw), &value); err != nil {
			return fmt.Errorf("%s: expected valid JSON", key)
		}
	default:
		value = raw
	}
	e.SetField(key, value)
	return nil
}

// SetText replaces the JSON view. When it parses to an object the fields
// follow it; otherwise the fields keep their last valid values.
func (e *Editor) SetText(text string) {
	e.text = text
	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil || parsed == nil {
		e.errors = []string{InvalidJSON}
		return
	}
	e.fields = parsed
	e.errors = nil
}

// Save returns a copy of the edited configuration.
func (e *Editor) Save() (map[string]any, error) {
	if !e.Valid() {
		return nil, ErrInvalidConfig
	}
	return viz.CopyMap(e.fields), nil
}

// Dirty reports whether the configuration differs from the seed.
func (e *Editor) Dirty() bool {
	return marshal(e.fields) != marshal(e.seed)
}

// Humanize turns a snake_case key into a label: underscores become spaces
// and each word starts upper case.
func Humanize(key string) string {
	runes := []rune(strings.ReplaceAll(key, "_", " "))
	for i, r := range runes {
		if i == 0 || !isWord(runes[i-1]) {
			runes[i] = unicode.ToUpper(r)
		}
	}
	return string(runes)
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// FormatValue renders a value for a single-line input.
func FormatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func marshal(m map[string]any) string {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

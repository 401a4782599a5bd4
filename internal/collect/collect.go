package collect

import (
	"io"
	"strings"

	"github.com/roboco-io/fcmetrics/internal/flat"
	"github.com/roboco-io/fcmetrics/internal/markup"
)

// State is the collector's position in a document. An empty Cursor means the
// collector is idle, otherwise it names the recognized tag it is inside.
type State struct {
	Cursor string
	Record map[string]flat.Value

	text string // character data seen inside the cursor tag so far
}

// NewState returns an idle state with an empty record.
func NewState() State {
	return State{Record: make(map[string]flat.Value)}
}

// Idle reports whether the cursor is outside every recognized tag.
func (s State) Idle() bool {
	return s.Cursor == ""
}

// Step applies one event to s and returns the next state. The record map is
// shared between s and the result.
func Step(schema *Schema, s State, ev Event) State {
	switch ev.Kind {
	case StartEvent:
		s.text = ""
		rule, ok := schema.Rule(ev.Tag)
		if !ok {
			s.Cursor = ""
			return s
		}
		s.Cursor = ev.Tag
		applyStart(schema, s.Record, rule, ev.Attrs)

	case TextEvent:
		if s.Idle() {
			return s
		}
		rule, _ := schema.Rule(s.Cursor)
		if rule.Action == CaptureText {
			s.text += ev.Data
			s.Record[rule.key()] = flat.Scalar(strings.TrimSpace(s.text))
		}

	case EndEvent:
		s.Cursor = ""
		s.text = ""
	}
	return s
}

func applyStart(schema *Schema, record map[string]flat.Value, rule Rule, attrs []markup.Attr) {
	switch rule.Action {
	case MergeAttrs:
		for _, a := range attrs {
			record[a.Name] = attrValue(schema, a.Value)
		}

	case CaptureAttrs:
		record[rule.key()] = attrMap(schema, attrs)

	case AppendAttrs:
		key := rule.key()
		items, _ := record[key].List()
		record[key] = flat.List(append(items, attrMap(schema, attrs))...)

	case StartList:
		key := rule.key()
		if _, ok := record[key].List(); !ok {
			record[key] = flat.List()
		}
	}
}

func attrMap(schema *Schema, attrs []markup.Attr) flat.Value {
	fields := make(map[string]flat.Value, len(attrs))
	for _, a := range attrs {
		fields[a.Name] = attrValue(schema, a.Value)
	}
	return flat.Map(fields)
}

func attrValue(schema *Schema, value string) flat.Value {
	if schema.isMissing(value) {
		return flat.Null()
	}
	return flat.Scalar(value)
}

// Collect folds events into a record using schema's recognized tags.
func Collect(schema *Schema, events []Event) flat.Value {
	s := NewState()
	for _, ev := range events {
		s = Step(schema, s, ev)
	}
	return flat.Map(s.Record)
}

// CollectDocument decodes the XML document in r and collects it. A malformed
// document returns *markup.MalformedDocumentError.
func CollectDocument(schema *Schema, r io.Reader, name string) (flat.Value, error) {
	events, err := Decode(r, name)
	if err != nil {
		return flat.Value{}, err
	}
	return Collect(schema, events), nil
}

// MergeIndexed stores rec under index in into. When both the existing entry
// and rec are maps their entries are merged, with rec winning on collision.
func MergeIndexed(into map[string]flat.Value, index string, rec flat.Value) map[string]flat.Value {
	if into == nil {
		into = make(map[string]flat.Value)
	}

	existing, ok := into[index].Map()
	incoming, isMap := rec.Map()
	if !ok || !isMap {
		into[index] = rec
		return into
	}

	merged := make(map[string]flat.Value, len(existing)+len(incoming))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range incoming {
		merged[k] = v
	}
	into[index] = flat.Map(merged)
	return into
}

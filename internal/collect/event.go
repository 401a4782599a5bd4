// Package collect builds shallow records from a stream of XML events.
//
// It targets flat instrument schemas (run metadata, per-read summaries,
// per-tile charts) where a handful of known tags carry everything of
// interest in their attributes or text. It keeps a single cursor instead of
// an element stack, so it is only suitable for schemas of depth two or less.
package collect

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/roboco-io/fcmetrics/internal/markup"
)

// EventKind identifies the type of an Event.
type EventKind int

const (
	StartEvent EventKind = iota
	EndEvent
	TextEvent
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case StartEvent:
		return "start"
	case EndEvent:
		return "end"
	case TextEvent:
		return "text"
	default:
		return "unknown"
	}
}

// Event is one step of a document: an element start with its attributes, an
// element end, or a run of character data.
type Event struct {
	Kind  EventKind
	Tag   string
	Attrs []markup.Attr
	Data  string
}

// Start returns a start event.
func Start(tag string, attrs ...markup.Attr) Event {
	return Event{Kind: StartEvent, Tag: tag, Attrs: attrs}
}

// End returns an end event.
func End(tag string) Event {
	return Event{Kind: EndEvent, Tag: tag}
}

// Text returns a character data event.
func Text(data string) Event {
	return Event{Kind: TextEvent, Data: data}
}

// Decode reads an XML document from r and returns its events in order. A
// well-formedness violation is reported as *markup.MalformedDocumentError and
// no events are returned.
func Decode(r io.Reader, name string) ([]Event, error) {
	decoder := xml.NewDecoder(r)

	var events []Event
	depth := 0
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &markup.MalformedDocumentError{Document: name, Cause: fmt.Errorf("XML parse error: %w", err)}
		}

		switch t := token.(type) {
		case xml.StartElement:
			attrs := make([]markup.Attr, 0, len(t.Attr))
			for _, attr := range t.Attr {
				attrs = append(attrs, markup.Attr{Name: attr.Name.Local, Value: attr.Value})
			}
			events = append(events, Start(t.Name.Local, attrs...))
			depth++

		case xml.EndElement:
			events = append(events, End(t.Name.Local))
			depth--

		case xml.CharData:
			if depth > 0 {
				events = append(events, Text(string(t)))
			}
		}
	}

	if len(events) == 0 {
		return nil, &markup.MalformedDocumentError{Document: name, Cause: fmt.Errorf("no root element")}
	}
	return events, nil
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(src []byte, name string) ([]Event, error) {
	return Decode(bytes.NewReader(src), name)
}

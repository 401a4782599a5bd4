// Package markup provides the element tree used by the flatteners and a
// parser that builds it from XML text.
package markup

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Attr is a single name/value attribute pair.
type Attr struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Node is an element of a parsed document. Nodes are not modified after Parse
// returns them.
type Node struct {
	Tag      string  `json:"tag"`
	Attrs    []Attr  `json:"attrs,omitempty"`
	Children []*Node `json:"children,omitempty"`
	Text     string  `json:"text,omitempty"` // character data directly inside the element
}

// HasAttrs reports whether the node carries any attributes.
func (n *Node) HasAttrs() bool {
	return len(n.Attrs) > 0
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrMap returns the attributes as a map. Later duplicates win.
func (n *Node) AttrMap() map[string]string {
	m := make(map[string]string, len(n.Attrs))
	for _, a := range n.Attrs {
		m[a.Name] = a.Value
	}
	return m
}

// Parse reads an XML document and returns its root element.
func Parse(src []byte) (*Node, error) {
	return ParseReader(bytes.NewReader(src), "")
}

// ParseReader reads an XML document from r. name identifies the document in
// errors and may be empty.
func ParseReader(r io.Reader, name string) (*Node, error) {
	decoder := xml.NewDecoder(r)

	var root *Node
	var stack []*Node
	var text []*strings.Builder

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &MalformedDocumentError{Document: name, Cause: fmt.Errorf("XML parse error: %w", err)}
		}

		switch t := token.(type) {
		case xml.StartElement:
			node := &Node{Tag: t.Name.Local}
			for _, attr := range t.Attr {
				node.Attrs = append(node.Attrs, Attr{Name: attr.Name.Local, Value: attr.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &MalformedDocumentError{Document: name, Cause: errors.New("multiple root elements")}
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
			text = append(text, &strings.Builder{})

		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, &MalformedDocumentError{Document: name, Cause: fmt.Errorf("unexpected end element %s", t.Name.Local)}
			}
			stack[len(stack)-1].Text = text[len(text)-1].String()
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
		}
	}

	if root == nil {
		return nil, &MalformedDocumentError{Document: name, Cause: errors.New("no root element")}
	}
	if len(stack) > 0 {
		return nil, &MalformedDocumentError{Document: name, Cause: fmt.Errorf("unclosed element %s", stack[len(stack)-1].Tag)}
	}
	return root, nil
}

package flat

import (
	"strings"

	"github.com/roboco-io/fcmetrics/internal/markup"
)

// Shape says how a group of sibling elements is flattened.
type Shape int

const (
	// ShapeHeterogeneous siblings become one map keyed by tag.
	ShapeHeterogeneous Shape = iota
	// ShapeHomogeneous siblings become one list stored under the shared tag.
	ShapeHomogeneous
)

// String returns the string representation of the shape.
func (s Shape) String() string {
	if s == ShapeHomogeneous {
		return "homogeneous"
	}
	return "heterogeneous"
}

// ClassifyChildrenShape decides the shape of a child group from the tags of
// its first two elements only. Fewer than two children is heterogeneous.
//
// Known limitation: a group whose first two tags match is homogeneous even if
// a later child has a different tag, so <a/><a/><b/> flattens to a list of
// three items stored under "a".
func ClassifyChildrenShape(children []*markup.Node) Shape {
	if len(children) < 2 {
		return ShapeHeterogeneous
	}
	if children[0].Tag == children[1].Tag {
		return ShapeHomogeneous
	}
	return ShapeHeterogeneous
}

// Flatten converts n into a Value.
//
// An element with children becomes a map: one entry per child tag for a
// heterogeneous group (later duplicates overwrite earlier ones), or a single
// list entry under the shared tag for a homogeneous group. The element's own
// attributes are then written into the same map and win on collision. A
// childless element with attributes becomes its attribute map, and a bare
// leaf becomes its trimmed text.
//
// n must not be nil.
func Flatten(n *markup.Node) Value {
	if n == nil {
		panic("flat: Flatten called with nil node")
	}

	if len(n.Children) == 0 {
		if n.HasAttrs() {
			return StringMap(n.AttrMap())
		}
		return Scalar(strings.TrimSpace(n.Text))
	}

	fields := make(map[string]Value)
	switch ClassifyChildrenShape(n.Children) {
	case ShapeHomogeneous:
		items := make([]Value, 0, len(n.Children))
		for _, child := range n.Children {
			items = append(items, Flatten(child))
		}
		fields[n.Children[0].Tag] = List(items...)
	default:
		for _, child := range n.Children {
			fields[child.Tag] = Flatten(child)
		}
	}

	for _, attr := range n.Attrs {
		fields[attr.Name] = Scalar(attr.Value)
	}
	return Map(fields)
}

// FlattenDocument parses src as XML and flattens its root element.
func FlattenDocument(src []byte) (Value, error) {
	root, err := markup.Parse(src)
	if err != nil {
		return Value{}, err
	}
	return Flatten(root), nil
}

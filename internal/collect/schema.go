package collect

import "slices"

// Action says what the collector does when it meets a recognized tag.
type Action int

const (
	// MergeAttrs writes the tag's attributes into the top level of the record.
	MergeAttrs Action = iota
	// CaptureAttrs stores the tag's attributes as a map under Key.
	CaptureAttrs
	// AppendAttrs appends the tag's attributes as a map to the list under Key.
	AppendAttrs
	// StartList makes sure an (empty) list exists under Key.
	StartList
	// CaptureText stores the tag's trimmed text under Key.
	CaptureText
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case MergeAttrs:
		return "merge"
	case CaptureAttrs:
		return "capture"
	case AppendAttrs:
		return "append"
	case StartList:
		return "list"
	case CaptureText:
		return "text"
	default:
		return "unknown"
	}
}

// Rule binds a recognized tag to an action. An empty Key means the tag name.
type Rule struct {
	Tag    string
	Action Action
	Key    string
}

func (r Rule) key() string {
	if r.Key == "" {
		return r.Tag
	}
	return r.Key
}

// Schema is the set of recognized tags for one shallow document type. Tags
// not listed are ignored.
type Schema struct {
	Name        string
	Description string
	Rules       []Rule
	// Missing lists attribute values that mean "no measurement" and are
	// recorded as flat.Null.
	Missing []string
}

// Rule returns the rule for tag. The first matching rule wins.
func (s *Schema) Rule(tag string) (Rule, bool) {
	for _, r := range s.Rules {
		if r.Tag == tag {
			return r, true
		}
	}
	return Rule{}, false
}

// Tags returns the recognized tag names in rule order.
func (s *Schema) Tags() []string {
	tags := make([]string, 0, len(s.Rules))
	for _, r := range s.Rules {
		tags = append(tags, r.Tag)
	}
	return tags
}

// WithMissing returns a copy of s that treats the given values as missing.
func (s *Schema) WithMissing(values ...string) *Schema {
	c := *s
	c.Rules = slices.Clone(s.Rules)
	c.Missing = slices.Clone(values)
	return &c
}

func (s *Schema) isMissing(value string) bool {
	return slices.Contains(s.Missing, value)
}

// RunInfo recognizes RunInfo.xml: run identity, flowcell layout and one entry
// per read.
func RunInfo() *Schema {
	return &Schema{
		Name:        "runinfo",
		Description: "RunInfo.xml run identity, flowcell layout and reads",
		Rules: []Rule{
			{Tag: "Run", Action: MergeAttrs},
			{Tag: "Reads", Action: StartList},
			{Tag: "Read", Action: AppendAttrs, Key: "Reads"},
			{Tag: "FlowcellLayout", Action: CaptureAttrs},
			{Tag: "Flowcell", Action: CaptureText},
			{Tag: "Instrument", Action: CaptureText},
			{Tag: "Date", Action: CaptureText},
		},
	}
}

// Summary recognizes an RTA per-read summary file with one Lane entry per lane.
func Summary() *Schema {
	return &Schema{
		Name:        "summary",
		Description: "RTA per-read summary (Summary/read*.xml), one entry per lane",
		Rules: []Rule{
			{Tag: "Summary", Action: MergeAttrs},
			{Tag: "Lane", Action: AppendAttrs, Key: "Lanes"},
		},
		Missing: []string{"NaN"},
	}
}

// Chart recognizes an RTA chart file with one Tile entry per tile.
func Chart() *Schema {
	return &Schema{
		Name:        "chart",
		Description: "RTA per-tile chart data, one entry per tile",
		Rules: []Rule{
			{Tag: "Chart", Action: MergeAttrs},
			{Tag: "Tile", Action: AppendAttrs, Key: "Tiles"},
		},
		Missing: []string{"NaN"},
	}
}

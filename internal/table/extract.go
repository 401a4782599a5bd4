package table

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/roboco-io/fcmetrics/internal/markup"
)

// Document is one HTML report already read into memory.
type Document struct {
	Name    string
	Content []byte
}

// Options configures an extraction.
type Options struct {
	// HeadingTag is the element that names a section. Default "h2".
	HeadingTag string

	// ExpectedHeaders maps a section name to the header it should have.
	// A captured header that differs is logged as a warning and then used
	// as observed.
	ExpectedHeaders map[string][]string

	// Deduplicate drops exact duplicate records across all documents.
	Deduplicate bool

	// SortKey, when set, stably sorts each section's records by key.
	// Reverse sorts in descending order.
	SortKey func(Record) string
	Reverse bool

	Logger *slog.Logger
}

func (o Options) headingTag() string {
	if o.HeadingTag == "" {
		return "h2"
	}
	return strings.ToLower(o.HeadingTag)
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// Batch accumulates sections across the documents of one extraction.
type Batch struct {
	opts     Options
	log      *slog.Logger
	sections map[string]*Section
	order    []string
}

// NewBatch returns an empty batch.
func NewBatch(opts Options) *Batch {
	return &Batch{
		opts:     opts,
		log:      opts.logger(),
		sections: make(map[string]*Section),
	}
}

// Add parses one document and appends its rows to the batch.
func (b *Batch) Add(doc Document) error {
	return b.AddReader(doc.Name, bytes.NewReader(doc.Content))
}

// AddReader is Add for a document read from r. A document that cannot be
// read or parsed leaves the batch untouched and returns
// *markup.MalformedDocumentError.
func (b *Batch) AddReader(name string, r io.Reader) error {
	dom, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return &markup.MalformedDocumentError{Document: name, Cause: fmt.Errorf("HTML parse error: %w", err)}
	}

	headingTag := b.opts.headingTag()
	current := NoSection
	dom.Find(headingTag + ", table").Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == headingTag {
			current = SectionName(nodeText(s.Nodes[0]))
			return
		}
		if s.ParentsFiltered("table").Length() > 0 {
			return
		}
		b.addTable(name, current, s)
	})
	return nil
}

func (b *Batch) addTable(docName, name string, t *goquery.Selection) {
	rows := t.Find("tr").FilterFunction(func(_ int, row *goquery.Selection) bool {
		return row.Closest("table").IsSelection(t)
	})

	sec, ok := b.sections[name]
	if !ok {
		header := headerRow(rows)
		if header == nil {
			return
		}
		sec = &Section{Name: name, Header: header}
		b.sections[name] = sec
		b.order = append(b.order, name)
		b.checkHeader(docName, sec)
	}

	rows.Each(func(_ int, row *goquery.Selection) {
		cells := cellTexts(row.ChildrenFiltered("td"))
		if len(cells) == 0 || len(cells) != len(sec.Header) {
			return
		}
		sec.Records = append(sec.Records, NewRecord(sec.Header, cells))
	})
}

// headerRow returns the th labels of the first row that has any.
func headerRow(rows *goquery.Selection) []string {
	var header []string
	rows.EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if th := row.ChildrenFiltered("th"); th.Length() > 0 {
			header = cellTexts(th)
			return false
		}
		return true
	})
	return header
}

func (b *Batch) checkHeader(docName string, sec *Section) {
	expected, ok := b.opts.ExpectedHeaders[sec.Name]
	if !ok || slices.Equal(expected, sec.Header) {
		return
	}
	b.log.Warn("section header has changed, new format?",
		"section", sec.Name,
		"document", docName,
		"old_format", quoteJoin(expected),
		"saw", quoteJoin(sec.Header),
	)
}

func quoteJoin(labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = "'" + l + "'"
	}
	return strings.Join(quoted, ",")
}

func cellTexts(cells *goquery.Selection) []string {
	out := make([]string, 0, cells.Length())
	for _, n := range cells.Nodes {
		out = append(out, nodeText(n))
	}
	return out
}

// nodeText joins the trimmed text nodes under n with single spaces.
func nodeText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

// Names returns section names in the order they were first seen.
func (b *Batch) Names() []string {
	return slices.Clone(b.order)
}

// Sections returns the accumulated sections with deduplication and sorting
// applied. The batch itself is not modified.
func (b *Batch) Sections() map[string]*Section {
	out := make(map[string]*Section, len(b.sections))
	for name, sec := range b.sections {
		records := slices.Clone(sec.Records)
		if b.opts.Deduplicate {
			records = Dedup(records, b.log.With("section", name), slog.LevelDebug)
		}
		if b.opts.SortKey != nil {
			SortStable(records, b.opts.SortKey, b.opts.Reverse)
		}
		if records == nil {
			records = []Record{}
		}
		out[name] = &Section{
			Name:    name,
			Header:  slices.Clone(sec.Header),
			Records: records,
		}
	}
	return out
}

// ExtractSections flattens the tables of every document into sections.
// Documents that fail to parse are reported in the joined error; the others
// still contribute.
func ExtractSections(docs []Document, opts Options) (map[string]*Section, error) {
	b := NewBatch(opts)
	var errs []error
	for _, doc := range docs {
		if err := b.Add(doc); err != nil {
			b.log.Warn("skipping document", "document", doc.Name, "error", err)
			errs = append(errs, err)
		}
	}
	return b.Sections(), errors.Join(errs...)
}

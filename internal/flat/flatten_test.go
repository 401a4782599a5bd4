package flat

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/roboco-io/fcmetrics/internal/markup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFlatten(t *testing.T, src string) Value {
	t.Helper()
	v, err := FlattenDocument([]byte(src))
	require.NoError(t, err)
	return v
}

func TestClassifyChildrenShape(t *testing.T) {
	node := func(tag string) *markup.Node { return &markup.Node{Tag: tag} }

	tests := []struct {
		name     string
		children []*markup.Node
		expected Shape
	}{
		{"no children", nil, ShapeHeterogeneous},
		{"single child", []*markup.Node{node("a")}, ShapeHeterogeneous},
		{"first two differ", []*markup.Node{node("a"), node("b")}, ShapeHeterogeneous},
		{"first two equal", []*markup.Node{node("a"), node("a")}, ShapeHomogeneous},
		{"third differs", []*markup.Node{node("a"), node("a"), node("b")}, ShapeHomogeneous},
		{"later repeat ignored", []*markup.Node{node("a"), node("b"), node("a")}, ShapeHeterogeneous},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyChildrenShape(tt.children))
		})
	}
}

func TestFlatten_HomogeneousChildrenBecomeList(t *testing.T) {
	v := mustFlatten(t, `<Lanes><Lane>1</Lane><Lane>2</Lane><Other>x</Other></Lanes>`)

	lanes, ok := v.Get("Lane")
	require.True(t, ok, "expected list under shared tag")
	items, ok := lanes.List()
	require.True(t, ok, "expected a list, got %s", lanes.Kind())
	require.Len(t, items, 3)

	first, _ := items[0].Scalar()
	assert.Equal(t, "1", first)
	third, _ := items[2].Scalar()
	assert.Equal(t, "x", third, "differently tagged third child still joins the list")

	_, hasOther := v.Get("Other")
	assert.False(t, hasOther)
}

func TestFlatten_SingleChildIsMap(t *testing.T) {
	v := mustFlatten(t, `<Setup><Read>101</Read></Setup>`)

	require.Equal(t, KindMap, v.Kind())
	read, ok := v.Get("Read")
	require.True(t, ok)
	s, ok := read.Scalar()
	require.True(t, ok, "single child must not become a one-element list")
	assert.Equal(t, "101", s)
}

func TestFlatten_HeterogeneousLaterDuplicateOverwrites(t *testing.T) {
	v := mustFlatten(t, `<Run><Name>first</Name><Date>120101</Date><Name>second</Name></Run>`)

	name, _ := v.Get("Name")
	s, _ := name.Scalar()
	assert.Equal(t, "second", s)
	assert.Equal(t, 2, v.Len())
}

func TestFlatten_LeafTextTrimmed(t *testing.T) {
	v := mustFlatten(t, "<ScannerID>\n   SN1025  \n</ScannerID>")

	s, ok := v.Scalar()
	require.True(t, ok)
	assert.Equal(t, "SN1025", s)

	again := Flatten(&markup.Node{Tag: "ScannerID", Text: s})
	s2, _ := again.Scalar()
	assert.Equal(t, s, s2, "flattening an already trimmed leaf is idempotent")
}

func TestFlatten_EmptyLeafIsEmptyScalar(t *testing.T) {
	v := mustFlatten(t, `<Root><Empty/></Root>`)

	empty, ok := v.Get("Empty")
	require.True(t, ok)
	s, ok := empty.Scalar()
	require.True(t, ok)
	assert.Equal(t, "", s)
}

func TestFlatten_AttributesOnlyLeaf(t *testing.T) {
	v := mustFlatten(t, `<Root><Software Name="CASAVA" Version="1.8.2"/></Root>`)

	sw, ok := v.Get("Software")
	require.True(t, ok)
	m, ok := sw.Map()
	require.True(t, ok)
	assert.Len(t, m, 2)
	version, _ := m["Version"].Scalar()
	assert.Equal(t, "1.8.2", version)
}

func TestFlatten_AttributesMergedWithChildren(t *testing.T) {
	v := mustFlatten(t, `<Lane Index="1" Sample="x"><Sample>child</Sample><Barcode>ACGT</Barcode></Lane>`)

	m, ok := v.Map()
	require.True(t, ok)
	index, _ := m["Index"].Scalar()
	assert.Equal(t, "1", index)
	barcode, _ := m["Barcode"].Scalar()
	assert.Equal(t, "ACGT", barcode)
	sample, _ := m["Sample"].Scalar()
	assert.Equal(t, "x", sample, "attribute written after children wins on collision")
}

func TestFlatten_HomogeneousGroupWithAttributes(t *testing.T) {
	v := mustFlatten(t, `<Reads Count="2"><Read Number="1" Cycles="101"/><Read Number="2" Cycles="7"/></Reads>`)

	count, _ := v.Get("Count")
	s, _ := count.Scalar()
	assert.Equal(t, "2", s)

	reads, _ := v.Get("Read")
	items, ok := reads.List()
	require.True(t, ok)
	require.Len(t, items, 2)
	cycles, _ := items[1].Get("Cycles")
	c, _ := cycles.Scalar()
	assert.Equal(t, "7", c)
}

func TestFlatten_NestedStructure(t *testing.T) {
	src := `<?xml version="1.0"?>
<RunParameters>
  <Setup>
    <ApplicationName>HiSeq Control Software</ApplicationName>
    <Reads>
      <Read Number="1" NumCycles="101"/>
      <Read Number="2" NumCycles="7"/>
    </Reads>
  </Setup>
  <RunID>120924_SN1025_0222_AC1B5UACXX</RunID>
</RunParameters>`

	v := mustFlatten(t, src)

	runID, _ := v.Get("RunID")
	id, _ := runID.Scalar()
	assert.Equal(t, "120924_SN1025_0222_AC1B5UACXX", id)

	setup, ok := v.Get("Setup")
	require.True(t, ok)
	app, _ := setup.Get("ApplicationName")
	name, _ := app.Scalar()
	assert.Equal(t, "HiSeq Control Software", name)

	reads, _ := setup.Get("Reads")
	list, _ := reads.Get("Read")
	assert.Equal(t, 2, list.Len())
}

func TestFlatten_NilNodePanics(t *testing.T) {
	assert.Panics(t, func() { Flatten(nil) })
}

func TestFlattenDocument_Malformed(t *testing.T) {
	_, err := FlattenDocument([]byte(`<Run><Unclosed></Run>`))
	require.Error(t, err)

	var malformed *markup.MalformedDocumentError
	assert.True(t, errors.As(err, &malformed))
}

func TestValue_MarshalJSON(t *testing.T) {
	v := Map(map[string]Value{
		"Id":      Scalar("1"),
		"Reads":   List(StringMap(map[string]string{"IsIndexedRead": "N"})),
		"Phasing": Null(),
	})

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Id":"1","Reads":[{"IsIndexedRead":"N"}],"Phasing":null}`, string(data))
}

func TestValue_Accessors(t *testing.T) {
	s := Scalar("a")
	_, ok := s.List()
	assert.False(t, ok)
	_, ok = s.Map()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())

	l := List(Scalar("x"), Scalar("y"))
	item, ok := l.Index(1)
	require.True(t, ok)
	y, _ := item.Scalar()
	assert.Equal(t, "y", y)
	_, ok = l.Index(2)
	assert.False(t, ok)

	assert.True(t, Null().IsNull())
	assert.Equal(t, `{a:"1" b:["2" null]}`, Map(map[string]Value{
		"b": List(Scalar("2"), Null()),
		"a": Scalar("1"),
	}).String())
}

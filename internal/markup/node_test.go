package markup

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Tree(t *testing.T) {
	src := `<?xml version="1.0"?>
<!-- run metadata -->
<RunInfo Version="2">
  <Run Id="120924_SN1025" Number="222">
    <Flowcell>C1B5UACXX</Flowcell>
  </Run>
</RunInfo>`

	root, err := Parse([]byte(src))
	require.NoError(t, err)

	assert.Equal(t, "RunInfo", root.Tag)
	v, ok := root.Attr("Version")
	assert.True(t, ok)
	assert.Equal(t, "2", v)

	require.Len(t, root.Children, 1)
	run := root.Children[0]
	assert.Equal(t, map[string]string{"Id": "120924_SN1025", "Number": "222"}, run.AttrMap())
	require.Len(t, run.Children, 1)
	assert.Equal(t, "C1B5UACXX", run.Children[0].Text)
	assert.True(t, run.HasAttrs())
	assert.False(t, run.Children[0].HasAttrs())
}

func TestParse_NamespacedNamesUseLocalPart(t *testing.T) {
	root, err := Parse([]byte(`<ns:Root xmlns:ns="urn:x"><ns:Item ns:key="1"/></ns:Root>`))
	require.NoError(t, err)

	assert.Equal(t, "Root", root.Tag)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "Item", root.Children[0].Tag)
	key, ok := root.Children[0].Attr("key")
	assert.True(t, ok)
	assert.Equal(t, "1", key)
}

func TestParseReader_Malformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"mismatched tags", `<a><b></a>`},
		{"unclosed", `<a><b></b>`},
		{"empty", ``},
		{"text only", `just text`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseReader(strings.NewReader(tt.src), "RunInfo.xml")
			require.Error(t, err)

			var malformed *MalformedDocumentError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, "RunInfo.xml", malformed.Document)
			assert.Contains(t, err.Error(), "RunInfo.xml")
		})
	}
}

func TestMalformedDocumentError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &MalformedDocumentError{Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "malformed document <unnamed>: boom", err.Error())
}

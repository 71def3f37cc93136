package docxmerge

import (
	"testing"

	"github.com/benjaminschreck/docxmerge/pkg/docxmerge/xml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseTree(t *testing.T, s string) *xml.Tree {
	t.Helper()
	tree, err := xml.ParseString(s)
	require.NoError(t, err)
	return tree
}

func TestLocate(t *testing.T) {
	body := `<w:p><w:r><w:t>${x}</w:t></w:r><w:r><w:t>${x}</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>a ${x}</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>${y}</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>${x}</w:t></w:r></w:p>`
	tree := parseTree(t, body)
	loc := NewLocator(WordFormat)

	texts, err := loc.Locate(tree, "x", false, xml.None)
	require.NoError(t, err)
	require.Len(t, texts, 3, "partial text must not match")
	for _, id := range texts {
		assert.Equal(t, "w:t", tree.Name(id))
		assert.Equal(t, "${x}", tree.Text(id))
	}

	blocks, err := loc.Locate(tree, "x", true, xml.None)
	require.NoError(t, err)
	require.Len(t, blocks, 2, "a block reached twice is returned once")
	for _, id := range blocks {
		assert.Equal(t, "w:p", tree.Name(id))
	}
	assert.Equal(t, blocks[0], tree.Ancestor(texts[0], 2))
	assert.Equal(t, blocks[1], tree.Ancestor(texts[2], 2))

	enclosed, err := loc.Locate(tree, "${x}", false, xml.None)
	require.NoError(t, err)
	assert.Equal(t, texts, enclosed)
}

func TestLocateScoped(t *testing.T) {
	tree := parseTree(t, `<root><w:p><w:r><w:t>${x}</w:t></w:r></w:p><w:p><w:r><w:t>${x}</w:t></w:r></w:p></root>`)
	loc := NewLocator(WordFormat)

	blocks, err := loc.Locate(tree, "x", true, xml.None)
	require.NoError(t, err)
	require.Len(t, blocks, 2)

	inner, err := loc.Locate(tree, "x", false, blocks[1])
	require.NoError(t, err)
	require.Len(t, inner, 1)
	assert.True(t, tree.IsAncestor(blocks[1], inner[0]))
}

func TestLocateNoMatch(t *testing.T) {
	tree := parseTree(t, para("${x}"))
	blocks, err := NewLocator(WordFormat).Locate(tree, "missing", true, xml.None)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestLocateShallowMatchHasNoBlock(t *testing.T) {
	tree := parseTree(t, `<w:r><w:t>${x}</w:t></w:r>`)
	loc := NewLocator(WordFormat)

	texts, err := loc.Locate(tree, "x", false, xml.None)
	require.NoError(t, err)
	assert.Len(t, texts, 1)

	blocks, err := loc.Locate(tree, "x", true, xml.None)
	require.NoError(t, err)
	assert.Empty(t, blocks)
}

func TestLocateCustomFormat(t *testing.T) {
	tree := parseTree(t, `<row><cell><t>${x}</t></cell></row>`)
	loc := NewLocator(Format{TextElement: "t", BlockDepth: 2})

	blocks, err := loc.Locate(tree, "x", true, xml.None)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "row", tree.Name(blocks[0]))
}

func TestFormatBind(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "conventional prefix",
			doc:  `<w:document ` + wordNS + `/>`,
			want: "w:t",
		},
		{
			name: "other prefix bound to the namespace",
			doc:  `<x:document xmlns:x="` + WordprocessingML + `"/>`,
			want: "x:t",
		},
		{
			name: "default namespace",
			doc:  `<document xmlns="` + WordprocessingML + `"/>`,
			want: "t",
		},
		{
			name: "no binding keeps the configured name",
			doc:  `<w:p/>`,
			want: "w:t",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parseTree(t, tt.doc)
			assert.Equal(t, tt.want, WordFormat.bind(tree).TextElement)
		})
	}
}

func TestLocateFollowsDocumentPrefix(t *testing.T) {
	tree := parseTree(t, `<x:document xmlns:x="`+WordprocessingML+`"><x:body><x:p><x:r><x:t>${v}</x:t></x:r></x:p></x:body></x:document>`)
	blocks, err := NewLocator(WordFormat).Locate(tree, "v", true, xml.None)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "x:p", tree.Name(blocks[0]))
}

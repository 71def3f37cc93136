package docxmerge

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/benjaminschreck/docxmerge/pkg/docxmerge/xml"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestExpandArray(t *testing.T) {
	e := NewExpander(WordFormat)
	body := `<w:p><w:r><w:t>${x}</w:t></w:r></w:p>`

	pairs, out, err := e.Expand(body, "x", Sequence("a", "b"))
	require.NoError(t, err)

	want := Pairs{{Token: "${x_0}", Value: "a"}, {Token: "${x_1}", Value: "b"}}
	if diff := cmp.Diff(want, pairs); diff != "" {
		t.Errorf("pairs mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t,
		`<w:p><w:r><w:t>${x_0}</w:t></w:r></w:p><w:p><w:r><w:t>${x_1}</w:t></w:r></w:p>`,
		out)
}

func TestExpandCustomFormat(t *testing.T) {
	e := NewExpander(Format{TextElement: "t", BlockDepth: 2})
	pairs, out, err := e.Expand(`<p><r><t>${x}</t></r></p>`, "x", Sequence("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"${x_0}", "${x_1}"}, pairs.Tokens())
	assert.Equal(t, []string{"a", "b"}, pairs.Values())
	assert.Equal(t, `<p><r><t>${x_0}</t></r></p><p><r><t>${x_1}</t></r></p>`, out)
}

func TestExpandScalar(t *testing.T) {
	e := NewExpander(WordFormat)
	body := para("Hello ${name}")

	pairs, out, err := e.Expand(body, "name", Scalar("World"))
	require.NoError(t, err)
	assert.Equal(t, Pairs{{Token: "${name}", Value: "World"}}, pairs)
	assert.Equal(t, body, out, "a scalar never touches the body")
}

func TestExpandKeepsSurroundingContent(t *testing.T) {
	e := NewExpander(WordFormat)
	body := wordDocument(para("Title") + `<w:p><w:pPr><w:pStyle w:val="List"/></w:pPr><w:r><w:t>${items}</w:t></w:r></w:p>` + para("End"))

	_, out, err := e.Expand(body, "items", Sequence("one", "two", "three"))
	require.NoError(t, err)

	want := wordDocument(para("Title") +
		`<w:p><w:pPr><w:pStyle w:val="List"/></w:pPr><w:r><w:t>${items_0}</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:pStyle w:val="List"/></w:pPr><w:r><w:t>${items_1}</w:t></w:r></w:p>` +
		`<w:p><w:pPr><w:pStyle w:val="List"/></w:pPr><w:r><w:t>${items_2}</w:t></w:r></w:p>` +
		para("End"))
	assert.Equal(t, want, out)
}

func TestExpandKeepsBytesOutsideBlocks(t *testing.T) {
	e := NewExpander(WordFormat)
	head := "<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"yes\"?>\r\n<w:document " + wordNS + "><w:body>\r\n"
	quoted := para("&quot;As is&quot; &amp; &apos;kept&apos;") + "\r\n"
	tail := "</w:body></w:document>"

	_, out, err := e.Expand(head+quoted+para("${x}")+tail, "x", Sequence("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, head+quoted+para("${x_0}")+para("${x_1}")+tail, out)
}

func TestExpandCopyIsolation(t *testing.T) {
	e := NewExpander(WordFormat)
	body := `<w:p><w:r><w:t>${x}</w:t></w:r><w:r><w:t>${x}</w:t></w:r></w:p>`

	_, out, err := e.Expand(body, "x", Sequence("a", "b", "c"))
	require.NoError(t, err)

	tree := parseTree(t, out)
	blocks := tree.Children(tree.Root())
	require.Len(t, blocks, 3)
	for i, block := range blocks {
		token := fmt.Sprintf("${x_%d}", i)
		assert.Equal(t, token+token, tree.Text(block), "copy %d carries only its own token", i)
	}
	assert.NotContains(t, out, "${x}")
}

func TestExpandEveryBlockPerItem(t *testing.T) {
	e := NewExpander(WordFormat)
	body := `<w:body>` + para("${x}") + para("sep") + para("${x}") + `</w:body>`

	pairs, out, err := e.Expand(body, "x", Sequence("a", "b"))
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
	assert.Equal(t,
		`<w:body>`+para("${x_0}")+para("${x_1}")+para("sep")+para("${x_0}")+para("${x_1}")+`</w:body>`,
		out)
}

func TestExpandNoBlock(t *testing.T) {
	e := NewExpander(WordFormat)
	body := para("nothing here")

	pairs, out, err := e.Expand(body, "x", Sequence("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, body, out, "no block means the body is returned as given")
	assert.Equal(t, []string{"${x_0}", "${x_1}"}, pairs.Tokens())
}

func TestExpandEmptySequence(t *testing.T) {
	e := NewExpander(WordFormat)
	body := `<w:body>` + para("before") + para("${x}") + `</w:body>`

	pairs, out, err := e.Expand(body, "x", Sequence())
	require.NoError(t, err)
	assert.Empty(t, pairs)
	assert.Equal(t, `<w:body>`+para("before")+`</w:body>`, out)
}

func TestExpandMalformedBody(t *testing.T) {
	e := NewExpander(WordFormat)
	_, _, err := e.Expand(`<w:p><w:r>`, "x", Sequence("a"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedXML))

	// a scalar never parses, so a broken body passes through
	_, out, err := e.Expand(`<w:p><w:r>`, "x", Scalar("a"))
	require.NoError(t, err)
	assert.Equal(t, `<w:p><w:r>`, out)
}

func TestExpandNestedBlocks(t *testing.T) {
	e := NewExpander(Format{TextElement: "t", BlockDepth: 2})
	// the outer t's block is <a>, which contains the inner t's block <c>
	body := `<a><b><t>${x}</t><c><d><t>${x}</t></d></c></b></a>`

	_, _, err := e.Expand(body, "x", Sequence("1", "2"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOverlappingBlocks))

	var overlap *OverlapError
	require.True(t, errors.As(err, &overlap))
	assert.Equal(t, "x", overlap.First)
}

func TestExpandSlots(t *testing.T) {
	e := NewExpander(WordFormat)
	body := `<w:body>` + para("${a}") + para("${b}") + `</w:body>`

	pairs, out, err := e.ExpandSlots(body,
		[]string{"a", "b", "c"},
		[]Value{Sequence("1", "2"), Scalar("B")})
	require.NoError(t, err)

	assert.Equal(t, []string{"${a_0}", "${a_1}", "${b}"}, pairs.Tokens())
	assert.Equal(t, `<w:body>`+para("${a_0}")+para("${a_1}")+para("${b}")+`</w:body>`, out)
}

func TestExpandEnclosedName(t *testing.T) {
	e := NewExpander(WordFormat)
	pairs, out, err := e.Expand(para("${x}"), "${x}", Sequence("a"))
	require.NoError(t, err)
	assert.Equal(t, []string{"${x_0}"}, pairs.Tokens())
	assert.Equal(t, para("${x_0}"), out)
}

func TestCheckOverlaps(t *testing.T) {
	e := NewExpander(WordFormat)

	shared := `<w:body><w:p><w:r><w:t>${a}</w:t></w:r><w:r><w:t>${b}</w:t></w:r></w:p></w:body>`
	err := e.CheckOverlaps(shared, []string{"a", "b"})
	require.Error(t, err)
	var overlap *OverlapError
	require.True(t, errors.As(err, &overlap))
	assert.Equal(t, "a", overlap.First)
	assert.Equal(t, "b", overlap.Second)

	separate := `<w:body>` + para("${a}") + para("${b}") + `</w:body>`
	assert.NoError(t, e.CheckOverlaps(separate, []string{"a", "b"}))
	assert.NoError(t, e.CheckOverlaps(shared, []string{"a"}), "a single name cannot overlap another")
	assert.NoError(t, e.CheckOverlaps(shared, []string{"a", "missing"}))

	assert.ErrorIs(t, e.CheckOverlaps(`<w:p>`, []string{"a", "b"}), ErrMalformedXML)
}

func TestExpandTreeCardinality(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		blocks := rapid.IntRange(0, 4).Draw(t, "blocks")
		fillers := rapid.IntRange(0, 3).Draw(t, "fillers")
		items := rapid.SliceOfN(rapid.StringMatching(`[a-z]{0,6}`), 0, 5).Draw(t, "items")

		var sb strings.Builder
		sb.WriteString("<w:body>")
		for i := 0; i < fillers; i++ {
			sb.WriteString(para(fmt.Sprintf("filler %d", i)))
		}
		for i := 0; i < blocks; i++ {
			sb.WriteString(para("${x}"))
		}
		sb.WriteString("</w:body>")
		body := sb.String()

		pairs, out, err := NewExpander(WordFormat).Expand(body, "x", Sequence(items...))
		if err != nil {
			t.Fatalf("expand: %v", err)
		}
		if len(pairs) != len(items) {
			t.Fatalf("got %d pairs, want %d", len(pairs), len(items))
		}
		for i, pair := range pairs {
			if want := fmt.Sprintf("${x_%d}", i); pair.Token != want || pair.Value != items[i] {
				t.Fatalf("pair %d = %+v, want {%s %s}", i, pair, want, items[i])
			}
		}

		tree, err := xml.ParseString(out)
		if err != nil {
			t.Fatalf("output is not well formed: %v\n%s", err, out)
		}
		paragraphs := tree.Children(tree.DocumentElement())
		if got, want := len(paragraphs), fillers+blocks*len(items); got != want {
			t.Fatalf("got %d paragraphs, want %d", got, want)
		}
		if blocks > 0 && strings.Contains(out, "${x}") {
			t.Fatalf("original block survived:\n%s", out)
		}
		for i := range items {
			if got := strings.Count(out, fmt.Sprintf("${x_%d}", i)); got != blocks {
				t.Fatalf("token %d appears %d times, want %d", i, got, blocks)
			}
		}
	})
}

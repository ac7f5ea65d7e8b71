package doctree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func mustParse(t *testing.T, raw string) *Node {
	t.Helper()
	root, err := Parse(strings.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	return root
}

func render(t *testing.T, n *Node) string {
	t.Helper()
	s, err := RenderString(n)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParseRenderRoundTrip(t *testing.T) {
	t.Run("simple paragraph", func(t *testing.T) {
		root := mustParse(t, "<p>Hello <b>World</b></p>")
		assert.Equal(t, "<p>Hello <b>World</b></p>", render(t, root))
	})

	t.Run("semantic aliases are canonicalized", func(t *testing.T) {
		root := mustParse(t, "<p><strong>a</strong><em>b</em><del>c</del></p>")
		assert.Equal(t, "<p><b>a</b><i>b</i><s>c</s></p>", render(t, root))
	})

	t.Run("unknown elements are unwrapped", func(t *testing.T) {
		root := mustParse(t, "<article><p>x</p></article>")
		assert.Equal(t, "<p>x</p>", render(t, root))
	})

	t.Run("style attribute becomes style map", func(t *testing.T) {
		root := mustParse(t, `<p><span style="color: red; font-size: inherit">x</span></p>`)
		span := root.FirstChild().FirstChild()
		assert.Equal(t, Span, span.Kind)
		assert.Equal(t, "red", span.Style("color"))
		assert.Empty(t, span.Style("font-size"))
	})
}

func TestParseFragment(t *testing.T) {
	nodes, err := ParseFragment("<b>rich</b> text")
	assert.NoError(t, err)
	assert.Len(t, nodes, 2)
	assert.Equal(t, Bold, nodes[0].Kind)
	assert.Equal(t, Text, nodes[1].Kind)
	assert.Equal(t, " text", nodes[1].Text)
}

func TestPlainText(t *testing.T) {
	root := mustParse(t, "<p>a</p><p>b<br>c</p>")
	assert.Equal(t, "a\nb\nc", root.PlainText())
	assert.Equal(t, 5, root.TextLen())
}

func TestSplitText(t *testing.T) {
	t.Run("middle split", func(t *testing.T) {
		p := NewNode(Paragraph)
		text := NewText("привет")
		p.AppendChild(text)

		rest := SplitText(text, 3)
		assert.Equal(t, "при", text.Text)
		assert.Equal(t, "вет", rest.Text)
		assert.Equal(t, 2, p.ChildCount())
		assert.Equal(t, rest, text.NextSibling())
	})

	t.Run("boundary offsets", func(t *testing.T) {
		p := NewNode(Paragraph)
		text := NewText("abc")
		p.AppendChild(text)

		assert.Equal(t, text, SplitText(text, 0))
		assert.Nil(t, SplitText(text, 3))
		assert.Equal(t, 1, p.ChildCount())
	})
}

func TestClonePreservesIDs(t *testing.T) {
	root := mustParse(t, "<p>Hello</p>")
	text := root.FirstChild().FirstChild()

	clone := root.Clone()
	found := FindByID(clone, text.ID)
	assert.NotNil(t, found)
	assert.NotSame(t, text, found)
	assert.Equal(t, text.Text, found.Text)
}

func TestMutators(t *testing.T) {
	p := NewNode(Paragraph)
	a := NewText("a")
	b := NewText("b")
	c := NewText("c")
	p.AppendChild(a)
	p.AppendChild(c)
	p.InsertBefore(b, c)

	assert.Equal(t, []*Node{a, b, c}, p.Children())
	assert.Equal(t, 1, b.Index())

	b.Detach()
	assert.Equal(t, 2, p.ChildCount())
	assert.Nil(t, b.Parent())

	d := NewText("d")
	p.ReplaceChild(c, d)
	assert.Equal(t, d, p.LastChild())
	assert.Nil(t, c.Parent())
}

func TestHasContent(t *testing.T) {
	empty := NewNode(Paragraph)
	assert.False(t, empty.HasContent())

	whitespace := NewNode(Paragraph)
	whitespace.AppendChild(NewText("   "))
	assert.False(t, whitespace.HasContent())

	placeholder := NewNode(Paragraph)
	placeholder.AppendChild(NewNode(LineBreak))
	assert.True(t, placeholder.HasContent())
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument()
	assert.Equal(t, "<p><br/></p>", render(t, doc))
}

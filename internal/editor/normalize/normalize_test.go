package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
)

func render(t *testing.T, n *doctree.Node) string {
	t.Helper()
	s, err := doctree.RenderString(n)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestHoistPre(t *testing.T) {
	t.Run("pre as only child replaces parent", func(t *testing.T) {
		root := doctree.NewNode(doctree.Root)
		p := doctree.NewNode(doctree.Paragraph)
		pre := doctree.NewNode(doctree.Pre)
		pre.AppendChild(doctree.NewText("code"))
		p.AppendChild(pre)
		root.AppendChild(p)

		Normalize(root)
		assert.Equal(t, "<pre>code</pre>", render(t, root))
	})

	t.Run("pre with siblings moves after parent", func(t *testing.T) {
		root := doctree.NewNode(doctree.Root)
		p := doctree.NewNode(doctree.Paragraph)
		p.AppendChild(doctree.NewText("before"))
		pre := doctree.NewNode(doctree.Pre)
		pre.AppendChild(doctree.NewText("code"))
		p.AppendChild(pre)
		root.AppendChild(p)

		Normalize(root)
		assert.Equal(t, "<p>before</p><pre>code</pre>", render(t, root))
	})

	t.Run("nested violations repaired to fixpoint", func(t *testing.T) {
		root := doctree.NewNode(doctree.Root)
		outer := doctree.NewNode(doctree.Div)
		inner := doctree.NewNode(doctree.Paragraph)
		pre := doctree.NewNode(doctree.Pre)
		pre.AppendChild(doctree.NewText("x"))
		inner.AppendChild(pre)
		outer.AppendChild(inner)
		root.AppendChild(outer)

		Normalize(root)
		assert.Equal(t, "<pre>x</pre>", render(t, root))
	})
}

func TestDropEmptyBlocks(t *testing.T) {
	root := doctree.NewNode(doctree.Root)
	empty := doctree.NewNode(doctree.Paragraph)
	root.AppendChild(empty)
	placeholder := doctree.NewNode(doctree.Paragraph)
	placeholder.AppendChild(doctree.NewNode(doctree.LineBreak))
	root.AppendChild(placeholder)
	filled := doctree.NewNode(doctree.Paragraph)
	filled.AppendChild(doctree.NewText("x"))
	root.AppendChild(filled)

	Normalize(root)
	assert.Equal(t, "<p><br/></p><p>x</p>", render(t, root))
}

func TestHeadingFontSizeSuppression(t *testing.T) {
	root := doctree.NewNode(doctree.Root)
	h := doctree.NewNode(doctree.Heading2)
	h.SetStyle("font-size", "30pt")
	h.SetStyle("font-family", "Arial")
	span := doctree.NewNode(doctree.Span)
	span.SetStyle("font-size", "28pt")
	span.SetStyle("color", "red")
	span.AppendChild(doctree.NewText("title"))
	h.AppendChild(span)
	root.AppendChild(h)

	Normalize(root)

	assert.Empty(t, h.Style("font-size"))
	assert.Empty(t, span.Style("font-size"))
	assert.Equal(t, "Arial", h.Style("font-family"))
	assert.Equal(t, "red", span.Style("color"))
}

func TestNormalizeIdempotent(t *testing.T) {
	root := doctree.NewNode(doctree.Root)
	p := doctree.NewNode(doctree.Paragraph)
	p.AppendChild(doctree.NewText("lead"))
	pre := doctree.NewNode(doctree.Pre)
	pre.AppendChild(doctree.NewText("code"))
	p.AppendChild(pre)
	root.AppendChild(p)
	root.AppendChild(doctree.NewNode(doctree.Paragraph))
	h := doctree.NewNode(doctree.Heading1)
	h.SetStyle("font-size", "40pt")
	h.AppendChild(doctree.NewText("t"))
	root.AppendChild(h)

	Normalize(root)
	first := render(t, root)
	Normalize(root)
	second := render(t, root)

	assert.Equal(t, first, second)
}

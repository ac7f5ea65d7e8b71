package paste

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
	"github.com/aisa-it/aiplan-editor/internal/editor/ederrors"
)

func TestDecide(t *testing.T) {
	rich := "<b>rich</b>"
	word := `<p class="MsoNormal">from word</p>`

	t.Run("plain mode always inserts plain", func(t *testing.T) {
		assert.Equal(t, InsertPlain, Decide(&rich, PlainText))
		assert.Equal(t, InsertPlain, Decide(&word, PlainText))
	})

	t.Run("no html inserts plain", func(t *testing.T) {
		assert.Equal(t, InsertPlain, Decide(nil, FormattedAndPlain))
		empty := "   "
		assert.Equal(t, InsertPlain, Decide(&empty, FormattedAndPlain))
	})

	t.Run("clean html inserts formatted", func(t *testing.T) {
		assert.Equal(t, InsertFormatted, Decide(&rich, FormattedAndPlain))
	})

	t.Run("office markup asks the user", func(t *testing.T) {
		assert.Equal(t, AskUser, Decide(&word, FormattedAndPlain))
		gdoc := `<b id="docs-internal-guid-abc">x</b>`
		assert.Equal(t, AskUser, Decide(&gdoc, FormattedAndPlain))
	})
}

func TestPlainFragment(t *testing.T) {
	t.Run("lines become text runs with br separators", func(t *testing.T) {
		nodes, err := PlainFragment("a\r\nb\nc")
		assert.NoError(t, err)
		kinds := make([]doctree.Kind, 0, len(nodes))
		for _, n := range nodes {
			kinds = append(kinds, n.Kind)
		}
		assert.Equal(t, []doctree.Kind{
			doctree.Text, doctree.LineBreak, doctree.Text, doctree.LineBreak, doctree.Text,
		}, kinds)
		assert.Equal(t, "a", nodes[0].Text)
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		_, err := PlainFragment("")
		assert.ErrorIs(t, err, ederrors.ErrUnsupportedPasteContent)
	})
}

func TestFormattedFragment(t *testing.T) {
	t.Run("formatting survives sanitization", func(t *testing.T) {
		nodes, err := FormattedFragment(`<p style="color: #ff0000">x <b>y</b></p>`)
		assert.NoError(t, err)
		assert.Len(t, nodes, 1)
		assert.Equal(t, doctree.Paragraph, nodes[0].Kind)
		assert.Equal(t, "#ff0000", nodes[0].Style("color"))
	})

	t.Run("scripts are stripped entirely", func(t *testing.T) {
		_, err := FormattedFragment(`<script>alert(1)</script>`)
		assert.ErrorIs(t, err, ederrors.ErrUnsupportedPasteContent)
	})

	t.Run("event handler attributes are dropped", func(t *testing.T) {
		nodes, err := FormattedFragment(`<b onclick="evil()">x</b>`)
		assert.NoError(t, err)
		assert.Empty(t, nodes[0].Attr("onclick"))
	})

	t.Run("table keeps colwidths attribute", func(t *testing.T) {
		nodes, err := FormattedFragment(`<table data-colwidths="50.00,50.00"><tr><td>x</td></tr></table>`)
		assert.NoError(t, err)
		assert.Equal(t, doctree.Table, nodes[0].Kind)
		assert.Equal(t, "50.00,50.00", nodes[0].Attr("data-colwidths"))
	})
}

func TestStripTags(t *testing.T) {
	plain := StripTags("<p>Hello</p><p>World<br/>line</p>")
	assert.Equal(t, "Hello\nWorld\nline", plain)
	assert.False(t, strings.Contains(plain, "<"))
}

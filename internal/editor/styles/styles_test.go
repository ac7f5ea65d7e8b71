package styles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aisa-it/aiplan-editor/internal/editor/config"
	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
)

func TestEffective(t *testing.T) {
	cfg := config.Default()
	r := NewResolver(cfg)

	t.Run("inline style on ancestor wins", func(t *testing.T) {
		p := doctree.NewNode(doctree.Paragraph)
		span := doctree.NewNode(doctree.Span)
		span.SetStyle("font-size", "14pt")
		text := doctree.NewText("x")
		span.AppendChild(text)
		p.AppendChild(span)

		assert.Equal(t, "14pt", r.Effective(text, "font-size"))
	})

	t.Run("heading implies size tier without storing it", func(t *testing.T) {
		h := doctree.NewNode(doctree.Heading2)
		text := doctree.NewText("title")
		h.AppendChild(text)

		assert.Equal(t, "18pt", r.Effective(text, "font-size"))
		assert.Empty(t, h.Style("font-size"))
	})

	t.Run("config defaults as last resort", func(t *testing.T) {
		p := doctree.NewNode(doctree.Paragraph)
		text := doctree.NewText("x")
		p.AppendChild(text)

		assert.Equal(t, cfg.DefaultFontSize, r.Effective(text, "font-size"))
		assert.Equal(t, cfg.DefaultFontFamily, r.Effective(text, "font-family"))
		assert.Equal(t, cfg.DefaultColor, r.Effective(text, "color"))
		assert.Equal(t, cfg.DefaultLineHeight, r.Effective(text, "line-height"))
	})
}

func TestRecentChoiceOverride(t *testing.T) {
	cfg := config.Default()
	cfg.RecentStyleTTL = 30 * time.Millisecond
	r := NewResolver(cfg)

	p := doctree.NewNode(doctree.Paragraph)
	p.SetStyle("font-family", "Georgia")
	text := doctree.NewText("x")
	p.AppendChild(text)

	r.NoteChoice("font-family", "Arial")
	assert.Equal(t, "Arial", r.Effective(text, "font-family"))

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, "Georgia", r.Effective(text, "font-family"))
}

func TestFontSizeToPt(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12pt", 12},
		{"16px", 12},
		{"10", 10},
	}
	for _, c := range cases {
		got, ok := FontSizeToPt(c.in)
		assert.True(t, ok, c.in)
		assert.InDelta(t, c.want, got, 0.001, c.in)
	}

	_, ok := FontSizeToPt("huge")
	assert.False(t, ok)
}

func TestFontSizeMatches(t *testing.T) {
	assert.True(t, FontSizeMatches("12pt", "16px"))
	assert.True(t, FontSizeMatches("13pt", "12pt"))
	assert.False(t, FontSizeMatches("14pt", "12pt"))
	assert.False(t, FontSizeMatches("abc", "12pt"))
}

func TestLineHeight(t *testing.T) {
	assert.InDelta(t, 1.2, LineHeightRatio(""), 0.001)
	assert.InDelta(t, 1.2, LineHeightRatio("normal"), 0.001)
	assert.InDelta(t, 1.5, LineHeightRatio("1.5"), 0.001)

	assert.True(t, LineHeightMatches("normal", "1.2"))
	assert.True(t, LineHeightMatches("", "1.2"))
	assert.False(t, LineHeightMatches("1.5", "1.2"))
}

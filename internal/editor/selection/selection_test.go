package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
	"github.com/aisa-it/aiplan-editor/internal/editor/ederrors"
)

// <body><p>Hello</p><p>World</p></body>
func buildDoc() (root, p1, t1, p2, t2 *doctree.Node) {
	root = doctree.NewNode(doctree.Root)
	p1 = doctree.NewNode(doctree.Paragraph)
	t1 = doctree.NewText("Hello")
	p1.AppendChild(t1)
	p2 = doctree.NewNode(doctree.Paragraph)
	t2 = doctree.NewText("World")
	p2.AppendChild(t2)
	root.AppendChild(p1)
	root.AppendChild(p2)
	return
}

func TestCompare(t *testing.T) {
	_, p1, t1, _, t2 := buildDoc()

	t.Run("document order across blocks", func(t *testing.T) {
		assert.Equal(t, -1, Compare(Position{Node: t1, Offset: 5}, Position{Node: t2, Offset: 0}))
		assert.Equal(t, 1, Compare(Position{Node: t2, Offset: 0}, Position{Node: t1, Offset: 5}))
	})

	t.Run("offsets within one node", func(t *testing.T) {
		assert.Equal(t, -1, Compare(Position{Node: t1, Offset: 1}, Position{Node: t1, Offset: 4}))
		assert.Equal(t, 0, Compare(Position{Node: t1, Offset: 2}, Position{Node: t1, Offset: 2}))
	})

	t.Run("position before child precedes positions inside it", func(t *testing.T) {
		assert.Equal(t, -1, Compare(Position{Node: p1, Offset: 0}, Position{Node: t1, Offset: 0}))
		assert.Equal(t, 1, Compare(Position{Node: p1, Offset: 1}, Position{Node: t1, Offset: 5}))
	})
}

func TestOrdered(t *testing.T) {
	root, _, t1, _, t2 := buildDoc()
	sel := Selection{
		Anchor: Position{Node: t2, Offset: 3},
		Focus:  Position{Node: t1, Offset: 1},
	}
	start, end := Ordered(root, sel)
	assert.Equal(t, t1, start.Node)
	assert.Equal(t, t2, end.Node)
}

func TestTrackerSeedsDefault(t *testing.T) {
	root, _, t1, _, _ := buildDoc()
	tr := NewTracker(root)
	sel, ok := tr.Current()
	assert.True(t, ok)
	assert.Equal(t, t1, sel.Anchor.Node)
	assert.Equal(t, 0, sel.Anchor.Offset)
	assert.True(t, sel.Collapsed())
}

func TestTrackerSetRejectsForeignNodes(t *testing.T) {
	root, _, _, _, _ := buildDoc()
	tr := NewTracker(root)
	stray := doctree.NewText("outside")
	err := tr.Set(Selection{
		Anchor: Position{Node: stray},
		Focus:  Position{Node: stray},
	})
	assert.ErrorIs(t, err, ederrors.ErrStaleSelection)
}

func TestTrackerClampsOffsets(t *testing.T) {
	root, _, t1, _, _ := buildDoc()
	tr := NewTracker(root)
	err := tr.Set(Selection{
		Anchor: Position{Node: t1, Offset: 99},
		Focus:  Position{Node: t1, Offset: -1},
	})
	assert.NoError(t, err)
	sel, _ := tr.Current()
	assert.Equal(t, 5, sel.Anchor.Offset)
	assert.Equal(t, 0, sel.Focus.Offset)
}

func TestSaveRestore(t *testing.T) {
	t.Run("restore after mutation elsewhere", func(t *testing.T) {
		root, _, t1, _, _ := buildDoc()
		tr := NewTracker(root)
		assert.NoError(t, tr.Set(Selection{
			Anchor: Position{Node: t1, Offset: 2},
			Focus:  Position{Node: t1, Offset: 2},
		}))
		saved := tr.Save()

		assert.NoError(t, tr.Restore(saved))
		sel, ok := tr.Current()
		assert.True(t, ok)
		assert.Equal(t, t1, sel.Anchor.Node)
		assert.Equal(t, 2, sel.Anchor.Offset)
	})

	t.Run("restore fails when anchor node was removed", func(t *testing.T) {
		root, p1, t1, _, _ := buildDoc()
		tr := NewTracker(root)
		assert.NoError(t, tr.Set(Selection{
			Anchor: Position{Node: t1, Offset: 1},
			Focus:  Position{Node: t1, Offset: 1},
		}))
		saved := tr.Save()

		p1.Detach()
		assert.ErrorIs(t, tr.Restore(saved), ederrors.ErrStaleSelection)
	})
}

func TestRebind(t *testing.T) {
	t.Run("selection survives document swap by node ID", func(t *testing.T) {
		root, _, t1, _, _ := buildDoc()
		tr := NewTracker(root)
		assert.NoError(t, tr.Set(Selection{
			Anchor: Position{Node: t1, Offset: 3},
			Focus:  Position{Node: t1, Offset: 3},
		}))

		snapshot := root.Clone()
		tr.Rebind(snapshot)

		sel, ok := tr.Current()
		assert.True(t, ok)
		assert.Equal(t, t1.ID, sel.Anchor.Node.ID)
		assert.NotSame(t, t1, sel.Anchor.Node)
		assert.Equal(t, 3, sel.Anchor.Offset)
	})

	t.Run("missing node reseeds", func(t *testing.T) {
		root, _, t1, _, _ := buildDoc()
		tr := NewTracker(root)
		assert.NoError(t, tr.Set(Selection{
			Anchor: Position{Node: t1, Offset: 3},
			Focus:  Position{Node: t1, Offset: 3},
		}))

		other := doctree.NewDocument()
		tr.Rebind(other)

		sel, ok := tr.Current()
		assert.True(t, ok)
		assert.True(t, other.Contains(sel.Anchor.Node))
	})
}

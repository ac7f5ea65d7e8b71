package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
)

func docWithText(text string) *doctree.Node {
	root := doctree.NewNode(doctree.Root)
	p := doctree.NewNode(doctree.Paragraph)
	p.AppendChild(doctree.NewText(text))
	root.AppendChild(p)
	return root
}

func TestUndoRedoRoundTrip(t *testing.T) {
	m := NewManager(DefaultDepth)

	d0 := docWithText("v0")
	d1 := docWithText("v1")
	d2 := docWithText("v2")

	m.SnapshotBeforeChange(d0)
	m.SnapshotBeforeChange(d1)
	current := d2

	current = m.Undo(current)
	assert.Equal(t, "v1", current.PlainText())
	current = m.Undo(current)
	assert.Equal(t, "v0", current.PlainText())
	assert.False(t, m.CanUndo())

	current = m.Redo(current)
	assert.Equal(t, "v1", current.PlainText())
	current = m.Redo(current)
	assert.Equal(t, "v2", current.PlainText())
	assert.False(t, m.CanRedo())
}

func TestUndoEmptyStack(t *testing.T) {
	m := NewManager(10)
	assert.Nil(t, m.Undo(docWithText("x")))
	assert.Nil(t, m.Redo(docWithText("x")))
}

func TestNewMutationClearsRedo(t *testing.T) {
	m := NewManager(10)
	m.SnapshotBeforeChange(docWithText("v0"))
	m.Undo(docWithText("v1"))
	assert.True(t, m.CanRedo())

	m.SnapshotBeforeChange(docWithText("v0"))
	assert.False(t, m.CanRedo())
}

func TestDepthEviction(t *testing.T) {
	m := NewManager(2)
	m.SnapshotBeforeChange(docWithText("a"))
	m.SnapshotBeforeChange(docWithText("b"))
	m.SnapshotBeforeChange(docWithText("c"))

	assert.Equal(t, "c", m.Undo(docWithText("d")).PlainText())
	assert.Equal(t, "b", m.Undo(docWithText("c")).PlainText())
	assert.False(t, m.CanUndo())
}

func TestSnapshotIsIsolatedFromLaterEdits(t *testing.T) {
	m := NewManager(10)
	doc := docWithText("original")
	m.SnapshotBeforeChange(doc)

	doc.FirstChild().FirstChild().Text = "mutated"

	restored := m.Undo(doc)
	assert.Equal(t, "original", restored.PlainText())
}

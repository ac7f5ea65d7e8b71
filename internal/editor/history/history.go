// Пакет реализует линейную историю документа: стеки undo/redo из неизменяемых
// снапшотов дерева. Снапшот снимается движком непосредственно перед каждой
// мутирующей командой, поэтому undo всегда возвращает состояние до команды.
//
// Основные возможности:
//   - Снапшоты как глубокие клоны дерева с сохранением ID нод.
//   - Классическая линейная модель: новая мутация очищает стек redo.
//   - Ограничение глубины (вытеснение самых старых записей).
package history

import (
	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
)

const DefaultDepth = 100

type Manager struct {
	depth     int
	undoStack []*doctree.Node
	redoStack []*doctree.Node
}

func NewManager(depth int) *Manager {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Manager{depth: depth}
}

// SnapshotBeforeChange фиксирует состояние документа перед мутацией.
// Любая новая запись очищает redo.
func (m *Manager) SnapshotBeforeChange(doc *doctree.Node) {
	m.Push(doc.Clone())
}

// Push кладет уже снятый снапшот в стек undo. Используется движком, когда клон
// снимается заранее, а фиксируется только после фактической мутации.
func (m *Manager) Push(snapshot *doctree.Node) {
	m.undoStack = append(m.undoStack, snapshot)
	if len(m.undoStack) > m.depth {
		m.undoStack = m.undoStack[len(m.undoStack)-m.depth:]
	}
	m.redoStack = nil
}

// Undo возвращает предыдущее состояние документа, либо nil если откатывать нечего.
// Текущее (post-command) состояние уходит в стек redo.
func (m *Manager) Undo(current *doctree.Node) *doctree.Node {
	if len(m.undoStack) == 0 {
		return nil
	}
	last := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	m.redoStack = append(m.redoStack, current.Clone())
	return last
}

// Redo - зеркальная операция к Undo.
func (m *Manager) Redo(current *doctree.Node) *doctree.Node {
	if len(m.redoStack) == 0 {
		return nil
	}
	last := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	m.undoStack = append(m.undoStack, current.Clone())
	return last
}

func (m *Manager) CanUndo() bool { return len(m.undoStack) > 0 }
func (m *Manager) CanRedo() bool { return len(m.redoStack) > 0 }

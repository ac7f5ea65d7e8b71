// Встроенные команды редактора. Реестр фиксирован на конструировании движка;
// плагины добавляют свои команды через Register и не могут перекрыть встроенные.
package engine

import (
	"github.com/aisa-it/aiplan-editor/internal/editor/doctree"
	"github.com/aisa-it/aiplan-editor/internal/editor/events"
)

func (e *Engine) registerBuiltins() {
	// строчное форматирование
	e.register("bold", true, func(c *Context) error { return e.toggleMark(c, doctree.Bold) })
	e.register("italic", true, func(c *Context) error { return e.toggleMark(c, doctree.Italic) })
	e.register("underline", true, func(c *Context) error { return e.toggleMark(c, doctree.Underline) })
	e.register("strike", true, func(c *Context) error { return e.toggleMark(c, doctree.Strike) })
	e.register("subscript", true, func(c *Context) error { return e.toggleMark(c, doctree.Subscript) })
	e.register("superscript", true, func(c *Context) error { return e.toggleMark(c, doctree.Superscript) })
	e.register("remove-format", true, func(c *Context) error { return e.removeFormat(c) })

	// inline-стили
	e.register("font-name", true, func(c *Context) error { return e.applyInlineStyle(c, "font-family", c.Value) })
	e.register("font-size", true, func(c *Context) error { return e.applyInlineStyle(c, "font-size", c.Value) })
	e.register("line-height", true, func(c *Context) error { return e.applyInlineStyle(c, "line-height", c.Value) })
	e.register("fore-color", true, func(c *Context) error { return e.applyInlineStyle(c, "color", c.Value) })
	e.register("back-color", true, func(c *Context) error { return e.applyInlineStyle(c, "background-color", c.Value) })

	// блочное форматирование
	e.register("format-block", true, func(c *Context) error { return e.formatBlock(c, c.Value) })
	e.register("ordered-list", true, func(c *Context) error { return e.toggleList(c, doctree.NumberList) })
	e.register("unordered-list", true, func(c *Context) error { return e.toggleList(c, doctree.BulletList) })
	e.register("justify-left", true, func(c *Context) error { return e.justify(c, "left") })
	e.register("justify-center", true, func(c *Context) error { return e.justify(c, "center") })
	e.register("justify-right", true, func(c *Context) error { return e.justify(c, "right") })
	e.register("justify-full", true, func(c *Context) error { return e.justify(c, "justify") })
	e.register("indent", true, func(c *Context) error { return e.changeIndent(c, indentStepPx) })
	e.register("outdent", true, func(c *Context) error { return e.changeIndent(c, -indentStepPx) })

	// вставка
	e.register("insert-html", true, func(c *Context) error { return e.insertHTML(c, c.Value) })
	e.register("insert-link", true, func(c *Context) error { return e.insertLink(c, c.Value) })
	e.register("insert-image", true, func(c *Context) error { return e.insertImage(c, c.Value) })
	e.register("insert-video", true, func(c *Context) error { return e.insertVideo(c, c.Value) })
	e.register("insert-table", true, func(c *Context) error { return e.insertTable(c, c.Value) })
	e.register("insert-horizontal-rule", true, func(c *Context) error {
		e.insertFragmentAt(c.Sel.Anchor, []*doctree.Node{doctree.NewNode(doctree.Rule)})
		return nil
	})

	// таблицы
	e.register("table-insert-row-before", true, func(c *Context) error { return e.tableInsertRow(c, false) })
	e.register("table-insert-row-after", true, func(c *Context) error { return e.tableInsertRow(c, true) })
	e.register("table-insert-column-before", true, func(c *Context) error { return e.tableInsertColumn(c, false) })
	e.register("table-insert-column-after", true, func(c *Context) error { return e.tableInsertColumn(c, true) })
	e.register("table-delete-row", true, func(c *Context) error { return e.tableDeleteRow(c) })
	e.register("table-delete-column", true, func(c *Context) error { return e.tableDeleteColumn(c) })
	e.register("table-delete", true, func(c *Context) error { return e.tableDelete(c) })

	// история: работают со снапшотами сами, общий мутирующий хвост не нужен
	e.register("undo", false, func(c *Context) error { e.applyUndo(); return nil })
	e.register("redo", false, func(c *Context) error { e.applyRedo(); return nil })

	e.register("set-paste-mode", false, func(c *Context) error { return e.SetPasteMode(c.Value) })
}

// Undo откатывает документ к состоянию до последней мутации.
// Пустой стек undo - no-op.
func (e *Engine) Undo() { e.applyUndo() }

// Redo возвращает откаченную мутацию. Пустой стек redo - no-op.
func (e *Engine) Redo() { e.applyRedo() }

func (e *Engine) CanUndo() bool { return e.hist.CanUndo() }
func (e *Engine) CanRedo() bool { return e.hist.CanRedo() }

func (e *Engine) applyUndo() {
	prev := e.hist.Undo(e.doc)
	if prev == nil {
		return
	}
	e.swapDocument(prev)
}

func (e *Engine) applyRedo() {
	next := e.hist.Redo(e.doc)
	if next == nil {
		return
	}
	e.swapDocument(next)
}

// swapDocument подменяет дерево целиком (undo/redo) и перепривязывает выделение.
func (e *Engine) swapDocument(doc *doctree.Node) {
	e.doc = doc
	e.tracker.Rebind(e.doc)
	e.tracker.Save()
	e.clearPending()
	e.bus.PublishDebounced(events.Event{Type: events.DocumentChanged})
}
